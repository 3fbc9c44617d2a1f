package dump

import (
	"io"
	"strings"
	"testing"
)

func scanAll(t *testing.T, input string) []string {
	t.Helper()
	sc := NewScanner(strings.NewReader(input))
	var out []string
	for {
		stmt, err := sc.Scan()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		out = append(out, stmt)
	}
}

func TestScannerSplitsStatements(t *testing.T) {
	input := "CREATE TABLE t (id INT);\nINSERT INTO t VALUES (1);\nINSERT INTO t VALUES (2);\n"
	stmts := scanAll(t, input)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(stmts), stmts)
	}
}

func TestScannerMultiLineStatement(t *testing.T) {
	input := "INSERT INTO t\nVALUES\n(1, 'a'),\n(2, 'b');\n"
	stmts := scanAll(t, input)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if !strings.Contains(stmts[0], "(2, 'b');") {
		t.Fatalf("statement truncated: %q", stmts[0])
	}
}

func TestScannerSemicolonInsideString(t *testing.T) {
	input := "INSERT INTO t VALUES (1, 'end;\nstill going');\nINSERT INTO t VALUES (2, 'x');\n"
	stmts := scanAll(t, input)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if !strings.Contains(stmts[0], "still going") {
		t.Fatalf("first statement split too early: %q", stmts[0])
	}
}

func TestScannerEscapedQuoteDoesNotCloseString(t *testing.T) {
	input := "INSERT INTO t VALUES (1, 'it\\'s;\nfine');\n"
	stmts := scanAll(t, input)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d: %q", len(stmts), stmts)
	}
}

func TestScannerSkipsCommentsAndBlankLines(t *testing.T) {
	input := "-- dump header\n\n-- another comment\nINSERT INTO t VALUES (1);\n"
	stmts := scanAll(t, input)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d: %q", len(stmts), stmts)
	}
}

func TestScannerUnterminatedTail(t *testing.T) {
	input := "INSERT INTO t VALUES (1);\nINSERT INTO t VALUES (2)"
	stmts := scanAll(t, input)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
}
