package dump

import (
	"reflect"
	"testing"
)

func TestTuplesBasic(t *testing.T) {
	stmt := "INSERT INTO users VALUES (1, 'alice', 'alice@example.com'), (2, 'bob', NULL);"
	rows, err := Tuples(stmt)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"1", "alice", "alice@example.com"},
		{"2", "bob", ""},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows mismatch:\nwant %q\ngot  %q", want, rows)
	}
}

func TestTuplesQuotedDelimiters(t *testing.T) {
	stmt := `INSERT INTO t VALUES (1, 'a, b (c)', 'say \'hi\''), (2, 'tab\there', 'double''d');`
	rows, err := Tuples(stmt)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"1", "a, b (c)", "say 'hi'"},
		{"2", "tab\there", "double'd"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows mismatch:\nwant %q\ngot  %q", want, rows)
	}
}

func TestTuplesEscapes(t *testing.T) {
	stmt := `INSERT INTO t VALUES ('line1\nline2', 'back\\slash', "dquoted");`
	rows, err := Tuples(stmt)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"line1\nline2", "back\\slash", "dquoted"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows mismatch:\nwant %q\ngot  %q", want, rows)
	}
}

func TestTuplesNullCaseInsensitive(t *testing.T) {
	stmt := "INSERT INTO t VALUES (null, NULL, 'NULL');"
	rows, err := Tuples(stmt)
	if err != nil {
		t.Fatal(err)
	}
	// quoted NULL is a real string, bare null maps to empty
	want := [][]string{{"", "", "NULL"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows mismatch:\nwant %q\ngot  %q", want, rows)
	}
}

func TestTuplesNoValuesClause(t *testing.T) {
	if _, err := Tuples("CREATE TABLE t (id INT);"); err != ErrNoValues {
		t.Fatalf("expected ErrNoValues, got %v", err)
	}
}

func TestTuplesValuesWordInsideData(t *testing.T) {
	stmt := "INSERT INTO t (note) VALUES ('these values (1,2) are not rows');"
	rows, err := Tuples(stmt)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"these values (1,2) are not rows"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows mismatch:\nwant %q\ngot  %q", want, rows)
	}
}

func TestInlineColumns(t *testing.T) {
	stmt := "INSERT INTO `users` (`id`, `email`, `name`) VALUES (1, 'a@b.c', 'a');"
	cols := InlineColumns(stmt)
	want := []string{"id", "email", "name"}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("columns mismatch: want %v got %v", want, cols)
	}
}

func TestInlineColumnsAbsent(t *testing.T) {
	if cols := InlineColumns("INSERT INTO users VALUES (1);"); cols != nil {
		t.Fatalf("expected nil, got %v", cols)
	}
}
