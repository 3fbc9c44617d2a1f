package repair

import (
	"reflect"
	"testing"
)

func sampleSchema() Schema {
	header := []string{"id", "email", "bio"}
	rows := [][]string{
		{"1", "a@example.com", "first"},
		{"2", "b@example.com", "second"},
		{"3", "c@example.com", ""},
	}
	return AnalyzeRows(header, rows, 50)
}

func TestAnalyzeRows(t *testing.T) {
	schema := sampleSchema()
	want := []ColumnType{TypeInteger, TypeEmail, TypeString}
	for i, col := range schema {
		if col.Type != want[i] {
			t.Fatalf("column %s: want type %d got %d", col.Name, want[i], col.Type)
		}
	}
}

func TestAnalyzeRowsIgnoresNulls(t *testing.T) {
	schema := AnalyzeRows([]string{"n"}, [][]string{{""}, {"null"}, {"7"}}, 50)
	if schema[0].Type != TypeInteger {
		t.Fatalf("want integer, got %d", schema[0].Type)
	}
}

func TestRepairShortRow(t *testing.T) {
	rep := New(sampleSchema())
	// the id was lost; the email anchors the alignment
	got := rep.Repair([]string{"d@example.com", "bio text"})
	want := []string{"", "d@example.com", "bio text"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("repair mismatch: want %q got %q", want, got)
	}
}

func TestRepairKeepsAlignedRow(t *testing.T) {
	rep := New(sampleSchema())
	got := rep.Repair([]string{"9", "z@example.com", "hello"})
	want := []string{"9", "z@example.com", "hello"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("repair mismatch: want %q got %q", want, got)
	}
}

func TestRepairOverflowTruncates(t *testing.T) {
	rep := New(sampleSchema())
	// an extra trailing field gets cut once the anchors line up
	got := rep.Repair([]string{"9", "z@example.com", "hello", "stray"})
	want := []string{"9", "z@example.com", "hello"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("repair mismatch: want %q got %q", want, got)
	}
}

func TestRepairUnrepairable(t *testing.T) {
	rep := New(sampleSchema())
	if got := rep.Repair([]string{"", "null"}); got != nil {
		t.Fatalf("expected nil, got %q", got)
	}
	if got := rep.Repair(nil); got != nil {
		t.Fatalf("expected nil for empty row, got %q", got)
	}
}

func TestMatchScore(t *testing.T) {
	cases := []struct {
		cell string
		typ  ColumnType
		want int
	}{
		{"a@example.com", TypeEmail, 10},
		{"123", TypeInteger, 5},
		{"plain", TypeString, 1},
		{"not-an-email", TypeEmail, 0},
		{"12a", TypeInteger, 0},
		{"", TypeString, 0},
		{"NULL", TypeString, 0},
	}
	for _, c := range cases {
		if got := matchScore(c.cell, c.typ); got != c.want {
			t.Fatalf("matchScore(%q, %d) = %d, want %d", c.cell, c.typ, got, c.want)
		}
	}
}
