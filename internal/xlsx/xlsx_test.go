package xlsx

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/dyne/sqlsift/internal/log"
)

func createWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	cells := map[string]string{
		"A1": "id", "B1": "name",
		"A2": "1", "B2": "alice",
		"A3": "2", "B3": "bob",
	}
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.NewSheet("Ragged"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Ragged", "A1", "a"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Ragged", "C2", "c"); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "book.xlsx")
	createWorkbook(t, book)

	outDir := filepath.Join(dir, "out")
	logger := log.New(log.LevelInfo, io.Discard)
	if err := Convert(context.Background(), book, outDir, logger); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, filepath.Join(outDir, "Sheet1.csv"))
	want := [][]string{{"id", "name"}, {"1", "alice"}, {"2", "bob"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("sheet mismatch:\nwant %v\ngot  %v", want, rows)
	}

	// ragged rows come out rectangular
	ragged := readCSV(t, filepath.Join(outDir, "Ragged.csv"))
	if len(ragged) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(ragged))
	}
	width := len(ragged[0])
	for i, row := range ragged {
		if len(row) != width {
			t.Fatalf("row %d width %d != %d", i, len(row), width)
		}
	}
}

func TestConvertDefaultOutDir(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "report.xlsx")
	createWorkbook(t, book)

	logger := log.New(log.LevelInfo, io.Discard)
	if err := Convert(context.Background(), book, "", logger); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "report_csv", "Sheet1.csv")); err != nil {
		t.Fatalf("default output missing: %v", err)
	}
}

func TestConvertMissingFile(t *testing.T) {
	logger := log.New(log.LevelInfo, io.Discard)
	if err := Convert(context.Background(), "/does/not/exist.xlsx", t.TempDir(), logger); err == nil {
		t.Fatal("expected error")
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize(`q1/q2: "res*"`); got != `q1_q2_ _res__` {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
}
