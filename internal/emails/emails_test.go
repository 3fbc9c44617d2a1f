package emails

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dyne/sqlsift/internal/log"
)

func TestExtract(t *testing.T) {
	input := `From: Alice <Alice@Example.COM>
some noise, then bob@test.org and alice@example.com again
no.at.sign.here and not@valid
trailing punctuation: carol@site.io.
`
	got, err := Extract(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alice@example.com", "bob@test.org", "carol@site.io"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("emails mismatch:\nwant %v\ngot  %v", want, got)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	got, err := Extract(strings.NewReader("nothing to see"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(inPath, []byte("x@y.zz and a@b.cc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := log.New(log.LevelInfo, io.Discard)
	if err := ExtractFile(context.Background(), inPath, outPath, logger); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a@b.cc\nx@y.zz\n" {
		t.Fatalf("unexpected output: %q", data)
	}
}

func TestExtractFileMissingInput(t *testing.T) {
	logger := log.New(log.LevelInfo, io.Discard)
	if err := ExtractFile(context.Background(), "/does/not/exist", "/tmp/out", logger); err == nil {
		t.Fatal("expected error")
	}
}
