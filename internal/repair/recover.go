package repair

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/dyne/sqlsift/internal/dump"
	"github.com/dyne/sqlsift/internal/log"
)

const (
	sidecarSuffix = "_wrong_length.txt"
	failedSuffix  = "_failed_recovery.txt"
)

// SidecarPath returns the wrong-length sidecar file for a table CSV.
func SidecarPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, ".csv") + sidecarSuffix
}

type Result struct {
	Recovered int
	Failed    int
}

// RecoverFile is the second-pass recovery: infer a schema from the
// CSV written during extraction, re-parse its wrong-length sidecar,
// and append every row the repairer can align. Rows that still fail
// go to a *_failed_recovery.txt next to the sidecar. path may name
// either the CSV or the sidecar.
func RecoverFile(ctx context.Context, path string, logger *log.Logger) (*Result, error) {
	csvPath := path
	if strings.HasSuffix(path, sidecarSuffix) {
		csvPath = strings.TrimSuffix(path, sidecarSuffix) + ".csv"
	}
	sidecar := SidecarPath(csvPath)

	if _, err := os.Stat(csvPath); err != nil {
		return nil, fmt.Errorf("table csv: %w", err)
	}
	schema, err := AnalyzeCSV(csvPath, DefaultSampleRows)
	if err != nil {
		return nil, err
	}
	rep := New(schema)

	in, err := os.Open(sidecar)
	if err != nil {
		return nil, fmt.Errorf("open sidecar: %w", err)
	}
	defer in.Close()

	var recovered [][]string
	var failed [][]string
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		for _, row := range reparseLine(line) {
			if fixed := rep.Repair(row); fixed != nil {
				recovered = append(recovered, fixed)
			} else {
				failed = append(failed, row)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	if len(recovered) > 0 {
		if err := appendCSV(csvPath, recovered); err != nil {
			return nil, err
		}
		logger.Infof("recovered %d rows into %s", len(recovered), csvPath)
	}
	if len(failed) > 0 {
		failedPath := strings.TrimSuffix(csvPath, ".csv") + failedSuffix
		if err := writeCSVFile(failedPath, failed); err != nil {
			return nil, err
		}
		logger.Warnf("%d rows could not be recovered, see %s", len(failed), failedPath)
	}
	return &Result{Recovered: len(recovered), Failed: len(failed)}, nil
}

// reparseLine accepts both sidecar formats: a CSV-encoded row written
// by the extractor, or a raw SQL fragment with a VALUES clause pasted
// from a dump.
func reparseLine(line string) [][]string {
	if rows, err := dump.Tuples(line); err == nil && len(rows) > 0 {
		return rows
	}
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	row, err := r.Read()
	if err != nil || len(row) == 0 {
		return nil
	}
	return [][]string{row}
}

func appendCSV(path string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write recovered rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	return nil
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
