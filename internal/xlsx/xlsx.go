package xlsx

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dyne/sqlsift/internal/log"
)

// Convert writes every sheet of an Excel workbook to
// <outDir>/<sheet>.csv. Ragged rows are padded to the widest row of
// the sheet so consumers see a rectangular file.
func Convert(ctx context.Context, inPath, outDir string, logger *log.Logger) error {
	f, err := excelize.OpenFile(inPath)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if outDir == "" {
		base := filepath.Base(inPath)
		outDir = filepath.Join(filepath.Dir(inPath), strings.TrimSuffix(base, filepath.Ext(base))+"_csv")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			logger.Warnf("sheet %s is empty, skipped", sheet)
			continue
		}
		path := filepath.Join(outDir, sanitize(sheet)+".csv")
		if err := writeSheet(path, rows); err != nil {
			return err
		}
		logger.Infof("sheet %s: %d rows -> %s", sheet, len(rows), path)
	}
	return nil
}

func writeSheet(path string, rows [][]string) error {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(out)
	padded := make([]string, width)
	for _, row := range rows {
		copy(padded, row)
		for i := len(row); i < width; i++ {
			padded[i] = ""
		}
		if err := w.Write(padded); err != nil {
			out.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// sanitize keeps sheet-derived filenames portable.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
