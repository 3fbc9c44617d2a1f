package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyne/sqlsift/internal/config"
	"github.com/dyne/sqlsift/internal/dump"
	"github.com/dyne/sqlsift/internal/log"
	"github.com/dyne/sqlsift/internal/repair"
)

type Options struct {
	DumpPath string
	OutDir   string
	// Tables is the explicit selection; ignored when DumpAll is set.
	Tables  []string
	DumpAll bool
	// Format selects the output sink: "csv" (default) or "sqlite".
	Format   string
	NoRepair bool
	Config   *config.Config
	Logger   *log.Logger
	// Index, when non-nil, skips re-reading the dump; the caller
	// already built it (e.g. to drive the interactive selector).
	Index *dump.Index
	// IndexProgress and TableProgress report indexing bytes and
	// per-table statement counts for progress bars.
	IndexProgress func(read, total int64)
	TableProgress func(table string, done, total int)
}

type Summary struct {
	Tables            int
	Rows              int
	Repaired          int
	Dropped           int
	SkippedStatements int
}

// Run extracts every selected table from the dump into the configured
// sink. A failure on one table aborts only that table.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.DumpPath == "" {
		return nil, fmt.Errorf("dump path is required")
	}
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.LevelInfo, nil)
	}

	ix := opts.Index
	if ix == nil {
		var err error
		ix, err = dump.BuildIndex(ctx, opts.DumpPath, dump.BuildOptions{Progress: opts.IndexProgress})
		if err != nil {
			return nil, err
		}
	}

	selected, err := selectTables(ix, opts)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		opts.Logger.Infof("no tables selected")
		return &Summary{}, nil
	}

	outDir := outputDir(opts)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	snk, err := newSink(ctx, outputFormat(opts), outDir, stem(opts.DumpPath))
	if err != nil {
		return nil, err
	}
	defer snk.Close()

	summary := &Summary{}
	for _, name := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := processTable(ctx, ix.Tables[name], outDir, snk, opts, summary); err != nil {
			opts.Logger.Warnf("table %s failed: %v", name, err)
			continue
		}
		summary.Tables++
	}
	opts.Logger.Infof("extracted %d tables, %d rows (%d repaired, %d dropped, %d statements skipped)",
		summary.Tables, summary.Rows, summary.Repaired, summary.Dropped, summary.SkippedStatements)
	return summary, nil
}

// selectTables resolves DumpAll or the explicit list against the
// index and the config include/exclude globs, keeping dump order.
func selectTables(ix *dump.Index, opts Options) ([]string, error) {
	want := map[string]bool{}
	if !opts.DumpAll {
		for _, t := range opts.Tables {
			if _, ok := ix.Tables[t]; !ok {
				return nil, fmt.Errorf("table %s not found in dump", t)
			}
			want[t] = true
		}
	}
	var out []string
	for _, name := range ix.Names() {
		if !opts.DumpAll && !want[name] {
			continue
		}
		if !opts.Config.TableIncluded(name) {
			opts.Logger.Debugf("skip table %s (excluded by config)", name)
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func processTable(ctx context.Context, t *dump.Table, outDir string, snk sink, opts Options, summary *Summary) error {
	headers := opts.Config.HeaderOverride(t.Name)
	if headers == nil {
		headers = t.Headers()
	}

	var rows [][]string
	var bad [][]string
	seen := map[string]bool{}
	dedupe := opts.Config.DedupeEnabled()
	for i, stmt := range t.Inserts {
		if err := ctx.Err(); err != nil {
			return err
		}
		tuples, err := dump.Tuples(stmt)
		if err != nil {
			summary.SkippedStatements++
			opts.Logger.Warnf("skip statement for %s: %v", t.Name, err)
			continue
		}
		for _, row := range tuples {
			if headers == nil {
				headers = dump.GeneratedHeaders(len(row))
				opts.Logger.Warnf("no headers found for %s, generated %d column names", t.Name, len(row))
			}
			if len(row) != len(headers) {
				bad = append(bad, row)
				continue
			}
			if dedupe {
				key := strings.Join(row, "\x00")
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			rows = append(rows, row)
		}
		if opts.TableProgress != nil {
			opts.TableProgress(t.Name, i+1, len(t.Inserts))
		}
	}

	var dropped [][]string
	if len(bad) > 0 && !opts.NoRepair && opts.Config.RepairEnabled() {
		rep := repair.New(repair.AnalyzeRows(headers, rows, repair.DefaultSampleRows))
		for _, row := range bad {
			if fixed := rep.Repair(row); fixed != nil {
				rows = append(rows, fixed)
				summary.Repaired++
			} else {
				dropped = append(dropped, row)
			}
		}
	} else {
		dropped = bad
	}

	if len(rows) == 0 {
		opts.Logger.Warnf("found no values in %s", t.Name)
	} else {
		if err := snk.WriteTable(ctx, t.Name, headers, rows); err != nil {
			return err
		}
		summary.Rows += len(rows)
		opts.Logger.Infof("table %s: %d rows", t.Name, len(rows))
	}

	if len(dropped) > 0 {
		summary.Dropped += len(dropped)
		sidecar := repair.SidecarPath(filepath.Join(outDir, t.Name+".csv"))
		if err := writeSidecar(sidecar, dropped); err != nil {
			return err
		}
		opts.Logger.Warnf("%d rows for %s had the wrong column count, see %s", len(dropped), t.Name, sidecar)
	}
	return nil
}

// writeSidecar stores dropped rows CSV-encoded, one per line, so the
// repair pass can re-read them losslessly.
func writeSidecar(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sidecar: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write sidecar: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close sidecar: %w", err)
	}
	return nil
}

func outputFormat(opts Options) string {
	if opts.Format != "" {
		return opts.Format
	}
	if opts.Config.Format != "" {
		return opts.Config.Format
	}
	return "csv"
}

func outputDir(opts Options) string {
	if opts.OutDir != "" {
		return opts.OutDir
	}
	if opts.Config.OutDir != "" {
		return opts.Config.OutDir
	}
	return filepath.Join(filepath.Dir(opts.DumpPath), stem(opts.DumpPath)+"_csv")
}

// stem strips the dump extensions, including the .sql of a .sql.gz.
func stem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if strings.EqualFold(filepath.Ext(base), ".sql") {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}

type sink interface {
	WriteTable(ctx context.Context, table string, headers []string, rows [][]string) error
	Close() error
}

func newSink(ctx context.Context, format, outDir, stem string) (sink, error) {
	switch format {
	case "csv":
		return &csvSink{dir: outDir}, nil
	case "sqlite":
		return newSQLiteSink(ctx, filepath.Join(outDir, stem+".sqlite"))
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

type csvSink struct {
	dir string
}

func (s *csvSink) WriteTable(ctx context.Context, table string, headers []string, rows [][]string) error {
	path := filepath.Join(s.dir, table+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		f.Close()
		return fmt.Errorf("write header %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (s *csvSink) Close() error { return nil }
