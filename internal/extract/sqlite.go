package extract

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// sqliteSink writes every extracted table into one SQLite database,
// all columns TEXT. Useful when the CSVs would just be imported into
// a database anyway.
type sqliteSink struct {
	db *sql.DB
}

func newSQLiteSink(ctx context.Context, path string) (*sqliteSink, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open output db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open output db: %w", err)
	}
	return &sqliteSink{db: db}, nil
}

func (s *sqliteSink) WriteTable(ctx context.Context, table string, headers []string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", table, err)
	}
	defer tx.Rollback()

	cols := make([]string, len(headers))
	for i, h := range headers {
		cols[i] = quoteIdent(h) + " TEXT"
	}
	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quotedCols(headers), ", "), placeholders(len(headers)))
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", table, err)
	}
	defer stmt.Close()

	args := make([]any, len(headers))
	for _, row := range rows {
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

func (s *sqliteSink) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	escaped := strings.ReplaceAll(name, "\"", "\"\"")
	return "\"" + escaped + "\""
}

func quotedCols(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, quoteIdent(c))
	}
	return out
}

func placeholders(n int) string {
	vals := make([]string, n)
	for i := range vals {
		vals[i] = "?"
	}
	return strings.Join(vals, ", ")
}
