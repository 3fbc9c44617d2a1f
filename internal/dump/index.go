package dump

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	createTableRE = regexp.MustCompile("(?i)CREATE TABLE (?:IF NOT EXISTS )?[`'\"]?(\\w+)")
	insertRE      = regexp.MustCompile("(?i)INSERT (?:IGNORE )?INTO [`'\"]?(\\w+)")
)

// Table collects everything the dump says about one table: its CREATE
// statement, if any, and every INSERT statement in file order.
type Table struct {
	Name      string
	CreateSQL string
	Inserts   []string
}

// Index maps table names to their statements, preserving first-seen
// order for presentation.
type Index struct {
	Tables map[string]*Table
	order  []string
}

// Names returns table names in the order they first appeared.
func (ix *Index) Names() []string {
	out := make([]string, len(ix.order))
	copy(out, ix.order)
	return out
}

func (ix *Index) table(name string) *Table {
	t, ok := ix.Tables[name]
	if !ok {
		t = &Table{Name: name}
		ix.Tables[name] = t
		ix.order = append(ix.order, name)
	}
	return t
}

type BuildOptions struct {
	// Progress, when set, is called with bytes consumed so far and the
	// total size reported by Open.
	Progress func(read, total int64)
}

// BuildIndex reads the dump once and files every CREATE TABLE and
// INSERT statement under its table. Schema DDL for other objects and
// anything unrecognized is ignored.
func BuildIndex(ctx context.Context, path string, opts BuildOptions) (*Index, error) {
	r, size, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var src io.Reader = r
	if opts.Progress != nil {
		src = &countingReader{r: r, total: size, fn: opts.Progress}
	}

	ix := &Index{Tables: map[string]*Table{}}
	sc := NewScanner(src)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, err := sc.Scan()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scan dump: %w", err)
		}
		if m := createTableRE.FindStringSubmatch(stmt); m != nil {
			ix.table(m[1]).CreateSQL = stmt
			continue
		}
		if m := insertRE.FindStringSubmatch(stmt); m != nil {
			t := ix.table(m[1])
			t.Inserts = append(t.Inserts, stmt)
		}
	}
	return ix, nil
}

type countingReader struct {
	r     io.Reader
	read  int64
	total int64
	fn    func(read, total int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.read += int64(n)
		c.fn(c.read, c.total)
	}
	return n, err
}

var constraintPrefixes = []string{
	"primary", "unique", "key", "constraint", "foreign", "index", "check", ")",
}

// Headers derives the column names for a table: the CREATE TABLE body
// first, then the inline column list of the first INSERT, then
// generated column_1..n names sized to the first tuple.
func (t *Table) Headers() []string {
	if h := headersFromCreate(t.CreateSQL); len(h) > 0 {
		return h
	}
	for _, stmt := range t.Inserts {
		if h := InlineColumns(stmt); len(h) > 0 {
			return h
		}
	}
	return nil
}

// GeneratedHeaders names n anonymous columns.
func GeneratedHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("column_%d", i+1)
	}
	return out
}

func headersFromCreate(createSQL string) []string {
	if createSQL == "" {
		return nil
	}
	open := strings.IndexByte(createSQL, '(')
	end := strings.LastIndexByte(createSQL, ')')
	if open < 0 || end <= open {
		return nil
	}
	body := stripNestedParens(createSQL[open+1 : end])
	var headers []string
	for _, piece := range strings.Split(body, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		lower := strings.ToLower(piece)
		skip := false
		for _, p := range constraintPrefixes {
			if strings.HasPrefix(lower, p) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		name := firstIdent(piece)
		if name != "" {
			headers = append(headers, name)
		}
	}
	return headers
}

// InlineColumns extracts the optional (col, col, ...) list between the
// table name and the VALUES keyword of an INSERT statement.
func InlineColumns(stmt string) []string {
	vi := valuesIndex(stmt)
	if vi < 0 {
		return nil
	}
	head := stmt[:vi]
	open := strings.IndexByte(head, '(')
	end := strings.LastIndexByte(head, ')')
	if open < 0 || end <= open {
		return nil
	}
	var cols []string
	for _, piece := range strings.Split(head[open+1:end], ",") {
		name := firstIdent(piece)
		if name == "" {
			return nil
		}
		cols = append(cols, name)
	}
	return cols
}

// stripNestedParens removes parenthesized sub-expressions such as
// type sizes and enum value lists, so commas inside them do not split
// column definitions.
func stripNestedParens(s string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
				continue
			}
		}
		if depth == 0 {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

var identRE = regexp.MustCompile("[`'\"]?(\\w+)[`'\"]?")

func firstIdent(s string) string {
	m := identRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return m[1]
}
