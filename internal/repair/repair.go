package repair

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ColumnType is the inferred shape of a column, used to score row
// alignments. Emails and integers act as anchors; everything else is
// a weak match.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInteger
	TypeEmail
)

type Column struct {
	Name string
	Type ColumnType
}

type Schema []Column

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+`)

// DefaultSampleRows bounds how much of a table is inspected when
// inferring column types.
const DefaultSampleRows = 50

// AnalyzeRows infers a schema from a header and a sample of
// well-formed rows by majority vote per column. Empty and NULL cells
// do not vote.
func AnalyzeRows(header []string, rows [][]string, sample int) Schema {
	if sample <= 0 {
		sample = DefaultSampleRows
	}
	if len(rows) > sample {
		rows = rows[:sample]
	}
	schema := make(Schema, len(header))
	for i, name := range header {
		counts := map[ColumnType]int{}
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			cell := row[i]
			if cell == "" || strings.EqualFold(cell, "null") {
				continue
			}
			counts[classify(cell)]++
		}
		schema[i] = Column{Name: name, Type: majority(counts)}
	}
	return schema
}

// AnalyzeCSV infers a schema from an existing CSV file, header line
// included.
func AnalyzeCSV(path string, sample int) (Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if sample <= 0 {
		sample = DefaultSampleRows
	}
	var rows [][]string
	for len(rows) < sample {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, row)
	}
	return AnalyzeRows(header, rows, sample), nil
}

func classify(cell string) ColumnType {
	if isDigits(cell) {
		return TypeInteger
	}
	if emailRE.MatchString(cell) {
		return TypeEmail
	}
	return TypeString
}

func majority(counts map[ColumnType]int) ColumnType {
	best := TypeString
	bestN := 0
	for _, t := range []ColumnType{TypeInteger, TypeEmail, TypeString} {
		if counts[t] > bestN {
			best = t
			bestN = counts[t]
		}
	}
	return best
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Repairer aligns rows with the wrong field count to an expected
// schema by sliding the row across every offset and keeping the
// highest-scoring placement.
type Repairer struct {
	schema Schema
}

func New(schema Schema) *Repairer {
	return &Repairer{schema: schema}
}

// Repair returns the row realigned and padded to the schema width, or
// nil when no alignment scores above zero.
func (r *Repairer) Repair(row []string) []string {
	if len(r.schema) == 0 || len(row) == 0 {
		return nil
	}
	bestOffset := 0
	bestScore := -1
	for offset := -len(row); offset < len(r.schema); offset++ {
		score := 0
		for i, cell := range row {
			target := i + offset
			if target >= 0 && target < len(r.schema) {
				score += matchScore(cell, r.schema[target].Type)
			}
		}
		if score > bestScore {
			bestScore = score
			bestOffset = offset
		}
	}
	if bestScore <= 0 {
		return nil
	}
	out := make([]string, len(r.schema))
	for i, cell := range row {
		target := i + bestOffset
		if target >= 0 && target < len(r.schema) {
			out[target] = cell
		}
	}
	return out
}

// matchScore weights how convincingly a value fits a column type.
// Emails are strong anchors, numbers are decent, any non-empty string
// is a weak hit.
func matchScore(cell string, t ColumnType) int {
	if cell == "" || strings.EqualFold(cell, "null") {
		return 0
	}
	switch t {
	case TypeEmail:
		if emailRE.MatchString(cell) {
			return 10
		}
	case TypeInteger:
		if isDigits(cell) {
			return 5
		}
	case TypeString:
		return 1
	}
	return 0
}
