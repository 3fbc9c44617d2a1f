package dump

import (
	"errors"
	"strings"
)

// ErrNoValues marks an INSERT statement without a VALUES clause.
var ErrNoValues = errors.New("no VALUES clause")

// Tuples extracts every parenthesized tuple of an INSERT statement as
// a slice of decoded field values. NULL becomes the empty string,
// quoted strings are unquoted and unescaped, numeric literals pass
// through untouched.
func Tuples(stmt string) ([][]string, error) {
	vi := valuesIndex(stmt)
	if vi < 0 {
		return nil, ErrNoValues
	}
	return parseTuples(stmt[vi+len("VALUES"):]), nil
}

// valuesIndex finds the VALUES keyword outside quotes and parens, so
// a column or value containing the word does not confuse it.
func valuesIndex(stmt string) int {
	inString := false
	escaped := false
	depth := 0
	var stringDelim byte
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == stringDelim:
				if i+1 < len(stmt) && stmt[i+1] == stringDelim {
					i++
				} else {
					inString = false
				}
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			// backticks cover `values` used as an identifier
			inString = true
			stringDelim = c
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && (c == 'V' || c == 'v') && hasWordAt(stmt, i, "VALUES") {
				return i
			}
		}
	}
	return -1
}

func hasWordAt(s string, i int, word string) bool {
	if i+len(word) > len(s) {
		return false
	}
	if !strings.EqualFold(s[i:i+len(word)], word) {
		return false
	}
	if i > 0 && isWordByte(s[i-1]) {
		return false
	}
	if i+len(word) < len(s) && isWordByte(s[i+len(word)]) {
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parseTuples walks the VALUES payload statefully: parens delimit
// tuples, quote and escape state decide which parens and commas
// count. Nested parens inside a tuple are kept verbatim.
func parseTuples(s string) [][]string {
	var rows [][]string
	var buf strings.Builder
	inString := false
	escaped := false
	var stringDelim byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			buf.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == stringDelim:
				if i+1 < len(s) && s[i+1] == stringDelim {
					buf.WriteByte(s[i+1])
					i++
				} else {
					inString = false
				}
			}
			continue
		}
		switch c {
		case '\'', '"':
			inString = true
			stringDelim = c
			buf.WriteByte(c)
		case '(':
			depth++
			if depth == 1 {
				buf.Reset()
			} else {
				buf.WriteByte(c)
			}
		case ')':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				rows = append(rows, splitFields(buf.String()))
				buf.Reset()
			} else {
				buf.WriteByte(c)
			}
		default:
			if depth > 0 {
				buf.WriteByte(c)
			}
		}
	}
	return rows
}

// splitFields splits one tuple body on top-level commas and decodes
// each field.
func splitFields(s string) []string {
	var fields []string
	var buf strings.Builder
	inString := false
	escaped := false
	var stringDelim byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			buf.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == stringDelim:
				if i+1 < len(s) && s[i+1] == stringDelim {
					buf.WriteByte(s[i+1])
					i++
				} else {
					inString = false
				}
			}
			continue
		}
		switch c {
		case '\'', '"':
			inString = true
			stringDelim = c
			buf.WriteByte(c)
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			buf.WriteByte(c)
		case ',':
			if depth == 0 {
				fields = append(fields, decodeField(buf.String()))
				buf.Reset()
			} else {
				buf.WriteByte(c)
			}
		default:
			buf.WriteByte(c)
		}
	}
	fields = append(fields, decodeField(buf.String()))
	return fields
}

// decodeField turns one raw SQL literal into its CSV cell value.
func decodeField(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "NULL") {
		return ""
	}
	if len(raw) >= 2 {
		if q := raw[0]; (q == '\'' || q == '"') && raw[len(raw)-1] == q {
			return unescape(raw[1:len(raw)-1], q)
		}
	}
	return raw
}

func unescape(s string, quote byte) string {
	if !strings.ContainsAny(s, "\\'\"") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == quote && i+1 < len(s) && s[i+1] == quote {
			b.WriteByte(quote)
			i++
			continue
		}
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case 'Z':
			b.WriteByte(0x1a)
		default:
			// \', \", \\ and anything unknown keep the escaped byte
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
