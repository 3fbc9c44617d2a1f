package dump

import (
	"bufio"
	"io"
	"strings"
)

// Scanner accumulates raw dump lines into whole SQL statements. A
// statement ends at a line whose closing `;` sits outside any
// single-quoted string; quote state carries across lines, so values
// containing ";\n" do not split a statement.
type Scanner struct {
	r        *bufio.Reader
	inString bool
	escaped  bool
	done     bool
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 1<<20)}
}

// Scan returns the next complete statement, io.EOF when the input is
// exhausted. A trailing unterminated statement is returned as-is; the
// caller decides whether it is worth anything.
func (s *Scanner) Scan() (string, error) {
	if s.done {
		return "", io.EOF
	}
	var buf []string
	for {
		line, err := s.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		if err == io.EOF {
			s.done = true
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || (len(buf) == 0 && strings.HasPrefix(trimmed, "--")) {
			if s.done {
				break
			}
			continue
		}
		buf = append(buf, trimmed)
		s.advance(trimmed)
		if !s.inString && strings.HasSuffix(trimmed, ";") {
			return strings.Join(buf, "\n"), nil
		}
		if s.done {
			break
		}
	}
	if len(buf) > 0 {
		return strings.Join(buf, "\n"), nil
	}
	return "", io.EOF
}

// advance walks one line and updates the cross-line quote state.
func (s *Scanner) advance(line string) {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if s.escaped {
			s.escaped = false
			continue
		}
		if !s.inString {
			if c == '\'' {
				s.inString = true
			}
			continue
		}
		switch c {
		case '\\':
			s.escaped = true
		case '\'':
			// '' is an escaped quote, not a terminator
			if i+1 < len(line) && line[i+1] == '\'' {
				i++
			} else {
				s.inString = false
			}
		}
	}
	// a string never spans the newline with a pending backslash escape
	s.escaped = false
}
