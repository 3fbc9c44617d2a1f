package emails

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dyne/sqlsift/internal/log"
)

var emailRE = regexp.MustCompile(`[^@\s",;()<>]+@[^@\s",;()<>]+\.[^@\s",;()<>]+`)

// Extract scans arbitrary text for email addresses and returns them
// lowercased, deduplicated and sorted.
func Extract(r io.Reader) ([]string, error) {
	seen := map[string]bool{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		for _, m := range emailRE.FindAllString(sc.Text(), -1) {
			seen[strings.ToLower(strings.Trim(m, "."))] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out, nil
}

// ExtractFile writes one address per line to outPath.
func ExtractFile(ctx context.Context, inPath, outPath string, logger *log.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	found, err := Extract(in)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		logger.Warnf("no email addresses found in %s", inPath)
		return nil
	}
	data := strings.Join(found, "\n") + "\n"
	if err := os.WriteFile(outPath, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Infof("extracted %d addresses to %s", len(found), outPath)
	return nil
}
