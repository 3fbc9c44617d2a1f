package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyne/sqlsift/internal/dump"
	"github.com/dyne/sqlsift/internal/log"
)

// Run indexes the dump and prints every table with its statement and
// tuple counts, flagging columns that look like personal data.
func Run(ctx context.Context, inPath string, logger *log.Logger) error {
	ix, err := dump.BuildIndex(ctx, inPath, dump.BuildOptions{})
	if err != nil {
		return err
	}

	names := ix.Names()
	fmt.Printf("Tables: %d\n", len(names))
	for _, name := range names {
		t := ix.Tables[name]
		tuples := 0
		for _, stmt := range t.Inserts {
			rows, err := dump.Tuples(stmt)
			if err != nil {
				continue
			}
			tuples += len(rows)
		}
		headers := t.Headers()
		fmt.Printf("- %s (%d columns, %d inserts, %d tuples)\n", name, len(headers), len(t.Inserts), tuples)
		pii := piiCandidates(headers)
		if len(pii) > 0 {
			fmt.Printf("  PII candidates: %s\n", strings.Join(pii, ", "))
		}
	}
	if logger != nil {
		logger.Infof("inspect complete")
	}
	return nil
}

func piiCandidates(headers []string) []string {
	var out []string
	for _, h := range headers {
		name := strings.ToLower(h)
		if strings.Contains(name, "email") || strings.Contains(name, "name") || strings.Contains(name, "phone") ||
			strings.Contains(name, "user") || strings.Contains(name, "address") || strings.Contains(name, "ip") {
			out = append(out, h)
		}
	}
	return out
}
