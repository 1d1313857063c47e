package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jlumbroso/ptonppl/internal/logger"
)

var (
	lookupType     string
	lookupUniq     bool
	lookupStats    bool
	lookupInput    string
	lookupFields   string
	lookupNoHeader bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&lookupType, "type", "t", formatTerm, "output type: term, json, csv or emails")
	f.BoolVarP(&lookupUniq, "uniq", "u", true, "drop records whose username was already printed")
	f.BoolVarP(&lookupStats, "stats", "s", false, "print counts and timing to stderr when done")
	f.StringVarP(&lookupInput, "input", "i", "", "read more queries from a file (- for stdin)")
	f.StringVarP(&lookupFields, "fields", "f", strings.Join(defaultFields, ","), "fields to print")
	f.BoolVar(&lookupNoHeader, "no-header", false, "omit the CSV header and the name line in term output")
}

var defaultFields = []string{"id", "username", "email", "alias", "status", "name"}

// lookupCounts summarises a batch of lookups.
type lookupCounts struct {
	total      int
	success    int
	errors     int
	duplicates int
	output     int
}

func runLookup(cmd *cobra.Command, args []string) error {
	queries := args
	if lookupInput != "" {
		tokens, err := readTokens(cmd, lookupInput)
		if err != nil {
			return err
		}
		queries = append(queries, tokens...)
	}
	if len(queries) == 0 {
		return cmd.Help()
	}

	format, err := parseFormat(lookupType)
	if err != nil {
		return err
	}
	fields := parseFields(lookupFields)

	svc, err := lookupService()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := newPresenter(cmd.OutOrStdout(), format, fields, !lookupNoHeader)
	if err := p.Begin(); err != nil {
		return err
	}

	counts := lookupCounts{total: len(queries)}
	seen := make(map[string]bool)
	start := time.Now()

	for _, q := range queries {
		record, err := svc.Search(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			counts.errors++
			logger.Warn("%s: %v", q, err)
			continue
		}
		counts.success++

		username, ok := record.Username()
		if ok && seen[username] {
			counts.duplicates++
			if lookupUniq {
				continue
			}
		}
		if ok {
			seen[username] = true
		}

		counts.output++
		if err := p.Write(record); err != nil {
			return err
		}
	}

	if err := p.End(); err != nil {
		return err
	}

	if lookupStats {
		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "# counts: %d success, %d errors, %d duplicates, %d output, %d total\n",
			counts.success, counts.errors, counts.duplicates, counts.output, counts.total)
		fmt.Fprintf(w, "# timing: %.2fs\n", time.Since(start).Seconds())
	}
	return nil
}

// readTokens returns the whitespace-separated tokens of path, or of stdin for "-".
func readTokens(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var tokens []string
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return tokens, nil
}
