package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// Output formats.
const (
	formatTerm   = "term"
	formatJSON   = "json"
	formatCSV    = "csv"
	formatEmails = "emails"
)

var outputFormats = []string{formatTerm, formatJSON, formatCSV, formatEmails}

// fieldAliases maps legacy field names accepted by --fields.
var fieldAliases = map[string]string{
	"puid":  domain.KeyID,
	"netid": domain.KeyUsername,
	"type":  domain.KeyStatus,
}

func parseFormat(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range outputFormats {
		if s == f {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown output type %q (expected %s)", s, strings.Join(outputFormats, ", "))
}

// parseFields keeps the known keys of a comma-separated list, in order.
// An empty list selects every key.
func parseFields(s string) []string {
	if strings.TrimSpace(s) == "" {
		return domain.OutputKeys
	}

	known := make(map[string]bool, len(domain.OutputKeys))
	for _, k := range domain.OutputKeys {
		known[k] = true
	}

	var fields []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(strings.ToLower(s), ",") {
		f = strings.TrimSpace(f)
		if alias, ok := fieldAliases[f]; ok {
			f = alias
		}
		if known[f] && !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	return fields
}

// presenter writes records in one output format.
type presenter struct {
	w      io.Writer
	format string
	fields []string
	header bool

	csv  *csv.Writer
	json []domain.Mapping

	// name is styled only on a terminal
	styled  bool
	nameSty lipgloss.Style
}

func newPresenter(w io.Writer, format string, fields []string, header bool) *presenter {
	p := &presenter{
		w:       w,
		format:  format,
		fields:  fields,
		header:  header,
		styled:  isTerminal(w),
		nameSty: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E77500")),
	}
	if format == formatCSV {
		p.csv = csv.NewWriter(w)
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Begin writes what precedes the first record.
func (p *presenter) Begin() error {
	if p.format == formatCSV && p.header {
		p.csv.Write(p.fields) //nolint:errcheck // reported by Flush
		p.csv.Flush()
		return p.csv.Error()
	}
	return nil
}

// Write presents one record.
func (p *presenter) Write(r domain.Record) error {
	m := r.ToMapping()

	switch p.format {
	case formatJSON:
		p.json = append(p.json, m.Select(p.fields))
		return nil

	case formatCSV:
		row := make([]string, len(p.fields))
		for i, f := range p.fields {
			row[i], _ = m.Get(f)
		}
		p.csv.Write(row) //nolint:errcheck // reported by Flush
		p.csv.Flush()
		return p.csv.Error()

	case formatEmails:
		email, ok := m.Get(domain.KeyEmail)
		if !ok {
			return nil
		}
		_, err := fmt.Fprintf(p.w, "%q <%s>,\n", displayName(m), strings.ToLower(email))
		return err

	default:
		return p.writeTerm(m)
	}
}

func (p *presenter) writeTerm(m domain.Mapping) error {
	var b strings.Builder
	indent := ""
	if p.header {
		name := displayName(m)
		if p.styled {
			name = p.nameSty.Render(name)
		}
		b.WriteString(name)
		b.WriteString("\n")
		indent = "  "
	}
	for _, e := range m.Select(p.fields) {
		if p.header && e.Key == domain.KeyName {
			continue
		}
		b.WriteString(indent)
		b.WriteString(e.Value)
		b.WriteString("\n")
	}
	if p.header {
		b.WriteString("\n")
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// End writes what follows the last record.
func (p *presenter) End() error {
	if p.format != formatJSON {
		return nil
	}
	if p.json == nil {
		p.json = []domain.Mapping{}
	}
	data, err := json.MarshalIndent(p.json, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// displayName returns the name, falling back to the username.
func displayName(m domain.Mapping) string {
	if name, ok := m.Get(domain.KeyName); ok {
		return name
	}
	username, _ := m.Get(domain.KeyUsername)
	return username
}
