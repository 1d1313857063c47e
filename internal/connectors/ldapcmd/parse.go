package ldapcmd

import (
	"encoding/base64"
	"strings"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// KeyField is the attribute a parsed record must carry to be used.
const KeyField = "uid"

// ignoredFields are ldapsearch status lines rather than attributes.
var ignoredFields = map[string]bool{
	"search": true,
	"result": true,
}

// Parse reads ldapsearch output into one RawFields per entry.
//
// Entries start at a "dn:" line. Blank lines and "#" comments are skipped,
// continuation lines (a single leading space) are joined to the previous
// line and "attr:: value" lines are base64-decoded. Attribute names are
// lowercased; a repeated attribute keeps all its values in order.
func Parse(out string) []domain.RawFields {
	lines := unfold(strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n"))
	lines = append(lines, "dn: ")

	var (
		records []domain.RawFields
		current domain.RawFields
	)
	for _, line := range lines {
		if line == "" || line[0] == '#' {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = decodeValue(value)
		name = strings.ToLower(strings.TrimSpace(name))

		if name == "dn" {
			if current != nil {
				records = append(records, current)
				current = nil
			}
			if value != "" {
				current = domain.RawFields{}
			}
			continue
		}
		if name == "" || ignoredFields[name] || current == nil {
			continue
		}
		current.Add(name, value)
	}
	return records
}

// First returns the first record with a non-blank KeyField.
func First(records []domain.RawFields) (domain.RawFields, bool) {
	for _, r := range records {
		if r.Has(KeyField) {
			return r, true
		}
	}
	return nil, false
}

func unfold(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, " ") && len(out) > 0 && out[len(out)-1] != "" {
			out[len(out)-1] += line[1:]
			continue
		}
		out = append(out, line)
	}
	return out
}

// decodeValue trims a value and decodes it when it is the base64 form
// (the text after "attr:" starts with a second colon).
func decodeValue(v string) string {
	if !strings.HasPrefix(v, ":") {
		return strings.TrimSpace(v)
	}
	enc := strings.TrimSpace(v[1:])
	dec, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return enc
	}
	return strings.TrimSpace(string(dec))
}
