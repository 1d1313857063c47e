package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// mockLookupService answers from a fixed table of records.
type mockLookupService struct {
	records map[string]domain.Record
	queries []string
}

func (m *mockLookupService) Search(_ context.Context, query string) (domain.Record, error) {
	m.queries = append(m.queries, query)
	if r, ok := m.records[query]; ok {
		return r, nil
	}
	return domain.Record{}, fmt.Errorf("%w: %s", domain.ErrNotFound, query)
}

func (m *mockLookupService) Backends() []domain.Backend {
	return domain.Backends
}

// mockSettingsService is an in-memory driving.SettingsService.
type mockSettingsService struct {
	settings domain.Settings
	getErr   error
	setErr   error
	set      map[string]string
}

func (m *mockSettingsService) Get() (domain.Settings, error) { return m.settings, m.getErr }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string { return []string{"ldap.enabled", "ldap.url"} }

func (m *mockSettingsService) Path() string { return "/tmp/ptonppl/config.toml" }

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

func newRecord(kv ...string) domain.Record {
	raw := domain.RawFields{}
	for i := 0; i+1 < len(kv); i += 2 {
		raw.Add(kv[i], kv[i+1])
	}
	return domain.NewRecord(raw, domain.DirectoryMapping)
}

func janeDoe() domain.Record {
	return newRecord(
		"universityid", "960000001",
		"uid", "jdoe",
		"mail", "jane.doe@princeton.edu",
		"cn", "Jane Doe",
	)
}

// setupTestServices installs mock services and resets flag state.
func setupTestServices(t *testing.T) (*mockLookupService, *mockSettingsService) {
	t.Helper()

	lookup := &mockLookupService{records: map[string]domain.Record{
		"jdoe":                   janeDoe(),
		"jane.doe":               janeDoe(),
		"jane.doe@princeton.edu": janeDoe(),
		"asmith":                 newRecord("uid", "asmith", "cn", "Smith, Alex", "mail", "ASmith@Princeton.EDU"),
	}}
	settings := &mockSettingsService{settings: domain.DefaultSettings(), set: map[string]string{}}

	original := services
	SetServices(&Services{Lookup: lookup, Settings: settings})
	resetFlags()

	t.Cleanup(func() {
		services = original
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return lookup, settings
}

func resetFlags() {
	verbose = false
	configDir = ""
	lookupType = formatTerm
	lookupUniq = true
	lookupStats = false
	lookupInput = ""
	lookupFields = strings.Join(defaultFields, ",")
	lookupNoHeader = false
	serveAddr = ""
}

// execute runs the root command with args and returns stdout and stderr.
func execute(args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
