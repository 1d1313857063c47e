package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driven"
	"github.com/jlumbroso/ptonppl/internal/metrics"
)

// mockDirectory is a scripted driven.Directory.
type mockDirectory struct {
	backend    domain.Backend
	respond    func(field domain.SearchField, value string) (domain.LookupResult, error)
	calls      []domain.Attempt
	log        *[]domain.Attempt
	reconnects int
}

func newMockDirectory(b domain.Backend, log *[]domain.Attempt) *mockDirectory {
	return &mockDirectory{backend: b, log: log}
}

func (m *mockDirectory) Backend() domain.Backend { return m.backend }

func (m *mockDirectory) SearchOne(
	_ context.Context, field domain.SearchField, value string,
) (domain.LookupResult, error) {
	a := domain.Attempt{Backend: m.backend, Field: field, Value: value}
	m.calls = append(m.calls, a)
	if m.log != nil {
		*m.log = append(*m.log, a)
	}
	if m.respond == nil {
		return domain.NoMatch(), nil
	}
	return m.respond(field, value)
}

func (m *mockDirectory) Close() error { return nil }

// mockPrimary adds reconnect support.
type mockPrimary struct {
	*mockDirectory
	reconnectErr error
}

func (m *mockPrimary) Reconnect(context.Context) error {
	m.reconnects++
	return m.reconnectErr
}

var _ driven.Reconnector = (*mockPrimary)(nil)

func record(kv ...string) domain.Record {
	raw := domain.RawFields{}
	for i := 0; i+1 < len(kv); i += 2 {
		raw.Add(kv[i], kv[i+1])
	}
	return domain.NewRecord(raw, domain.DirectoryMapping)
}

func matchAlways(r domain.Record) func(domain.SearchField, string) (domain.LookupResult, error) {
	return func(domain.SearchField, string) (domain.LookupResult, error) {
		return domain.Matched(r), nil
	}
}

type fixture struct {
	log     []domain.Attempt
	ldap    *mockPrimary
	webdir  *mockDirectory
	ldapcmd *mockDirectory
	service *LookupService
}

func newFixture(opts ...LookupOption) *fixture {
	f := &fixture{}
	f.ldap = &mockPrimary{mockDirectory: newMockDirectory(domain.BackendLDAP, &f.log)}
	f.webdir = newMockDirectory(domain.BackendWebdir, &f.log)
	f.ldapcmd = newMockDirectory(domain.BackendLDAPCmd, &f.log)
	f.service = NewLookupService("princeton.edu",
		[]driven.Directory{f.ldap, f.webdir, f.ldapcmd}, opts...)
	return f
}

func TestLookupService_Backends(t *testing.T) {
	f := newFixture()
	assert.Equal(t, []domain.Backend{domain.BackendLDAP, domain.BackendWebdir, domain.BackendLDAPCmd},
		f.service.Backends())

	only := NewLookupService("princeton.edu", []driven.Directory{nil, newMockDirectory(domain.BackendLDAPCmd, nil)})
	assert.Equal(t, []domain.Backend{domain.BackendLDAPCmd}, only.Backends())
}

func TestLookupService_Search_EarlyStop(t *testing.T) {
	f := newFixture()
	complete := record("universityid", "960000001", "uid", "jdoe", "mail", "jdoe@princeton.edu")
	f.ldap.respond = matchAlways(complete)

	got, err := f.service.Search(context.Background(), "jdoe")

	require.NoError(t, err)
	assert.True(t, got.IsComplete())
	assert.Len(t, f.ldap.calls, 1)
	assert.Empty(t, f.webdir.calls)
	assert.Empty(t, f.ldapcmd.calls)
}

func TestLookupService_Search_MergeThroughFailure(t *testing.T) {
	f := newFixture()
	a := record("uid", "jdoe", "mail", "jdoe@princeton.edu", "cn", "Jane Doe")
	b := record("universityid", "960000001", "uid", "someone", "pustatus", "fac")
	f.webdir.respond = matchAlways(a)
	f.ldapcmd.respond = matchAlways(b)

	got, err := f.service.Search(context.Background(), "jdoe@princeton.edu")

	require.NoError(t, err)
	require.False(t, a.IsComplete())
	require.False(t, b.IsComplete())
	assert.True(t, got.IsComplete())
	assert.Equal(t, a.Merge(b).ToMapping(), got.ToMapping())

	username, _ := got.Username()
	assert.Equal(t, "jdoe", username)

	// ldap no match, webdir partial, ldapcmd completes
	assert.Len(t, f.log, 3)
}

func TestLookupService_Search_InvalidInputReachesNoBackend(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	f := newFixture(WithLookupMetrics(m))

	_, err := f.service.Search(context.Background(), "rm -rf /; id")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.log)
	assert.Zero(t, f.ldap.reconnects)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues(resultInvalid)))
}

func TestLookupService_Search_ReconnectsPrimary(t *testing.T) {
	f := newFixture()

	_, _ = f.service.Search(context.Background(), "jdoe")
	_, _ = f.service.Search(context.Background(), "asmith")

	assert.Equal(t, 2, f.ldap.reconnects)
}

func TestLookupService_Search_ReconnectFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.ldap.reconnectErr = errors.New("dial refused")
	f.webdir.respond = matchAlways(record("uid", "jdoe"))

	got, err := f.service.Search(context.Background(), "jdoe")

	require.NoError(t, err)
	username, ok := got.Username()
	assert.True(t, ok)
	assert.Equal(t, "jdoe", username)
}

func TestLookupService_Search_SwallowsRejectionsAndErrors(t *testing.T) {
	f := newFixture()
	f.ldap.respond = func(domain.SearchField, string) (domain.LookupResult, error) {
		return domain.LookupResult{}, domain.NewBackendError(domain.BackendLDAP, "search", errors.New("protocol error"), false)
	}
	f.webdir.respond = func(domain.SearchField, string) (domain.LookupResult, error) {
		return domain.Rejected("unsupported"), nil
	}
	f.ldapcmd.respond = func(field domain.SearchField, value string) (domain.LookupResult, error) {
		if field == domain.SearchUsername {
			return domain.Matched(record("uid", value, "universityid", "960000001", "mail", value+"@princeton.edu")), nil
		}
		return domain.NoMatch(), nil
	}

	got, err := f.service.Search(context.Background(), "jdoe")

	require.NoError(t, err)
	assert.True(t, got.IsComplete())
	assert.NotEmpty(t, f.ldap.calls)
	assert.NotEmpty(t, f.webdir.calls)
}

func TestLookupService_Search_EmailTriesExactThenLocalPart(t *testing.T) {
	f := newFixture()

	_, err := f.service.Search(context.Background(), "jdoe@example.edu")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	want := []domain.Attempt{
		{Backend: domain.BackendLDAP, Field: domain.SearchEmail, Value: "jdoe@example.edu"},
		{Backend: domain.BackendWebdir, Field: domain.SearchEmail, Value: "jdoe@example.edu"},
		{Backend: domain.BackendLDAPCmd, Field: domain.SearchEmail, Value: "jdoe@example.edu"},
		{Backend: domain.BackendLDAP, Field: domain.SearchUsername, Value: "jdoe"},
		{Backend: domain.BackendLDAP, Field: domain.SearchEmail, Value: "jdoe@princeton.edu"},
		{Backend: domain.BackendWebdir, Field: domain.SearchUsername, Value: "jdoe"},
		{Backend: domain.BackendWebdir, Field: domain.SearchAlias, Value: "jdoe"},
		{Backend: domain.BackendLDAPCmd, Field: domain.SearchUsername, Value: "jdoe"},
		{Backend: domain.BackendLDAPCmd, Field: domain.SearchEmail, Value: "jdoe@princeton.edu"},
	}
	assert.Equal(t, want, f.log)
}

func TestLookupService_Search_NumericID(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantID bool
	}{
		{name: "seven digits", query: "1234567", wantID: true},
		{name: "three digits", query: "123", wantID: false},
		{name: "six digits", query: "123456", wantID: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, _ = f.service.Search(context.Background(), tt.query)

			var ids int
			for _, a := range f.log {
				if a.Field == domain.SearchID {
					ids++
					assert.Equal(t, tt.query, a.Value)
				}
			}
			if tt.wantID {
				assert.Equal(t, 2, ids)
			} else {
				assert.Zero(t, ids)
			}
		})
	}
}

func TestLookupService_Search_SkipsMissingBackends(t *testing.T) {
	var log []domain.Attempt
	webdir := newMockDirectory(domain.BackendWebdir, &log)
	svc := NewLookupService("princeton.edu", []driven.Directory{webdir})

	_, err := svc.Search(context.Background(), "jdoe")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NotEmpty(t, log)
	for _, a := range log {
		assert.Equal(t, domain.BackendWebdir, a.Backend)
	}
}

func TestLookupService_Search_NoBackends(t *testing.T) {
	svc := NewLookupService("princeton.edu", nil)

	_, err := svc.Search(context.Background(), "jdoe")

	assert.ErrorIs(t, err, domain.ErrNoBackends)
}

func TestLookupService_Search_PartialRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	f := newFixture(WithLookupMetrics(m))
	f.webdir.respond = matchAlways(record("uid", "jdoe", "cn", "Jane Doe"))

	got, err := f.service.Search(context.Background(), "jdoe")

	require.NoError(t, err)
	assert.False(t, got.IsComplete())
	name, ok := got.DisplayName()
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", name)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues(resultPartial)))
	assert.Equal(t, float64(len(f.webdir.calls)),
		testutil.ToFloat64(m.Attempts.WithLabelValues("webdir", "username", "matched"))+
			testutil.ToFloat64(m.Attempts.WithLabelValues("webdir", "alias", "matched"))+
			testutil.ToFloat64(m.Attempts.WithLabelValues("webdir", "email", "matched")))
}

func TestLookupService_Search_CancelledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Search(ctx, "jdoe")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.log)
}
