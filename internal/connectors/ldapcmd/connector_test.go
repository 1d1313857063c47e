package ldapcmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlumbroso/ptonppl/internal/connectors/httpclient"
	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

type mockRunner struct {
	mu    sync.Mutex
	out   string
	err   error
	calls [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.out), nil
}

type mockFetcher struct {
	mu   sync.Mutex
	body string
	err  error
	urls []string
}

func (m *mockFetcher) Get(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = append(m.urls, url)
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.body), nil
}

const localOut = `dn: uid=jdoe,o=Princeton University,c=US
uid: jdoe
mail: john.doe@princeton.edu
cn: John Doe
`

const proxyOut = `dn: uid=jdoe,o=Princeton University,c=US
uid: jdoe
cn: Johnny Doe
universityid: 960012345
pustatus: fac
`

func newTestConnector(r Runner, f Fetcher) *Connector {
	return New(domain.DefaultSettings().LDAPCmd, "ldap://ldap.example.edu", "o=Example,c=US", f, WithRunner(r))
}

func TestConnector_LocalWinsProxyFillsGaps(t *testing.T) {
	r := &mockRunner{out: localOut}
	f := &mockFetcher{body: proxyOut}
	c := newTestConnector(r, f)

	res, err := c.SearchOne(context.Background(), domain.SearchUsername, "JDoe")

	require.NoError(t, err)
	require.True(t, res.IsMatch())
	name, _ := res.Record.DisplayName()
	assert.Equal(t, "John Doe", name, "local value wins on conflict")
	id, _ := res.Record.ID()
	assert.Equal(t, "960012345", id, "proxy fills the gap")
	assert.True(t, res.Record.IsComplete())

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{
		"ldapsearch", "-x", "-H", "ldap://ldap.example.edu", "-u", "-o", "ldif-wrap=no",
		"-b", "o=Example,c=US", "uid=jdoe",
	}, r.calls[0])
	assert.Equal(t, []string{"https://edutools.cs.princeton.edu/integration/ldap.cgi?uid=jdoe"}, f.urls)
}

func TestConnector_OnlyProxySucceeds(t *testing.T) {
	r := &mockRunner{err: errors.New("exit status 255")}
	f := &mockFetcher{body: proxyOut}
	c := newTestConnector(r, f)

	res, err := c.SearchOne(context.Background(), domain.SearchID, "960012345")

	require.NoError(t, err)
	require.True(t, res.IsMatch())
	name, _ := res.Record.DisplayName()
	assert.Equal(t, "Johnny Doe", name)
}

func TestConnector_OnlyLocalSucceeds(t *testing.T) {
	r := &mockRunner{out: localOut}
	f := &mockFetcher{err: &httpclient.StatusError{StatusCode: http.StatusBadGateway}}
	c := newTestConnector(r, f)

	res, err := c.SearchOne(context.Background(), domain.SearchEmail, "john.doe@princeton.edu")

	require.NoError(t, err)
	require.True(t, res.IsMatch())
	assert.Equal(t, "mail=john.doe@princeton.edu", r.calls[0][len(r.calls[0])-1])
}

func TestConnector_BothFail(t *testing.T) {
	c := newTestConnector(&mockRunner{err: errors.New("not found")}, &mockFetcher{err: errors.New("timeout")})

	_, err := c.SearchOne(context.Background(), domain.SearchUsername, "jdoe")

	require.Error(t, err)
	var be *domain.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, domain.BackendLDAPCmd, be.Backend)
}

func TestConnector_NoEntries(t *testing.T) {
	c := newTestConnector(&mockRunner{out: "# numEntries: 0\n"}, &mockFetcher{body: ""})

	res, err := c.SearchOne(context.Background(), domain.SearchUsername, "nobody")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoMatch, res.Outcome)
}

func TestConnector_RejectsUnsafeValue(t *testing.T) {
	r := &mockRunner{out: localOut}
	f := &mockFetcher{body: proxyOut}
	c := newTestConnector(r, f)

	res, err := c.SearchOne(context.Background(), domain.SearchUsername, "rm -rf /; id")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejected, res.Outcome)
	assert.Empty(t, r.calls)
	assert.Empty(t, f.urls)
}

func TestConnector_RejectsAlias(t *testing.T) {
	r := &mockRunner{out: localOut}
	c := newTestConnector(r, nil)

	res, err := c.SearchOne(context.Background(), domain.SearchAlias, "jdoe")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejected, res.Outcome)
	assert.Empty(t, r.calls)
}

func TestConnector_DisabledPaths(t *testing.T) {
	cfg := domain.DefaultSettings().LDAPCmd
	cfg.CommandEnabled = false
	r := &mockRunner{out: localOut}
	f := &mockFetcher{body: proxyOut}
	c := New(cfg, "ldap://x", "o=X", f, WithRunner(r))

	res, err := c.SearchOne(context.Background(), domain.SearchUsername, "jdoe")

	require.NoError(t, err)
	assert.True(t, res.IsMatch())
	assert.Empty(t, r.calls)

	_, err = c.LocalOutput(context.Background(), "uid", "jdoe")
	assert.ErrorIs(t, err, domain.ErrBackendDisabled)
}

func TestConnector_ProxyOverHTTP(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(proxyOut))
	}))
	defer srv.Close()

	cfg := domain.DefaultSettings().LDAPCmd
	cfg.CommandEnabled = false
	cfg.ProxyURL = srv.URL + "/ldap.cgi"
	httpCfg := domain.DefaultSettings().HTTP
	httpCfg.Timeout = 5 * time.Second
	client := httpclient.New(httpCfg)
	defer client.CloseIdleConnections()
	c := New(cfg, "ldap://x", "o=X", client)

	res, err := c.SearchOne(context.Background(), domain.SearchEmail, "jdoe@princeton.edu")

	require.NoError(t, err)
	assert.True(t, res.IsMatch())
	assert.Equal(t, "mail=jdoe@princeton.edu", query, "value is sent unescaped")
}
