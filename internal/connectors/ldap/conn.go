package ldap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// Searcher is the subset of an LDAP connection the connector uses.
type Searcher interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// DialFunc opens a new connection.
type DialFunc func(ctx context.Context) (Searcher, error)

// ldapConn adapts *ldap.Conn to Searcher.
type ldapConn struct {
	*ldap.Conn
}

func (c ldapConn) Close() error {
	c.Conn.Close()
	return nil
}

// NewDialer returns a DialFunc for url. The connect timeout bounds the TCP
// and TLS handshake; the operation timeout bounds every request.
func NewDialer(url string, connectTimeout, opTimeout time.Duration, insecureSkipVerify bool) DialFunc {
	return func(ctx context.Context) (Searcher, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := ldap.DialURL(url,
			ldap.DialWithDialer(&net.Dialer{Timeout: connectTimeout}),
			ldap.DialWithTLSConfig(&tls.Config{
				InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // self-signed directory certificates
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", url, err)
		}
		if opTimeout > 0 {
			conn.SetTimeout(opTimeout)
		}
		return ldapConn{conn}, nil
	}
}

// connManager owns the shared connection. It dials lazily and replaces the
// connection when asked to.
type connManager struct {
	mu     sync.Mutex
	dial   DialFunc
	conn   Searcher
	dials  int
	closed bool
}

func newConnManager(dial DialFunc) *connManager {
	return &connManager{dial: dial}
}

// Connect returns the current connection, dialling a new one when none
// exists or force is set.
func (m *connManager) Connect(ctx context.Context, force bool) (Searcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, domain.ErrBackendClosed
	}
	if m.conn != nil && !force {
		return m.conn, nil
	}
	m.dropLocked()

	conn, err := m.dial(ctx)
	if err != nil {
		return nil, err
	}
	m.dials++
	m.conn = conn
	return conn, nil
}

// Invalidate drops the current connection so the next Connect dials.
func (m *connManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropLocked()
}

// Close drops the connection and refuses further dials.
func (m *connManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.dropLocked()
	return nil
}

func (m *connManager) dropLocked() {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}
