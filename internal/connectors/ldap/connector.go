package ldap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driven"
	"github.com/jlumbroso/ptonppl/internal/logger"
	"github.com/jlumbroso/ptonppl/internal/metrics"
)

// Ensure Connector implements the interfaces.
var (
	_ driven.Directory   = (*Connector)(nil)
	_ driven.Reconnector = (*Connector)(nil)
)

// probeFilter matches every entry.
const probeFilter = "(objectClass=*)"

// Connector searches the directory over LDAP.
type Connector struct {
	cfg     domain.LDAPSettings
	mapping domain.FieldMapping
	conns   *connManager
	metrics *metrics.Metrics

	// mu serialises searches on the shared connection.
	mu         sync.Mutex
	probed     bool
	restricted bool
}

// Option configures a Connector.
type Option func(*Connector)

// WithDialer replaces the network dialer.
func WithDialer(dial DialFunc) Option {
	return func(c *Connector) { c.conns = newConnManager(dial) }
}

// WithMetrics records reconnects.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Connector) { c.metrics = m }
}

// New creates a new LDAP connector. No connection is opened until the
// first search or probe.
func New(cfg domain.LDAPSettings, opts ...Option) *Connector {
	c := &Connector{
		cfg:     cfg,
		mapping: domain.DirectoryMapping,
		conns:   newConnManager(NewDialer(cfg.URL, cfg.ConnectTimeout, cfg.OperationTimeout, cfg.InsecureSkipVerify)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the backend identifier.
func (c *Connector) Backend() domain.Backend {
	return domain.BackendLDAP
}

// Reconnect discards the current connection. The next search dials anew.
// It waits for an in-flight search to finish before dropping the connection.
func (c *Connector) Reconnect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns.Invalidate()
	return nil
}

// Close releases the connection.
func (c *Connector) Close() error {
	return c.conns.Close()
}

// Restricted reports whether the probe found a public-only view.
// It is false until the probe has run.
func (c *Connector) Restricted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restricted
}

// Probe samples the directory and decides whether it is restricted.
// A failed probe counts as restricted.
func (c *Connector) Probe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.probeLocked(ctx)
}

func (c *Connector) probeLocked(ctx context.Context) error {
	c.probed = true

	req := ldap.NewSearchRequest(
		c.cfg.BaseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		c.cfg.ProbeSize, 0, false, probeFilter, nil, nil,
	)

	observed := newAttrSet()
	entries, err := c.searchOnce(ctx, req)
	for _, e := range entries {
		for _, a := range e.Attributes {
			observed.add(a.Name)
		}
	}

	c.restricted = isRestricted(observed)
	logger.Debug("ldap probe: %d entries, %d attributes, restricted=%t", len(entries), len(observed), c.restricted)
	if err != nil {
		if isTransient(err) {
			c.conns.Invalidate()
		}
		return fmt.Errorf("ldap probe: %w", err)
	}
	return nil
}

// SearchOne returns the first entry whose attribute for field equals value.
func (c *Connector) SearchOne(ctx context.Context, field domain.SearchField, value string) (domain.LookupResult, error) {
	attr, ok := c.mapping.Attribute(field)
	if !ok || field == domain.SearchAlias {
		return domain.Rejected("ldap cannot search on %s", field), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.probed {
		if err := c.probeLocked(ctx); err != nil {
			logger.Warn("%v", err)
		}
	}
	if c.restricted && !publicSet.has(attr) {
		logger.Debug("ldap restricted: skipping %s", attr)
		return domain.NoMatch(), nil
	}

	req := ldap.NewSearchRequest(
		c.cfg.BaseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		1, 0, false,
		fmt.Sprintf("(%s=%s)", attr, ldap.EscapeFilter(value)),
		nil, nil,
	)

	entries, err := c.search(ctx, req)
	if err != nil {
		return domain.LookupResult{}, domain.NewBackendError(domain.BackendLDAP, "search", err, isTransient(err))
	}
	if len(entries) == 0 {
		return domain.NoMatch(), nil
	}
	return domain.Matched(domain.NewRecord(entryToRaw(entries[0]), c.mapping)), nil
}

// search runs req, reconnecting and retrying on transient failures.
func (c *Connector) search(ctx context.Context, req *ldap.SearchRequest) ([]*ldap.Entry, error) {
	return backoff.RetryWithData(func() ([]*ldap.Entry, error) {
		entries, err := c.searchOnce(ctx, req)
		if err != nil {
			return nil, c.classify(err)
		}
		return entries, nil
	}, c.backOff(ctx))
}

// searchOnce runs req on the current connection.
// A size-limit result keeps the entries already received.
func (c *Connector) searchOnce(ctx context.Context, req *ldap.SearchRequest) ([]*ldap.Entry, error) {
	conn, err := c.conns.Connect(ctx, false)
	if err != nil {
		return nil, err
	}

	res, err := conn.Search(req)
	switch {
	case err == nil:
		return res.Entries, nil
	case isSizeLimit(err) && res != nil:
		return res.Entries, nil
	default:
		return nil, err
	}
}

// classify drops the connection on transient errors so the retry dials
// anew, and marks every other error as permanent.
func (c *Connector) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	if !isTransient(err) {
		return backoff.Permanent(err)
	}
	logger.With(zap.Error(err)).Warn("ldap transient failure, reconnecting")
	c.conns.Invalidate()
	c.metrics.IncrementReconnects()
	return err
}

func (c *Connector) backOff(ctx context.Context) backoff.BackOff {
	interval := c.cfg.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}
	var b backoff.BackOff = backoff.NewConstantBackOff(interval)
	if c.cfg.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries))
	}
	return backoff.WithContext(b, ctx)
}
