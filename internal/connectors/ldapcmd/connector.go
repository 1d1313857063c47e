package ldapcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jlumbroso/ptonppl/internal/connectors/httpclient"
	"github.com/jlumbroso/ptonppl/internal/core/domain"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driven"
	"github.com/jlumbroso/ptonppl/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Directory = (*Connector)(nil)

// Fetcher retrieves a URL body. *httpclient.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

var _ Fetcher = (*httpclient.Client)(nil)

// Connector looks people up through ldapsearch and its HTTP proxy.
type Connector struct {
	cfg     domain.LDAPCmdSettings
	ldapURL string
	baseDN  string
	mapping domain.FieldMapping
	runner  Runner
	fetcher Fetcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(c *Connector) { c.runner = r }
}

// New creates a connector. ldapURL and baseDN are passed to the local
// command; fetcher serves the proxy path.
func New(cfg domain.LDAPCmdSettings, ldapURL, baseDN string, fetcher Fetcher, opts ...Option) *Connector {
	c := &Connector{
		cfg:     cfg,
		ldapURL: ldapURL,
		baseDN:  baseDN,
		mapping: domain.DirectoryMapping,
		runner:  ExecRunner{},
		fetcher: fetcher,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the backend identifier.
func (c *Connector) Backend() domain.Backend {
	return domain.BackendLDAPCmd
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// SearchOne runs the local and proxy queries and merges their first
// usable entries, local values first.
func (c *Connector) SearchOne(ctx context.Context, field domain.SearchField, value string) (domain.LookupResult, error) {
	attr, ok := c.mapping.Attribute(field)
	if !ok || field == domain.SearchAlias {
		return domain.Rejected("ldapcmd cannot search on %s", field), nil
	}
	clean, ok := Sanitize(value, field == domain.SearchEmail)
	if !ok {
		return domain.Rejected("ldapcmd refuses value %q", value), nil
	}

	var (
		local, proxy       domain.RawFields
		localErr, proxyErr error
		paths              int
		g                  errgroup.Group
	)
	if c.cfg.CommandEnabled {
		paths++
		g.Go(func() error {
			local, localErr = c.fromCommand(ctx, attr, clean)
			return nil
		})
	}
	if c.cfg.ProxyEnabled && c.fetcher != nil {
		paths++
		g.Go(func() error {
			proxy, proxyErr = c.fromProxy(ctx, attr, clean)
			return nil
		})
	}
	_ = g.Wait()

	log := logger.With(zap.String("attr", attr), zap.String("value", clean))
	if localErr != nil {
		log.Debug("ldapcmd local command failed", zap.Error(localErr))
	}
	if proxyErr != nil {
		log.Debug("ldapcmd proxy failed", zap.Error(proxyErr))
	}

	raw := local.Merge(proxy)
	if len(raw) == 0 {
		failed := 0
		for _, err := range []error{localErr, proxyErr} {
			if err != nil {
				failed++
			}
		}
		if paths > 0 && failed == paths {
			return domain.LookupResult{}, domain.NewBackendError(domain.BackendLDAPCmd, "search",
				errors.Join(localErr, proxyErr), false)
		}
		return domain.NoMatch(), nil
	}
	return domain.Matched(domain.NewRecord(raw, c.mapping)), nil
}

// LocalOutput runs the local command for attr=value and returns its raw
// output. value must already be sanitised.
func (c *Connector) LocalOutput(ctx context.Context, attr, value string) ([]byte, error) {
	if !c.cfg.CommandEnabled {
		return nil, domain.ErrBackendDisabled
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	return c.runner.Run(ctx, c.cfg.Command, c.commandArgs(attr, value)...)
}

func (c *Connector) commandArgs(attr, value string) []string {
	return []string{
		"-x",
		"-H", c.ldapURL,
		"-u",
		"-o", "ldif-wrap=no",
		"-b", c.baseDN,
		attr + "=" + value,
	}
}

func (c *Connector) fromCommand(ctx context.Context, attr, value string) (domain.RawFields, error) {
	out, err := c.LocalOutput(ctx, attr, value)
	if err != nil {
		return nil, err
	}
	raw, _ := First(Parse(string(out)))
	return raw, nil
}

func (c *Connector) fromProxy(ctx context.Context, attr, value string) (domain.RawFields, error) {
	body, err := c.fetcher.Get(ctx, c.proxyURL(attr, value))
	if err != nil {
		return nil, err
	}
	raw, _ := First(Parse(string(body)))
	return raw, nil
}

// proxyURL builds the proxy query. The value is appended unescaped so the
// proxy sees "@" literally; Sanitize guarantees it needs no escaping.
func (c *Connector) proxyURL(attr, value string) string {
	sep := "?"
	if strings.Contains(c.cfg.ProxyURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%s", c.cfg.ProxyURL, sep, attr, value)
}
