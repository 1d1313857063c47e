package webdir

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driven"
	"github.com/jlumbroso/ptonppl/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Directory = (*Connector)(nil)

// Search field codes of the people-search page.
const (
	FieldNetID = "i"
	FieldEmail = "e"
)

// Filter operators of the people-search page.
const (
	OpEquals     = "eq"
	OpBeginsWith = "b"
)

// Fetcher retrieves a URL body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Connector scrapes the public people-search page.
type Connector struct {
	baseURL     string
	emailDomain string
	mapping     domain.FieldMapping
	fetcher     Fetcher
}

// New creates a connector for the page at baseURL.
func New(cfg domain.WebdirSettings, emailDomain string, fetcher Fetcher) *Connector {
	return &Connector{
		baseURL:     cfg.URL,
		emailDomain: emailDomain,
		mapping:     domain.DirectoryMapping,
		fetcher:     fetcher,
	}
}

// Backend returns the backend identifier.
func (c *Connector) Backend() domain.Backend {
	return domain.BackendWebdir
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// SearchURL builds the page URL for a lookup.
// Email searches use begins-with because equality on email is broken
// upstream. An alias is searched as the address it would have.
func (c *Connector) SearchURL(field domain.SearchField, value string) (string, bool) {
	var code, op string
	switch field {
	case domain.SearchEmail:
		code, op = FieldEmail, OpBeginsWith
	case domain.SearchAlias:
		code, op = FieldEmail, OpBeginsWith
		value = domain.EmailFor(value, c.emailDomain)
	case domain.SearchUsername:
		code, op = FieldNetID, OpEquals
	default:
		return "", false
	}
	return fmt.Sprintf("%s?%s=%s&%sf=%s", c.baseURL, code, url.QueryEscape(value), code, op), true
}

// SearchOne returns the first result row for field=value.
func (c *Connector) SearchOne(ctx context.Context, field domain.SearchField, value string) (domain.LookupResult, error) {
	u, ok := c.SearchURL(field, value)
	if !ok {
		return domain.Rejected("webdir cannot search on %s", field), nil
	}

	body, err := c.fetcher.Get(ctx, u)
	if err != nil {
		logger.With(zap.String("url", u), zap.Error(err)).Warn("webdir fetch failed")
		return domain.NoMatch(), nil
	}

	rows := ParseResults(bytes.NewReader(body), c.emailDomain)
	if len(rows) == 0 {
		return domain.NoMatch(), nil
	}
	return domain.Matched(domain.NewRecord(rows[0], c.mapping)), nil
}
