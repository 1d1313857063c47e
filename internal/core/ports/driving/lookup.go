package driving

import (
	"context"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// LookupService resolves a partial identifier into a person record.
type LookupService interface {
	// Search returns the merged record for query.
	// Returns domain.ErrInvalidInput if the query is rejected before any
	// backend is asked, and domain.ErrNotFound if no backend matched.
	Search(ctx context.Context, query string) (domain.Record, error)

	// Backends returns the configured backends in trust order.
	Backends() []domain.Backend
}
