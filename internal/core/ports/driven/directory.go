package driven

import (
	"context"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// Directory looks up one person in one backend.
// Each backend (ldap, webdir, ldapcmd) implements this interface and
// returns records already normalised with domain.DirectoryMapping.
type Directory interface {
	// Backend returns the backend identifier.
	Backend() domain.Backend

	// SearchOne returns the first record whose field equals value.
	// A value or field the backend cannot handle yields a Rejected
	// result, not an error. Errors are reserved for transport or
	// protocol failures the backend could not resolve itself.
	SearchOne(ctx context.Context, field domain.SearchField, value string) (domain.LookupResult, error)

	// Close releases resources.
	Close() error
}

// Reconnector is implemented by directories that hold a long-lived
// connection. Reconnect discards it so the next search starts fresh.
type Reconnector interface {
	Reconnect(ctx context.Context) error
}
