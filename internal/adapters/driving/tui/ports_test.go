package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// MockLookupService implements driving.LookupService for testing.
type MockLookupService struct {
	SearchFunc func(ctx context.Context, query string) (domain.Record, error)
}

func (m *MockLookupService) Search(ctx context.Context, query string) (domain.Record, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return domain.Record{}, domain.ErrNotFound
}

func (m *MockLookupService) Backends() []domain.Backend {
	return domain.Backends
}

func TestPorts_Validate(t *testing.T) {
	var nilPorts *Ports

	assert.ErrorIs(t, nilPorts.Validate(), ErrMissingLookupService)
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingLookupService)
	assert.NoError(t, (&Ports{Lookup: &MockLookupService{}}).Validate())
}
