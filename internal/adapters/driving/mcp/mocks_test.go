package mcp

import (
	"context"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// mockLookupService is a mock implementation of driving.LookupService.
type mockLookupService struct {
	record   domain.Record
	err      error
	backends []domain.Backend
	queries  []string
}

func (m *mockLookupService) Search(_ context.Context, query string) (domain.Record, error) {
	m.queries = append(m.queries, query)
	return m.record, m.err
}

func (m *mockLookupService) Backends() []domain.Backend {
	return m.backends
}

func testRecord() domain.Record {
	return domain.NewRecord(domain.RawFields{
		"universityid": {"960000001"},
		"uid":          {"jdoe"},
		"mail":         {"jane.doe@princeton.edu"},
		"cn":           {"Jane Doe"},
	}, domain.DirectoryMapping)
}
