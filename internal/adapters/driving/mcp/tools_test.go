package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

func TestServer_handleLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the record", func(t *testing.T) {
		mockLookup := &mockLookupService{record: testRecord()}
		server, err := NewServer(&Ports{Lookup: mockLookup})
		require.NoError(t, err)

		_, output, err := server.handleLookup(ctx, nil, LookupInput{Query: "jdoe"})

		require.NoError(t, err)
		assert.True(t, output.Found)
		assert.True(t, output.Complete)
		assert.Equal(t, map[string]string{
			"id":       "960000001",
			"username": "jdoe",
			"alias":    "jane.doe",
			"email":    "jane.doe@princeton.edu",
			"name":     "Jane Doe",
		}, output.Record)
		assert.Equal(t, []string{"jdoe"}, mockLookup.queries)
	})

	t.Run("selects fields", func(t *testing.T) {
		mockLookup := &mockLookupService{record: testRecord()}
		server, err := NewServer(&Ports{Lookup: mockLookup})
		require.NoError(t, err)

		input := LookupInput{Query: "jdoe", Fields: []string{"email", "unknown"}}
		_, output, err := server.handleLookup(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"email": "jane.doe@princeton.edu"}, output.Record)
	})

	t.Run("not found is not an error", func(t *testing.T) {
		mockLookup := &mockLookupService{err: fmt.Errorf("%w: nobody", domain.ErrNotFound)}
		server, err := NewServer(&Ports{Lookup: mockLookup})
		require.NoError(t, err)

		_, output, err := server.handleLookup(ctx, nil, LookupInput{Query: "nobody"})

		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.Empty(t, output.Record)
	})

	t.Run("returns error on lookup failure", func(t *testing.T) {
		mockLookup := &mockLookupService{err: errors.New("lookup failed")}
		server, err := NewServer(&Ports{Lookup: mockLookup})
		require.NoError(t, err)

		_, _, err = server.handleLookup(ctx, nil, LookupInput{Query: "jdoe"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "lookup failed")
	})
}
