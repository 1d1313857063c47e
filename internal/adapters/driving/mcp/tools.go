package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// LookupInput is the input schema for the lookup tool.
type LookupInput struct {
	Query  string   `json:"query" jsonschema:"a username, alias, email address or numeric id"`
	Fields []string `json:"fields,omitempty" jsonschema:"record fields to return: id, username, alias, email, status, name"`
}

// LookupOutput is the output schema for the lookup tool.
type LookupOutput struct {
	Found    bool              `json:"found"`
	Complete bool              `json:"complete"`
	Record   map[string]string `json:"record,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup",
		Description: "Look up a person in the campus directory by username, alias, email or id",
	}, s.handleLookup)
}

// handleLookup handles the lookup tool invocation.
// A query that matches nobody is a normal result, not a tool error.
func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, LookupOutput, error) {
	record, err := s.ports.Lookup.Search(ctx, input.Query)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, LookupOutput{}, nil
	}
	if err != nil {
		return nil, LookupOutput{}, err
	}

	m := record.ToMapping()
	if len(input.Fields) > 0 {
		m = m.Select(input.Fields)
	}

	output := LookupOutput{
		Found:    true,
		Complete: record.IsComplete(),
		Record:   make(map[string]string, len(m)),
	}
	for _, e := range m {
		output.Record[e.Key] = e.Value
	}

	return nil, output, nil
}
