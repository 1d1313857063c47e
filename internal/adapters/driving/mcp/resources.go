package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for ptonppl resources.
	uriScheme = "ptonppl://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "backends",
		Name:        "backends",
		Description: "Directory backends consulted by lookups, in trust order",
		MIMEType:    "application/json",
	}, s.handleBackendsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "people/{query}",
		Name:        "person",
		Description: "Directory record of a person",
		MIMEType:    "application/json",
	}, s.handlePersonResource)
}

// handleBackendsResource lists the configured backends.
func (s *Server) handleBackendsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type backendInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	backends := s.ports.Lookup.Backends()
	infos := make([]backendInfo, len(backends))
	for i, b := range backends {
		infos[i] = backendInfo{Name: b.String(), Description: b.Description()}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling backends: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePersonResource returns the record for the query in the URI.
func (s *Server) handlePersonResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// ptonppl://people/{query}
	query := extractQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.Lookup.Search(ctx, query)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", query, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling record: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractQuery extracts the query from a URI like ptonppl://people/{query}.
func extractQuery(uri string) string {
	const prefix = uriScheme + "people/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
