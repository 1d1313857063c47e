// Package mcp provides an MCP (Model Context Protocol) server adapter for ptonppl.
// It lets AI assistants resolve people through the directory lookup service.
package mcp

import "errors"

// ErrMissingLookupService is returned when the lookup service is not provided.
var ErrMissingLookupService = errors.New("mcp: lookup service is required")
