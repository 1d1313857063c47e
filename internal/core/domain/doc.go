// Package domain defines the core entities of the people lookup.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: the canonical identity record and its merge rules
//   - RawFields: backend attribute names mapped to their values
//   - FieldMapping: how a backend's attribute names populate a Record
//   - Attempt: one (backend, field, value) unit of work for the orchestrator
//   - LookupResult: the Matched / NoMatch / Rejected outcome of an attempt
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
