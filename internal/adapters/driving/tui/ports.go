// Package tui provides an interactive terminal user interface for ptonppl.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/jlumbroso/ptonppl/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Lookup resolves identifiers into person records.
	Lookup driving.LookupService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Lookup == nil {
		return ErrMissingLookupService
	}
	return nil
}
