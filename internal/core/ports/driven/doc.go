// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// At least one Directory must be provided for lookups to succeed:
//
//   - Directory: Single-field lookup against one backend
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// Directories may additionally implement:
//
//   - Reconnector: Drops cached connection state before a search
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
