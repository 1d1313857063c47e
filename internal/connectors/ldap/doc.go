// Package ldap implements the directory-protocol backend.
//
// It is the most trusted and fastest backend and is asked first for
// every field variant of a lookup.
//
// # Architecture
//
// The connector follows the driven port pattern defined in [driven.Directory].
// It comprises the following components:
//
//   - Connector: runs single-result searches with retry and implements
//     [driven.Reconnector]
//   - connManager: owns the lazily dialled connection and replaces it on
//     demand
//   - probe: samples the directory once to detect restricted visibility
//
// # Restricted mode
//
// Anonymous clients outside the campus network only see a public subset of
// attributes. On first use the connector enumerates up to ProbeSize entries
// and records every attribute name it observes. When the observed names
// overlap the detailed attribute set by no more than the size of the public
// set, searches on non-public attributes return no match without a network
// call.
//
// # Retry
//
// Connection-down and timeout failures discard the connection and retry the
// same search after a constant interval, indefinitely unless max_retries is
// set. Any other protocol error fails the attempt immediately.
package ldap
