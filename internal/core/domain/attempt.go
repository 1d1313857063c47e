package domain

import "fmt"

// Backend identifies one of the directory backends.
type Backend string

// Known backends, listed in trust order.
const (
	// BackendLDAP is the directory-protocol server queried directly.
	BackendLDAP Backend = "ldap"

	// BackendWebdir is the public people-search web page.
	BackendWebdir Backend = "webdir"

	// BackendLDAPCmd is the directory command-line tool and its HTTP proxy.
	BackendLDAPCmd Backend = "ldapcmd"
)

// Backends lists every backend in trust order.
var Backends = []Backend{BackendLDAP, BackendWebdir, BackendLDAPCmd}

// IsValid returns true if the backend is recognised.
func (b Backend) IsValid() bool {
	switch b {
	case BackendLDAP, BackendWebdir, BackendLDAPCmd:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b Backend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b Backend) Description() string {
	switch b {
	case BackendLDAP:
		return "LDAP directory"
	case BackendWebdir:
		return "Web people search"
	case BackendLDAPCmd:
		return "ldapsearch command / proxy"
	default:
		return "Unknown"
	}
}

// SearchField is the record field an attempt searches on.
type SearchField string

// Searchable fields.
const (
	SearchID       SearchField = "id"
	SearchUsername SearchField = "username"
	SearchAlias    SearchField = "alias"
	SearchEmail    SearchField = "email"
)

// String returns the string representation.
func (f SearchField) String() string {
	return string(f)
}

// Attempt is one unit of work for the orchestrator: ask Backend for the
// record whose Field equals Value.
type Attempt struct {
	Backend Backend
	Field   SearchField
	Value   string
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s(%s=%s)", a.Backend, a.Field, a.Value)
}

// Outcome is the kind of a LookupResult.
type Outcome int

const (
	// OutcomeNoMatch means the backend found nothing.
	OutcomeNoMatch Outcome = iota

	// OutcomeMatched means the backend returned a record.
	OutcomeMatched

	// OutcomeRejected means the backend refused the value or field.
	OutcomeRejected
)

// String returns the string representation.
func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeRejected:
		return "rejected"
	default:
		return "no_match"
	}
}

// LookupResult is what a backend returns for one attempt.
type LookupResult struct {
	Outcome Outcome
	Record  Record
	Reason  string
}

// Matched wraps a record found by a backend.
func Matched(r Record) LookupResult {
	return LookupResult{Outcome: OutcomeMatched, Record: r}
}

// NoMatch reports that a backend found nothing.
func NoMatch() LookupResult {
	return LookupResult{Outcome: OutcomeNoMatch}
}

// Rejected reports that a backend refused the value or field.
func Rejected(format string, args ...any) LookupResult {
	return LookupResult{Outcome: OutcomeRejected, Reason: fmt.Sprintf(format, args...)}
}

// IsMatch reports whether the result carries a record.
func (r LookupResult) IsMatch() bool {
	return r.Outcome == OutcomeMatched
}
