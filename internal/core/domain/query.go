package domain

import (
	"fmt"
	"strings"
)

// NumericIDMinDigits is the length a pure digit query must exceed
// before it is also tried as a directory id.
const NumericIDMinDigits = 6

// Query is a classified lookup input.
type Query struct {
	// Raw is the trimmed input.
	Raw string

	// Email is set when Raw contains "@".
	Email bool

	// Handle is the username/alias candidate: the local part for an
	// email query, Raw otherwise.
	Handle string

	// Numeric is set when Handle is all digits and longer than
	// NumericIDMinDigits.
	Numeric bool
}

// ParseQuery validates and classifies a raw lookup input.
// Characters outside letters, digits and ". _ @ + -" are rejected
// before the input reaches any backend.
func ParseQuery(raw string) (Query, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Query{}, fmt.Errorf("%w: empty query", ErrInvalidInput)
	}
	for _, c := range raw {
		if !isQueryRune(c) {
			return Query{}, fmt.Errorf("%w: character %q not allowed in %q", ErrInvalidInput, c, raw)
		}
	}

	q := Query{Raw: raw, Handle: raw}
	if local, _, ok := strings.Cut(raw, "@"); ok {
		q.Email = true
		q.Handle = local
	}
	q.Numeric = len(q.Handle) > NumericIDMinDigits && isDigits(q.Handle)
	return q, nil
}

func isQueryRune(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '@', c == '+', c == '-':
		return true
	default:
		return false
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// EmailFor builds the institutional address of a handle.
func EmailFor(handle, emailDomain string) string {
	return handle + "@" + emailDomain
}

// PlanAttempts returns the ordered attempts for a query. Within each field
// variant the backends are tried in trust order. Duplicate attempts keep
// their first position only.
func PlanAttempts(q Query, emailDomain string) []Attempt {
	var plan []Attempt
	seen := make(map[Attempt]bool)
	add := func(b Backend, f SearchField, v string) {
		if v == "" {
			return
		}
		a := Attempt{Backend: b, Field: f, Value: v}
		if seen[a] {
			return
		}
		seen[a] = true
		plan = append(plan, a)
	}

	h := q.Handle
	derived := ""
	if h != "" {
		derived = EmailFor(h, emailDomain)
	}

	exact := derived
	if q.Email {
		exact = q.Raw
	}
	add(BackendLDAP, SearchEmail, exact)
	add(BackendWebdir, SearchEmail, exact)
	add(BackendLDAPCmd, SearchEmail, exact)

	add(BackendLDAP, SearchUsername, h)
	add(BackendLDAP, SearchEmail, derived)
	add(BackendWebdir, SearchUsername, h)
	add(BackendWebdir, SearchAlias, h)
	add(BackendLDAPCmd, SearchUsername, h)
	add(BackendLDAPCmd, SearchEmail, derived)

	if q.Numeric {
		add(BackendLDAP, SearchID, h)
		add(BackendLDAPCmd, SearchID, h)
	}

	return plan
}
