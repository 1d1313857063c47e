package ldapcmd

import "strings"

// AllowedChars is the character allow-list for command and proxy values.
const AllowedChars = "abcdefghijklmnopqrstuvwxyz.0123456789_"

// Sanitize lowercases value and checks it against AllowedChars.
// An email value must contain exactly one "@" and both of its halves
// must pass on their own.
func Sanitize(value string, email bool) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if !email {
		return v, allowed(v)
	}
	if strings.Count(v, "@") != 1 {
		return "", false
	}
	local, domain, _ := strings.Cut(v, "@")
	if !allowed(local) || !allowed(domain) {
		return "", false
	}
	return v, true
}

func allowed(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(AllowedChars, c) {
			return false
		}
	}
	return true
}
