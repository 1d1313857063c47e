package ldap

import "strings"

// TopLevelAttributes are DN components shared by every entry.
// They are not folded into an entry's attributes.
var TopLevelAttributes = []string{"o", "c"}

// PublicAttributes are visible to anonymous off-campus clients.
var PublicAttributes = []string{
	"cn",
	"displayName",
	"givenName",
	"mail",
	"objectClass",
	"pudisplayname",
	"sn",
}

// FullAttributes are visible to clients with full directory access.
var FullAttributes = []string{
	"cn",
	"displayName",
	"eduPersonAffiliation",
	"eduPersonEntitlement",
	"eduPersonPrimaryAffiliation",
	"eduPersonPrincipalName",
	"facsimileTelephoneNumber",
	"givenName",
	"loginShell",
	"mail",
	"objectClass",
	"ou",
	"puacademiclevel",
	"puclassyear",
	"pudisplayname",
	"puhomedepartmentnumber",
	"puinterofficeaddress",
	"purescollege",
	"pustatus",
	"sn",
	"street",
	"telephoneNumber",
	"title",
	"uid",
	"universityid",
	"universityidref",
}

// attrSet is a case-insensitive set of attribute names.
type attrSet map[string]struct{}

func newAttrSet(names ...string) attrSet {
	s := make(attrSet, len(names))
	for _, n := range names {
		s.add(n)
	}
	return s
}

func (s attrSet) add(name string) {
	s[strings.ToLower(name)] = struct{}{}
}

func (s attrSet) has(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

func (s attrSet) intersect(other attrSet) int {
	n := 0
	for k := range s {
		if _, ok := other[k]; ok {
			n++
		}
	}
	return n
}

var (
	publicSet   = newAttrSet(PublicAttributes...)
	fullSet     = newAttrSet(FullAttributes...)
	topLevelSet = newAttrSet(TopLevelAttributes...)
)

// isRestricted reports whether observed attribute names indicate a
// public-only view of the directory.
func isRestricted(observed attrSet) bool {
	return observed.intersect(fullSet) <= len(publicSet)
}
