package ldap

import (
	"github.com/go-ldap/ldap/v3"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// entryToRaw converts a search entry into raw fields. DN components other
// than the top-level ones are folded in, overriding attributes of the same
// name.
func entryToRaw(e *ldap.Entry) domain.RawFields {
	raw := make(domain.RawFields, len(e.Attributes))
	for _, a := range e.Attributes {
		if len(a.Values) > 0 {
			raw[a.Name] = append([]string(nil), a.Values...)
			continue
		}
		for _, b := range a.ByteValues {
			raw.Add(a.Name, string(b))
		}
	}

	if dn, err := ldap.ParseDN(e.DN); err == nil {
		for _, rdn := range dn.RDNs {
			for _, tv := range rdn.Attributes {
				if topLevelSet.has(tv.Type) {
					continue
				}
				raw.Set(tv.Type, tv.Value)
			}
		}
	}
	return raw
}
