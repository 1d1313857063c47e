package ldapcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

const twoEntries = `# extended LDIF
#
# LDAPv3
# base <o=Princeton University,c=US> with scope subtree
# filter: mail=*doe*
#

# jdoe, People, Princeton University, US
dn: uid=jdoe,o=Princeton University,c=US
uid: jdoe
mail: john.doe@princeton.edu
objectClass: top
objectClass: person
objectClass: pu

# jroe, People, Princeton University, US
dn: uid=jroe,o=Princeton University,c=US
uid: jroe
ou: Computer Science
ou: Mathematics

# search result
search: 2
result: 0 Success

# numResponses: 3
# numEntries: 2
`

func TestParse_TwoEntriesWithRepeatedFields(t *testing.T) {
	records := Parse(twoEntries)

	require.Len(t, records, 2)
	assert.Equal(t, domain.RawFields{
		"uid":         {"jdoe"},
		"mail":        {"john.doe@princeton.edu"},
		"objectclass": {"top", "person", "pu"},
	}, records[0])
	assert.Equal(t, domain.RawFields{
		"uid": {"jroe"},
		"ou":  {"Computer Science", "Mathematics"},
	}, records[1])
}

func TestParse_DropsStatusLines(t *testing.T) {
	records := Parse("dn: uid=a\nuid: a\nsearch: 2\nresult: 0 Success\n")

	require.Len(t, records, 1)
	assert.False(t, records[0].Has("search"))
	assert.False(t, records[0].Has("result"))
}

func TestParse_Base64AndContinuation(t *testing.T) {
	out := "dn: uid=a,o=X\r\n" +
		"uid: a\r\n" +
		"cn:: Sm9zw6kgw4FsdmFyZXo=\r\n" +
		"description: a long\r\n" +
		"  wrapped value\r\n"

	records := Parse(out)

	require.Len(t, records, 1)
	assert.Equal(t, []string{"José Álvarez"}, records[0]["cn"])
	assert.Equal(t, []string{"a long wrapped value"}, records[0]["description"])
}

func TestParse_ValueKeepsColons(t *testing.T) {
	records := Parse("dn: uid=a\nuid: a\nlabeleduri: https://example.edu/~a\n")

	require.Len(t, records, 1)
	assert.Equal(t, []string{"https://example.edu/~a"}, records[0]["labeleduri"])
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("# numEntries: 0\nresult: 0 Success\n"))
}

func TestFirst_SkipsRecordsWithoutKey(t *testing.T) {
	records := Parse("dn: cn=group\ncn: group\n\ndn: uid=b\nuid: b\n\ndn: uid=c\nuid: c\n")

	r, ok := First(records)

	require.True(t, ok)
	assert.Equal(t, []string{"b"}, r["uid"])

	_, ok = First(records[:1])
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		value string
		email bool
		want  string
		ok    bool
	}{
		{"plain", "jdoe", false, "jdoe", true},
		{"lowercased", "JDoe", false, "jdoe", true},
		{"dots digits underscore", "j.doe_99", false, "j.doe_99", true},
		{"shell injection", "rm -rf /; id", false, "", false},
		{"filter injection", "*)(uid=*", false, "", false},
		{"at sign in username", "jdoe@princeton.edu", false, "", false},
		{"email", "JDoe@Princeton.edu", true, "jdoe@princeton.edu", true},
		{"email two ats", "a@b@c", true, "", false},
		{"email no at", "jdoe", true, "", false},
		{"email empty local", "@princeton.edu", true, "", false},
		{"email bad domain", "jdoe@prince ton.edu", true, "", false},
		{"empty", "", false, "", false},
		{"plus", "j+doe", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sanitize(tt.value, tt.email)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
