package domain

// FieldMapping names the raw attributes a backend uses for each Record field.
// An empty name means the backend never reports that field.
type FieldMapping struct {
	ID          string
	Username    string
	Alias       string
	Email       string
	Status      string
	DisplayName string

	// PrincipalName is consulted when Email is empty. Its value is only
	// used when it looks like an address (contains "@").
	PrincipalName string
}

// DirectoryMapping is the attribute layout of the institutional directory.
// All three backends normalise their output to these names.
var DirectoryMapping = FieldMapping{
	ID:            "universityid",
	Username:      "uid",
	Alias:         "mail",
	Email:         "mail",
	Status:        "pustatus",
	DisplayName:   "cn",
	PrincipalName: "eduPersonPrincipalName",
}

// Attribute returns the raw attribute name used to search on field.
func (m FieldMapping) Attribute(field SearchField) (string, bool) {
	var name string
	switch field {
	case SearchID:
		name = m.ID
	case SearchUsername:
		name = m.Username
	case SearchEmail:
		name = m.Email
	case SearchAlias:
		name = m.Alias
	}
	return name, name != ""
}
