// Package vocab holds the field-configuration vocabulary: which profile
// fields are public, which author role marks a profile document, and how
// CMS author roles map onto Crossref contributor roles.
package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocab is loaded once at startup and treated as read-only afterwards.
type Vocab struct {
	// AuthorProfileRole tags the documents that are author profiles.
	AuthorProfileRole string `yaml:"author_profile_role"`

	// PublicProfileFields is the allow-list of extra-metadata keys exposed
	// through the content API (all carry the "profile_" prefix except
	// profile_id, which is kept verbatim on projection).
	PublicProfileFields []string `yaml:"public_profile_fields"`

	// ContributorRoles maps CMS author roles to Crossref contributor roles.
	ContributorRoles map[string]string `yaml:"contributor_roles"`
}

// Default returns the built-in vocabulary used when no config file is given.
func Default() *Vocab {
	return &Vocab{
		AuthorProfileRole: "Author Profile",
		PublicProfileFields: []string{
			"profile_id",
			"profile_name",
			"profile_title",
			"profile_institute",
			"profile_email",
			"profile_country",
			"profile_orcid_id",
			"profile_biography",
		},
		ContributorRoles: map[string]string{
			"adviser":     "author",
			"author":      "author",
			"contributor": "author",
			"editor":      "editor",
		},
	}
}

// Load reads a vocabulary file, overlaying the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Vocab, error) {
	v := Default()
	if path == "" {
		return v, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocab config: %w", err)
	}

	loaded := &Vocab{}
	if err := yaml.Unmarshal(raw, loaded); err != nil {
		return nil, fmt.Errorf("parsing vocab config: %w", err)
	}

	if loaded.AuthorProfileRole != "" {
		v.AuthorProfileRole = loaded.AuthorProfileRole
	}
	if len(loaded.PublicProfileFields) > 0 {
		v.PublicProfileFields = loaded.PublicProfileFields
	}
	if len(loaded.ContributorRoles) > 0 {
		v.ContributorRoles = loaded.ContributorRoles
	}

	return v, nil
}

// IsPublicField reports whether the given extra-metadata key may be exposed.
func (v *Vocab) IsPublicField(key string) bool {
	for _, f := range v.PublicProfileFields {
		if f == key {
			return true
		}
	}
	return false
}

// ContributorRole maps a CMS author role to its Crossref contributor role,
// defaulting to "author" for unmapped roles.
func (v *Vocab) ContributorRole(authorRole string) string {
	if role, ok := v.ContributorRoles[authorRole]; ok {
		return role
	}
	return v.ContributorRoles["author"]
}
