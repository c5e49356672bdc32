package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	v := Default()
	assert.Equal(t, "Author Profile", v.AuthorProfileRole)
	assert.True(t, v.IsPublicField("profile_name"))
	assert.False(t, v.IsPublicField("profile_phone"))
}

func TestContributorRole(t *testing.T) {
	v := Default()
	assert.Equal(t, "editor", v.ContributorRole("editor"))
	assert.Equal(t, "author", v.ContributorRole("adviser"))
	assert.Equal(t, "author", v.ContributorRole("illustrator"))
	assert.Equal(t, "author", v.ContributorRole(""))
}

func TestLoad_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	body := `
author_profile_role: "Profile"
public_profile_fields:
  - profile_id
  - profile_name
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Profile", v.AuthorProfileRole)
	assert.False(t, v.IsPublicField("profile_email"))
	// contributor roles keep defaults when not overridden
	assert.Equal(t, "editor", v.ContributorRole("editor"))
}

func TestLoad_EmptyPath(t *testing.T) {
	v, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().AuthorProfileRole, v.AuthorProfileRole)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/vocab.yaml")
	assert.Error(t, err)
}
