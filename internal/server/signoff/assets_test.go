package signoff

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/auth"
)

func TestTokenizeAssetURLs_BodyHTML(t *testing.T) {
	env := newTestEnv(t)
	env.service.cfg.ExternalStorageMarker = "s3.amazonaws.com"
	authorID := uuid.New()

	item := env.item.Clone()
	item.BodyHTML = `<p>before</p>` +
		`<img src="/api/upload-raw/pic-one.jpg">` +
		`<img src="/api/upload-raw/pic-two.png">` +
		`<p>after</p>`

	require.NoError(t, env.service.TokenizeAssetURLs(item, authorID))

	assert.NotContains(t, item.BodyHTML, "/api/upload-raw/")
	assert.Contains(t, item.BodyHTML, "/api/sign_off_requests/upload-raw/")
	assert.Contains(t, item.BodyHTML, "<p>before</p>")
	assert.Contains(t, item.BodyHTML, "<p>after</p>")

	// each rewritten URL carries a token bound to the asset and the author
	issuer := auth.NewIssuer("newsdesk", []byte("test-secret"), 0)
	filenames := map[string]bool{}
	for _, part := range strings.Split(item.BodyHTML, `"`) {
		token, ok := strings.CutPrefix(part, tokenizedPrefix)
		if !ok {
			continue
		}
		claims, err := issuer.Verify(token, auth.ScopeUploadRaw)
		require.NoError(t, err)
		assert.Equal(t, authorID.String(), claims.AuthorID)
		filenames[claims.ItemID] = true
	}
	assert.Equal(t, map[string]bool{"pic-one.jpg": true, "pic-two.png": true}, filenames)
}

func TestTokenizeAssetURLs_Renditions(t *testing.T) {
	env := newTestEnv(t)
	env.service.cfg.ExternalStorageMarker = "s3.amazonaws.com"
	authorID := uuid.New()

	external := "https://bucket.s3.amazonaws.com/api/upload-raw/external.jpg"
	unrelated := "https://cdn.example.org/static/logo.png"

	item := env.item.Clone()
	item.Associations = map[string]*archive.Association{
		"editor_0": {
			Type: archive.TypePicture,
			Renditions: map[string]*archive.Rendition{
				"original":  {Href: "http://localhost:8080/api/upload-raw/local.jpg"},
				"viewImage": {Href: external},
				"thumbnail": {Href: unrelated},
			},
		},
		"editor_1": nil,
	}

	require.NoError(t, env.service.TokenizeAssetURLs(item, authorID))

	renditions := item.Associations["editor_0"].Renditions
	assert.Contains(t, renditions["original"].Href, tokenizedPrefix)
	assert.True(t, strings.HasPrefix(renditions["original"].Href, "http://localhost:8080"))
	assert.Equal(t, external, renditions["viewImage"].Href, "external storage hrefs stay untouched")
	assert.Equal(t, unrelated, renditions["thumbnail"].Href, "hrefs without the raw-upload prefix stay untouched")
}

func TestTokenizeAssetURLs_NoAssets(t *testing.T) {
	env := newTestEnv(t)
	authorID := uuid.New()

	item := env.item.Clone()
	item.BodyHTML = "<p>plain text article</p>"

	require.NoError(t, env.service.TokenizeAssetURLs(item, authorID))
	assert.Equal(t, "<p>plain text article</p>", item.BodyHTML)
}
