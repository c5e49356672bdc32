package profiles

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/vocab"
)

func TestFlattenProfileFields(t *testing.T) {
	extra := archive.Extra{
		"profile_id":      json.RawMessage(`"user-1"`),
		"profile_name":    json.RawMessage(`"Jane Doe"`),
		"profile_title":   json.RawMessage(`{"name":"Professor","qcode":"prof"}`),
		"profile_country": json.RawMessage(`{"name":"Australia","qcode":"au","region":"Oceania"}`),
		"profile_phone":   json.RawMessage(`"12345"`),
		"internal_note":   json.RawMessage(`"hidden"`),
	}

	got := FlattenProfileFields(extra, vocab.Default())

	assert.Equal(t, "user-1", got["profile_id"])
	assert.Equal(t, "Jane Doe", got["name"])
	assert.Equal(t, "Professor", got["title"])
	assert.Equal(t, "Australia", got["country"])
	assert.Equal(t, "Oceania", got["region"])
	// non-public keys are dropped
	_, hasPhone := got["phone"]
	assert.False(t, hasPhone)
	_, hasNote := got["internal_note"]
	assert.False(t, hasNote)
}

func TestFlattenProfileFields_QCodeFallback(t *testing.T) {
	extra := archive.Extra{
		"profile_title": json.RawMessage(`{"qcode":"dr"}`),
	}
	got := FlattenProfileFields(extra, vocab.Default())
	assert.Equal(t, "dr", got["title"])
}

func TestProjectProfile(t *testing.T) {
	item := &archive.Item{
		GUID: "urn:profile-1",
		Extra: archive.Extra{
			"profile_id":   json.RawMessage(`"user-1"`),
			"profile_name": json.RawMessage(`"Jane Doe"`),
		},
	}

	p := ProjectProfile(item, vocab.Default(), "http://api/author_profiles/user-1")

	assert.Equal(t, "urn:profile-1", p["guid"])
	assert.Equal(t, "http://api/author_profiles/user-1", p["uri"])
	assert.Equal(t, "Jane Doe", p["name"])
	// raw extra is never exposed
	_, hasExtra := p["extra"]
	assert.False(t, hasExtra)
	_, hasHeadline := p["headline"]
	assert.False(t, hasHeadline)
}
