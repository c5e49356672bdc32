package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/logging"
	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/vocab"
)

type fakeRepo struct {
	profiles []*archive.Item
	err      error

	gotURIs []string
}

func (f *fakeRepo) ListProfiles(ctx context.Context, role string, limit, offset int) ([]*archive.Item, error) {
	return f.profiles, f.err
}

func (f *fakeRepo) FindProfilesByAuthorURIs(ctx context.Context, role string, uris []string) ([]*archive.Item, error) {
	f.gotURIs = uris
	if f.err != nil {
		return nil, f.err
	}
	var out []*archive.Item
	for _, p := range f.profiles {
		for _, uri := range uris {
			if len(p.Authors) > 0 && p.Authors[0].URI == uri {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func profileItem(userID, name string) *archive.Item {
	return &archive.Item{
		ID:      "profile-" + userID,
		GUID:    "urn:profile-" + userID,
		Authors: []archive.Author{{Code: userID, Role: "Author Profile", URI: "newsdesk:user:" + userID}},
		Extra: archive.Extra{
			"profile_id":        json.RawMessage(`"` + userID + `"`),
			"profile_name":      json.RawMessage(`"` + name + `"`),
			"profile_institute": json.RawMessage(`"Meridian Lab"`),
		},
	}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, vocab.Default(), "http://localhost:8080/api", "newsdesk", testLogger())
}

func TestFindOne_NotFound(t *testing.T) {
	s := newTestService(&fakeRepo{})
	_, err := s.FindOne(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestFindOne_Projection(t *testing.T) {
	repo := &fakeRepo{profiles: []*archive.Item{profileItem("user-1", "Jane Doe")}}
	s := newTestService(repo)

	p, err := s.FindOne(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p["name"])
	assert.Equal(t, "http://localhost:8080/api/author_profiles/user-1", p["uri"])
	assert.Equal(t, []string{"newsdesk:user:user-1"}, repo.gotURIs)
}

func TestEnrichItemAuthors(t *testing.T) {
	repo := &fakeRepo{profiles: []*archive.Item{profileItem("user-1", "Jane Doe")}}
	s := newTestService(repo)

	item := &archive.Item{
		Authors: []archive.Author{
			{Name: "Jane Doe", Code: "user-1", Role: "writer"},
			{Name: "No Profile", Code: "user-2", Role: "editor"},
		},
	}

	require.NoError(t, s.EnrichItemAuthors(context.Background(), item))

	assert.Equal(t, "Meridian Lab", item.Authors[0].Fields["institute"])
	assert.Equal(t, "Jane Doe", item.Authors[0].Fields["name"])
	// missing profile degrades to no enrichment
	assert.Empty(t, item.Authors[1].Fields)
}

func TestEnrichItemAuthors_SkipsProfileItems(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestService(repo)

	item := profileItem("user-1", "Jane Doe")
	require.NoError(t, s.EnrichItemAuthors(context.Background(), item))
	assert.Nil(t, repo.gotURIs, "profile items must not trigger a batch fetch")
}

func TestFieldsByUserIDs_Empty(t *testing.T) {
	s := newTestService(&fakeRepo{})
	got, err := s.FieldsByUserIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
