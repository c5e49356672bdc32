package signoff

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/server/archive"
)

type stubProfiles struct {
	fields map[string]map[string]string
	err    error
}

func (s *stubProfiles) FieldsByUserIDs(ctx context.Context, ids []string) (map[string]map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fields, nil
}

func itemWithSignOff(raw string) *archive.Item {
	item := &archive.Item{ID: "item-1", Version: 5, Extra: archive.Extra{}}
	if raw != "" {
		item.Extra[ExtraKey] = json.RawMessage(raw)
	}
	return item
}

func TestRecordFromItem_NoRecord(t *testing.T) {
	tests := []struct {
		name string
		item *archive.Item
	}{
		{"no extra", &archive.Item{ID: "item-1"}},
		{"empty extra", itemWithSignOff("")},
		{"null value", itemWithSignOff("null")},
		{"empty object", itemWithSignOff("{}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := RecordFromItem(context.Background(), tt.item, &stubProfiles{})
			require.NoError(t, err)
			assert.Nil(t, record, "absence of data must yield no record, not an empty one")
		})
	}
}

func TestRecordFromItem_CurrentShape(t *testing.T) {
	requester := uuid.New()
	signer := uuid.New()
	raw := `{
		"requester_id": "` + requester.String() + `",
		"request_sent": "2025-01-10T10:00:00Z",
		"pending_reviews": [],
		"sign_offs": [{"user_id": "` + signer.String() + `", "sign_date": "2025-01-11T09:00:00Z", "version_signed": 3}]
	}`

	record, err := RecordFromItem(context.Background(), itemWithSignOff(raw), &stubProfiles{})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, FormatMultiReviewer, record.Format, "reads stamp the explicit format tag")
	assert.Equal(t, requester, record.RequesterID)
	require.Len(t, record.SignOffs, 1)
	assert.Equal(t, signer, record.SignOffs[0].UserID)
	assert.NotNil(t, record.PendingReviews)
}

func TestRecordFromItem_TaggedShape(t *testing.T) {
	requester := uuid.New()
	raw := `{"format": "multi_reviewer", "requester_id": "` + requester.String() + `", "request_sent": "2025-01-10T10:00:00Z"}`

	record, err := RecordFromItem(context.Background(), itemWithSignOff(raw), &stubProfiles{})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Empty(t, record.SignOffs)
	assert.Empty(t, record.PendingReviews)
}

func TestRecordFromItem_LegacyMigration(t *testing.T) {
	userID := uuid.New()
	raw := `{
		"user_id": "` + userID.String() + `",
		"sign_date": "2024-06-01T08:00:00Z",
		"funding_source": "Grant 42",
		"affiliation": "Meridian Lab"
	}`

	profiles := &stubProfiles{fields: map[string]map[string]string{
		userID.String(): {
			"name":      "Jane Doe",
			"title":     "Professor",
			"institute": "Meridian Lab",
			"email":     "jane@example.org",
			"country":   "Australia",
			"orcid_id":  "0000-0001-0002-0003",
		},
	}}

	record, err := RecordFromItem(context.Background(), itemWithSignOff(raw), profiles)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, userID, record.RequesterID)
	assert.Equal(t, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), record.RequestSent)
	assert.Empty(t, record.PendingReviews)
	require.Len(t, record.SignOffs, 1)

	entry := record.SignOffs[0]
	assert.Equal(t, userID, entry.UserID)
	assert.Equal(t, 5, entry.VersionSigned, "version signed comes from the item version")
	assert.Equal(t, "Grant 42", entry.FundingSource)
	assert.Equal(t, "Jane Doe", entry.Author.Name)
	assert.Equal(t, "0000-0001-0002-0003", entry.Author.OrcidID)

	// legacy sign-offs carry implicit consent
	assert.True(t, entry.Warrants.NoCopyrightInfringements)
	assert.True(t, entry.Warrants.IndemnifyAgainstLoss)
	assert.True(t, entry.Warrants.ReadyForPublishing)
	assert.True(t, entry.Consent.Contact)
	assert.True(t, entry.Consent.PersonalInformation)
	assert.True(t, entry.Consent.MultimediaUsage)
	assert.Equal(t, "", entry.Consent.Signature)
	assert.Equal(t, "", entry.ArticleName)
}

func TestRecordFromItem_LegacyMigration_NoProfile(t *testing.T) {
	userID := uuid.New()
	raw := `{"user_id": "` + userID.String() + `", "sign_date": "2024-06-01T08:00:00Z"}`

	record, err := RecordFromItem(context.Background(), itemWithSignOff(raw), &stubProfiles{})
	require.NoError(t, err)
	require.Len(t, record.SignOffs, 1)

	// missing profile degrades to empty identity fields, not an error
	assert.Equal(t, SignOffAuthor{}, record.SignOffs[0].Author)
}

func TestRecordFromItem_MalformedUserID(t *testing.T) {
	raw := `{"user_id": "not-a-uuid", "sign_date": "2024-06-01T08:00:00Z"}`

	_, err := RecordFromItem(context.Background(), itemWithSignOff(raw), &stubProfiles{})
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestRecordFromItem_MalformedRequesterID(t *testing.T) {
	raw := `{"requester_id": "nope", "pending_reviews": [], "sign_offs": []}`

	_, err := RecordFromItem(context.Background(), itemWithSignOff(raw), &stubProfiles{})
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestRecord_UpsertSignOff(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	record := NewRecord(userA, time.Now())

	record.UpsertSignOff(AuthorSignOff{UserID: userA, ArticleName: "first"})
	record.UpsertSignOff(AuthorSignOff{UserID: userB, ArticleName: "other"})
	record.UpsertSignOff(AuthorSignOff{UserID: userA, ArticleName: "second"})

	require.Len(t, record.SignOffs, 2)
	// replaced entry moves to the end, order otherwise preserved
	assert.Equal(t, userB, record.SignOffs[0].UserID)
	assert.Equal(t, userA, record.SignOffs[1].UserID)
	assert.Equal(t, "second", record.SignOffs[1].ArticleName)
}

func TestRecord_MarshalEmptyLists(t *testing.T) {
	record := &Record{RequesterID: uuid.New()}
	record.normalize()

	raw, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pending_reviews":[]`)
	assert.Contains(t, string(raw), `"sign_offs":[]`)
	assert.Contains(t, string(raw), `"format":"multi_reviewer"`)
}
