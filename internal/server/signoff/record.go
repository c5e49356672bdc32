package signoff

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/server/archive"
)

// ProfileLookup supplies flattened public profile fields per user id; used
// to fill the author-identity snapshot when migrating legacy records.
type ProfileLookup interface {
	FieldsByUserIDs(ctx context.Context, userIDs []string) (map[string]map[string]string, error)
}

// legacyRecord is the flat single-signer shape written before the
// multi-reviewer format existed.
type legacyRecord struct {
	UserID        string    `json:"user_id"`
	SignDate      time.Time `json:"sign_date"`
	FundingSource string    `json:"funding_source"`
	Affiliation   string    `json:"affiliation"`
}

// recordProbe discriminates the stored shape: the explicit format tag wins,
// requester_id marks pre-tag multi-reviewer data, user_id marks the legacy
// flat shape.
type recordProbe struct {
	Format      string `json:"format"`
	RequesterID string `json:"requester_id"`
	UserID      string `json:"user_id"`
}

// RecordFromItem reads the item's sign-off record, migrating the legacy
// shape to the current one. An item with no stored sign-off data yields
// (nil, nil): "no record", not an empty record. Malformed identifiers fail
// with a validation error. Missing profile data during migration degrades
// to empty identity fields.
func RecordFromItem(ctx context.Context, item *archive.Item, profiles ProfileLookup) (*Record, error) {
	raw, ok := item.Extra[ExtraKey]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	probe := recordProbe{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, common.BadRequest("publish_sign_off record is malformed")
	}

	switch {
	case probe.Format == FormatMultiReviewer || probe.RequesterID != "":
		record := &Record{}
		if err := json.Unmarshal(raw, record); err != nil {
			return nil, common.BadRequest("publish_sign_off record has malformed user identifiers")
		}
		record.normalize()
		return record, nil

	case probe.UserID != "":
		return migrateLegacyRecord(ctx, item, raw, profiles)

	default:
		return nil, nil
	}
}

// migrateLegacyRecord wraps a legacy flat record in the multi-reviewer
// shape: one completed sign-off synthesized from the flat fields plus a
// profile lookup for identity, all warrant and consent booleans true
// (legacy sign-offs carried implicit consent), empty pending reviews.
func migrateLegacyRecord(ctx context.Context, item *archive.Item, raw json.RawMessage, profiles ProfileLookup) (*Record, error) {
	legacy := legacyRecord{}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, common.BadRequest("legacy publish_sign_off record is malformed")
	}

	userID, err := uuid.Parse(legacy.UserID)
	if err != nil {
		return nil, common.BadRequest("user_id %q is not a valid identifier", legacy.UserID)
	}

	var identity map[string]string
	if profiles != nil {
		fields, err := profiles.FieldsByUserIDs(ctx, []string{userID.String()})
		if err == nil {
			identity = fields[userID.String()]
		}
	}

	entry := AuthorSignOff{
		UserID:        userID,
		SignDate:      legacy.SignDate,
		VersionSigned: item.Version,
		FundingSource: legacy.FundingSource,
		Affiliation:   legacy.Affiliation,
		Author: SignOffAuthor{
			Name:      identity["name"],
			Title:     identity["title"],
			Institute: identity["institute"],
			Email:     identity["email"],
			Country:   identity["country"],
			OrcidID:   identity["orcid_id"],
		},
		Warrants: Warrants{
			NoCopyrightInfringements: true,
			IndemnifyAgainstLoss:     true,
			ReadyForPublishing:       true,
		},
		Consent: Consent{
			Contact:             true,
			PersonalInformation: true,
			MultimediaUsage:     true,
		},
	}

	record := NewRecord(userID, legacy.SignDate)
	record.SignOffs = append(record.SignOffs, entry)
	return record, nil
}
