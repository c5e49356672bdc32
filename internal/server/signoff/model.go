// Package signoff implements the author sign-off workflow: per-article
// records of pending review requests and completed sign-offs, migration of
// the legacy single-signer record shape, approval token gating of asset
// URLs, and the single persistence choke point all mutations route through.
package signoff

import (
	"time"

	"github.com/google/uuid"
)

// ExtraKey is the article extra-metadata key owning the sign-off record.
const ExtraKey = "publish_sign_off"

// FormatMultiReviewer tags records in the current multi-reviewer shape.
// Records written before tagging are recognized by their requester_id key;
// the flat legacy single-signer shape by its user_id key.
const FormatMultiReviewer = "multi_reviewer"

// SignOffAuthor is the author-identity snapshot captured at sign time.
type SignOffAuthor struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Institute string `json:"institute"`
	Email     string `json:"email"`
	Country   string `json:"country"`
	OrcidID   string `json:"orcid_id"`
}

// Warrants are the boolean warrants given as part of a sign-off.
type Warrants struct {
	NoCopyrightInfringements bool `json:"no_copyright_infringements"`
	IndemnifyAgainstLoss     bool `json:"indemnify_against_loss"`
	ReadyForPublishing       bool `json:"ready_for_publishing"`
}

// Consent records the author's consent selections and signature text.
type Consent struct {
	Signature           string `json:"signature"`
	Contact             bool   `json:"contact"`
	PersonalInformation bool   `json:"personal_information"`
	MultimediaUsage     bool   `json:"multimedia_usage"`
}

// AuthorSignOff is one completed sign-off: a point-in-time attestation,
// immutable once written. Re-signing replaces the whole entry.
type AuthorSignOff struct {
	UserID         uuid.UUID     `json:"user_id"`
	SignDate       time.Time     `json:"sign_date"`
	VersionSigned  int           `json:"version_signed"`
	ArticleName    string        `json:"article_name"`
	FundingSource  string        `json:"funding_source"`
	Affiliation    string        `json:"affiliation"`
	CopyrightTerms string        `json:"copyright_terms"`
	Author         SignOffAuthor `json:"author"`
	Warrants       Warrants      `json:"warrants"`
	Consent        Consent       `json:"consent"`
}

// PendingReview is an outstanding sign-off request sent to one user.
type PendingReview struct {
	UserID  uuid.UUID `json:"user_id"`
	Sent    time.Time `json:"sent"`
	Expires time.Time `json:"expires"`
}

// Record is the per-article publish sign-off record in its current
// multi-reviewer shape. Both lists are ordered and hold at most one entry
// per user; updates go through the upsert methods so that invariant is
// enforced structurally.
type Record struct {
	Format         string          `json:"format"`
	RequesterID    uuid.UUID       `json:"requester_id"`
	RequestSent    time.Time       `json:"request_sent"`
	PendingReviews []PendingReview `json:"pending_reviews"`
	SignOffs       []AuthorSignOff `json:"sign_offs"`
}

// NewRecord returns an empty record for the given requester.
func NewRecord(requesterID uuid.UUID, requestSent time.Time) *Record {
	return &Record{
		Format:         FormatMultiReviewer,
		RequesterID:    requesterID,
		RequestSent:    requestSent,
		PendingReviews: []PendingReview{},
		SignOffs:       []AuthorSignOff{},
	}
}

// normalize stamps the format tag and replaces nil lists with empty ones so
// persisted records always marshal as [] rather than null.
func (r *Record) normalize() {
	r.Format = FormatMultiReviewer
	if r.PendingReviews == nil {
		r.PendingReviews = []PendingReview{}
	}
	if r.SignOffs == nil {
		r.SignOffs = []AuthorSignOff{}
	}
}

// UpsertSignOff replaces any existing sign-off by the same user and appends
// the new entry at the end of the list.
func (r *Record) UpsertSignOff(entry AuthorSignOff) {
	r.SignOffs = removeSignOff(r.SignOffs, entry.UserID)
	r.SignOffs = append(r.SignOffs, entry)
}

// RemoveSignOff drops the sign-off entry for the given user, leaving the
// rest intact. It reports whether an entry was removed.
func (r *Record) RemoveSignOff(userID uuid.UUID) bool {
	before := len(r.SignOffs)
	r.SignOffs = removeSignOff(r.SignOffs, userID)
	return len(r.SignOffs) != before
}

// UpsertPendingReview replaces any pending entry for the same user and
// appends the fresh one.
func (r *Record) UpsertPendingReview(review PendingReview) {
	r.PendingReviews = removePendingReview(r.PendingReviews, review.UserID)
	r.PendingReviews = append(r.PendingReviews, review)
}

// RemovePendingReview drops the pending entry for the given user.
func (r *Record) RemovePendingReview(userID uuid.UUID) {
	r.PendingReviews = removePendingReview(r.PendingReviews, userID)
}

// SignOffFor returns the sign-off entry for the given user, if any.
func (r *Record) SignOffFor(userID uuid.UUID) (AuthorSignOff, bool) {
	for _, s := range r.SignOffs {
		if s.UserID == userID {
			return s, true
		}
	}
	return AuthorSignOff{}, false
}

func removeSignOff(list []AuthorSignOff, userID uuid.UUID) []AuthorSignOff {
	out := make([]AuthorSignOff, 0, len(list))
	for _, s := range list {
		if s.UserID != userID {
			out = append(out, s)
		}
	}
	return out
}

func removePendingReview(list []PendingReview, userID uuid.UUID) []PendingReview {
	out := make([]PendingReview, 0, len(list))
	for _, p := range list {
		if p.UserID != userID {
			out = append(out, p)
		}
	}
	return out
}
