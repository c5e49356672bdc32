package signoff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/logging"
	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/auth"
	"github.com/meridianpress/newsdesk/internal/server/config"
	"github.com/meridianpress/newsdesk/internal/server/mailer"
	"github.com/meridianpress/newsdesk/internal/server/users"
)

// Submission is a completed sign-off form as submitted by the author.
type Submission struct {
	UserID         uuid.UUID     `json:"user_id"`
	VersionSigned  int           `json:"version_signed"`
	ArticleName    string        `json:"article_name"`
	FundingSource  string        `json:"funding_source"`
	Affiliation    string        `json:"affiliation"`
	CopyrightTerms string        `json:"copyright_terms"`
	Author         SignOffAuthor `json:"author"`
	Warrants       Warrants      `json:"warrants"`
	Consent        Consent       `json:"consent"`
}

type Service struct {
	items     archive.Repository
	users     users.Repository
	profiles  ProfileLookup
	publisher *Publisher
	mailer    mailer.Sender
	issuer    *auth.Issuer
	cfg       *config.Config
	logger    logging.Logger
}

func NewService(items archive.Repository, userRepo users.Repository, profileLookup ProfileLookup,
	publisher *Publisher, sender mailer.Sender, issuer *auth.Issuer, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		items:     items,
		users:     userRepo,
		profiles:  profileLookup,
		publisher: publisher,
		mailer:    sender,
		issuer:    issuer,
		cfg:       cfg,
		logger:    logger.With("module", "signoff"),
	}
}

// GetItem fetches an article, mapping a repository miss to a client-facing
// 404.
func (s *Service) GetItem(ctx context.Context, itemID string) (*archive.Item, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("Content not found")
		}
		return nil, err
	}
	return item, nil
}

// Record reads the item's sign-off record, migrating legacy data. Returns
// nil when the item has no record.
func (s *Service) Record(ctx context.Context, item *archive.Item) (*Record, error) {
	return RecordFromItem(ctx, item, s.profiles)
}

// RecordSignOff registers a completed sign-off: any previous entry by the
// same user is replaced, the user's pending review is cleared, the record
// is persisted and a copy of the attestation is mailed to the author.
func (s *Service) RecordSignOff(ctx context.Context, itemID string, sub Submission) error {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	record, err := s.Record(ctx, item)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if record == nil {
		record = NewRecord(sub.UserID, now)
	}

	record.UpsertSignOff(AuthorSignOff{
		UserID:         sub.UserID,
		SignDate:       now,
		VersionSigned:  sub.VersionSigned,
		ArticleName:    sub.ArticleName,
		FundingSource:  sub.FundingSource,
		Affiliation:    sub.Affiliation,
		CopyrightTerms: sub.CopyrightTerms,
		Author:         sub.Author,
		Warrants:       sub.Warrants,
		Consent:        sub.Consent,
	})
	record.RemovePendingReview(sub.UserID)

	if err := s.publisher.Apply(ctx, item, record); err != nil {
		return err
	}

	s.queueSignOffCopy(ctx, item, sub, now)
	return nil
}

// RemoveSignOff drops the sign-off entry for the given user. An item with
// no sign-off record at all is a client error.
func (s *Service) RemoveSignOff(ctx context.Context, itemID string, userID uuid.UUID) error {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	record, err := s.Record(ctx, item)
	if err != nil {
		return err
	}
	if record == nil {
		return common.BadRequest("No sign offs found on the item")
	}

	record.RemoveSignOff(userID)
	return s.publisher.Apply(ctx, item, record)
}

// RequestReviews sends sign-off requests to the given users: each target
// gets a fresh pending-review entry stamped with the configured expiry and
// a tokenized approval link by email. The record's requester and request
// time always reflect the latest call.
func (s *Service) RequestReviews(ctx context.Context, itemID string, requesterID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return common.BadRequest("authors field is required")
	}

	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	targets, err := s.resolveTargets(ctx, userIDs)
	if err != nil {
		return err
	}

	record, err := s.Record(ctx, item)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if record == nil {
		record = NewRecord(requesterID, now)
	} else {
		record.RequesterID = requesterID
		record.RequestSent = now
	}

	expires := now.Add(s.cfg.SignOffExpiration)
	for _, target := range targets {
		record.UpsertPendingReview(PendingReview{UserID: target.id, Sent: now, Expires: expires})
	}

	if err := s.publisher.Apply(ctx, item, record); err != nil {
		return err
	}

	for _, target := range targets {
		s.queueReviewRequest(ctx, item, target, expires)
	}
	return nil
}

type reviewTarget struct {
	id    uuid.UUID
	email string
}

// resolveTargets validates every requested user against the directory and
// resolves their contact address, preferring the profile email when the
// user has an author profile.
func (s *Service) resolveTargets(ctx context.Context, userIDs []uuid.UUID) ([]reviewTarget, error) {
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id.String())
	}

	profileFields, err := s.profiles.FieldsByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	targets := make([]reviewTarget, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.NotFound("User not found")
			}
			return nil, err
		}

		email := user.Email
		if profileEmail := profileFields[id.String()]["email"]; profileEmail != "" {
			email = profileEmail
		}
		targets = append(targets, reviewTarget{id: id, email: email})
	}
	return targets, nil
}

func (s *Service) queueSignOffCopy(ctx context.Context, item *archive.Item, sub Submission, signDate time.Time) {
	if sub.Author.Email == "" {
		s.logger.Warn(ctx, "sign-off recorded without author email, skipping copy", "item_id", item.ID)
		return
	}

	text, html, err := mailer.RenderSignOffCopy(mailer.SignOffCopyData{
		AppName:       s.cfg.ApplicationName,
		ItemName:      item.Name(),
		AuthorName:    sub.Author.Name,
		SignDate:      signDate,
		VersionSigned: sub.VersionSigned,
	})
	if err != nil {
		s.logger.Error(ctx, "rendering sign-off copy email", "error", err.Error())
		return
	}

	// editorial staff get a copy of every completed sign-off
	recipients := append([]string{sub.Author.Email}, s.cfg.AdminEmails...)

	s.mailer.Queue(mailer.Message{
		To:       recipients,
		Subject:  fmt.Sprintf("Completed: Author Approval Request for '%s'", item.Name()),
		TextBody: text,
		HTMLBody: html,
	})
}

func (s *Service) queueReviewRequest(ctx context.Context, item *archive.Item, target reviewTarget, expires time.Time) {
	if target.email == "" {
		s.logger.Warn(ctx, "review target has no email, skipping request mail",
			"item_id", item.ID, "user_id", target.id.String())
		return
	}

	token, err := s.issuer.Mint(item.ID, target.id, auth.ScopeAuthorApproval, s.cfg.SignOffExpiration)
	if err != nil {
		s.logger.Error(ctx, "minting approval token", "error", err.Error())
		return
	}

	text, html, err := mailer.RenderReviewRequest(mailer.ReviewRequestData{
		AppName:     s.cfg.ApplicationName,
		ItemName:    item.Name(),
		ApprovalURL: strings.TrimRight(s.cfg.ContentAPIURL, "/") + "/sign_off_requests/" + token,
		Expires:     expires,
	})
	if err != nil {
		s.logger.Error(ctx, "rendering review request email", "error", err.Error())
		return
	}

	s.mailer.Queue(mailer.Message{
		To:       []string{target.email},
		Subject:  fmt.Sprintf("Author Approval Request for '%s'", item.Name()),
		TextBody: text,
		HTMLBody: html,
	})
}
