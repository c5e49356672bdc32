package profiles

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/logging"
	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/vocab"
)

type Service struct {
	repo          Repository
	vocab         *vocab.Vocab
	contentAPIURL string
	uriDomain     string
	logger        logging.Logger
}

func NewService(repo Repository, v *vocab.Vocab, contentAPIURL, uriDomain string, logger logging.Logger) *Service {
	return &Service{
		repo:          repo,
		vocab:         v,
		contentAPIURL: strings.TrimRight(contentAPIURL, "/"),
		uriDomain:     uriDomain,
		logger:        logger.With("module", "profiles"),
	}
}

// authorURI is the uri stamped on profile documents for a given user.
func (s *Service) authorURI(userID string) string {
	return fmt.Sprintf("%s:user:%s", s.uriDomain, userID)
}

// profileURI is the public content-API location of a user's profile.
func (s *Service) profileURI(userID string) string {
	return s.contentAPIURL + "/author_profiles/" + url.PathEscape(userID)
}

// Find returns public projections of profile documents, newest first.
func (s *Service) Find(ctx context.Context, limit, offset int) ([]Profile, error) {
	if limit <= 0 {
		limit = 25
	}
	items, err := s.repo.ListProfiles(ctx, s.vocab.AuthorProfileRole, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]Profile, 0, len(items))
	for _, item := range items {
		out = append(out, ProjectProfile(item, s.vocab, s.profileURI(s.profileUserID(item))))
	}
	return out, nil
}

// FindByUserIDs returns public projections for the given users only,
// skipping users without a profile.
func (s *Service) FindByUserIDs(ctx context.Context, userIDs []string) ([]Profile, error) {
	uris := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		uris = append(uris, s.authorURI(id))
	}

	items, err := s.repo.FindProfilesByAuthorURIs(ctx, s.vocab.AuthorProfileRole, uris)
	if err != nil {
		return nil, err
	}

	out := make([]Profile, 0, len(items))
	for _, item := range items {
		out = append(out, ProjectProfile(item, s.vocab, s.profileURI(s.profileUserID(item))))
	}
	return out, nil
}

// FindOne returns the public projection of a single user's profile.
func (s *Service) FindOne(ctx context.Context, userID string) (Profile, error) {
	items, err := s.repo.FindProfilesByAuthorURIs(ctx, s.vocab.AuthorProfileRole, []string{s.authorURI(userID)})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.NotFound("Author profile not found")
	}
	return ProjectProfile(items[0], s.vocab, s.profileURI(userID)), nil
}

// profileUserID resolves the user a profile document belongs to: the first
// author's code, falling back to the profile_id extra field.
func (s *Service) profileUserID(item *archive.Item) string {
	if len(item.Authors) > 0 && item.Authors[0].Code != "" {
		return item.Authors[0].Code
	}
	return item.Extra.String("profile_id")
}

// FieldsByUserIDs batch-fetches profiles and returns each user's flattened
// public fields keyed by user id. Users without a profile are simply absent.
func (s *Service) FieldsByUserIDs(ctx context.Context, userIDs []string) (map[string]map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]map[string]string{}, nil
	}

	uris := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		uris = append(uris, s.authorURI(id))
	}

	items, err := s.repo.FindProfilesByAuthorURIs(ctx, s.vocab.AuthorProfileRole, uris)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]string, len(items))
	for _, item := range items {
		userID := s.profileUserID(item)
		if userID == "" {
			continue
		}
		// newest version wins; rows arrive newest first
		if _, ok := out[userID]; !ok {
			out[userID] = FlattenProfileFields(item.Extra, s.vocab)
		}
	}
	return out, nil
}

// EnrichItemAuthors copies public profile fields onto the embedded author
// entries of an item. Items whose authors are themselves profile records
// are left alone. Missing profiles degrade silently.
func (s *Service) EnrichItemAuthors(ctx context.Context, item *archive.Item) error {
	if len(item.Authors) == 0 || item.Authors[0].Role == s.vocab.AuthorProfileRole {
		return nil
	}

	codes := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		if a.Code != "" {
			codes = append(codes, a.Code)
		}
	}

	fieldsByUser, err := s.FieldsByUserIDs(ctx, codes)
	if err != nil {
		return err
	}

	for n := range item.Authors {
		author := &item.Authors[n]
		profileFields, ok := fieldsByUser[author.Code]
		if !ok {
			// no profile for this author
			continue
		}
		for _, field := range s.vocab.PublicProfileFields {
			flatKey := strings.TrimPrefix(field, "profile_")
			if val := profileFields[flatKey]; val != "" {
				author.SetField(flatKey, val)
			}
		}
	}
	return nil
}

// EnrichItemsAuthors applies EnrichItemAuthors to every item of a multi-item
// fetch.
func (s *Service) EnrichItemsAuthors(ctx context.Context, items []*archive.Item) error {
	for _, item := range items {
		if err := s.EnrichItemAuthors(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
