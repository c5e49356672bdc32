// Package profiles exposes author-profile documents: tagged archive items
// projected down to their public fields, plus enrichment of author
// references embedded on other items.
package profiles

import (
	"context"

	"github.com/meridianpress/newsdesk/internal/server/archive"
)

type Repository interface {
	// ListProfiles returns profile-tagged items, newest version first.
	ListProfiles(ctx context.Context, role string, limit, offset int) ([]*archive.Item, error)

	// FindProfilesByAuthorURIs returns profile-tagged items whose author
	// uri matches any of the given uris.
	FindProfilesByAuthorURIs(ctx context.Context, role string, uris []string) ([]*archive.Item, error)
}
