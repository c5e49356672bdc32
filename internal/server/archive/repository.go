// Package archive is the item store: article records, their history log and
// the publisher sequence counters.
package archive

import "context"

// HistoryOperationAuthorApproval tags history entries written by the
// sign-off workflow.
const HistoryOperationAuthorApproval = "author_approval"

type Repository interface {
	// GetItem fetches one article by id, common.ErrorNotFound when absent.
	GetItem(ctx context.Context, id string) (*Item, error)

	// SystemUpdateExtra replaces the item's extra-metadata field without
	// touching the version counter or the revision workflow.
	SystemUpdateExtra(ctx context.Context, id string, extra Extra) error

	// AddHistoryEntry appends an entry to the item's history log.
	AddHistoryEntry(ctx context.Context, itemID, operation string, update any) error

	// NextPublishSequence returns the next publisher-assigned sequence
	// number for the given subscriber.
	NextPublishSequence(ctx context.Context, subscriber string) (int, error)
}
