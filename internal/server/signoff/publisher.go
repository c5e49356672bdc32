package signoff

import (
	"context"
	"fmt"

	"github.com/meridianpress/newsdesk/internal/logging"
	"github.com/meridianpress/newsdesk/internal/server/archive"
)

// EventUpdated is broadcast on every sign-off record change.
const EventUpdated = "author_approval:updated"

// ItemStore is the slice of the archive the publisher writes through.
type ItemStore interface {
	SystemUpdateExtra(ctx context.Context, id string, extra archive.Extra) error
}

// HistoryLog records item changes for audit.
type HistoryLog interface {
	AddHistoryEntry(ctx context.Context, itemID, operation string, update any) error
}

// Notifier broadcasts a named event with a JSON payload.
type Notifier interface {
	Push(ctx context.Context, event string, payload any) error
}

// UpdatedEvent is the payload of EventUpdated.
type UpdatedEvent struct {
	ItemID     string  `json:"item_id"`
	NewSignOff *Record `json:"new_sign_off"`
}

// Publisher is the single writer of sign-off state. Every mutation path
// routes through Apply; nothing else touches the publish_sign_off key.
type Publisher struct {
	store    ItemStore
	history  HistoryLog
	notifier Notifier
	logger   logging.Logger
}

func NewPublisher(store ItemStore, history HistoryLog, notifier Notifier, logger logging.Logger) *Publisher {
	return &Publisher{
		store:    store,
		history:  history,
		notifier: notifier,
		logger:   logger.With("module", "signoff_publisher"),
	}
}

// Apply writes record onto the item's extra metadata with a system-level
// update (no revision workflow), logs the change to the item history tagged
// author_approval, and broadcasts the updated record. The item's in-memory
// extra is updated on success.
//
// The update is a plain read-modify-write: concurrent sign-off submissions
// for the same article race at the store level and the last writer wins.
func (p *Publisher) Apply(ctx context.Context, item *archive.Item, record *Record) error {
	record.normalize()

	extra := make(archive.Extra, len(item.Extra)+1)
	for k, v := range item.Extra {
		extra[k] = v
	}
	if err := extra.Set(ExtraKey, record); err != nil {
		return fmt.Errorf("encoding sign-off record: %w", err)
	}

	if err := p.store.SystemUpdateExtra(ctx, item.ID, extra); err != nil {
		return fmt.Errorf("persisting sign-off record: %w", err)
	}
	item.Extra = extra

	if err := p.history.AddHistoryEntry(ctx, item.ID, archive.HistoryOperationAuthorApproval, map[string]any{"extra": extra}); err != nil {
		return fmt.Errorf("recording sign-off history: %w", err)
	}

	if err := p.notifier.Push(ctx, EventUpdated, UpdatedEvent{ItemID: item.ID, NewSignOff: record}); err != nil {
		return fmt.Errorf("broadcasting sign-off update: %w", err)
	}

	p.logger.Info(ctx, "sign-off record updated", "item_id", item.ID,
		"pending", len(record.PendingReviews), "signed", len(record.SignOffs))

	return nil
}
