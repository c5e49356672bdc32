package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meridianpress/newsdesk/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

const itemColumns = `id, guid, item_type, headline, slugline, language, version, body_html,
	 firstcreated, versioncreated, firstpublished, embargo, authors, associations, extra`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ScanItem decodes one item row, including the JSONB columns.
func ScanItem(row rowScanner) (*Item, error) {
	item := &Item{}
	var authors, associations, extra []byte

	err := row.Scan(
		&item.ID, &item.GUID, &item.Type, &item.Headline, &item.Slugline,
		&item.Language, &item.Version, &item.BodyHTML,
		&item.FirstCreated, &item.VersionCreated, &item.FirstPublished, &item.Embargo,
		&authors, &associations, &extra)
	if err != nil {
		return nil, err
	}

	if len(authors) > 0 {
		if err := json.Unmarshal(authors, &item.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors for item %s: %w", item.ID, err)
		}
	}
	if len(associations) > 0 {
		if err := json.Unmarshal(associations, &item.Associations); err != nil {
			return nil, fmt.Errorf("decoding associations for item %s: %w", item.ID, err)
		}
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &item.Extra); err != nil {
			return nil, fmt.Errorf("decoding extra for item %s: %w", item.ID, err)
		}
	}

	return item, nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, id string) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := ScanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) SystemUpdateExtra(ctx context.Context, id string, extra Extra) error {
	raw, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("encoding extra: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE items SET extra = $2 WHERE id = $1`, id, raw)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) AddHistoryEntry(ctx context.Context, itemID, operation string, update any) error {
	raw, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encoding history update: %w", err)
	}

	query :=
		`INSERT INTO item_history (item_id, operation, update_data, created)
		 VALUES ($1, $2, $3, now())
		 `

	if _, err := r.db.ExecContext(ctx, query, itemID, operation, raw); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) NextPublishSequence(ctx context.Context, subscriber string) (int, error) {
	query :=
		`INSERT INTO publish_sequences (subscriber, last_seq)
		 VALUES ($1, 1)
		 ON CONFLICT (subscriber)
		 DO UPDATE SET last_seq = publish_sequences.last_seq + 1
		 RETURNING last_seq
		 `

	var seq int
	if err := r.db.QueryRowContext(ctx, query, subscriber).Scan(&seq); err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}

	return seq, nil
}
