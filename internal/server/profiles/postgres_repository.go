package profiles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meridianpress/newsdesk/internal/server/archive"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

const profileColumns = `id, guid, item_type, headline, slugline, language, version, body_html,
	 firstcreated, versioncreated, firstpublished, embargo, authors, associations, extra`

func (r *PostgresRepository) ListProfiles(ctx context.Context, role string, limit, offset int) ([]*archive.Item, error) {
	query := `SELECT ` + profileColumns + `
		 FROM items
		 WHERE authors->0->>'role' = $1
		 ORDER BY versioncreated DESC
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

func (r *PostgresRepository) FindProfilesByAuthorURIs(ctx context.Context, role string, uris []string) ([]*archive.Item, error) {
	query := `SELECT ` + profileColumns + `
		 FROM items
		 WHERE authors->0->>'role' = $1
		   AND EXISTS (
		       SELECT 1 FROM jsonb_array_elements(authors) a
		       WHERE a->>'uri' = ANY($2)
		   )
		 ORDER BY versioncreated DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, role, uris)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*archive.Item, error) {
	var items []*archive.Item
	for rows.Next() {
		item, err := archive.ScanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
