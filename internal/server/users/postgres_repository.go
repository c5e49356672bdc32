package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridianpress/newsdesk/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query :=
		`SELECT id, username, first_name, last_name, display_name, email FROM users
		 WHERE id = $1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.DisplayName, &user.Email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByDisplayName(ctx context.Context, displayName string) (*User, error) {
	query :=
		`SELECT id, username, first_name, last_name, display_name, email FROM users
		 WHERE display_name = $1
		 ORDER BY id
		 LIMIT 1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, displayName).Scan(
		&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.DisplayName, &user.Email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}
