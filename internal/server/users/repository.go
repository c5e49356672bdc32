// Package users provides read access to the newsroom user directory.
package users

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*User, error)
}
