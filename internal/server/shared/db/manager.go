// Package db wires the Postgres-backed repositories behind one manager so
// the application assembles them from a single DSN.
package db

import (
	"context"
	"database/sql"

	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/profiles"
	"github.com/meridianpress/newsdesk/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Archive() archive.Repository
	Profiles() profiles.Repository
}
