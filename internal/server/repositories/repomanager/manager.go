package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkarpenko/filekeeper/internal/dbx"
	"github.com/mkarpenko/filekeeper/internal/server/repositories/files"
	"github.com/mkarpenko/filekeeper/internal/server/repositories/sessions"
	"github.com/mkarpenko/filekeeper/internal/server/repositories/users"
)

// RepositoryManager hands out per-aggregate repositories bound to a query
// handle. Passing a transactional handle makes the repository take part in
// that transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Files(db dbx.DBTX) files.Repository
}
