package repomanager

import (
	"context"
	"database/sql"

	"github.com/vmatveev/registerd/internal/dbx"
	"github.com/vmatveev/registerd/internal/server/repositories/registers"
	"github.com/vmatveev/registerd/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Registers(db dbx.DBTX) registers.Repository
}
