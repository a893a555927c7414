package postgre

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/pkg/log"
)

type implRepository struct {
	db    *sqlx.DB
	l     log.Logger
	clock func() time.Time
	newID func() string
}

// New creates a SQL-backed Repository for the scheduling domain.
// The same queries run on Postgres (pgx) and SQLite; placeholders are rebound per driver.
func New(db *sqlx.DB, l log.Logger) repository.Repository {
	if db == nil {
		panic("scheduling/repository/postgre: db is required")
	}
	return &implRepository{db: db, l: l, clock: time.Now, newID: newUUID}
}

// dsn is a helper to return a method-scoped context string for logging.
func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("scheduling/repository/postgre.%s", method)
}

func (r *implRepository) q(query string) string {
	return r.db.Rebind(query)
}
