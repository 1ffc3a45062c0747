package pg

import (
	"context"
	"database/sql"
	"embed"
	"log/slog"
	"time"

	sharedpg "github.com/itchan-dev/newsletter/shared/storage/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

const defaultQueryTimeout = 5 * time.Second

type Storage struct {
	db           *sql.DB
	queryTimeout time.Duration
}

func New(db *sql.DB, queryTimeout time.Duration) *Storage {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Storage{db: db, queryTimeout: queryTimeout}
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	return sharedpg.Migrate(ctx, db, migrations, "migrations", log)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// opContext detaches storage work from the caller's cancellation so a client
// disconnect cannot abort a transaction halfway. The query timeout still
// bounds it.
func (s *Storage) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.queryTimeout)
}
