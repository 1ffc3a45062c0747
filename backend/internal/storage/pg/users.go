package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/newsletter/shared/domain"
	internal_errors "github.com/itchan-dev/newsletter/shared/errors"
	sharedpg "github.com/itchan-dev/newsletter/shared/storage/pg"
)

// Credentials looks up a publisher by username. An unknown username is a
// NotFound error.
func (s *Storage) Credentials(ctx context.Context, username string) (domain.StoredCredentials, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	return s.credentials(ctx, s.db, username)
}

// SaveUser provisions a publisher. Used by tests and tooling; the HTTP API
// never writes users.
func (s *Storage) SaveUser(ctx context.Context, creds domain.StoredCredentials) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, password_hash) VALUES ($1, $2, $3)`,
		creds.UserId, creds.Username, creds.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Storage) credentials(ctx context.Context, q sharedpg.Querier, username string) (domain.StoredCredentials, error) {
	creds := domain.StoredCredentials{Username: username}
	err := q.QueryRowContext(ctx,
		`SELECT user_id, password_hash FROM users WHERE username = $1`, username).
		Scan(&creds.UserId, &creds.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoredCredentials{}, internal_errors.NotFound("User not found")
		}
		return domain.StoredCredentials{}, fmt.Errorf("failed to query user: %w", err)
	}
	return creds, nil
}
