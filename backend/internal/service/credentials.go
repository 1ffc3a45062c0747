package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/itchan-dev/newsletter/backend/internal/utils/password"
	"github.com/itchan-dev/newsletter/backend/internal/utils/workerpool"
	"github.com/itchan-dev/newsletter/shared/domain"
	"github.com/itchan-dev/newsletter/shared/errors"
	"github.com/itchan-dev/newsletter/shared/utils"
)

type CredentialsStorage interface {
	Credentials(ctx context.Context, username string) (domain.StoredCredentials, error)
}

type CredentialsValidator interface {
	Validate(ctx context.Context, creds domain.Credentials) (domain.AccountId, error)
}

// Credentials checks publisher usernames and passwords. Hash verification is
// CPU-bound and runs on pool.
type Credentials struct {
	storage   CredentialsStorage
	pool      *workerpool.Pool
	dummyHash string
	verify    func(hash, plain string) error
	log       *slog.Logger
}

// NewCredentials prepares a dummy hash with params so that unknown usernames
// cost the same as known ones.
func NewCredentials(storage CredentialsStorage, pool *workerpool.Pool, params password.Params, log *slog.Logger) (*Credentials, error) {
	dummyHash, err := password.Hash(utils.GenerateRandomString(32, utils.Alphanumeric), params)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &Credentials{storage: storage, pool: pool, dummyHash: dummyHash, verify: password.Verify, log: log}, nil
}

func (c *Credentials) Validate(ctx context.Context, creds domain.Credentials) (domain.AccountId, error) {
	known := true
	stored, err := c.storage.Credentials(ctx, creds.Username)
	if err != nil {
		if !errors.IsNotFound(err) {
			return domain.AccountId{}, errors.Unexpected("Failed to retrieve stored credentials", err)
		}
		known = false
		stored.PasswordHash = c.dummyHash
	}

	// unknown usernames still pay for a full verification against dummyHash
	err = c.pool.Do(ctx, func() error {
		return c.verify(stored.PasswordHash, creds.Password)
	})

	switch {
	case !known:
		return domain.AccountId{}, errors.Auth("Invalid credentials", stderrors.New("unknown username"))
	case err == nil:
		return stored.UserId, nil
	case errors.Is(err, password.ErrMismatch):
		return domain.AccountId{}, errors.Auth("Invalid credentials", err)
	default:
		return domain.AccountId{}, errors.Unexpected("Failed to verify password hash", err)
	}
}
