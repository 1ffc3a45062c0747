package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/itchan-dev/newsletter/shared/domain"
	internal_errors "github.com/itchan-dev/newsletter/shared/errors"
	sharedpg "github.com/itchan-dev/newsletter/shared/storage/pg"
)

// =========================================================================
// Public Methods (satisfy service.SubscriptionStorage and NewsletterStorage)
// =========================================================================

// SaveSubscriberWithToken inserts a pending subscriber and its confirmation
// token in one transaction. Either both rows are committed or neither is.
func (s *Storage) SaveSubscriberWithToken(ctx context.Context, sub domain.NewSubscriber, token domain.SubscriptionToken) (domain.SubscriberId, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var id domain.SubscriberId
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		id, err = s.insertSubscriber(ctx, tx, sub)
		if err != nil {
			return err
		}
		return s.storeToken(ctx, tx, domain.SubscriptionTokenData{Token: token, SubscriberId: id})
	})
	return id, err
}

// SubscriberIdByToken returns a NotFound error for an unknown token.
func (s *Storage) SubscriberIdByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberId, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	return s.subscriberIdByToken(ctx, s.db, token)
}

// ConfirmSubscriber is idempotent: confirming a confirmed subscriber is a no-op.
func (s *Storage) ConfirmSubscriber(ctx context.Context, id domain.SubscriberId) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	return s.confirmSubscriber(ctx, s.db, id)
}

// ConfirmedSubscribers returns the raw stored email of every confirmed
// subscriber. Emails are not re-validated here.
func (s *Storage) ConfirmedSubscribers(ctx context.Context) ([]domain.ConfirmedSubscriber, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	return s.confirmedSubscribers(ctx, s.db)
}

// Subscriber is a read-only lookup by email.
func (s *Storage) Subscriber(ctx context.Context, email domain.SubscriberEmail) (domain.Subscriber, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	return s.subscriber(ctx, s.db, email)
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) insertSubscriber(ctx context.Context, q sharedpg.Querier, sub domain.NewSubscriber) (domain.SubscriberId, error) {
	id := uuid.New()
	_, err := q.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, name, subscribed_at, status) VALUES ($1, $2, $3, $4, $5)`,
		id, sub.Email.String(), sub.Name.String(), time.Now().UTC(), domain.StatusPendingConfirmation)
	if err != nil {
		if sharedpg.IsUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("failed to insert subscriber: email already subscribed: %w", err)
		}
		return uuid.Nil, fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return id, nil
}

func (s *Storage) storeToken(ctx context.Context, q sharedpg.Querier, data domain.SubscriptionTokenData) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO subscription_tokens (subscription_token, subscriber_id) VALUES ($1, $2)`,
		data.Token, data.SubscriberId)
	if err != nil {
		if sharedpg.IsForeignKeyViolation(err) {
			return fmt.Errorf("failed to store subscription token: unknown subscriber: %w", err)
		}
		return fmt.Errorf("failed to store subscription token: %w", err)
	}
	return nil
}

func (s *Storage) subscriberIdByToken(ctx context.Context, q sharedpg.Querier, token domain.SubscriptionToken) (domain.SubscriberId, error) {
	var id domain.SubscriberId
	err := q.QueryRowContext(ctx,
		`SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1`, token).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, internal_errors.NotFound("Subscription token not found")
		}
		return uuid.Nil, fmt.Errorf("failed to query subscription token: %w", err)
	}
	return id, nil
}

func (s *Storage) confirmSubscriber(ctx context.Context, q sharedpg.Querier, id domain.SubscriberId) error {
	_, err := q.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1 WHERE id = $2`, domain.StatusConfirmed, id)
	if err != nil {
		return fmt.Errorf("failed to confirm subscriber: %w", err)
	}
	return nil
}

func (s *Storage) confirmedSubscribers(ctx context.Context, q sharedpg.Querier) ([]domain.ConfirmedSubscriber, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT email FROM subscriptions WHERE status = $1`, domain.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmed subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []domain.ConfirmedSubscriber
	for rows.Next() {
		var sub domain.ConfirmedSubscriber
		if err := rows.Scan(&sub.Email); err != nil {
			return nil, fmt.Errorf("failed to scan confirmed subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate confirmed subscribers: %w", err)
	}
	return subscribers, nil
}

func (s *Storage) subscriber(ctx context.Context, q sharedpg.Querier, email domain.SubscriberEmail) (domain.Subscriber, error) {
	var sub domain.Subscriber
	err := q.QueryRowContext(ctx,
		`SELECT id, email, name, subscribed_at, status FROM subscriptions WHERE email = $1`, email.String()).
		Scan(&sub.Id, &sub.Email, &sub.Name, &sub.SubscribedAt, &sub.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Subscriber{}, internal_errors.NotFound("Subscriber not found")
		}
		return domain.Subscriber{}, fmt.Errorf("failed to query subscriber: %w", err)
	}
	return sub, nil
}
