package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/itchan-dev/newsletter/backend/internal/utils/email"
	"github.com/itchan-dev/newsletter/shared/domain"
	"github.com/itchan-dev/newsletter/shared/errors"
	"github.com/itchan-dev/newsletter/shared/utils"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, name, email string) error
	Confirm(ctx context.Context, token domain.SubscriptionToken) error
}

type SubscriptionStorage interface {
	SaveSubscriberWithToken(ctx context.Context, sub domain.NewSubscriber, token domain.SubscriptionToken) (domain.SubscriberId, error)
	SubscriberIdByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberId, error)
	ConfirmSubscriber(ctx context.Context, id domain.SubscriberId) error
}

type Email interface {
	Send(ctx context.Context, msg email.Message) error
}

type Subscription struct {
	storage SubscriptionStorage
	email   Email
	baseURL string
	metrics *Metrics
	log     *slog.Logger
}

func NewSubscription(storage SubscriptionStorage, email Email, baseURL string, metrics *Metrics, log *slog.Logger) *Subscription {
	return &Subscription{
		storage: storage,
		email:   email,
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		log:     log,
	}
}

// Subscribe validates the sign-up, persists a pending subscriber together
// with a fresh confirmation token and mails the confirmation link.
// The rows are committed before the email goes out, so a delivery failure
// leaves them in place.
func (s *Subscription) Subscribe(ctx context.Context, name, address string) error {
	sub, err := domain.ParseNewSubscriber(name, address)
	if err != nil {
		return err
	}

	token := utils.GenerateSubscriptionToken()
	id, err := s.storage.SaveSubscriberWithToken(ctx, sub, token)
	if err != nil {
		return errors.Unexpected("Failed to store new subscriber", err)
	}
	s.metrics.subscriptions.Inc()
	s.log.Info("new subscriber saved", "subscriber_id", id, "email", sub.Email.String())

	msg, err := email.Welcome(sub.Email, s.confirmationLink(token))
	if err != nil {
		return errors.Unexpected("Failed to render confirmation email", err)
	}
	err = s.email.Send(ctx, msg)
	s.metrics.delivery(deliveryKindWelcome, err)
	if err != nil {
		return errors.Unexpected("Failed to send confirmation email", err)
	}
	return nil
}

// Confirm marks the token's subscriber as confirmed. Repeating it is harmless.
func (s *Subscription) Confirm(ctx context.Context, token domain.SubscriptionToken) error {
	id, err := s.storage.SubscriberIdByToken(ctx, token)
	if err != nil {
		if errors.IsNotFound(err) {
			return err
		}
		return errors.Unexpected("Failed to look up subscription token", err)
	}

	if err := s.storage.ConfirmSubscriber(ctx, id); err != nil {
		return errors.Unexpected("Failed to confirm subscriber", err)
	}
	s.metrics.confirmations.Inc()
	s.log.Info("subscriber confirmed", "subscriber_id", id)
	return nil
}

func (s *Subscription) confirmationLink(token domain.SubscriptionToken) string {
	return fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", s.baseURL, token)
}
