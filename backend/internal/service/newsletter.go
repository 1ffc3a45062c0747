package service

import (
	"context"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"github.com/itchan-dev/newsletter/backend/internal/utils/email"
	"github.com/itchan-dev/newsletter/shared/domain"
	"github.com/itchan-dev/newsletter/shared/errors"
)

type NewsletterService interface {
	Publish(ctx context.Context, issue domain.NewsletterIssue, creds *domain.Credentials) error
}

type NewsletterStorage interface {
	ConfirmedSubscribers(ctx context.Context) ([]domain.ConfirmedSubscriber, error)
}

type Newsletter struct {
	storage     NewsletterStorage
	credentials CredentialsValidator
	email       Email
	sanitizer   *bluemonday.Policy // nil when sanitizing is off
	metrics     *Metrics
	log         *slog.Logger
}

func NewNewsletter(storage NewsletterStorage, credentials CredentialsValidator, email Email, sanitizeHTML bool, metrics *Metrics, log *slog.Logger) *Newsletter {
	n := &Newsletter{
		storage:     storage,
		credentials: credentials,
		email:       email,
		metrics:     metrics,
		log:         log,
	}
	if sanitizeHTML {
		n.sanitizer = bluemonday.UGCPolicy()
	}
	return n
}

// Publish sends issue to every confirmed subscriber, one message each.
// Subscribers whose stored email no longer parses are skipped with a warning.
// The first delivery failure stops the fan-out; earlier deliveries are not
// undone.
func (n *Newsletter) Publish(ctx context.Context, issue domain.NewsletterIssue, creds *domain.Credentials) error {
	if creds == nil {
		return errors.Auth("Missing credentials", nil)
	}
	publisher, err := n.credentials.Validate(ctx, *creds)
	if err != nil {
		return err
	}

	subscribers, err := n.storage.ConfirmedSubscribers(ctx)
	if err != nil {
		return errors.Unexpected("Failed to get confirmed subscribers", err)
	}

	html := issue.HTMLBody
	if n.sanitizer != nil {
		html = n.sanitizer.Sanitize(html)
	}

	var sent int
	for _, sub := range subscribers {
		to, err := domain.ParseSubscriberEmail(sub.Email)
		if err != nil {
			n.metrics.skipped.Inc()
			n.log.Warn("skipping a confirmed subscriber, stored email is invalid", "email", sub.Email)
			continue
		}

		err = n.email.Send(ctx, email.Message{
			To:       to,
			Subject:  issue.Title,
			HTMLBody: html,
			TextBody: issue.TextBody,
		})
		n.metrics.delivery(deliveryKindNewsletter, err)
		if err != nil {
			n.log.Error("newsletter delivery failed, aborting", "email", to.String(), "sent", sent, "error", err)
			return errors.Unexpected("Failed to send newsletter issue", err)
		}
		sent++
	}

	n.log.Info("newsletter issue published", "publisher_id", publisher, "title", issue.Title, "sent", sent)
	return nil
}
