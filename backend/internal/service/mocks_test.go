package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/itchan-dev/newsletter/backend/internal/utils/email"
	"github.com/itchan-dev/newsletter/shared/domain"
)

// --- Mocks ---

type MockSubscriptionStorage struct {
	SaveSubscriberWithTokenFunc func(sub domain.NewSubscriber, token domain.SubscriptionToken) (domain.SubscriberId, error)
	SubscriberIdByTokenFunc     func(token domain.SubscriptionToken) (domain.SubscriberId, error)
	ConfirmSubscriberFunc       func(id domain.SubscriberId) error
}

func (m *MockSubscriptionStorage) SaveSubscriberWithToken(ctx context.Context, sub domain.NewSubscriber, token domain.SubscriptionToken) (domain.SubscriberId, error) {
	if m.SaveSubscriberWithTokenFunc != nil {
		return m.SaveSubscriberWithTokenFunc(sub, token)
	}
	return uuid.New(), nil
}

func (m *MockSubscriptionStorage) SubscriberIdByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberId, error) {
	if m.SubscriberIdByTokenFunc != nil {
		return m.SubscriberIdByTokenFunc(token)
	}
	return uuid.New(), nil
}

func (m *MockSubscriptionStorage) ConfirmSubscriber(ctx context.Context, id domain.SubscriberId) error {
	if m.ConfirmSubscriberFunc != nil {
		return m.ConfirmSubscriberFunc(id)
	}
	return nil
}

type MockCredentialsStorage struct {
	CredentialsFunc func(username string) (domain.StoredCredentials, error)
}

func (m *MockCredentialsStorage) Credentials(ctx context.Context, username string) (domain.StoredCredentials, error) {
	if m.CredentialsFunc != nil {
		return m.CredentialsFunc(username)
	}
	return domain.StoredCredentials{}, nil
}

type MockCredentialsValidator struct {
	ValidateFunc func(creds domain.Credentials) (domain.AccountId, error)
}

func (m *MockCredentialsValidator) Validate(ctx context.Context, creds domain.Credentials) (domain.AccountId, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(creds)
	}
	return uuid.New(), nil
}

type MockNewsletterStorage struct {
	ConfirmedSubscribersFunc func() ([]domain.ConfirmedSubscriber, error)
}

func (m *MockNewsletterStorage) ConfirmedSubscribers(ctx context.Context) ([]domain.ConfirmedSubscriber, error) {
	if m.ConfirmedSubscribersFunc != nil {
		return m.ConfirmedSubscribersFunc()
	}
	return nil, nil
}

// MockEmail records every message it is asked to send.
type MockEmail struct {
	mu       sync.Mutex
	Sent     []email.Message
	SendFunc func(msg email.Message) error
}

func (m *MockEmail) Send(ctx context.Context, msg email.Message) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(msg)
	}
	return nil
}

func testMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
