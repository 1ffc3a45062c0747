//go:build integration

package pg

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/itchan-dev/newsletter/shared/domain"
	internal_errors "github.com/itchan-dev/newsletter/shared/errors"
	"github.com/itchan-dev/newsletter/shared/logger"
	sharedpg "github.com/itchan-dev/newsletter/shared/storage/pg"
)

var storage *Storage

func TestMain(m *testing.M) {
	ctx := context.Background()
	var container *postgres.PostgresContainer
	storage, container = mustSetup(ctx)

	exitCode := m.Run()
	teardown(ctx, storage, container)
	os.Exit(exitCode)
}

func mustSetup(ctx context.Context) (*Storage, *postgres.PostgresContainer) {
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithDatabase("newsletter"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			// The image restarts once after initdb, so wait for the second ready line.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("failed to obtain connection string: %s", err)
	}
	db, err := sharedpg.Connect(ctx, connStr, sharedpg.DefaultConnectionConfig())
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	if err := Migrate(ctx, db, logger.Discard()); err != nil {
		log.Fatalf("failed to migrate: %s", err)
	}
	return New(db, 5*time.Second), container
}

func teardown(ctx context.Context, storage *Storage, container *postgres.PostgresContainer) {
	if err := storage.Cleanup(); err != nil {
		log.Printf("failed to close storage connection: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

func subscribe(t *testing.T, name, email string) (domain.SubscriberId, domain.SubscriptionToken) {
	t.Helper()
	sub, err := domain.ParseNewSubscriber(name, email)
	require.NoError(t, err)
	token := uuid.NewString()
	id, err := storage.SaveSubscriberWithToken(context.Background(), sub, token)
	require.NoError(t, err)
	return id, token
}

func TestSubscriberLifecycle(t *testing.T) {
	ctx := context.Background()
	email, err := domain.ParseSubscriberEmail("bruce@wayne.com")
	require.NoError(t, err)

	id, token := subscribe(t, "Bruce Wayne", email.String())

	saved, err := storage.Subscriber(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, id, saved.Id)
	assert.Equal(t, "Bruce Wayne", saved.Name)
	assert.Equal(t, domain.StatusPendingConfirmation, saved.Status)

	gotId, err := storage.SubscriberIdByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, gotId)

	require.NoError(t, storage.ConfirmSubscriber(ctx, id))
	require.NoError(t, storage.ConfirmSubscriber(ctx, id), "confirming twice is a no-op")

	saved, err = storage.Subscriber(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "bruce@wayne.com", saved.Email)
	assert.Equal(t, "Bruce Wayne", saved.Name)
	assert.Equal(t, domain.StatusConfirmed, saved.Status)

	confirmed, err := storage.ConfirmedSubscribers(ctx)
	require.NoError(t, err)
	assert.Contains(t, confirmed, domain.ConfirmedSubscriber{Email: "bruce@wayne.com"})
}

func TestDuplicateEmailLeavesNoToken(t *testing.T) {
	ctx := context.Background()
	subscribe(t, "Alfred", "alfred@wayne.com")

	sub, err := domain.ParseNewSubscriber("Alfred Again", "alfred@wayne.com")
	require.NoError(t, err)
	_, err = storage.SaveSubscriberWithToken(ctx, sub, "dup-token")
	require.Error(t, err)
	assert.True(t, sharedpg.IsUniqueViolation(err))

	_, err = storage.SubscriberIdByToken(ctx, "dup-token")
	assert.True(t, internal_errors.IsNotFound(err))
}

func TestPendingSubscribersAreNotListed(t *testing.T) {
	ctx := context.Background()
	subscribe(t, "Dick Grayson", "dick@wayne.com")

	confirmed, err := storage.ConfirmedSubscribers(ctx)
	require.NoError(t, err)
	assert.NotContains(t, confirmed, domain.ConfirmedSubscriber{Email: "dick@wayne.com"})
}

func TestCredentialsRoundTrip(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, storage.SaveUser(ctx, domain.StoredCredentials{UserId: id, Username: "publisher", PasswordHash: "hash"}))

	creds, err := storage.Credentials(ctx, "publisher")
	require.NoError(t, err)
	assert.Equal(t, id, creds.UserId)
	assert.Equal(t, "hash", creds.PasswordHash)

	_, err = storage.Credentials(ctx, "nobody")
	assert.True(t, internal_errors.IsNotFound(err))
}

func TestPing(t *testing.T) {
	assert.NoError(t, storage.Ping(context.Background()))
}
