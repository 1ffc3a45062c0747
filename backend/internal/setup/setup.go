package setup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/itchan-dev/newsletter/backend/internal/handler"
	"github.com/itchan-dev/newsletter/backend/internal/service"
	"github.com/itchan-dev/newsletter/backend/internal/storage/pg"
	"github.com/itchan-dev/newsletter/backend/internal/utils/email"
	"github.com/itchan-dev/newsletter/backend/internal/utils/password"
	"github.com/itchan-dev/newsletter/backend/internal/utils/workerpool"
	"github.com/itchan-dev/newsletter/shared/config"
	sharedpg "github.com/itchan-dev/newsletter/shared/storage/pg"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config   *config.Config
	Log      *slog.Logger
	Storage  *pg.Storage
	Handler  *handler.Handler
	Registry *prometheus.Registry
}

// SetupDependencies connects to the database, applies migrations when
// enabled and wires storage, delivery and services into a Handler.
func SetupDependencies(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Dependencies, error) {
	db, err := sharedpg.Connect(ctx,
		sharedpg.ConnString(cfg.Public.Pg, cfg.PgPassword()),
		sharedpg.ConnectionConfigFrom(cfg.Public.Pg))
	if err != nil {
		return nil, err
	}

	deps, err := build(ctx, cfg, log, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return deps, nil
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sql.DB) (*Dependencies, error) {
	if cfg.Public.Pg.Migrate {
		if err := pg.Migrate(ctx, db, log); err != nil {
			return nil, err
		}
	}
	storage := pg.New(db, cfg.Public.Pg.QueryTimeout)

	mail, err := email.New(cfg.Public.Email, cfg.EmailServerToken(), cfg.Private.EmailAccountToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create email client: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(registry)

	pool := workerpool.New(cfg.Public.Auth.HashWorkers)
	credentials, err := service.NewCredentials(storage, pool, password.DefaultParams, log)
	if err != nil {
		return nil, err
	}

	subscription := service.NewSubscription(storage, mail, cfg.Public.HTTP.BaseURL, metrics, log)
	newsletter := service.NewNewsletter(storage, credentials, mail, cfg.Public.Newsletter.SanitizeHTML, metrics, log)

	return &Dependencies{
		Config:   cfg,
		Log:      log,
		Storage:  storage,
		Handler:  handler.New(subscription, newsletter, storage, log),
		Registry: registry,
	}, nil
}
