package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/athena-learn/athena-web/internal/config"
	"github.com/athena-learn/athena-web/internal/events"
	"github.com/athena-learn/athena-web/internal/platform/backend"
	"github.com/athena-learn/athena-web/internal/platform/metrics"
	"github.com/athena-learn/athena-web/internal/platform/postgres"
	"github.com/athena-learn/athena-web/internal/platform/redis"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/service/account"
	"github.com/athena-learn/athena-web/internal/service/catalog"
	"github.com/athena-learn/athena-web/internal/service/dashboard"
	"github.com/athena-learn/athena-web/internal/service/guard"
	"github.com/athena-learn/athena-web/internal/service/ingestion"
	"github.com/athena-learn/athena-web/internal/service/onboarding"
	"github.com/athena-learn/athena-web/internal/service/profile"
	"github.com/athena-learn/athena-web/internal/service/recommendation"
	"github.com/athena-learn/athena-web/internal/session"
	"github.com/athena-learn/athena-web/internal/store"
)

// janitorInterval is how often expired postgres session rows are purged.
const janitorInterval = 10 * time.Minute

// application holds every long-lived dependency of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *sql.DB
	redis *goredis.Client

	metrics  *metrics.Metrics
	emitter  *events.InMemoryEventEmitter
	sessions *session.Service
	backend  backend.API

	guard      *guard.Guard
	accounts   *account.Service
	resolver   *dashboard.Resolver
	ingestion  *ingestion.Workflow
	onboarding *onboarding.Flow
	catalog    *catalog.Catalog

	stopJanitor context.CancelFunc
}

// newApplication wires the application against the configured backend.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	return newApplicationWithBackend(ctx, cfg, log, nil)
}

// newApplicationWithBackend wires the application; a nil api means a client
// built from configuration.
func newApplicationWithBackend(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	api backend.API,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  log,
		metrics: metrics.New(),
		emitter: events.NewInMemoryEventEmitter(log),
	}

	sessionStore, err := app.openSessionStore(ctx)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	app.sessions, err = session.NewService(sessionStore, app.emitter, log)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	if api == nil {
		client, err := backend.NewFromConfig(cfg.Backend, app.metrics, log)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to create backend client: %w", err)
		}
		api = client
	}
	app.backend = api

	app.guard = guard.New(app.sessions, log)
	profiles := profile.NewService(api, log)
	recs := recommendation.NewAggregator(api, log)

	app.accounts = account.NewService(api, app.sessions, log)
	app.resolver = dashboard.NewResolver(app.guard, profiles, recs, log)
	app.ingestion = ingestion.NewWorkflow(api, app.guard, app.resolver, log)
	app.onboarding = onboarding.NewFlow(api, app.guard, profiles, log)
	app.catalog = catalog.New(api, log)

	app.emitter.RegisterHandler(app.metrics)
	app.emitter.RegisterHandler(app.resolver)
	app.emitter.RegisterHandler(app.onboarding)

	log.Info("application initialized")
	return app, nil
}

// openSessionStore builds the configured session area.
func (app *application) openSessionStore(ctx context.Context) (store.SessionStore, error) {
	cfg := app.config
	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour

	switch cfg.Session.Store {
	case "redis":
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redis = rdb
		app.logger.Info("using redis session store", slog.String("addr", cfg.Redis.Addr))
		return redis.NewSessionStore(rdb, ttl), nil

	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.db = db
		if err := postgres.Migrate(ctx, db, app.logger); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		st := postgres.NewPostgresSessionStore(db, ttl)
		app.startJanitor(ctx, st)
		app.logger.Info("using postgres session store")
		return st, nil

	default:
		app.logger.Info("using in-memory session store")
		return store.NewMemorySessionStore(ttl), nil
	}
}

// startJanitor purges expired session rows until the application stops.
func (app *application) startJanitor(ctx context.Context, st *postgres.PostgresSessionStore) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app.stopJanitor = cancel

	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := st.DeleteExpired(ctx)
				if err != nil {
					app.logger.Warn("failed to purge expired sessions", slog.String("error", redact.Error(err)))
					continue
				}
				if n > 0 {
					app.logger.Debug("purged expired session fields", slog.Int64("rows", n))
				}
			}
		}
	}()
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases connections and background work.
func (app *application) cleanup() {
	if app.stopJanitor != nil {
		app.stopJanitor()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
