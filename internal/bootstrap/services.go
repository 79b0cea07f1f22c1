package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promptlab/jobtrack/config"
	"github.com/promptlab/jobtrack/internal/adapters/chatapi"
	"github.com/promptlab/jobtrack/internal/adapters/oidc"
	pollerrunner "github.com/promptlab/jobtrack/internal/adapters/poller"
	"github.com/promptlab/jobtrack/internal/adapters/staticauth"
	"github.com/promptlab/jobtrack/internal/core"
	"github.com/promptlab/jobtrack/internal/data"
	"github.com/promptlab/jobtrack/internal/observability/statsd"
	"github.com/promptlab/jobtrack/internal/ports"
	"github.com/promptlab/jobtrack/internal/service"
)

// App holds the wired application components.
type App struct {
	Config   config.AppConfig
	Logger   *slog.Logger
	Metrics  *statsd.Client
	Backend  *chatapi.Client
	Store    core.JobStore
	Registry *service.RegistryService
	Poller   *service.PollerService
	Session  *service.SessionService
	Identity ports.IdentityProvider
	Runner   *pollerrunner.Runner

	redisClient redis.UniversalClient
	db          *sql.DB
}

// NewApp wires every component from configuration. The returned App owns the
// store connections; call Close on shutdown.
func NewApp(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*App, error) {
	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Enabled(),
		Address: cfg.Observability.StatsdAddr,
		Prefix:  cfg.Observability.MetricPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	app := &App{Config: cfg, Logger: logger, Metrics: metrics}

	if err := app.wireStore(ctx); err != nil {
		return nil, err
	}
	if err := app.wireBackend(); err != nil {
		return nil, err
	}
	if err := app.wireServices(); err != nil {
		return nil, err
	}
	if err := app.wireIdentityProvider(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) wireStore(ctx context.Context) error {
	switch a.Config.Store.Backend {
	case config.StoreBackendRedis:
		client := ConnectRedis(a.Config.Redis, a.Logger)
		store := data.NewRedisJobStoreWithPrefix(client, a.Config.Store.KeyPrefix)
		if err := checkStoreHealth(ctx, store.Health); err != nil {
			if closeErr := client.Close(); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
			return fmt.Errorf("redis health check: %w", err)
		}
		a.redisClient = client
		a.Store = store

	case config.StoreBackendPostgres:
		db, err := ConnectDB(a.Config.Postgres, a.Logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		store, err := data.NewPGJobStore(ctx, db)
		if err != nil {
			if closeErr := db.Close(); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
			return fmt.Errorf("init postgres job store: %w", err)
		}
		if err := checkStoreHealth(ctx, store.Health); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
			return fmt.Errorf("postgres health check: %w", err)
		}
		a.db = db
		a.Store = store

	case config.StoreBackendMemory:
		a.Store = data.NewMemoryJobStore()

	default:
		return fmt.Errorf("unknown store backend %q", a.Config.Store.Backend)
	}
	return nil
}

// checkStoreHealth bounds the startup probe so a dead store fails fast
// instead of hanging NewApp.
func checkStoreHealth(ctx context.Context, probe func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return probe(ctx)
}

func (a *App) wireBackend() error {
	backend, err := chatapi.NewClient(chatapi.ClientOptions{
		Config: chatapi.Config{
			BaseURL:   a.Config.Chat.BaseURL,
			ChatURL:   a.Config.Chat.ChatURL,
			Username:  a.Config.Chat.Username,
			Password:  a.Config.Chat.Password,
			ReplyPath: a.Config.Chat.ReplyPath,
			Timeout:   a.Config.Chat.Timeout,
		},
		Logger: a.Logger,
	})
	if err != nil {
		return fmt.Errorf("init chat client: %w", err)
	}
	a.Backend = backend
	return nil
}

func (a *App) wireServices() error {
	eviction, err := service.NewEvictionService(service.EvictionServiceOptions{
		Store:   a.Store,
		Config:  a.Config.Eviction,
		Logger:  a.Logger,
		Metrics: a.Metrics,
	})
	if err != nil {
		return fmt.Errorf("init eviction service: %w", err)
	}

	registry, err := service.NewRegistryService(service.RegistryServiceOptions{
		Store:    a.Store,
		Backend:  a.Backend,
		Eviction: eviction,
		Logger:   a.Logger,
		Metrics:  a.Metrics,
	})
	if err != nil {
		return fmt.Errorf("init registry service: %w", err)
	}
	a.Registry = registry

	poller, err := service.NewPollerService(service.PollerServiceOptions{
		Registry: registry,
		Backend:  a.Backend,
		Config:   a.Config.Tracker,
		Logger:   a.Logger,
		Metrics:  a.Metrics,
	})
	if err != nil {
		return fmt.Errorf("init poller service: %w", err)
	}
	a.Poller = poller

	session, err := service.NewSessionService(service.SessionServiceOptions{
		Registry: registry,
		Logger:   a.Logger,
		Metrics:  a.Metrics,
	})
	if err != nil {
		return fmt.Errorf("init session service: %w", err)
	}
	a.Session = session

	runner, err := pollerrunner.NewRunner(pollerrunner.RunnerOptions{
		Poller: poller,
		Logger: a.Logger,
	})
	if err != nil {
		return fmt.Errorf("init poll runner: %w", err)
	}
	a.Runner = runner

	return nil
}

func (a *App) wireIdentityProvider(ctx context.Context) error {
	switch a.Config.Auth.Mode {
	case config.AuthModeOIDC:
		provider, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			Issuer:   a.Config.Auth.OIDCIssuer,
			ClientID: a.Config.Auth.OIDCClientID,
		})
		if err != nil {
			return fmt.Errorf("init oidc provider: %w", err)
		}
		a.Identity = provider

	default:
		a.Identity = staticauth.NewProvider(staticauth.Config{
			UserID: a.Config.Auth.StaticUserID,
			Email:  a.Config.Auth.StaticEmail,
		})
	}
	return nil
}

// Close releases store connections and flushes metrics.
func (a *App) Close() error {
	var errs []error
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if a.Metrics != nil {
		if err := a.Metrics.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close metrics client: %w", err))
		}
	}
	return errors.Join(errs...)
}
