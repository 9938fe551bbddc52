package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chargewatch/internal/adapter/httpserver"
	"github.com/pscheid92/chargewatch/internal/adapter/kvstore"
	"github.com/pscheid92/chargewatch/internal/adapter/metrics"
	"github.com/pscheid92/chargewatch/internal/adapter/mockapi"
	"github.com/pscheid92/chargewatch/internal/adapter/postgres"
	"github.com/pscheid92/chargewatch/internal/adapter/redis"
	"github.com/pscheid92/chargewatch/internal/adapter/remoteapi"
	"github.com/pscheid92/chargewatch/internal/app"
	"github.com/pscheid92/chargewatch/internal/chart"
	"github.com/pscheid92/chargewatch/internal/domain"
	"github.com/pscheid92/chargewatch/internal/platform/config"
	"github.com/pscheid92/chargewatch/internal/platform/crypto"
	"github.com/pscheid92/chargewatch/internal/platform/logging"
	"github.com/pscheid92/chargewatch/internal/platform/retry"
	"github.com/pscheid92/chargewatch/internal/platform/version"
	goredis "github.com/redis/go-redis/v9"
)

const (
	connectTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// storage is the selected key-value backend plus what it takes to probe and
// release it.
type storage struct {
	store  domain.KeyValueStore
	checks []httpserver.HealthCheck
	close  func()
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func connectPolicy(clock clockwork.Clock, backend string) retry.Policy {
	return retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Clock:          clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Storage connection failed, retrying", "backend", backend, "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
}

func setupStorage(ctx context.Context, cfg *config.Config, clock clockwork.Clock, storageMetrics *metrics.StorageMetrics) (storage, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return storage{store: kvstore.NewMemoryStore(), close: func() {}}, nil

	case config.StorageFile:
		fs, err := kvstore.NewFileStore(cfg.StorageDir)
		if err != nil {
			return storage{}, err
		}
		slog.Info("Using file storage", "dir", fs.Dir())
		return storage{store: fs, close: func() {}}, nil

	case config.StorageRedis:
		hooks := []goredis.Hook{redis.NewMetricsHook(storageMetrics), redis.NewCircuitBreakerHook(storageMetrics)}
		client, err := retry.Do(ctx, connectPolicy(clock, cfg.StorageBackend), retry.Transient, func(ctx context.Context) (*goredis.Client, error) {
			return redis.NewClient(ctx, cfg.RedisURL, hooks...)
		})
		if err != nil {
			return storage{}, fmt.Errorf("connect to redis: %w", err)
		}
		kv := redis.NewKVStore(client, cfg.SessionMaxAge)
		return storage{
			store:  kv,
			checks: []httpserver.HealthCheck{httpserver.StorageCheck("redis", kv)},
			close:  func() { _ = client.Close() },
		}, nil

	case config.StoragePostgres:
		pool, err := retry.Do(ctx, connectPolicy(clock, cfg.StorageBackend), retry.Transient, func(ctx context.Context) (*pgxpool.Pool, error) {
			return postgres.Connect(ctx, cfg.DatabaseURL, postgres.NewMetricsTracer(storageMetrics))
		})
		if err != nil {
			return storage{}, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
			pool.Close()
			return storage{}, fmt.Errorf("run migrations: %w", err)
		}
		kv := postgres.NewKVStore(pool)
		return storage{
			store:  kv,
			checks: []httpserver.HealthCheck{httpserver.StorageCheck("postgres", kv)},
			close:  pool.Close,
		}, nil
	}

	return storage{}, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// setupProvider returns the data provider the consoles use and, in mock mode,
// the same provider for the in-process provider API.
func setupProvider(cfg *config.Config, clock clockwork.Clock, storageMetrics *metrics.StorageMetrics) (domain.DataProvider, *mockapi.Provider, error) {
	if cfg.Provider == config.ProviderRemote {
		client, err := remoteapi.New(cfg.ProviderURL,
			remoteapi.WithTimeout(cfg.ProviderTimeout),
			remoteapi.WithMetrics(storageMetrics),
		)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using remote data provider", "url", cfg.ProviderURL)
		return client, nil, nil
	}

	mock, err := mockapi.New(
		mockapi.WithClock(clock),
		mockapi.WithDelays(cfg.MockLoginDelay, cfg.MockFetchDelay),
	)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Using mock data provider", "login_delay", cfg.MockLoginDelay, "fetch_delay", cfg.MockFetchDelay)
	return mock, mock, nil
}

// exitWith logs and terminates after releasing storage, which os.Exit would
// otherwise skip along with every deferred call.
func exitWith(st storage, exit func(code int)) func(msg string, args ...any) {
	return func(msg string, args ...any) {
		slog.Error(msg, args...)
		st.close()
		exit(1)
	}
}

func runGracefulShutdown(srv *httpserver.Server, consoles *app.Consoles) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		consoles.Stop()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	registry := metrics.NewRegistry()
	storageMetrics := metrics.NewStorageMetrics(registry)
	dashboardMetrics := metrics.NewDashboardMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	st, err := setupStorage(ctx, cfg, clock, storageMetrics)
	cancel()
	if err != nil {
		slog.Error("Failed to set up storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer st.close()

	fail := exitWith(st, os.Exit)

	store := st.store
	if cfg.StorageEncryptionKey != "" {
		sealer, err := crypto.NewAESGCM(cfg.StorageEncryptionKey)
		if err != nil {
			fail("Failed to set up storage encryption", "error", err)
		}
		store = kvstore.Encrypted(store, sealer)
		slog.Info("Storage encryption enabled")
	}

	provider, mock, err := setupProvider(cfg, clock, storageMetrics)
	if err != nil {
		fail("Failed to set up data provider", "provider", cfg.Provider, "error", err)
	}

	consoles := app.NewConsoles(func(clientID string) *app.Console {
		return app.NewConsole(
			provider,
			kvstore.Scoped(store, kvstore.ClientPrefix(clientID)),
			app.WithRenderer(chart.NewMemoryRenderer()),
			app.WithClock(clock),
			app.WithTelemetry(dashboardMetrics),
		)
	}, cfg.ConsoleIdleTimeout, clock, dashboardMetrics)

	opts := []httpserver.Option{
		httpserver.WithHealthChecks(st.checks...),
		httpserver.WithMetrics(httpMetrics, metrics.Handler(registry)),
	}
	if mock != nil {
		opts = append(opts, httpserver.WithProviderAPI(mock, mockapi.ValidToken))
	}

	srv, err := httpserver.NewServer(cfg, consoles, opts...)
	if err != nil {
		consoles.Stop()
		fail("Failed to create server", "error", err)
	}

	done := runGracefulShutdown(srv, consoles)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		consoles.Stop()
		fail("Server error", "error", err)
	}

	<-done
}
