package control

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vietddude/eventmailer/internal/core/config"
	"github.com/vietddude/eventmailer/internal/distance"
	redisclient "github.com/vietddude/eventmailer/internal/infra/redis"
	"github.com/vietddude/eventmailer/internal/infra/storage/postgres"
	"github.com/vietddude/eventmailer/internal/notify"
)

// Provider names accepted in distance.provider.
const (
	ProviderSimulated = "simulated"
	ProviderHTTP      = "http"
	ProviderGRPC      = "grpc"
)

// newService builds the distance service, wrapped in a circuit breaker for
// remote providers when enabled.
func newService(cfg config.DistanceConfig, logger *slog.Logger) (distance.Service, io.Closer, error) {
	var (
		svc    distance.Service
		closer io.Closer
	)

	switch cfg.Provider {
	case ProviderSimulated, "":
		return distance.NewSimulatedService(cfg.Seed, cfg.FailureRate), nil, nil
	case ProviderHTTP:
		if cfg.URL == "" {
			return nil, nil, fmt.Errorf("distance provider %q requires a url", cfg.Provider)
		}
		httpSvc := distance.NewHTTPService(cfg.URL, cfg.Timeout)
		svc, closer = httpSvc, httpSvc
	case ProviderGRPC:
		if cfg.URL == "" {
			return nil, nil, fmt.Errorf("distance provider %q requires a url", cfg.Provider)
		}
		grpcSvc, err := distance.NewGRPCService(cfg.URL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create grpc distance service: %w", err)
		}
		svc, closer = grpcSvc, grpcSvc
	default:
		return nil, nil, fmt.Errorf("unknown distance provider %q", cfg.Provider)
	}

	if cfg.Breaker.Enabled {
		svc = distance.NewBreakerService(svc, distance.BreakerConfig{
			Name:                cfg.Provider,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			Timeout:             cfg.Breaker.Timeout,
		}, logger)
	}
	return svc, closer, nil
}

// newCache builds the distance cache. A Redis cache that cannot connect falls
// back to memory; the run still works, it just doesn't share lookups.
func (a *App) newCache(cfg *config.AppConfig) distance.Cache {
	switch cfg.Cache.Backend {
	case "redis":
		if cfg.Redis.URL == "" {
			a.log.Warn("Redis cache selected without redis.url, using memory cache")
			return distance.NewMemoryCache()
		}
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			a.log.Warn("Failed to connect to Redis, using memory cache", "error", err)
			return distance.NewMemoryCache()
		}
		a.redisClient = client
		a.log.Info("Using Redis distance cache", "session", a.session)
		return redisclient.NewDistanceCache(client, a.session.String(), cfg.Cache.TTL)
	default:
		return distance.NewMemoryCache()
	}
}

// newSink builds the fan-out over the configured sinks.
func (a *App) newSink(ctx context.Context, cfg *config.AppConfig, out io.Writer) (notify.Sink, error) {
	names := cfg.Notify.Sinks
	if len(names) == 0 {
		names = []string{"console"}
	}

	sinks := make([]notify.Sink, 0, len(names))
	for _, name := range names {
		switch name {
		case "console":
			sinks = append(sinks, notify.NewConsoleSink(out))
		case "memory":
			sinks = append(sinks, notify.NewMemorySink())
		case "outbox":
			db, err := a.openDB(ctx, cfg.Database)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, postgres.NewOutboxSink(db, a.session))
		default:
			return nil, fmt.Errorf("unknown notify sink %q", name)
		}
	}
	return notify.NewFanout(sinks...), nil
}

func (a *App) openDB(ctx context.Context, cfg postgres.Config) (*postgres.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("outbox sink requires database.url")
	}

	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	if err := postgres.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("outbox: %w", err)
	}

	a.log.Info("Using PostgreSQL outbox")
	a.db = db
	return db, nil
}

// newSession identifies one process lifetime in cache keys and outbox rows.
func newSession() uuid.UUID {
	return uuid.New()
}
