// Package control wires configuration into a running application.
package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/grpc"

	"github.com/vietddude/eventmailer/internal/catalog"
	"github.com/vietddude/eventmailer/internal/core/config"
	"github.com/vietddude/eventmailer/internal/core/domain"
	"github.com/vietddude/eventmailer/internal/distance"
	"github.com/vietddude/eventmailer/internal/health"
	redisclient "github.com/vietddude/eventmailer/internal/infra/redis"
	"github.com/vietddude/eventmailer/internal/infra/storage/postgres"
	"github.com/vietddude/eventmailer/internal/mailer"
	"github.com/vietddude/eventmailer/internal/notify"
	"github.com/vietddude/eventmailer/internal/recommend"
)

// App is the assembled application: catalogue, resolver, selector and sinks.
type App struct {
	cfg     *config.AppConfig
	session uuid.UUID
	log     *slog.Logger

	loader   catalog.Loader
	service  distance.Service
	resolver *distance.Resolver
	selector *recommend.Selector
	sink     notify.Sink
	mailer   *mailer.Mailer

	healthMon    *health.Monitor
	healthServer *health.Server
	grpcServer   *grpc.Server

	db          *postgres.DB
	redisClient *redisclient.Client
	closers     []io.Closer

	eventsMu sync.Mutex
	events   []domain.Event
}

// Option customises NewApp.
type Option func(*options)

type options struct {
	out    io.Writer
	logger *slog.Logger
}

// WithOutput sets where the console sink writes. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithLogger sets the application logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewApp creates an App with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	a := &App{
		cfg:     cfg,
		session: newSession(),
		log:     o.logger,
		loader:  catalog.NewLoader(cfg.Taxonomy.Path),
	}

	policy, err := recommend.ParsePolicy(cfg.Selection.Policy)
	if err != nil {
		return nil, err
	}

	svc, closer, err := newService(cfg.Distance, a.log)
	if err != nil {
		return nil, err
	}
	a.service = svc
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.resolver = distance.NewResolver(svc, a.newCache(cfg), distance.ResolverConfig{
		Name: cfg.Distance.Provider,
		Retry: distance.RetryConfig{
			MaxAttempts:  cfg.Distance.Retry.MaxAttempts,
			InitialDelay: cfg.Distance.Retry.InitialDelay,
			MaxDelay:     cfg.Distance.Retry.MaxDelay,
		},
		Timeout:     cfg.Distance.Timeout,
		Concurrency: cfg.Distance.Concurrency,
	}, a.log)

	a.selector = recommend.NewSelector(a.resolver, recommend.Config{
		Count:  cfg.Selection.Count,
		Policy: policy,
	}, a.log)

	sink, err := a.newSink(ctx, cfg, o.out)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.sink = sink
	a.mailer = mailer.New(a.selector, sink, a.log)

	a.healthMon = health.NewMonitor(10*time.Second, a.healthChecks()...)
	a.healthServer = health.NewServer(a.healthMon, a, cfg.Server.Port)

	a.log.Info("Application initialized",
		"session", a.session,
		"provider", cfg.Distance.Provider,
		"cache", cfg.Cache.Backend,
		"sink", sink.Name())
	return a, nil
}

// Session returns the id scoping this run's cache keys and outbox rows.
func (a *App) Session() uuid.UUID {
	return a.session
}

// Events loads and flattens the taxonomy once.
func (a *App) Events(ctx context.Context) ([]domain.Event, error) {
	a.eventsMu.Lock()
	defer a.eventsMu.Unlock()

	if a.events != nil {
		return a.events, nil
	}

	root, err := a.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	events := catalog.Flatten(root)
	if events == nil {
		events = []domain.Event{}
	}
	a.events = events
	a.log.Debug("Taxonomy loaded", "events", len(events))
	return events, nil
}

// Run delivers every strategy's selection for the customer.
func (a *App) Run(ctx context.Context, customer domain.Customer) ([]mailer.Result, error) {
	events, err := a.Events(ctx)
	if err != nil {
		return nil, err
	}
	return a.mailer.Run(ctx, customer, events)
}

// Recommend runs one strategy without delivering. It implements
// health.Recommender.
func (a *App) Recommend(
	ctx context.Context,
	strategy domain.StrategyName,
	customer domain.Customer,
) ([]domain.Event, error) {
	events, err := a.Events(ctx)
	if err != nil {
		return nil, err
	}
	return a.selector.Select(ctx, strategy, customer, events)
}

// Distance resolves one pair through the memoized resolver.
func (a *App) Distance(ctx context.Context, from, to string) distance.Lookup {
	return a.resolver.Resolve(ctx, from, to)
}

// Mailer exposes the dispatcher, e.g. to register progress hooks.
func (a *App) Mailer() *mailer.Mailer {
	return a.mailer
}

// Start serves the HTTP endpoints in the background.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.Events(ctx); err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}

	if a.db != nil {
		a.db.StartMetricsCollector(ctx, 15*time.Second)
	}

	if port := a.cfg.Server.GRPCPort; port > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return fmt.Errorf("failed to listen for grpc: %w", err)
		}
		a.grpcServer = a.newGRPCServer()
		go func() {
			if err := a.grpcServer.Serve(lis); err != nil {
				a.log.Error("gRPC server failed", "error", err)
			}
		}()
		a.log.Info("gRPC distance server started", "port", port)
	}

	go func() {
		if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()
	a.log.Info("HTTP server started", "port", a.cfg.Server.Port)
	return nil
}

// newGRPCServer exposes the memoized resolver as distance.v1.DistanceService,
// so remote callers share this process's cache and retry budget.
func (a *App) newGRPCServer() *grpc.Server {
	srv := grpc.NewServer()
	distance.RegisterGRPCServer(srv, distance.ServiceFunc(
		func(ctx context.Context, from, to string) (int, error) {
			lookup := a.resolver.Resolve(ctx, from, to)
			if !lookup.Reachable() {
				return 0, fmt.Errorf("%w: %s -> %s (%s)", distance.ErrUnavailable, from, to, lookup.Outcome)
			}
			return lookup.Distance, nil
		},
	))
	return srv
}

// Stop shuts the HTTP server down and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping application...")
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	return errors.Join(a.healthServer.Stop(ctx), a.Close())
}

// Close releases sinks, connections and remote services.
func (a *App) Close() error {
	var errs []error
	if a.sink != nil {
		errs = append(errs, a.sink.Close())
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) healthChecks() []health.Check {
	var checks []health.Check
	if a.db != nil {
		checks = append(checks, health.Check{Name: "postgres", Critical: true, Probe: a.db.Health})
	}
	if a.redisClient != nil {
		checks = append(checks, health.Check{Name: "redis", Probe: a.redisClient.Health})
	}
	if b, ok := a.service.(*distance.BreakerService); ok {
		checks = append(checks, health.Check{Name: "distance-breaker", Probe: func(context.Context) error {
			if b.State() == gobreaker.StateOpen {
				return errors.New("circuit open")
			}
			return nil
		}})
	}
	checks = append(checks, health.Check{Name: "taxonomy", Critical: true, Probe: func(ctx context.Context) error {
		_, err := a.Events(ctx)
		return err
	}})
	return checks
}
