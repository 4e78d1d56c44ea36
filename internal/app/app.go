// Package app builds the certifier object graph from configuration. Both
// cmd/server and cmd/reconcile start from it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"certifier/internal/certificate/adapters"
	"certifier/internal/certificate/callback"
	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/events"
	"certifier/internal/certificate/lock"
	"certifier/internal/certificate/metrics"
	"certifier/internal/certificate/service"
	"certifier/internal/certificate/store"
	"certifier/internal/platform/config"
	"certifier/internal/platform/database"
	"certifier/internal/platform/health"
	"certifier/internal/platform/kafka/producer"
	"certifier/internal/platform/redis"
	"certifier/internal/seeder"
	"certifier/migrations"
	"certifier/pkg/platform/circuit"
	"certifier/pkg/platform/tracer"
)

const producerCloseTimeout = 5 * time.Second

// platformData is what the service reads from the learning platform and
// what the seeder writes to it.
type platformData interface {
	service.GradeEvaluator
	service.CourseCatalog
	service.LearnerDirectory
	seeder.PlatformStore
}

type certificateStore interface {
	service.RecordStore
	service.PolicyStore
	callback.RecordStore
	seeder.PolicyStore
}

// App holds the wired components and the connections they share.
type App struct {
	Service    *service.Service
	Reconciler *callback.Reconciler
	Health     *health.Handler
	Metrics    *metrics.Metrics

	db       *database.Pool
	redis    *redis.Client
	producer *producer.Producer
	logger   *slog.Logger
}

// Build connects to whatever infrastructure is configured and falls back to
// in-process implementations for the rest.
func Build(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{
		Health:  health.New(cfg.Environment),
		Metrics: metrics.New(reg),
		logger:  logger,
	}

	records, platform, err := a.openStores(ctx, cfg, reg)
	if err != nil {
		a.Close()
		return nil, err
	}

	locker, err := a.openLocker(cfg, reg)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher, err := a.openPublisher(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.SeedDemoData {
		if _, err := seeder.New(platform, records, logger).SeedAll(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	credentials := credential.New(cfg.Credential,
		credential.WithTracer(tracer.NewOTel()),
		credential.WithBreaker(circuit.New("credential_provider")),
		credential.WithLogger(logger),
	)

	a.Service = service.New(records, records, platform, platform, platform, credentials,
		service.WithLocker(locker),
		service.WithPublisher(publisher),
		service.WithMetrics(a.Metrics),
		service.WithLogger(logger),
		service.WithLockTTL(cfg.IssuanceLockTTL),
	)
	a.Reconciler = callback.NewReconciler(records, platform,
		callback.WithLocker(locker),
		callback.WithMetrics(a.Metrics),
		callback.WithPublisher(publisher),
		callback.WithLogger(logger),
	)
	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Server, reg prometheus.Registerer) (certificateStore, platformData, error) {
	pool, err := database.New(cfg.Database, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if pool == nil {
		a.logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		return store.New(), adapters.NewInMemory(), nil
	}
	a.db = pool
	a.Health.RegisterCheck("database", pool.Health)

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		a.logger.InfoContext(ctx, "database migrations applied")
	}
	return store.NewPostgres(pool.DB()), adapters.NewPostgres(pool.DB()), nil
}

func (a *App) openLocker(cfg config.Server, reg prometheus.Registerer) (service.Locker, error) {
	client, err := redis.New(cfg.Redis, reg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		return lock.NewMemoryLocker(), nil
	}
	a.redis = client
	a.Health.RegisterCheck("redis", client.Health)
	return lock.NewRedisLocker(client.Client), nil
}

func (a *App) openPublisher(cfg config.Server) (service.EventPublisher, error) {
	if !cfg.Kafka.Enabled() {
		return events.NewLogPublisher(a.logger), nil
	}
	p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect kafka producer: %w", err)
	}
	a.producer = p
	a.Health.RegisterCheck("kafka", p.Ping)
	return events.NewKafkaPublisher(p, cfg.Kafka.LifecycleTopic, a.logger), nil
}

// ReportRedisPoolStats samples pool stats until ctx ends. No-op without Redis.
func (a *App) ReportRedisPoolStats(ctx context.Context, interval time.Duration) {
	if a.redis != nil {
		a.redis.ReportPoolStats(ctx, interval)
	}
}

// Close releases every connection Build opened.
func (a *App) Close() error {
	var errs []error
	if a.producer != nil {
		a.producer.Close(producerCloseTimeout)
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
