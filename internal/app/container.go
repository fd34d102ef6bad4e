package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-coverage-api/internal/coverage"
	"github.com/noah-isme/sma-coverage-api/internal/repository"
	"github.com/noah-isme/sma-coverage-api/internal/service"
	"github.com/noah-isme/sma-coverage-api/pkg/cache"
	"github.com/noah-isme/sma-coverage-api/pkg/config"
	"github.com/noah-isme/sma-coverage-api/pkg/database"
	"github.com/noah-isme/sma-coverage-api/pkg/export"
	"github.com/noah-isme/sma-coverage-api/pkg/notify"
)

// Container holds every long-lived dependency of the API and the CLI.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB          *sqlx.DB
	RedisClient *redis.Client

	Metrics       *service.MetricsService
	Cache         *service.CacheService
	Notifications *service.NotificationService
	Coverage      *service.CoverageService
}

// NewContainer connects to Postgres (required) and Redis (optional outside production) and wires
// the coverage service graph. Notification workers are started with ctx.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: service.NewMetricsService(),
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.DB = db
	logger.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	var cacheRepo service.CacheRepository
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		if cfg.Env == config.EnvProduction {
			_ = db.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Warn("redis not available, coverage cache disabled", zap.Error(err))
	} else {
		c.RedisClient = client
		cacheRepo = repository.NewCacheRepository(client, logger)
		logger.Info("connected to redis")
	}
	c.Cache = service.NewCacheService(cacheRepo, c.Metrics, cfg.Coverage.CacheTTL, logger, cacheRepo != nil)

	publisher, err := NewPublisher(cfg, c.Metrics, logger)
	if err != nil {
		if cfg.Env == config.EnvProduction {
			c.Close()
			return nil, err
		}
		logger.Warn("notification broker not available, using noop publisher", zap.Error(err))
		publisher = notify.NewNoopPublisher(logger)
	}
	c.Notifications = service.NewNotificationService(publisher, c.Metrics, service.NotificationOptions{
		Workers:        cfg.Notification.Workers,
		Retries:        cfg.Notification.Retries,
		PublishTimeout: cfg.Notification.PublishTimeout,
	}, logger)
	c.Notifications.Start(ctx)

	absences := repository.NewAbsenceRepository(db)
	staff := repository.NewStaffRepository(db)
	substitutes := repository.NewSubstituteRepository(db)
	schedules := repository.NewStaffScheduleRepository(db)
	runs := repository.NewCoverageRunRepository(db)
	assignments := repository.NewCoverageAssignmentRepository(db)

	engine := coverage.NewEngine(cfg.Coverage.EngineConfig(), logger)
	loader := service.NewCoverageSnapshotLoader(absences, staff, substitutes, schedules, assignments, c.Metrics, logger)
	exporter := service.NewCoverageExportService(export.NewCSVExporter(), export.NewPDFExporter(), logger)

	c.Coverage = service.NewCoverageService(service.CoverageDependencies{
		Loader:         loader,
		Engine:         engine,
		Runs:           runs,
		Assignments:    assignments,
		Absences:       absences,
		Staff:          staff,
		Substitutes:    substitutes,
		Tx:             db,
		Cache:          c.Cache,
		Notifier:       c.Notifications,
		Exporter:       exporter,
		Metrics:        c.Metrics,
		Validator:      validator.New(),
		Logger:         logger,
		ExportsEnabled: cfg.Exports.Enabled,
	})

	return c, nil
}

// NewPublisher builds the broker publisher selected by NOTIFY_DRIVER. Broker-backed publishers are
// wrapped in a circuit breaker that reports its state to metrics.
func NewPublisher(cfg *config.Config, metrics *service.MetricsService, logger *zap.Logger) (notify.Publisher, error) {
	var (
		next notify.Publisher
		err  error
	)
	switch cfg.Notification.Driver {
	case "", config.NotifyDriverNone:
		return notify.NewNoopPublisher(logger), nil
	case config.NotifyDriverAMQP:
		next, err = notify.NewAMQPPublisher(cfg.Notification.AMQPURL, cfg.Notification.AMQPExchange, logger)
	case config.NotifyDriverMQTT:
		next, err = notify.NewMQTTPublisher(cfg.Notification.MQTTBroker, cfg.Notification.MQTTClientID, cfg.Notification.MQTTTopicPrefix, logger)
	default:
		return nil, fmt.Errorf("unknown notification driver %q", cfg.Notification.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s publisher: %w", cfg.Notification.Driver, err)
	}

	return notify.NewBreakerPublisher(next, notify.BreakerConfig{
		Name:             cfg.Notification.Driver,
		FailureThreshold: cfg.Notification.BreakerFailures,
		Timeout:          cfg.Notification.BreakerTimeout,
		OnStateChange:    metrics.SetBreakerState,
	}, logger), nil
}

// Close stops the notification workers and releases connections.
func (c *Container) Close() {
	if c.Notifications != nil {
		c.Notifications.Stop()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing redis connection", zap.Error(err))
		} else {
			c.Logger.Info("redis connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database connection", zap.Error(err))
		} else {
			c.Logger.Info("database connection closed")
		}
	}
}
