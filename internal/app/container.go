package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	identityCommands "github.com/felixgeelhaar/quorum/internal/identity/application/commands"
	identityDomain "github.com/felixgeelhaar/quorum/internal/identity/domain"
	"github.com/felixgeelhaar/quorum/internal/identity/infrastructure/auth"
	meetingCommands "github.com/felixgeelhaar/quorum/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/quorum/internal/meetings/application/queries"
	meetingServices "github.com/felixgeelhaar/quorum/internal/meetings/application/services"
	meetingsDomain "github.com/felixgeelhaar/quorum/internal/meetings/domain"
	meetingCache "github.com/felixgeelhaar/quorum/internal/meetings/infrastructure/cache"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/quorum/pkg/clock"
	"github.com/felixgeelhaar/quorum/pkg/config"
	"github.com/felixgeelhaar/quorum/pkg/observability"
)

const pingTimeout = 3 * time.Second

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  clock.Clock

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis, nil when no cache is configured or reachable
	RedisClient *redis.Client

	// Repositories
	UserRepo     identityDomain.UserRepository
	MeetingRepo  meetingsDomain.MeetingRepository
	TimeSlotRepo meetingsDomain.TimeSlotRepository
	VoteRepo     meetingsDomain.VoteRepository
	OutboxRepo   outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	MeetingCache meetingQueries.MeetingCache
	Health       *observability.HealthRegistry

	// Auth
	PasswordHasher *auth.BcryptHasher
	Tokens         *auth.JWTIssuer

	// Identity Command Handlers
	RegisterUserHandler *identityCommands.RegisterUserHandler
	LoginUserHandler    *identityCommands.LoginUserHandler

	// Meeting Command Handlers
	CreateMeetingHandler  *meetingCommands.CreateMeetingHandler
	UpdateMeetingHandler  *meetingCommands.UpdateMeetingHandler
	DeleteMeetingHandler  *meetingCommands.DeleteMeetingHandler
	CreateTimeSlotHandler *meetingCommands.CreateTimeSlotHandler
	UpdateTimeSlotHandler *meetingCommands.UpdateTimeSlotHandler
	DeleteTimeSlotHandler *meetingCommands.DeleteTimeSlotHandler
	CreateVoteHandler     *meetingCommands.CreateVoteHandler
	DeleteVoteHandler     *meetingCommands.DeleteVoteHandler

	// Meeting Query Handlers
	Aggregator               *meetingServices.Aggregator
	GetMeetingHandler        *meetingQueries.GetMeetingHandler
	ListMeetingsHandler      *meetingQueries.ListMeetingsHandler
	ListOwnedMeetingsHandler *meetingQueries.ListOwnedMeetingsHandler
}

// Option customises a container before its handlers are built.
type Option func(*Container)

// WithClock replaces the system clock.
func WithClock(clk clock.Clock) Option {
	return func(c *Container) {
		c.Clock = clk
	}
}

// NewContainer connects to the configured database and cache and builds
// every repository and handler. In local mode the SQLite schema is migrated
// on start.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Clock:  clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(c)
	}

	dbConfig, err := database.ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := database.NewConnection(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	if cfg.LocalMode {
		if _, err := c.Migrate(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := c.connectCache(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := c.buildRepositories(); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.buildHandlers()

	c.Health = observability.NewHealthRegistry()
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))
	if c.RedisClient != nil {
		c.Health.Register("cache", observability.CacheHealthChecker(func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}))
	}

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"local_mode", cfg.LocalMode,
		"cache", c.RedisClient != nil,
	)
	return c, nil
}

// connectCache wires the Redis meeting cache. Outside production an
// unreachable Redis falls back to serving every read from the database.
func (c *Container) connectCache(ctx context.Context) error {
	c.MeetingCache = meetingQueries.NoopMeetingCache{}
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, meeting cache disabled", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, meeting cache disabled", "error", err)
		return nil
	}

	c.RedisClient = client
	c.MeetingCache = meetingCache.NewRedisMeetingCache(client, c.Config.MeetingCacheTTL)
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) buildRepositories() error {
	factory := NewRepositoryFactory(c.DBConn)

	var err error
	if c.UserRepo, err = factory.UserRepository(); err != nil {
		return fmt.Errorf("failed to create user repository: %w", err)
	}
	if c.MeetingRepo, err = factory.MeetingRepository(); err != nil {
		return fmt.Errorf("failed to create meeting repository: %w", err)
	}
	if c.TimeSlotRepo, err = factory.TimeSlotRepository(); err != nil {
		return fmt.Errorf("failed to create time slot repository: %w", err)
	}
	if c.VoteRepo, err = factory.VoteRepository(); err != nil {
		return fmt.Errorf("failed to create vote repository: %w", err)
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		return fmt.Errorf("failed to create outbox repository: %w", err)
	}

	c.UnitOfWork = database.NewUnitOfWork(c.DBConn)
	return nil
}

func (c *Container) buildHandlers() {
	cfg, logger := c.Config, c.Logger

	c.PasswordHasher = auth.NewBcryptHasher(0)
	c.Tokens = auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL, c.Clock)

	c.RegisterUserHandler = identityCommands.NewRegisterUserHandler(
		c.UserRepo, c.OutboxRepo, c.UnitOfWork, c.PasswordHasher, c.Tokens, c.Clock, logger,
	)
	c.LoginUserHandler = identityCommands.NewLoginUserHandler(c.UserRepo, c.PasswordHasher, c.Tokens)

	c.CreateMeetingHandler = meetingCommands.NewCreateMeetingHandler(
		c.MeetingRepo, c.TimeSlotRepo, c.OutboxRepo, c.UnitOfWork, c.Clock, logger,
	)
	c.UpdateMeetingHandler = meetingCommands.NewUpdateMeetingHandler(
		c.MeetingRepo, c.OutboxRepo, c.UnitOfWork, c.MeetingCache, c.Clock, logger,
	)
	c.DeleteMeetingHandler = meetingCommands.NewDeleteMeetingHandler(
		c.MeetingRepo, c.OutboxRepo, c.UnitOfWork, c.MeetingCache, c.Clock, logger,
	)
	c.CreateTimeSlotHandler = meetingCommands.NewCreateTimeSlotHandler(
		c.TimeSlotRepo, c.OutboxRepo, c.UnitOfWork, c.MeetingCache, c.Clock, logger,
	)
	c.UpdateTimeSlotHandler = meetingCommands.NewUpdateTimeSlotHandler(
		c.TimeSlotRepo, c.OutboxRepo, c.UnitOfWork, c.MeetingCache, c.Clock, logger,
	)
	c.DeleteTimeSlotHandler = meetingCommands.NewDeleteTimeSlotHandler(
		c.TimeSlotRepo, c.OutboxRepo, c.UnitOfWork, c.MeetingCache, c.Clock, logger,
	)
	c.CreateVoteHandler = meetingCommands.NewCreateVoteHandler(
		c.TimeSlotRepo, c.VoteRepo, c.OutboxRepo, c.UnitOfWork, c.MeetingCache, c.Clock, logger,
	)
	c.DeleteVoteHandler = meetingCommands.NewDeleteVoteHandler(
		c.TimeSlotRepo, c.VoteRepo, c.OutboxRepo, c.UnitOfWork, c.MeetingCache, c.Clock, logger,
	)

	c.Aggregator = meetingServices.NewAggregator(c.MeetingRepo, c.TimeSlotRepo, c.VoteRepo)
	c.GetMeetingHandler = meetingQueries.NewGetMeetingHandler(c.MeetingRepo, c.Aggregator, c.MeetingCache, logger)
	c.ListMeetingsHandler = meetingQueries.NewListMeetingsHandler(c.Aggregator)
	c.ListOwnedMeetingsHandler = meetingQueries.NewListOwnedMeetingsHandler(c.Aggregator)
}

// Migrate applies pending schema migrations and returns their versions.
func (c *Container) Migrate(ctx context.Context) ([]string, error) {
	applied, err := migrations.NewRunner(c.DBConn, c.Logger).Up(ctx)
	if err != nil {
		return nil, err
	}
	if len(applied) > 0 {
		c.Logger.Info("migrations applied", "versions", applied)
	}
	return applied, nil
}

// NewEventPublisher connects to RabbitMQ behind a circuit breaker. Without a
// RABBITMQ_URL, or outside production when the broker is down, events are
// discarded by a noop publisher.
func (c *Container) NewEventPublisher() (eventbus.Publisher, error) {
	if c.Config.RabbitMQURL == "" {
		c.Logger.Info("no RabbitMQ configured, using noop publisher")
		return eventbus.NewNoopPublisher(c.Logger), nil
	}

	rabbit, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if c.Config.IsProduction() {
			return nil, err
		}
		c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		return eventbus.NewNoopPublisher(c.Logger), nil
	}

	breakerCfg := eventbus.DefaultBreakerConfig()
	if c.Config.BreakerFailureThreshold > 0 {
		breakerCfg.FailureThreshold = uint32(c.Config.BreakerFailureThreshold)
	}
	if c.Config.BreakerTimeout > 0 {
		breakerCfg.Timeout = c.Config.BreakerTimeout
	}
	return eventbus.NewBreakerPublisher(rabbit, breakerCfg, c.Logger), nil
}

// NewOutboxProcessor builds the relay that drains the outbox into publisher.
func (c *Container) NewOutboxProcessor(publisher eventbus.Publisher) *outbox.Processor {
	processorCfg := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		processorCfg.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		processorCfg.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		processorCfg.MaxRetries = c.Config.OutboxMaxRetries
	}
	if c.Config.OutboxRetentionDays > 0 {
		processorCfg.RetentionDays = c.Config.OutboxRetentionDays
	}
	if c.Config.OutboxCleanupInterval > 0 {
		processorCfg.CleanupInterval = c.Config.OutboxCleanupInterval
	}
	return outbox.NewProcessor(c.OutboxRepo, publisher, processorCfg, c.Clock, c.Logger)
}

// Close releases the cache and database connections.
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
			errs = append(errs, err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
			errs = append(errs, err)
		} else {
			c.Logger.Info("database connection closed")
		}
	}
	return errors.Join(errs...)
}
