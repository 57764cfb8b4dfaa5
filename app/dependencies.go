package app

import (
	"context"
	"fmt"

	"github.com/aquasync/backend/cache"
	"github.com/aquasync/backend/config"
	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/jobs"
	"github.com/aquasync/backend/mailer"
	"github.com/aquasync/backend/middleware"
	"github.com/aquasync/backend/repositories"
	"github.com/aquasync/backend/repositories/postgres"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/token"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Redis   *redis.Client
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repositories *repositories.Repositories
	TxManager    repositories.TransactionManager

	// Auth
	Tokens         *token.Manager
	Permissions    *services.RolePermissions
	AuthMiddleware *middleware.AuthMiddleware

	// Email
	Renderer *mailer.Renderer
	Sender   mailer.Sender
	Jobs     *jobs.Client

	// Services
	AuthService        *services.AuthService
	BuildingService    *services.BuildingService
	ApartmentService   *services.ApartmentService
	ReadingService     *services.ReadingService
	PaymentListService *services.PaymentListService
	EmailService       *services.EmailService
}

// NewDependencies opens PostgreSQL and, when configured, Redis, then wires
// every service on top of them.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = cache.New(ctx, cfg.Redis)
		if err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		logger.Info("redis connection established", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Warn("redis not configured, permission cache and email queue disabled")
	}

	deps, err := Wire(cfg, factory.GetDB(), redisClient, logger)
	if err != nil {
		_ = factory.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}
	deps.RepoFactory = factory

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Wire builds the application graph over an open database pool. A nil
// redisClient disables the permission cache and the email queue.
func Wire(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		DB:      db,
		Redis:   redisClient,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	factory := postgres.NewRepositoryFactoryFromDB(db, logger)
	deps.Repositories = factory.NewRepositories()
	deps.TxManager = factory.GetTransactionManager()

	tokens, err := token.NewManager(token.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}
	deps.Tokens = tokens

	var permissionCache *cache.PermissionCache
	if redisClient != nil {
		permissionCache = cache.NewPermissionCache(redisClient, cfg.Redis.PermissionCacheTTL, logger)
	}
	deps.Permissions = services.NewRolePermissions(deps.Repositories.Roles, permissionCache)

	deps.AuthMiddleware = middleware.NewAuthMiddleware(tokens, middleware.GateConfig{
		CookieName: cfg.Auth.CookieName,
		Prefix:     cfg.Auth.GatePrefix,
		Exclusions: cfg.Auth.GateExclusions,
	}, deps.Metrics, logger)

	deps.initEmail(cfg)
	deps.initServices(cfg)

	return deps, nil
}

// NewSender returns the Resend sender when an API key is configured and a
// logging sender otherwise.
func NewSender(cfg config.EmailConfig, logger *zap.Logger) mailer.Sender {
	if cfg.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not set, emails are logged instead of sent")
		return mailer.NewLogSender(logger)
	}
	return mailer.NewResendSender(resend.NewClient(cfg.ResendAPIKey), cfg.From, logger)
}

// RedisConnOpt converts the Redis config for the job queue.
func RedisConnOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

func (d *Dependencies) initEmail(cfg *config.Config) {
	d.Renderer = mailer.NewRenderer(cfg.Email.AppName)
	d.Sender = NewSender(cfg.Email, d.Logger)

	var queue services.EmailEnqueuer
	if d.Redis != nil {
		d.Jobs = jobs.NewClient(RedisConnOpt(cfg.Redis))
		queue = d.Jobs
	}
	d.EmailService = services.NewEmailService(d.Renderer, d.Sender, queue, d.Metrics, d.Logger)
}

func (d *Dependencies) initServices(cfg *config.Config) {
	repos := d.Repositories

	d.AuthService = services.NewAuthService(services.AuthServiceDeps{
		Users:       repos.Users,
		Roles:       repos.Roles,
		Tokens:      repos.VerificationTokens,
		TxManager:   d.TxManager,
		Issuer:      d.Tokens,
		Permissions: d.Permissions,
		Email:       d.EmailService,
		Config:      cfg.Auth,
		AppURL:      cfg.Email.AppURL,
		Logger:      d.Logger,
	})
	d.BuildingService = services.NewBuildingService(repos.Buildings, d.Logger)
	d.ApartmentService = services.NewApartmentService(repos.Buildings, repos.Apartments, repos.Users, d.Logger)
	d.ReadingService = services.NewReadingService(repos.Readings, repos.Apartments, d.Logger)
	d.PaymentListService = services.NewPaymentListService(repos.PaymentLists, repos.Buildings, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Jobs != nil {
		if err := d.Jobs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close job client: %w", err))
		}
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		} else {
			d.Logger.Info("redis connection closed")
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
