// Command seed provisions the permission catalog, the built-in roles and the
// super-admin account.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aquasync/backend/cache"
	"github.com/aquasync/backend/config"
	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/repositories/postgres"
	"github.com/aquasync/backend/seed"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type options struct {
	adminEmail    string
	adminPassword string
	adminName     string
	catalog       string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	fs.StringVar(&opts.adminEmail, "admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "super-admin email; empty skips the account")
	fs.StringVar(&opts.adminPassword, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "super-admin password")
	fs.StringVar(&opts.adminName, "admin-name", "Super Administrator", "super-admin display name")
	fs.StringVar(&opts.catalog, "catalog", "", "path to a catalog YAML file; defaults to the embedded catalog")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.adminEmail != "" && opts.adminPassword == "" {
		return options{}, fmt.Errorf("--admin-password is required with --admin-email")
	}
	return opts, nil
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	return seed.LoadCatalog(path)
}

func main() {
	logger, err := observability.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), os.Args[1:], logger); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
}

func run(ctx context.Context, args []string, logger *zap.Logger) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(opts.catalog)
	if err != nil {
		return err
	}

	cfg, err := config.New(ctx)
	if err != nil {
		return err
	}

	factory, err := postgres.NewRepositoryFactory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = factory.Close() }()

	var permissionCache *cache.PermissionCache
	if cfg.Redis.Enabled() {
		client, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, cached permissions expire by TTL", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			permissionCache = cache.NewPermissionCache(client, cfg.Redis.PermissionCacheTTL, logger)
		}
	}

	repos := factory.NewRepositories()
	seeder := seed.NewSeeder(repos.Roles, repos.Users, factory.GetTransactionManager(), permissionCache, cfg.Auth.BcryptCost, logger)

	result, err := seeder.Run(ctx, catalog, seed.Admin{
		Email:    opts.adminEmail,
		Password: opts.adminPassword,
		Name:     opts.adminName,
	})
	if err != nil {
		return err
	}

	for name, id := range result.Roles {
		logger.Info("role ready", zap.String("role", name), zap.String("id", id.String()))
	}
	if opts.adminEmail != "" {
		logger.Info("super admin ready", zap.String("email", opts.adminEmail), zap.String("id", result.AdminID.String()))
	}
	return nil
}
