package app

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aquasync/backend/config"
	"github.com/aquasync/backend/mailer"
	"github.com/aquasync/backend/repositories/postgres"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewDependencies(t *testing.T) {
	t.Run("database connection failure", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cfg := testConfig(t)
		cfg.Database.Host = "invalid-host-that-does-not-exist"

		deps, err := NewDependencies(ctx, cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})
}

func TestWire(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger := zaptest.NewLogger(t)

		deps, err := Wire(testConfig(t), postgres.WrapDB(db, logger), nil, logger)
		require.NoError(t, err)

		assert.NotNil(t, deps.Repositories.Users)
		assert.NotNil(t, deps.Repositories.Readings)
		assert.NotNil(t, deps.TxManager)
		assert.NotNil(t, deps.Tokens)
		assert.NotNil(t, deps.AuthMiddleware)
		assert.NotNil(t, deps.Metrics)
		assert.Nil(t, deps.Jobs)
		assert.IsType(t, &mailer.LogSender{}, deps.Sender)

		assert.NotNil(t, deps.AuthService)
		assert.NotNil(t, deps.BuildingService)
		assert.NotNil(t, deps.ApartmentService)
		assert.NotNil(t, deps.ReadingService)
		assert.NotNil(t, deps.PaymentListService)
		assert.NotNil(t, deps.EmailService)
	})

	t.Run("with redis", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mr := miniredis.RunT(t)
		logger := zaptest.NewLogger(t)

		cfg := testConfig(t)
		cfg.Redis.Addr = mr.Addr()
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

		deps, err := Wire(cfg, postgres.WrapDB(db, logger), client, logger)
		require.NoError(t, err)
		assert.NotNil(t, deps.Jobs)

		assert.NoError(t, deps.Close(context.Background()))
	})

	t.Run("empty secret", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger := zaptest.NewLogger(t)

		cfg := testConfig(t)
		cfg.Auth.JWTSecret = ""

		_, err = Wire(cfg, postgres.WrapDB(db, logger), nil, logger)
		assert.Error(t, err)
	})
}

func TestNewSender(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assert.IsType(t, &mailer.LogSender{}, NewSender(config.EmailConfig{}, logger))
	assert.IsType(t, &mailer.ResendSender{}, NewSender(config.EmailConfig{ResendAPIKey: "re_test", From: "a@b.c"}, logger))
}

func TestDependenciesClose(t *testing.T) {
	t.Run("close with nil components", func(t *testing.T) {
		deps := &Dependencies{Logger: zaptest.NewLogger(t)}

		assert.NoError(t, deps.Close(context.Background()))
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			RequestTimeout:  30 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
		},
		Database: config.DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "aquasync",
			Password:        "aquasync",
			Database:        "aquasync_test",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-with-enough-bytes-for-hs256",
			Issuer:          "aquasync",
			TokenTTL:        time.Hour,
			CookieName:      "token",
			GatePrefix:      "/api",
			GateExclusions:  []string{"/api/auth"},
			DefaultRole:     "OWNER",
			VerificationTTL: 24 * time.Hour,
			BcryptCost:      4,
		},
		Redis: config.RedisConfig{PermissionCacheTTL: time.Minute},
		Email: config.EmailConfig{
			From:    "AquaSync <noreply@aquasync.local>",
			AppURL:  "http://localhost:3000",
			AppName: "AquaSync",
		},
		RateLimit: config.RateLimitConfig{AuthRequests: 10, AuthWindow: time.Minute},
		Observability: config.ObservabilityConfig{
			LogLevel:  "error",
			LogFormat: "json",
		},
	}
}
