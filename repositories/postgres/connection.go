package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aquasync/backend/config"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// WrapDB adopts an already opened pool, such as a sqlmock connection in tests.
func WrapDB(db *sql.DB, logger *zap.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema creates the tables when they do not exist yet
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS roles (
		id UUID PRIMARY KEY,
		name VARCHAR(50) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS permissions (
		resource VARCHAR(50) NOT NULL,
		action VARCHAR(50) NOT NULL,
		PRIMARY KEY (resource, action)
	);

	CREATE TABLE IF NOT EXISTS role_permissions (
		role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		resource VARCHAR(50) NOT NULL,
		action VARCHAR(50) NOT NULL,
		PRIMARY KEY (role_id, resource, action),
		FOREIGN KEY (resource, action) REFERENCES permissions(resource, action) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL DEFAULT '',
		hashed_password VARCHAR(255) NOT NULL,
		role_id UUID NOT NULL REFERENCES roles(id),
		is_active BOOLEAN NOT NULL DEFAULT false,
		email_verified TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS verification_tokens (
		identifier VARCHAR(255) NOT NULL,
		token VARCHAR(255) NOT NULL UNIQUE,
		expires TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (identifier, token)
	);

	CREATE TABLE IF NOT EXISTS buildings (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		floors INTEGER NOT NULL CHECK (floors > 0),
		apartments_per_floor INTEGER NOT NULL CHECK (apartments_per_floor > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS apartments (
		id UUID PRIMARY KEY,
		building_id UUID NOT NULL REFERENCES buildings(id) ON DELETE RESTRICT,
		number VARCHAR(20) NOT NULL,
		floor INTEGER NOT NULL,
		owner_id UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (building_id, number)
	);

	CREATE TABLE IF NOT EXISTS water_readings (
		id UUID PRIMARY KEY,
		apartment_id UUID NOT NULL REFERENCES apartments(id) ON DELETE CASCADE,
		period CHAR(7) NOT NULL,
		cold_water NUMERIC(12, 3) NOT NULL CHECK (cold_water >= 0),
		hot_water NUMERIC(12, 3) NOT NULL CHECK (hot_water >= 0),
		status VARCHAR(20) NOT NULL,
		submitted_by UUID NOT NULL REFERENCES users(id),
		reviewed_by UUID REFERENCES users(id),
		reviewed_at TIMESTAMPTZ,
		reject_reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS payment_lists (
		id UUID PRIMARY KEY,
		building_id UUID NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
		period CHAR(7) NOT NULL,
		status VARCHAR(20) NOT NULL,
		created_by UUID NOT NULL REFERENCES users(id),
		approved_by UUID REFERENCES users(id),
		approved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (building_id, period)
	);

	CREATE INDEX IF NOT EXISTS idx_users_role_id ON users(role_id);
	CREATE INDEX IF NOT EXISTS idx_apartments_building_id ON apartments(building_id);
	CREATE INDEX IF NOT EXISTS idx_apartments_owner_id ON apartments(owner_id);
	CREATE INDEX IF NOT EXISTS idx_water_readings_apartment_id ON water_readings(apartment_id);
	CREATE INDEX IF NOT EXISTS idx_water_readings_period ON water_readings(period);
	CREATE INDEX IF NOT EXISTS idx_water_readings_status ON water_readings(status);
	CREATE UNIQUE INDEX IF NOT EXISTS uq_water_readings_approved_period
		ON water_readings(apartment_id, period) WHERE status = 'APPROVED';
	CREATE INDEX IF NOT EXISTS idx_verification_tokens_expires ON verification_tokens(expires);
`
