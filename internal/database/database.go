package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nusa-erp/erp-api/internal/config"
	"github.com/nusa-erp/erp-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the configured database and verifies the connection
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.ConnectionString())
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "erp.db"
		}
		dialector = sqlite.Open(path + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established",
		zap.String("driver", dialector.Name()),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return db, nil
}

// AutoMigrate creates or updates the schema from the models. Production
// deployments use the goose migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Contact{},
		&domain.Document{},
		&domain.LineItem{},
		&domain.NumberSequence{},
		&domain.DocumentActivity{},
	)
}

// HealthCheck pings the database
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// PoolStats is a serializable snapshot of the connection pool
type PoolStats struct {
	OpenConnections int    `json:"openConnections"`
	InUse           int    `json:"inUse"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"waitCount"`
	WaitDuration    string `json:"waitDuration"`
}

// HealthCheckWithStats pings the database and reports pool statistics
func HealthCheckWithStats(ctx context.Context, db *gorm.DB) (*PoolStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	s := sqlDB.Stats()
	return &PoolStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		WaitCount:       s.WaitCount,
		WaitDuration:    s.WaitDuration.String(),
	}, nil
}
