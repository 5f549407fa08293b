package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erp/subcontracting/internal/infrastructure/config"
	"github.com/erp/subcontracting/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database owns the GORM handle shared by the repositories
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	case config.DriverPostgres, "":
		return postgres.Open(cfg.DSN()), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// NewDatabase opens the configured driver. A nil logger keeps GORM silent.
// SQLite schemas are created from the models on open; postgres schemas
// come from the versioned migrations.
func NewDatabase(cfg *config.DatabaseConfig, logger gormlogger.Interface) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	sqlite := cfg.Driver == config.DriverSQLite
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            !sqlite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	configurePool(pool, cfg)

	d := &Database{DB: db, sql: pool}
	if err := d.Ping(context.Background()); err != nil {
		_ = pool.Close()
		return nil, err
	}

	if sqlite {
		if err := db.AutoMigrate(models.All()...); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
		}
	}
	return d, nil
}

func configurePool(pool *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// Ping checks that the database answers within ctx
func (d *Database) Ping(ctx context.Context) error {
	if err := d.sql.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (d *Database) Close() error {
	return d.sql.Close()
}
