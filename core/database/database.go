package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a gorm connection for the configured driver and verifies it with a ping.
// It returns an error if the driver is unknown or the database cannot be reached.
func Connect(cfg Config) (*gorm.DB, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	dialector, err := dialectorFor(cfg, timeout)
	if err != nil {
		return nil, err
	}

	// Suppress GORM logging; errors surface through returned values.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// A single connection keeps in-memory databases shared and serializes writers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg Config, timeout int) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		dsn := cfg.URL
		if dsn == "" {
			dsn = cfg.Name
		}
		if dsn == "" {
			return nil, fmt.Errorf("sqlite database requires a file name")
		}
		return sqlite.Open(dsn), nil

	case DriverPostgres:
		dsn := cfg.URL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode, timeout)
		}
		return postgres.Open(dsn), nil

	case DriverMySQL:
		dsn := cfg.URL
		if dsn == "" {
			// Special characters in the password must be URL encoded for the mysql driver.
			userInfo := url.UserPassword(cfg.User, cfg.Password).String()
			dsn = fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
				userInfo, cfg.Host, cfg.Port, cfg.Name, timeout, timeout, timeout)
		}
		return mysql.Open(dsn), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Describe returns a credential-free description of the target database for logs,
// e.g. "postgres db.example.com:5432/inventario".
func Describe(cfg Config) string {
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.URL != "" {
			return "sqlite " + cfg.URL
		}
		return "sqlite " + cfg.Name
	case DriverPostgres:
		if cfg.URL != "" {
			pc, err := pgx.ParseConfig(cfg.URL)
			if err != nil {
				return "postgres (unparseable url)"
			}
			return fmt.Sprintf("postgres %s:%d/%s", pc.Host, pc.Port, pc.Database)
		}
	}
	return fmt.Sprintf("%s %s:%d/%s", cfg.Driver, cfg.Host, cfg.Port, cfg.Name)
}
