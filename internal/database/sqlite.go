package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Config holds database configuration
type Config struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// ParseDSN maps a snapshot location to a driver and DSN.
// sqlite://path, *.db and *.sqlite use sqlite; postgres:// and postgresql:// use postgres.
func ParseDSN(location string) (Config, bool) {
	switch {
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return Config{Driver: "postgres", DSN: location}, true
	case strings.HasPrefix(location, "sqlite://"):
		return Config{Driver: "sqlite", DSN: strings.TrimPrefix(location, "sqlite://")}, true
	case strings.HasSuffix(location, ".db"), strings.HasSuffix(location, ".sqlite"):
		return Config{Driver: "sqlite", DSN: location}, true
	}
	return Config{}, false
}

// Open opens and pings a database connection
func Open(cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch cfg.Driver {
	case "sqlite":
		// Snapshot reads only; a single writer keeps imports simple
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure sqlite: %w", err)
		}
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database opened", "driver", cfg.Driver)
	return db, nil
}

// Transaction executes a function within a database transaction
func Transaction(db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
