package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/logging"
)

var DB *sql.DB

// InitDB opens the configured database, checks it is reachable and creates
// the account table when missing.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) error {
	driver := strings.ToLower(cfg.Driver)
	if driver == "" {
		driver = "postgres"
	}

	var err error
	DB, err = sql.Open(driver, cfg.ConnString())
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	if driver == "sqlite" {
		// An in-memory database exists per connection.
		DB.SetMaxOpenConns(1)
	}

	if err = DB.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}

	if err = createTables(ctx); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	logging.Info().Str("driver", driver).Msg("database ready")
	return nil
}

func createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS ysfnodes (
			callsign VARCHAR(7) PRIMARY KEY,
			password VARCHAR(255) NOT NULL,
			txfreq BIGINT NOT NULL DEFAULT 0,
			rxfreq BIGINT NOT NULL DEFAULT 0
		)`,
	}

	for _, query := range queries {
		if _, err := DB.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}
