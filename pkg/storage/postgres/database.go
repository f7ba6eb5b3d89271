package postgres

import (
	"database/sql"
	"fmt"

	"mlengine/config"

	_ "github.com/lib/pq"
)

// DatabaseExists connects to the server's maintenance database and reports
// whether the configured database has been created.
func DatabaseExists(cfg config.PostgresConfig, env string) (bool, error) {
	db, err := sql.Open("postgres", cfg.MaintenanceDSN(env))
	if err != nil {
		return false, fmt.Errorf("connect failed: %w", err)
	}
	defer db.Close()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1);`
	if err := db.QueryRow(query, cfg.DBName).Scan(&exists); err != nil {
		return false, fmt.Errorf("check db exists failed: %w", err)
	}

	return exists, nil
}
