package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// goose has no dedicated dialect name for modernc's driver; its sqlite3
// dialect speaks the same SQL.
const dialect = "sqlite3"

// Up applies all pending SQL migrations from migrationsDir to the calculator
// database. Called on startup in dev; production deployments run goose out
// of band.
func Up(db *sql.DB, migrationsDir string) error {
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations from %s: %w", migrationsDir, err)
	}

	return nil
}
