// Package migrations ships the database schema inside the binary and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Dir is the directory inside FS holding the goose SQL files.
const Dir = "goose_sql"

//go:embed goose_sql/*.sql
var FS embed.FS

func prepare() error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, Dir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, Dir); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Status logs the applied state of each migration through goose's logger.
func Status(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, db, Dir); err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	return nil
}
