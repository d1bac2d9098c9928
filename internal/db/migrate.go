package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationDir = "migrations"

// Migrate applies a goose command ("up", "down", "status", ...) using the
// migrations embedded in the binary.
func Migrate(ctx context.Context, databaseURL, command string) error {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, sqlDB, migrationDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
