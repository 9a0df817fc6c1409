package db

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// schemaTable keeps the store schema version apart from other services
// sharing the database.
const schemaTable = "store_schema_migrations"

// RunMigrations brings the store schema (catalog, baskets, accounts, orders,
// event sequences) up to the newest embedded version.
func RunMigrations(dsn string, logger *log.Logger) error {
	conn, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("store schema: connect: %w", err)
	}
	defer conn.Close()

	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		return fmt.Errorf("store schema: load embedded files: %w", err)
	}
	target, err := postgres.WithInstance(conn, &postgres.Config{MigrationsTable: schemaTable})
	if err != nil {
		return fmt.Errorf("store schema: prepare postgres: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", target)
	if err != nil {
		return fmt.Errorf("store schema: %w", err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Printf("store schema already current")
	case err != nil:
		return fmt.Errorf("store schema: upgrade: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("store schema: read version: %w", err)
	}
	if dirty {
		return fmt.Errorf("store schema: version %d is dirty, fix it by hand", version)
	}
	logger.Printf("store schema at version %d", version)
	return nil
}
