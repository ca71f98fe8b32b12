package database

import (
	"context"
	"embed"
	"io/fs"

	"go-musician-booking/core/logger"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migrations is the versioned schema, one goose file per version.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies every pending migration and records it in goose's
// version table.
func (d *Database) Migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, d.db, Migrations())
	if err != nil {
		logger.Error("Database:Migrate:Provider:Error:", err)
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		logger.Error("Database:Migrate:Error:", err)
		return err
	}
	for _, r := range results {
		logger.Info("Database:Migrate:Applied", "version", r.Source.Version, "duration", r.Duration)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		logger.Error("Database:Migrate:Version:Error:", err)
		return err
	}
	logger.Info("Database:Migrate:Success", "applied", len(results), "version", version)
	return nil
}
