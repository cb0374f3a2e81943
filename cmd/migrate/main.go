package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/nusa-erp/erp-api/internal/config"
	"github.com/nusa-erp/erp-api/migrations"
	"github.com/pressly/goose/v3"
)

const usage = "usage: migrate [up|up-to VERSION|down|redo|reset|status|version]"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Driver != "" && cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target postgres, configured driver is %s", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	const dir = "."
	command, arguments := args[0], args[1:]

	switch command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			return fmt.Errorf("failed to run up migrations: %w", err)
		}
		fmt.Println("Migrations applied successfully")

	case "up-to":
		if len(arguments) == 0 {
			return fmt.Errorf("up-to requires a version")
		}
		var version int64
		if _, err := fmt.Sscan(arguments[0], &version); err != nil {
			return fmt.Errorf("invalid version %q: %w", arguments[0], err)
		}
		if err := goose.UpTo(db, dir, version); err != nil {
			return fmt.Errorf("failed to migrate up to %d: %w", version, err)
		}

	case "down":
		if err := goose.Down(db, dir); err != nil {
			return fmt.Errorf("failed to run down migration: %w", err)
		}
		fmt.Println("Migration rolled back successfully")

	case "redo":
		if err := goose.Redo(db, dir); err != nil {
			return fmt.Errorf("failed to redo migration: %w", err)
		}

	case "reset":
		if cfg.App.Environment == "production" {
			return fmt.Errorf("reset is disabled in production")
		}
		if err := goose.Reset(db, dir); err != nil {
			return fmt.Errorf("failed to reset migrations: %w", err)
		}

	case "status":
		if err := goose.Status(db, dir); err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

	case "version":
		if err := goose.Version(db, dir); err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}

	return nil
}
