package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/YusovID/turnaround-service/internal/config"
	"github.com/YusovID/turnaround-service/internal/repository/postgres"
	"github.com/YusovID/turnaround-service/pkg/logger/sl"
	"github.com/YusovID/turnaround-service/pkg/logger/slogpretty"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const defaultMigrationsTable = "schema_migrations"

type migrationCfg struct {
	env             string
	connStr         string
	migrationsPath  string
	migrationsTable string
}

// Usage: migrator [up | down | version | steps N]
func main() {
	cfg, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := slogpretty.SetupLogger(cfg.env).With(slog.String("migrations_table", cfg.migrationsTable))

	m, err := migrate.New(
		"file://"+cfg.migrationsPath,
		fmt.Sprintf("%s&x-migrations-table=%s", cfg.connStr, cfg.migrationsTable),
	)
	if err != nil {
		log.Error("can't create migrator", sl.Err(err))
		os.Exit(1)
	}
	defer m.Close()

	if err := execute(m, log, os.Args[1:]); err != nil {
		log.Error("migration failed", sl.Err(err))
		os.Exit(1)
	}
}

func load() (*migrationCfg, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		return nil, errors.New("MIGRATIONS_PATH is not set")
	}

	migrationsTable := os.Getenv("MIGRATIONS_TABLE")
	if migrationsTable == "" {
		migrationsTable = defaultMigrationsTable
	}

	cfg, err := config.LoadPath(configPath)
	if err != nil {
		return nil, err
	}

	return &migrationCfg{
		env:             cfg.Env,
		connStr:         postgres.ConnString(cfg.Postgres),
		migrationsPath:  migrationsPath,
		migrationsTable: migrationsTable,
	}, nil
}

func execute(m *migrate.Migrate, log *slog.Logger, args []string) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "up":
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("no new migrations to apply")
				return nil
			}

			return fmt.Errorf("can't apply migrations: %w", err)
		}

		log.Info("migrations applied successfully")
	case "down":
		if err := m.Down(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				return errors.New("no migrations to roll back")
			}

			return fmt.Errorf("can't roll back migrations: %w", err)
		}

		log.Info("migrations rolled back successfully")
	case "steps":
		if len(args) < 2 {
			return errors.New("steps needs a signed count")
		}

		n, err := strconv.Atoi(args[1])
		if err != nil || n == 0 {
			return fmt.Errorf("invalid step count %q", args[1])
		}

		if err := m.Steps(n); err != nil {
			return fmt.Errorf("can't migrate %d steps: %w", n, err)
		}

		log.Info("migrations stepped", slog.Int("steps", n))
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("can't read migration version: %w", err)
		}

		log.Info("current schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}
