package postgres

import (
	"fmt"
	"log/slog"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Postgres struct {
	db  *sqlx.DB
	log *slog.Logger
}

func ConnString(cfg config.Postgres) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func NewDB(cfg config.Postgres, log *slog.Logger) (*Postgres, error) {
	const op = "internal.repository.postgres.NewDB"

	db, err := sqlx.Connect("postgres", ConnString(cfg))
	if err != nil {
		return nil, &apperrors.ConnectivityError{Op: op, Err: fmt.Errorf("can't connect to database: %w", err)}
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log.Info("connected to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return &Postgres{
		db:  db,
		log: log,
	}, nil
}

func (p *Postgres) DB() *sqlx.DB {
	return p.db
}

func (p *Postgres) Close() error {
	p.log.Info("closing postgres pool")

	return p.db.Close()
}
