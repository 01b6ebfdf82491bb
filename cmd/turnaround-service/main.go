package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YusovID/turnaround-service/internal/config"
	"github.com/YusovID/turnaround-service/internal/feed"
	"github.com/YusovID/turnaround-service/internal/progress"
	"github.com/YusovID/turnaround-service/internal/repository/postgres"
	"github.com/YusovID/turnaround-service/internal/service"
	myhttp "github.com/YusovID/turnaround-service/internal/transport/http"
	"github.com/YusovID/turnaround-service/internal/visibility"
	"golang.org/x/sync/errgroup"

	"github.com/YusovID/turnaround-service/pkg/logger/sl"
	"github.com/YusovID/turnaround-service/pkg/logger/slogpretty"
)

const shutdownTimeout = 10 * time.Second

// progressStore joins the two repositories the aggregator reads and writes.
type progressStore struct {
	*postgres.TaskRepository
	*postgres.TurnaroundRepository
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting turnaround-service",
		slog.String("env", cfg.Env),
		slog.String("visibility", cfg.Visibility.Match),
		slog.Bool("compare_and_set", cfg.Store.CompareAndSet),
	)

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("db close failed", sl.Err(err))
		}
	}()

	src, err := feed.NewPQSource(
		postgres.ConnString(cfg.Postgres),
		cfg.Feed.Channel,
		cfg.Feed.MinReconnect,
		cfg.Feed.MaxReconnect,
		cfg.Feed.Buffer,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to init change feed: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Error("change feed close failed", sl.Err(err))
		}
	}()

	hub := feed.NewHub(src, log)

	turnarounds := postgres.NewTurnaroundRepository(db.DB(), log)
	tasks := postgres.NewTaskRepository(db.DB(), log)
	users := postgres.NewUserRepository(db.DB(), log)

	filter := visibility.New(visibility.Mode(cfg.Visibility.Match))
	base := service.NewBaseService(db.DB(), log)

	srv := myhttp.NewServer(
		log,
		hub,
		service.NewUserService(log, users),
		service.NewTurnaroundService(base, turnarounds, turnarounds, tasks, users, filter),
		service.NewTaskService(base, tasks, turnarounds, turnarounds, filter, cfg.Store.CompareAndSet),
	)

	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       4 * cfg.Server.Timeout,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		return hub.Run(gctx)
	})

	if cfg.Aggregator.Enabled {
		agg := progress.NewAggregator(log, hub, progressStore{tasks, turnarounds})

		g.Go(func() error {
			return agg.Run(gctx)
		})
	} else {
		log.Warn("progress aggregator disabled; progress will not be recomputed")
	}

	g.Go(func() error {
		log.Info("service started", slog.String("addr", httpServer.Addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening and serving: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("service stopped")

	return nil
}
