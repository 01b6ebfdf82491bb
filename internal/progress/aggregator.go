package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/feed"
	"github.com/YusovID/turnaround-service/pkg/logger/sl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recomputeTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "progress_recompute_total",
		Help: "Turnaround progress recomputations by result",
	},
	[]string{"result"},
)

// Store is what the aggregator needs from persistence.
type Store interface {
	ListTasks(ctx context.Context, turnaroundID string) ([]domain.Task, error)
	ListTurnaroundIDs(ctx context.Context) ([]string, error)
	SetProgress(ctx context.Context, id string, progress int, at time.Time) (bool, error)
}

// Watcher is the part of feed.Hub the aggregator registers with.
type Watcher interface {
	Watch(match feed.Matcher, notify func(feed.Change)) func()
}

// Aggregator keeps every turnaround's progress equal to the share of its
// completed tasks. Task changes mark a turnaround dirty and a single worker
// recomputes dirty turnarounds, so a burst of writes collapses into one
// recomputation. The write is not coordinated with other writers of the same
// document; the last one wins.
type Aggregator struct {
	log   *slog.Logger
	store Store
	hub   Watcher
	now   func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
	all     bool
	wake    chan struct{}
}

func NewAggregator(log *slog.Logger, hub Watcher, store Store) *Aggregator {
	return &Aggregator{
		log:     log,
		store:   store,
		hub:     hub,
		now:     func() time.Time { return time.Now().UTC() },
		pending: make(map[string]struct{}),
		wake:    make(chan struct{}, 1),
	}
}

// Run recomputes dirty turnarounds until ctx is done. Every turnaround is
// recomputed once at start-up.
func (a *Aggregator) Run(ctx context.Context) error {
	const op = "internal.progress.Aggregator.Run"

	log := a.log.With(slog.String("op", op))

	unwatch := a.hub.Watch(feed.AnyTask(), a.enqueue)
	defer unwatch()

	a.enqueue(feed.Change{Kind: feed.KindResync})

	log.Info("progress aggregator started")
	defer log.Info("progress aggregator stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.wake:
			a.drain(ctx, log)
		}
	}
}

func (a *Aggregator) enqueue(c feed.Change) {
	a.mu.Lock()
	if c.Kind == feed.KindResync {
		a.all = true
	} else {
		a.pending[c.TurnaroundID] = struct{}{}
	}
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *Aggregator) take() ([]string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]string, 0, len(a.pending))
	for id := range a.pending {
		ids = append(ids, id)
	}
	all := a.all

	a.pending = make(map[string]struct{})
	a.all = false

	sort.Strings(ids)

	return ids, all
}

func (a *Aggregator) drain(ctx context.Context, log *slog.Logger) {
	ids, all := a.take()

	if all {
		everything, err := a.store.ListTurnaroundIDs(ctx)
		if err != nil {
			log.Error("failed to list turnarounds for full recompute", sl.Err(err))

			a.mu.Lock()
			a.all = true
			a.mu.Unlock()
		} else {
			ids = everything
		}
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}

		if _, err := a.Recompute(ctx, id); err != nil {
			log.Error("failed to recompute progress", slog.String("turnaround_id", id), sl.Err(err))
		}
	}
}

// Recompute derives the progress of one turnaround from its current checklist
// and stores it if it changed. The turnaround status is left alone.
func (a *Aggregator) Recompute(ctx context.Context, turnaroundID string) (int, error) {
	const op = "internal.progress.Aggregator.Recompute"

	tasks, err := a.store.ListTasks(ctx, turnaroundID)
	if err != nil {
		recomputeTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("%s: failed to list tasks: %w", op, err)
	}

	p := Compute(tasks)

	changed, err := a.store.SetProgress(ctx, turnaroundID, p, a.now())
	if err != nil {
		recomputeTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("%s: failed to store progress: %w", op, err)
	}

	if changed {
		recomputeTotal.WithLabelValues("updated").Inc()
		a.log.Debug("progress updated", slog.String("turnaround_id", turnaroundID), slog.Int("progress", p))
	} else {
		recomputeTotal.WithLabelValues("unchanged").Inc()
	}

	return p, nil
}
