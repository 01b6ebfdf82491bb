package feed

import (
	"context"
	"log/slog"
	"sync"
)

type watcher struct {
	match  Matcher
	notify func(Change)
}

// Hub fans every change from a Source out to the registered watchers whose
// matcher accepts it. Notify callbacks run on the hub goroutine and must not
// block.
type Hub struct {
	src Source
	log *slog.Logger

	mu       sync.Mutex
	watchers map[uint64]watcher
	next     uint64
}

func NewHub(src Source, log *slog.Logger) *Hub {
	return &Hub{
		src:      src,
		log:      log,
		watchers: make(map[uint64]watcher),
	}
}

// Watch registers notify for changes accepted by match and returns the
// function that removes the registration. Calling it twice is safe.
func (h *Hub) Watch(match Matcher, notify func(Change)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.watchers[id] = watcher{match: match, notify: notify}
	h.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, id)
			h.mu.Unlock()
		})
	}
}

// Run dispatches changes until ctx is done or the source is exhausted.
func (h *Hub) Run(ctx context.Context) error {
	const op = "internal.feed.Hub.Run"

	h.log.Info("change hub started", slog.String("op", op))
	defer h.log.Info("change hub stopped", slog.String("op", op))

	changes := h.src.Changes()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}

			h.Dispatch(c)
		}
	}
}

// Dispatch delivers c to every matching watcher.
func (h *Hub) Dispatch(c Change) {
	changesTotal.WithLabelValues(string(c.Kind)).Inc()

	h.mu.Lock()
	targets := make([]watcher, 0, len(h.watchers))
	for _, w := range h.watchers {
		if w.match(c) {
			targets = append(targets, w)
		}
	}
	h.mu.Unlock()

	for _, w := range targets {
		w.notify(c)
	}
}

func (h *Hub) watcherCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.watchers)
}
