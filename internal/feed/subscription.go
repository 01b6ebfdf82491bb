package feed

import (
	"context"
	"sync"
)

// Snapshot is one full materialization of a scope. Seq grows by one per
// delivered snapshot. Err is set when the scope could not be loaded; Data is
// then the zero value and the subscription stays registered.
type Snapshot[T any] struct {
	Seq  uint64
	Data T
	Err  error
}

type Loader[T any] func(ctx context.Context) (T, error)

// Subscription streams snapshots of one scope. A slow consumer only ever sees
// the newest pending snapshot; it never receives an older state after a newer
// one.
type Subscription[T any] struct {
	out    chan Snapshot[T]
	dirty  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe registers match on hub, delivers the initial snapshot and then a
// fresh snapshot after every matching change. The subscription ends when ctx
// is done or Close is called; the snapshot channel is closed afterwards.
func Subscribe[T any](ctx context.Context, hub *Hub, match Matcher, load Loader[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)

	s := &Subscription[T]{
		out:    make(chan Snapshot[T], 1),
		dirty:  make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Registered before the first load so no change between load and
	// registration is missed.
	unwatch := hub.Watch(match, s.markDirty)

	liveSubscriptions.Inc()

	go s.run(ctx, load, unwatch)

	return s
}

func (s *Subscription[T]) Snapshots() <-chan Snapshot[T] {
	return s.out
}

// Close stops delivery and waits until the subscription released its hub
// registration.
func (s *Subscription[T]) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

func (s *Subscription[T]) markDirty(Change) {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) run(ctx context.Context, load Loader[T], unwatch func()) {
	defer close(s.done)
	defer close(s.out)
	defer liveSubscriptions.Dec()
	defer unwatch()

	var seq uint64

	deliver := func() {
		data, err := load(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			snapshotsTotal.WithLabelValues("error").Inc()
		} else {
			snapshotsTotal.WithLabelValues("ok").Inc()
		}

		seq++
		s.push(Snapshot[T]{Seq: seq, Data: data, Err: err})
	}

	deliver()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
			deliver()
		}
	}
}

// push replaces a snapshot the consumer has not picked up yet. Only run sends
// on out, so after the drain the final send cannot block.
func (s *Subscription[T]) push(snap Snapshot[T]) {
	select {
	case s.out <- snap:
		return
	default:
	}

	select {
	case <-s.out:
	default:
	}

	s.out <- snap
}
