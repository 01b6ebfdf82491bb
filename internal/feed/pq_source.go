package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/YusovID/turnaround-service/pkg/logger/sl"
	"github.com/lib/pq"
)

const pingInterval = 90 * time.Second

// PQSource listens on a Postgres NOTIFY channel fed by table triggers.
type PQSource struct {
	listener *pq.Listener
	log      *slog.Logger
	out      chan Change
	done     chan struct{}
	once     sync.Once
}

func NewPQSource(
	connString, channel string,
	minReconnect, maxReconnect time.Duration,
	buffer int,
	log *slog.Logger,
) (*PQSource, error) {
	const op = "internal.feed.NewPQSource"

	log = log.With(slog.String("op", op), slog.String("channel", channel))

	listener := pq.NewListener(connString, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Info("change listener connected")
		case pq.ListenerEventDisconnected:
			log.Warn("change listener disconnected", sl.Err(err))
		case pq.ListenerEventReconnected:
			log.Info("change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Warn("change listener connection attempt failed", sl.Err(err))
		}
	})

	if err := listener.Listen(channel); err != nil {
		_ = listener.Close()

		return nil, fmt.Errorf("%s: listen %q: %w", op, channel, err)
	}

	s := &PQSource{
		listener: listener,
		log:      log,
		out:      make(chan Change, buffer),
		done:     make(chan struct{}),
	}

	go s.run()

	return s, nil
}

func (s *PQSource) Changes() <-chan Change {
	return s.out
}

func (s *PQSource) Close() error {
	var err error

	s.once.Do(func() {
		close(s.done)
		err = s.listener.Close()
	})

	return err
}

func (s *PQSource) run() {
	defer close(s.out)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case n, ok := <-s.listener.Notify:
			if !ok {
				return
			}

			// pq sends nil after re-establishing the connection; anything
			// committed meanwhile was not delivered.
			if n == nil {
				s.emit(Change{Kind: KindResync})
				continue
			}

			c, err := DecodeChange(n.Extra)
			if err != nil {
				s.log.Error("dropping malformed notification", sl.Err(err), slog.String("payload", n.Extra))
				continue
			}

			s.emit(c)
		case <-ticker.C:
			go func() {
				if err := s.listener.Ping(); err != nil {
					s.log.Warn("change listener ping failed", sl.Err(err))
				}
			}()
		}
	}
}

func (s *PQSource) emit(c Change) {
	select {
	case s.out <- c:
	case <-s.done:
	}
}

// DecodeChange parses a trigger payload.
func DecodeChange(payload string) (Change, error) {
	const op = "internal.feed.DecodeChange"

	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("%s: %w", op, err)
	}

	switch c.Kind {
	case KindTask, KindTurnaround, KindUser:
	default:
		return Change{}, fmt.Errorf("%s: unknown change kind %q", op, c.Kind)
	}

	return c, nil
}
