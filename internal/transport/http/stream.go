package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/YusovID/turnaround-service/internal/feed"
	"github.com/YusovID/turnaround-service/pkg/api"
	"github.com/YusovID/turnaround-service/pkg/logger/sl"
	"github.com/go-chi/chi/v5"
)

const heartbeatInterval = 15 * time.Second

// StreamTurnarounds pushes the caller's visible turnaround list as
// server-sent events: one snapshot on connect and one after every change that
// can affect it.
func (s *Server) StreamTurnarounds(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.StreamTurnarounds"

	uid := actorFrom(r.Context()).UID

	sub := feed.Subscribe(r.Context(), s.hub, feed.TurnaroundSet(uid), func(ctx context.Context) ([]api.Turnaround, error) {
		actor, err := s.userService.Actor(ctx, uid)
		if err != nil {
			return nil, err
		}

		return s.turnaroundService.Visible(ctx, *actor)
	})
	defer sub.Close()

	writeStream(s, w, r, op, "turnarounds", sub)
}

// StreamTasks pushes the checklist of one turnaround. Crew and profile
// changes reload it too, so a member taken off the turnaround stops seeing it.
func (s *Server) StreamTasks(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.StreamTasks"

	uid := actorFrom(r.Context()).UID
	turnaroundID := chi.URLParam(r, "id")

	match := feed.AnyOf(feed.TasksOf(turnaroundID), feed.Profile(uid))

	sub := feed.Subscribe(r.Context(), s.hub, match, func(ctx context.Context) ([]api.Task, error) {
		actor, err := s.userService.Actor(ctx, uid)
		if err != nil {
			return nil, err
		}

		return s.taskService.ListTasks(ctx, *actor, turnaroundID)
	})
	defer sub.Close()

	writeStream(s, w, r, op, "tasks", sub)
}

func writeStream[T any](s *Server, w http.ResponseWriter, r *http.Request, op, scope string, sub *feed.Subscription[T]) {
	log := s.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))

	rc := http.NewResponseController(w)

	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := rc.Flush(); err != nil {
		log.Error("streaming unsupported", sl.Err(err))
		return
	}

	liveStreams.WithLabelValues(scope).Inc()
	defer liveStreams.WithLabelValues(scope).Dec()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return
			}

			event := api.StreamEvent[T]{Seq: snap.Seq}
			if snap.Err != nil {
				status, code, message := classify(snap.Err)
				if status >= http.StatusInternalServerError {
					log.Error("snapshot load failed", sl.Err(snap.Err))
				} else {
					log.Info("snapshot load rejected", sl.Err(snap.Err))
				}

				event.Error = newErrorResponse(code, message)
			} else {
				event.Data = snap.Data
			}

			payload, err := json.Marshal(event)
			if err != nil {
				log.Error("failed to encode snapshot", sl.Err(err))
				return
			}

			if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Seq, payload); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
