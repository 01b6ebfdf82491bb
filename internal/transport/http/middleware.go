package http

import (
	"log/slog"
	"net/http"
	"time"
)

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.log.With(
			slog.String("request_id", getRequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
		)
		log.Info("request started")

		t1 := time.Now()
		wrapper := newResponseWriterWrapper(w)

		next.ServeHTTP(wrapper, r)

		log.Info("request completed",
			slog.Int("status", wrapper.statusCode),
			slog.String("duration", time.Since(t1).String()),
		)
	})
}

// authenticate resolves the signed-in crew member from the X-User-ID header
// and stores the profile in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "internal.transport.http.authenticate"

		actor, err := s.userService.Actor(r.Context(), r.Header.Get(actorHeader))
		if err != nil {
			s.handleServiceError(w, r, op, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), *actor)))
	})
}
