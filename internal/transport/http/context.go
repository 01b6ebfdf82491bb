package http

import (
	"context"
	"net/http"
	"unicode"

	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDHeader = "X-Request-ID"
	actorHeader     = "X-User-ID"

	requestIDKey = contextKey("requestID")
	actorKey     = contextKey("actor")

	maxRequestIDLen = 64
)

// requestID propagates a caller supplied X-Request-ID or mints a new one.
// Oversized or non-printable ids are replaced so they cannot pollute logs.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if !acceptableRequestID(id) {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}

	for _, c := range id {
		if c > unicode.MaxASCII || !unicode.IsPrint(c) || unicode.IsSpace(c) {
			return false
		}
	}

	return true
}

func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}

	return ""
}

func withActor(ctx context.Context, actor domain.User) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// actorFrom returns the zero User outside the authenticated route group.
func actorFrom(ctx context.Context) domain.User {
	actor, _ := ctx.Value(actorKey).(domain.User)
	return actor
}
