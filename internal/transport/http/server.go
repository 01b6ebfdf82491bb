// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/feed"
	"github.com/YusovID/turnaround-service/internal/service"
	"github.com/YusovID/turnaround-service/internal/validation"
	"github.com/YusovID/turnaround-service/pkg/api"
	"github.com/YusovID/turnaround-service/pkg/logger/sl"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the dependencies for the HTTP server, including the logger and service interfaces.
type Server struct {
	log               *slog.Logger
	hub               *feed.Hub
	userService       service.UserService
	turnaroundService service.TurnaroundService
	taskService       service.TaskService
}

// NewServer creates a new instance of the HTTP server.
func NewServer(
	log *slog.Logger,
	hub *feed.Hub,
	us service.UserService,
	ts service.TurnaroundService,
	tks service.TaskService,
) *Server {
	return &Server{
		log:               log,
		hub:               hub,
		userService:       us,
		turnaroundService: ts,
		taskService:       tks,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())

	mux.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/users/me", s.GetMe)
		r.Put("/users/{uid}", s.PutUser)

		r.Get("/turnarounds", s.GetTurnarounds)
		r.Post("/turnarounds", s.PostTurnaround)
		r.Get("/turnarounds/stream", s.StreamTurnarounds)
		r.Get("/turnarounds/{id}", s.GetTurnaround)
		r.Put("/turnarounds/{id}/status", s.PutTurnaroundStatus)
		r.Get("/turnarounds/{id}/tasks", s.GetTasks)
		r.Get("/turnarounds/{id}/tasks/stream", s.StreamTasks)

		r.Post("/turnarounds/{id}/tasks/{taskId}/complete", s.PostComplete)
		r.Post("/turnarounds/{id}/tasks/{taskId}/uncomplete", s.PostUncomplete)
		r.Post("/turnarounds/{id}/tasks/{taskId}/delay", s.PostReportDelay)
		r.Post("/turnarounds/{id}/tasks/{taskId}/clear-delay", s.PostClearDelay)
	})

	return mux
}

func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]*api.User{"user": s.userService.Me(actorFrom(r.Context()))})
}

func (s *Server) PutUser(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PutUser"

	var req upsertUserRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	user, err := s.userService.Upsert(r.Context(), actorFrom(r.Context()), domain.User{
		UID:        chi.URLParam(r, "uid"),
		EmployeeID: req.EmployeeID,
		FullName:   req.FullName,
		Role:       domain.Role(req.Role),
	})
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.User{"user": user})
}

func (s *Server) GetTurnarounds(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetTurnarounds"

	turnarounds, err := s.turnaroundService.Visible(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]api.Turnaround{"turnarounds": turnarounds})
}

func (s *Server) PostTurnaround(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostTurnaround"

	var req provisionRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	created, err := s.turnaroundService.Provision(r.Context(), actorFrom(r.Context()), req.toDomain())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, created)
}

func (s *Server) GetTurnaround(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetTurnaround"

	t, err := s.turnaroundService.Get(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.Turnaround{"turnaround": t})
}

func (s *Server) PutTurnaroundStatus(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PutTurnaroundStatus"

	var req setStatusRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	t, err := s.turnaroundService.SetStatus(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), domain.TurnaroundStatus(req.Status))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.Turnaround{"turnaround": t})
}

func (s *Server) GetTasks(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetTasks"

	tasks, err := s.taskService.ListTasks(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]api.Task{"tasks": tasks})
}

func (s *Server) PostComplete(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "internal.transport.http.PostComplete", s.taskService.Complete)
}

func (s *Server) PostUncomplete(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "internal.transport.http.PostUncomplete", s.taskService.Uncomplete)
}

func (s *Server) PostClearDelay(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "internal.transport.http.PostClearDelay", s.taskService.ClearDelay)
}

func (s *Server) PostReportDelay(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostReportDelay"

	var req delayRequest
	if err := s.decode(r.Body, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	task, err := s.taskService.ReportDelay(
		r.Context(),
		actorFrom(r.Context()),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "taskId"),
		req.toInput(),
	)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.Task{"task": task})
}

type transitionFunc func(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error)

func (s *Server) transition(w http.ResponseWriter, r *http.Request, op string, fn transitionFunc) {
	task, err := fn(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "taskId"))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.Task{"task": task})
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

func newErrorResponse(code api.ErrorResponseErrorCode, message string) *api.ErrorResponse {
	resp := &api.ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message

	return resp
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// decode is a helper function to decode a JSON request body.
func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// classify maps an error to its status, code and a message that tells the
// crew member what to do next.
func classify(err error) (int, api.ErrorResponseErrorCode, string) {
	var (
		validationErr *validation.ValidationError
		transitionErr *apperrors.TransitionError
		taskExistsErr *apperrors.TaskAlreadyExistsError
		turnExistsErr *apperrors.TurnaroundAlreadyExistsError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, api.VALIDATION, validationErr.Error()
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, api.INVALIDREQUEST, "invalid request body"
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, api.UNAUTHENTICATED, "sign in with a crew profile to continue"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, api.FORBIDDEN, "task is not assigned to you; ask a supervisor"
	case errors.Is(err, apperrors.ErrSupervisorOnly):
		return http.StatusForbidden, api.FORBIDDEN, apperrors.ErrSupervisorOnly.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, api.NOTFOUND, "resource not found"
	case errors.As(err, &turnExistsErr):
		return http.StatusConflict, api.ALREADYEXISTS, "turnaround with this id already exists"
	case errors.As(err, &taskExistsErr):
		return http.StatusConflict, api.ALREADYEXISTS, "a task id in this checklist is already in use; choose different task ids"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return http.StatusConflict, api.ALREADYEXISTS, "resource already exists"
	case errors.As(err, &transitionErr):
		return http.StatusConflict, api.INVALIDTRANSITION, transitionErr.Error()
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, api.CONFLICT, "task was changed by another crew member; reload and try again"
	case errors.Is(err, apperrors.ErrConnectivity):
		return http.StatusServiceUnavailable, api.UNAVAILABLE, "cannot reach the turnaround store; check your connection and try again"
	default:
		return http.StatusInternalServerError, api.INTERNAL, "internal server error"
	}
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := s.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))

	status, code, message := classify(err)

	if status >= http.StatusInternalServerError {
		log.Error("service error occurred", sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), sl.Err(err))
	}

	s.respond(w, status, newErrorResponse(code, message))
}
