package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/authz"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/lifecycle"
	"github.com/YusovID/turnaround-service/internal/repository"
	"github.com/YusovID/turnaround-service/internal/validation"
	"github.com/YusovID/turnaround-service/internal/visibility"
	"github.com/YusovID/turnaround-service/pkg/api"
	"github.com/YusovID/turnaround-service/pkg/logger/sl"
)

type TaskService interface {
	Complete(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error)
	Uncomplete(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error)
	ReportDelay(ctx context.Context, actor domain.User, turnaroundID, taskID string, delay lifecycle.DelayInput) (*api.Task, error)
	ClearDelay(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error)
	ListTasks(ctx context.Context, actor domain.User, turnaroundID string) ([]api.Task, error)
}

type TaskServiceImpl struct {
	BaseService
	tasks         repository.TaskRepository
	turnarounds   repository.TurnaroundCommandRepository
	turnQuery     repository.TurnaroundQueryRepository
	filter        visibility.Filter
	compareAndSet bool
}

func NewTaskService(
	base BaseService,
	tasks repository.TaskRepository,
	turnarounds repository.TurnaroundCommandRepository,
	turnQuery repository.TurnaroundQueryRepository,
	filter visibility.Filter,
	compareAndSet bool,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		BaseService:   base,
		tasks:         tasks,
		turnarounds:   turnarounds,
		turnQuery:     turnQuery,
		filter:        filter,
		compareAndSet: compareAndSet,
	}
}

func (s *TaskServiceImpl) Complete(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error) {
	return s.transition(ctx, "internal.service.task.Complete", actor, turnaroundID, taskID, lifecycle.EventComplete, nil)
}

func (s *TaskServiceImpl) Uncomplete(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error) {
	return s.transition(ctx, "internal.service.task.Uncomplete", actor, turnaroundID, taskID, lifecycle.EventUncomplete, nil)
}

func (s *TaskServiceImpl) ReportDelay(ctx context.Context, actor domain.User, turnaroundID, taskID string, delay lifecycle.DelayInput) (*api.Task, error) {
	return s.transition(ctx, "internal.service.task.ReportDelay", actor, turnaroundID, taskID, lifecycle.EventReportDelay, &delay)
}

func (s *TaskServiceImpl) ClearDelay(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error) {
	return s.transition(ctx, "internal.service.task.ClearDelay", actor, turnaroundID, taskID, lifecycle.EventClearDelay, nil)
}

// The task write and the turnaround write are not atomic.
func (s *TaskServiceImpl) transition(
	ctx context.Context,
	op string,
	actor domain.User,
	turnaroundID, taskID string,
	ev lifecycle.Event,
	delay *lifecycle.DelayInput,
) (*api.Task, error) {
	log := s.log.With(
		slog.String("op", op),
		slog.String("turnaround_id", turnaroundID),
		slog.String("task_id", taskID),
		slog.String("actor_uid", actor.UID),
	)

	task, err := s.tasks.GetTask(ctx, turnaroundID, taskID)
	if err != nil {
		transitionsTotal.WithLabelValues(string(ev), "error").Inc()
		return nil, fmt.Errorf("%s: failed to load task: %w", op, err)
	}

	member := actor.Member()

	if !authz.CanTransition(member, *task) {
		transitionsTotal.WithLabelValues(string(ev), "forbidden").Inc()
		log.Info("transition refused", slog.String("assignee_uid", task.AssignedTo.UID), slog.String("role", string(actor.Role)))

		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}

	at := s.now()

	next, err := lifecycle.Apply(*task, lifecycle.Transition{
		Event: ev,
		Actor: member,
		At:    at,
		Delay: delay,
	})
	if err != nil {
		transitionsTotal.WithLabelValues(string(ev), "rejected").Inc()

		var validationErr *validation.ValidationError
		if errors.As(err, &validationErr) {
			log.Info("delay report rejected", sl.Err(err))
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := next.CheckInvariants(); err != nil {
		transitionsTotal.WithLabelValues(string(ev), "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var expected *int64
	if s.compareAndSet {
		rev := task.Revision
		expected = &rev
	}

	if err := s.tasks.SaveTaskState(ctx, &next, expected); err != nil {
		outcome := "error"
		if errors.Is(err, apperrors.ErrConflict) {
			outcome = "conflict"
		}
		transitionsTotal.WithLabelValues(string(ev), outcome).Inc()

		return nil, fmt.Errorf("%s: failed to save task: %w", op, err)
	}

	if lifecycle.EnteredDelay(*task, next) {
		if _, err := s.turnarounds.MarkDelayed(ctx, turnaroundID, at); err != nil {
			transitionsTotal.WithLabelValues(string(ev), "partial").Inc()
			log.Error("task delayed but turnaround status not updated", sl.Err(err))

			return nil, fmt.Errorf("%s: failed to mark turnaround delayed: %w", op, err)
		}

		log.Info("turnaround marked delayed")
	}

	transitionsTotal.WithLabelValues(string(ev), "applied").Inc()
	log.Info("task transitioned", slog.String("from", string(task.Status)), slog.String("to", string(next.Status)))

	return toAPITask(&next), nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, actor domain.User, turnaroundID string) ([]api.Task, error) {
	const op = "internal.service.task.ListTasks"

	t, err := s.turnQuery.GetTurnaround(ctx, turnaroundID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load turnaround: %w", op, err)
	}

	if !s.filter.Visible(actor, *t) {
		return nil, fmt.Errorf("%s: %w: turnaround with id '%s'", op, apperrors.ErrNotFound, turnaroundID)
	}

	tasks, err := s.tasks.ListTasks(ctx, turnaroundID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list tasks: %w", op, err)
	}

	return toAPITasks(tasks), nil
}
