package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/progress"
	"github.com/YusovID/turnaround-service/internal/repository"
	"github.com/YusovID/turnaround-service/internal/validation"
	"github.com/YusovID/turnaround-service/internal/visibility"
	"github.com/YusovID/turnaround-service/pkg/api"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TurnaroundService interface {
	Visible(ctx context.Context, actor domain.User) ([]api.Turnaround, error)
	Get(ctx context.Context, actor domain.User, id string) (*api.Turnaround, error)
	Provision(ctx context.Context, actor domain.User, in domain.TurnaroundWithTasks) (*api.TurnaroundWithTasks, error)
	SetStatus(ctx context.Context, actor domain.User, id string, status domain.TurnaroundStatus) (*api.Turnaround, error)
}

type TurnaroundServiceImpl struct {
	BaseService
	query  repository.TurnaroundQueryRepository
	cmd    repository.TurnaroundCommandRepository
	tasks  repository.TaskRepository
	users  repository.UserRepository
	filter visibility.Filter
}

func NewTurnaroundService(
	base BaseService,
	query repository.TurnaroundQueryRepository,
	cmd repository.TurnaroundCommandRepository,
	tasks repository.TaskRepository,
	users repository.UserRepository,
	filter visibility.Filter,
) *TurnaroundServiceImpl {
	return &TurnaroundServiceImpl{
		BaseService: base,
		query:       query,
		cmd:         cmd,
		tasks:       tasks,
		users:       users,
		filter:      filter,
	}
}

func (s *TurnaroundServiceImpl) Visible(ctx context.Context, actor domain.User) ([]api.Turnaround, error) {
	const op = "internal.service.turnaround.Visible"

	all, err := s.query.ListTurnarounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list turnarounds: %w", op, err)
	}

	return toAPITurnarounds(s.filter.Apply(actor, all)), nil
}

func (s *TurnaroundServiceImpl) Get(ctx context.Context, actor domain.User, id string) (*api.Turnaround, error) {
	const op = "internal.service.turnaround.Get"

	t, err := s.query.GetTurnaround(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.filter.Visible(actor, *t) {
		return nil, fmt.Errorf("%s: %w: turnaround with id '%s'", op, apperrors.ErrNotFound, id)
	}

	return toAPITurnaround(t), nil
}

func (s *TurnaroundServiceImpl) Provision(ctx context.Context, actor domain.User, in domain.TurnaroundWithTasks) (*api.TurnaroundWithTasks, error) {
	const op = "internal.service.turnaround.Provision"
	log := s.log.With(slog.String("op", op), slog.String("actor_uid", actor.UID))

	if actor.Role != domain.RoleSupervisor {
		log.Info("provisioning refused", slog.String("role", string(actor.Role)))
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrSupervisorOnly)
	}

	t, tasks, err := s.prepare(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if err := s.cmd.CreateTurnaround(ctx, tx, &t); err != nil {
			return fmt.Errorf("%s: failed to create turnaround: %w", op, err)
		}

		if err := s.tasks.CreateTasks(ctx, tx, tasks); err != nil {
			return fmt.Errorf("%s: failed to create checklist: %w", op, err)
		}

		if err := s.users.AssignTurnaround(ctx, tx, crewUIDs(t, tasks), t.ID); err != nil {
			return fmt.Errorf("%s: failed to record assignments: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("turnaround provisioned", slog.String("turnaround_id", t.ID), slog.Int("tasks", len(tasks)))

	return &api.TurnaroundWithTasks{
		Turnaround: *toAPITurnaround(&t),
		Tasks:      toAPITasks(tasks),
	}, nil
}

func (s *TurnaroundServiceImpl) prepare(in domain.TurnaroundWithTasks) (domain.Turnaround, []domain.Task, error) {
	t := in.Turnaround
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.TurnaroundOnTime
	}
	if t.AssignedCrew == nil {
		t.AssignedCrew = []domain.CrewMember{}
	}
	t.LastUpdated = s.now()

	seen := make(map[int]bool, len(in.Tasks))
	ids := make(map[string]bool, len(in.Tasks))
	tasks := make([]domain.Task, 0, len(in.Tasks))

	for _, src := range in.Tasks {
		if seen[src.Sequence] {
			return t, nil, validation.Fail("tasks", fmt.Sprintf("must not repeat sequence %d", src.Sequence))
		}
		seen[src.Sequence] = true

		if src.ID != "" {
			if ids[src.ID] {
				return t, nil, validation.Fail("tasks", fmt.Sprintf("must not repeat task id '%s'", src.ID))
			}
			ids[src.ID] = true
		}

		id := src.ID
		if id == "" {
			id = uuid.NewString()
		}

		tasks = append(tasks, domain.NewTask(id, t.ID, src.Name, src.AssignedRole, src.AssignedTo, src.Sequence))
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Sequence < tasks[j].Sequence })

	t.Progress = progress.Compute(tasks)

	return t, tasks, nil
}

func crewUIDs(t domain.Turnaround, tasks []domain.Task) []string {
	seen := make(map[string]bool)
	var uids []string

	add := func(uid string) {
		if uid != "" && !seen[uid] {
			seen[uid] = true
			uids = append(uids, uid)
		}
	}

	for _, c := range t.AssignedCrew {
		add(c.UID)
	}
	for _, task := range tasks {
		add(task.AssignedTo.UID)
	}

	return uids
}

func (s *TurnaroundServiceImpl) SetStatus(ctx context.Context, actor domain.User, id string, status domain.TurnaroundStatus) (*api.Turnaround, error) {
	const op = "internal.service.turnaround.SetStatus"
	log := s.log.With(slog.String("op", op), slog.String("turnaround_id", id), slog.String("actor_uid", actor.UID))

	if actor.Role != domain.RoleSupervisor {
		log.Info("status change refused", slog.String("role", string(actor.Role)))
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrSupervisorOnly)
	}

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, validation.Fail("status", fmt.Sprintf("has unknown value %q", status)))
	}

	if err := s.cmd.SetStatus(ctx, id, status, s.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t, err := s.query.GetTurnaround(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to reload turnaround: %w", op, err)
	}

	log.Info("turnaround status set", slog.String("status", string(status)))

	return toAPITurnaround(t), nil
}
