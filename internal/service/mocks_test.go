package service

import (
	"context"
	"time"

	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type TaskRepositoryMock struct {
	mock.Mock
}

var _ repository.TaskRepository = (*TaskRepositoryMock)(nil)

func (m *TaskRepositoryMock) GetTask(ctx context.Context, turnaroundID, taskID string) (*domain.Task, error) {
	args := m.Called(ctx, turnaroundID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) ListTasks(ctx context.Context, turnaroundID string) ([]domain.Task, error) {
	args := m.Called(ctx, turnaroundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) CreateTasks(ctx context.Context, tx *sqlx.Tx, tasks []domain.Task) error {
	args := m.Called(ctx, tx, tasks)
	return args.Error(0)
}

func (m *TaskRepositoryMock) SaveTaskState(ctx context.Context, task *domain.Task, expectedRevision *int64) error {
	args := m.Called(ctx, task, expectedRevision)
	return args.Error(0)
}

type TurnaroundQueryRepositoryMock struct {
	mock.Mock
}

var _ repository.TurnaroundQueryRepository = (*TurnaroundQueryRepositoryMock)(nil)

func (m *TurnaroundQueryRepositoryMock) GetTurnaround(ctx context.Context, id string) (*domain.Turnaround, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Turnaround), args.Error(1)
}

func (m *TurnaroundQueryRepositoryMock) ListTurnarounds(ctx context.Context) ([]domain.Turnaround, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Turnaround), args.Error(1)
}

func (m *TurnaroundQueryRepositoryMock) ListTurnaroundIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

type TurnaroundCommandRepositoryMock struct {
	mock.Mock
}

var _ repository.TurnaroundCommandRepository = (*TurnaroundCommandRepositoryMock)(nil)

func (m *TurnaroundCommandRepositoryMock) CreateTurnaround(ctx context.Context, tx *sqlx.Tx, t *domain.Turnaround) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

func (m *TurnaroundCommandRepositoryMock) MarkDelayed(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *TurnaroundCommandRepositoryMock) SetStatus(ctx context.Context, id string, status domain.TurnaroundStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

func (m *TurnaroundCommandRepositoryMock) SetProgress(ctx context.Context, id string, progress int, at time.Time) (bool, error) {
	args := m.Called(ctx, id, progress, at)
	return args.Bool(0), args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepositoryMock) UpsertUser(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepositoryMock) AssignTurnaround(ctx context.Context, tx *sqlx.Tx, uids []string, turnaroundID string) error {
	args := m.Called(ctx, tx, uids, turnaroundID)
	return args.Error(0)
}
