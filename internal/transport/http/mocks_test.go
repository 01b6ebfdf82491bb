package http

import (
	"context"

	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/lifecycle"
	"github.com/YusovID/turnaround-service/internal/service"
	"github.com/YusovID/turnaround-service/pkg/api"
	"github.com/stretchr/testify/mock"
)

type UserServiceMock struct {
	mock.Mock
}

var _ service.UserService = (*UserServiceMock)(nil)

func (m *UserServiceMock) Actor(ctx context.Context, uid string) (*domain.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserServiceMock) Me(actor domain.User) *api.User {
	args := m.Called(actor)
	return args.Get(0).(*api.User)
}

func (m *UserServiceMock) Upsert(ctx context.Context, actor domain.User, u domain.User) (*api.User, error) {
	args := m.Called(ctx, actor, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.User), args.Error(1)
}

type TurnaroundServiceMock struct {
	mock.Mock
}

var _ service.TurnaroundService = (*TurnaroundServiceMock)(nil)

func (m *TurnaroundServiceMock) Visible(ctx context.Context, actor domain.User) ([]api.Turnaround, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]api.Turnaround), args.Error(1)
}

func (m *TurnaroundServiceMock) Get(ctx context.Context, actor domain.User, id string) (*api.Turnaround, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.Turnaround), args.Error(1)
}

func (m *TurnaroundServiceMock) Provision(ctx context.Context, actor domain.User, in domain.TurnaroundWithTasks) (*api.TurnaroundWithTasks, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.TurnaroundWithTasks), args.Error(1)
}

func (m *TurnaroundServiceMock) SetStatus(ctx context.Context, actor domain.User, id string, status domain.TurnaroundStatus) (*api.Turnaround, error) {
	args := m.Called(ctx, actor, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.Turnaround), args.Error(1)
}

type TaskServiceMock struct {
	mock.Mock
}

var _ service.TaskService = (*TaskServiceMock)(nil)

func (m *TaskServiceMock) taskResult(args mock.Arguments) (*api.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.Task), args.Error(1)
}

func (m *TaskServiceMock) Complete(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error) {
	return m.taskResult(m.Called(ctx, actor, turnaroundID, taskID))
}

func (m *TaskServiceMock) Uncomplete(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error) {
	return m.taskResult(m.Called(ctx, actor, turnaroundID, taskID))
}

func (m *TaskServiceMock) ReportDelay(ctx context.Context, actor domain.User, turnaroundID, taskID string, delay lifecycle.DelayInput) (*api.Task, error) {
	return m.taskResult(m.Called(ctx, actor, turnaroundID, taskID, delay))
}

func (m *TaskServiceMock) ClearDelay(ctx context.Context, actor domain.User, turnaroundID, taskID string) (*api.Task, error) {
	return m.taskResult(m.Called(ctx, actor, turnaroundID, taskID))
}

func (m *TaskServiceMock) ListTasks(ctx context.Context, actor domain.User, turnaroundID string) ([]api.Task, error) {
	args := m.Called(ctx, actor, turnaroundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]api.Task), args.Error(1)
}
