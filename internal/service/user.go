package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/repository"
	"github.com/YusovID/turnaround-service/pkg/api"
)

type UserService interface {
	Actor(ctx context.Context, uid string) (*domain.User, error)
	Me(actor domain.User) *api.User
	Upsert(ctx context.Context, actor domain.User, u domain.User) (*api.User, error)
}

type UserServiceImpl struct {
	log   *slog.Logger
	users repository.UserRepository
}

func NewUserService(log *slog.Logger, users repository.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{
		log:   log,
		users: users,
	}
}

func (s *UserServiceImpl) Actor(ctx context.Context, uid string) (*domain.User, error) {
	const op = "internal.service.user.Actor"

	if uid == "" {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrUnauthenticated)
	}

	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: no profile for '%s'", op, apperrors.ErrUnauthenticated, uid)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *UserServiceImpl) Me(actor domain.User) *api.User {
	return toAPIUser(&actor)
}

func (s *UserServiceImpl) Upsert(ctx context.Context, actor domain.User, u domain.User) (*api.User, error) {
	const op = "internal.service.user.Upsert"
	log := s.log.With(slog.String("op", op), slog.String("uid", u.UID), slog.String("actor_uid", actor.UID))

	if actor.Role != domain.RoleSupervisor {
		if actor.UID != u.UID || actor.Role != u.Role {
			log.Info("profile write refused")
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrSupervisorOnly)
		}

		u.AssignedTurnarounds = actor.AssignedTurnarounds
	}

	if u.AssignedTurnarounds == nil {
		u.AssignedTurnarounds = []string{}
	}

	if err := s.users.UpsertUser(ctx, &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAPIUser(&u), nil
}
