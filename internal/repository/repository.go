// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the service layer.
package repository

import (
	"context"
	"time"

	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

// TurnaroundQueryRepository defines the read side of turnaround documents, following the CQRS pattern.
type TurnaroundQueryRepository interface {
	// GetTurnaround returns apperrors.ErrNotFound if the turnaround does not exist.
	GetTurnaround(ctx context.Context, id string) (*domain.Turnaround, error)

	// ListTurnarounds returns every turnaround ordered by id.
	ListTurnarounds(ctx context.Context) ([]domain.Turnaround, error)

	// ListTurnaroundIDs returns the ids of all turnarounds.
	ListTurnaroundIDs(ctx context.Context) ([]string, error)
}

// TurnaroundCommandRepository defines the write side of turnaround documents.
type TurnaroundCommandRepository interface {
	// CreateTurnaround inserts a turnaround inside the provisioning transaction.
	// It returns apperrors.ErrAlreadyExists if the id is taken.
	CreateTurnaround(ctx context.Context, tx *sqlx.Tx, t *domain.Turnaround) error

	// MarkDelayed forces the status to Delayed unless it already is.
	// The boolean reports whether a row was changed.
	MarkDelayed(ctx context.Context, id string, at time.Time) (bool, error)

	// SetStatus writes the status unconditionally.
	// It returns apperrors.ErrNotFound if the turnaround does not exist.
	SetStatus(ctx context.Context, id string, status domain.TurnaroundStatus, at time.Time) error

	// SetProgress writes progress and lastUpdated only when progress differs from the stored value.
	SetProgress(ctx context.Context, id string, progress int, at time.Time) (bool, error)
}

// TaskRepository defines access to turnaround checklists.
type TaskRepository interface {
	// GetTask returns apperrors.ErrNotFound if the task does not exist under the turnaround.
	GetTask(ctx context.Context, turnaroundID, taskID string) (*domain.Task, error)

	// ListTasks returns the checklist ordered by sequence.
	ListTasks(ctx context.Context, turnaroundID string) ([]domain.Task, error)

	// CreateTasks inserts a checklist inside the provisioning transaction.
	CreateTasks(ctx context.Context, tx *sqlx.Tx, tasks []domain.Task) error

	// SaveTaskState writes the mutable lifecycle fields and bumps the revision,
	// which is stored back into task. When expectedRevision is set the write only
	// succeeds if the stored revision still matches; otherwise apperrors.ErrConflict.
	SaveTaskState(ctx context.Context, task *domain.Task, expectedRevision *int64) error
}

// UserRepository defines access to crew profiles.
type UserRepository interface {
	// GetUser returns apperrors.ErrNotFound if the profile does not exist.
	GetUser(ctx context.Context, uid string) (*domain.User, error)

	// UpsertUser creates or replaces a profile.
	UpsertUser(ctx context.Context, u *domain.User) error

	// AssignTurnaround appends turnaroundID to the assigned list of every given
	// user that exists and does not list it yet.
	AssignTurnaround(ctx context.Context, tx *sqlx.Tx, uids []string, turnaroundID string) error
}
