package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

type TaskRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewTaskRepository(db *sqlx.DB, log *slog.Logger) *TaskRepository {
	return &TaskRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *TaskRepository) GetTask(ctx context.Context, turnaroundID, taskID string) (*domain.Task, error) {
	const op = "internal.repository.postgres.GetTask"

	query, args, err := r.sq.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"turnaround_id": turnaroundID, "id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: task '%s' of turnaround '%s'", apperrors.ErrNotFound, taskID, turnaroundID)
		}

		return nil, storeError(op, "failed to get task", err)
	}

	t := row.toDomain()

	return &t, nil
}

func (r *TaskRepository) ListTasks(ctx context.Context, turnaroundID string) ([]domain.Task, error) {
	const op = "internal.repository.postgres.ListTasks"

	query, args, err := r.sq.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"turnaround_id": turnaroundID}).
		OrderBy("sequence", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storeError(op, "failed to list tasks", err)
	}

	out := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *TaskRepository) CreateTasks(ctx context.Context, tx *sqlx.Tx, tasks []domain.Task) error {
	const op = "internal.repository.postgres.CreateTasks"

	if len(tasks) == 0 {
		return nil
	}

	builder := r.sq.Insert("tasks").Columns(
		"id", "turnaround_id", "name", "assigned_role", "assigned_uid", "assigned_name",
		"status", "is_delayed", "sequence",
	)

	for _, t := range tasks {
		builder = builder.Values(
			t.ID, t.TurnaroundID, t.Name, string(t.AssignedRole), t.AssignedTo.UID, t.AssignedTo.Name,
			string(t.Status), t.IsDelayed, t.Sequence,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isPQCode(err, uniqueViolation) {
			return fmt.Errorf("%s: %w", op, &apperrors.TaskAlreadyExistsError{TurnaroundID: tasks[0].TurnaroundID})
		}

		if isPQCode(err, foreignKeyViolation) {
			return fmt.Errorf("%w: turnaround of checklist", apperrors.ErrNotFound)
		}

		return storeError(op, "failed to insert tasks", err)
	}

	return nil
}

func (r *TaskRepository) SaveTaskState(ctx context.Context, task *domain.Task, expectedRevision *int64) error {
	const op = "internal.repository.postgres.SaveTaskState"

	where := sq.Eq{"turnaround_id": task.TurnaroundID, "id": task.ID}
	if expectedRevision != nil {
		where["revision"] = *expectedRevision
	}

	query, args, err := r.sq.Update("tasks").
		SetMap(stateValues(task)).
		Set("revision", sq.Expr("revision + 1")).
		Where(where).
		Suffix("RETURNING revision").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var revision int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&revision); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return storeError(op, "failed to save task state", err)
		}

		if expectedRevision == nil {
			return fmt.Errorf("%w: task '%s' of turnaround '%s'", apperrors.ErrNotFound, task.ID, task.TurnaroundID)
		}

		if _, getErr := r.GetTask(ctx, task.TurnaroundID, task.ID); getErr != nil {
			return getErr
		}

		return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
	}

	task.Revision = revision

	return nil
}
