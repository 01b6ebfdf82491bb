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
	"github.com/lib/pq"
)

type UserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewUserRepository(db *sqlx.DB, log *slog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (ur *UserRepository) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	const op = "internal.repository.postgres.GetUser"

	query, args, err := ur.sq.Select("id", "employee_id", "full_name", "role", "assigned_turnarounds").
		From("users").
		Where(sq.Eq{"id": uid}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var row userRow
	if err := ur.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user with id '%s'", apperrors.ErrNotFound, uid)
		}

		return nil, storeError(op, "failed to get user", err)
	}

	u := row.toDomain()

	return &u, nil
}

func (ur *UserRepository) UpsertUser(ctx context.Context, u *domain.User) error {
	const op = "internal.repository.postgres.UpsertUser"

	assigned := u.AssignedTurnarounds
	if assigned == nil {
		assigned = []string{}
	}

	query, args, err := ur.sq.Insert("users").
		Columns("id", "employee_id", "full_name", "role", "assigned_turnarounds").
		Values(u.UID, u.EmployeeID, u.FullName, string(u.Role), pq.StringArray(assigned)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
            employee_id = EXCLUDED.employee_id,
            full_name = EXCLUDED.full_name,
            role = EXCLUDED.role,
            assigned_turnarounds = EXCLUDED.assigned_turnarounds`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	if _, err := ur.db.ExecContext(ctx, query, args...); err != nil {
		return storeError(op, "failed to upsert user", err)
	}

	ur.log.Info("user profile stored", slog.String("op", op), slog.String("uid", u.UID))

	return nil
}

func (ur *UserRepository) AssignTurnaround(ctx context.Context, tx *sqlx.Tx, uids []string, turnaroundID string) error {
	const op = "internal.repository.postgres.AssignTurnaround"

	if len(uids) == 0 {
		return nil
	}

	query, args, err := ur.sq.Update("users").
		Set("assigned_turnarounds", sq.Expr("array_append(assigned_turnarounds, ?)", turnaroundID)).
		Where(sq.Eq{"id": uids}).
		Where(sq.Expr("NOT (? = ANY(assigned_turnarounds))", turnaroundID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return storeError(op, "failed to assign turnaround", err)
	}

	return nil
}
