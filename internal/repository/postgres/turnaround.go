package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

type TurnaroundRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewTurnaroundRepository(db *sqlx.DB, log *slog.Logger) *TurnaroundRepository {
	return &TurnaroundRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *TurnaroundRepository) GetTurnaround(ctx context.Context, id string) (*domain.Turnaround, error) {
	const op = "internal.repository.postgres.GetTurnaround"

	query, args, err := r.sq.Select(turnaroundColumns...).
		From("turnarounds").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var row turnaroundRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: turnaround with id '%s'", apperrors.ErrNotFound, id)
		}

		return nil, storeError(op, "failed to get turnaround", err)
	}

	t := row.toDomain()

	return &t, nil
}

func (r *TurnaroundRepository) ListTurnarounds(ctx context.Context) ([]domain.Turnaround, error) {
	const op = "internal.repository.postgres.ListTurnarounds"

	query, args, err := r.sq.Select(turnaroundColumns...).
		From("turnarounds").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var rows []turnaroundRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storeError(op, "failed to list turnarounds", err)
	}

	out := make([]domain.Turnaround, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *TurnaroundRepository) ListTurnaroundIDs(ctx context.Context) ([]string, error) {
	const op = "internal.repository.postgres.ListTurnaroundIDs"

	query, args, err := r.sq.Select("id").From("turnarounds").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, storeError(op, "failed to list turnaround ids", err)
	}

	return ids, nil
}

func (r *TurnaroundRepository) CreateTurnaround(ctx context.Context, tx *sqlx.Tx, t *domain.Turnaround) error {
	const op = "internal.repository.postgres.CreateTurnaround"

	query, args, err := r.sq.Insert("turnarounds").
		Columns(turnaroundColumns...).
		Values(
			t.ID,
			t.FlightInfo.FlightNumber,
			t.FlightInfo.Origin,
			t.FlightInfo.AircraftType,
			t.Gate,
			string(t.Status),
			t.Progress,
			crewListJSON(t.AssignedCrew),
			t.LastUpdated,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isPQCode(err, uniqueViolation) {
			return &apperrors.TurnaroundAlreadyExistsError{TurnaroundID: t.ID}
		}

		return storeError(op, "failed to insert turnaround", err)
	}

	return nil
}

func (r *TurnaroundRepository) MarkDelayed(ctx context.Context, id string, at time.Time) (bool, error) {
	const op = "internal.repository.postgres.MarkDelayed"

	query, args, err := r.sq.Update("turnarounds").
		Set("status", string(domain.TurnaroundDelayed)).
		Set("last_updated", at).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"status": string(domain.TurnaroundDelayed)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storeError(op, "failed to mark turnaround delayed", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return n > 0, nil
}

func (r *TurnaroundRepository) SetStatus(ctx context.Context, id string, status domain.TurnaroundStatus, at time.Time) error {
	const op = "internal.repository.postgres.SetStatus"

	query, args, err := r.sq.Update("turnarounds").
		Set("status", string(status)).
		Set("last_updated", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storeError(op, "failed to set turnaround status", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: turnaround with id '%s'", apperrors.ErrNotFound, id)
	}

	return nil
}

func (r *TurnaroundRepository) SetProgress(ctx context.Context, id string, progress int, at time.Time) (bool, error) {
	const op = "internal.repository.postgres.SetProgress"

	query, args, err := r.sq.Update("turnarounds").
		Set("progress", progress).
		Set("last_updated", at).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"progress": progress}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storeError(op, "failed to set progress", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return n > 0, nil
}
