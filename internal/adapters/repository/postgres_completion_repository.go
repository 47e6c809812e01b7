package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var _ domain.CompletionRepository = (*PostgresCompletionRepository)(nil)

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

func (r *PostgresCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	return insertCompletion(ctx, r.db, c)
}

// CreateOnce locks the habit row so concurrent completions of the same habit
// run the day check one at a time.
func (r *PostgresCompletionRepository) CreateOnce(ctx context.Context, c *domain.Completion, dayStart, dayEnd time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var habitID string
	lockQuery := `SELECT id FROM habits WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	if err := tx.GetContext(ctx, &habitID, lockQuery, c.HabitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrHabitNotFound
		}
		return fmt.Errorf("failed to lock habit: %w", err)
	}

	var done bool
	existsQuery := `
		SELECT EXISTS (
			SELECT 1 FROM habit_completions
			WHERE habit_id = $1
			  AND completed_at >= $2
			  AND completed_at < $3
			  AND deleted_at IS NULL
		)`
	if err := tx.GetContext(ctx, &done, existsQuery, c.HabitID, dayStart, dayEnd); err != nil {
		return fmt.Errorf("completion check failed: %w", err)
	}
	if done {
		return domain.ErrAlreadyCompletedToday
	}

	if err := insertCompletion(ctx, tx, c); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}
	return nil
}

func insertCompletion(ctx context.Context, db sqlx.ExtContext, c *domain.Completion) error {
	query := `
		INSERT INTO habit_completions (
			id, habit_id, user_id, completed_at, created_at, deleted_at
		) VALUES (
			:id, :habit_id, :user_id, :completed_at, :created_at, :deleted_at
		)`

	if _, err := sqlx.NamedExecContext(ctx, db, query, c); err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return domain.ErrHabitNotFound
		case pgUniqueViolation:
			return fmt.Errorf("%w: duplicate completion id", domain.ErrInvalidCompletion)
		}
		return fmt.Errorf("failed to insert completion: %w", err)
	}

	return nil
}

func (r *PostgresCompletionRepository) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	var c domain.Completion
	query := `SELECT * FROM habit_completions WHERE id = $1 AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompletionNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCompletionRepository) Delete(ctx context.Context, id string, userID string) error {
	query := `
		UPDATE habit_completions
		SET deleted_at = $1
		WHERE id = $2
		  AND user_id = $3
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCompletionNotFound
	}

	return nil
}

func (r *PostgresCompletionRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Completion, error) {
	completions := []*domain.Completion{}

	query := `
		SELECT * FROM habit_completions
		WHERE habit_id = $1
		  AND completed_at >= $2
		  AND completed_at <= $3
		  AND deleted_at IS NULL
		ORDER BY completed_at DESC`

	if err := r.db.SelectContext(ctx, &completions, query, habitID, from, to); err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *PostgresCompletionRepository) HistoryByHabitIDs(ctx context.Context, habitIDs []string) (map[string][]time.Time, error) {
	histories := make(map[string][]time.Time, len(habitIDs))
	if len(habitIDs) == 0 {
		return histories, nil
	}

	query := `
		SELECT habit_id, completed_at FROM habit_completions
		WHERE habit_id = ANY($1) AND deleted_at IS NULL
		ORDER BY completed_at ASC`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(habitIDs))
	if err != nil {
		return nil, fmt.Errorf("history query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var habitID string
		var completedAt time.Time
		if err := rows.Scan(&habitID, &completedAt); err != nil {
			return nil, fmt.Errorf("history row scan error: %w", err)
		}
		histories[habitID] = append(histories[habitID], completedAt.UTC())
	}

	return histories, rows.Err()
}
