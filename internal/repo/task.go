package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskauth-api/internal/model"
)

const taskColumns = `id, owner_id, title, description, priority, completed, created_at, updated_at`

// PostgresStore keeps users and tasks in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
	}
}

func (r *PostgresStore) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (owner_id, title, description, priority)
		VALUES ($1, $2, $3, $4)
		RETURNING `+taskColumns,
		t.OwnerID, t.Title, t.Description, t.Priority,
	).Scan(taskFields(&t)...)
	return t, r.mapError(err)
}

func (r *PostgresStore) GetTask(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id).Scan(taskFields(&t)...)
	return t, r.mapError(err)
}

func (r *PostgresStore) ListTasksByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Task, error) {
	var lim any // LIMIT NULL means no limit
	if limit > 0 {
		lim = limit
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1
		ORDER BY id
		OFFSET $2
		LIMIT $3
	`, ownerID, skip, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(taskFields(&t)...); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask locks the row, merges the patch and writes it back in one transaction.
func (r *PostgresStore) UpdateTask(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	var t model.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT `+taskColumns+`
			FROM tasks
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(taskFields(&t)...)
		if err != nil {
			return err
		}

		patch.Apply(&t)

		return tx.QueryRow(ctx, `
			UPDATE tasks
			SET title = $2, description = $3, priority = $4, completed = $5, updated_at = now()
			WHERE id = $1
			RETURNING `+taskColumns,
			t.ID, t.Title, t.Description, t.Priority, t.Completed,
		).Scan(taskFields(&t)...)
	})
	return t, r.mapError(err)
}

func (r *PostgresStore) DeleteTask(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *PostgresStore) TaskStats(ctx context.Context, ownerID int64) (model.TaskStats, error) {
	stats := model.NewTaskStats()

	rows, err := r.pool.Query(ctx, `
		SELECT priority, completed, COUNT(*)
		FROM tasks
		WHERE owner_id = $1
		GROUP BY priority, completed
	`, ownerID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			priority  int
			completed bool
			count     int
		)
		if err := rows.Scan(&priority, &completed, &count); err != nil {
			return stats, err
		}
		stats.TotalTasks += count
		stats.ByPriority[priority] += count
		if completed {
			stats.ByStatus[model.StatusCompleted] += count
		} else {
			stats.ByStatus[model.StatusPending] += count
		}
	}
	return stats, rows.Err()
}

func (r *PostgresStore) Close() error {
	r.pool.Close()
	return nil
}

func taskFields(t *model.Task) []any {
	return []any{
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
	}
}

func (r *PostgresStore) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // unique_violation
			return ErrorConflict
		}
	}
	return err
}
