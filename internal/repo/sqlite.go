package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BuzzLyutic/taskauth-api/internal/model"
)

// SQLiteStore keeps users and tasks in a single SQLite file.
// Timestamps are stored as unix milliseconds.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens the database file. The schema is applied by the caller.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer at a time; avoids lock upgrades failing inside UpdateTask
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// DB exposes the handle for migrations.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	u.CreatedAt = s.now().Truncate(time.Millisecond)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, hashed_password, is_active, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, u.Email, u.HashedPassword, u.IsActive, toMillis(u.CreatedAt)).Scan(&u.ID)
	return u, s.mapError(err)
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, hashed_password, is_active, created_at
		FROM users
		WHERE id = ?
	`, id)
	return s.scanUser(row)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, hashed_password, is_active, created_at
		FROM users
		WHERE email = ?
	`, email)
	return s.scanUser(row)
}

func (s *SQLiteStore) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	now := s.now()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (owner_id, title, description, priority, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		RETURNING `+taskColumns,
		t.OwnerID, t.Title, nullString(t.Description), t.Priority, toMillis(now), toMillis(now),
	)
	return s.scanTask(row)
}

func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return s.scanTask(row)
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	t, err := s.scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return model.Task{}, err
	}

	patch.Apply(&t)

	t, err = s.scanTask(tx.QueryRowContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, priority = ?, completed = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+taskColumns,
		t.Title, nullString(t.Description), t.Priority, t.Completed, toMillis(s.now()), id,
	))
	if err != nil {
		return model.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrorNotFound
	}
	return nil
}

func (s *SQLiteStore) ListTasksByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = ?
		ORDER BY id
		LIMIT ? OFFSET ?
	`, ownerID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := s.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) TaskStats(ctx context.Context, ownerID int64) (model.TaskStats, error) {
	stats := model.NewTaskStats()

	rows, err := s.db.QueryContext(ctx, `
		SELECT priority, completed, COUNT(*)
		FROM tasks
		WHERE owner_id = ?
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanTask(row rowScanner) (model.Task, error) {
	var (
		t           model.Task
		description sql.NullString
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &description, &t.Priority, &t.Completed, &createdAt, &updatedAt)
	if err != nil {
		return model.Task{}, s.mapError(err)
	}
	if description.Valid {
		t.Description = &description.String
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func (s *SQLiteStore) scanUser(row rowScanner) (model.User, error) {
	var (
		u         model.User
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &createdAt); err != nil {
		return model.User{}, s.mapError(err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

func (s *SQLiteStore) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return ErrorConflict
	}
	return err
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
