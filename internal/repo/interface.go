package repo

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/taskauth-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

// UserRepository is the credential store.
type UserRepository interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

// TaskRepository stores tasks keyed by id. It does not check ownership.
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListTasksByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Task, error)
	TaskStats(ctx context.Context, ownerID int64) (model.TaskStats, error)
}

// Store is what a backend has to provide to run the service.
type Store interface {
	UserRepository
	TaskRepository
	Close() error
}
