package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskauth-api/internal/model"
	"github.com/BuzzLyutic/taskauth-api/internal/repo"
)

const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 1

	MaxTitleLen       = 200
	MaxDescriptionLen = 1000

	DefaultListLimit = 100
	MaxListLimit     = 100
)

// TaskService enforces ownership on top of a TaskRepository.
// Every lookup checks existence first and ownership second.
type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
}

func NewTaskService(repo repo.TaskRepository, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, caller model.User, t model.Task) (model.Task, error) {
	if err := s.validate(t); err != nil {
		return t, err
	}

	t.OwnerID = caller.ID
	t.Completed = false
	created, err := s.repo.CreateTask(ctx, t)
	if err != nil {
		return created, fmt.Errorf("create task: %w", err)
	}

	s.logger.Debug("task created", zap.Int64("task_id", created.ID), zap.Int64("owner_id", caller.ID))
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, caller model.User, id int64) (model.Task, error) {
	return s.owned(ctx, caller, id)
}

func (s *TaskService) List(ctx context.Context, caller model.User, skip, limit int) ([]model.Task, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.ListTasksByOwner(ctx, caller.ID, skip, limit)
}

func (s *TaskService) Update(ctx context.Context, caller model.User, id int64, patch model.TaskPatch) (model.Task, error) {
	if err := s.validatePatch(patch); err != nil {
		return model.Task{}, err
	}
	if _, err := s.owned(ctx, caller, id); err != nil {
		return model.Task{}, err
	}
	return s.repo.UpdateTask(ctx, id, patch)
}

func (s *TaskService) Complete(ctx context.Context, caller model.User, id int64) (model.Task, error) {
	done := true
	return s.Update(ctx, caller, id, model.TaskPatch{Completed: &done})
}

// Delete removes the task and returns what was stored.
func (s *TaskService) Delete(ctx context.Context, caller model.User, id int64) (model.Task, error) {
	t, err := s.owned(ctx, caller, id)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return model.Task{}, err
	}

	s.logger.Debug("task deleted", zap.Int64("task_id", id), zap.Int64("owner_id", caller.ID))
	return t, nil
}

func (s *TaskService) Stats(ctx context.Context, caller model.User) (model.TaskStats, error) {
	return s.repo.TaskStats(ctx, caller.ID)
}

func (s *TaskService) owned(ctx context.Context, caller model.User, id int64) (model.Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if t.OwnerID != caller.ID {
		s.logger.Info("task access denied",
			zap.Int64("task_id", id),
			zap.Int64("caller_id", caller.ID),
		)
		return model.Task{}, ErrForbidden
	}
	return t, nil
}

func (s *TaskService) validate(t model.Task) error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	return validatePriority(t.Priority)
}

func (s *TaskService) validatePatch(p model.TaskPatch) error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if p.Priority != nil {
		return validatePriority(*p.Priority)
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("%w: title is longer than %d characters", ErrValidation, MaxTitleLen)
	}
	return nil
}

func validateDescription(d *string) error {
	if d != nil && utf8.RuneCountInString(*d) > MaxDescriptionLen {
		return fmt.Errorf("%w: description is longer than %d characters", ErrValidation, MaxDescriptionLen)
	}
	return nil
}

func validatePriority(p int) error {
	if p < MinPriority || p > MaxPriority {
		return fmt.Errorf("%w: priority must be between %d and %d", ErrValidation, MinPriority, MaxPriority)
	}
	return nil
}
