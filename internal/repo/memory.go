package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BuzzLyutic/taskauth-api/internal/model"
)

// MemoryStore keeps users and tasks in process memory. All state sits behind one mutex.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	users   map[int64]model.User
	byEmail map[string]int64
	tasks   map[int64]model.Task
	userSeq int64
	taskSeq int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     func() time.Time { return time.Now().UTC() },
		users:   make(map[int64]model.User),
		byEmail: make(map[string]int64),
		tasks:   make(map[int64]model.Task),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return model.User{}, ErrorConflict
	}
	s.userSeq++
	u.ID = s.userSeq
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrorNotFound
	}
	return u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return model.User{}, ErrorNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) CreateTask(_ context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskSeq++
	now := s.now()
	t.ID = s.taskSeq
	t.Completed = false
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = t
	return t, nil
}

func (s *MemoryStore) GetTask(_ context.Context, id int64) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrorNotFound
	}
	return t, nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrorNotFound
	}
	patch.Apply(&t)
	t.UpdatedAt = s.now()
	s.tasks[id] = t
	return t, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrorNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) ListTasksByOwner(_ context.Context, ownerID int64, skip, limit int) ([]model.Task, error) {
	s.mu.Lock()
	owned := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}
	s.mu.Unlock()

	// ids are handed out in order, so sorting by id restores insertion order
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })

	if skip < 0 {
		skip = 0
	}
	if skip >= len(owned) {
		return []model.Task{}, nil
	}
	owned = owned[skip:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *MemoryStore) TaskStats(_ context.Context, ownerID int64) (model.TaskStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.NewTaskStats()
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			stats.Add(t)
		}
	}
	return stats, nil
}

func (s *MemoryStore) Close() error { return nil }
