package model

import "time"

type Task struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    int       `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskPatch carries a partial update; nil fields keep the stored value.
// ClearDescription removes the description and wins over Description.
type TaskPatch struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	ClearDescription bool    `json:"-"`
	Priority         *int    `json:"priority"`
	Completed        *bool   `json:"completed"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.ClearDescription && p.Priority == nil && p.Completed == nil
}

// Apply merges the set fields into t. UpdatedAt is left to the store.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	switch {
	case p.ClearDescription:
		t.Description = nil
	case p.Description != nil:
		d := *p.Description
		t.Description = &d
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

type TaskStats struct {
	TotalTasks int            `json:"total_tasks"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[int]int    `json:"by_priority"`
}

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

func NewTaskStats() TaskStats {
	return TaskStats{
		ByStatus:   map[string]int{StatusPending: 0, StatusCompleted: 0},
		ByPriority: map[int]int{},
	}
}

// Add counts one task into the aggregate.
func (s *TaskStats) Add(t Task) {
	s.TotalTasks++
	if t.Completed {
		s.ByStatus[StatusCompleted]++
	} else {
		s.ByStatus[StatusPending]++
	}
	s.ByPriority[t.Priority]++
}
