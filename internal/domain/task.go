package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskID is a value object for task identity.
type TaskID struct{ uuid.UUID }

// NewTaskID creates a new TaskID from uuid.
func NewTaskID(id uuid.UUID) TaskID { return TaskID{UUID: id} }

// String returns the canonical string form.
func (t TaskID) String() string { return t.UUID.String() }

// TaskStatus is the task workflow state. Any state is reachable from any
// other in one step; the guard is on who may transition, not on ordering.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// Valid reports whether s is one of the enumerated task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Task belongs to exactly one project. Assignees must be workspace members
// at assignment time.
type Task struct {
	ID            TaskID
	Title         string
	Description   string
	Status        TaskStatus
	ProjectID     ProjectID
	CreatedByID   UserID
	AssignedToIDs []UserID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AssignedTo reports whether userID is among the task's assignees.
func (t *Task) AssignedTo(userID UserID) bool {
	for _, id := range t.AssignedToIDs {
		if id == userID {
			return true
		}
	}
	return false
}
