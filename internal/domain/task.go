package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

// The fixed set of task states. Matching is exact and case-sensitive.
const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Task field limits.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// TaskStatuses lists every valid status in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}
}

// IsValid reports whether s is one of the fixed task states.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one user.
// ID and OwnerID are assigned server-side and never change.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	OwnerID     int64      `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskInput is a validated candidate task without an owner.
type TaskInput struct {
	Title       string
	Description *string
	Status      TaskStatus
}

// NewTask attaches ownerID to a validated input. The owner always comes
// from the authenticated caller, never from the input itself.
func NewTask(in TaskInput, ownerID int64) *Task {
	return &Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		OwnerID:     ownerID,
	}
}

// TaskPatch is a validated partial update. Nil fields are left untouched.
type TaskPatch struct {
	ID          int64
	Title       *string
	Description *string
	Status      *TaskStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}
