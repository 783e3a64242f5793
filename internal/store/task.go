package store

import (
	"context"

	"github.com/phrazzld/tasklane-api/internal/domain"
)

// Pagination limits for task listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions narrows and pages a task listing.
type ListOptions struct {
	// Status restricts the result to one state when non-nil.
	Status *domain.TaskStatus
	// Page is 1-based.
	Page int
	// Limit is the page size, capped at MaxPageSize.
	Limit int
}

// Normalize fills defaults and clamps the page size.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	return o
}

// Offset returns the number of rows skipped before the requested page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create inserts a single task and fills in its ID and timestamps.
	// The task's OwnerID must already be set by the caller.
	Create(ctx context.Context, task *domain.Task) error

	// CreateMany inserts all tasks in a single transaction and returns the
	// number of rows written. Either every task is inserted or none is.
	// IDs and timestamps are filled in on success.
	CreateMany(ctx context.Context, tasks []*domain.Task) (int64, error)

	// GetByID retrieves a task owned by ownerID.
	// Returns ErrTaskNotFound if it does not exist or has another owner.
	GetByID(ctx context.Context, ownerID, id int64) (*domain.Task, error)

	// List returns one page of the owner's tasks ordered by id, plus the
	// total number of matching tasks.
	List(ctx context.Context, ownerID int64, opts ListOptions) ([]*domain.Task, int64, error)

	// Update applies the non-nil fields of patch and returns the stored task.
	// Returns ErrTaskNotFound if the task does not exist for ownerID.
	Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes the task permanently and returns its last state.
	// Returns ErrTaskNotFound if the task does not exist for ownerID.
	Delete(ctx context.Context, ownerID, id int64) (*domain.Task, error)
}
