package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/events"
	"github.com/phrazzld/tasklane-api/internal/ingest"
	"github.com/phrazzld/tasklane-api/internal/metrics"
	"github.com/phrazzld/tasklane-api/internal/platform/logger"
	"github.com/phrazzld/tasklane-api/internal/store"
)

// Importer runs a CSV import for one owner.
type Importer interface {
	Run(ctx context.Context, r io.Reader, ownerID int64) (*ingest.Result, error)
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks []*domain.Task `json:"tasks"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// TaskService defines the task operations available to delivery mechanisms.
// Every operation is scoped to ownerID, the authenticated caller.
type TaskService interface {
	// Create stores a validated task and announces taskCreated.
	Create(ctx context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error)

	// Get returns one of the owner's tasks.
	Get(ctx context.Context, ownerID, id int64) (*domain.Task, error)

	// List returns one page of the owner's tasks.
	List(ctx context.Context, ownerID int64, opts store.ListOptions) (*TaskPage, error)

	// Update applies a validated patch and announces taskUpdated. An empty
	// patch returns the current task and announces nothing.
	Update(ctx context.Context, ownerID int64, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task and announces taskDeleted with its last state.
	Delete(ctx context.Context, ownerID, id int64) (*domain.Task, error)

	// Import bulk-creates tasks from a CSV document and announces
	// taskCreated for each stored task.
	Import(ctx context.Context, ownerID int64, r io.Reader) (*ingest.Result, error)
}

type taskServiceImpl struct {
	tasks     store.TaskStore
	importer  Importer
	publisher events.Publisher
	logger    *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService.
func NewTaskService(
	tasks store.TaskStore,
	importer Importer,
	publisher events.Publisher,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("%w: task store", ErrNilDependency)
	}
	if importer == nil {
		return nil, fmt.Errorf("%w: importer", ErrNilDependency)
	}
	if publisher == nil {
		return nil, fmt.Errorf("%w: publisher", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:     tasks,
		importer:  importer,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

func (s *taskServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Create implements TaskService.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	ownerID int64,
	in domain.TaskInput,
) (*domain.Task, error) {
	task := domain.NewTask(in, ownerID)
	if err := s.tasks.Create(ctx, task); err != nil {
		s.log(ctx).Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID))
		return nil, NewTaskServiceError("create", err)
	}

	metrics.TasksCreated.Inc()
	s.publisher.Publish(ctx, events.KindTaskCreated, task)
	s.log(ctx).Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("owner_id", ownerID))
	return task, nil
}

// Get implements TaskService.
func (s *taskServiceImpl) Get(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, NewTaskServiceError("get", err)
	}
	return task, nil
}

// List implements TaskService.
func (s *taskServiceImpl) List(
	ctx context.Context,
	ownerID int64,
	opts store.ListOptions,
) (*TaskPage, error) {
	opts = opts.Normalize()
	tasks, total, err := s.tasks.List(ctx, ownerID, opts)
	if err != nil {
		s.log(ctx).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID))
		return nil, NewTaskServiceError("list", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &TaskPage{Tasks: tasks, Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

// Update implements TaskService.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	ownerID int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, ownerID, patch.ID)
	}

	task, err := s.tasks.Update(ctx, ownerID, patch.ID, patch)
	if err != nil {
		return nil, NewTaskServiceError("update", err)
	}

	s.publisher.Publish(ctx, events.KindTaskUpdated, task)
	return task, nil
}

// Delete implements TaskService.
func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	task, err := s.tasks.Delete(ctx, ownerID, id)
	if err != nil {
		return nil, NewTaskServiceError("delete", err)
	}

	s.publisher.Publish(ctx, events.KindTaskDeleted, task)
	return task, nil
}

// Import implements TaskService.
func (s *taskServiceImpl) Import(
	ctx context.Context,
	ownerID int64,
	r io.Reader,
) (*ingest.Result, error) {
	if r == nil {
		return nil, ingest.ErrNoFile
	}

	res, err := s.importer.Run(ctx, r, ownerID)
	if err != nil {
		return nil, NewTaskServiceError("import", err)
	}

	for _, task := range res.Tasks {
		s.publisher.Publish(ctx, events.KindTaskCreated, task)
	}
	s.log(ctx).Info("tasks imported",
		slog.Int64("owner_id", ownerID),
		slog.Int64("persisted", res.Persisted))
	return res, nil
}
