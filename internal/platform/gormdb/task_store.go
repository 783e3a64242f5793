package gormdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/platform/logger"
	"github.com/phrazzld/tasklane-api/internal/store"
)

// DefaultBatchSize is the number of rows per INSERT statement in CreateMany.
const DefaultBatchSize = 500

// TaskStore implements store.TaskStore with gorm.
type TaskStore struct {
	db        *gorm.DB
	logger    *slog.Logger
	batchSize int
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore. A non-positive batchSize selects DefaultBatchSize.
func NewTaskStore(db *gorm.DB, logger *slog.Logger, batchSize int) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &TaskStore{
		db:        db,
		logger:    logger.With(slog.String("component", "task_store")),
		batchSize: batchSize,
	}
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rec := toTaskRecord(task)
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		log.Error("failed to insert task",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", task.OwnerID))
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}
	rec.copyInto(task)

	log.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("owner_id", task.OwnerID))
	return nil
}

// CreateMany implements store.TaskStore.CreateMany. All rows are inserted in
// one transaction, split into statements of at most batchSize rows.
func (s *TaskStore) CreateMany(ctx context.Context, tasks []*domain.Task) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	records := make([]*taskRecord, len(tasks))
	for i, t := range tasks {
		records[i] = toTaskRecord(t)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, s.batchSize).Error
	})
	if err != nil {
		log.Error("bulk task insert rolled back",
			slog.String("error", err.Error()),
			slog.Int("row_count", len(tasks)))
		return 0, store.NewStoreError("task", "create_many", "bulk insert failed", MapError(err))
	}

	for i, rec := range records {
		rec.copyInto(tasks[i])
	}

	log.Debug("bulk task insert committed", slog.Int("row_count", len(tasks)))
	return int64(len(records)), nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&rec).Error
	if err != nil {
		return nil, s.notFoundOr(ctx, err, "get", id)
	}
	return rec.toDomain(), nil
}

// List implements store.TaskStore.List.
func (s *TaskStore) List(
	ctx context.Context,
	ownerID int64,
	opts store.ListOptions,
) ([]*domain.Task, int64, error) {
	opts = opts.Normalize()
	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("owner_id = ?", ownerID)
		if opts.Status != nil {
			db = db.Where("status = ?", string(*opts.Status))
		}
		return db
	}

	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&taskRecord{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, store.NewStoreError("task", "list", "count failed", MapError(err))
	}

	var records []taskRecord
	err := db.Scopes(filter).
		Order("id ASC").
		Offset(opts.Offset()).
		Limit(opts.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, store.NewStoreError("task", "list", "query failed", MapError(err))
	}

	tasks := make([]*domain.Task, len(records))
	for i := range records {
		tasks[i] = records[i].toDomain()
	}
	return tasks, total, nil
}

// Update implements store.TaskStore.Update. Only the non-nil fields of patch
// are written; an empty patch returns the current row unchanged.
func (s *TaskStore) Update(
	ctx context.Context,
	ownerID, id int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&rec).Error; err != nil {
			return err
		}

		columns := patchColumns(patch)
		if len(columns) == 0 {
			return nil
		}
		if err := tx.Model(&rec).Updates(columns).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", rec.ID).First(&rec).Error
	})
	if err != nil {
		return nil, s.notFoundOr(ctx, err, "update", id)
	}
	return rec.toDomain(), nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&rec).Error; err != nil {
			return err
		}
		return tx.Delete(&rec).Error
	})
	if err != nil {
		return nil, s.notFoundOr(ctx, err, "delete", id)
	}
	return rec.toDomain(), nil
}

func patchColumns(patch domain.TaskPatch) map[string]any {
	columns := make(map[string]any, 3)
	if patch.Title != nil {
		columns["title"] = *patch.Title
	}
	if patch.Description != nil {
		columns["description"] = *patch.Description
	}
	if patch.Status != nil {
		columns["status"] = string(*patch.Status)
	}
	return columns
}

// notFoundOr converts a missing row into store.ErrTaskNotFound and wraps
// anything else as a store error.
func (s *TaskStore) notFoundOr(ctx context.Context, err error, operation string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrTaskNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("task query failed",
		slog.String("operation", operation),
		slog.Int64("task_id", id),
		slog.String("error", err.Error()))
	return store.NewStoreError("task", operation, fmt.Sprintf("task %d", id), MapError(err))
}
