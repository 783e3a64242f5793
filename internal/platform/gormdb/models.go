package gormdb

import (
	"time"

	"github.com/phrazzld/tasklane-api/internal/domain"
)

type userRecord struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

type taskRecord struct {
	ID          int64       `gorm:"primaryKey"`
	OwnerID     int64       `gorm:"not null;index:idx_tasks_owner_status,priority:1"`
	Owner       *userRecord `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Title       string      `gorm:"size:100;not null"`
	Description *string     `gorm:"size:500"`
	Status      string      `gorm:"size:16;not null;index:idx_tasks_owner_status,priority:2;check:chk_tasks_status,status IN ('TODO','IN_PROGRESS','DONE')"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func toTaskRecord(t *domain.Task) *taskRecord {
	return &taskRecord{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r *taskRecord) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// copyInto writes storage-assigned fields back onto the caller's task.
func (r *taskRecord) copyInto(t *domain.Task) {
	t.ID = r.ID
	t.CreatedAt = r.CreatedAt
	t.UpdatedAt = r.UpdatedAt
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:             r.ID,
		Email:          r.Email,
		HashedPassword: r.PasswordHash,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
