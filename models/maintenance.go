package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Maintenance task statuses. Anything other than completed counts as open
// for risk purposes.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// MaintenanceTask is one scheduled maintenance job. DueDate is the raw
// client-submitted string (same legacy-data caveat as
// Equipment.LastInspection).
type MaintenanceTask struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	DueDate     string    `gorm:"column:due_date;size:40;not null" json:"dueDate"`
	Status      string    `gorm:"size:30;not null;default:pending" json:"status"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (m *MaintenanceTask) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
