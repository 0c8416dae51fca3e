package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompletedChecklist is one finished safety-checklist run against a piece
// of equipment. Only the outcome is kept here; the per-item answers live
// with the checklist screens and are not needed by the risk engine.
type CompletedChecklist struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	EquipmentName string    `gorm:"column:equipment_name;size:150;not null" json:"equipmentName"`
	Status        string    `gorm:"size:30;not null" json:"status"`
	Notes         *string   `gorm:"column:notes" json:"notes,omitempty"`
	CompletedAt   FlexTime  `gorm:"column:completed_at;not null" json:"completedAt"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (c *CompletedChecklist) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
