package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inspection outcome statuses shared by equipment and completed checklists.
const (
	StatusPassed           = "Passed"
	StatusNeedsMaintenance = "Needs Maintenance"
	StatusFailed           = "Failed"
)

// Equipment represents one tracked machine or implement on the farm.
// LastInspection is kept as the raw client-submitted string; form entries
// predate the FlexTime codec and a few legacy rows carry free-text dates,
// so parsing happens at the point of use and bad values are skipped there.
type Equipment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	MakeModel      string    `gorm:"column:make_model;size:150;not null" json:"makeModel"`
	Type           string    `gorm:"size:80;not null" json:"type"`
	Status         string    `gorm:"size:30;not null" json:"status"`
	LastInspection string    `gorm:"column:last_inspection;size:40" json:"lastInspection"`
	Notes          *string   `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
