package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MapBounds is the drawable extent of a farm map, in map units.
type MapBounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// MapConfig holds per-map display and editing switches.
type MapConfig struct {
	ShowGrid     bool `json:"showGrid"`
	GridSize     int  `json:"gridSize"`
	SnapToGrid   bool `json:"snapToGrid"`
	ShowLabels   bool `json:"showLabels"`
	ShowLegend   bool `json:"showLegend"`
	AllowEditing bool `json:"allowEditing"`
}

// DefaultMapBounds and DefaultMapConfig are applied when a user's map is
// lazily created on first visit to the risk module.
func DefaultMapBounds() MapBounds {
	return MapBounds{Width: 800, Height: 600, Scale: 1}
}

func DefaultMapConfig() MapConfig {
	return MapConfig{
		ShowGrid:     true,
		GridSize:     20,
		SnapToGrid:   true,
		ShowLabels:   true,
		ShowLegend:   true,
		AllowEditing: true,
	}
}

// FarmMap is the single per-user canvas risk zones are arranged on.
// Exactly one row exists per user (enforced by the unique index on
// user_id together with the find-or-create path in pkg/riskmap).
type FarmMap struct {
	ID          uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                     `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Name        string                        `gorm:"size:150;not null" json:"name"`
	Description string                        `gorm:"size:255" json:"description"`
	Bounds      datatypes.JSONType[MapBounds] `gorm:"column:bounds;type:jsonb;not null" json:"bounds"`
	Config      datatypes.JSONType[MapConfig] `gorm:"column:config;type:jsonb;not null" json:"config"`
	CreatedAt   time.Time                     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                     `gorm:"autoUpdateTime" json:"updatedAt"`

	Zones []RiskZone `gorm:"foreignKey:FarmMapID" json:"zones,omitempty"`
}

func (m *FarmMap) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// Risk levels for zones, ordered Critical > High > Medium > Low.
const (
	RiskLevelLow      = "Low"
	RiskLevelMedium   = "Medium"
	RiskLevelHigh     = "High"
	RiskLevelCritical = "Critical"
)

// ZoneGeometry is the zone's shape on its map, expressed in the owning
// map's coordinate space. Nothing clamps the rectangle to the map bounds;
// partially off-map zones are stored as-is.
type ZoneGeometry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// RiskZone is a named, categorized area of elevated risk on a FarmMap.
// Rows are hard-deleted; is_active only scopes display.
type RiskZone struct {
	ID                uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	FarmMapID         uuid.UUID                        `gorm:"column:farm_map_id;type:uuid;index;not null" json:"farmMapId"`
	UserID            uuid.UUID                        `gorm:"type:uuid;index;not null" json:"userId"`
	Name              string                           `gorm:"size:150;not null" json:"name"`
	Category          string                           `gorm:"size:80;not null" json:"category"`
	RiskLevel         string                           `gorm:"column:risk_level;size:20;not null" json:"riskLevel"`
	Location          string                           `gorm:"size:200;not null" json:"location"`
	Description       string                           `gorm:"size:500;not null" json:"description"`
	Geometry          datatypes.JSONType[ZoneGeometry] `gorm:"column:geometry;type:jsonb;not null" json:"geometry"`
	ActionPlan        *string                          `gorm:"column:action_plan" json:"actionPlan,omitempty"`
	LastReview        FlexTime                         `gorm:"column:last_review" json:"lastReview"`
	IncidentsThisYear int                              `gorm:"column:incidents_this_year;default:0" json:"incidentsThisYear"`
	IsActive          bool                             `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt         time.Time                        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time                        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (z *RiskZone) BeforeCreate(tx *gorm.DB) (err error) {
	if z.ID == uuid.Nil {
		z.ID = uuid.New()
	}
	return
}
