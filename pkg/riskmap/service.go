package riskmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/agrosafe/farmguard/models"
)

func jsonOf[T any](v T) datatypes.JSONType[T] {
	return datatypes.NewJSONType(v)
}

// Default shape for a newly created zone: a 100x80 rectangle centered on
// the owning map.
const (
	defaultZoneWidth  = 100
	defaultZoneHeight = 80
)

// Service owns validation and derived defaults for the risk-zone store.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreateFarmMap returns the user's single farm map, creating it with
// default bounds and config on the first visit to the risk module.
// Idempotent from the caller's point of view: later calls return the same
// row. Two truly concurrent first calls can race to the insert; the
// unique index on user_id makes the loser fail rather than produce a
// duplicate, and the retry below resolves it to the winner's row.
func (s *Service) GetOrCreateFarmMap(userID uuid.UUID) (*models.FarmMap, error) {
	m, err := s.repo.FindMapByUser(userID)
	if err == nil {
		return m, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	created := &models.FarmMap{
		UserID:      userID,
		Name:        "My Farm",
		Description: "Farm risk zone map",
		Bounds:      jsonOf(models.DefaultMapBounds()),
		Config:      jsonOf(models.DefaultMapConfig()),
	}
	if err := s.repo.CreateMap(created); err != nil {
		// Lost a concurrent first-create; the row exists now.
		if m, findErr := s.repo.FindMapByUser(userID); findErr == nil {
			return m, nil
		}
		return nil, err
	}
	return created, nil
}

// GetFarmMapWithZones loads a map and its zones. ErrNotFound when the map
// does not belong to userID.
func (s *Service) GetFarmMapWithZones(mapID, userID uuid.UUID) (*models.FarmMap, error) {
	return s.repo.FindMapWithZones(mapID, userID)
}

// CreateZoneInput carries the client-supplied fields for a new zone.
type CreateZoneInput struct {
	FarmMapID   uuid.UUID            `json:"farmMapId"`
	Name        string               `json:"name"`
	Category    string               `json:"category"`
	RiskLevel   string               `json:"riskLevel"`
	Location    string               `json:"location"`
	Description string               `json:"description"`
	Geometry    *models.ZoneGeometry `json:"geometry,omitempty"`
	ActionPlan  *string              `json:"actionPlan,omitempty"`
}

// CreateZone validates input, verifies map ownership and inserts the
// zone. Validation failures are raised before any database call. When no
// geometry is supplied the default rectangle is centered on the map.
func (s *Service) CreateZone(userID uuid.UUID, in CreateZoneInput) (*models.RiskZone, error) {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"name", in.Name},
		{"category", in.Category},
		{"risk_level", in.RiskLevel},
		{"location", in.Location},
		{"description", in.Description},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	m, err := s.repo.FindMapWithZones(in.FarmMapID, userID)
	if err != nil {
		return nil, err
	}

	geom := in.Geometry
	if geom == nil {
		g := centeredGeometry(in.Name, m.Bounds.Data())
		geom = &g
	}

	zone := &models.RiskZone{
		FarmMapID:   m.ID,
		UserID:      userID,
		Name:        in.Name,
		Category:    in.Category,
		RiskLevel:   in.RiskLevel,
		Location:    in.Location,
		Description: in.Description,
		Geometry:    jsonOf(*geom),
		ActionPlan:  in.ActionPlan,
		LastReview:  models.FlexTime(time.Now().UTC()),
		IsActive:    true,
	}
	if err := s.repo.CreateZone(zone); err != nil {
		return nil, err
	}
	return zone, nil
}

// ZonePatch is a partial update; nil fields are left untouched.
type ZonePatch struct {
	Name              *string              `json:"name,omitempty"`
	Category          *string              `json:"category,omitempty"`
	RiskLevel         *string              `json:"riskLevel,omitempty"`
	Location          *string              `json:"location,omitempty"`
	Description       *string              `json:"description,omitempty"`
	Geometry          *models.ZoneGeometry `json:"geometry,omitempty"`
	ActionPlan        *string              `json:"actionPlan,omitempty"`
	LastReview        *models.FlexTime     `json:"lastReview,omitempty"`
	IncidentsThisYear *int                 `json:"incidentsThisYear,omitempty"`
	IsActive          *bool                `json:"isActive,omitempty"`
}

// UpdateZone applies a partial update to a zone the user owns. Updates
// are last-write-wins; there is no version check on the row.
func (s *Service) UpdateZone(zoneID, userID uuid.UUID, patch ZonePatch) (*models.RiskZone, error) {
	z, err := s.repo.FindZone(zoneID, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		z.Name = *patch.Name
	}
	if patch.Category != nil {
		z.Category = *patch.Category
	}
	if patch.RiskLevel != nil {
		z.RiskLevel = *patch.RiskLevel
	}
	if patch.Location != nil {
		z.Location = *patch.Location
	}
	if patch.Description != nil {
		z.Description = *patch.Description
	}
	if patch.Geometry != nil {
		z.Geometry = jsonOf(*patch.Geometry)
	}
	if patch.ActionPlan != nil {
		z.ActionPlan = patch.ActionPlan
	}
	if patch.LastReview != nil {
		z.LastReview = *patch.LastReview
	}
	if patch.IncidentsThisYear != nil {
		z.IncidentsThisYear = *patch.IncidentsThisYear
	}
	if patch.IsActive != nil {
		z.IsActive = *patch.IsActive
	}

	if err := s.repo.SaveZone(z); err != nil {
		return nil, err
	}
	return z, nil
}

// UpdateZonePosition moves a zone to a new top-left corner, keeping the
// rest of its geometry. This is the write path for edit-mode drags.
// Positions are not clamped to the map bounds; a zone may sit partly or
// wholly off-map.
func (s *Service) UpdateZonePosition(zoneID, userID uuid.UUID, x, y float64) (*models.RiskZone, error) {
	z, err := s.repo.FindZone(zoneID, userID)
	if err != nil {
		return nil, err
	}
	geom := z.Geometry.Data()
	geom.X = x
	geom.Y = y
	z.Geometry = jsonOf(geom)
	if err := s.repo.SaveZone(z); err != nil {
		return nil, err
	}
	return z, nil
}

// DeleteZone hard-deletes a zone the user owns. Returns false (with
// ErrNotFound) when nothing matched.
func (s *Service) DeleteZone(zoneID, userID uuid.UUID) (bool, error) {
	deleted, err := s.repo.DeleteZone(zoneID, userID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, ErrNotFound
	}
	return true, nil
}

func centeredGeometry(name string, b models.MapBounds) models.ZoneGeometry {
	return models.ZoneGeometry{
		ID:     uuid.NewString(),
		Name:   name,
		Type:   "rectangle",
		X:      b.Width/2 - defaultZoneWidth/2,
		Y:      b.Height/2 - defaultZoneHeight/2,
		Width:  defaultZoneWidth,
		Height: defaultZoneHeight,
	}
}
