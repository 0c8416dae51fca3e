// Package riskmap is the risk-zone subsystem: persistence for farm maps
// and risk zones, the validation layer above it, and the layout engine
// that drives interactive zone repositioning.
//
// The split mirrors the rest of the codebase: the Repository does pure
// data access, the Service owns validation and derived defaults, and
// nothing above the service ever sees a *gorm.DB. Every call takes the
// acting user's id explicitly; there is no ambient current-user state.
package riskmap

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosafe/farmguard/models"
)

// Repository is the data-access boundary for farm maps and risk zones.
// All reads are scoped by user id; an unowned row behaves exactly like a
// missing one.
type Repository interface {
	FindMapByUser(userID uuid.UUID) (*models.FarmMap, error)
	CreateMap(m *models.FarmMap) error
	FindMapWithZones(mapID, userID uuid.UUID) (*models.FarmMap, error)
	FindZone(zoneID, userID uuid.UUID) (*models.RiskZone, error)
	CreateZone(z *models.RiskZone) error
	SaveZone(z *models.RiskZone) error
	DeleteZone(zoneID, userID uuid.UUID) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the GORM-backed Repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindMapByUser(userID uuid.UUID) (*models.FarmMap, error) {
	var m models.FarmMap
	if err := r.db.Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *gormRepository) CreateMap(m *models.FarmMap) error {
	return r.db.Create(m).Error
}

func (r *gormRepository) FindMapWithZones(mapID, userID uuid.UUID) (*models.FarmMap, error) {
	var m models.FarmMap
	err := r.db.
		Preload("Zones", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND user_id = ?", mapID, userID).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *gormRepository) FindZone(zoneID, userID uuid.UUID) (*models.RiskZone, error) {
	var z models.RiskZone
	if err := r.db.Where("id = ? AND user_id = ?", zoneID, userID).First(&z).Error; err != nil {
		return nil, translate(err)
	}
	return &z, nil
}

func (r *gormRepository) CreateZone(z *models.RiskZone) error {
	return r.db.Create(z).Error
}

func (r *gormRepository) SaveZone(z *models.RiskZone) error {
	return r.db.Save(z).Error
}

func (r *gormRepository) DeleteZone(zoneID, userID uuid.UUID) (bool, error) {
	res := r.db.Where("id = ? AND user_id = ?", zoneID, userID).Delete(&models.RiskZone{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
