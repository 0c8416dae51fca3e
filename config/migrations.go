package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/agrosafe/farmguard/models"
)

// Migrations brings the schema up to date. Each step is recorded by id,
// so re-running on an existing database is a no-op.
func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250812_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Equipment{},
					&models.CompletedChecklist{}, &models.MaintenanceTask{})
			},
		},
		{
			ID: "20250819_create_risk_map_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.FarmMap{}, &models.RiskZone{})
			},
		},
	})
	return m.Migrate()
}
