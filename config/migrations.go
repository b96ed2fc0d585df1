package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"p4b.in/bodyshop/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250601_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Job{})
			},
		},
		{
			ID: "20250614_create_insurance_cases",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.InsuranceCase{})
			},
		},
		{
			ID: "20250702_add_rental_fields",
			Migrate: func(tx *gorm.DB) error {
				// AutoMigrate adds the rental columns introduced after launch.
				// Re-running it on fresh databases is a no-op.
				return tx.AutoMigrate(&models.Job{})
			},
		},
	})

	return m.Migrate()
}
