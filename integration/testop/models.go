package testop

import (
	"github.com/jinzhu/gorm"
	gormigrate "gopkg.in/gormigrate.v1"
)

// ApiKey stores the seeded credentials so the test suite can pick
// them up without parsing tool output.
type ApiKey struct {
	AdminID   string `sql:"type:uuid;"`
	KeyID     string `gorm:"primary_key;type:text"`
	SecretKey string `gorm:"type:text;"`
}

func Migration(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202501161030",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&ApiKey{}).Error; err != nil {
					return err
				}
				return nil
			},
		},
	})
}
