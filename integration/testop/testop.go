package testop

import (
	"fmt"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/grreg"
	"github.com/alpacahq/goregistry/migration"
	"github.com/alpacahq/goregistry/models"
	"github.com/jinzhu/gorm"
)

func recreateDatabase() error {
	pgdb, err := gorm.Open("postgres", "dbname=postgres user=postgres sslmode=disable")
	if err != nil {
		return err
	}
	defer func() {
		pgdb.Close()
	}()
	pgdb.Exec("select pg_terminate_backend(pid) from pg_stat_activity where datname = 'goregistry'")
	pgdb.Exec("DROP DATABASE IF EXISTS goregistry")
	return pgdb.Exec("CREATE DATABASE goregistry").Error
}

func resetDB() error {
	if err := recreateDatabase(); err != nil {
		log.Fatal("database error", "action", "recreate", "error", err)
	}
	if err := migration.Migration(db.DB()).Migrate(); err != nil {
		log.Fatal("database error", "action", "migrate", "error", err)
	}
	if err := Migration(db.DB()).Migrate(); err != nil {
		log.Fatal("database error", "action", "migrate", "error", err)
	}
	log.Info("migration successful")
	return nil
}

func createAdministrator() (*models.Administrator, error) {
	admin := &models.Administrator{
		Email: "integration-test1@alpaca.markets",
		Name:  "Integration Test",
	}

	tx := db.Begin()
	if err := tx.Create(admin).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	fmt.Printf("Administrator: %v created\n", admin.ID)
	return admin, nil
}

func createAccessKey(admin *models.Administrator) error {
	tx := db.Begin()
	service := grreg.Services().AccessKey().WithTx(tx)

	accessKey, err := service.Create(admin.IDAsUUID())
	if err != nil {
		log.Error("database error", "action", "create", "error", err)
		tx.Rollback()
		return err
	}
	apiKey := ApiKey{
		AdminID:   admin.ID,
		KeyID:     accessKey.ID,
		SecretKey: accessKey.Secret,
	}

	if err := tx.Create(&apiKey).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	log.Info("access key created", "key-id", accessKey.ID, "secret-key", accessKey.Secret)

	return nil
}

// Setup prepares the DB for integration testing
func Setup() error {

	if err := resetDB(); err != nil {
		return err
	}

	admin, err := createAdministrator()
	if err != nil {
		return err
	}

	return createAccessKey(admin)
}
