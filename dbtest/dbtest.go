// Package dbtest provisions a throwaway postgres database per test
// suite, cloned from the migrated grtest template so suites never see
// each other's rows.
package dbtest

import (
	"fmt"
	"os"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/suite"
)

type Suite struct {
	suite.Suite
	DatabaseID *uuid.UUID
}

// SetupDB clones the template database under a fresh name and points
// the process at it.
func (s *Suite) SetupDB() {
	if s.DatabaseID != nil {
		s.FailNowf("testing database ID already set", "database_id: %s", s.DatabaseID.String())
	}

	env.RegisterDefault("PGHOST", "127.0.0.1")
	env.RegisterDefault("PGUSER", "postgres")
	env.RegisterDefault("PGPASSWORD", "alpacas")
	env.RegisterDefault("LOG_DB", "true")

	id := uuid.Must(uuid.NewV4())

	if err := createTestDB(id); err != nil {
		panic(err)
	}

	os.Setenv("PGDATABASE", testDBName(id))

	s.DatabaseID = &id
}

// TeardownDB closes the suite's connection and drops its database.
func (s *Suite) TeardownDB() {
	db.DB().Close()
	if err := dropTestDB(*s.DatabaseID); err != nil {
		panic(err)
	}
}

func testDBName(id uuid.UUID) string {
	return fmt.Sprintf("grtest_%s", id.String())
}

// control opens the postgres maintenance database, since a database
// can't be created or dropped over a connection to itself.
func control() (*gorm.DB, error) {
	return gorm.Open("postgres", fmt.Sprintf(
		"host=%v user=%v password=%v dbname=postgres sslmode=disable",
		env.GetVar("PGHOST"),
		env.GetVar("PGUSER"),
		env.GetVar("PGPASSWORD"),
	))
}

func createTestDB(id uuid.UUID) error {
	pgdb, err := control()
	if err != nil {
		return err
	}
	defer pgdb.Close()

	pgdb.Exec(fmt.Sprintf(`DROP DATABASE IF EXISTS "%s"`, testDBName(id)))

	return pgdb.Exec(fmt.Sprintf(
		`CREATE DATABASE "%s" WITH TEMPLATE grtest`, testDBName(id))).Error
}

func dropTestDB(id uuid.UUID) error {
	pgdb, err := control()
	if err != nil {
		return err
	}
	defer pgdb.Close()

	return pgdb.Exec(fmt.Sprintf(
		`DROP DATABASE IF EXISTS "%s"`, testDBName(id))).Error
}
