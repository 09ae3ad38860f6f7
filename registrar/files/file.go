package files

import (
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/models"
)

// RegFile is one of the files the external registrar drops for the
// nightly reconciliation. Parse loads the raw contents into the
// receiver, and Sync compares the parsed records against the register,
// returning the processed and errored record counts.
type RegFile interface {
	Code() string
	Parse(b []byte) (rows int, err error)
	Sync(asOf time.Time) (uint, uint)
}

// Parse parses a given RegFile from the raw byte array
func Parse(b []byte, file RegFile) error {
	start := clock.Now()
	rows, err := file.Parse(b)
	elapsed := clock.Now().Sub(start)
	if err != nil {
		log.Error("registrar file parse error", "file", file.Code(), "error", err)
		return err
	}
	log.Info(
		"registrar file parsed",
		"file", file.Code(),
		"rows", rows,
		"elapsed", elapsed,
		"rows/sec", float64(rows)/elapsed.Seconds(),
	)
	return nil
}

// StoreErrors stores the reconciliation errors reported by the
// individual registrar file Sync() methods.
func StoreErrors(errors []models.BatchError) {
	if len(errors) > 0 {
		tx := db.Begin()
		for _, err := range errors {
			if dbErr := tx.FirstOrCreate(&err).Error; dbErr != nil {
				log.Error("registrar file error storage failure", "error", dbErr)
			}
		}
		tx.Commit()
	}
}
