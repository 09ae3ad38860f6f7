package gc

import (
	"strconv"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/models"
)

// Work purges reconciliation scratch rows past the retention window.
// The ledger itself is never touched - only the registrar batch
// tables, which regenerate on every drop.
func Work() {
	retention, err := strconv.Atoi(env.GetVar("REGISTRAR_RETENTION_DAYS"))
	if err != nil {
		retention = 90
	}

	cutoff := clock.Now().AddDate(0, 0, -retention).Format("2006-01-02")

	tx := db.Begin()

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Where("process_date < ?", cutoff).Delete(&models.BatchError{}).Error; err != nil {
		log.Error("failed to clean up registrar batch errors", "error", err)
		tx.Rollback()
		return
	}

	if err := tx.Where("process_date < ?", cutoff).Delete(&models.BatchMetric{}).Error; err != nil {
		log.Error("failed to clean up registrar batch metrics", "error", err)
		tx.Rollback()
		return
	}

	tx.Commit()
}
