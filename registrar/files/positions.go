package files

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/utils/date"
	"github.com/gocarina/gocsv"
	"github.com/gofrs/uuid"
)

// PositionRecord is one row of the registrar's daily position file.
// The registrar keys holders by its own holder number, and carries the
// shareholder id we hand out at onboarding for the join back to our
// register.
type PositionRecord struct {
	HolderNumber      string `csv:"holder_number"`
	HolderID          string `csv:"holder_id"`
	LegalName         string `csv:"legal_name"`
	ShareClass        string `csv:"share_class"`
	SharesOutstanding int64  `csv:"shares_outstanding"`
	AsOfDate          string `csv:"as_of_date"`
}

type PositionFile struct {
	records []*PositionRecord
}

func (pf *PositionFile) Code() string {
	return "REG01"
}

func (pf *PositionFile) Parse(b []byte) (int, error) {
	if err := gocsv.UnmarshalBytes(b, &pf.records); err != nil {
		return 0, err
	}
	return len(pf.records), nil
}

// Sync compares the position records the registrar has with the
// holdings in the DB, record by record, each in its own repeatable
// read transaction so a concurrent transfer can't make one row lie.
// After the per-record pass it re-adds the file per share class and
// compares the totals against the register, so two offsetting record
// errors can't cancel out silently.
func (pf *PositionFile) Sync(asOf time.Time) (uint, uint) {
	errors := []models.BatchError{}

	fileTotals := map[enum.ShareClass]int64{}

	runDate := date.DateOf(asOf)

	for _, rec := range pf.records {

		class := enum.ShareClass(strings.ToUpper(rec.ShareClass))

		if !enum.ValidShareClass(class) {
			errors = append(errors, pf.genError(asOf, rec, fmt.Errorf("unknown share class")))
			continue
		}

		fileDate, err := date.ParseDate(rec.AsOfDate)
		if err != nil {
			errors = append(errors, pf.genError(asOf, rec, fmt.Errorf("unparseable as_of_date %q", rec.AsOfDate)))
			continue
		}

		// re-delivered files can lag the run date, but a record dated
		// after it means the registrar handed us the wrong day's file
		if fileDate.After(runDate) {
			errors = append(errors, pf.genError(
				asOf, rec,
				fmt.Errorf("future dated record (%v > %v)", fileDate, runDate)))
			continue
		}

		fileTotals[class] += rec.SharesOutstanding

		if _, err := uuid.FromString(rec.HolderID); err != nil {
			errors = append(errors, pf.genError(asOf, rec, fmt.Errorf("invalid shareholder id")))
			continue
		}

		holder := &models.Shareholder{}

		tx := db.RepeatableRead()

		// find the shareholder
		q := tx.Where("id = ?", rec.HolderID).Find(&holder)
		if q.RecordNotFound() {
			tx.Rollback()
			errors = append(errors, pf.genError(asOf, rec, fmt.Errorf("shareholder not found")))
			continue
		}

		if q.Error != nil {
			tx.Rollback()
			log.Panic("registrar sync database error", "file", pf.Code(), "error", q.Error)
		}

		// registrars pick up name changes from certificates before we
		// do, so a stale legal name is worth an error record
		if !strings.EqualFold(holder.LegalName, rec.LegalName) {
			errors = append(errors, pf.genError(
				asOf, rec,
				fmt.Errorf("mismatched legal name (%q != %q)", holder.LegalName, rec.LegalName)))
			tx.Rollback()
			continue
		}

		holding := &models.Holding{}

		q = tx.Where("shareholder_id = ? AND class = ?", holder.ID, class).Find(&holding)

		if q.RecordNotFound() {
			tx.Rollback()
			// a zero row for a holder we never issued to is consistent
			if rec.SharesOutstanding == 0 {
				continue
			}
			errors = append(errors, pf.genError(asOf, rec, fmt.Errorf("holding not found")))
			continue
		}

		if q.Error != nil {
			tx.Rollback()
			log.Panic("registrar sync database error", "file", pf.Code(), "error", q.Error)
		}

		if holding.SharesOutstanding != rec.SharesOutstanding {
			tx.Rollback()
			errors = append(errors, pf.genError(
				asOf, rec,
				fmt.Errorf(
					"mismatched shares outstanding (%v != %v)",
					holding.SharesOutstanding,
					rec.SharesOutstanding)))
			continue
		}

		tx.Commit()
	}

	recordErrors := len(errors)

	errors = append(errors, pf.checkClassTotals(asOf, fileTotals)...)

	StoreErrors(errors)

	return uint(len(pf.records) - recordErrors), uint(len(errors))
}

// checkClassTotals verifies conservation in the large: the file's
// per-class sums must equal the summed holdings on the register.
func (pf *PositionFile) checkClassTotals(asOf time.Time, fileTotals map[enum.ShareClass]int64) []models.BatchError {
	errors := []models.BatchError{}

	registerTotals := []struct {
		Class             enum.ShareClass
		SharesOutstanding int64
	}{}

	q := db.DB().
		Model(&models.Holding{}).
		Select("class, sum(shares_outstanding) as shares_outstanding").
		Group("class").
		Scan(&registerTotals)

	if q.Error != nil {
		log.Panic("registrar sync database error", "file", pf.Code(), "error", q.Error)
	}

	seen := map[enum.ShareClass]bool{}

	for _, total := range registerTotals {
		seen[total.Class] = true

		if fileTotals[total.Class] != total.SharesOutstanding {
			errors = append(errors, pf.genTotalError(
				asOf, total.Class,
				fmt.Errorf(
					"mismatched class total (%v != %v)",
					total.SharesOutstanding,
					fileTotals[total.Class])))
		}
	}

	for class, total := range fileTotals {
		if !seen[class] && total != 0 {
			errors = append(errors, pf.genTotalError(
				asOf, class,
				fmt.Errorf("class not on register (%v shares in file)", total)))
		}
	}

	return errors
}

func (pf *PositionFile) genError(asOf time.Time, rec *PositionRecord, err error) models.BatchError {
	log.Error("registrar sync error", "file", pf.Code(), "error", err)
	buf, _ := json.Marshal(map[string]interface{}{
		"error":              err.Error(),
		"registrar_position": rec})
	return models.BatchError{
		ProcessDate:               asOf.Format("2006-01-02"),
		FileCode:                  pf.Code(),
		PrimaryRecordIdentifier:   rec.HolderNumber,
		SecondaryRecordIdentifier: strings.ToUpper(rec.ShareClass),
		Error:                     buf,
	}
}

func (pf *PositionFile) genTotalError(asOf time.Time, class enum.ShareClass, err error) models.BatchError {
	log.Error("registrar sync error", "file", pf.Code(), "error", err)
	buf, _ := json.Marshal(map[string]interface{}{"error": err.Error()})
	return models.BatchError{
		ProcessDate:               asOf.Format("2006-01-02"),
		FileCode:                  pf.Code(),
		PrimaryRecordIdentifier:   "CLASS_TOTAL",
		SecondaryRecordIdentifier: string(class),
		Error:                     buf,
	}
}
