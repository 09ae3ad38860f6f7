package backup

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alpacahq/gopaca/calendar"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/encryption"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/gopaca/pool"
	"github.com/alpacahq/goregistry/external/egnyte"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/s3man"
	"github.com/alpacahq/goregistry/service/shareholder"
	"github.com/cloudfoundry/bytefmt"
	"github.com/gocarina/gocsv"
	"github.com/mholt/archiver"
	"github.com/shopspring/decimal"
)

const (
	dateFormat     = "2006-01-02"
	fileDateFormat = "20060102"
	monthFormat    = "200601"
)

type backupWorker struct {
	uploadS3     func(file io.ReadSeeker, path string) error
	downloadS3   func(local, remote string) error
	uploadEgnyte func(filePath string, data []byte) error
	asOf         time.Time
	parallelism  int
}

func newWorker(asOf time.Time) *backupWorker {
	s3 := s3man.New()

	parallelism, err := strconv.ParseInt(env.GetVar("BACKUP_PARALLELISM"), 10, 32)
	if err != nil {
		parallelism = 1
	}

	return &backupWorker{
		uploadS3:     s3.Upload,
		downloadS3:   s3.DownloadDirectory,
		uploadEgnyte: egnyte.Upload,
		asOf:         asOf,
		parallelism:  int(parallelism),
	}
}

// WorkDaily backs up the required records on a daily basis to S3
func WorkDaily(asOf time.Time, workers ...*backupWorker) {
	var worker *backupWorker

	if len(workers) > 0 {
		worker = workers[0]
	} else {
		worker = newWorker(asOf)
	}

	dailyJobs := []func(holder *models.Shareholder){
		worker.backupShareholder,
		worker.backupMovements,
	}

	worker.runJobs(dailyJobs)
}

// WorkWeekly backs up the week's decided resolutions to S3
func WorkWeekly(asOf time.Time, workers ...*backupWorker) {
	var worker *backupWorker

	if len(workers) > 0 {
		worker = workers[0]
	} else {
		worker = newWorker(asOf)
	}

	worker.backupResolutions()
}

// WorkMonthly backs up the required records on a monthly basis to S3
func WorkMonthly(asOf time.Time, workers ...*backupWorker) {
	var worker *backupWorker

	if len(workers) > 0 {
		worker = workers[0]
	} else {
		worker = newWorker(asOf)
	}

	monthlyJobs := []func(holder *models.Shareholder){
		worker.backupStatement,
	}

	worker.runJobs(monthlyJobs)
}

// Sync the books and records from S3 to Egnyte
func Sync(asOf time.Time, workers ...*backupWorker) {
	var (
		worker          *backupWorker
		filePath, s3Dir string
		zipName, zipDir string
		fInfo           os.FileInfo
		err             error
		buf             []byte
	)

	if len(workers) > 0 {
		worker = workers[0]
	} else {
		worker = newWorker(asOf)
	}

	if s3Dir, err = ioutil.TempDir("", "egnyte"); err != nil {
		log.Error("failed to create temp dir for S3 -> Egnyte sync", "error", err)
		goto Cleanup
	}

	if err = worker.downloadS3(s3Dir, "books_and_records"); err != nil {
		log.Error("failed to download books & records from S3", "error", err)
		goto Cleanup
	}

	if zipDir, err = ioutil.TempDir("", "zip"); err != nil {
		log.Error("failed to create temp dir for zip file", "error", err)
		goto Cleanup
	}

	zipName = fmt.Sprintf("%s/%s.zip", zipDir, asOf.Format(fileDateFormat))

	if err = archiver.Zip.Make(zipName, []string{s3Dir}); err != nil {
		log.Error("failed to make zip file for Egnyte", "error", err)
		goto Cleanup
	}

	if fInfo, err = os.Stat(zipName); err != nil {
		log.Error("failed to stat zip file", "error", err)
	} else {
		log.Info("created zip file", "size", bytefmt.ByteSize(uint64(fInfo.Size())))
	}

	if buf, err = ioutil.ReadFile(zipName); err != nil {
		log.Error("failed to read zip file into memory", "error", err)
		goto Cleanup
	}

	filePath = fmt.Sprintf("books_and_records/%s", filepath.Base(zipName))

	if err = worker.uploadEgnyte(filePath, buf); err != nil {
		log.Error("failed to upload zip file to egnyte", "error", err)
		goto Cleanup
	}

Cleanup:
	if s3Dir != "" {
		if err = os.RemoveAll(s3Dir); err != nil {
			log.Error("failed to clean up local S3 dir", "dir", s3Dir, "error", err)
		}
	}

	if zipDir != "" {
		if err = os.RemoveAll(zipDir); err != nil {
			log.Error("failed to clean up zip dir", "dir", zipDir, "error", err)
		}
	}

}

func (w *backupWorker) runJobs(jobs []func(holder *models.Shareholder)) {
	srv := shareholder.Service().WithTx(db.DB())

	holders, _, err := srv.List(
		shareholder.ShareholderQuery{
			Per: math.MaxInt32,
		},
	)

	if err != nil {
		log.Panic("failed to query shareholders for backup", "error", err)
	}

	jobRunner := func(v interface{}) {
		holder := v.(*models.Shareholder)
		for _, jobFunc := range jobs {
			jobFunc(holder)
		}
	}

	c := make(chan interface{}, w.parallelism)
	p := pool.NewPool(w.parallelism, jobRunner)

	go p.Work(c)

	for i := range holders {
		c <- &holders[i]
	}

	close(c)

	p.Wait()
}

func (w *backupWorker) backupShareholder(holder *models.Shareholder) {
	records, err := genHolderRecords(holder)
	if err != nil {
		log.Error(
			"failed to generate shareholder records",
			"shareholder", holder.ID,
			"error", err)
		return
	}

	buf, err := gocsv.MarshalBytes(records)
	if err != nil {
		log.Error(
			"failed to marshal shareholder record csv",
			"shareholder", holder.ID,
			"error", err)
		return
	}

	filePath := fmt.Sprintf("/books_and_records/shareholders/%s.csv", holder.ID)

	if err = w.uploadS3(bytes.NewReader(buf), filePath); err != nil {
		log.Error(
			"failed to upload shareholder record csv to S3",
			"shareholder", holder.ID,
			"error", err)
	}
}

func (w *backupWorker) backupMovements(holder *models.Shareholder) {
	start := w.asOf
	end := start.AddDate(0, 0, 1)

	entries := []models.LedgerEntry{}

	if err := db.DB().
		Where(
			"(from_holder_id = ? OR to_holder_id = ?) AND transacted_at >= ? AND transacted_at < ?",
			holder.ID,
			holder.ID,
			start.Format(dateFormat),
			end.Format(dateFormat)).
		Order("sequence asc").
		Find(&entries).Error; err != nil {

		log.Panic(
			"failed to query ledger entries for S3 backup",
			"shareholder", holder.ID,
			"error", err)
	}

	if len(entries) == 0 {
		return
	}

	records := genMovementRecords(holder, entries)

	buf, err := gocsv.MarshalBytes(records)
	if err != nil {
		log.Error(
			"failed to marshal movement csv",
			"shareholder", holder.ID,
			"error", err)
		return
	}

	filePath := fmt.Sprintf(
		"/books_and_records/movements/%s/%s.csv",
		holder.ID, start.Format(dateFormat))

	if err = w.uploadS3(bytes.NewReader(buf), filePath); err != nil {
		log.Error(
			"failed to upload movement csv to S3",
			"shareholder", holder.ID,
			"error", err)
	}
}

func (w *backupWorker) backupResolutions() {
	start := w.asOf.Truncate(calendar.Day).AddDate(0, 0, -7)
	end := w.asOf.Truncate(calendar.Day).AddDate(0, 0, 1)

	resolutions := []models.Resolution{}

	if err := db.DB().
		Where(
			"status <> ? AND updated_at >= ? AND updated_at < ?",
			enum.ResolutionDraft, start, end).
		Order("created_at asc").
		Find(&resolutions).Error; err != nil {

		log.Panic("failed to query resolutions for S3 backup", "error", err)
	}

	if len(resolutions) == 0 {
		return
	}

	records := make([]ResolutionRecord, len(resolutions))

	for i := range resolutions {
		r := &resolutions[i]

		if err := db.DB().
			Model(r).
			Related(&r.Signatures, "Signatures").Error; err != nil {
			log.Error(
				"failed to query resolution signatures",
				"resolution", r.ID,
				"error", err)
		}

		records[i] = genResolutionRecord(r)
	}

	buf, err := gocsv.MarshalBytes(records)
	if err != nil {
		log.Error("failed to marshal resolution csv", "error", err)
		return
	}

	filePath := fmt.Sprintf(
		"/books_and_records/resolutions/%s.csv",
		w.asOf.Format(dateFormat))

	if err = w.uploadS3(bytes.NewReader(buf), filePath); err != nil {
		log.Error("failed to upload resolution csv to S3", "error", err)
	}
}

func (w *backupWorker) backupStatement(holder *models.Shareholder) {
	start := w.asOf.AddDate(0, -1, 0)
	end := w.asOf

	records, err := genStatementRecords(holder, start, end)
	if err != nil {
		log.Error(
			"failed to generate holding statement",
			"shareholder", holder.ID,
			"error", err)
		return
	}

	if len(records) == 0 {
		return
	}

	buf, err := gocsv.MarshalBytes(records)
	if err != nil {
		log.Error(
			"failed to marshal holding statement csv",
			"shareholder", holder.ID,
			"error", err)
		return
	}

	filePath := fmt.Sprintf(
		"/books_and_records/statements/%s/%s.csv",
		holder.ID, start.Format(monthFormat))

	if err = w.uploadS3(bytes.NewReader(buf), filePath); err != nil {
		log.Error(
			"failed to upload holding statement csv to S3",
			"shareholder", holder.ID,
			"error", err)
	}
}

// HolderRecord defines a record in the shareholder file to be stored in S3
type HolderRecord struct {
	ShareholderID     string          `csv:"shareholder_id"`
	LegalName         string          `csv:"legal_name"`
	EntityType        string          `csv:"entity_type"`
	Status            string          `csv:"status"`
	EmailAddress      *string         `csv:"email_address"`
	TelephoneNumber   *string         `csv:"telephone_number"`
	LegalAddress      string          `csv:"legal_address"`
	TaxIDNumber       *string         `csv:"tax_id_number"`
	BankName          *string         `csv:"bank_name"`
	BankAccountMasked *string         `csv:"bank_account_masked"`
	Class             string          `csv:"class"`
	SharesIssued      int64           `csv:"shares_issued"`
	SharesOutstanding int64           `csv:"shares_outstanding"`
	SharesReserved    int64           `csv:"shares_reserved"`
	ConsiderationPaid decimal.Decimal `csv:"consideration_paid"`
	AcquiredAt        time.Time       `csv:"acquired_at"`
	RegisteredAt      time.Time       `csv:"registered_at"`
}

func genHolderRecords(holder *models.Shareholder) ([]HolderRecord, error) {
	holdings := []models.Holding{}

	if err := db.DB().
		Where("shareholder_id = ?", holder.ID).
		Order("class").
		Find(&holdings).Error; err != nil {
		return nil, err
	}

	records := make([]HolderRecord, len(holdings))

	for i, h := range holdings {
		rec := HolderRecord{
			ShareholderID:     holder.ID,
			LegalName:         holder.LegalName,
			EntityType:        string(holder.EntityType),
			Status:            string(holder.Status),
			EmailAddress:      holder.Email,
			TelephoneNumber:   holder.PhoneNumber,
			LegalAddress:      holder.FormatAddress(),
			BankName:          holder.BankName,
			BankAccountMasked: holder.BankAccountMasked,
			Class:             string(h.Class),
			SharesIssued:      h.SharesIssued,
			SharesOutstanding: h.SharesOutstanding,
			SharesReserved:    h.SharesReserved,
			ConsiderationPaid: h.ConsiderationPaid,
			AcquiredAt:        h.AcquiredAt,
			RegisteredAt:      holder.CreatedAt,
		}

		// tax id is stored encrypted and masked down to the last four
		// in the file
		if holder.HashTaxID != nil {
			tin, err := encryption.DecryptWithkey(
				*holder.HashTaxID, []byte(env.GetVar("REGISTRY_SECRET")))
			if err != nil {
				return nil, err
			}

			if len(tin) >= 4 {
				tinMask := fmt.Sprintf("xxx-xx-%s", tin[len(tin)-4:])
				rec.TaxIDNumber = &tinMask
			}
		}

		records[i] = rec
	}

	return records, nil
}

// MovementRecord defines a record in the daily movement file to be stored in S3
type MovementRecord struct {
	Sequence           uint             `csv:"sequence"`
	EntryID            string           `csv:"entry_id"`
	Kind               string           `csv:"kind"`
	Direction          string           `csv:"direction"`
	Class              string           `csv:"class"`
	Shares             int64            `csv:"shares"`
	Counterparty       *string          `csv:"counterparty"`
	PricePerShare      *decimal.Decimal `csv:"price_per_share"`
	TotalConsideration *decimal.Decimal `csv:"total_consideration"`
	Actor              string           `csv:"actor"`
	WorkflowID         *string          `csv:"workflow_id"`
	TransactedAt       time.Time        `csv:"transacted_at"`
}

// genMovementRecords emits one row per touched side. A conversion
// touches the same holder on both sides and gets two rows.
func genMovementRecords(holder *models.Shareholder, entries []models.LedgerEntry) []MovementRecord {
	records := []MovementRecord{}

	for _, entry := range entries {
		if entry.FromHolderID != nil && *entry.FromHolderID == holder.ID &&
			entry.FromClass != nil && entry.FromShares != nil {

			records = append(records, MovementRecord{
				Sequence:           entry.Sequence,
				EntryID:            entry.ID,
				Kind:               string(entry.Kind),
				Direction:          "debit",
				Class:              string(*entry.FromClass),
				Shares:             *entry.FromShares,
				Counterparty:       entry.ToHolderID,
				PricePerShare:      entry.PricePerShare,
				TotalConsideration: entry.TotalConsideration,
				Actor:              entry.Actor,
				WorkflowID:         entry.WorkflowID,
				TransactedAt:       entry.TransactedAt,
			})
		}

		if entry.ToHolderID != nil && *entry.ToHolderID == holder.ID &&
			entry.ToClass != nil && entry.ToShares != nil {

			records = append(records, MovementRecord{
				Sequence:           entry.Sequence,
				EntryID:            entry.ID,
				Kind:               string(entry.Kind),
				Direction:          "credit",
				Class:              string(*entry.ToClass),
				Shares:             *entry.ToShares,
				Counterparty:       entry.FromHolderID,
				PricePerShare:      entry.PricePerShare,
				TotalConsideration: entry.TotalConsideration,
				Actor:              entry.Actor,
				WorkflowID:         entry.WorkflowID,
				TransactedAt:       entry.TransactedAt,
			})
		}
	}

	return records
}

// ResolutionRecord defines a record in the weekly resolution file to be stored in S3
type ResolutionRecord struct {
	ResolutionID         string          `csv:"resolution_id"`
	WorkflowID           string          `csv:"workflow_id"`
	Kind                 string          `csv:"kind"`
	Status               string          `csv:"status"`
	Title                string          `csv:"title"`
	QuorumPct            decimal.Decimal `csv:"quorum_pct"`
	ApprovalThresholdPct decimal.Decimal `csv:"approval_threshold_pct"`
	VotesFor             decimal.Decimal `csv:"votes_for"`
	VotesAgainst         decimal.Decimal `csv:"votes_against"`
	VotesAbstain         decimal.Decimal `csv:"votes_abstain"`
	SignatureCount       int             `csv:"signature_count"`
	PassedAt             *time.Time      `csv:"passed_at"`
	FiledAt              *time.Time      `csv:"filed_at"`
}

func genResolutionRecord(r *models.Resolution) ResolutionRecord {
	return ResolutionRecord{
		ResolutionID:         r.ID,
		WorkflowID:           r.WorkflowID,
		Kind:                 string(r.Kind),
		Status:               string(r.Status),
		Title:                r.Title,
		QuorumPct:            r.QuorumPct,
		ApprovalThresholdPct: r.ApprovalThresholdPct,
		VotesFor:             r.VotesFor,
		VotesAgainst:         r.VotesAgainst,
		VotesAbstain:         r.VotesAbstain,
		SignatureCount:       len(r.Signatures),
		PassedAt:             r.PassedAt,
		FiledAt:              r.FiledAt,
	}
}

// StatementRecord defines a record in the monthly holding statement to be stored in S3
type StatementRecord struct {
	PeriodStart    string `csv:"period_start"`
	PeriodEnd      string `csv:"period_end"`
	ShareholderID  string `csv:"shareholder_id"`
	LegalName      string `csv:"legal_name"`
	Class          string `csv:"class"`
	OpeningShares  int64  `csv:"opening_shares"`
	SharesCredited int64  `csv:"shares_credited"`
	SharesDebited  int64  `csv:"shares_debited"`
	ClosingShares  int64  `csv:"closing_shares"`
}

// genStatementRecords reconstructs the opening balance from the
// closing one, so the statement stays consistent with the ledger even
// if a holding row was touched after period end.
func genStatementRecords(holder *models.Shareholder, start, end time.Time) ([]StatementRecord, error) {
	holdings := []models.Holding{}

	if err := db.DB().
		Where("shareholder_id = ?", holder.ID).
		Order("class").
		Find(&holdings).Error; err != nil {
		return nil, err
	}

	if len(holdings) == 0 {
		return nil, nil
	}

	entries := []models.LedgerEntry{}

	if err := db.DB().
		Where(
			"(from_holder_id = ? OR to_holder_id = ?) AND transacted_at >= ? AND transacted_at < ?",
			holder.ID, holder.ID, start, end).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	credited := map[enum.ShareClass]int64{}
	debited := map[enum.ShareClass]int64{}

	for _, entry := range entries {
		if entry.FromHolderID != nil && *entry.FromHolderID == holder.ID &&
			entry.FromClass != nil && entry.FromShares != nil {
			debited[*entry.FromClass] += *entry.FromShares
		}

		if entry.ToHolderID != nil && *entry.ToHolderID == holder.ID &&
			entry.ToClass != nil && entry.ToShares != nil {
			credited[*entry.ToClass] += *entry.ToShares
		}
	}

	records := make([]StatementRecord, len(holdings))

	for i, h := range holdings {
		closing := h.SharesOutstanding
		opening := closing - credited[h.Class] + debited[h.Class]

		records[i] = StatementRecord{
			PeriodStart:    start.Format(dateFormat),
			PeriodEnd:      end.Format(dateFormat),
			ShareholderID:  holder.ID,
			LegalName:      holder.LegalName,
			Class:          string(h.Class),
			OpeningShares:  opening,
			SharesCredited: credited[h.Class],
			SharesDebited:  debited[h.Class],
			ClosingShares:  closing,
		}
	}

	return records, nil
}
