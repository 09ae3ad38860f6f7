package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alpacahq/gopaca/calendar"
	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/grreg"
	"github.com/alpacahq/goregistry/mailer"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/s3man"
	"github.com/alpacahq/goregistry/workers/common"
	"github.com/gocarina/gocsv"
)

var lastDate string

type snapshotWorker struct {
	done chan struct{}
}

var worker *snapshotWorker

// exportRow is one holder/class line of the daily CSV export.
type exportRow struct {
	Date              string `csv:"date"`
	HolderID          string `csv:"holder_id"`
	LegalName         string `csv:"legal_name"`
	Class             string `csv:"class"`
	SharesOutstanding int64  `csv:"shares_outstanding"`
	OwnershipPct      string `csv:"ownership_pct"`
	VotingPct         string `csv:"voting_pct"`
}

// Work takes the daily register snapshot once per business day, and
// ships the holder export to S3 and the corporate secretary.
func Work() {
	if worker == nil {
		worker = &snapshotWorker{done: make(chan struct{}, 1)}
		worker.done <- struct{}{}
	}
	// make sure not to overlap if the work routine is taking long
	if common.WaitTimeout(worker.done, time.Second) {
		// timed out, so let's skip this round and wait until it finishes
		return
	}

	defer func() {
		worker.done <- struct{}{}
	}()

	now := clock.Now().In(calendar.NY)

	if !calendar.IsMarketDay(now) {
		return
	}

	// run at 7 AM
	on := now.Truncate(24 * time.Hour).Add(time.Hour * 7)
	if !now.After(on) {
		return
	}

	date := now.Format("2006-01-02")

	if lastDate == date {
		// Already done
		return
	}

	if err := worker.processSnapshot(date); err != nil {
		log.Error("snapshot worker failure", "date", date, "error", err)
		return
	}

	lastDate = date
}

// Process generates the snapshot and export outside the schedule gate.
func Process(date string) error {
	if worker == nil {
		worker = &snapshotWorker{done: make(chan struct{}, 1)}
		worker.done <- struct{}{}
	}

	return worker.processSnapshot(date)
}

func (w *snapshotWorker) processSnapshot(date string) error {
	tx := db.RepeatableRead()

	notes := fmt.Sprintf("daily register snapshot for %v", date)

	snap, err := grreg.Services().CapTable().WithTx(tx).GenerateSnapshot(&notes, "system")
	if err != nil {
		tx.Rollback()
		return err
	}

	if err = tx.Commit().Error; err != nil {
		return err
	}

	buf, err := w.export(date, snap)
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("captable_%v.csv", date)

	if err = s3man.New().Upload(
		bytes.NewReader(buf),
		fmt.Sprintf("/registry/snapshots/%v/%v", date, fileName)); err != nil {
		// the mail copy still delivers, so don't abort over S3
		log.Error("snapshot worker s3 upload failure", "file", fileName, "error", err)
	}

	if err = mailer.SendSnapshotExport(date, fileName, buf); err != nil {
		return err
	}

	log.Info(
		"snapshot worker generated snapshot",
		"snapshot", snap.ID,
		"holders", snap.HolderCount,
		"outstanding", snap.TotalOutstanding)

	return nil
}

// export flattens the snapshot payload into per holder/class rows,
// classes in their constitutional order so the file diffs cleanly
// day over day.
func (w *snapshotWorker) export(date string, snap *models.CapTableSnapshot) ([]byte, error) {
	table := models.CapTable{}

	if err := json.Unmarshal(snap.Payload, &table); err != nil {
		return nil, err
	}

	rows := []*exportRow{}

	for _, holder := range table.Holders {
		for _, class := range enum.ShareClasses {
			shares := holder.ByClass[string(class)]
			if shares == 0 {
				continue
			}

			rows = append(rows, &exportRow{
				Date:              date,
				HolderID:          holder.ShareholderID,
				LegalName:         holder.LegalName,
				Class:             string(class),
				SharesOutstanding: shares,
				OwnershipPct:      holder.OwnershipPct.String(),
				VotingPct:         holder.VotingPct.String(),
			})
		}
	}

	return gocsv.MarshalBytes(&rows)
}
