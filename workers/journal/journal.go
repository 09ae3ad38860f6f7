package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/gopaca/rmq/pubsub"
	"github.com/alpacahq/goregistry/external/segment"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/stream"
	"github.com/alpacahq/goregistry/workers/common"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// cap per round so one large backfill can't hold the worker forever
const batchLimit = 500

type journalWorker struct {
	stream chan<- pubsub.Message
	cancel context.CancelFunc
	done   chan struct{}
}

var worker *journalWorker

// Stop disconnects the RMQ connection and prepares the routine
// for graceful shutdown
func Stop() {
	if worker != nil {
		worker.cancel()
	}
}

// Work delivers ledger entries past the journal cursor to the stream
// queue. Delivery is at least once - the cursor advances only after a
// batch is handed to RMQ, so a crash mid-batch replays from the last
// watermark rather than dropping entries.
func Work() {
	if worker == nil {
		worker = &journalWorker{done: make(chan struct{}, 1)}
		worker.done <- struct{}{}
		worker.stream, worker.cancel = pubsub.NewPubSub("stream").Publish()
	}

	// make sure not to overlap if the work routine is taking long
	if common.WaitTimeout(worker.done, time.Second) {
		// timed out, so let's skip this round and wait until it finishes
		return
	}

	defer func() {
		worker.done <- struct{}{}
	}()

	timeout, err := time.ParseDuration(env.GetVar("JOURNAL_TIMEOUT"))
	if err != nil {
		log.Error("invalid journal timeout", "error", err, "value", env.GetVar("JOURNAL_TIMEOUT"))
		timeout = 10 * time.Second
	}

	if err := worker.publishEntries(timeout); err != nil {
		log.Error("journal worker failure", "error", err)
	}
}

func (w *journalWorker) publishEntries(timeout time.Duration) error {
	cursor := &models.JournalCursor{}

	q := db.DB().Where("topic = ?", stream.LedgerUpdates).Find(cursor)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return q.Error
	}

	if q.RecordNotFound() {
		cursor.Topic = stream.LedgerUpdates

		if err := db.DB().Create(cursor).Error; err != nil {
			return err
		}
	}

	entries := []models.LedgerEntry{}

	if err := db.DB().
		Where("sequence > ?", cursor.LastSequence).
		Order("sequence asc").
		Limit(batchLimit).
		Find(&entries).Error; err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		if err := w.push(stream.OutboundMessage{
			Stream: stream.LedgerUpdates,
			Data:   entry,
		}, timeout); err != nil {
			return err
		}

		w.track(entry)
		cursor.LastSequence = entry.Sequence
	}

	if err := db.DB().Save(cursor).Error; err != nil {
		return err
	}

	log.Debug(
		"journal worker delivered entries",
		"count", len(entries),
		"watermark", cursor.LastSequence)

	return nil
}

// push hands the message to the pubsub channel, giving up after the
// configured timeout so a stalled broker can't wedge the worker.
func (w *journalWorker) push(msg stream.OutboundMessage, timeout time.Duration) error {
	buf, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case w.stream <- pubsub.Message(buf):
		return nil
	case <-t.C:
		return fmt.Errorf("stream publish timed out after %v", timeout)
	}
}

// track emits the analytics event for entries that move shares to a
// holder. Analytics never block the journal, failures only log.
func (w *journalWorker) track(entry models.LedgerEntry) {
	if entry.ToHolderID == nil {
		return
	}

	id, err := uuid.FromString(*entry.ToHolderID)
	if err != nil {
		return
	}

	var evt segment.Event

	switch entry.Kind {
	case enum.Issuance, enum.Bonus:
		evt = segment.NewSharesIssuedEvent()
	case enum.Transfer:
		evt = segment.NewSharesTransferredEvent()
	default:
		return
	}

	evt.SetSubjectID(id)
	evt.SetProperty("kind", entry.Kind)

	if entry.ToClass != nil {
		evt.SetProperty("class", *entry.ToClass)
	}

	if entry.ToShares != nil {
		evt.SetProperty("shares", *entry.ToShares)
	}

	if err := segment.Track(evt); err != nil {
		log.Error(
			"journal worker segment failure",
			"entry", entry.ID,
			"error", err)
	}
}
