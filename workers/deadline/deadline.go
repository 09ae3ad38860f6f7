package deadline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/gopaca/rmq/pubsub"
	"github.com/alpacahq/goregistry/external/segment"
	"github.com/alpacahq/goregistry/external/slack"
	"github.com/alpacahq/goregistry/grreg"
	"github.com/alpacahq/goregistry/mailer"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/stream"
	"github.com/alpacahq/goregistry/utils/constants"
	"github.com/alpacahq/goregistry/workers/common"
	"github.com/jinzhu/gorm"
	try "gopkg.in/matryer/try.v1"
)

type deadlineWorker struct {
	stream chan<- pubsub.Message
	cancel context.CancelFunc
	done   chan struct{}
}

var worker *deadlineWorker

// update is the workflow_updates stream frame.
type update struct {
	Event    string                   `json:"event"`
	Workflow *models.ApprovalWorkflow `json:"workflow"`
}

// Stop disconnects the RMQ connection and prepares the routine
// for graceful shutdown
func Stop() {
	if worker != nil {
		worker.cancel()
	}
}

// Work sweeps approval workflows for deadline breaches and for
// terminal outcomes that still owe their notifications. Each workflow
// is stamped inside its own transaction before anything is sent, so a
// notice goes out once even when two worker nodes sweep concurrently.
func Work() {
	if worker == nil {
		worker = &deadlineWorker{done: make(chan struct{}, 1)}
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

	worker.escalateOverdue()
	worker.notifyOutcomes()
}

func (w *deadlineWorker) escalateOverdue() {
	asOf := clock.Now().Add(-time.Duration(constants.OverdueGraceDays) * 24 * time.Hour)

	overdue, err := grreg.Services().Workflow().WithTx(db.DB()).Overdue(asOf)
	if err != nil {
		log.Error("deadline worker failed to list overdue workflows", "error", err)
		return
	}

	count := 0

	for i := range overdue {
		wf := overdue[i]

		if wf.EscalatedAt != nil {
			continue
		}

		if err := w.escalate(&wf); err != nil {
			log.Error(
				"deadline worker escalation failure",
				"workflow", wf.ID,
				"error", err)
			continue
		}

		count++
	}

	if count > 0 {
		log.Info("deadline worker escalated workflows", "count", count)
	}
}

func (w *deadlineWorker) escalate(wf *models.ApprovalWorkflow) error {
	swept := false

	if err := try.Do(func(attempt int) (bool, error) {
		tx := db.RepeatableRead()

		locked := &models.ApprovalWorkflow{}

		q := tx.
			Set("gorm:query_option", db.ForUpdate).
			Where("id = ?", wf.ID).
			Find(locked)

		if q.Error != nil {
			tx.Rollback()
			return db.IsSerializabilityError(q.Error), q.Error
		}

		// another node swept it, or a decision landed in the meantime
		if locked.EscalatedAt != nil || locked.Terminal() {
			swept = true
			tx.Rollback()
			return false, nil
		}

		now := clock.Now()

		if err := tx.Model(locked).Update("escalated_at", now).Error; err != nil {
			tx.Rollback()
			return db.IsSerializabilityError(err), err
		}

		err := tx.Commit().Error

		return db.IsSerializabilityError(err), err
	}); err != nil || swept {
		return err
	}

	step := &models.WorkflowStep{}

	q := db.DB().
		Where("workflow_id = ? AND sequence = ?", wf.ID, wf.CurrentStep).
		Find(step)

	if q.Error != nil && !q.RecordNotFound() {
		return q.Error
	}

	if !q.RecordNotFound() {
		go mailer.SendOverdueReminder(
			"Corporate Secretary",
			env.GetVar("REGISTRY_SECRETARY_EMAIL"),
			wf.Action,
			step)
	}

	msg := slack.NewGovernanceActivity()
	msg.SetBody(struct {
		Event     string `json:"event"`
		Workflow  string `json:"workflow"`
		Action    string `json:"action"`
		Requestor string `json:"requestor"`
		Step      string `json:"step"`
	}{
		Event:     "overdue",
		Workflow:  wf.ID,
		Action:    wf.Action.Readable(),
		Requestor: wf.Requestor,
		Step:      step.Name,
	})
	slack.Notify(msg)

	return w.push(update{Event: "overdue", Workflow: wf})
}

func (w *deadlineWorker) notifyOutcomes() {
	workflows := []models.ApprovalWorkflow{}

	q := db.DB().
		Where("status IN (?) AND notified_at IS NULL", []enum.WorkflowStatus{
			enum.WorkflowApproved,
			enum.WorkflowRejected,
			enum.WorkflowCancelled,
		}).
		Find(&workflows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		log.Error("deadline worker failed to list settled workflows", "error", q.Error)
		return
	}

	for i := range workflows {
		wf := workflows[i]

		if err := w.notify(&wf); err != nil {
			log.Error(
				"deadline worker outcome notification failure",
				"workflow", wf.ID,
				"error", err)
		}
	}
}

func (w *deadlineWorker) notify(wf *models.ApprovalWorkflow) error {
	swept := false

	if err := try.Do(func(attempt int) (bool, error) {
		tx := db.RepeatableRead()

		locked := &models.ApprovalWorkflow{}

		q := tx.
			Set("gorm:query_option", db.ForUpdate).
			Where("id = ?", wf.ID).
			Find(locked)

		if q.Error != nil {
			tx.Rollback()
			return db.IsSerializabilityError(q.Error), q.Error
		}

		if locked.NotifiedAt != nil {
			swept = true
			tx.Rollback()
			return false, nil
		}

		now := clock.Now()

		if err := tx.Model(locked).Update("notified_at", now).Error; err != nil {
			tx.Rollback()
			return db.IsSerializabilityError(err), err
		}

		err := tx.Commit().Error

		return db.IsSerializabilityError(err), err
	}); err != nil || swept {
		return err
	}

	switch wf.Status {
	case enum.WorkflowApproved, enum.WorkflowRejected:
		go mailer.SendWorkflowOutcome(
			"Corporate Secretary",
			env.GetVar("REGISTRY_SECRETARY_EMAIL"),
			wf)

		w.trackOutcome(wf)
	}

	if wf.Status == enum.WorkflowApproved {
		w.trackResolutions(wf)
	}

	return w.push(update{Event: string(wf.Status), Workflow: wf})
}

func (w *deadlineWorker) trackOutcome(wf *models.ApprovalWorkflow) {
	var evt segment.Event

	switch wf.Status {
	case enum.WorkflowApproved:
		evt = segment.NewWorkflowApprovedEvent()
	case enum.WorkflowRejected:
		evt = segment.NewWorkflowRejectedEvent()
	default:
		return
	}

	evt.SetSubjectID(wf.IDAsUUID())
	evt.SetProperty("action", wf.Action)
	evt.SetProperty("requestor", wf.Requestor)
	evt.SetProperty("steps", wf.StepCount)

	if err := segment.Track(evt); err != nil {
		log.Error(
			"deadline worker segment failure",
			"workflow", wf.ID,
			"error", err)
	}
}

// trackResolutions reports resolutions that carried with an approved
// workflow. Resolutions filed after this sweep are not re-reported.
func (w *deadlineWorker) trackResolutions(wf *models.ApprovalWorkflow) {
	resolutions := []models.Resolution{}

	q := db.DB().
		Where("workflow_id = ? AND status IN (?)", wf.ID, []enum.ResolutionStatus{
			enum.ResolutionApproved,
			enum.ResolutionFiled,
		}).
		Find(&resolutions)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		log.Error(
			"deadline worker failed to list resolutions",
			"workflow", wf.ID,
			"error", q.Error)
		return
	}

	for _, resolution := range resolutions {
		evt := segment.NewResolutionPassedEvent()
		evt.SetSubjectID(resolution.IDAsUUID())
		evt.SetProperty("kind", resolution.Kind)
		evt.SetProperty("workflow", resolution.WorkflowID)

		if err := segment.Track(evt); err != nil {
			log.Error(
				"deadline worker segment failure",
				"resolution", resolution.ID,
				"error", err)
		}
	}
}

func (w *deadlineWorker) push(u update) error {
	buf, err := json.Marshal(stream.OutboundMessage{
		Stream: stream.WorkflowUpdates,
		Data:   u,
	})
	if err != nil {
		return err
	}

	w.stream <- pubsub.Message(buf)

	return nil
}
