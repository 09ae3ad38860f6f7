package mailer

import (
	"fmt"
	"time"

	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/external/mailgun"
	"github.com/alpacahq/goregistry/mailer/templates"
	"github.com/alpacahq/goregistry/mailer/templates/layouts"
	"github.com/alpacahq/goregistry/mailer/templates/partials"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/utils"
	humanize "github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	// external
	sender     = "Alpaca Registry <registry@alpaca.markets>"
	devSender  = "Dev Test<devtest@alpaca.markets>"
	archive    = "auto-archive-registry@alpaca.markets"
	devArchive = "DevTest Archive<devtestarchive@alpaca.markets>"
	// internal
	internalSender = "Alpaca System <system@alpaca.markets>"

	dateFormat = "Jan 2, 2006"
	timeFormat = "Jan 2, '06 15:04"
)

type MailType string

const (
	// external
	ROFRNotice      MailType = "rofr_notice"
	MeetingNotice   MailType = "meeting_notice"
	WorkflowOutcome MailType = "workflow_outcome"
	OverdueReminder MailType = "overdue_reminder"
	// internal
	SnapshotExport MailType = "snapshot_export"
)

func getBcc() string {
	if utils.Prod() {
		return archive
	}
	return devArchive
}

func getSender() string {
	if utils.Prod() {
		return sender
	}
	return devSender
}

// SendROFRNotice informs an existing shareholder of a proposed
// transfer subject to their right of first refusal, and the date the
// window closes.
func SendROFRNotice(
	name, email, seller string,
	shares int64,
	class enum.ShareClass,
	pricePerShare decimal.Decimal,
	windowEnd time.Time,
	deliverAt *time.Time) error {

	px, _ := pricePerShare.Float64()

	tmplData := struct {
		Name      string
		Seller    string
		Shares    string
		Class     string
		Price     string
		WindowEnd string
	}{
		Name:      name,
		Seller:    seller,
		Shares:    humanize.Comma(shares),
		Class:     class.Readable(),
		Price:     fmt.Sprintf("$%s", humanize.CommafWithDigits(px, 2)),
		WindowEnd: windowEnd.Format(dateFormat),
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.ROFRNotice, tmplData)
	if err != nil {
		return err
	}

	msg := mailgun.Email{
		Sender:    getSender(),
		Subject:   "Right of First Refusal Notice",
		HTML:      html,
		Recipient: email,
		DeliverAt: deliverAt,
		Bcc:       getBcc(),
	}

	if err = mailgun.Send(msg); err != nil {
		log.Error(
			"mailer send error",
			"type", ROFRNotice,
			"recipient", email,
			"error", err)
	}

	return err
}

// SendMeetingNotice gives a shareholder formal notice of a meeting
// called to consider a governance action.
func SendMeetingNotice(
	name, email string,
	action enum.GovernanceAction,
	kind enum.ResolutionKind,
	meetingDate time.Time,
	leadDays int) error {

	tmplData := struct {
		Name           string
		Action         string
		MeetingDate    string
		ResolutionKind string
		LeadDays       int
	}{
		Name:           name,
		Action:         action.Readable(),
		MeetingDate:    meetingDate.Format(dateFormat),
		ResolutionKind: string(kind),
		LeadDays:       leadDays,
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.MeetingNotice, tmplData)
	if err != nil {
		return err
	}

	msg := mailgun.Email{
		Sender:    getSender(),
		Subject:   fmt.Sprintf("Notice of Shareholder Meeting - %s", action.Readable()),
		HTML:      html,
		Recipient: email,
		Bcc:       getBcc(),
	}

	if err = mailgun.Send(msg); err != nil {
		log.Error(
			"mailer send error",
			"type", MeetingNotice,
			"recipient", email,
			"error", err)
	}

	return err
}

// SendWorkflowOutcome notifies the requestor that their workflow
// reached a terminal status.
func SendWorkflowOutcome(
	name, email string,
	wf *models.ApprovalWorkflow) error {

	approved := wf.Status == enum.WorkflowApproved

	outcome := "rejected"
	if approved {
		outcome = "approved"
	}

	var response string
	if wf.RejectionReason != nil {
		response = *wf.RejectionReason
	}

	tmplData := struct {
		Name        string
		Action      string
		RequestedAt string
		Outcome     string
		Approved    bool
		Response    string
		Workflow    string
	}{
		Name:        name,
		Action:      wf.Action.Readable(),
		RequestedAt: wf.CreatedAt.Format(dateFormat),
		Outcome:     outcome,
		Approved:    approved,
		Response:    response,
		Workflow:    wf.ID,
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.WorkflowOutcome, tmplData)
	if err != nil {
		return err
	}

	msg := mailgun.Email{
		Sender:    getSender(),
		Subject:   fmt.Sprintf("Your %s Request Has Been %s", wf.Action.Readable(), outcome),
		HTML:      html,
		Recipient: email,
		Bcc:       getBcc(),
	}

	if err = mailgun.Send(msg); err != nil {
		log.Error(
			"mailer send error",
			"type", WorkflowOutcome,
			"workflow", wf.ID,
			"error", err)
	}

	return err
}

// SendOverdueReminder nudges the actor responsible for a step that
// has passed its deadline without a decision.
func SendOverdueReminder(
	name, email string,
	action enum.GovernanceAction,
	step *models.WorkflowStep) error {

	deadline := ""
	if step.Deadline != nil {
		deadline = step.Deadline.Format(timeFormat)
	}

	tmplData := struct {
		Name     string
		Action   string
		Step     string
		Deadline string
	}{
		Name:     name,
		Action:   action.Readable(),
		Step:     step.Name,
		Deadline: deadline,
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.OverdueReminder, tmplData)
	if err != nil {
		return err
	}

	msg := mailgun.Email{
		Sender:    getSender(),
		Subject:   fmt.Sprintf("Overdue Approval - %s", wfSubject(action, step)),
		HTML:      html,
		Recipient: email,
		Bcc:       getBcc(),
	}

	if err = mailgun.Send(msg); err != nil {
		log.Error(
			"mailer send error",
			"type", OverdueReminder,
			"workflow", step.WorkflowID,
			"error", err)
	}

	return err
}

func wfSubject(action enum.GovernanceAction, step *models.WorkflowStep) string {
	return fmt.Sprintf("%s (%s)", action.Readable(), step.Name)
}

// SendSnapshotExport sends the daily cap table export to the
// corporate secretary's archive for review.
func SendSnapshotExport(date, fileName string, file []byte) (err error) {
	msg := mailgun.Email{
		Sender:    internalSender,
		Subject:   fmt.Sprintf("%s Cap Table Export", date),
		Recipient: "secretary@alpaca.markets",
		PlainText: "Please see the attached cap table export.",
		Attachment: &mailgun.Attachment{
			Name: fileName,
			Data: file,
		},
	}

	if err = mailgun.Send(msg); err != nil {
		log.Error(
			"mailer send error",
			"type", SnapshotExport,
			"error", err)
	}

	return
}
