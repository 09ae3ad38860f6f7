package mailer

import (
	"testing"
	"time"

	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MailerTestSuite struct {
	suite.Suite
}

func TestMailerTestSuite(t *testing.T) {
	suite.Run(t, new(MailerTestSuite))
}

// EMAILS_ENABLED is unset under test, so the sends render the
// templates and short circuit before mailgun.
func (s *MailerTestSuite) TestNotices() {
	windowEnd := time.Date(2026, 9, 24, 0, 0, 0, 0, time.UTC)

	assert.Nil(s.T(), SendROFRNotice(
		"Astrid Holm",
		"astrid@example.com",
		"Meridian Capital LLC",
		50000,
		enum.Common,
		decimal.New(125, -1),
		windowEnd,
		nil,
	))

	assert.Nil(s.T(), SendMeetingNotice(
		"Astrid Holm",
		"astrid@example.com",
		enum.ConstitutionAmendment,
		enum.Special,
		windowEnd,
		30,
	))

	rejection := "dilution exceeds the authorized pool"
	wf := &models.ApprovalWorkflow{
		ID:              "7c2b5e57-46c5-4b7d-8de9-3d6821a9e648",
		Action:          enum.ShareIssuance,
		Status:          enum.WorkflowRejected,
		RejectionReason: &rejection,
	}
	assert.Nil(s.T(), SendWorkflowOutcome("Astrid Holm", "astrid@example.com", wf))

	wf.Status = enum.WorkflowApproved
	wf.RejectionReason = nil
	assert.Nil(s.T(), SendWorkflowOutcome("Astrid Holm", "astrid@example.com", wf))

	deadline := windowEnd.AddDate(0, 0, -10)
	assert.Nil(s.T(), SendOverdueReminder(
		"Board of Directors",
		"board@example.com",
		enum.ShareTransfer,
		&models.WorkflowStep{
			WorkflowID: wf.ID,
			Name:       "board approval",
			Deadline:   &deadline,
		},
	))
}
