package deadline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/rmq/pubsub"
	"github.com/alpacahq/goregistry/dbtest"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DeadlineTestSuite struct {
	dbtest.Suite
}

func TestDeadlineTestSuite(t *testing.T) {
	suite.Run(t, new(DeadlineTestSuite))
}

func (s *DeadlineTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *DeadlineTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *DeadlineTestSuite) seedWorkflow(
	status enum.WorkflowStatus,
	deadline time.Time) *models.ApprovalWorkflow {

	wf := &models.ApprovalWorkflow{
		Action:      enum.ShareIssuance,
		Requestor:   "board",
		Status:      status,
		CurrentStep: 0,
		StepCount:   2,
		Deadline:    &deadline,
	}

	switch status {
	case enum.WorkflowApproved:
		now := clock.Now()
		wf.ApprovedAt = &now
	case enum.WorkflowRejected:
		now := clock.Now()
		reason := "quorum not met"
		wf.RejectedAt = &now
		wf.RejectionReason = &reason
	}

	require.Nil(s.T(), db.DB().Create(wf).Error)

	step := &models.WorkflowStep{
		WorkflowID:   wf.ID,
		Sequence:     0,
		Type:         enum.StepApproval,
		Actor:        enum.ActorBoard,
		Name:         "Board approval",
		Required:     true,
		Status:       enum.StepPending,
		DeadlineDays: 7,
		Deadline:     &deadline,
	}
	require.Nil(s.T(), db.DB().Create(step).Error)

	return wf
}

func (s *DeadlineTestSuite) readUpdate(msgC chan pubsub.Message) update {
	om := stream.OutboundMessage{}
	require.Nil(s.T(), json.Unmarshal(<-msgC, &om))
	assert.Equal(s.T(), stream.WorkflowUpdates, om.Stream)

	buf, err := json.Marshal(om.Data)
	require.Nil(s.T(), err)

	u := update{}
	require.Nil(s.T(), json.Unmarshal(buf, &u))

	return u
}

func (s *DeadlineTestSuite) TestEscalateOverdue() {
	msgC := make(chan pubsub.Message, 10)

	w := &deadlineWorker{
		stream: msgC,
		done:   make(chan struct{}, 1),
	}

	past := clock.Now().Add(-48 * time.Hour)
	wf := s.seedWorkflow(enum.WorkflowPending, past)

	// not yet due workflows stay untouched
	future := clock.Now().Add(72 * time.Hour)
	fresh := s.seedWorkflow(enum.WorkflowPending, future)

	w.escalateOverdue()

	require.Len(s.T(), msgC, 1)
	u := s.readUpdate(msgC)
	assert.Equal(s.T(), "overdue", u.Event)
	assert.Equal(s.T(), wf.ID, u.Workflow.ID)

	stored := models.ApprovalWorkflow{}
	require.Nil(s.T(), db.DB().Where("id = ?", wf.ID).Find(&stored).Error)
	assert.NotNil(s.T(), stored.EscalatedAt)

	require.Nil(s.T(), db.DB().Where("id = ?", fresh.ID).Find(&stored).Error)
	assert.Nil(s.T(), stored.EscalatedAt)

	// second sweep is a no-op, escalation is one shot
	w.escalateOverdue()
	assert.Len(s.T(), msgC, 0)
}

func (s *DeadlineTestSuite) TestNotifyOutcomes() {
	msgC := make(chan pubsub.Message, 10)

	w := &deadlineWorker{
		stream: msgC,
		done:   make(chan struct{}, 1),
	}

	deadline := clock.Now().Add(72 * time.Hour)

	approved := s.seedWorkflow(enum.WorkflowApproved, deadline)
	rejected := s.seedWorkflow(enum.WorkflowRejected, deadline)

	w.notifyOutcomes()

	require.Len(s.T(), msgC, 2)

	seen := map[string]string{}
	for i := 0; i < 2; i++ {
		u := s.readUpdate(msgC)
		seen[u.Workflow.ID] = u.Event
	}

	assert.Equal(s.T(), "approved", seen[approved.ID])
	assert.Equal(s.T(), "rejected", seen[rejected.ID])

	for _, id := range []string{approved.ID, rejected.ID} {
		stored := models.ApprovalWorkflow{}
		require.Nil(s.T(), db.DB().Where("id = ?", id).Find(&stored).Error)
		assert.NotNil(s.T(), stored.NotifiedAt)
	}

	// already notified workflows stay quiet
	w.notifyOutcomes()
	assert.Len(s.T(), msgC, 0)
}
