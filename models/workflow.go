package models

import (
	"encoding/json"
	"time"

	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// ApprovalWorkflow tracks one governance action through its required
// approval sequence. Steps are ordered and advanced one at a time by
// a cursor; approved and rejected are terminal.
type ApprovalWorkflow struct {
	ID        string     `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`

	Action    enum.GovernanceAction `json:"action" gorm:"not null;index;type:varchar(24)"`
	Requestor string                `json:"requestor" gorm:"not null" sql:"type:text"`
	// action parameters frozen at evaluation time
	Params json.RawMessage `json:"params" sql:"type:json;"`

	Status      enum.WorkflowStatus `json:"status" gorm:"not null;index;type:varchar(9)"`
	CurrentStep uint                `json:"current_step" gorm:"not null"`
	StepCount   uint                `json:"step_count" gorm:"not null"`

	Deadline        *time.Time `json:"deadline" gorm:"type:timestamp with time zone"`
	ApprovedAt      *time.Time `json:"approved_at" gorm:"type:timestamp with time zone"`
	RejectedAt      *time.Time `json:"rejected_at" gorm:"type:timestamp with time zone"`
	RejectionReason *string    `json:"rejection_reason" sql:"type:text"`

	// worker sweep markers so escalations and outcome notices fire once
	EscalatedAt *time.Time `json:"escalated_at" gorm:"type:timestamp with time zone"`
	NotifiedAt  *time.Time `json:"-" gorm:"type:timestamp with time zone"`

	Steps []WorkflowStep `json:"steps" gorm:"ForeignKey:WorkflowID"`
}

func (w *ApprovalWorkflow) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(w.ID)
	return id
}

func (w *ApprovalWorkflow) BeforeCreate(scope *gorm.Scope) error {
	if w.ID == "" {
		w.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", w.ID)
}

func (w *ApprovalWorkflow) Terminal() bool {
	return w.Status.Terminal()
}

type WorkflowStep struct {
	ID         uint            `json:"id" gorm:"primary_key"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	WorkflowID string          `json:"workflow_id" gorm:"not null;index" sql:"type:uuid;"`
	Sequence   uint            `json:"sequence" gorm:"not null"`
	Type       enum.StepType   `json:"type" gorm:"not null;type:varchar(8)"`
	Actor      enum.StepActor  `json:"actor" gorm:"not null;type:varchar(14)"`
	Name       string          `json:"name" gorm:"not null" sql:"type:text"`
	Required   bool            `json:"required" gorm:"not null"`
	Status     enum.StepStatus `json:"status" gorm:"not null;type:varchar(8)"`
	// relative offset the deadline was computed from, kept for audit
	DeadlineDays uint       `json:"deadline_days" gorm:"not null"`
	Deadline     *time.Time `json:"deadline" gorm:"type:timestamp with time zone"`
	Response     *string    `json:"response" sql:"type:text"`
	CompletedBy  *string    `json:"completed_by" sql:"type:text"`
	CompletedAt  *time.Time `json:"completed_at" gorm:"type:timestamp with time zone"`
}
