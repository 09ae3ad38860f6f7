package models

import (
	"time"

	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Resolution is the formal governance document derived from a
// workflow that requires shareholder or board action. Vote tallies
// are voting power, not head counts, so weighted classes are
// respected.
type Resolution struct {
	ID         string     `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`
	WorkflowID string     `json:"workflow_id" gorm:"not null;index" sql:"type:uuid;"`

	Kind        enum.ResolutionKind   `json:"kind" gorm:"not null;type:varchar(9)"`
	Status      enum.ResolutionStatus `json:"status" gorm:"not null;index;type:varchar(8)"`
	Title       string                `json:"title" gorm:"not null" sql:"type:text"`
	Description *string               `json:"description" sql:"type:text"`

	QuorumPct            decimal.Decimal `json:"quorum_pct" gorm:"type:decimal;not null"`
	ApprovalThresholdPct decimal.Decimal `json:"approval_threshold_pct" gorm:"type:decimal;not null"`

	VotesFor     decimal.Decimal `json:"votes_for" gorm:"type:decimal;not null"`
	VotesAgainst decimal.Decimal `json:"votes_against" gorm:"type:decimal;not null"`
	VotesAbstain decimal.Decimal `json:"votes_abstain" gorm:"type:decimal;not null"`

	PassedAt *time.Time `json:"passed_at" gorm:"type:timestamp with time zone"`
	FiledAt  *time.Time `json:"filed_at" gorm:"type:timestamp with time zone"`

	Signatures []ResolutionSignature `json:"signatures" gorm:"ForeignKey:ResolutionID"`
}

func (r *Resolution) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(r.ID)
	return id
}

func (r *Resolution) BeforeCreate(scope *gorm.Scope) error {
	if r.ID == "" {
		r.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", r.ID)
}

func (r *Resolution) Decided() bool {
	switch r.Status {
	case enum.ResolutionApproved:
		fallthrough
	case enum.ResolutionRejected:
		fallthrough
	case enum.ResolutionFiled:
		return true
	default:
		return false
	}
}

type ResolutionSignature struct {
	ID            uint      `json:"id" gorm:"primary_key"`
	CreatedAt     time.Time `json:"created_at"`
	ResolutionID  string    `json:"resolution_id" gorm:"not null;index;unique_index:resolution_signatures_unique" sql:"type:uuid;"`
	ShareholderID string    `json:"shareholder_id" gorm:"not null;unique_index:resolution_signatures_unique" sql:"type:uuid;"`
	Favor         bool      `json:"favor" gorm:"not null"`
	SignedAt      time.Time `json:"signed_at" gorm:"type:timestamp with time zone;not null"`
}
