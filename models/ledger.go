package models

import (
	"time"

	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// LedgerEntry is one immutable record of an ownership-changing
// event. Entries are append-only: nothing in the codebase updates or
// deletes a row after creation, and the table carries no updated_at.
// Any past cap table can be reconstructed by replaying entries in
// sequence order.
type LedgerEntry struct {
	ID        string    `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt time.Time `json:"created_at"`
	// monotonic ordering for journal consumers
	Sequence uint                 `json:"sequence" gorm:"AUTO_INCREMENT;unique_index"`
	Kind     enum.LedgerEntryKind `json:"kind" gorm:"not null;index;type:varchar(12)"`

	// from side is absent on issuance and bonus entries
	FromHolderID *string          `json:"from_holder_id" gorm:"index" sql:"type:uuid"`
	FromClass    *enum.ShareClass `json:"from_class" gorm:"type:varchar(12)"`
	FromShares   *int64           `json:"from_shares"`

	ToHolderID *string          `json:"to_holder_id" gorm:"index" sql:"type:uuid"`
	ToClass    *enum.ShareClass `json:"to_class" gorm:"type:varchar(12)"`
	ToShares   *int64           `json:"to_shares"`

	PricePerShare      *decimal.Decimal `json:"price_per_share" gorm:"type:decimal"`
	TotalConsideration *decimal.Decimal `json:"total_consideration" gorm:"type:decimal"`

	// audit attribution - recorded, never authenticated here
	Actor        string    `json:"actor" gorm:"not null" sql:"type:text"`
	WorkflowID   *string   `json:"workflow_id" sql:"type:uuid"`
	ResolutionID *string   `json:"resolution_id" sql:"type:uuid"`
	Notes        *string   `json:"notes" sql:"type:text"`
	TransactedAt time.Time `json:"transacted_at" gorm:"type:timestamp with time zone;not null;index"`
}

func (e *LedgerEntry) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(e.ID)
	return id
}

func (e *LedgerEntry) BeforeCreate(scope *gorm.Scope) error {
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", e.ID)
}

// Delta returns the signed share movement this entry applies to the
// given (holder, class) pair. Summed over all entries it must equal
// the holding's current outstanding count.
func (e *LedgerEntry) Delta(holderID string, class enum.ShareClass) int64 {
	var delta int64

	if e.FromHolderID != nil && *e.FromHolderID == holderID &&
		e.FromClass != nil && *e.FromClass == class && e.FromShares != nil {
		delta -= *e.FromShares
	}

	if e.ToHolderID != nil && *e.ToHolderID == holderID &&
		e.ToClass != nil && *e.ToClass == class && e.ToShares != nil {
		delta += *e.ToShares
	}

	return delta
}
