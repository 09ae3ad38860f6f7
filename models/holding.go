package models

import (
	"time"

	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Holding is the relationship between one shareholder and one share
// class. Created on first issuance, updated additively, never
// deleted - a fully divested holding is zeroed and kept.
//
// SharesOutstanding <= SharesIssued holds at all times, and both are
// non-negative. The ledger is the system of record: summing signed
// entry deltas for the (shareholder, class) pair must always equal
// SharesOutstanding.
type Holding struct {
	ID                 string          `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          *time.Time      `json:"-"`
	ShareholderID      string          `json:"shareholder_id" gorm:"not null;index;unique_index:holdings_holder_class" sql:"type:uuid;"`
	Class              enum.ShareClass `json:"class" gorm:"not null;unique_index:holdings_holder_class;type:varchar(12)"`
	SharesIssued       int64           `json:"shares_issued" gorm:"not null"`
	SharesOutstanding  int64           `json:"shares_outstanding" gorm:"not null"`
	SharesReserved     int64           `json:"shares_reserved" gorm:"not null"`
	ConsiderationPaid  decimal.Decimal `json:"consideration_paid" gorm:"type:decimal;not null"`
	VestingSchedule    *string         `json:"vesting_schedule" sql:"type:text"`
	VestingCliff       *string         `json:"vesting_cliff" sql:"type:date"`
	VestingEnd         *string         `json:"vesting_end" sql:"type:date"`
	TransferRestricted *bool           `json:"transfer_restricted"`
	AcquiredAt         time.Time       `json:"acquired_at" gorm:"type:timestamp with time zone;not null"`
	Shareholder        *Shareholder    `json:"-" gorm:"ForeignKey:ShareholderID"`
}

func (h *Holding) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(h.ID)
	return id
}

func (h *Holding) ShareholderIDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(h.ShareholderID)
	return id
}

func (h *Holding) BeforeCreate(scope *gorm.Scope) error {
	if h.ID == "" {
		h.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", h.ID)
}

// Unvested shares may still be outstanding but are excluded from
// transfer eligibility by the policy layer.
func (h *Holding) Transferable() int64 {
	return h.SharesOutstanding - h.SharesReserved
}
