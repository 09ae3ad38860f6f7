package models

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// CapTableSnapshot freezes one aggregation of the register. The
// payload is immutable once written - corrections are made by taking
// a new snapshot, never by editing an old one.
type CapTableSnapshot struct {
	ID        string    `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt time.Time `json:"created_at"`
	TakenAt   time.Time `json:"taken_at" gorm:"type:timestamp with time zone;not null;index"`
	Notes     *string   `json:"notes" sql:"type:text"`
	Actor     string    `json:"actor" gorm:"not null" sql:"type:text"`
	// denormalized for listing without unpacking the payload
	TotalIssued      int64           `json:"total_issued" gorm:"not null"`
	TotalOutstanding int64           `json:"total_outstanding" gorm:"not null"`
	HolderCount      uint            `json:"holder_count" gorm:"not null"`
	Payload          json.RawMessage `json:"payload" gorm:"not null" sql:"type:json;"`
}

func (s *CapTableSnapshot) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(s.ID)
	return id
}

func (s *CapTableSnapshot) BeforeCreate(scope *gorm.Scope) error {
	if s.ID == "" {
		s.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", s.ID)
}

// CapTable is the recomputed read-side projection, and also the
// snapshot payload shape.
type CapTable struct {
	AsOf             time.Time        `json:"as_of"`
	TotalIssued      int64            `json:"total_issued"`
	TotalOutstanding int64            `json:"total_outstanding"`
	Classes          []CapTableClass  `json:"classes"`
	Holders          []CapTableHolder `json:"holders"`
}

type CapTableClass struct {
	Class             string `json:"class"`
	SharesIssued      int64  `json:"shares_issued"`
	SharesOutstanding int64  `json:"shares_outstanding"`
	SharesReserved    int64  `json:"shares_reserved"`
	TotalAuthorized   int64  `json:"total_authorized"`
	HolderCount       uint   `json:"holder_count"`
}

type CapTableHolder struct {
	ShareholderID     string           `json:"shareholder_id"`
	LegalName         string           `json:"legal_name"`
	SharesOutstanding int64            `json:"shares_outstanding"`
	OwnershipPct      decimal.Decimal  `json:"ownership_pct"`
	VotingPower       decimal.Decimal  `json:"voting_power"`
	VotingPct         decimal.Decimal  `json:"voting_pct"`
	ByClass           map[string]int64 `json:"by_class"`
}
