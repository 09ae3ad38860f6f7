package models

import (
	"time"

	"github.com/alpacahq/goregistry/models/enum"
	"github.com/shopspring/decimal"
)

// ShareClass rows are constitutional configuration seeded by
// migration. Rights are fixed per class and never mutated by
// transactions against the ledger.
type ShareClass struct {
	ID                 uint              `json:"id" gorm:"primary_key"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Class              enum.ShareClass   `json:"class" gorm:"not null;unique_index;type:varchar(12)"`
	Name               string            `json:"name" gorm:"not null" sql:"type:text"`
	VotingWeight       decimal.Decimal   `json:"voting_weight" gorm:"type:decimal;not null"`
	Convertible        bool              `json:"convertible" gorm:"not null"`
	ConversionRatio    *decimal.Decimal  `json:"conversion_ratio" gorm:"type:decimal"`
	ConversionTrigger  *string           `json:"conversion_trigger" sql:"type:text"`
	LiquidationPref    decimal.Decimal   `json:"liquidation_preference" gorm:"type:decimal;not null"`
	DividendRate       *decimal.Decimal  `json:"dividend_rate" gorm:"type:decimal"`
	AntiDilution       enum.AntiDilution `json:"anti_dilution" gorm:"not null;type:varchar(16)"`
	BoardSeats         uint              `json:"board_seats" gorm:"not null"`
	TransferRestricted bool              `json:"transfer_restricted" gorm:"not null"`
	TotalAuthorized    int64             `json:"total_authorized" gorm:"not null"`
}
