package models

import (
	"strings"
	"time"

	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/utils/address"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pariz/gountries"
)

type Shareholder struct {
	ID         string                 `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
	DeletedAt  *time.Time             `json:"-"`
	Status     enum.ShareholderStatus `json:"status" gorm:"not null;index;type:varchar(9)"`
	EntityType enum.EntityType        `json:"entity_type" gorm:"not null;type:varchar(12)"`
	LegalName  string                 `json:"legal_name" gorm:"not null" sql:"type:text"`
	Email      *string                `valid:"email" json:"email" gorm:"type:varchar(100);unique_index"`
	// contact details are optional - institutional holders are often
	// reached only through their registered agent
	PhoneNumber   *string         `json:"phone_number" sql:"type:text"`
	StreetAddress address.Address `json:"street_address" sql:"type:text[]"`
	Unit          *string         `json:"unit" gorm:"type:varchar(20)"`
	City          *string         `json:"city" sql:"type:text"`
	State         *string         `json:"state" sql:"type:text"`
	PostalCode    *string         `json:"postal_code" gorm:"type:varchar(10)"`
	Country       *string         `json:"country" sql:"type:text"`
	// banking details for dividend remittance
	BankName          *string `json:"bank_name" sql:"type:text"`
	BankAccountMasked *string `json:"bank_account_masked" gorm:"type:varchar(20)"`
	// the tax id is stored encrypted only. The plaintext field just
	// carries inbound request values and never persists or serializes.
	TaxID     *string `json:"-" gorm:"-"`
	HashTaxID *[]byte `json:"-" gorm:"type:bytea"`

	Holdings []Holding `json:"-" gorm:"ForeignKey:ShareholderID"`
}

func (sh *Shareholder) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(sh.ID)
	return id
}

func (sh *Shareholder) BeforeCreate(scope *gorm.Scope) error {
	if sh.ID == "" {
		sh.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", sh.ID)
}

// Active shareholders can receive, transfer and vote shares.
// Suspended and exited holders remain on the register for the
// ledger history but cannot take part in new transactions.
func (sh *Shareholder) Active() bool {
	return sh.Status == enum.ShareholderActive
}

// Modifiable returns whether the specified field of the
// shareholder object is modifiable via the API
func (sh *Shareholder) Modifiable(field string) bool {
	switch field {
	case "legal_name", "email", "phone_number",
		"street_address", "unit", "city", "state", "postal_code", "country",
		"bank_name", "bank_account_masked", "tax_id":
		return true
	default:
		return false
	}
}

func (sh *Shareholder) ValidCountry() bool {
	if sh.Country == nil {
		return true
	}

	query := gountries.New()

	if _, err := query.FindCountryByName(strings.ToLower(*sh.Country)); err == nil {
		return true
	}

	_, err := query.FindCountryByAlpha(strings.ToUpper(*sh.Country))
	return err == nil
}

func (sh *Shareholder) FormatAddress() string {
	parts := []string{}

	if len(sh.StreetAddress) > 0 {
		parts = append(parts, strings.Join(sh.StreetAddress, " "))
	}
	for _, p := range []*string{sh.City, sh.State, sh.PostalCode, sh.Country} {
		if p != nil {
			parts = append(parts, *p)
		}
	}

	return strings.Join(parts, ", ")
}
