package entities

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/utils/address"
)

type CreateShareholderRequest struct {
	LegalName     string          `json:"legal_name"`
	Email         *string         `json:"email"`
	EntityType    enum.EntityType `json:"entity_type"`
	PhoneNumber   *string         `json:"phone_number"`
	StreetAddress address.Address `json:"street_address"`
	Unit          *string         `json:"unit"`
	City          *string         `json:"city"`
	State         *string         `json:"state"`
	PostalCode    *string         `json:"postal_code"`
	Country       *string         `json:"country"`
	BankName      *string         `json:"bank_name"`
	TaxID         *string         `json:"tax_id"`
}

var phoneMatcher = regexp.MustCompile(`^[0-9\-\+\(\) ]{7,25}$`)

// Verify confirms that all of the required data is supplied
// in the CreateShareholderRequest object
func (r *CreateShareholderRequest) Verify() error {
	if err := validation.Validate(r.LegalName, validation.Required, validation.Length(1, 255)); err != nil {
		return grerrors.InvalidRequestParam.WithMsg("legal_name is required")
	}

	if r.Email != nil {
		if err := validation.Validate(*r.Email, is.Email); err != nil {
			return grerrors.InvalidRequestParam.WithMsg("email format is invalid")
		}
	}

	if r.PhoneNumber != nil {
		if err := validation.Validate(*r.PhoneNumber, validation.Match(phoneMatcher)); err != nil {
			return grerrors.InvalidRequestParam.WithMsg("phone_number format is invalid")
		}
	}

	if !enum.ValidEntityType(r.EntityType) {
		return grerrors.InvalidRequestParam.WithMsg("invalid entity_type")
	}

	return nil
}

func (r *CreateShareholderRequest) Model() *models.Shareholder {
	return &models.Shareholder{
		LegalName:     r.LegalName,
		Email:         r.Email,
		EntityType:    r.EntityType,
		PhoneNumber:   r.PhoneNumber,
		StreetAddress: r.StreetAddress,
		Unit:          r.Unit,
		City:          r.City,
		State:         r.State,
		PostalCode:    r.PostalCode,
		Country:       r.Country,
		BankName:      r.BankName,
		TaxID:         r.TaxID,
	}
}
