package models

import (
	"testing"

	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/utils/address"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ShareholderSuite struct {
	suite.Suite
}

func TestShareholderSuite(t *testing.T) {
	suite.Run(t, new(ShareholderSuite))
}

func (s *ShareholderSuite) TestModifiable() {
	sh := models.Shareholder{}

	for _, field := range []string{
		"legal_name", "email", "phone_number", "street_address",
		"city", "postal_code", "country", "bank_name", "tax_id",
	} {
		assert.True(s.T(), sh.Modifiable(field))
	}

	// identity and ledger-derived columns stay immutable
	assert.False(s.T(), sh.Modifiable("id"))
	assert.False(s.T(), sh.Modifiable("status"))
	assert.False(s.T(), sh.Modifiable("entity_type"))
	assert.False(s.T(), sh.Modifiable("created_at"))
}

func (s *ShareholderSuite) TestValidCountry() {
	country := "USA"
	sh := models.Shareholder{Country: &country}
	assert.True(s.T(), sh.ValidCountry())

	country = "japan"
	sh = models.Shareholder{Country: &country}
	assert.True(s.T(), sh.ValidCountry())

	country = "Atlantis"
	sh = models.Shareholder{Country: &country}
	assert.False(s.T(), sh.ValidCountry())

	sh = models.Shareholder{}
	assert.True(s.T(), sh.ValidCountry())
}

func (s *ShareholderSuite) TestFormatAddress() {
	city := "San Mateo"
	state := "CA"
	postal := "94401"

	sh := models.Shareholder{
		StreetAddress: address.Address{"20 N San Mateo Dr", "Suite 10"},
		City:          &city,
		State:         &state,
		PostalCode:    &postal,
	}

	assert.Equal(s.T(),
		"20 N San Mateo Dr Suite 10, San Mateo, CA, 94401",
		sh.FormatAddress())

	assert.Equal(s.T(), "", (&models.Shareholder{}).FormatAddress())
}

func (s *ShareholderSuite) TestActive() {
	sh := models.Shareholder{Status: enum.ShareholderActive}
	assert.True(s.T(), sh.Active())

	sh.Status = enum.ShareholderSuspended
	assert.False(s.T(), sh.Active())

	sh.Status = enum.ShareholderExited
	assert.False(s.T(), sh.Active())
}

func (s *ShareholderSuite) TestLedgerDelta() {
	from := "0b4bd08f-1a66-4b77-a236-9a9b09b2c2cc"
	to := "6d42ae1c-2a7c-4a5e-a087-13d2c3329f19"
	shares := int64(100)
	class := enum.Common

	entry := models.LedgerEntry{
		Kind:         enum.Transfer,
		FromHolderID: &from,
		FromClass:    &class,
		FromShares:   &shares,
		ToHolderID:   &to,
		ToClass:      &class,
		ToShares:     &shares,
	}

	assert.EqualValues(s.T(), -100, entry.Delta(from, enum.Common))
	assert.EqualValues(s.T(), 100, entry.Delta(to, enum.Common))
	assert.EqualValues(s.T(), 0, entry.Delta(from, enum.PreferredA))
	assert.EqualValues(s.T(), 0, entry.Delta("unrelated", enum.Common))
}
