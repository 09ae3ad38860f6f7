package models

import (
	"testing"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/dbtest"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RegisterSuite struct {
	dbtest.Suite
	holder *models.Shareholder
}

func TestRegisterSuite(t *testing.T) {
	suite.Run(t, new(RegisterSuite))
}

func (s *RegisterSuite) SetupSuite() {
	s.SetupDB()

	email := "holder@test.db"
	s.holder = &models.Shareholder{
		Status:     enum.ShareholderActive,
		EntityType: enum.Individual,
		LegalName:  "Test Holder",
		Email:      &email,
		Holdings: []models.Holding{
			{
				Class:             enum.Common,
				SharesIssued:      1000,
				SharesOutstanding: 1000,
				AcquiredAt:        clock.Now(),
			},
		},
	}
	if err := db.DB().Create(s.holder).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
}

func (s *RegisterSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *RegisterSuite) TestGeneratedIDs() {
	assert.NotEmpty(s.T(), s.holder.ID)
	assert.NotEqual(s.T(), s.holder.IDAsUUID().String(), "00000000-0000-0000-0000-000000000000")

	holding := models.Holding{}
	if err := db.DB().Where("shareholder_id = ?", s.holder.ID).First(&holding).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
	assert.NotEmpty(s.T(), holding.ID)
	assert.EqualValues(s.T(), 1000, holding.SharesOutstanding)
}

func (s *RegisterSuite) TestHoldingUniquePerClass() {
	dup := models.Holding{
		ShareholderID: s.holder.ID,
		Class:         enum.Common,
		AcquiredAt:    clock.Now(),
	}
	assert.NotNil(s.T(), db.DB().Create(&dup).Error)

	other := models.Holding{
		ShareholderID: s.holder.ID,
		Class:         enum.PreferredA,
		AcquiredAt:    clock.Now(),
	}
	assert.Nil(s.T(), db.DB().Create(&other).Error)
}

func (s *RegisterSuite) TestSequenceOrdering() {
	shares := int64(10)
	class := enum.Common

	first := models.LedgerEntry{
		Kind:         enum.Issuance,
		ToHolderID:   &s.holder.ID,
		ToClass:      &class,
		ToShares:     &shares,
		Actor:        "test",
		TransactedAt: clock.Now(),
	}
	second := models.LedgerEntry{
		Kind:         enum.Issuance,
		ToHolderID:   &s.holder.ID,
		ToClass:      &class,
		ToShares:     &shares,
		Actor:        "test",
		TransactedAt: clock.Now(),
	}

	if err := db.DB().Create(&first).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
	if err := db.DB().Create(&second).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}

	assert.True(s.T(), second.Sequence > first.Sequence)
}
