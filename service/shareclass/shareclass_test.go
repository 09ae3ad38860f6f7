package shareclass

import (
	"testing"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/dbtest"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ShareClassTestSuite struct {
	dbtest.Suite
}

func TestShareClassTestSuite(t *testing.T) {
	suite.Run(t, new(ShareClassTestSuite))
}

func (s *ShareClassTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *ShareClassTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *ShareClassTestSuite) TestCreate() {
	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, err := svc.Create(&models.ShareClass{
		Class:           enum.ShareClass("PHANTOM"),
		Name:            "Phantom Stock",
		TotalAuthorized: 1000,
	})
	assert.NotNil(s.T(), err)

	_, err = svc.Create(&models.ShareClass{
		Class: enum.Common,
		Name:  "Common",
	})
	assert.NotNil(s.T(), err)

	_, err = svc.Create(&models.ShareClass{
		Class:           enum.Common,
		Name:            "Common",
		Convertible:     true,
		TotalAuthorized: 1000,
	})
	assert.NotNil(s.T(), err)

	// drop a seeded class so the happy path has room to insert
	require.Nil(s.T(), tx.Where(
		"class = ?", enum.PreferredB).Delete(&models.ShareClass{}).Error)

	ratio := decimal.New(1, 0)

	sc, err := svc.Create(&models.ShareClass{
		Class:           enum.PreferredB,
		Name:            "Series B Preferred",
		VotingWeight:    decimal.New(1, 0),
		Convertible:     true,
		ConversionRatio: &ratio,
		LiquidationPref: decimal.New(2, 0),
		AntiDilution:    enum.AntiDilutionFullRatchet,
		TotalAuthorized: 2500000,
	})
	require.Nil(s.T(), err)
	assert.NotZero(s.T(), sc.ID)

	tx.Rollback()

	// the seeded row makes a straight insert a conflict
	tx = db.Begin()
	defer tx.Rollback()

	_, err = Service().WithTx(tx).Create(&models.ShareClass{
		Class:           enum.Common,
		Name:            "Common Again",
		VotingWeight:    decimal.New(1, 0),
		LiquidationPref: decimal.New(1, 0),
		AntiDilution:    enum.AntiDilutionNone,
		TotalAuthorized: 1,
	})
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), grerrors.Conflict.Code, err.(*grerrors.Error).Code)
}

func (s *ShareClassTestSuite) TestGetAndList() {
	svc := Service().WithTx(db.DB())

	classes, err := svc.List()
	require.Nil(s.T(), err)
	require.Len(s.T(), classes, 5)
	assert.Equal(s.T(), enum.Common, classes[0].Class)

	sc, err := svc.Get(enum.Common)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "Common Stock", sc.Name)
	assert.True(s.T(), sc.VotingWeight.Equal(decimal.New(1, 0)))
	assert.EqualValues(s.T(), 10000000, sc.TotalAuthorized)
	assert.False(s.T(), sc.TransferRestricted)

	sc, err = svc.Get(enum.PreferredA)
	require.Nil(s.T(), err)
	assert.True(s.T(), sc.Convertible)
	require.NotNil(s.T(), sc.ConversionTrigger)
	assert.Equal(s.T(), "qualified_ipo", *sc.ConversionTrigger)
	assert.Equal(s.T(), enum.AntiDilutionWeightedAverage, sc.AntiDilution)

	sc, err = svc.Get(enum.Founder)
	require.Nil(s.T(), err)
	assert.True(s.T(), sc.VotingWeight.Equal(decimal.New(10, 0)))
	assert.True(s.T(), sc.TransferRestricted)

	sc, err = svc.Get(enum.OptionPool)
	require.Nil(s.T(), err)
	assert.True(s.T(), sc.VotingWeight.IsZero())

	_, err = svc.Get(enum.ShareClass("PHANTOM"))
	assert.True(s.T(), grerrors.IsNotFound(err))
}

func (s *ShareClassTestSuite) TestSetAuthorized() {
	tx := db.Begin()
	defer tx.Rollback()

	holder := &models.Shareholder{
		EntityType: enum.Individual,
		LegalName:  "Cap Holder",
		Status:     enum.ShareholderActive,
	}
	require.Nil(s.T(), tx.Create(holder).Error)

	require.Nil(s.T(), tx.Create(&models.Holding{
		ShareholderID:     holder.ID,
		Class:             enum.Common,
		SharesIssued:      100,
		SharesOutstanding: 100,
		AcquiredAt:        clock.Now(),
	}).Error)

	svc := Service().WithTx(tx)

	// the cap can never undercut shares already issued
	_, err := svc.SetAuthorized(enum.Common, 50)
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), grerrors.Forbidden.Code, err.(*grerrors.Error).Code)

	sc, err := svc.SetAuthorized(enum.Common, 20000000)
	require.Nil(s.T(), err)
	assert.EqualValues(s.T(), 20000000, sc.TotalAuthorized)

	sc, err = svc.Get(enum.Common)
	require.Nil(s.T(), err)
	assert.EqualValues(s.T(), 20000000, sc.TotalAuthorized)

	_, err = svc.SetAuthorized(enum.ShareClass("PHANTOM"), 100)
	assert.True(s.T(), grerrors.IsNotFound(err))
}

func (s *ShareClassTestSuite) TestUpdate() {
	tx := db.Begin()
	defer tx.Rollback()

	svc := Service().WithTx(tx)

	sc, err := svc.Update(enum.PreferredA, map[string]interface{}{
		"name":        "Series A-1 Preferred",
		"board_seats": 2,
	})
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "Series A-1 Preferred", sc.Name)
	assert.EqualValues(s.T(), 2, sc.BoardSeats)

	sc, err = svc.Get(enum.PreferredA)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "Series A-1 Preferred", sc.Name)

	// the authorized cap only moves through SetAuthorized
	_, err = svc.Update(enum.PreferredA, map[string]interface{}{
		"total_authorized": 999,
	})
	assert.NotNil(s.T(), err)

	_, err = svc.Update(enum.ShareClass("PHANTOM"), map[string]interface{}{
		"name": "nope",
	})
	assert.True(s.T(), grerrors.IsNotFound(err))
}
