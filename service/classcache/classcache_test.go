package classcache

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
)

type TestSuite struct {
	suite.Suite
}

func TestRunSuite(t *testing.T) {
	loadClasses = loadClassesMock
	suite.Run(t, new(TestSuite))
}

func loadClassesMock() ([]*models.ShareClass, error) {
	one := decimal.New(1, 0)

	return []*models.ShareClass{
		&models.ShareClass{
			ID:              1,
			Class:           enum.Common,
			Name:            "Common Stock",
			VotingWeight:    one,
			LiquidationPref: one,
			TotalAuthorized: 10000000,
		},
		&models.ShareClass{
			ID:              2,
			Class:           enum.PreferredA,
			Name:            "Series A Preferred",
			VotingWeight:    one,
			Convertible:     true,
			ConversionRatio: &one,
			LiquidationPref: one,
			TotalAuthorized: 3000000,
		},
		&models.ShareClass{
			ID:              4,
			Class:           enum.Founder,
			Name:            "Founder Stock",
			VotingWeight:    decimal.New(10, 0),
			LiquidationPref: one,
			TotalAuthorized: 2000000,
		},
	}, nil
}

func (s *TestSuite) TestClassCache() {
	c := GetClassCache()

	var sc *models.ShareClass

	sc = c.Get(enum.Common)
	assert.Equal(s.T(), "Common Stock", sc.Name)

	sc = c.Get(enum.PreferredA)
	assert.True(s.T(), sc.Convertible)

	sc = c.Get(enum.Founder)
	assert.True(s.T(), sc.VotingWeight.Equal(decimal.New(10, 0)))

	sc = c.Get(enum.PreferredB)
	assert.Nil(s.T(), sc)

	classes := c.List()
	assert.Len(s.T(), classes, 3)
	assert.Equal(s.T(), enum.Common, classes[0].Class)
}
