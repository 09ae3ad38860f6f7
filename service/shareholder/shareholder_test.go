package shareholder

import (
	"fmt"
	"testing"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/encryption"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/goregistry/dbtest"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ShareholderTestSuite struct {
	dbtest.Suite
}

func TestShareholderTestSuite(t *testing.T) {
	suite.Run(t, new(ShareholderTestSuite))
}

func (s *ShareholderTestSuite) SetupSuite() {
	env.RegisterDefault("REGISTRY_SECRET", "Qx3vKbqUwp0zYR7sLaD8gTneImN5cAfH")

	s.SetupDB()
}

func (s *ShareholderTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func strp(v string) *string {
	return &v
}

func (s *ShareholderTestSuite) TestCreate() {
	tx := db.Begin()
	svc := Service().WithTx(tx)

	sh, err := svc.Create(&models.Shareholder{
		EntityType: enum.Individual,
		LegalName:  "Dana Whitfield",
		Email:      strp("dana@test.db"),
		Country:    strp("US"),
	})
	require.Nil(s.T(), err)

	// status defaults to active
	assert.Equal(s.T(), enum.ShareholderActive, sh.Status)
	assert.NotEmpty(s.T(), sh.ID)

	loaded, err := svc.GetByID(sh.IDAsUUID())
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "Dana Whitfield", loaded.LegalName)

	loaded, err = svc.GetByEmail("dana@test.db")
	require.Nil(s.T(), err)
	assert.Equal(s.T(), sh.ID, loaded.ID)

	_, err = svc.Create(&models.Shareholder{
		EntityType: enum.EntityType("charity"),
		LegalName:  "Bad Entity",
	})
	assert.NotNil(s.T(), err)

	_, err = svc.Create(&models.Shareholder{EntityType: enum.Individual})
	assert.NotNil(s.T(), err)

	_, err = svc.Create(&models.Shareholder{
		EntityType: enum.Corporation,
		LegalName:  "Nowhere Holdings",
		Country:    strp("Atlantis"),
	})
	assert.NotNil(s.T(), err)

	require.Nil(s.T(), tx.Commit().Error)

	// the unique index on email turns into a conflict
	tx = db.Begin()
	defer tx.Rollback()

	_, err = Service().WithTx(tx).Create(&models.Shareholder{
		EntityType: enum.Individual,
		LegalName:  "Dana Duplicate",
		Email:      strp("dana@test.db"),
	})
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), grerrors.Conflict.Code, err.(*grerrors.Error).Code)
}

func (s *ShareholderTestSuite) TestPatch() {
	tx := db.Begin()
	svc := Service().WithTx(tx)

	sh, err := svc.Create(&models.Shareholder{
		EntityType: enum.Individual,
		LegalName:  "Patch Target",
		Email:      strp("patch@test.db"),
	})
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	id := sh.IDAsUUID()

	tx = db.Begin()
	svc = Service().WithTx(tx)

	patched, err := svc.Patch(id, map[string]interface{}{
		"phone_number": "555-0101",
		"city":         "Austin",
	})
	require.Nil(s.T(), err)
	require.NotNil(s.T(), patched.PhoneNumber)
	assert.Equal(s.T(), "555-0101", *patched.PhoneNumber)

	_, err = svc.Patch(id, map[string]interface{}{
		"bank_name":           "First Registry Bank",
		"bank_account_masked": "****1234",
	})
	require.Nil(s.T(), err)

	// status is not reachable through patching
	_, err = svc.Patch(id, map[string]interface{}{"status": "EXITED"})
	assert.NotNil(s.T(), err)

	require.Nil(s.T(), tx.Commit().Error)

	// a patch to an unknown country fails and must be rolled back
	tx = db.Begin()
	_, err = Service().WithTx(tx).Patch(id, map[string]interface{}{"country": "Atlantis"})
	assert.NotNil(s.T(), err)
	tx.Rollback()

	loaded, err := Service().WithTx(db.DB()).GetByID(id)
	require.Nil(s.T(), err)
	assert.Nil(s.T(), loaded.Country)
	require.NotNil(s.T(), loaded.BankName)
	assert.Equal(s.T(), "First Registry Bank", *loaded.BankName)
}

func (s *ShareholderTestSuite) TestTaxIDEncryption() {
	tx := db.Begin()
	svc := Service().WithTx(tx)

	sh, err := svc.Create(&models.Shareholder{
		EntityType: enum.Individual,
		LegalName:  "Tax Holder",
		Email:      strp("tax@test.db"),
		TaxID:      strp("600-00-0001"),
	})
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	id := sh.IDAsUUID()

	// only the ciphertext reaches the row
	loaded, err := Service().WithTx(db.DB()).GetByID(id)
	require.Nil(s.T(), err)
	assert.Nil(s.T(), loaded.TaxID)
	require.NotNil(s.T(), loaded.HashTaxID)

	tin, err := encryption.DecryptWithkey(
		*loaded.HashTaxID, []byte(env.GetVar("REGISTRY_SECRET")))
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "600-00-0001", string(tin))

	tx = db.Begin()
	_, err = Service().WithTx(tx).Patch(id, map[string]interface{}{
		"tax_id": "600-00-0002",
	})
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	loaded, err = Service().WithTx(db.DB()).GetByID(id)
	require.Nil(s.T(), err)
	require.NotNil(s.T(), loaded.HashTaxID)

	tin, err = encryption.DecryptWithkey(
		*loaded.HashTaxID, []byte(env.GetVar("REGISTRY_SECRET")))
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "600-00-0002", string(tin))

	// patching to null clears the stored hash
	tx = db.Begin()
	_, err = Service().WithTx(tx).Patch(id, map[string]interface{}{
		"tax_id": nil,
	})
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	loaded, err = Service().WithTx(db.DB()).GetByID(id)
	require.Nil(s.T(), err)
	assert.Nil(s.T(), loaded.HashTaxID)
}

func (s *ShareholderTestSuite) TestSetStatus() {
	tx := db.Begin()
	svc := Service().WithTx(tx)

	sh, err := svc.Create(&models.Shareholder{
		EntityType: enum.Individual,
		LegalName:  "Status Target",
		Email:      strp("status@test.db"),
	})
	require.Nil(s.T(), err)

	require.Nil(s.T(), tx.Create(&models.Holding{
		ShareholderID:     sh.ID,
		Class:             enum.Common,
		SharesIssued:      100,
		SharesOutstanding: 100,
		AcquiredAt:        clock.Now(),
	}).Error)
	require.Nil(s.T(), tx.Commit().Error)

	id := sh.IDAsUUID()

	tx = db.Begin()
	svc = Service().WithTx(tx)

	_, err = svc.SetStatus(id, enum.ShareholderStatus("RETIRED"))
	assert.NotNil(s.T(), err)

	updated, err := svc.SetStatus(id, enum.ShareholderSuspended)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ShareholderSuspended, updated.Status)

	// an exit with shares still outstanding is refused
	_, err = svc.SetStatus(id, enum.ShareholderExited)
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), grerrors.Forbidden.Code, err.(*grerrors.Error).Code)

	require.Nil(s.T(), tx.Model(&models.Holding{}).
		Where("shareholder_id = ?", sh.ID).
		Update("shares_outstanding", 0).Error)

	updated, err = svc.SetStatus(id, enum.ShareholderExited)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ShareholderExited, updated.Status)

	require.Nil(s.T(), tx.Commit().Error)
}

func (s *ShareholderTestSuite) TestList() {
	tx := db.Begin()
	svc := Service().WithTx(tx)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(&models.Shareholder{
			EntityType: enum.Fund,
			LegalName:  fmt.Sprintf("Listed Fund %v", i),
			Email:      strp(fmt.Sprintf("fund-%v@test.db", i)),
		})
		require.Nil(s.T(), err)
	}

	require.Nil(s.T(), tx.Commit().Error)

	svc = Service().WithTx(db.DB())

	holders, meta, err := svc.List(ShareholderQuery{
		EntityType: []enum.EntityType{enum.Fund},
	})
	require.Nil(s.T(), err)
	assert.EqualValues(s.T(), 3, meta.TotalCount)
	assert.Len(s.T(), holders, 3)

	// pagination still reports the unpaged total
	holders, meta, err = svc.List(ShareholderQuery{
		EntityType: []enum.EntityType{enum.Fund},
		Page:       2,
		Per:        2,
	})
	require.Nil(s.T(), err)
	assert.EqualValues(s.T(), 3, meta.TotalCount)
	assert.Len(s.T(), holders, 1)

	holders, _, err = svc.List(ShareholderQuery{
		Status:     []enum.ShareholderStatus{enum.ShareholderActive},
		EntityType: []enum.EntityType{enum.Fund},
	})
	require.Nil(s.T(), err)
	assert.Len(s.T(), holders, 3)
}

func (s *ShareholderTestSuite) TestSnapshot() {
	original := &models.Shareholder{
		EntityType: enum.Individual,
		LegalName:  "Copy Source",
		Email:      strp("copy@test.db"),
	}

	cp := Snapshot(original)
	cp.LegalName = "Mutated Copy"

	assert.Equal(s.T(), "Copy Source", original.LegalName)
	assert.Equal(s.T(), "Mutated Copy", cp.LegalName)
}
