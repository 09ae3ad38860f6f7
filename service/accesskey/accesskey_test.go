package accesskey

import (
	"testing"

	"github.com/alpacahq/gopaca/auth"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/dbtest"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/go-redis/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AccessKeyTestSuite struct {
	dbtest.Suite
}

func TestAccessKeyTestSuite(t *testing.T) {
	suite.Run(t, new(AccessKeyTestSuite))
}

func (s *AccessKeyTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *AccessKeyTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *AccessKeyTestSuite) TestCreateAuth() {
	tx := db.Begin()

	admin := &models.Administrator{
		Email: "test+create-auth@example.com",
		Name:  "Registry Admin",
	}
	assert.Nil(s.T(), tx.Create(admin).Error)
	assert.Nil(s.T(), tx.Commit().Error)

	adminID := admin.IDAsUUID()

	tx = db.Begin()
	srv := &accessKeyService{
		cacheVerify: func(id, secret string) (*models.AccessKey, bool, error) {
			return &models.AccessKey{
				ID:      id,
				Secret:  secret,
				Status:  enum.AccessKeyActive,
				AdminID: adminID,
			}, true, nil
		},
		cacheStore: func(info *auth.AuthInfo) error {
			return nil
		},
		cacheDelete: func(id string) error {
			return nil
		},
		tx: tx,
	}

	key, err := srv.Create(adminID)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), key.AdminID, adminID)

	assert.Nil(s.T(), tx.Commit().Error)

	var nkey models.AccessKey
	tx = db.Begin()
	srv = &accessKeyService{
		cacheVerify: func(id, secret string) (*models.AccessKey, bool, error) {
			return nil, false, cache.ErrCacheMiss
		},
		cacheStore: func(info *auth.AuthInfo) error {
			return nil
		},
		cacheDelete: func(id string) error {
			return nil
		},
		tx: tx,
	}

	assert.Nil(s.T(), tx.Where("id = ?", key.ID).Preload("Admin").Find(&nkey).Error)
	assert.Equal(s.T(), nkey.AdminID, adminID)

	// Verify
	vkey, err := srv.Verify(key.ID, key.Secret)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), vkey.AdminID, adminID)
	_, err = srv.Verify(key.ID, "inv")

	assert.NotNil(s.T(), err)
	tx.Commit()
	tx = db.Begin()
	srv = &accessKeyService{
		cacheVerify: func(id, secret string) (*models.AccessKey, bool, error) {
			return nil, false, nil
		},
		cacheStore: func(info *auth.AuthInfo) error {
			return nil
		},
		cacheDelete: func(id string) error {
			return nil
		},
		tx: tx,
	}

	// Sync (some keys)
	assert.Nil(s.T(), srv.Sync())

	// Disable
	dkey, err := srv.Disable(adminID, key.ID)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), dkey.Status, enum.AccessKeyDisabled)
	_, err = srv.Verify(key.ID, key.Secret)
	assert.NotNil(s.T(), err)

	// two live keys are allowed, a third is not
	_, err = srv.Create(adminID)
	assert.Nil(s.T(), err)
	_, err = srv.Create(adminID)
	assert.Nil(s.T(), err)
	_, err = srv.Create(adminID)
	assert.NotNil(s.T(), err)

	tx.Commit()
}
