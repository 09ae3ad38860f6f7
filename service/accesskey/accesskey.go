package accesskey

import (
	"bytes"
	"fmt"

	"github.com/alpacahq/gopaca/auth"
	"github.com/alpacahq/gopaca/encryption"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/go-redis/cache"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// AccessKeyService issues and verifies the API keys administrators
// use against the registry. Verification runs on every request, so
// verified keys are cached in redis and invalidated on disable.
type AccessKeyService interface {
	WithCache() AccessKeyService
	WithTx(*gorm.DB) AccessKeyService
	Disable(adminID uuid.UUID, accessKeyID string) (*models.AccessKey, error)
	Verify(accessKeyID, accessKeySecret string) (*models.AccessKey, error)
	Create(adminID uuid.UUID) (*models.AccessKey, error)
	List(adminID uuid.UUID) ([]*models.AccessKey, error)
	Sync() error
}

type accessKeyService struct {
	AccessKeyService
	tx          *gorm.DB
	cache       bool
	cacheVerify func(string, string) (*models.AccessKey, bool, error)
	cacheStore  func(*auth.AuthInfo) error
	cacheDelete func(string) error
}

func Service() AccessKeyService {
	s := &accessKeyService{}

	s.cacheVerify = func(id, secret string) (*models.AccessKey, bool, error) {
		if !s.cache {
			return nil, false, nil
		}

		pl, err := auth.Get(id)
		if err != nil {
			return nil, false, err
		}

		hashed, err := encryption.SaltEncrypt([]byte(secret), pl.Salt)
		if err != nil {
			return nil, false, err
		}

		if bytes.Equal(hashed, pl.HashedSecret) {
			return &models.AccessKey{
				ID:         id,
				Status:     enum.AccessKeyStatus(pl.Status),
				HashSecret: pl.HashedSecret,
				Salt:       string(pl.Salt),
				AdminID:    pl.AccountID,
			}, true, nil
		}

		return nil, false, nil
	}

	s.cacheStore = func(info *auth.AuthInfo) error {
		if !s.cache {
			return nil
		}

		return auth.Set(info)
	}

	s.cacheDelete = func(id string) error {
		if !s.cache {
			return nil
		}

		return auth.Delete(id)
	}

	return s
}

func getKey(tx *gorm.DB, id string) (*models.AccessKey, error) {
	var akey models.AccessKey

	q := tx.
		Where("id = ?", id).
		Preload("Admin").
		First(&akey)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}
	return &akey, nil
}

func (s *accessKeyService) WithCache() AccessKeyService {
	s.cache = true
	return s
}

func (s *accessKeyService) WithTx(tx *gorm.DB) AccessKeyService {
	s.tx = tx
	return s
}

func (s *accessKeyService) Disable(adminID uuid.UUID, accessKeyID string) (*models.AccessKey, error) {
	var aKey models.AccessKey

	q := s.tx.
		Where(
			"id = ? AND admin_id = ?",
			accessKeyID, adminID.String()).
		First(&aKey)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(fmt.Sprintf("key id = %s not found", accessKeyID))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	if aKey.Status != enum.AccessKeyActive {
		return nil, grerrors.InvalidRequestParam.WithMsg(fmt.Sprintf("access key %v is disabled", accessKeyID))
	}

	q = s.tx.Model(&aKey).Update("status", enum.AccessKeyDisabled)

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	// remove from auth cache
	if err := s.cacheDelete(aKey.ID); err != nil && err != cache.ErrCacheMiss {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return &aKey, nil
}

func (s *accessKeyService) Verify(accessKeyID string, accessKeySecret string) (*models.AccessKey, error) {
	// attempt to verify with cached value
	if aKey, verified, err := s.cacheVerify(accessKeyID, accessKeySecret); err == nil && verified {
		return aKey, nil
	}

	aKey, err := getKey(s.tx, accessKeyID)

	if err != nil {
		// For security reason, treat not found error as unauthorized on verification
		if err == grerrors.NotFound {
			return nil, grerrors.Unauthorized.WithMsg("access key not found")
		}
		return nil, err
	}

	if aKey.Status != enum.AccessKeyActive {
		return nil, grerrors.Unauthorized
	}

	if err = aKey.Verify(accessKeySecret); err != nil {
		return nil, err
	}

	if err = s.store(aKey); err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return aKey, nil
}

// Create issues a key pair for an administrator. The plaintext secret
// only exists on the returned struct, the row stores the salted hash.
func (s *accessKeyService) Create(adminID uuid.UUID) (*models.AccessKey, error) {
	admin := &models.Administrator{}

	q := s.tx.Where("id = ?", adminID.String()).Find(admin)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("administrator not found for %v", adminID))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	var keys []models.AccessKey

	if err := s.tx.
		Where("admin_id = ? AND status = ?",
			admin.ID, enum.AccessKeyActive).
		Find(&keys).Error; err != nil {

		return nil, errors.Wrap(err, "failed to load access keys")
	}

	if len(keys) > 1 {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			"currently an administrator can have only 2 access keys")
	}

	key, err := models.NewAccessKey(adminID)
	if err != nil {
		return nil, grerrors.InternalServerError.WithError(
			fmt.Errorf("failed to initialize access key %v", err.Error()))
	}

	if err = s.tx.Create(key).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(
			fmt.Errorf("failed to create access key %v", err.Error()))
	}

	key.Admin = *admin

	if err = s.store(key); err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return key, nil
}

func (s *accessKeyService) List(adminID uuid.UUID) ([]*models.AccessKey, error) {
	var keys []*models.AccessKey

	q := s.tx.
		Where("admin_id = ? AND status = ?",
			adminID.String(),
			enum.AccessKeyActive).
		Find(&keys)

	if q.RecordNotFound() || len(keys) == 0 {
		return make([]*models.AccessKey, 0), nil
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return keys, nil
}

// Sync pushes every active key into the auth cache. Run on boot so a
// cold redis doesn't force a database hit per request.
func (s *accessKeyService) Sync() error {
	var keys []*models.AccessKey

	q := s.tx.
		Where("status = ?", enum.AccessKeyActive).
		Preload("Admin").
		Find(&keys)

	if len(keys) == 0 {
		return nil
	}

	if q.Error != nil {
		return grerrors.InternalServerError.WithError(q.Error)
	}

	for _, key := range keys {
		if err := s.store(key); err != nil {
			return grerrors.InternalServerError.WithError(err)
		}
	}

	return nil
}

// store writes through to the auth cache. The payload's AccountID
// slot carries the administrator id, the cache schema is shared
// infrastructure.
func (s *accessKeyService) store(key *models.AccessKey) error {
	info := &auth.AuthInfo{
		ID: key.ID,
		Payload: auth.Payload{
			AccountID:    key.AdminID,
			Status:       string(key.Status),
			HashedSecret: key.HashSecret,
			Salt:         []byte(key.Salt),
		},
	}

	return s.cacheStore(info)
}
