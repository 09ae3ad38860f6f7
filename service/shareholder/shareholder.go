package shareholder

import (
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/encryption"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/copier"
	"github.com/jinzhu/gorm"
)

// ShareholderService manages the register of record holders. Every
// holder row is append-only in spirit - exits are status flips, never
// deletes, so the ledger history keeps resolving to a real entity.
type ShareholderService interface {
	Create(sh *models.Shareholder) (*models.Shareholder, error)
	Patch(id uuid.UUID, patches map[string]interface{}) (*models.Shareholder, error)
	SetStatus(id uuid.UUID, status enum.ShareholderStatus) (*models.Shareholder, error)
	GetByID(id uuid.UUID) (*models.Shareholder, error)
	GetByEmail(email string) (*models.Shareholder, error)
	List(query ShareholderQuery) ([]models.Shareholder, *PaginationMeta, error)
	WithTx(tx *gorm.DB) ShareholderService
	SetForUpdate()
}

type ShareholderQuery struct {
	Status     []enum.ShareholderStatus
	EntityType []enum.EntityType
	Page       int
	Per        int
}

type PaginationMeta struct {
	TotalCount int64 `json:"total_count"`
}

type shareholderService struct {
	ShareholderService
	tx          *gorm.DB
	queryOption *string
}

func Service() ShareholderService {
	return &shareholderService{}
}

func (s *shareholderService) WithTx(tx *gorm.DB) ShareholderService {
	s.tx = tx
	return s
}

func (s *shareholderService) SetForUpdate() {
	forUpdate := db.ForUpdate
	s.queryOption = &forUpdate
}

func (s *shareholderService) Create(sh *models.Shareholder) (*models.Shareholder, error) {
	if !enum.ValidEntityType(sh.EntityType) {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("invalid entity type %v", sh.EntityType))
	}

	if sh.LegalName == "" {
		return nil, grerrors.InvalidRequestParam.WithMsg("legal_name is required")
	}

	if !sh.ValidCountry() {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("invalid country %v", *sh.Country))
	}

	if sh.Status == "" {
		sh.Status = enum.ShareholderActive
	}

	if sh.TaxID != nil {
		hash, err := encryption.EncryptWithKey(
			[]byte(*sh.TaxID), []byte(env.GetVar("REGISTRY_SECRET")))
		if err != nil {
			return nil, grerrors.InternalServerError.WithError(err)
		}
		sh.HashTaxID = &hash
	}

	if err := s.tx.Create(sh).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			return nil, grerrors.Conflict.WithMsg("duplicate email")
		}
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return sh, nil
}

func (s *shareholderService) Patch(id uuid.UUID, patches map[string]interface{}) (*models.Shareholder, error) {
	sh, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	for field, value := range patches {
		if !sh.Modifiable(field) {
			return nil, grerrors.InvalidRequestParam.WithMsg(
				fmt.Sprintf("field %v not found", field))
		}

		// tax ids never hit the row in plaintext
		if field == "tax_id" {
			if value != nil {
				hash, err := encryption.EncryptWithKey(
					[]byte(value.(string)), []byte(env.GetVar("REGISTRY_SECRET")))
				if err != nil {
					return nil, grerrors.InternalServerError.WithError(err)
				}
				if err = s.tx.Model(sh).Update("hash_tax_id", hash).Error; err != nil {
					return nil, grerrors.InternalServerError.WithError(err)
				}
			} else {
				if err = s.tx.Model(sh).Update("hash_tax_id", nil).Error; err != nil {
					return nil, grerrors.InternalServerError.WithError(err)
				}
			}
			continue
		}

		if err = s.tx.Model(sh).Update(field, value).Error; err != nil {
			return nil, grerrors.InternalServerError.WithError(err)
		}
	}

	if !sh.ValidCountry() {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("invalid country %v", *sh.Country))
	}

	return sh, nil
}

// SetStatus moves a holder between ACTIVE, SUSPENDED and EXITED. A
// holder still carrying outstanding shares cannot be exited.
func (s *shareholderService) SetStatus(id uuid.UUID, status enum.ShareholderStatus) (*models.Shareholder, error) {
	switch status {
	case enum.ShareholderActive, enum.ShareholderSuspended, enum.ShareholderExited:
	default:
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("invalid shareholder status %v", status))
	}

	sh, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if status == enum.ShareholderExited {
		var outstanding int64

		q := s.tx.
			Model(&models.Holding{}).
			Where("shareholder_id = ?", id.String()).
			Select("coalesce(sum(shares_outstanding), 0)").
			Row()

		if err := q.Scan(&outstanding); err != nil {
			return nil, grerrors.InternalServerError.WithError(err)
		}

		if outstanding > 0 {
			return nil, grerrors.Forbidden.WithMsg(fmt.Sprintf(
				"shareholder %v still holds %v outstanding shares", id, outstanding))
		}
	}

	now := time.Now()

	if err := s.tx.Model(sh).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return sh, nil
}

func (s *shareholderService) GetByID(id uuid.UUID) (*models.Shareholder, error) {
	sh := &models.Shareholder{}

	q := s.tx

	if s.queryOption != nil {
		q = q.Set("gorm:query_option", *s.queryOption)
	}

	q = q.Where("id = ?", id.String()).Find(sh)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("shareholder not found for %v", id))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return sh, nil
}

func (s *shareholderService) GetByEmail(email string) (*models.Shareholder, error) {
	sh := &models.Shareholder{}

	q := s.tx

	if s.queryOption != nil {
		q = q.Set("gorm:query_option", *s.queryOption)
	}

	q = q.Where("email = ?", email).Find(sh)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("shareholder not found for %v", email))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return sh, nil
}

func (s *shareholderService) List(query ShareholderQuery) ([]models.Shareholder, *PaginationMeta, error) {
	holders := []models.Shareholder{}

	q := s.tx

	if query.Status != nil {
		q = q.Where("status IN (?)", query.Status)
	}

	if query.EntityType != nil {
		q = q.Where("entity_type IN (?)", query.EntityType)
	}

	meta := PaginationMeta{}

	if err := q.Model(&models.Shareholder{}).Count(&meta.TotalCount).Error; err != nil {
		return nil, nil, grerrors.InternalServerError.WithError(err)
	}

	if query.Per > 0 {
		offset := (query.Page - 1) * query.Per
		if offset < 0 {
			offset = 0
		}
		q = q.Limit(query.Per).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&holders).Error; err != nil &&
		err != gorm.ErrRecordNotFound {
		return nil, nil, grerrors.InternalServerError.WithError(err)
	}

	return holders, &meta, nil
}

// Snapshot returns a detached copy so callers can diff before/after
// around a patch without a second query.
func Snapshot(sh *models.Shareholder) *models.Shareholder {
	cp := &models.Shareholder{}
	copier.Copy(cp, sh)
	return cp
}
