package shareclass

import (
	"fmt"
	"strings"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/jinzhu/gorm"
)

// ShareClassService manages the share class configuration rows. Reads
// on the hot path go through classcache; whoever commits a mutation is
// responsible for firing the class refresh event afterwards so every
// node reloads.
type ShareClassService interface {
	Create(sc *models.ShareClass) (*models.ShareClass, error)
	Update(class enum.ShareClass, patches map[string]interface{}) (*models.ShareClass, error)
	SetAuthorized(class enum.ShareClass, totalAuthorized int64) (*models.ShareClass, error)
	Get(class enum.ShareClass) (*models.ShareClass, error)
	List() ([]models.ShareClass, error)
	WithTx(tx *gorm.DB) ShareClassService
	SetForUpdate()
}

type shareClassService struct {
	ShareClassService
	tx          *gorm.DB
	queryOption *string
}

func Service() ShareClassService {
	return &shareClassService{}
}

func (s *shareClassService) WithTx(tx *gorm.DB) ShareClassService {
	s.tx = tx
	return s
}

func (s *shareClassService) SetForUpdate() {
	forUpdate := db.ForUpdate
	s.queryOption = &forUpdate
}

func (s *shareClassService) Create(sc *models.ShareClass) (*models.ShareClass, error) {
	if !enum.ValidShareClass(sc.Class) {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("invalid share class %v", sc.Class))
	}

	if sc.TotalAuthorized <= 0 {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			"total_authorized must be positive")
	}

	if sc.Convertible && (sc.ConversionRatio == nil || !sc.ConversionRatio.IsPositive()) {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			"convertible class requires a positive conversion_ratio")
	}

	if err := s.tx.Create(sc).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			return nil, grerrors.Conflict.WithMsg(
				fmt.Sprintf("share class %v already configured", sc.Class))
		}
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return sc, nil
}

func (s *shareClassService) Update(class enum.ShareClass, patches map[string]interface{}) (*models.ShareClass, error) {
	sc, err := s.Get(class)
	if err != nil {
		return nil, err
	}

	for field := range patches {
		switch field {
		case "name", "voting_weight", "convertible", "conversion_ratio",
			"conversion_trigger", "liquidation_pref", "dividend_rate",
			"anti_dilution", "board_seats", "transfer_restricted":
		default:
			return nil, grerrors.InvalidRequestParam.WithMsg(
				fmt.Sprintf("field %v not found", field))
		}
	}

	if err := s.tx.Model(sc).Updates(patches).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return sc, nil
}

// SetAuthorized raises or lowers the authorized cap for a class. The
// cap can never drop below the shares already issued for the class.
func (s *shareClassService) SetAuthorized(class enum.ShareClass, totalAuthorized int64) (*models.ShareClass, error) {
	sc, err := s.Get(class)
	if err != nil {
		return nil, err
	}

	var issued int64

	q := s.tx.
		Model(&models.Holding{}).
		Where("class = ?", class).
		Select("coalesce(sum(shares_issued), 0)").
		Row()

	if err := q.Scan(&issued); err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	if totalAuthorized < issued {
		return nil, grerrors.Forbidden.WithMsg(fmt.Sprintf(
			"authorized cap %v below %v shares already issued for %v",
			totalAuthorized, issued, class))
	}

	if err := s.tx.Model(sc).Update("total_authorized", totalAuthorized).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return sc, nil
}

func (s *shareClassService) Get(class enum.ShareClass) (*models.ShareClass, error) {
	sc := &models.ShareClass{}

	q := s.tx

	if s.queryOption != nil {
		q = q.Set("gorm:query_option", *s.queryOption)
	}

	q = q.Where("class = ?", class).Find(sc)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("share class not found for %v", class))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return sc, nil
}

func (s *shareClassService) List() ([]models.ShareClass, error) {
	classes := []models.ShareClass{}

	if err := s.tx.Order("id asc").Find(&classes).Error; err != nil &&
		err != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return classes, nil
}
