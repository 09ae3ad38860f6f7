package holding

import (
	"fmt"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/equity"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/service/classcache"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type HoldingService interface {
	Get(shareholderID uuid.UUID, class enum.ShareClass) (*models.Holding, error)
	ForShareholder(shareholderID uuid.UUID) ([]*HoldingView, error)
	ByClass(class enum.ShareClass) ([]models.Holding, error)
	WithTx(tx *gorm.DB) HoldingService
	SetForUpdate()
}

// HoldingView is a holding enriched with the class terms that apply
// to it, so API consumers don't re-join the class table client side.
type HoldingView struct {
	models.Holding
	ClassName   string          `json:"class_name"`
	VotingPower decimal.Decimal `json:"voting_power"`
	Convertible bool            `json:"convertible"`
}

type holdingService struct {
	HoldingService
	tx          *gorm.DB
	classcache  classcache.ClassCache
	queryOption *string
}

func Service(classcache classcache.ClassCache) HoldingService {
	return &holdingService{classcache: classcache}
}

func (s *holdingService) WithTx(tx *gorm.DB) HoldingService {
	s.tx = tx
	return s
}

func (s *holdingService) SetForUpdate() {
	forUpdate := db.ForUpdate
	s.queryOption = &forUpdate
}

func (s *holdingService) Get(shareholderID uuid.UUID, class enum.ShareClass) (*models.Holding, error) {
	holding := &models.Holding{}

	q := s.tx

	if s.queryOption != nil {
		q = q.Set("gorm:query_option", *s.queryOption)
	}

	q = q.Where(
		"shareholder_id = ? AND class = ?",
		shareholderID.String(), class).Find(holding)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(fmt.Sprintf(
			"holding not found for %v in class %v", shareholderID, class))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return holding, nil
}

func (s *holdingService) ForShareholder(shareholderID uuid.UUID) ([]*HoldingView, error) {
	var holdings []*models.Holding

	q := s.tx.Where(
		"shareholder_id = ?", shareholderID.String()).
		Order("class asc").
		Find(&holdings)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	views := make([]*HoldingView, 0, len(holdings))

	for _, h := range holdings {
		view := &HoldingView{Holding: *h}

		if sc := s.classcache.Get(h.Class); sc != nil {
			view.ClassName = sc.Name
			view.Convertible = sc.Convertible
			view.VotingPower = equity.VotingPower(h.SharesOutstanding, sc.VotingWeight)
		}

		views = append(views, view)
	}

	return views, nil
}

func (s *holdingService) ByClass(class enum.ShareClass) ([]models.Holding, error) {
	holdings := []models.Holding{}

	q := s.tx

	if s.queryOption != nil {
		q = q.Set("gorm:query_option", *s.queryOption)
	}

	q = q.Where("class = ?", class).
		Order("shareholder_id asc").
		Find(&holdings)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return holdings, nil
}
