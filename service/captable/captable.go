package captable

import (
	"encoding/json"
	"fmt"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/goregistry/equity"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/service/classcache"
	"github.com/alpacahq/goregistry/service/policy"
	"github.com/alpacahq/goregistry/utils/txlevel"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// CapTableService aggregates current holdings into the ownership
// projection. Every call recomputes from the holdings table, nothing
// here is cached incrementally, so the projection cannot drift from
// the ledger.
type CapTableService interface {
	GetCapTable() (*models.CapTable, error)
	PolicyContext() (*policy.Context, error)
	GenerateSnapshot(notes *string, actor string) (*models.CapTableSnapshot, error)
	Snapshots(limit int) ([]models.CapTableSnapshot, error)
	GetSnapshot(id uuid.UUID) (*models.CapTableSnapshot, error)
	WithTx(tx *gorm.DB) CapTableService
}

type capTableService struct {
	CapTableService
	tx         *gorm.DB
	classcache classcache.ClassCache
}

func Service(classcache classcache.ClassCache) CapTableService {
	return &capTableService{classcache: classcache}
}

func (s *capTableService) WithTx(tx *gorm.DB) CapTableService {
	s.tx = tx
	return s
}

type classRow struct {
	Class             enum.ShareClass
	SharesIssued      int64
	SharesOutstanding int64
	SharesReserved    int64
	HolderCount       uint
}

type holderRow struct {
	ShareholderID     string
	LegalName         string
	Class             enum.ShareClass
	SharesOutstanding int64
}

func (s *capTableService) GetCapTable() (*models.CapTable, error) {
	table := &models.CapTable{
		AsOf:    clock.Now(),
		Classes: []models.CapTableClass{},
		Holders: []models.CapTableHolder{},
	}

	classRows := []classRow{}

	q := s.tx.
		Model(&models.Holding{}).
		Select(`class,
			sum(shares_issued) as shares_issued,
			sum(shares_outstanding) as shares_outstanding,
			sum(shares_reserved) as shares_reserved,
			count(distinct shareholder_id) as holder_count`).
		Group("class").
		Order("class asc").
		Scan(&classRows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	for _, row := range classRows {
		cls := models.CapTableClass{
			Class:             string(row.Class),
			SharesIssued:      row.SharesIssued,
			SharesOutstanding: row.SharesOutstanding,
			SharesReserved:    row.SharesReserved,
			HolderCount:       row.HolderCount,
		}

		if sc := s.classcache.Get(row.Class); sc != nil {
			cls.TotalAuthorized = sc.TotalAuthorized
		}

		table.Classes = append(table.Classes, cls)
		table.TotalIssued += row.SharesIssued
		table.TotalOutstanding += row.SharesOutstanding
	}

	holderRows := []holderRow{}

	q = s.tx.
		Table("holdings").
		Select(`holdings.shareholder_id,
			shareholders.legal_name,
			holdings.class,
			holdings.shares_outstanding`).
		Joins("JOIN shareholders ON shareholders.id = holdings.shareholder_id").
		Order("holdings.shareholder_id asc, holdings.class asc").
		Scan(&holderRows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	byHolder := map[string]*models.CapTableHolder{}
	order := []string{}

	for _, row := range holderRows {
		holder, ok := byHolder[row.ShareholderID]
		if !ok {
			holder = &models.CapTableHolder{
				ShareholderID: row.ShareholderID,
				LegalName:     row.LegalName,
				ByClass:       map[string]int64{},
			}
			byHolder[row.ShareholderID] = holder
			order = append(order, row.ShareholderID)
		}

		holder.SharesOutstanding += row.SharesOutstanding
		holder.ByClass[string(row.Class)] += row.SharesOutstanding

		weight := decimal.New(1, 0)
		if sc := s.classcache.Get(row.Class); sc != nil {
			weight = sc.VotingWeight
		}

		holder.VotingPower = holder.VotingPower.Add(
			equity.VotingPower(row.SharesOutstanding, weight))
	}

	totalVotes := decimal.Zero
	for _, id := range order {
		totalVotes = totalVotes.Add(byHolder[id].VotingPower)
	}

	for _, id := range order {
		holder := byHolder[id]

		holder.OwnershipPct = equity.PercentageOf(
			holder.SharesOutstanding, table.TotalOutstanding)

		if totalVotes.IsPositive() {
			holder.VotingPct = holder.VotingPower.
				Div(totalVotes).
				Mul(decimal.New(100, 0)).
				Round(2)
		}

		table.Holders = append(table.Holders, *holder)
	}

	return table, nil
}

// PolicyContext reduces the current register into the aggregate counts
// the policy engine evaluates against.
func (s *capTableService) PolicyContext() (*policy.Context, error) {
	ctx := &policy.Context{
		OutstandingByClass: map[enum.ShareClass]int64{},
		AuthorizedByClass:  map[enum.ShareClass]int64{},
		HolderOutstanding:  map[string]int64{},
		RestrictedClasses:  map[enum.ShareClass]bool{},
	}

	classRows := []classRow{}

	q := s.tx.
		Model(&models.Holding{}).
		Select("class, sum(shares_outstanding) as shares_outstanding").
		Group("class").
		Scan(&classRows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	for _, row := range classRows {
		ctx.OutstandingByClass[row.Class] = row.SharesOutstanding
		ctx.TotalOutstanding += row.SharesOutstanding
	}

	holderRows := []holderRow{}

	q = s.tx.
		Model(&models.Holding{}).
		Select("shareholder_id, sum(shares_outstanding) as shares_outstanding").
		Group("shareholder_id").
		Scan(&holderRows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	for _, row := range holderRows {
		ctx.HolderOutstanding[row.ShareholderID] = row.SharesOutstanding
	}

	for _, sc := range s.classcache.List() {
		ctx.AuthorizedByClass[sc.Class] = sc.TotalAuthorized
		if sc.TransferRestricted {
			ctx.RestrictedClasses[sc.Class] = true
		}
	}

	return ctx, nil
}

// GenerateSnapshot freezes the current projection. The caller must
// already be in a repeatable read transaction so the aggregation and
// the persisted payload see one consistent register.
func (s *capTableService) GenerateSnapshot(notes *string, actor string) (*models.CapTableSnapshot, error) {
	ok, err := txlevel.Repeatable(s.tx)
	if err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}
	if !ok {
		return nil, grerrors.InternalServerError.WithMsg("requires repeatable read tx")
	}

	table, err := s.GetCapTable()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(table)
	if err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	snapshot := &models.CapTableSnapshot{
		TakenAt:          table.AsOf,
		Notes:            notes,
		Actor:            actor,
		TotalIssued:      table.TotalIssued,
		TotalOutstanding: table.TotalOutstanding,
		HolderCount:      uint(len(table.Holders)),
		Payload:          payload,
	}

	if err := s.tx.Create(snapshot).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return snapshot, nil
}

func (s *capTableService) Snapshots(limit int) ([]models.CapTableSnapshot, error) {
	snapshots := []models.CapTableSnapshot{}

	q := s.tx.Order("taken_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&snapshots).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return snapshots, nil
}

func (s *capTableService) GetSnapshot(id uuid.UUID) (*models.CapTableSnapshot, error) {
	snapshot := &models.CapTableSnapshot{}

	q := s.tx.Where("id = ?", id.String()).Find(snapshot)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("snapshot not found for %v", id))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return snapshot, nil
}
