package ledger

import (
	"testing"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/dbtest"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LedgerTestSuite struct {
	dbtest.Suite
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *LedgerTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *LedgerTestSuite) seedHolder(name, email string) uuid.UUID {
	tx := db.Begin()

	holder := &models.Shareholder{
		Status:     enum.ShareholderActive,
		EntityType: enum.Individual,
		LegalName:  name,
		Email:      &email,
	}

	require.Nil(s.T(), tx.Create(holder).Error)
	require.Nil(s.T(), tx.Commit().Error)

	return holder.IDAsUUID()
}

func (s *LedgerTestSuite) replay(tx *gorm.DB, holder uuid.UUID, class enum.ShareClass) int64 {
	n, err := Service().WithTx(tx).ReplayOutstanding(holder, class)
	require.Nil(s.T(), err)
	return n
}

func (s *LedgerTestSuite) loadHolding(holder uuid.UUID, class enum.ShareClass) *models.Holding {
	holding := &models.Holding{}
	require.Nil(s.T(), db.DB().
		Where("shareholder_id = ? AND class = ?", holder.String(), class).
		Find(holding).Error)
	return holding
}

func (s *LedgerTestSuite) TestIssueShares() {
	holder := s.seedHolder("Issue Holder", "issue@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	holding, entry, err := svc.IssueShares(
		holder, enum.Common, 1000, decimal.New(25, -1), "admin")
	require.Nil(s.T(), err)

	assert.EqualValues(s.T(), 1000, holding.SharesIssued)
	assert.EqualValues(s.T(), 1000, holding.SharesOutstanding)
	assert.True(s.T(), holding.ConsiderationPaid.Equal(decimal.New(2500, 0)))

	assert.Equal(s.T(), enum.Issuance, entry.Kind)
	assert.Nil(s.T(), entry.FromHolderID)
	require.NotNil(s.T(), entry.ToHolderID)
	assert.Equal(s.T(), holder.String(), *entry.ToHolderID)
	assert.EqualValues(s.T(), 1000, *entry.ToShares)
	assert.True(s.T(), entry.TotalConsideration.Equal(decimal.New(2500, 0)))

	// issuing again accumulates on the same holding
	holding, _, err = svc.IssueShares(
		holder, enum.Common, 500, decimal.New(4, 0), "admin")
	require.Nil(s.T(), err)

	assert.EqualValues(s.T(), 1500, holding.SharesIssued)
	assert.True(s.T(), holding.ConsiderationPaid.Equal(decimal.New(4500, 0)))

	assert.EqualValues(s.T(), 1500, s.replay(tx, holder, enum.Common))

	require.Nil(s.T(), tx.Commit().Error)
}

func (s *LedgerTestSuite) TestIssueSharesRejections() {
	holder := s.seedHolder("Issue Reject Holder", "issue-reject@test.db")

	tx := db.Begin()
	defer tx.Rollback()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(
		holder, enum.Common, -1, decimal.New(1, 0), "admin")
	assert.NotNil(s.T(), err)

	_, _, err = svc.IssueShares(
		holder, enum.Common, 100, decimal.New(-1, 0), "admin")
	assert.NotNil(s.T(), err)

	_, _, err = svc.IssueShares(
		uuid.Must(uuid.NewV4()), enum.Common, 100, decimal.New(1, 0), "admin")
	require.NotNil(s.T(), err)
	assert.True(s.T(), grerrors.IsNotFound(err))
}

func (s *LedgerTestSuite) TestBonusIssue() {
	holder := s.seedHolder("Bonus Holder", "bonus@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	holding, entry, err := svc.BonusIssue(holder, enum.Common, 250, "admin")
	require.Nil(s.T(), err)

	assert.Equal(s.T(), enum.Bonus, entry.Kind)
	assert.Nil(s.T(), entry.PricePerShare)
	assert.Nil(s.T(), entry.TotalConsideration)

	// no consideration changes hands
	assert.EqualValues(s.T(), 250, holding.SharesOutstanding)
	assert.True(s.T(), holding.ConsiderationPaid.Equal(decimal.Zero))

	require.Nil(s.T(), tx.Commit().Error)
}

func (s *LedgerTestSuite) TestTransferShares() {
	src := s.seedHolder("Transfer Source", "transfer-src@test.db")
	dst := s.seedHolder("Transfer Destination", "transfer-dst@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(src, enum.Common, 1000, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	entry, err := svc.TransferShares(src, dst, enum.Common, 400, decimal.New(3, 0), "admin")
	require.Nil(s.T(), err)

	assert.Equal(s.T(), enum.Transfer, entry.Kind)
	assert.Equal(s.T(), src.String(), *entry.FromHolderID)
	assert.Equal(s.T(), dst.String(), *entry.ToHolderID)
	assert.EqualValues(s.T(), 400, *entry.FromShares)
	assert.EqualValues(s.T(), 400, *entry.ToShares)
	assert.True(s.T(), entry.TotalConsideration.Equal(decimal.New(1200, 0)))

	require.Nil(s.T(), tx.Commit().Error)

	srcHolding := s.loadHolding(src, enum.Common)
	assert.EqualValues(s.T(), 1000, srcHolding.SharesIssued)
	assert.EqualValues(s.T(), 600, srcHolding.SharesOutstanding)

	dstHolding := s.loadHolding(dst, enum.Common)
	assert.EqualValues(s.T(), 400, dstHolding.SharesOutstanding)

	// replay of both sides conserves the issued total
	assert.EqualValues(s.T(), 600, s.replay(db.DB(), src, enum.Common))
	assert.EqualValues(s.T(), 400, s.replay(db.DB(), dst, enum.Common))
}

func (s *LedgerTestSuite) TestTransferSharesRejections() {
	src := s.seedHolder("Transfer Reject Source", "transfer-reject-src@test.db")
	dst := s.seedHolder("Transfer Reject Destination", "transfer-reject-dst@test.db")

	tx := db.Begin()
	defer tx.Rollback()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(src, enum.Common, 100, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	_, err = svc.TransferShares(src, dst, enum.Common, 101, decimal.New(1, 0), "admin")
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), grerrors.InsufficientShares.Code, err.(*grerrors.Error).Code)

	_, err = svc.TransferShares(src, src, enum.Common, 10, decimal.New(1, 0), "admin")
	assert.NotNil(s.T(), err)

	_, err = svc.TransferShares(
		src, uuid.Must(uuid.NewV4()), enum.Common, 10, decimal.New(1, 0), "admin")
	require.NotNil(s.T(), err)
	assert.True(s.T(), grerrors.IsNotFound(err))
}

func (s *LedgerTestSuite) TestConvertShares() {
	holder := s.seedHolder("Convert Holder", "convert@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(holder, enum.PreferredA, 900, decimal.New(10, 0), "admin")
	require.Nil(s.T(), err)

	// 101 shares at 1.5 is 151.5 shares - never allowed
	_, err = svc.ConvertShares(
		holder, enum.PreferredA, enum.Common, 101, decimal.New(15, -1), "admin")
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), grerrors.InvariantViolation.Code, err.(*grerrors.Error).Code)

	entry, err := svc.ConvertShares(
		holder, enum.PreferredA, enum.Common, 100, decimal.New(15, -1), "admin")
	require.Nil(s.T(), err)

	assert.Equal(s.T(), enum.Conversion, entry.Kind)
	assert.Equal(s.T(), holder.String(), *entry.FromHolderID)
	assert.Equal(s.T(), holder.String(), *entry.ToHolderID)
	assert.EqualValues(s.T(), 100, *entry.FromShares)
	assert.EqualValues(s.T(), 150, *entry.ToShares)

	require.Nil(s.T(), tx.Commit().Error)

	preferred := s.loadHolding(holder, enum.PreferredA)
	assert.EqualValues(s.T(), 800, preferred.SharesIssued)
	assert.EqualValues(s.T(), 800, preferred.SharesOutstanding)

	common := s.loadHolding(holder, enum.Common)
	assert.EqualValues(s.T(), 150, common.SharesOutstanding)

	assert.EqualValues(s.T(), 800, s.replay(db.DB(), holder, enum.PreferredA))
	assert.EqualValues(s.T(), 150, s.replay(db.DB(), holder, enum.Common))
}

func (s *LedgerTestSuite) TestRepurchaseShares() {
	holder := s.seedHolder("Repurchase Holder", "repurchase@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(holder, enum.Common, 500, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	entry, err := svc.RepurchaseShares(holder, enum.Common, 200, decimal.New(2, 0), "admin")
	require.Nil(s.T(), err)

	assert.Equal(s.T(), enum.Repurchase, entry.Kind)
	assert.True(s.T(), entry.TotalConsideration.Equal(decimal.New(400, 0)))

	assert.EqualValues(s.T(), 300, s.replay(tx, holder, enum.Common))

	require.Nil(s.T(), tx.Commit().Error)

	// issued history survives the buyback
	holding := s.loadHolding(holder, enum.Common)
	assert.EqualValues(s.T(), 500, holding.SharesIssued)
	assert.EqualValues(s.T(), 300, holding.SharesOutstanding)

	tx = db.Begin()
	defer tx.Rollback()

	_, err = Service().WithTx(tx).RepurchaseShares(
		holder, enum.Common, 400, decimal.New(2, 0), "admin")
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), grerrors.InsufficientShares.Code, err.(*grerrors.Error).Code)
}

func (s *LedgerTestSuite) TestCancelShares() {
	holder := s.seedHolder("Cancel Holder", "cancel@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(holder, enum.Common, 500, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	entry, err := svc.CancelShares(holder, enum.Common, 100, "admin")
	require.Nil(s.T(), err)

	assert.Equal(s.T(), enum.Cancellation, entry.Kind)

	assert.EqualValues(s.T(), 400, s.replay(tx, holder, enum.Common))

	require.Nil(s.T(), tx.Commit().Error)

	holding := s.loadHolding(holder, enum.Common)
	assert.EqualValues(s.T(), 400, holding.SharesIssued)
	assert.EqualValues(s.T(), 400, holding.SharesOutstanding)
}

func (s *LedgerTestSuite) TestSplitShares() {
	first := s.seedHolder("Split Holder A", "split-a@test.db")
	second := s.seedHolder("Split Holder B", "split-b@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(first, enum.Founder, 100, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)
	_, _, err = svc.IssueShares(second, enum.Founder, 250, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	entries, err := svc.SplitShares(enum.Founder, 2, 1, "admin")
	require.Nil(s.T(), err)
	require.Len(s.T(), entries, 2)

	for _, entry := range entries {
		assert.Equal(s.T(), enum.Split, entry.Kind)
		assert.EqualValues(s.T(), *entry.FromShares*2, *entry.ToShares)
	}

	require.Nil(s.T(), tx.Commit().Error)

	assert.EqualValues(s.T(), 200, s.loadHolding(first, enum.Founder).SharesOutstanding)
	assert.EqualValues(s.T(), 500, s.loadHolding(second, enum.Founder).SharesOutstanding)

	assert.EqualValues(s.T(), 200, s.replay(db.DB(), first, enum.Founder))
	assert.EqualValues(s.T(), 500, s.replay(db.DB(), second, enum.Founder))
}

func (s *LedgerTestSuite) TestSplitSharesIndivisible() {
	first := s.seedHolder("Reverse Split Holder A", "reverse-split-a@test.db")
	second := s.seedHolder("Reverse Split Holder B", "reverse-split-b@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(first, enum.OptionPool, 200, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)
	_, _, err = svc.IssueShares(second, enum.OptionPool, 75, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	require.Nil(s.T(), tx.Commit().Error)

	// 75 does not halve - the whole split is rejected before any
	// holding is touched
	tx = db.Begin()
	svc = Service().WithTx(tx)

	_, err = svc.SplitShares(enum.OptionPool, 1, 2, "admin")
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), grerrors.InvariantViolation.Code, err.(*grerrors.Error).Code)
	tx.Rollback()

	assert.EqualValues(s.T(), 200, s.loadHolding(first, enum.OptionPool).SharesOutstanding)
	assert.EqualValues(s.T(), 75, s.loadHolding(second, enum.OptionPool).SharesOutstanding)
}

func (s *LedgerTestSuite) TestRecordDividend() {
	first := s.seedHolder("Dividend Holder A", "dividend-a@test.db")
	second := s.seedHolder("Dividend Holder B", "dividend-b@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(first, enum.PreferredB, 1000, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)
	_, _, err = svc.IssueShares(second, enum.PreferredB, 500, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	entry, err := svc.RecordDividend(enum.PreferredB, decimal.New(2, -2), "admin")
	require.Nil(s.T(), err)

	assert.Equal(s.T(), enum.Dividend, entry.Kind)
	assert.EqualValues(s.T(), 0, *entry.ToShares)
	assert.True(s.T(), entry.TotalConsideration.Equal(decimal.New(30, 0)))

	// declarations never move shares
	assert.EqualValues(s.T(), 1000, s.replay(tx, first, enum.PreferredB))

	_, err = svc.RecordDividend(enum.PreferredB, decimal.Zero, "admin")
	assert.NotNil(s.T(), err)

	require.Nil(s.T(), tx.Commit().Error)
}

func (s *LedgerTestSuite) TestEntriesFor() {
	src := s.seedHolder("History Source", "history-src@test.db")
	dst := s.seedHolder("History Destination", "history-dst@test.db")

	tx := db.Begin()
	svc := Service().WithTx(tx)

	_, _, err := svc.IssueShares(src, enum.Common, 1000, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)
	_, err = svc.TransferShares(src, dst, enum.Common, 100, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	require.Nil(s.T(), tx.Commit().Error)

	entries, err := Service().WithTx(db.DB()).EntriesFor(src)
	require.Nil(s.T(), err)
	require.Len(s.T(), entries, 2)

	// newest first
	assert.Equal(s.T(), enum.Transfer, entries[0].Kind)
	assert.Equal(s.T(), enum.Issuance, entries[1].Kind)

	entries, err = Service().WithTx(db.DB()).EntriesFor(dst)
	require.Nil(s.T(), err)
	require.Len(s.T(), entries, 1)

	limited, err := Service().WithTx(db.DB()).Entries(1)
	require.Nil(s.T(), err)
	assert.Len(s.T(), limited, 1)
}

func (s *LedgerTestSuite) TestAuthorizationStamp() {
	holder := s.seedHolder("Stamped Holder", "stamped@test.db")

	workflowID := uuid.Must(uuid.NewV4())
	resolutionID := uuid.Must(uuid.NewV4())

	tx := db.Begin()
	svc := Service().WithTx(tx)
	svc.SetAuthorization(&workflowID, &resolutionID)

	_, entry, err := svc.IssueShares(holder, enum.Common, 10, decimal.New(1, 0), "admin")
	require.Nil(s.T(), err)

	require.NotNil(s.T(), entry.WorkflowID)
	assert.Equal(s.T(), workflowID.String(), *entry.WorkflowID)
	require.NotNil(s.T(), entry.ResolutionID)
	assert.Equal(s.T(), resolutionID.String(), *entry.ResolutionID)

	require.Nil(s.T(), tx.Commit().Error)
}
