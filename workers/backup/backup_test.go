package backup

import (
	"fmt"
	"io"
	"io/ioutil"
	"testing"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/encryption"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/goregistry/dbtest"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/utils/address"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BackupWorkerTestSuite struct {
	dbtest.Suite
	holder       *models.Shareholder
	counterparty *models.Shareholder
}

func TestBackupWorkerTestSuite(t *testing.T) {
	suite.Run(t, new(BackupWorkerTestSuite))
}

func (s *BackupWorkerTestSuite) SetupSuite() {
	env.RegisterDefault("REGISTRY_MODE", "DEV")
	env.RegisterDefault("REGISTRY_SECRET", "79sf697d6f978yf97sh9we7gfg97wfg7")
	s.SetupDB()

	email := "holder@test.db"
	phone := "650-111-1111"
	city := "Somewhere"
	state := "SW"
	zip := "12345"
	tin, err := encryption.EncryptWithKey([]byte("600-00-0001"), []byte(env.GetVar("REGISTRY_SECRET")))

	require.Nil(s.T(), err)

	s.holder = &models.Shareholder{
		Status:        enum.ShareholderActive,
		EntityType:    enum.Individual,
		LegalName:     "First Last",
		Email:         &email,
		PhoneNumber:   &phone,
		StreetAddress: address.Address([]string{"123 Somewhere Ln"}),
		City:          &city,
		State:         &state,
		PostalCode:    &zip,
		HashTaxID:     &tin,
	}

	require.Nil(s.T(), db.DB().Create(s.holder).Error)

	s.counterparty = &models.Shareholder{
		Status:     enum.ShareholderActive,
		EntityType: enum.Fund,
		LegalName:  "Acme Ventures LP",
	}

	require.Nil(s.T(), db.DB().Create(s.counterparty).Error)

	holding := &models.Holding{
		ShareholderID:     s.holder.ID,
		Class:             enum.Common,
		SharesIssued:      10000,
		SharesOutstanding: 9000,
		SharesReserved:    1000,
		ConsiderationPaid: decimal.New(9000, 0),
		AcquiredAt:        clock.Now().AddDate(-1, 0, 0),
	}

	require.Nil(s.T(), db.DB().Create(holding).Error)
}

func (s *BackupWorkerTestSuite) TearDownSuite() {
	s.TeardownDB()
}

// capturingWorker records uploads by path so the jobs can be
// asserted without S3.
func (s *BackupWorkerTestSuite) capturingWorker(asOf time.Time, uploads map[string][]byte) *backupWorker {
	return &backupWorker{
		asOf: asOf,
		uploadS3: func(file io.ReadSeeker, path string) error {
			buf, err := ioutil.ReadAll(file)
			require.Nil(s.T(), err)
			uploads[path] = buf
			return nil
		},
		parallelism: 1,
	}
}

func (s *BackupWorkerTestSuite) TestBackupShareholder() {
	uploads := map[string][]byte{}
	worker := s.capturingWorker(clock.Now(), uploads)

	worker.backupShareholder(s.holder)

	buf, ok := uploads[fmt.Sprintf("/books_and_records/shareholders/%s.csv", s.holder.ID)]
	require.True(s.T(), ok)

	records := []HolderRecord{}
	require.Nil(s.T(), gocsv.UnmarshalBytes(buf, &records))
	require.Len(s.T(), records, 1)

	rec := records[0]
	assert.Equal(s.T(), "First Last", rec.LegalName)
	assert.Equal(s.T(), string(enum.Common), rec.Class)
	assert.EqualValues(s.T(), 9000, rec.SharesOutstanding)
	require.NotNil(s.T(), rec.TaxIDNumber)
	assert.Equal(s.T(), "xxx-xx-0001", *rec.TaxIDNumber)
}

func (s *BackupWorkerTestSuite) TestBackupMovements() {
	asOf := clock.Now()

	classCommon := enum.Common
	issued := int64(2500)
	moved := int64(500)
	price := decimal.New(150, -2)
	total := price.Mul(decimal.New(issued, 0))

	issuance := &models.LedgerEntry{
		Kind:               enum.Issuance,
		ToHolderID:         &s.holder.ID,
		ToClass:            &classCommon,
		ToShares:           &issued,
		PricePerShare:      &price,
		TotalConsideration: &total,
		Actor:              "secretary",
		TransactedAt:       asOf,
	}
	require.Nil(s.T(), db.DB().Create(issuance).Error)

	transfer := &models.LedgerEntry{
		Kind:         enum.Transfer,
		FromHolderID: &s.holder.ID,
		FromClass:    &classCommon,
		FromShares:   &moved,
		ToHolderID:   &s.counterparty.ID,
		ToClass:      &classCommon,
		ToShares:     &moved,
		Actor:        "secretary",
		TransactedAt: asOf,
	}
	require.Nil(s.T(), db.DB().Create(transfer).Error)

	uploads := map[string][]byte{}
	worker := s.capturingWorker(asOf, uploads)

	worker.backupMovements(s.holder)

	buf, ok := uploads[fmt.Sprintf(
		"/books_and_records/movements/%s/%s.csv",
		s.holder.ID, asOf.Format(dateFormat))]
	require.True(s.T(), ok)

	records := []MovementRecord{}
	require.Nil(s.T(), gocsv.UnmarshalBytes(buf, &records))
	require.Len(s.T(), records, 2)

	assert.Equal(s.T(), "credit", records[0].Direction)
	assert.EqualValues(s.T(), issued, records[0].Shares)
	assert.Nil(s.T(), records[0].Counterparty)

	assert.Equal(s.T(), "debit", records[1].Direction)
	assert.EqualValues(s.T(), moved, records[1].Shares)
	require.NotNil(s.T(), records[1].Counterparty)
	assert.Equal(s.T(), s.counterparty.ID, *records[1].Counterparty)
}

func (s *BackupWorkerTestSuite) TestBackupResolutions() {
	asOf := clock.Now()

	deadline := asOf.AddDate(0, 0, 7)

	wf := &models.ApprovalWorkflow{
		Action:      enum.DividendDeclaration,
		Requestor:   "board",
		Status:      enum.WorkflowApproved,
		CurrentStep: 1,
		StepCount:   1,
		Deadline:    &deadline,
	}
	require.Nil(s.T(), db.DB().Create(wf).Error)

	passedAt := asOf.AddDate(0, 0, -2)

	decided := &models.Resolution{
		WorkflowID:           wf.ID,
		Kind:                 enum.Ordinary,
		Status:               enum.ResolutionApproved,
		Title:                "Declare interim dividend",
		QuorumPct:            decimal.New(50, 0),
		ApprovalThresholdPct: decimal.New(50, 0),
		VotesFor:             decimal.New(60, 0),
		VotesAgainst:         decimal.New(10, 0),
		VotesAbstain:         decimal.Zero,
		PassedAt:             &passedAt,
	}
	require.Nil(s.T(), db.DB().Create(decided).Error)

	draft := &models.Resolution{
		WorkflowID:           wf.ID,
		Kind:                 enum.Special,
		Status:               enum.ResolutionDraft,
		Title:                "Amend constitution",
		QuorumPct:            decimal.New(50, 0),
		ApprovalThresholdPct: decimal.New(75, 0),
		VotesFor:             decimal.Zero,
		VotesAgainst:         decimal.Zero,
		VotesAbstain:         decimal.Zero,
	}
	require.Nil(s.T(), db.DB().Create(draft).Error)

	for _, holderID := range []string{s.holder.ID, s.counterparty.ID} {
		sig := &models.ResolutionSignature{
			ResolutionID:  decided.ID,
			ShareholderID: holderID,
			Favor:         true,
			SignedAt:      passedAt,
		}
		require.Nil(s.T(), db.DB().Create(sig).Error)
	}

	uploads := map[string][]byte{}
	worker := s.capturingWorker(asOf, uploads)

	worker.backupResolutions()

	buf, ok := uploads[fmt.Sprintf(
		"/books_and_records/resolutions/%s.csv",
		asOf.Format(dateFormat))]
	require.True(s.T(), ok)

	records := []ResolutionRecord{}
	require.Nil(s.T(), gocsv.UnmarshalBytes(buf, &records))
	require.Len(s.T(), records, 1)

	rec := records[0]
	assert.Equal(s.T(), decided.ID, rec.ResolutionID)
	assert.Equal(s.T(), string(enum.ResolutionApproved), rec.Status)
	assert.Equal(s.T(), 2, rec.SignatureCount)
	assert.True(s.T(), rec.VotesFor.Equal(decimal.New(60, 0)))
}

func (s *BackupWorkerTestSuite) TestBackupStatement() {
	asOf := clock.Now()

	holder := &models.Shareholder{
		Status:     enum.ShareholderActive,
		EntityType: enum.Individual,
		LegalName:  "Statement Holder",
	}
	require.Nil(s.T(), db.DB().Create(holder).Error)

	holding := &models.Holding{
		ShareholderID:     holder.ID,
		Class:             enum.PreferredA,
		SharesIssued:      1600,
		SharesOutstanding: 1300,
		ConsiderationPaid: decimal.New(1600, 0),
		AcquiredAt:        asOf.AddDate(0, -2, 0),
	}
	require.Nil(s.T(), db.DB().Create(holding).Error)

	classPrefA := enum.PreferredA

	seed := func(kind enum.LedgerEntryKind, from, to *string, shares int64, at time.Time) {
		entry := &models.LedgerEntry{
			Kind:         kind,
			Actor:        "secretary",
			TransactedAt: at,
		}
		if from != nil {
			entry.FromHolderID = from
			entry.FromClass = &classPrefA
			entry.FromShares = &shares
		}
		if to != nil {
			entry.ToHolderID = to
			entry.ToClass = &classPrefA
			entry.ToShares = &shares
		}
		require.Nil(s.T(), db.DB().Create(entry).Error)
	}

	// before the statement window - folds into the opening balance
	seed(enum.Issuance, nil, &holder.ID, 100, asOf.AddDate(0, 0, -40))

	seed(enum.Issuance, nil, &holder.ID, 1000, asOf.AddDate(0, 0, -15))
	seed(enum.Transfer, &holder.ID, &s.counterparty.ID, 300, asOf.AddDate(0, 0, -10))
	seed(enum.Issuance, nil, &holder.ID, 500, asOf.AddDate(0, 0, -2))

	uploads := map[string][]byte{}
	worker := s.capturingWorker(asOf, uploads)

	worker.backupStatement(holder)

	start := asOf.AddDate(0, -1, 0)

	buf, ok := uploads[fmt.Sprintf(
		"/books_and_records/statements/%s/%s.csv",
		holder.ID, start.Format(monthFormat))]
	require.True(s.T(), ok)

	records := []StatementRecord{}
	require.Nil(s.T(), gocsv.UnmarshalBytes(buf, &records))
	require.Len(s.T(), records, 1)

	rec := records[0]
	assert.Equal(s.T(), string(enum.PreferredA), rec.Class)
	assert.EqualValues(s.T(), 100, rec.OpeningShares)
	assert.EqualValues(s.T(), 1500, rec.SharesCredited)
	assert.EqualValues(s.T(), 300, rec.SharesDebited)
	assert.EqualValues(s.T(), 1300, rec.ClosingShares)
}
