package ledger

import (
	"fmt"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// LedgerService is the only writer of holdings and ledger entries.
// Every mutation adjusts the affected holdings and appends exactly one
// entry per movement inside the caller's transaction, so the ledger
// replay always reconciles with the stored counts. Approval checks
// happen upstream in the governance service; this layer is mechanical.
type LedgerService interface {
	IssueShares(toHolder uuid.UUID, class enum.ShareClass, shares int64, pricePerShare decimal.Decimal, actor string) (*models.Holding, *models.LedgerEntry, error)
	BonusIssue(toHolder uuid.UUID, class enum.ShareClass, shares int64, actor string) (*models.Holding, *models.LedgerEntry, error)
	TransferShares(fromHolder, toHolder uuid.UUID, class enum.ShareClass, shares int64, pricePerShare decimal.Decimal, actor string) (*models.LedgerEntry, error)
	ConvertShares(holder uuid.UUID, fromClass, toClass enum.ShareClass, shares int64, ratio decimal.Decimal, actor string) (*models.LedgerEntry, error)
	RepurchaseShares(holder uuid.UUID, class enum.ShareClass, shares int64, pricePerShare decimal.Decimal, actor string) (*models.LedgerEntry, error)
	CancelShares(holder uuid.UUID, class enum.ShareClass, shares int64, actor string) (*models.LedgerEntry, error)
	SplitShares(class enum.ShareClass, ratioNum, ratioDen int64, actor string) ([]models.LedgerEntry, error)
	RecordDividend(class enum.ShareClass, amountPerShare decimal.Decimal, actor string) (*models.LedgerEntry, error)
	Entries(limit int) ([]models.LedgerEntry, error)
	EntriesFor(holder uuid.UUID) ([]models.LedgerEntry, error)
	ReplayOutstanding(holder uuid.UUID, class enum.ShareClass) (int64, error)
	SetAuthorization(workflowID, resolutionID *uuid.UUID)
	WithTx(tx *gorm.DB) LedgerService
}

type ledgerService struct {
	LedgerService
	tx           *gorm.DB
	workflowID   *string
	resolutionID *string
}

func Service() LedgerService {
	return &ledgerService{}
}

func (s *ledgerService) WithTx(tx *gorm.DB) LedgerService {
	s.tx = tx
	return s
}

// SetAuthorization stamps subsequent entries with the workflow and
// resolution that approved them.
func (s *ledgerService) SetAuthorization(workflowID, resolutionID *uuid.UUID) {
	s.workflowID = uuidPtrToStr(workflowID)
	s.resolutionID = uuidPtrToStr(resolutionID)
}

func (s *ledgerService) IssueShares(
	toHolder uuid.UUID,
	class enum.ShareClass,
	shares int64,
	pricePerShare decimal.Decimal,
	actor string) (*models.Holding, *models.LedgerEntry, error) {

	return s.issue(enum.Issuance, toHolder, class, shares, &pricePerShare, actor)
}

// BonusIssue credits shares for no consideration, pro-rata issues and
// option pool top-ups both land here.
func (s *ledgerService) BonusIssue(
	toHolder uuid.UUID,
	class enum.ShareClass,
	shares int64,
	actor string) (*models.Holding, *models.LedgerEntry, error) {

	return s.issue(enum.Bonus, toHolder, class, shares, nil, actor)
}

func (s *ledgerService) issue(
	kind enum.LedgerEntryKind,
	toHolder uuid.UUID,
	class enum.ShareClass,
	shares int64,
	pricePerShare *decimal.Decimal,
	actor string) (*models.Holding, *models.LedgerEntry, error) {

	if shares < 0 {
		return nil, nil, grerrors.InvalidRequestParam.WithMsg("shares must be non-negative")
	}

	if pricePerShare != nil && pricePerShare.IsNegative() {
		return nil, nil, grerrors.InvalidRequestParam.WithMsg("price_per_share must be non-negative")
	}

	if err := s.verifyHolder(toHolder); err != nil {
		return nil, nil, err
	}

	holding, err := s.findOrCreateHolding(toHolder, class)
	if err != nil {
		return nil, nil, err
	}

	updates := map[string]interface{}{
		"shares_issued":      holding.SharesIssued + shares,
		"shares_outstanding": holding.SharesOutstanding + shares,
	}

	if pricePerShare != nil {
		consideration := pricePerShare.Mul(decimal.New(shares, 0))
		updates["consideration_paid"] = holding.ConsiderationPaid.Add(consideration)
	}

	if err := s.tx.Model(holding).Updates(updates).Error; err != nil {
		return nil, nil, grerrors.InternalServerError.WithError(err)
	}

	entry := &models.LedgerEntry{
		Kind:          kind,
		ToHolderID:    strPtr(toHolder.String()),
		ToClass:       &class,
		ToShares:      &shares,
		PricePerShare: pricePerShare,
		Actor:         actor,
		WorkflowID:    s.workflowID,
		ResolutionID:  s.resolutionID,
		TransactedAt:  clock.Now(),
	}

	if pricePerShare != nil {
		consideration := pricePerShare.Mul(decimal.New(shares, 0))
		entry.TotalConsideration = &consideration
	}

	if err := s.tx.Create(entry).Error; err != nil {
		return nil, nil, grerrors.InternalServerError.WithError(err)
	}

	return holding, entry, nil
}

func (s *ledgerService) TransferShares(
	fromHolder, toHolder uuid.UUID,
	class enum.ShareClass,
	shares int64,
	pricePerShare decimal.Decimal,
	actor string) (*models.LedgerEntry, error) {

	if shares <= 0 {
		return nil, grerrors.InvalidRequestParam.WithMsg("shares must be positive")
	}

	if fromHolder == toHolder {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			"source and destination holder must differ")
	}

	if err := s.verifyHolder(toHolder); err != nil {
		return nil, err
	}

	// rows lock in holder-uuid order so concurrent transfers over the
	// same pair cannot deadlock
	var src, dst *models.Holding
	var err error

	if fromHolder.String() < toHolder.String() {
		src, err = s.findHolding(fromHolder, class, true)
		if err == nil {
			dst, err = s.findOrCreateHolding(toHolder, class)
		}
	} else {
		dst, err = s.findOrCreateHolding(toHolder, class)
		if err == nil {
			src, err = s.findHolding(fromHolder, class, true)
		}
	}

	if err != nil {
		return nil, err
	}

	if src.SharesOutstanding < shares {
		return nil, grerrors.InsufficientShares.WithMsg(fmt.Sprintf(
			"holding for %v in %v has %v outstanding, transfer of %v requested",
			fromHolder, class, src.SharesOutstanding, shares))
	}

	if err := s.tx.Model(src).Update(
		"shares_outstanding", src.SharesOutstanding-shares).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	if err := s.tx.Model(dst).Updates(map[string]interface{}{
		"shares_issued":      dst.SharesIssued + shares,
		"shares_outstanding": dst.SharesOutstanding + shares,
	}).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	consideration := pricePerShare.Mul(decimal.New(shares, 0))

	entry := &models.LedgerEntry{
		Kind:               enum.Transfer,
		FromHolderID:       strPtr(fromHolder.String()),
		FromClass:          &class,
		FromShares:         &shares,
		ToHolderID:         strPtr(toHolder.String()),
		ToClass:            &class,
		ToShares:           &shares,
		PricePerShare:      &pricePerShare,
		TotalConsideration: &consideration,
		Actor:              actor,
		WorkflowID:         s.workflowID,
		ResolutionID:       s.resolutionID,
		TransactedAt:       clock.Now(),
	}

	if err := s.tx.Create(entry).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return entry, nil
}

func (s *ledgerService) ConvertShares(
	holder uuid.UUID,
	fromClass, toClass enum.ShareClass,
	shares int64,
	ratio decimal.Decimal,
	actor string) (*models.LedgerEntry, error) {

	if shares <= 0 {
		return nil, grerrors.InvalidRequestParam.WithMsg("shares must be positive")
	}

	if !ratio.IsPositive() {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("conversion ratio must be positive, got %v", ratio))
	}

	if fromClass == toClass {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			"source and destination class must differ")
	}

	converted := ratio.Mul(decimal.New(shares, 0))

	if !converted.Equal(converted.Truncate(0)) {
		return nil, grerrors.InvariantViolation.WithMsg(fmt.Sprintf(
			"converting %v shares at ratio %v does not yield a whole share count",
			shares, ratio))
	}

	convertedShares := converted.IntPart()

	// same holder both sides, lock by class order
	var src, dst *models.Holding
	var err error

	if fromClass < toClass {
		src, err = s.findHolding(holder, fromClass, true)
		if err == nil {
			dst, err = s.findOrCreateHolding(holder, toClass)
		}
	} else {
		dst, err = s.findOrCreateHolding(holder, toClass)
		if err == nil {
			src, err = s.findHolding(holder, fromClass, true)
		}
	}

	if err != nil {
		return nil, err
	}

	if src.SharesOutstanding < shares {
		return nil, grerrors.InsufficientShares.WithMsg(fmt.Sprintf(
			"holding for %v in %v has %v outstanding, conversion of %v requested",
			holder, fromClass, src.SharesOutstanding, shares))
	}

	if err := s.tx.Model(src).Updates(map[string]interface{}{
		"shares_issued":      src.SharesIssued - shares,
		"shares_outstanding": src.SharesOutstanding - shares,
	}).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	if err := s.tx.Model(dst).Updates(map[string]interface{}{
		"shares_issued":      dst.SharesIssued + convertedShares,
		"shares_outstanding": dst.SharesOutstanding + convertedShares,
	}).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	entry := &models.LedgerEntry{
		Kind:         enum.Conversion,
		FromHolderID: strPtr(holder.String()),
		FromClass:    &fromClass,
		FromShares:   &shares,
		ToHolderID:   strPtr(holder.String()),
		ToClass:      &toClass,
		ToShares:     &convertedShares,
		Actor:        actor,
		WorkflowID:   s.workflowID,
		ResolutionID: s.resolutionID,
		TransactedAt: clock.Now(),
	}

	if err := s.tx.Create(entry).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return entry, nil
}

// RepurchaseShares buys shares back into treasury. Outstanding drops,
// issued stays, so the holding keeps its full issuance history.
func (s *ledgerService) RepurchaseShares(
	holder uuid.UUID,
	class enum.ShareClass,
	shares int64,
	pricePerShare decimal.Decimal,
	actor string) (*models.LedgerEntry, error) {

	if shares <= 0 {
		return nil, grerrors.InvalidRequestParam.WithMsg("shares must be positive")
	}

	src, err := s.findHolding(holder, class, true)
	if err != nil {
		return nil, err
	}

	if src.SharesOutstanding < shares {
		return nil, grerrors.InsufficientShares.WithMsg(fmt.Sprintf(
			"holding for %v in %v has %v outstanding, repurchase of %v requested",
			holder, class, src.SharesOutstanding, shares))
	}

	if err := s.tx.Model(src).Update(
		"shares_outstanding", src.SharesOutstanding-shares).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	consideration := pricePerShare.Mul(decimal.New(shares, 0))

	entry := &models.LedgerEntry{
		Kind:               enum.Repurchase,
		FromHolderID:       strPtr(holder.String()),
		FromClass:          &class,
		FromShares:         &shares,
		ToClass:            &class,
		ToShares:           &shares,
		PricePerShare:      &pricePerShare,
		TotalConsideration: &consideration,
		Actor:              actor,
		WorkflowID:         s.workflowID,
		ResolutionID:       s.resolutionID,
		TransactedAt:       clock.Now(),
	}

	if err := s.tx.Create(entry).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return entry, nil
}

// CancelShares retires shares entirely. Both issued and outstanding
// drop, as if the shares had never been created.
func (s *ledgerService) CancelShares(
	holder uuid.UUID,
	class enum.ShareClass,
	shares int64,
	actor string) (*models.LedgerEntry, error) {

	if shares <= 0 {
		return nil, grerrors.InvalidRequestParam.WithMsg("shares must be positive")
	}

	src, err := s.findHolding(holder, class, true)
	if err != nil {
		return nil, err
	}

	if src.SharesOutstanding < shares {
		return nil, grerrors.InsufficientShares.WithMsg(fmt.Sprintf(
			"holding for %v in %v has %v outstanding, cancellation of %v requested",
			holder, class, src.SharesOutstanding, shares))
	}

	if err := s.tx.Model(src).Updates(map[string]interface{}{
		"shares_issued":      src.SharesIssued - shares,
		"shares_outstanding": src.SharesOutstanding - shares,
	}).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	entry := &models.LedgerEntry{
		Kind:         enum.Cancellation,
		FromHolderID: strPtr(holder.String()),
		FromClass:    &class,
		FromShares:   &shares,
		ToClass:      &class,
		ToShares:     &shares,
		Actor:        actor,
		WorkflowID:   s.workflowID,
		ResolutionID: s.resolutionID,
		TransactedAt: clock.Now(),
	}

	if err := s.tx.Create(entry).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return entry, nil
}

// SplitShares rescales every holding of the class by ratioNum/ratioDen.
// All holdings must divide exactly or the whole split is rejected, a
// partial split would corrupt relative ownership.
func (s *ledgerService) SplitShares(
	class enum.ShareClass,
	ratioNum, ratioDen int64,
	actor string) ([]models.LedgerEntry, error) {

	if ratioNum <= 0 || ratioDen <= 0 {
		return nil, grerrors.InvalidRequestParam.WithMsg("split ratio must be positive")
	}

	holdings := []models.Holding{}

	q := s.tx.
		Set("gorm:query_option", db.ForUpdate).
		Where("class = ?", class).
		Order("shareholder_id asc").
		Find(&holdings)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	for i := range holdings {
		h := &holdings[i]

		for _, count := range []int64{h.SharesIssued, h.SharesOutstanding, h.SharesReserved} {
			if (count*ratioNum)%ratioDen != 0 {
				return nil, grerrors.InvariantViolation.WithMsg(fmt.Sprintf(
					"split %v:%v does not divide %v shares held by %v evenly",
					ratioNum, ratioDen, count, h.ShareholderID))
			}
		}
	}

	entries := make([]models.LedgerEntry, 0, len(holdings))

	for i := range holdings {
		h := &holdings[i]

		oldOutstanding := h.SharesOutstanding
		newOutstanding := h.SharesOutstanding * ratioNum / ratioDen

		if err := s.tx.Model(h).Updates(map[string]interface{}{
			"shares_issued":      h.SharesIssued * ratioNum / ratioDen,
			"shares_outstanding": newOutstanding,
			"shares_reserved":    h.SharesReserved * ratioNum / ratioDen,
		}).Error; err != nil {
			return nil, grerrors.InternalServerError.WithError(err)
		}

		entry := models.LedgerEntry{
			Kind:         enum.Split,
			FromHolderID: strPtr(h.ShareholderID),
			FromClass:    &class,
			FromShares:   &oldOutstanding,
			ToHolderID:   strPtr(h.ShareholderID),
			ToClass:      &class,
			ToShares:     &newOutstanding,
			Actor:        actor,
			WorkflowID:   s.workflowID,
			ResolutionID: s.resolutionID,
			TransactedAt: clock.Now(),
		}

		if err := s.tx.Create(&entry).Error; err != nil {
			return nil, grerrors.InternalServerError.WithError(err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// RecordDividend appends the declaration to the ledger. Share counts
// are untouched, the entry carries the aggregate payout only.
func (s *ledgerService) RecordDividend(
	class enum.ShareClass,
	amountPerShare decimal.Decimal,
	actor string) (*models.LedgerEntry, error) {

	if !amountPerShare.IsPositive() {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			"amount_per_share must be positive")
	}

	var outstanding int64

	row := s.tx.
		Model(&models.Holding{}).
		Where("class = ?", class).
		Select("coalesce(sum(shares_outstanding), 0)").
		Row()

	if err := row.Scan(&outstanding); err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	zero := int64(0)
	total := amountPerShare.Mul(decimal.New(outstanding, 0))

	entry := &models.LedgerEntry{
		Kind:               enum.Dividend,
		ToClass:            &class,
		ToShares:           &zero,
		PricePerShare:      &amountPerShare,
		TotalConsideration: &total,
		Actor:              actor,
		WorkflowID:         s.workflowID,
		ResolutionID:       s.resolutionID,
		TransactedAt:       clock.Now(),
	}

	if err := s.tx.Create(entry).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return entry, nil
}

func (s *ledgerService) Entries(limit int) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}

	q := s.tx.Order("transacted_at DESC, sequence DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&entries).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return entries, nil
}

func (s *ledgerService) EntriesFor(holder uuid.UUID) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}

	q := s.tx.
		Where("from_holder_id = ? OR to_holder_id = ?",
			holder.String(), holder.String()).
		Order("transacted_at DESC, sequence DESC").
		Find(&entries)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return entries, nil
}

// ReplayOutstanding recomputes the outstanding count for one holding
// from its ledger history. Reconciliation compares this against the
// stored count.
func (s *ledgerService) ReplayOutstanding(holder uuid.UUID, class enum.ShareClass) (int64, error) {
	var outstanding int64

	row := s.tx.
		Model(&models.LedgerEntry{}).
		Select(`coalesce(sum(
			case when to_holder_id = ? and to_class = ? then to_shares else 0 end -
			case when from_holder_id = ? and from_class = ? then from_shares else 0 end
		), 0)`, holder.String(), class, holder.String(), class).
		Where("from_holder_id = ? OR to_holder_id = ?", holder.String(), holder.String()).
		Row()

	if err := row.Scan(&outstanding); err != nil {
		return 0, grerrors.InternalServerError.WithError(err)
	}

	return outstanding, nil
}

func (s *ledgerService) verifyHolder(id uuid.UUID) error {
	sh := &models.Shareholder{}

	q := s.tx.Where("id = ?", id.String()).Find(sh)

	if q.RecordNotFound() {
		return grerrors.NotFound.WithMsg(
			fmt.Sprintf("shareholder not found for %v", id))
	}

	if q.Error != nil {
		return grerrors.InternalServerError.WithError(q.Error)
	}

	return nil
}

func (s *ledgerService) findHolding(holder uuid.UUID, class enum.ShareClass, forUpdate bool) (*models.Holding, error) {
	holding := &models.Holding{}

	q := s.tx

	if forUpdate {
		q = q.Set("gorm:query_option", db.ForUpdate)
	}

	q = q.Where(
		"shareholder_id = ? AND class = ?",
		holder.String(), class).Find(holding)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(fmt.Sprintf(
			"holding not found for %v in class %v", holder, class))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return holding, nil
}

func (s *ledgerService) findOrCreateHolding(holder uuid.UUID, class enum.ShareClass) (*models.Holding, error) {
	holding, err := s.findHolding(holder, class, true)

	if err == nil {
		return holding, nil
	}

	if !grerrors.IsNotFound(err) {
		return nil, err
	}

	holding = &models.Holding{
		ShareholderID: holder.String(),
		Class:         class,
		AcquiredAt:    clock.Now(),
	}

	if err := s.tx.Create(holding).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return holding, nil
}

func strPtr(s string) *string {
	return &s
}

func uuidPtrToStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
