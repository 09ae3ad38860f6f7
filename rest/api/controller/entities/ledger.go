package entities

import (
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Authorization carries the governance references a caller attaches to
// a ledger mutation. The controller verifies the workflow is approved
// before the entry is written.
type Authorization struct {
	WorkflowID   *string `json:"workflow_id"`
	ResolutionID *string `json:"resolution_id"`
}

func (a *Authorization) WorkflowUUID() (*uuid.UUID, error) {
	if a.WorkflowID == nil {
		return nil, nil
	}

	id, err := uuid.FromString(*a.WorkflowID)
	if err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg("workflow_id is invalid format")
	}

	return &id, nil
}

func (a *Authorization) ResolutionUUID() (*uuid.UUID, error) {
	if a.ResolutionID == nil {
		return nil, nil
	}

	id, err := uuid.FromString(*a.ResolutionID)
	if err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg("resolution_id is invalid format")
	}

	return &id, nil
}

type IssuanceRequest struct {
	ShareholderID string          `json:"shareholder_id"`
	Class         enum.ShareClass `json:"class"`
	Shares        int64           `json:"shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
	Authorization
}

func (r *IssuanceRequest) Verify() error {
	if r.ShareholderID == "" {
		return grerrors.InvalidRequestParam.WithMsg("shareholder_id is required")
	}
	if !enum.ValidShareClass(r.Class) {
		return grerrors.InvalidRequestParam.WithMsg("invalid share class")
	}
	if r.Shares <= 0 {
		return grerrors.InvalidRequestParam.WithMsg("shares must be > 0")
	}
	if r.PricePerShare.LessThan(decimal.Zero) {
		return grerrors.InvalidRequestParam.WithMsg("price_per_share must be >= 0")
	}

	return nil
}

type BonusIssueRequest struct {
	ShareholderID string          `json:"shareholder_id"`
	Class         enum.ShareClass `json:"class"`
	Shares        int64           `json:"shares"`
	Authorization
}

func (r *BonusIssueRequest) Verify() error {
	if r.ShareholderID == "" {
		return grerrors.InvalidRequestParam.WithMsg("shareholder_id is required")
	}
	if !enum.ValidShareClass(r.Class) {
		return grerrors.InvalidRequestParam.WithMsg("invalid share class")
	}
	if r.Shares <= 0 {
		return grerrors.InvalidRequestParam.WithMsg("shares must be > 0")
	}

	return nil
}

type TransferRequest struct {
	FromShareholderID string          `json:"from_shareholder_id"`
	ToShareholderID   string          `json:"to_shareholder_id"`
	Class             enum.ShareClass `json:"class"`
	Shares            int64           `json:"shares"`
	PricePerShare     decimal.Decimal `json:"price_per_share"`
	Authorization
}

func (r *TransferRequest) Verify() error {
	if r.FromShareholderID == "" || r.ToShareholderID == "" {
		return grerrors.InvalidRequestParam.WithMsg("from_shareholder_id and to_shareholder_id are required")
	}
	if r.FromShareholderID == r.ToShareholderID {
		return grerrors.InvalidRequestParam.WithMsg("cannot transfer shares to the same shareholder")
	}
	if !enum.ValidShareClass(r.Class) {
		return grerrors.InvalidRequestParam.WithMsg("invalid share class")
	}
	if r.Shares <= 0 {
		return grerrors.InvalidRequestParam.WithMsg("shares must be > 0")
	}
	if r.PricePerShare.LessThan(decimal.Zero) {
		return grerrors.InvalidRequestParam.WithMsg("price_per_share must be >= 0")
	}

	return nil
}

type ConversionRequest struct {
	ShareholderID string          `json:"shareholder_id"`
	FromClass     enum.ShareClass `json:"from_class"`
	ToClass       enum.ShareClass `json:"to_class"`
	Shares        int64           `json:"shares"`
	Ratio         decimal.Decimal `json:"ratio"`
	Authorization
}

func (r *ConversionRequest) Verify() error {
	if r.ShareholderID == "" {
		return grerrors.InvalidRequestParam.WithMsg("shareholder_id is required")
	}
	if !enum.ValidShareClass(r.FromClass) || !enum.ValidShareClass(r.ToClass) {
		return grerrors.InvalidRequestParam.WithMsg("invalid share class")
	}
	if r.FromClass == r.ToClass {
		return grerrors.InvalidRequestParam.WithMsg("from_class and to_class must differ")
	}
	if r.Shares <= 0 {
		return grerrors.InvalidRequestParam.WithMsg("shares must be > 0")
	}

	return nil
}

type RepurchaseRequest struct {
	ShareholderID string          `json:"shareholder_id"`
	Class         enum.ShareClass `json:"class"`
	Shares        int64           `json:"shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
	Authorization
}

func (r *RepurchaseRequest) Verify() error {
	if r.ShareholderID == "" {
		return grerrors.InvalidRequestParam.WithMsg("shareholder_id is required")
	}
	if !enum.ValidShareClass(r.Class) {
		return grerrors.InvalidRequestParam.WithMsg("invalid share class")
	}
	if r.Shares <= 0 {
		return grerrors.InvalidRequestParam.WithMsg("shares must be > 0")
	}
	if r.PricePerShare.LessThan(decimal.Zero) {
		return grerrors.InvalidRequestParam.WithMsg("price_per_share must be >= 0")
	}

	return nil
}

type CancellationRequest struct {
	ShareholderID string          `json:"shareholder_id"`
	Class         enum.ShareClass `json:"class"`
	Shares        int64           `json:"shares"`
	Authorization
}

func (r *CancellationRequest) Verify() error {
	if r.ShareholderID == "" {
		return grerrors.InvalidRequestParam.WithMsg("shareholder_id is required")
	}
	if !enum.ValidShareClass(r.Class) {
		return grerrors.InvalidRequestParam.WithMsg("invalid share class")
	}
	if r.Shares <= 0 {
		return grerrors.InvalidRequestParam.WithMsg("shares must be > 0")
	}

	return nil
}

type SplitRequest struct {
	Class            enum.ShareClass `json:"class"`
	RatioNumerator   int64           `json:"ratio_numerator"`
	RatioDenominator int64           `json:"ratio_denominator"`
	Authorization
}

func (r *SplitRequest) Verify() error {
	if !enum.ValidShareClass(r.Class) {
		return grerrors.InvalidRequestParam.WithMsg("invalid share class")
	}
	if r.RatioNumerator <= 0 || r.RatioDenominator <= 0 {
		return grerrors.InvalidRequestParam.WithMsg("split ratio must be positive")
	}

	return nil
}

type DividendRequest struct {
	Class          enum.ShareClass `json:"class"`
	AmountPerShare decimal.Decimal `json:"amount_per_share"`
	Authorization
}

func (r *DividendRequest) Verify() error {
	if !enum.ValidShareClass(r.Class) {
		return grerrors.InvalidRequestParam.WithMsg("invalid share class")
	}
	if r.AmountPerShare.LessThanOrEqual(decimal.Zero) {
		return grerrors.InvalidRequestParam.WithMsg("amount_per_share must be > 0")
	}

	return nil
}

// IssuanceResult pairs the written entry with the holding it credited.
type IssuanceResult struct {
	Holding *models.Holding     `json:"holding"`
	Entry   *models.LedgerEntry `json:"entry"`
}
