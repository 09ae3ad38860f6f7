// Package policy maps a proposed governance action onto the approvals,
// blockers, warnings and notices the constitution attaches to it. It
// is a pure decision layer: no storage, no clock reads, callers pass
// the cap-table context and the evaluation time in.
package policy

import (
	"fmt"
	"time"

	"github.com/alpacahq/goregistry/equity"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/shopspring/decimal"
)

// Params is the tagged union of per-action parameter records. Each
// variant knows which governance action it parameterizes.
type Params interface {
	Action() enum.GovernanceAction
}

type IssuanceParams struct {
	Holder        string          `json:"holder"`
	Class         enum.ShareClass `json:"class"`
	NewShares     int64           `json:"new_shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
}

func (IssuanceParams) Action() enum.GovernanceAction { return enum.ShareIssuance }

type TransferParams struct {
	FromHolder    string          `json:"from_holder"`
	ToHolder      string          `json:"to_holder"`
	Class         enum.ShareClass `json:"class"`
	Shares        int64           `json:"shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
}

func (TransferParams) Action() enum.GovernanceAction { return enum.ShareTransfer }

type ConversionParams struct {
	Holder            string          `json:"holder"`
	FromClass         enum.ShareClass `json:"from_class"`
	ToClass           enum.ShareClass `json:"to_class"`
	Shares            int64           `json:"shares"`
	Ratio             decimal.Decimal `json:"ratio"`
	QualifiedOffering bool            `json:"qualified_offering"`
}

func (ConversionParams) Action() enum.GovernanceAction { return enum.ShareConversion }

type BorrowingParams struct {
	Amount     decimal.Decimal `json:"amount"`
	Lender     string          `json:"lender"`
	TermMonths int             `json:"term_months"`
}

func (BorrowingParams) Action() enum.GovernanceAction { return enum.Borrowing }

type AmendmentParams struct {
	Type            enum.AmendmentType `json:"type"`
	ClassesAffected []enum.ShareClass  `json:"classes_affected"`
	Description     string             `json:"description"`
}

func (AmendmentParams) Action() enum.GovernanceAction { return enum.ConstitutionAmendment }

type RepurchaseParams struct {
	Holder        string          `json:"holder"`
	Class         enum.ShareClass `json:"class"`
	Shares        int64           `json:"shares"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
}

func (RepurchaseParams) Action() enum.GovernanceAction { return enum.ShareRepurchase }

type MergerParams struct {
	Counterparty      string `json:"counterparty"`
	ConsiderationType string `json:"consideration_type"`
}

func (MergerParams) Action() enum.GovernanceAction { return enum.MergerAcquisition }

type DividendParams struct {
	Class          enum.ShareClass `json:"class"`
	AmountPerShare decimal.Decimal `json:"amount_per_share"`
}

func (DividendParams) Action() enum.GovernanceAction { return enum.DividendDeclaration }

// GenericParams covers governance actions with no dedicated rules.
// Evaluation falls back to plain board approval.
type GenericParams struct {
	Kind enum.GovernanceAction `json:"kind"`
}

func (p GenericParams) Action() enum.GovernanceAction { return p.Kind }

// Context is the cap-table state the rules read. Holder keys are
// shareholder uuid strings.
type Context struct {
	TotalOutstanding   int64
	OutstandingByClass map[enum.ShareClass]int64
	AuthorizedByClass  map[enum.ShareClass]int64
	HolderOutstanding  map[string]int64
	RestrictedClasses  map[enum.ShareClass]bool
}

type RequiredApproval struct {
	Type         enum.ApprovalType `json:"type"`
	ThresholdPct *decimal.Decimal  `json:"threshold_pct,omitempty"`
}

type Notice struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	LeadDays  int    `json:"lead_days"`
	Required  bool   `json:"required"`
}

type StepSpec struct {
	Type         enum.StepType  `json:"type"`
	Actor        enum.StepActor `json:"actor"`
	Name         string         `json:"name"`
	Required     bool           `json:"required"`
	DeadlineDays uint           `json:"deadline_days"`
}

type WorkflowSpec struct {
	Steps       []StepSpec `json:"steps"`
	NominalDays uint       `json:"nominal_days"`
}

// Evaluation is the complete answer for one proposed action. A
// non-empty Blockers list means the action must not execute; every
// other field is advisory or procedural.
type Evaluation struct {
	Action    enum.GovernanceAction `json:"action"`
	Allowed   bool                  `json:"allowed"`
	Approvals []RequiredApproval    `json:"approvals"`
	Blockers  []string              `json:"blockers"`
	Warnings  []string              `json:"warnings"`
	Notices   []Notice              `json:"notices"`
	Deadlines map[string]time.Time  `json:"deadlines"`
	Workflow  *WorkflowSpec         `json:"workflow,omitempty"`
}

func (e *Evaluation) requireBoard() {
	e.Approvals = append(e.Approvals, RequiredApproval{Type: enum.BoardApproval})
}

func (e *Evaluation) requireSpecial() {
	threshold := equity.SpecialResolutionPct
	e.Approvals = append(e.Approvals, RequiredApproval{
		Type:         enum.SpecialResolution,
		ThresholdPct: &threshold,
	})
}

func (e *Evaluation) requireUnanimous() {
	threshold := equity.UnanimousPct
	e.Approvals = append(e.Approvals, RequiredApproval{
		Type:         enum.UnanimousConsent,
		ThresholdPct: &threshold,
	})
}

func (e *Evaluation) hasSpecial() bool {
	for _, a := range e.Approvals {
		if a.Type == enum.SpecialResolution {
			return true
		}
	}
	return false
}

// Evaluate runs the branch for the action tagged on params. It never
// mutates ctx and is safe to call concurrently and repeatedly.
func Evaluate(params Params, ctx Context, now time.Time) Evaluation {
	eval := Evaluation{
		Action:    params.Action(),
		Approvals: []RequiredApproval{},
		Blockers:  []string{},
		Warnings:  []string{},
		Notices:   []Notice{},
		Deadlines: map[string]time.Time{},
	}

	eval.requireBoard()

	switch p := params.(type) {
	case IssuanceParams:
		evaluateIssuance(&eval, p, ctx, now)
	case TransferParams:
		evaluateTransfer(&eval, p, ctx, now)
	case ConversionParams:
		evaluateConversion(&eval, p, ctx, now)
	case BorrowingParams:
		evaluateBorrowing(&eval, p, now)
	case AmendmentParams:
		evaluateAmendment(&eval, p, now)
	case RepurchaseParams:
		evaluateRepurchase(&eval, p, ctx)
	case MergerParams:
		evaluateMerger(&eval, p, now)
	case DividendParams:
		evaluateDividend(&eval, p)
	default:
		// unrecognized actions stay board-only with the standard
		// short workflow
	}

	eval.Allowed = len(eval.Blockers) == 0

	if eval.Workflow == nil && params.Action() != enum.DividendDeclaration {
		eval.Workflow = buildWorkflow(eval.hasSpecial())
	}

	return eval
}

func evaluateIssuance(eval *Evaluation, p IssuanceParams, ctx Context, now time.Time) {
	dilution := equity.DilutionFromIssuance(p.NewShares, ctx.TotalOutstanding)

	if equity.RequiresSpecialResolution(enum.ShareIssuance, dilution, decimal.Zero) {
		eval.requireSpecial()
		eval.Notices = append(eval.Notices, Notice{
			Recipient: "shareholders",
			Subject:   "shareholder meeting for dilutive issuance",
			LeadDays:  equity.MeetingNoticeDays,
			Required:  true,
		})
		eval.Deadlines["shareholder_meeting"] = now.AddDate(0, 0, equity.MeetingNoticeDays)
	}

	if p.Class == enum.Founder && !eval.hasSpecial() {
		eval.requireSpecial()
	}

	outstanding := ctx.OutstandingByClass[p.Class]
	authorized := ctx.AuthorizedByClass[p.Class]

	if outstanding+p.NewShares > authorized {
		eval.Blockers = append(eval.Blockers, fmt.Sprintf(
			"issuance would exceed the authorized cap for %v (%v outstanding + %v new > %v authorized)",
			p.Class, outstanding, p.NewShares, authorized))
	}
}

func evaluateTransfer(eval *Evaluation, p TransferParams, ctx Context, now time.Time) {
	if p.Class == enum.Founder {
		eval.Blockers = append(eval.Blockers, "founder shares are transfer-restricted")
	} else if ctx.RestrictedClasses[p.Class] {
		eval.Blockers = append(eval.Blockers, fmt.Sprintf(
			"share class %v is transfer-restricted", p.Class))
	}

	if p.Class != enum.Common {
		eval.Notices = append(eval.Notices, Notice{
			Recipient: "existing holders",
			Subject:   "right of first refusal",
			LeadDays:  equity.ROFRWindowDays,
			Required:  true,
		})
		eval.Deadlines["rofr_window"] = now.AddDate(0, 0, equity.ROFRWindowDays)
		eval.Approvals = append(eval.Approvals, RequiredApproval{Type: enum.ROFRWaiver})
	}

	pct := equity.PercentageOf(p.Shares, ctx.TotalOutstanding)

	if equity.RequiresSpecialResolution(enum.ShareTransfer, pct, decimal.Zero) {
		eval.requireSpecial()
	}

	resulting := ctx.HolderOutstanding[p.ToHolder] + p.Shares
	resultingPct := equity.PercentageOf(resulting, ctx.TotalOutstanding)

	if resultingPct.GreaterThanOrEqual(equity.ChangeOfControlPct) {
		eval.Warnings = append(eval.Warnings, fmt.Sprintf(
			"transfer takes acquirer to %v%% aggregate ownership, review change-of-control provisions",
			resultingPct))
	}
}

func evaluateConversion(eval *Evaluation, p ConversionParams, ctx Context, now time.Time) {
	if !p.Ratio.IsPositive() {
		eval.Blockers = append(eval.Blockers, fmt.Sprintf(
			"conversion ratio must be positive, got %v", p.Ratio))
	}

	if !p.FromClass.Preferred() {
		eval.Warnings = append(eval.Warnings, fmt.Sprintf(
			"conversion from non-preferred class %v, confirm the class terms permit it",
			p.FromClass))
	}

	if p.QualifiedOffering {
		eval.Notices = append(eval.Notices, Notice{
			Recipient: "shareholders",
			Subject:   "qualified offering conversion",
			LeadDays:  equity.QualifiedOfferingNoticeDays,
			Required:  true,
		})
		eval.Deadlines["offering_notice"] = now.AddDate(0, 0, equity.QualifiedOfferingNoticeDays)
	}

	eval.Workflow = conversionWorkflow()
}

func evaluateBorrowing(eval *Evaluation, p BorrowingParams, now time.Time) {
	if equity.BorrowingExceedsThreshold(p.Amount) {
		eval.requireSpecial()
		eval.Notices = append(eval.Notices, Notice{
			Recipient: "shareholders",
			Subject:   "shareholder meeting for major borrowing",
			LeadDays:  equity.MeetingNoticeDays,
			Required:  true,
		})
		eval.Deadlines["shareholder_meeting"] = now.AddDate(0, 0, equity.MeetingNoticeDays)
	}

	eval.Warnings = append(eval.Warnings,
		"complete a solvency review before drawing down the facility")
}

func evaluateAmendment(eval *Evaluation, p AmendmentParams, now time.Time) {
	switch p.Type {
	case enum.AmendVoting, enum.AmendConversion, enum.AmendLiquidation:
		eval.requireSpecial()
		eval.Notices = append(eval.Notices, Notice{
			Recipient: "shareholders",
			Subject:   "shareholder meeting for constitutional amendment",
			LeadDays:  equity.MeetingNoticeDays,
			Required:  true,
		})
		eval.Deadlines["shareholder_meeting"] = now.AddDate(0, 0, equity.MeetingNoticeDays)
	}

	if p.Type == enum.AmendCharter || len(p.ClassesAffected) > equity.AmendmentClassLimit {
		eval.requireUnanimous()
	}
}

func evaluateRepurchase(eval *Evaluation, p RepurchaseParams, ctx Context) {
	pct := equity.PercentageOf(p.Shares, ctx.TotalOutstanding)

	if pct.GreaterThanOrEqual(equity.RepurchaseSpecialThresholdPct) {
		eval.requireSpecial()
	}

	eval.Warnings = append(eval.Warnings,
		"confirm the company passes the solvency test after the repurchase")
}

func evaluateMerger(eval *Evaluation, p MergerParams, now time.Time) {
	eval.requireSpecial()

	eval.Notices = append(eval.Notices, Notice{
		Recipient: "shareholders",
		Subject:   fmt.Sprintf("shareholder meeting for merger with %v", p.Counterparty),
		LeadDays:  equity.MergerNoticeDays,
		Required:  true,
	})

	eval.Notices = append(eval.Notices, Notice{
		Recipient: "dissenting shareholders",
		Subject:   "appraisal rights",
		LeadDays:  equity.MergerNoticeDays,
		Required:  false,
	})

	eval.Deadlines["shareholder_meeting"] = now.AddDate(0, 0, equity.MergerNoticeDays)
	eval.Deadlines["completion"] = now.AddDate(0, 0, equity.MergerWorkflowDays)

	eval.Workflow = mergerWorkflow()
}

func evaluateDividend(eval *Evaluation, p DividendParams) {
	eval.Warnings = append(eval.Warnings, fmt.Sprintf(
		"confirm retained earnings cover the %v per-share distribution on %v",
		p.AmountPerShare, p.Class))
}
