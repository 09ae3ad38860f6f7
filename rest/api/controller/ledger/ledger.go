package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/entities"
	"github.com/alpacahq/goregistry/service/ledger"
	"github.com/alpacahq/goregistry/service/policy"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
)

// authorize evaluates the proposed action against the live cap table
// and verifies the attached workflow when the policy demands one. It
// returns the ledger service primed with the governance references,
// which are recorded on every entry it writes.
func authorize(ctx api.Context, params policy.Params, auth entities.Authorization) (ledger.LedgerService, error) {
	pCtx, err := ctx.Services().CapTable().WithTx(ctx.Tx()).PolicyContext()
	if err != nil {
		return nil, err
	}

	eval := policy.Evaluate(params, *pCtx, clock.Now())

	if !eval.Allowed {
		return nil, grerrors.Forbidden.WithMsg(strings.Join(eval.Blockers, "; "))
	}

	workflowID, err := auth.WorkflowUUID()
	if err != nil {
		return nil, err
	}

	resolutionID, err := auth.ResolutionUUID()
	if err != nil {
		return nil, err
	}

	if eval.Workflow != nil {
		if workflowID == nil {
			return nil, grerrors.Forbidden.WithMsg(
				fmt.Sprintf("%v requires an approved workflow", params.Action().Readable()))
		}

		wf, err := ctx.Services().Workflow().WithTx(ctx.Tx()).Get(*workflowID)
		if err != nil {
			return nil, err
		}

		if wf.Action != params.Action() {
			return nil, grerrors.Forbidden.WithMsg(
				fmt.Sprintf("workflow %v authorizes %v, not %v",
					wf.ID, wf.Action.Readable(), params.Action().Readable()))
		}

		if wf.Status != enum.WorkflowApproved {
			return nil, grerrors.Forbidden.WithMsg(
				fmt.Sprintf("workflow %v is %v, not approved", wf.ID, wf.Status))
		}
	}

	srv := ctx.Services().Ledger().WithTx(ctx.Tx())
	srv.SetAuthorization(workflowID, resolutionID)

	return srv, nil
}

func actor(ctx api.Context) string {
	return ctx.Session().ID.String()
}

func Issue(ctx api.Context) {
	req := entities.IssuanceRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	holder, err := uuid.FromString(req.ShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("shareholder_id is invalid format"))
		return
	}

	srv, err := authorize(ctx, policy.IssuanceParams{
		Holder:        req.ShareholderID,
		Class:         req.Class,
		NewShares:     req.Shares,
		PricePerShare: req.PricePerShare,
	}, req.Authorization)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	holding, entry, err := srv.IssueShares(holder, req.Class, req.Shares, req.PricePerShare, actor(ctx))
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(entities.IssuanceResult{Holding: holding, Entry: entry}, iris.StatusCreated)
}

func Bonus(ctx api.Context) {
	req := entities.BonusIssueRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	holder, err := uuid.FromString(req.ShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("shareholder_id is invalid format"))
		return
	}

	// a bonus issue dilutes like any issuance, it is just unpaid
	srv, err := authorize(ctx, policy.IssuanceParams{
		Holder:    req.ShareholderID,
		Class:     req.Class,
		NewShares: req.Shares,
	}, req.Authorization)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	holding, entry, err := srv.BonusIssue(holder, req.Class, req.Shares, actor(ctx))
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(entities.IssuanceResult{Holding: holding, Entry: entry}, iris.StatusCreated)
}

func Transfer(ctx api.Context) {
	req := entities.TransferRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	fromHolder, err := uuid.FromString(req.FromShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("from_shareholder_id is invalid format"))
		return
	}

	toHolder, err := uuid.FromString(req.ToShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("to_shareholder_id is invalid format"))
		return
	}

	srv, err := authorize(ctx, policy.TransferParams{
		FromHolder:    req.FromShareholderID,
		ToHolder:      req.ToShareholderID,
		Class:         req.Class,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
	}, req.Authorization)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	entry, err := srv.TransferShares(fromHolder, toHolder, req.Class, req.Shares, req.PricePerShare, actor(ctx))
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(entry, iris.StatusCreated)
}

func Convert(ctx api.Context) {
	req := entities.ConversionRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	holder, err := uuid.FromString(req.ShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("shareholder_id is invalid format"))
		return
	}

	// default the ratio from the class terms when the caller omits it
	ratio := req.Ratio
	if ratio.IsZero() {
		if from := ctx.Services().ClassCache().Get(req.FromClass); from != nil && from.ConversionRatio != nil {
			ratio = *from.ConversionRatio
		}
	}

	srv, err := authorize(ctx, policy.ConversionParams{
		Holder:    req.ShareholderID,
		FromClass: req.FromClass,
		ToClass:   req.ToClass,
		Shares:    req.Shares,
		Ratio:     ratio,
	}, req.Authorization)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	entry, err := srv.ConvertShares(holder, req.FromClass, req.ToClass, req.Shares, ratio, actor(ctx))
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(entry, iris.StatusCreated)
}

func Repurchase(ctx api.Context) {
	req := entities.RepurchaseRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	holder, err := uuid.FromString(req.ShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("shareholder_id is invalid format"))
		return
	}

	srv, err := authorize(ctx, policy.RepurchaseParams{
		Holder:        req.ShareholderID,
		Class:         req.Class,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
	}, req.Authorization)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	entry, err := srv.RepurchaseShares(holder, req.Class, req.Shares, req.PricePerShare, actor(ctx))
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(entry, iris.StatusCreated)
}

// Cancel retires repurchased shares. This is a treasury formality
// recorded by the register, so no policy evaluation runs here. The
// route is gated to full-permission sessions in the binder.
func Cancel(ctx api.Context) {
	req := entities.CancellationRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	holder, err := uuid.FromString(req.ShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("shareholder_id is invalid format"))
		return
	}

	workflowID, err := req.WorkflowUUID()
	if err != nil {
		ctx.RespondError(err)
		return
	}

	resolutionID, err := req.ResolutionUUID()
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Ledger().WithTx(ctx.Tx())
	srv.SetAuthorization(workflowID, resolutionID)

	entry, err := srv.CancelShares(holder, req.Class, req.Shares, actor(ctx))
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(entry, iris.StatusCreated)
}

func Split(ctx api.Context) {
	req := entities.SplitRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	workflowID, err := req.WorkflowUUID()
	if err != nil {
		ctx.RespondError(err)
		return
	}

	resolutionID, err := req.ResolutionUUID()
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Ledger().WithTx(ctx.Tx())
	srv.SetAuthorization(workflowID, resolutionID)

	splitEntries, err := srv.SplitShares(req.Class, req.RatioNumerator, req.RatioDenominator, actor(ctx))
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(splitEntries, iris.StatusCreated)
}

func Dividend(ctx api.Context) {
	req := entities.DividendRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	srv, err := authorize(ctx, policy.DividendParams{
		Class:          req.Class,
		AmountPerShare: req.AmountPerShare,
	}, req.Authorization)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	entry, err := srv.RecordDividend(req.Class, req.AmountPerShare, actor(ctx))
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(entry, iris.StatusCreated)
}

func Entries(ctx api.Context) {
	limit := 100
	if q := ctx.URLParam("limit"); q != "" {
		l, err := strconv.Atoi(q)
		if err != nil || l <= 0 {
			ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("limit is invalid format"))
			return
		}
		limit = l
	}

	srv := ctx.Services().Ledger().WithTx(ctx.Tx())

	ledgerEntries, err := srv.Entries(limit)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(ledgerEntries)
	}
}
