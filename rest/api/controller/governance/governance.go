package governance

import (
	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/entities"
	"github.com/alpacahq/goregistry/service/policy"
)

// Evaluate runs the policy engine against the live cap table and
// returns the full evaluation. Blockers come back as data with a 200,
// "disallowed" is an answer, not a failure.
func Evaluate(ctx api.Context) {
	req := entities.EvaluationRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	params, err := entities.DecodeParams(req.Action, req.Params)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	pCtx, err := ctx.Services().CapTable().WithTx(ctx.Tx()).PolicyContext()
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(policy.Evaluate(params, *pCtx, clock.Now()))
}
