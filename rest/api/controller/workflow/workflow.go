package workflow

import (
	"strings"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/entities"
	"github.com/alpacahq/goregistry/rest/api/controller/parameter"
	"github.com/alpacahq/goregistry/service/policy"
	"github.com/kataras/iris"
)

// Create evaluates the proposed action and persists the workflow the
// policy generated. A blocked action never gets a workflow.
func Create(ctx api.Context) {
	req := entities.CreateWorkflowRequest{}
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

	eval := policy.Evaluate(params, *pCtx, clock.Now())

	if !eval.Allowed {
		ctx.RespondError(grerrors.Forbidden.WithMsg(strings.Join(eval.Blockers, "; ")))
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	wf, err := srv.Create(eval.Workflow, ctx.Session().ID.String(), params.Action(), params)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	// the evaluation rides along so callers see the notices and
	// deadlines they are now on the hook for
	ctx.RespondWithStatus(map[string]interface{}{
		"workflow":   wf,
		"evaluation": eval,
	}, iris.StatusCreated)
}

func List(ctx api.Context) {
	status := enum.WorkflowStatus(ctx.URLParam("status"))
	if status == "" {
		status = enum.WorkflowPending
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	workflows, err := srv.ByStatus(status)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(workflows)
	}
}

func Get(ctx api.Context) {
	id, err := parameter.GetParamWorkflowID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	wf, err := srv.Get(id)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(wf)
	}
}

func Advance(ctx api.Context) {
	id, err := parameter.GetParamWorkflowID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := entities.AdvanceStepRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	wf, err := srv.Advance(id, req.Outcome, req.Response, ctx.Session().ID.String())
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(wf)
	}
}

func Cancel(ctx api.Context) {
	id, err := parameter.GetParamWorkflowID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := entities.CancelWorkflowRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	wf, err := srv.Cancel(id, req.Reason, ctx.Session().ID.String())
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(wf)
	}
}

func Pending(ctx api.Context) {
	actor := enum.StepActor(ctx.URLParam("actor"))
	if actor == "" {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("actor is required"))
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	workflows, err := srv.PendingFor(actor)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(workflows)
	}
}

func Overdue(ctx api.Context) {
	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	workflows, err := srv.Overdue(clock.Now())
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(workflows)
	}
}
