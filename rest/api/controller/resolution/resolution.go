package resolution

import (
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/entities"
	"github.com/alpacahq/goregistry/rest/api/controller/parameter"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
)

func Generate(ctx api.Context) {
	workflowID, err := parameter.GetParamWorkflowID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := entities.GenerateResolutionRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	res, err := srv.GenerateResolution(workflowID, req.Kind, req.Title, req.Description)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(res, iris.StatusCreated)
}

func ListFor(ctx api.Context) {
	workflowID, err := parameter.GetParamWorkflowID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	resolutions, err := srv.ResolutionsFor(workflowID)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(resolutions)
	}
}

func Get(ctx api.Context) {
	id, err := parameter.GetParamResolutionID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	res, err := srv.GetResolution(id)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(res)
	}
}

func Vote(ctx api.Context) {
	id, err := parameter.GetParamResolutionID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := entities.VoteRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	shareholderID, err := uuid.FromString(req.ShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("shareholder_id is invalid format"))
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	res, err := srv.CastVote(id, shareholderID, req.Favor)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(res)
	}
}

func Sign(ctx api.Context) {
	id, err := parameter.GetParamResolutionID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := entities.SignatureRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := req.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	shareholderID, err := uuid.FromString(req.ShareholderID)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("shareholder_id is invalid format"))
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	res, err := srv.SignResolution(id, shareholderID, true)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(res)
	}
}

func File(ctx api.Context) {
	id, err := parameter.GetParamResolutionID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Workflow().WithTx(ctx.Tx())

	res, err := srv.FileResolution(id)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(res)
	}
}
