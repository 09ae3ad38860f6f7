package captable

import (
	"strconv"

	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/entities"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
)

func Get(ctx api.Context) {
	// the projection reads holdings and shareholders together
	srv := ctx.Services().CapTable().WithTx(ctx.RepeatableTx())

	table, err := srv.GetCapTable()
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(table)
	}
}

func GenerateSnapshot(ctx api.Context) {
	req := entities.SnapshotRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	srv := ctx.Services().CapTable().WithTx(ctx.RepeatableTx())

	snap, err := srv.GenerateSnapshot(req.Notes, ctx.Session().ID.String())
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(snap, iris.StatusCreated)
}

func Snapshots(ctx api.Context) {
	limit := 30
	if q := ctx.URLParam("limit"); q != "" {
		l, err := strconv.Atoi(q)
		if err != nil || l <= 0 {
			ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("limit is invalid format"))
			return
		}
		limit = l
	}

	srv := ctx.Services().CapTable().WithTx(ctx.Tx())

	snaps, err := srv.Snapshots(limit)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(snaps)
	}
}

func GetSnapshot(ctx api.Context) {
	id, err := uuid.FromString(ctx.Params().Get("snapshot_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("snapshot_id is invalid format"))
		return
	}

	srv := ctx.Services().CapTable().WithTx(ctx.Tx())

	snap, err := srv.GetSnapshot(id)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(snap)
	}
}
