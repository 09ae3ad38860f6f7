package accesskey

import (
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/parameter"
	"github.com/kataras/iris"
)

func List(ctx api.Context) {
	adminID, err := parameter.GetParamAdminID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().AccessKey().WithTx(ctx.Tx())

	accessKeys, err := srv.List(adminID)

	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(accessKeys)
	}
}

func Create(ctx api.Context) {
	adminID, err := parameter.GetParamAdminID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().AccessKey().WithTx(ctx.Tx())

	accessKey, err := srv.Create(adminID)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(accessKey)
	}
}

func Delete(ctx api.Context) {
	adminID, err := parameter.GetParamAdminID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().AccessKey().WithTx(ctx.Tx())

	keyID := ctx.Params().Get("key_id")

	if _, err := srv.Disable(adminID, keyID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.RespondWithStatus(nil, iris.StatusNoContent)
	}
}
