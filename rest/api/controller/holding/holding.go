package holding

import (
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/rest/api"
)

// List returns all holdings of one class, ordered by shareholder.
func List(ctx api.Context) {
	classKey := ctx.URLParam("class")
	if classKey == "" {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("class is required"))
		return
	}

	class := enum.ShareClass(classKey)
	if ctx.Services().ClassCache().Get(class) == nil {
		ctx.RespondError(grerrors.NotFound.WithMsg("share class not found"))
		return
	}

	srv := ctx.Services().Holding().WithTx(ctx.Tx())

	holdings, err := srv.ByClass(class)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(holdings)
	}
}
