package shareclass

import (
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/parameter"
)

func List(ctx api.Context) {
	srv := ctx.Services().ShareClass().WithTx(ctx.Tx())

	classes, err := srv.List()
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(classes)
	}
}

func Get(ctx api.Context) {
	class, err := parameter.GetClass(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	// read through the service rather than the cache so the
	// authorized counts are current
	srv := ctx.Services().ShareClass().WithTx(ctx.Tx())

	sc, err := srv.Get(class.Class)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(sc)
	}
}
