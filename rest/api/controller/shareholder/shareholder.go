package shareholder

import (
	"strconv"
	"strings"

	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/entities"
	"github.com/alpacahq/goregistry/rest/api/controller/parameter"
	"github.com/alpacahq/goregistry/service/shareholder"
	"github.com/kataras/iris"
)

func Create(ctx api.Context) {
	sReq := entities.CreateShareholderRequest{}
	if err := ctx.Read(&sReq); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	if err := sReq.Verify(); err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Shareholder().WithTx(ctx.Tx())

	sh, err := srv.Create(sReq.Model())
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(sh, iris.StatusCreated)
}

func List(ctx api.Context) {
	query := shareholder.ShareholderQuery{}

	if q := ctx.URLParam("status"); q != "" {
		for _, s := range strings.Split(q, ",") {
			query.Status = append(query.Status, enum.ShareholderStatus(strings.ToUpper(s)))
		}
	}

	if q := ctx.URLParam("entity_type"); q != "" {
		for _, t := range strings.Split(q, ",") {
			query.EntityType = append(query.EntityType, enum.EntityType(strings.ToLower(t)))
		}
	}

	if q := ctx.URLParam("page"); q != "" {
		page, err := strconv.Atoi(q)
		if err != nil {
			ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("page is invalid format"))
			return
		}
		query.Page = page
	}

	if q := ctx.URLParam("per"); q != "" {
		per, err := strconv.Atoi(q)
		if err != nil {
			ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("per is invalid format"))
			return
		}
		query.Per = per
	}

	srv := ctx.Services().Shareholder().WithTx(ctx.Tx())

	holders, meta, err := srv.List(query)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(map[string]interface{}{
		"shareholders": holders,
		"meta":         meta,
	})
}

func Get(ctx api.Context) {
	shareholderID, err := parameter.GetParamShareholderID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Shareholder().WithTx(ctx.Tx())

	sh, err := srv.GetByID(shareholderID)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(sh)
	}
}

func Patch(ctx api.Context) {
	shareholderID, err := parameter.GetParamShareholderID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	patches := map[string]interface{}{}
	if err := ctx.Read(&patches); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	srv := ctx.Services().Shareholder().WithTx(ctx.Tx())
	srv.SetForUpdate()

	sh, err := srv.Patch(shareholderID, patches)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(sh)
	}
}

// Delete marks the holder exited. The service refuses while any
// outstanding shares remain, so the register never loses a holder
// that still appears on the cap table.
func Delete(ctx api.Context) {
	shareholderID, err := parameter.GetParamShareholderID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Shareholder().WithTx(ctx.Tx())
	srv.SetForUpdate()

	if _, err := srv.SetStatus(shareholderID, enum.ShareholderExited); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.RespondWithStatus(nil, iris.StatusNoContent)
	}
}

func Holdings(ctx api.Context) {
	shareholderID, err := parameter.GetParamShareholderID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	// confirm the holder exists so an unknown id 404s instead of
	// returning an empty list
	sSrv := ctx.Services().Shareholder().WithTx(ctx.Tx())
	if _, err := sSrv.GetByID(shareholderID); err != nil {
		ctx.RespondError(err)
		return
	}

	hSrv := ctx.Services().Holding().WithTx(ctx.Tx())

	holdings, err := hSrv.ForShareholder(shareholderID)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(holdings)
	}
}

func Entries(ctx api.Context) {
	shareholderID, err := parameter.GetParamShareholderID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Ledger().WithTx(ctx.Tx())

	entries, err := srv.EntriesFor(shareholderID)
	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(entries)
	}
}
