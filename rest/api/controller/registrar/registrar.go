package registrar

import (
	"io/ioutil"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/registrar"
	"github.com/alpacahq/goregistry/registrar/files"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/kataras/iris"
)

// PushPositions ingests a position file delivered over HTTPS for
// agents that prefer it to the SFTP drop. The file takes the same
// path as a pulled one, and the sync opens its own transaction per
// record, so no request transaction is used here.
func PushPositions(ctx api.Context) {
	data, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil || len(data) == 0 {
		ctx.RespondError(grerrors.RequestBodyLoadFailure)
		return
	}

	asOf := clock.Now()

	if param := ctx.URLParam("as_of"); param != "" {
		t, err := time.Parse("2006-01-02", param)
		if err != nil {
			ctx.RespondError(grerrors.InvalidRequestParam.
				WithMsg("as_of must be formatted as 2006-01-02"))
			return
		}
		asOf = t
	}

	metric, err := (&registrar.Processor{}).ProcessFile(asOf, &files.PositionFile{}, data)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.RespondWithStatus(metric, iris.StatusCreated)
}
