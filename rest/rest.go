// The rest package defines goregistry's RESTful API service
package rest

import (
	"context"

	"github.com/alpacahq/goregistry/debugui"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/binder"
	"github.com/alpacahq/goregistry/service/registry"
	"github.com/alpacahq/goregistry/stream"
	"github.com/alpacahq/goregistry/utils"
	"github.com/kataras/iris"
)

var app *iris.Application

func Start(port string, services registry.Registry) error {
	return run((":" + port), services)
}

func Shutdown(ctx context.Context) error {
	if app != nil {
		return app.Shutdown(ctx)
	}
	return nil
}

func bindAPI(api *api.API, binder func(*api.API, iris.Party)) func(iris.Party) {
	return func(r iris.Party) {
		binder(api, r)
	}
}

func bindRegisterAPI(api *api.API, binder func(binder.APIHandler, iris.Party)) func(iris.Party) {
	return func(r iris.Party) {
		binder(api, r)
	}
}

func run(host string, services registry.Registry) error {
	app = iris.New()

	apis := api.New(api.NewAuthenticator(), services)

	// registrar push API
	app.PartyFunc("/goregistry/api/_registrar/v1", bindAPI(apis, binder.Registrar))

	// admin key management API
	app.PartyFunc("/goregistry/api/_admin/v1", bindAPI(apis, binder.Admin))

	// register API / (v1)
	app.PartyFunc("/goregistry/api/v1", bindRegisterAPI(apis, binder.Register))

	if utils.Dev() {
		dui := &debugui.DebugUI{}
		app.PartyFunc("/goregistry/debugui", dui.Bind)
	}

	// heartbeat
	app.HandleMany("GET HEAD", "/goregistry/heartbeat", func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusOK)
		ctx.JSON(struct {
			Status  string `json:"status"`
			Version string `json:"version"`
		}{
			"alive", utils.Version,
		})
	})

	// streaming
	app.Any("/stream", iris.FromStd(stream.Handler))

	return app.Run(
		iris.Addr(host),
		iris.WithConfiguration(iris.Configuration{
			// Disable it to re-fetch request body again for logging purpose.
			DisableBodyConsumptionOnUnmarshal: true,
			// Enable real IP forwarding, which is reliable when it is on private proxy.
			RemoteAddrHeaders: map[string]bool{
				"X-Forwarded-For": true,
			},
		}),
		iris.WithoutInterruptHandler,
	)
}
