package binder

import (
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/accesskey"
	"github.com/alpacahq/goregistry/rest/api/controller/captable"
	"github.com/alpacahq/goregistry/rest/api/controller/clock"
	"github.com/alpacahq/goregistry/rest/api/controller/governance"
	"github.com/alpacahq/goregistry/rest/api/controller/holding"
	"github.com/alpacahq/goregistry/rest/api/controller/ledger"
	"github.com/alpacahq/goregistry/rest/api/controller/registrar"
	"github.com/alpacahq/goregistry/rest/api/controller/resolution"
	"github.com/alpacahq/goregistry/rest/api/controller/shareclass"
	"github.com/alpacahq/goregistry/rest/api/controller/shareholder"
	"github.com/alpacahq/goregistry/rest/api/controller/status"
	"github.com/alpacahq/goregistry/rest/api/controller/workflow"
	"github.com/alpacahq/goregistry/rest/api/middleware/httplogger"
	"github.com/alpacahq/goregistry/utils"
	"github.com/iris-contrib/middleware/cors"
	"github.com/kataras/iris"
)

type APIHandler interface {
	Authenticate(func(api.Context), ...bool) iris.Handler
	AuthenticateWithAll(func(api.Context), ...bool) iris.Handler
	NoAuth(func(api.Context), ...bool) iris.Handler
	RouteNotFound(api.Context)
}

// Register binds all of the share register API handlers
// to their respective endpoints
func Register(api APIHandler, r iris.Party) {
	//----------------------------------
	//    Register API
	//----------------------------------
	r.Use(httplogger.New())

	// CORS
	{
		getOrigins := func() []string {
			switch {
			case utils.Prod():
				return []string{"https://registry.alpaca.markets"}
			default:
				// staging/dev mode
				return []string{"*"}
			}
		}

		crs := cors.New(cors.Options{
			AllowedOrigins: getOrigins(),
			AllowedMethods: []string{
				iris.MethodGet,
				iris.MethodPost,
				iris.MethodPatch,
				iris.MethodDelete,
				iris.MethodOptions,
			},
			AllowedHeaders:     []string{"*"},
			AllowCredentials:   true,
			OptionsPassthrough: false,
		})

		r.Use(crs)
		r.AllowMethods(iris.MethodOptions) // <- important for the preflight.
	}

	// shareholders
	r.Get("/shareholders", api.Authenticate(shareholder.List))
	r.Get("/shareholders/{shareholder_id}", api.Authenticate(shareholder.Get))
	r.Post("/shareholders", api.AuthenticateWithAll(shareholder.Create, utils.StandBy()))
	r.Patch("/shareholders/{shareholder_id}", api.AuthenticateWithAll(shareholder.Patch, utils.StandBy()))
	r.Delete("/shareholders/{shareholder_id}", api.AuthenticateWithAll(shareholder.Delete, utils.StandBy()))
	r.Get("/shareholders/{shareholder_id}/holdings", api.Authenticate(shareholder.Holdings))
	r.Get("/shareholders/{shareholder_id}/entries", api.Authenticate(shareholder.Entries))

	// holdings by class
	r.Get("/holdings", api.Authenticate(holding.List))

	// share classes
	r.Get("/classes", api.Authenticate(shareclass.List))
	r.Get("/classes/{class}", api.Authenticate(shareclass.Get))

	// ledger operations - each one runs through the policy engine
	// before it mutates anything
	r.Post("/ledger/issuances", api.Authenticate(ledger.Issue, utils.StandBy()))
	r.Post("/ledger/bonus_issues", api.Authenticate(ledger.Bonus, utils.StandBy()))
	r.Post("/ledger/transfers", api.Authenticate(ledger.Transfer, utils.StandBy()))
	r.Post("/ledger/conversions", api.Authenticate(ledger.Convert, utils.StandBy()))
	r.Post("/ledger/repurchases", api.Authenticate(ledger.Repurchase, utils.StandBy()))
	r.Post("/ledger/dividends", api.Authenticate(ledger.Dividend, utils.StandBy()))

	// treasury formalities - not policy gated, so full permission only
	r.Post("/ledger/cancellations", api.AuthenticateWithAll(ledger.Cancel, utils.StandBy()))
	r.Post("/ledger/splits", api.AuthenticateWithAll(ledger.Split, utils.StandBy()))

	r.Get("/ledger/entries", api.Authenticate(ledger.Entries))

	// cap table
	r.Get("/captable", api.Authenticate(captable.Get))
	r.Get("/captable/snapshots", api.Authenticate(captable.Snapshots))
	r.Get("/captable/snapshots/{snapshot_id}", api.Authenticate(captable.GetSnapshot))
	r.Post("/captable/snapshots", api.AuthenticateWithAll(captable.GenerateSnapshot, utils.StandBy()))

	// governance evaluations - read only, blockers come back as data
	r.Post("/governance/evaluations", api.Authenticate(governance.Evaluate))

	// approval workflows
	r.Get("/workflows", api.Authenticate(workflow.List))
	r.Get("/workflows:pending", api.Authenticate(workflow.Pending))
	r.Get("/workflows:overdue", api.Authenticate(workflow.Overdue))
	r.Get("/workflows/{workflow_id}", api.Authenticate(workflow.Get))
	r.Post("/workflows", api.Authenticate(workflow.Create, utils.StandBy()))
	r.Post("/workflows/{workflow_id}/advance", api.AuthenticateWithAll(workflow.Advance, utils.StandBy()))
	r.Post("/workflows/{workflow_id}/cancel", api.AuthenticateWithAll(workflow.Cancel, utils.StandBy()))

	// resolutions
	r.Get("/workflows/{workflow_id}/resolutions", api.Authenticate(resolution.ListFor))
	r.Post("/workflows/{workflow_id}/resolutions", api.AuthenticateWithAll(resolution.Generate, utils.StandBy()))
	r.Get("/resolutions/{resolution_id}", api.Authenticate(resolution.Get))
	r.Post("/resolutions/{resolution_id}/votes", api.AuthenticateWithAll(resolution.Vote, utils.StandBy()))
	r.Post("/resolutions/{resolution_id}/signatures", api.AuthenticateWithAll(resolution.Sign, utils.StandBy()))
	r.Post("/resolutions/{resolution_id}/file", api.AuthenticateWithAll(resolution.File, utils.StandBy()))

	// business day clock
	r.Get("/clock", api.Authenticate(clock.Get))

	// service status
	r.Get("/status", api.NoAuth(status.Get))

	r.Any("/", api.NoAuth(api.RouteNotFound))
	r.Any("/{anypath}", api.NoAuth(api.RouteNotFound))
}

// Admin binds the admin key management handlers. Requests carry an
// admin scoped JWT and are checked against the admin_id in the path.
func Admin(api *api.API, r iris.Party) {
	//----------------------------------
	//    Admin API
	//----------------------------------
	r.Use(httplogger.New())

	r.Get("/admins/{admin_id}/access_keys", api.AuthenticateAdmin(accesskey.List))
	r.Post("/admins/{admin_id}/access_keys", api.AuthenticateAdmin(accesskey.Create))
	r.Delete("/admins/{admin_id}/access_keys/{key_id}", api.AuthenticateAdmin(accesskey.Delete))
}

// Registrar binds the transfer agent push endpoints
// to their respective endpoints
func Registrar(api *api.API, r iris.Party) {
	// ---------------------------------
	//    Registrar push API
	// ---------------------------------
	r.Use(httplogger.New())

	r.Post("/positions", api.AuthenticateRegistrar(registrar.PushPositions))
}
