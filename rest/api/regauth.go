package api

import (
	"net"
	"strings"
	"sync"

	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/kataras/iris"
)

var (
	registrarNet  *net.IPNet
	registrarOnce sync.Once
)

// AuthenticateRegistrar gates the endpoints the external transfer
// agent pushes position files to. A shared token plus an optional
// source CIDR, since the agent cannot hold per-admin credentials.
func (api *API) AuthenticateRegistrar(handler func(Context)) iris.Handler {
	return api.Handler(func(ctx Context) {
		var err error

		registrarOnce.Do(func() {
			if env.GetVar("REGISTRAR_CIDR") != "" {
				_, registrarNet, err = net.ParseCIDR(env.GetVar("REGISTRAR_CIDR"))
			}
		})

		if err != nil {
			ctx.RespondError(grerrors.InternalServerError)
			return
		}

		key := ctx.Request().Header.Get("APCA-REGISTRAR-KEY")

		if !strings.EqualFold(key, env.GetVar("REGISTRAR_AUTH_TOKEN")) {
			ctx.RespondError(grerrors.NewUnauthorized(40110000, "invalid access key"))
			return
		}

		if registrarNet != nil && !registrarNet.Contains(net.ParseIP(ctx.RemoteAddr())) {
			ctx.RespondError(grerrors.NewUnauthorized(40110000, "invalid source ip"))
			return
		}

		handler(ctx)
	})
}
