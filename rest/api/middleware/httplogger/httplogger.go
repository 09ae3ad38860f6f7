// Package httplogger ships one structured record per API request to
// the fluent aggregator, with sensitive request fields masked.
package httplogger

import (
	"io/ioutil"
	"os"

	"github.com/buger/jsonparser"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/fluentlogger"
	"github.com/alpacahq/gopaca/log"
	"github.com/kataras/iris"
	"github.com/kataras/iris/context"
)

type HTTPLogger struct {
	logger *fluentlogger.FluentLogger
}

func New() iris.Handler {
	m := HTTPLogger{
		logger: fluentlogger.Logger(),
	}
	return m.ServeHTTP
}

// request fields that never reach the log stream
var masks = []string{
	"tax_id",
}

func (h *HTTPLogger) ServeHTTP(ctx context.Context) {
	start := clock.Now()
	ctx.Next()
	elapsed := clock.Now().Sub(start)

	service := env.GetVar("KUBERNETES_POD_NAME")
	if service == "" {
		service = os.Args[0]
	}

	body, _ := ioutil.ReadAll(ctx.Request().Body)
	if len(body) > 0 {
		for _, mask := range masks {
			if _, _, _, err := jsonparser.Get(body, mask); err == nil {
				body, _ = jsonparser.Set(body, []byte("xxx"), mask)
			}
		}
	}

	msg := map[string]interface{}{
		"service":     service,
		"node":        env.GetVar("KUBERNETES_NODE_NAME"),
		"deployment":  env.GetVar("REGISTRY_MODE"),
		"elapsed":     elapsed.Seconds(),
		"status_code": ctx.GetStatusCode(),
		"ip":          ctx.RemoteAddr(),
		"method":      ctx.Method(),
		"path":        ctx.Path(),
		"query":       ctx.Request().URL.RawQuery,
		"key_id":      ctx.Request().Header.Get("APCA-API-KEY-ID"),
		"admin_id":    ctx.Values().GetString("admin_id"),
		"body":        string(body),
	}

	h.logger.Post("alpaca.httplog", msg)

	log.Debug("httplog",
		"method", msg["method"],
		"path", msg["path"],
		"query", msg["query"],
		"status_code", msg["status_code"],
		"elapsed", msg["elapsed"],
		"ip", msg["ip"],
		"key_id", msg["key_id"],
		"admin_id", msg["admin_id"],
		"body", msg["body"],
	)
}
