package main

import (
	stdContext "context"
	"flag"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/gopaca/rmq/pubsub"
	"github.com/alpacahq/goregistry/external/slack"
	"github.com/alpacahq/goregistry/grreg"
	"github.com/alpacahq/goregistry/metrics/server"
	"github.com/alpacahq/goregistry/rest"
	"github.com/alpacahq/goregistry/stream"
	"github.com/alpacahq/goregistry/utils/grevents"
	"github.com/alpacahq/goregistry/utils/initializer"
	"github.com/alpacahq/goregistry/utils/signalman"
	"go.uber.org/zap/zapcore"
)

func shutdown() error {
	timeout := time.Second
	ctx, cancel := stdContext.WithTimeout(stdContext.Background(), timeout)
	defer cancel()
	return rest.Shutdown(ctx)
}

func init() {
	// set the clock
	clock.Set()

	rand.Seed(clock.Now().UTC().UnixNano())

	// register env defaults
	initializer.Initialize()

	flag.Parse()

	// log errors to slack
	log.Logger().AddCallback(
		"goregistry_slack_errors",
		zapcore.ErrorLevel,
		func(i interface{}) {
			msg := slack.NewServerError()
			msg.SetBody(i)
			slack.Notify(msg)
		},
	)

	// set deployment level on logger
	log.Logger().SetDeploymentLevel(env.GetVar("REGISTRY_MODE"))

	grevents.RegisterSignalHandler()

	signalman.RegisterFunc("rest_shutdown", shutdown)
}

func main() {

	go func() {
		if err := server.Serve(); err != nil && err != http.ErrServerClosed {
			log.Error("stopped metrics server", "error", err)
		}
	}()

	c, cancel := pubsub.NewPubSub("stream").Subscribe()

	stream.Initialize(grreg.Services().AccessKey(), c, cancel)

	log.Info("goregistry is live", "mode", env.GetVar("REGISTRY_MODE"), "clock", clock.Now())

	signalman.Start()

	go func() {
		grevents.RunForever()
	}()

	if err := rest.Start(env.GetVar("REGISTRY_PORT"), grreg.Services()); err != nil {
		if !strings.Contains(err.Error(), "Server closed") {
			log.Fatal("rest server unexpectedly exited", "error", err)
		}
	}

	defer db.DB().Close()

	log.Info("waiting for graceful shutdown")
	signalman.Wait()
}
