package main

import (
	"flag"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/goregistry/utils/date"
	"github.com/alpacahq/goregistry/utils/initializer"
	"github.com/alpacahq/goregistry/workers/snapshot"
)

// Re-runs the register snapshot for a single date outside the worker
// schedule, for days the cron missed.
func main() {
	initializer.Initialize()

	asOf := flag.String("date", clock.Now().Format("2006-01-02"), "date to snapshot")
	flag.Parse()

	if _, err := date.ParseDate(*asOf); err != nil {
		panic("expected -date in 2006-01-02 form")
	}

	if err := snapshot.Process(*asOf); err != nil {
		panic(err)
	}
}
