package clock

import (
	"time"

	"github.com/alpacahq/gopaca/calendar"
	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/goregistry/rest/api"
)

// ClockReading reports the register's notion of now. Notice windows
// and workflow deadlines are computed against this clock, so exposing
// it lets callers line their own date math up with ours.
type ClockReading struct {
	Timestamp       time.Time `json:"timestamp"`
	IsBusinessDay   bool      `json:"is_business_day"`
	NextBusinessDay time.Time `json:"next_business_day"`
}

func Get(ctx api.Context) {

	now := clock.Now().In(calendar.NY)

	ctx.Respond(
		ClockReading{
			Timestamp:       now,
			IsBusinessDay:   calendar.IsMarketDay(now),
			NextBusinessDay: calendar.NextOpen(now),
		},
	)
}
