package constants

import (
	"strconv"

	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
)

// this package is for constants that are used in multiple
// locations across the code and don't strictly apply to
// another package (i.e. models etc.)

var (
	// OverdueGraceDays is how long past a workflow step's
	// deadline the deadline worker waits before escalating.
	// Operational tuning only - constitutional thresholds are
	// fixed in the equity package.
	OverdueGraceDays = func() int {
		days, err := strconv.Atoi(env.GetVar("OVERDUE_GRACE_DAYS"))
		if err != nil {
			log.Error(
				"invalid constant set",
				"name", "OVERDUE_GRACE_DAYS",
				"value", env.GetVar("OVERDUE_GRACE_DAYS"),
				"error", err)
			return 0
		}

		return days
	}()
)
