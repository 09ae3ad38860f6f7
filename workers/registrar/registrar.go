package registrar

import (
	"time"

	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/registrar"
)

// Work pulls the transfer agent's position drop for the given date and
// reconciles it against the register.
func Work(asOf time.Time) {
	if err := (&registrar.Processor{}).Pull(asOf, 5); err != nil {
		log.Error("failed to pull registrar files", "asOf", asOf, "error", err)
	}
}
