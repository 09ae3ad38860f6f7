package slack

import (
	"github.com/alpacahq/goregistry/utils"
)

// Notify routes the message to the channel matching the current
// deployment. Dev deployments send nothing.
func Notify(msg Message) {
	switch {
	case utils.Stg():
		msg.SendStaging()
	case utils.Prod():
		msg.SendProduction()
	}
}
