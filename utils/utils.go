package utils

import (
	"strconv"

	"github.com/alpacahq/gopaca/env"
)

// Dev returns true if the registry is in development mode
func Dev() bool {
	return env.GetVar("REGISTRY_MODE") == "DEV"
}

// Stg returns true if the registry is in staging mode
func Stg() bool {
	return env.GetVar("REGISTRY_MODE") == "STG"
}

// Prod returns true if the registry is in production mode
func Prod() bool {
	return env.GetVar("REGISTRY_MODE") == "PROD"
}

// StandBy returns true if the registry is in standby mode, where
// reads stay up but every mutating route answers 403
func StandBy() bool {
	standby, _ := strconv.ParseBool(env.GetVar("STANDBY_MODE"))
	return standby
}

var (
	Sha1hash string
	Version  string = "dev"
)
