package status

import (
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/utils"
)

type Health struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Mode     string `json:"mode"`
	Database string `json:"database"`
}

func Get(ctx api.Context) {
	h := Health{
		Status:   "ok",
		Version:  utils.Version,
		Mode:     env.GetVar("REGISTRY_MODE"),
		Database: "ok",
	}

	if err := db.DB().DB().Ping(); err != nil {
		h.Status = "degraded"
		h.Database = err.Error()
	}

	ctx.Respond(h)
}
