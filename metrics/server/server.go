package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/metrics"
)

func registryMetricsHandler(w http.ResponseWriter, r *http.Request) {
	regMetrics, err := metrics.GetRegistryMetrics()
	if err != nil {
		log.Error("failed to retrieve registry metrics", "error", err)
		return
	}

	json.NewEncoder(w).Encode(regMetrics)
}

func performanceMetricsHandler(w http.ResponseWriter, r *http.Request) {
	perfMetrics, err := metrics.GetPerformanceMetrics()
	if err != nil {
		log.Error("failed to retrieve performance metrics", "error", err)
		return
	}

	json.NewEncoder(w).Encode(perfMetrics)
}

// Serve the registry metrics endpoint
func Serve() error {
	port := env.GetVar("REGISTRY_METRICS_PORT")
	addr := ":" + port

	log.Info("start serving metrics endpoint")

	router := http.NewServeMux()
	router.HandleFunc("/metrics/registry", registryMetricsHandler)
	router.HandleFunc("/metrics/performance", performanceMetricsHandler)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return server.ListenAndServe()
}
