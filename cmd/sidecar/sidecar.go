package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/alpacahq/gopaca/ddworker"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/metrics"
)

const (
	performanceTag = "performance"
	registerTag    = "register"
)

var (
	port = func() (p string) {
		p = os.Getenv("REGISTRY_METRICS_PORT")
		if p == "" {
			p = "7777"
		}
		return
	}()
)

func metricsHandler(dd *statsd.Client) error {

	// register metrics
	{
		regMetrics, err := getRegistryMetrics()
		if err != nil {
			return err
		}

		dd.Gauge("total_issued", float64(regMetrics.TotalIssued), []string{registerTag}, 1)
		dd.Gauge("total_outstanding", float64(regMetrics.TotalOutstanding), []string{registerTag}, 1)
		dd.Gauge("active_holders", float64(regMetrics.ActiveHolders), []string{registerTag}, 1)

		for class, outstanding := range regMetrics.ByClass {
			dd.Gauge(
				"class_outstanding",
				float64(outstanding),
				[]string{registerTag, fmt.Sprintf("class:%v", class)}, 1)
		}

		// workflow backlog
		dd.Gauge("pending_workflows", float64(regMetrics.PendingWorkflows), []string{registerTag}, 1)
		dd.Gauge("overdue_workflows", float64(regMetrics.OverdueWorkflows), []string{registerTag}, 1)

		// delivery health
		dd.Gauge("journal_lag", float64(regMetrics.JournalLag), []string{registerTag}, 1)
		dd.Timing("snapshot_age", regMetrics.SnapshotAge, []string{registerTag}, 1)
		dd.Timing("ledger_latency", regMetrics.LedgerLatency, []string{registerTag}, 1)
	}

	// performance metrics
	{
		perfMetrics, err := getPerformanceMetrics()
		if err != nil {
			return err
		}

		dd.Gauge("cpu_usage", perfMetrics.CPUUsagePercent, nil, 1)
		dd.Gauge("mem_usage", perfMetrics.MemoryUsagePercent, nil, 1)
		dd.Count("goroutines", perfMetrics.GoRoutines, nil, 1)
		dd.Timing("db_latency", perfMetrics.DatabaseLatency, nil, 1)
	}

	return nil
}

func getRegistryMetrics() (*metrics.RegistryMetrics, error) {
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%v/metrics/registry", port))
	if err != nil {
		return nil, err
	}

	m := &metrics.RegistryMetrics{}

	if err := json.NewDecoder(resp.Body).Decode(m); err != nil {
		return nil, fmt.Errorf("failed to parse registry metrics %v", err)
	}

	return m, nil
}

func getPerformanceMetrics() (*metrics.PerformanceMetrics, error) {
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%v/metrics/performance", port))
	if err != nil {
		return nil, err
	}

	m := &metrics.PerformanceMetrics{}

	if err := json.NewDecoder(resp.Body).Decode(m); err != nil {
		return nil, fmt.Errorf("failed to parse performance metrics %v", err)
	}

	return m, nil
}

func init() {
	ddworker.RegisterHandler(metricsHandler, "metrics_handler", time.Second*10)
	ddworker.SetNamespace("goregistry.")
}

func main() {
	log.Info("running goregistry sidecar container")
	ddworker.RunWorker()
}
