package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/stream"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// RegistryMetrics includes the required data to analyze the
// health of the share register.
type RegistryMetrics struct {
	TotalIssued      int64            `json:"total_issued"`
	TotalOutstanding int64            `json:"total_outstanding"`
	ByClass          map[string]int64 `json:"by_class"`
	ActiveHolders    int64            `json:"active_holders"`
	// workflow backlog
	PendingWorkflows int64 `json:"pending_workflows"`
	OverdueWorkflows int64 `json:"overdue_workflows"`
	// ledger entries not yet delivered to the journal stream
	JournalLag int64 `json:"journal_lag"`
	// time since the last cap table snapshot was taken
	SnapshotAge   time.Duration `json:"snapshot_age"`
	LedgerLatency time.Duration `json:"ledger_latency"`
}

// GetRegistryMetrics returns share register related metrics
// for alerts and analysis.
func GetRegistryMetrics() (*RegistryMetrics, error) {
	m := &RegistryMetrics{ByClass: map[string]int64{}}

	start := time.Now()

	row := db.DB().
		Model(&models.Holding{}).
		Select("coalesce(sum(shares_issued), 0), coalesce(sum(shares_outstanding), 0)").
		Row()

	if err := row.Scan(&m.TotalIssued, &m.TotalOutstanding); err != nil {
		return nil, err
	}

	m.LedgerLatency = time.Now().Sub(start)

	rows, err := db.DB().
		Model(&models.Holding{}).
		Select("class, coalesce(sum(shares_outstanding), 0)").
		Group("class").
		Rows()

	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var (
			class       string
			outstanding int64
		)

		if err := rows.Scan(&class, &outstanding); err != nil {
			rows.Close()
			return nil, err
		}

		m.ByClass[class] = outstanding
	}
	rows.Close()

	if err := db.DB().
		Model(&models.Shareholder{}).
		Where("status = ?", enum.ShareholderActive).
		Count(&m.ActiveHolders).Error; err != nil {
		return nil, err
	}

	if err := db.DB().
		Model(&models.ApprovalWorkflow{}).
		Where("status = ?", enum.WorkflowPending).
		Count(&m.PendingWorkflows).Error; err != nil {
		return nil, err
	}

	if err := db.DB().
		Model(&models.ApprovalWorkflow{}).
		Where("status = ? AND deadline < ?", enum.WorkflowPending, clock.Now()).
		Count(&m.OverdueWorkflows).Error; err != nil {
		return nil, err
	}

	var maxSequence int64

	row = db.DB().
		Model(&models.LedgerEntry{}).
		Select("coalesce(max(sequence), 0)").
		Row()

	if err := row.Scan(&maxSequence); err != nil {
		return nil, err
	}

	cursor := models.JournalCursor{}

	q := db.DB().Where("topic = ?", stream.LedgerUpdates).Find(&cursor)

	switch {
	case q.RecordNotFound():
		// nothing delivered yet - the whole ledger is backlog
		m.JournalLag = maxSequence
	case q.Error != nil:
		return nil, q.Error
	default:
		m.JournalLag = maxSequence - int64(cursor.LastSequence)
	}

	snap := models.CapTableSnapshot{}

	q = db.DB().Order("taken_at desc").First(&snap)

	if q.Error != nil && !q.RecordNotFound() {
		return nil, q.Error
	}

	if !q.RecordNotFound() {
		m.SnapshotAge = clock.Now().Sub(snap.TakenAt)
	}

	return m, nil
}

// PerformanceMetrics includes all data relevant to
// the performance of goregistry.
type PerformanceMetrics struct {
	DatabaseLatency    time.Duration `json:"db_latency"`
	MemoryUsageTotal   uint64        `json:"mem_usage_total"`
	MemoryUsagePercent float64       `json:"mem_usage_pct"`
	GoRoutines         int64         `json:"goroutines"`
	CPUUsagePercent    float64       `json:"cpu_usage_pct"`
}

// GetPerformanceMetrics returns performance related
// metrics for alerts and analysis.
func GetPerformanceMetrics() (*PerformanceMetrics, error) {
	// memory stats
	v, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}

	// cpu stats
	pct, err := cpu.Percent(time.Second, false)
	if err != nil {
		return nil, err
	}

	if len(pct) == 0 {
		return nil, fmt.Errorf("failed to retrieve cpu usage stats")
	}

	// database latency
	start := time.Now()
	if err := db.DB().DB().Ping(); err != nil {
		return nil, err
	}

	dbLatency := time.Now().Sub(start)

	return &PerformanceMetrics{
		MemoryUsageTotal:   v.Used,
		MemoryUsagePercent: v.UsedPercent,
		CPUUsagePercent:    pct[0],
		DatabaseLatency:    dbLatency,
		GoRoutines:         int64(runtime.NumGoroutine()),
	}, nil
}
