// Package telemetry keeps in-process counters for the gateway's stats
// endpoint. Counters are atomic; no external telemetry is emitted.
package telemetry

import (
	"sync/atomic"

	"github.com/shri-birje/Phishguard/pkg/ml"
)

// Counters aggregates gateway activity since process start.
type Counters struct {
	checks     atomic.Int64
	cacheHits  atomic.Int64
	blocklist  atomic.Int64
	lowRisk    atomic.Int64
	mediumRisk atomic.Int64
	highRisk   atomic.Int64
	modelRuns  atomic.Int64
	heuristic  atomic.Int64
}

// Snapshot is a point-in-time counter export.
type Snapshot struct {
	Checks     int64 `json:"checks"`
	CacheHits  int64 `json:"cache_hits"`
	Blocklist  int64 `json:"blocklist_hits"`
	LowRisk    int64 `json:"low_risk"`
	MediumRisk int64 `json:"medium_risk"`
	HighRisk   int64 `json:"high_risk"`
	ModelRuns  int64 `json:"model_runs"`
	Heuristic  int64 `json:"heuristic_runs"`
}

// RecordCacheHit counts a verdict served from cache.
func (c *Counters) RecordCacheHit() {
	c.checks.Add(1)
	c.cacheHits.Add(1)
}

// RecordVerdict counts a freshly scored verdict.
func (c *Counters) RecordVerdict(a *ml.Assessment) {
	c.checks.Add(1)

	switch a.RiskLevel {
	case ml.RiskLow:
		c.lowRisk.Add(1)
	case ml.RiskMedium:
		c.mediumRisk.Add(1)
	case ml.RiskHigh:
		c.highRisk.Add(1)
	}

	switch a.Mode {
	case ml.ModeModel:
		c.modelRuns.Add(1)
	case ml.ModeHeuristic:
		c.heuristic.Add(1)
	case ml.ModeBlocklist:
		c.blocklist.Add(1)
	}
}

// Snapshot exports the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Checks:     c.checks.Load(),
		CacheHits:  c.cacheHits.Load(),
		Blocklist:  c.blocklist.Load(),
		LowRisk:    c.lowRisk.Load(),
		MediumRisk: c.mediumRisk.Load(),
		HighRisk:   c.highRisk.Load(),
		ModelRuns:  c.modelRuns.Load(),
		Heuristic:  c.heuristic.Load(),
	}
}
