// Package metrics exposes Prometheus counters for the resolution pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters. Construct once per process; the
// resolver treats a nil *Metrics as "metrics disabled".
type Metrics struct {
	RecordsLoaded    prometheus.Counter
	RecordsSkipped   prometheus.Counter
	CandidateMatches prometheus.Counter
	AutoMerges       prometheus.Counter
	ReviewsQueued    prometheus.Counter
	Relationships    prometheus.Counter
	UnifiedEntities  prometheus.Counter
}

// New creates and registers all pipeline metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RecordsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unify_records_loaded_total",
			Help: "Normalized records accepted into the batch.",
		}),
		RecordsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unify_records_skipped_total",
			Help: "Malformed records skipped during ingest.",
		}),
		CandidateMatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unify_candidate_matches_total",
			Help: "Candidate pairs retained at or above the score floor.",
		}),
		AutoMerges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unify_auto_merges_total",
			Help: "Pairs classified AUTO_MERGE.",
		}),
		ReviewsQueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unify_reviews_queued_total",
			Help: "Pairs classified REVIEW_REQUIRED.",
		}),
		Relationships: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unify_relationships_inferred_total",
			Help: "Relationships inferred between distinct entities.",
		}),
		UnifiedEntities: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unify_unified_entities_total",
			Help: "Unified entities built, merged components and singletons.",
		}),
	}
}

func add(c prometheus.Counter, n int) {
	if c == nil {
		return
	}
	c.Add(float64(n))
}

// AddCandidates records retained candidate pairs plus their tier breakdown.
func (m *Metrics) AddCandidates(total, autoMerges, reviews int) {
	if m == nil {
		return
	}
	add(m.CandidateMatches, total)
	add(m.AutoMerges, autoMerges)
	add(m.ReviewsQueued, reviews)
}

// AddRecords records accepted and skipped input records.
func (m *Metrics) AddRecords(loaded, skipped int) {
	if m == nil {
		return
	}
	add(m.RecordsLoaded, loaded)
	add(m.RecordsSkipped, skipped)
}

// AddRelationships records inferred relationship edges.
func (m *Metrics) AddRelationships(n int) {
	if m == nil {
		return
	}
	add(m.Relationships, n)
}

// AddUnifiedEntities records built unified entities.
func (m *Metrics) AddUnifiedEntities(n int) {
	if m == nil {
		return
	}
	add(m.UnifiedEntities, n)
}
