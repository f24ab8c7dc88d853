package metrics

import (
	"testing"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	// Disabled metrics must be safe to call from every pipeline stage.
	m.AddRecords(10, 2)
	m.AddCandidates(5, 1, 2)
	m.AddRelationships(3)
	m.AddUnifiedEntities(4)
}
