package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	m := New()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	// Gauges/counters/histograms with no observations yet still need an
	// observation before they surface in Gather for vectors; exercise the
	// gauge directly since it has no labels.
	m.LastScore.Set(87)
	families, err = m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "ibhealth_orchestrator_last_health_score" {
			found = f
		}
	}
	if found == nil {
		t.Fatalf("expected last_health_score metric family, got %v", families)
	}
	if got := found.Metric[0].GetGauge().GetValue(); got != 87 {
		t.Errorf("got %v, want 87", got)
	}
}

func TestAnalyzerDurationAndFaultsObserve(t *testing.T) {
	m := New()
	m.AnalyzerDuration.WithLabelValues("xmit").Observe(0.05)
	m.AnalyzerFaults.WithLabelValues("ber", "timeout").Inc()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected at least one metric family after observations")
	}
}
