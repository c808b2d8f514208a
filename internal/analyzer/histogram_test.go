package analyzer

import "testing"

func TestPercentileStatsBoundary(t *testing.T) {
	bins := make([]float64, 10)
	bins[0] = 90
	bins[9] = 10
	median, p99, upperRatio, total := percentileStats(bins, 0, 100)
	if median != 5.0 {
		t.Errorf("median = %v, want 5.0", median)
	}
	if p99 != 95.0 {
		t.Errorf("p99 = %v, want 95.0", p99)
	}
	if upperRatio != 0.1 {
		t.Errorf("upperRatio = %v, want 0.1", upperRatio)
	}
	if total != 100 {
		t.Errorf("total = %v, want 100", total)
	}

	ratio := p99 / median
	w := clamp(0.1, 5.0, ratio/5+upperRatio*2)
	if w != 4.0 {
		t.Errorf("weight = %v, want 4.0", w)
	}
}

func TestClamp(t *testing.T) {
	if clamp(0.1, 5.0, 0.01) != 0.1 {
		t.Error("expected clamp to floor")
	}
	if clamp(0.1, 5.0, 10) != 5.0 {
		t.Error("expected clamp to ceiling")
	}
}
