package sanitize

import (
	"math"
	"testing"
	"time"
)

func TestValueNaNInf(t *testing.T) {
	if Value(math.NaN()) != nil {
		t.Error("expected NaN to sanitize to nil")
	}
	if Value(math.Inf(1)) != nil {
		t.Error("expected +Inf to sanitize to nil")
	}
	if Value(math.Inf(-1)) != nil {
		t.Error("expected -Inf to sanitize to nil")
	}
	if Value(1.5) != 1.5 {
		t.Error("expected finite float to pass through")
	}
}

func TestValueTime(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := Value(ts)
	if got != "2026-01-02T03:04:05Z" {
		t.Errorf("got %v", got)
	}
}

func TestMapRecursion(t *testing.T) {
	m := map[string]any{
		"a": math.NaN(),
		"b": map[string]any{"c": math.Inf(1)},
		"d": []any{math.NaN(), 2.0},
	}
	out := Map(m)
	if out["a"] != nil {
		t.Errorf("expected nested NaN sanitized, got %v", out["a"])
	}
	nested := out["b"].(map[string]any)
	if nested["c"] != nil {
		t.Errorf("expected deeply nested Inf sanitized, got %v", nested["c"])
	}
	list := out["d"].([]any)
	if list[0] != nil || list[1] != 2.0 {
		t.Errorf("got %v", list)
	}
}
