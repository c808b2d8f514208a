package scorer

import "testing"

func TestEmptyInputs(t *testing.T) {
	r := Score(nil, nil, nil, nil, nil, nil, nil, nil)
	if r.Score != 100 || r.Grade != "A" || r.Status != "Healthy" {
		t.Fatalf("got %+v", r)
	}
	if r.TotalNodes != 0 || r.TotalPorts != 0 {
		t.Fatalf("got %+v", r)
	}
	if r.Summary != (Summary{}) {
		t.Fatalf("got %+v", r.Summary)
	}
}

func TestCriticalBEROnly(t *testing.T) {
	ber := []Row{{
		"NodeGUID":            "0x1",
		"PortNumber":          1,
		"IBH Anomaly":         "High Symbol BER",
		"IBH Anomaly Weight":  10.0,
	}}
	r := Score(nil, nil, nil, ber, nil, nil, nil, nil)
	if len(r.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %+v", len(r.Issues), r.Issues)
	}
	is := r.Issues[0]
	if is.Severity != "critical" || is.Category != "ber" || is.Description != "High Symbol BER" || is.Weight != 10.0 {
		t.Fatalf("got %+v", is)
	}
	if r.CategoryScores["ber"] != 40 {
		t.Fatalf("expected ber category score 40, got %v", r.CategoryScores["ber"])
	}
	if r.Score != 85 || r.Grade != "B" || r.Status != "Healthy" {
		t.Fatalf("got score=%d grade=%s status=%s", r.Score, r.Grade, r.Status)
	}
}

func TestTemperatureHeuristic(t *testing.T) {
	cable := []Row{{
		"NodeGUID":          "0xe8",
		"PortNumber":        1,
		"Temperature (c)":   85.0,
	}}
	r := Score(nil, cable, nil, nil, nil, nil, nil, nil)
	if len(r.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", r.Issues)
	}
	is := r.Issues[0]
	if is.Severity != "critical" || is.Category != "errors" || is.Weight != 25 {
		t.Fatalf("got %+v", is)
	}
	if r.Score != 75 || r.Grade != "C" || r.Status != "Warning" {
		t.Fatalf("got score=%d grade=%s status=%s", r.Score, r.Grade, r.Status)
	}
}

func TestLinkDownedHeuristic(t *testing.T) {
	xmit := []Row{{
		"NodeGUID":             "0x2",
		"PortNumber":           3,
		"LinkDownedCounter":    5,
		"LinkDownedCounterExt": 0,
	}}
	r := Score(nil, nil, xmit, nil, nil, nil, nil, nil)
	if len(r.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", r.Issues)
	}
	is := r.Issues[0]
	if is.Severity != "critical" || is.Category != "errors" || is.Weight != 5 {
		t.Fatalf("got %+v", is)
	}
	if r.Score != 93 || r.Grade != "A" || r.Status != "Healthy" {
		t.Fatalf("got score=%d grade=%s status=%s", r.Score, r.Grade, r.Status)
	}
	if is.Details == nil {
		t.Fatal("expected kb details attached")
	}
}
