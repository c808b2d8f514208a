package brief

import (
	"testing"

	"github.com/ftahirops/ibhealth/internal/scorer"
)

func TestMergeLeftJoinsAndProjects(t *testing.T) {
	xmit := []scorer.Row{
		{"NodeGUID": "0x1", "PortNumber": 1, "PortState": "Active", "WaitRatioPct": 2.0},
	}
	cable := []scorer.Row{
		{"NodeGUID": "0x1", "PortNumber": 1, "Temperature (c)": 45.0, "WaitRatioPct": 999.0},
	}
	ber := []scorer.Row{
		{"NodeGUID": "0x1", "PortNumber": 1, "SymbolBERSeverity": "normal"},
	}
	hca := []scorer.Row{
		{"NodeGUID": "0x1", "FWVersion": "20.1.1"},
	}

	out := Merge(xmit, cable, ber, hca)
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	row := out[0]
	if row["WaitRatioPct"] != 2.0 {
		t.Errorf("expected xmit to win collision, got %v", row["WaitRatioPct"])
	}
	if row["Temperature (c)"] != 45.0 {
		t.Errorf("expected cable field merged in, got %v", row["Temperature (c)"])
	}
	if row["SymbolBERSeverity"] != "normal" {
		t.Errorf("expected ber field merged in, got %v", row["SymbolBERSeverity"])
	}
	if row["FWVersion"] != "20.1.1" {
		t.Errorf("expected hca field merged in by guid, got %v", row["FWVersion"])
	}
	if _, ok := row["NotAColumn"]; ok {
		t.Error("expected non-projected column to be dropped")
	}
}
