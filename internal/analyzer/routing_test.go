package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/topobaseline"
)

func writeRoutingDump(t *testing.T) *dataset.Inventory {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fabric.db_csv")
	body := "" +
		"START_NODES\n" +
		"NodeGUID,NodeDesc,NodeType\n" +
		"0x1,\"switch-a\",2\n" +
		"0x2,\"hca-a\",1\n" +
		"0x3,\"hca-b\",1\n" +
		"END_NODES\n" +
		"START_LINKS\n" +
		"NodeGUID1,PortNumber1,NodeGUID2,PortNumber2\n" +
		"0x1,1,0x2,1\n" +
		"END_LINKS\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	inv, err := dataset.New(path)
	if err != nil {
		t.Fatal(err)
	}
	return inv
}

func TestRoutingNoBaselineIsDisplayOnly(t *testing.T) {
	inv := writeRoutingDump(t)
	res := Routing{}.Analyze(inv)
	if len(res.Anomalies.Rows) != 0 {
		t.Fatalf("expected no anomalies without a configured baseline, got %d", len(res.Anomalies.Rows))
	}
}

func TestRoutingFlagsBaselineMismatch(t *testing.T) {
	inv := writeRoutingDump(t)
	// Baseline expects 0x1 port 1 to connect to 0x3 port 1, but the dump's
	// LINKS table actually connects it to 0x2 port 1.
	baseline := &topobaseline.Baseline{
		Links: []topobaseline.Link{
			{SrcGUID: "0x1", SrcPort: 1, DstGUID: "0x3", DstPort: 1},
		},
	}
	res := Routing{Baseline: baseline}.Analyze(inv)

	if len(res.Anomalies.Rows) == 0 {
		t.Fatalf("expected a cable mismatch anomaly against the baseline")
	}
	found := false
	for _, r := range res.Anomalies.Rows {
		if r.Kind == anomaly.CableMismatch && r.GUID == "0x1" && r.Port == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected IBH_CABLE_MISMATCH on 0x1 port 1, got %+v", res.Anomalies.Rows)
	}
}

func TestRoutingMatchesBaselineRaisesNoAnomaly(t *testing.T) {
	inv := writeRoutingDump(t)
	baseline := &topobaseline.Baseline{
		Links: []topobaseline.Link{
			{SrcGUID: "0x1", SrcPort: 1, DstGUID: "0x2", DstPort: 1},
		},
	}
	res := Routing{Baseline: baseline}.Analyze(inv)
	if len(res.Anomalies.Rows) != 0 {
		t.Fatalf("expected no anomalies when the baseline matches, got %d", len(res.Anomalies.Rows))
	}
}
