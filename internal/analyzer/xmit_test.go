package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
)

func TestDecodeSpeedPriorityOrder(t *testing.T) {
	label, prio := decodeSpeed(0x800 | 0x400)
	if label != "HDR/NDR" || prio != 7 {
		t.Errorf("got %s %d", label, prio)
	}
}

func TestDecodeWidth(t *testing.T) {
	width, prio := decodeWidth(0x04)
	if width != 8 || prio != 2 {
		t.Errorf("got %d %d", width, prio)
	}
}

func TestDecodeEnumOutOfRange(t *testing.T) {
	if decodeEnum(portStateNames, 99) != "Unknown" {
		t.Error("expected Unknown for out-of-range value")
	}
	if decodeEnum(portStateNames, 4) != "Active" {
		t.Error("expected Active for value 4")
	}
}

func TestCongestionLevel(t *testing.T) {
	cases := map[float64]string{0: "normal", 1: "warning", 5: "severe", 4.9: "warning"}
	for pct, want := range cases {
		if got := congestionLevel(pct); got != want {
			t.Errorf("congestionLevel(%v) = %s, want %s", pct, got, want)
		}
	}
}

func TestCounterPairSumsBaseAndExt(t *testing.T) {
	row := model.Row{
		"PortRcvFECN":    model.IntCell(3),
		"PortRcvFECNExt": model.IntCell(4),
	}
	if got := counterPair(row, "PortRcvFECN", "PortRcvFECNExt"); got != 7 {
		t.Errorf("counterPair = %v, want 7 (base+ext sum)", got)
	}
}

func writeXmitDump(t *testing.T) *dataset.Inventory {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fabric.db_csv")
	body := "" +
		"START_NODES\n" +
		"NodeGUID,NodeDesc,NodeType\n" +
		"0x1,\"switch-a\",2\n" +
		"END_NODES\n" +
		"START_PORTS\n" +
		"NodeGUID,PortNumber,PortState,PortPhyState,LinkSpeedSupported,LinkSpeedActive,LinkWidthSupported,LinkWidthActive\n" +
		"0x1,1,4,5,0x800,0x040,0x08,0x08\n" +
		"0x1,2,4,5,0x800,0x800,0x08,0x08\n" +
		"END_PORTS\n" +
		"START_CREDIT_WATCHDOG_TIMEOUT_COUNTERS\n" +
		"NodeGUID,PortNumber,CreditWatchdogTimeoutCounter\n" +
		"0x1,2,5\n" +
		"END_CREDIT_WATCHDOG_TIMEOUT_COUNTERS\n" +
		"START_PM_DELTA\n" +
		"NodeGUID,PortNumber,PortXmitWaitExt,PortRcvFECN,PortRcvFECNExt,PortRcvBECN,PortRcvBECNExt,PortXmitTimeCong,PortXmitTimeCongExt\n" +
		"0x1,1,0,3,4,0,0,0,0\n" +
		"0x1,2,0,0,0,0,0,0,0\n" +
		"END_PM_DELTA\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	inv, err := dataset.New(path)
	if err != nil {
		t.Fatal(err)
	}
	return inv
}

func TestXmitFECNCountIsBasePlusExtSum(t *testing.T) {
	inv := writeXmitDump(t)
	res := Xmit{}.Analyze(inv)

	var found bool
	for _, row := range res.Rows {
		if row["PortNumber"] == 1 {
			found = true
			if got := row["FECNCount"]; got != 7.0 {
				t.Errorf("FECNCount = %v, want 7 (3 base + 4 ext)", got)
			}
		}
	}
	if !found {
		t.Fatal("expected a row for port 1")
	}
}

func TestXmitDownshiftAnomaly(t *testing.T) {
	inv := writeXmitDump(t)
	res := Xmit{}.Analyze(inv)

	var found bool
	for _, r := range res.Anomalies.Rows {
		if r.Kind == anomaly.LinkDownshift && r.GUID == "0x1" && r.Port == 1 {
			found = true
			if r.Weight != 1.0 {
				t.Errorf("LinkDownshift weight = %v, want 1.0", r.Weight)
			}
		}
	}
	if !found {
		t.Fatalf("expected IBH_LINK_DOWNSHIFT on 0x1 port 1 (supported HDR/NDR, active SDR), got %+v", res.Anomalies.Rows)
	}
}

func TestXmitCreditWatchdogAnomaly(t *testing.T) {
	inv := writeXmitDump(t)
	res := Xmit{}.Analyze(inv)

	var found bool
	for _, r := range res.Anomalies.Rows {
		if r.Kind == anomaly.CreditWatchdog && r.GUID == "0x1" && r.Port == 2 {
			found = true
			if r.Weight != 5.0 {
				t.Errorf("CreditWatchdog weight = %v, want 5.0", r.Weight)
			}
		}
	}
	if !found {
		t.Fatalf("expected IBH_CREDIT_WATCHDOG on 0x1 port 2, got %+v", res.Anomalies.Rows)
	}
}
