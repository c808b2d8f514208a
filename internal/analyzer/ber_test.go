package analyzer

import (
	"testing"

	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/config"
)

func TestSymbolBERSeverity(t *testing.T) {
	cfg := config.Default()
	if sev := symbolBERSeverity(1e-10, cfg); sev != anomaly.Critical {
		t.Errorf("got %v, want critical", sev)
	}
	if sev := symbolBERSeverity(1e-14, cfg); sev != anomaly.Warning {
		t.Errorf("got %v, want warning", sev)
	}
	if sev := symbolBERSeverity(1e-20, cfg); sev != anomaly.Info {
		t.Errorf("got %v, want info", sev)
	}
	if sev := symbolBERSeverity(0, cfg); sev != anomaly.Info {
		t.Errorf("got %v, want info for zero BER", sev)
	}
}

func TestNetDumpExtPathDerivation(t *testing.T) {
	got := netDumpExtPath("/tmp/foo/bar.db_csv")
	want := "/tmp/foo/bar.net_dump_ext"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
