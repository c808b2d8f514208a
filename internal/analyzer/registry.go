package analyzer

import (
	"github.com/ftahirops/ibhealth/internal/config"
	"github.com/ftahirops/ibhealth/internal/topobaseline"
)

// All returns every analyzer in the fan-out set (§4.4): the dedicated
// Family A-H analyzers plus the Family I declarative table analyzers,
// covering every name in §6's output payload list (cable, xmit,
// link_oscillation, ber, hca, fan, histogram, switch, routing, qos,
// sm_info, port_hierarchy, mlnx_counters, pm_delta, vports, pkey,
// system_info, extended_port_info, ar_info, sharp, fec_mode,
// phy_diagnostics, neighbors, buffer_histogram, extended_node_info,
// extended_switch_info, power_sensors, routing_config, temp_alerts,
// credit_watchdog, pci_performance, per_lane_performance, n2n_security).
func All(cfg *config.Config, fwPolicy FirmwarePolicy) []Analyzer {
	baseline, _ := topobaseline.Load(cfg.ExpectedTopologyFile())
	dedicated := []Analyzer{
		Xmit{},
		Cable{},
		BER{Config: cfg},
		HCA{Policy: fwPolicy},
		Fan{},
		PowerSensors{},
		TempAlerts{},
		Routing{Baseline: baseline},
		MLNXCounters{},
		Histogram{},
		LinkOscillation{},
		CreditWatchdog{},
	}
	return append(dedicated, BuildFamilyI()...)
}

// ByName indexes the analyzer set by its output name.
func ByName(analyzers []Analyzer) map[string]Analyzer {
	out := make(map[string]Analyzer, len(analyzers))
	for _, a := range analyzers {
		out[a.Name()] = a
	}
	return out
}
