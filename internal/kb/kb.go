// Package kb is the Knowledge Base (§4, §9): a static, process-wide
// immutable table mapping an anomaly kind (or a heuristic-only issue key)
// to an explanation record. Built once at package init, grounded in the
// teacher's SuggestActions switch (engine/actions.go) which pairs a
// bottleneck with static remediation text — here generalized to a
// keyed map instead of a switch, since the taxonomy is a closed enum
// rather than a handful of bottleneck constants.
package kb

import "github.com/ftahirops/ibhealth/internal/anomaly"

// Entry is the knowledge-base explanation attached to an Issue's
// details.kb field.
type Entry struct {
	Title              string   `json:"title"`
	WhyItMatters       string   `json:"why_it_matters"`
	LikelyCauses       []string `json:"likely_causes"`
	RecommendedActions []string `json:"recommended_actions"`
	Reference          string   `json:"reference"`
}

// heuristic keys are used by the scorer for rules not backed by an
// anomaly.Kind (temperature/link-down/link-error-recovery/neighbor-state
// heuristics, §4.6 step 2).
const (
	HeuristicHighTemperature     = "heuristic.high_temperature"
	HeuristicLinkDownCounter     = "heuristic.link_down_counter"
	HeuristicLinkErrorRecovery   = "heuristic.link_error_recovery"
	HeuristicNeighborStateStale  = "heuristic.neighbor_state_stale"
)

var table = map[string]Entry{
	string(anomaly.FECNAlert): {
		Title:        "Forward congestion notifications observed",
		WhyItMatters: "FECN marks indicate the fabric is signalling congestion back to senders; sustained FECN traffic degrades application throughput.",
		LikelyCauses: []string{"Oversubscribed switch uplinks", "Incast traffic pattern", "Imbalanced routing"},
		RecommendedActions: []string{
			"Check adaptive routing / static routing balance on the affected switch",
			"Review job placement for incast patterns",
		},
		Reference: "IBTA-CC-FECN",
	},
	string(anomaly.BECNAlert): {
		Title:        "Backward congestion notifications observed",
		WhyItMatters: "BECN indicates a sender has been told to throttle; frequent BECN suggests persistent congestion upstream.",
		LikelyCauses: []string{"Congested downstream link", "Misconfigured congestion control thresholds"},
		RecommendedActions: []string{"Inspect congestion control (CC) algorithm parameters", "Check for hot-spot receivers"},
		Reference: "IBTA-CC-BECN",
	},
	string(anomaly.HighXmitWait): {
		Title:        "High transmit wait time",
		WhyItMatters: "A port spending a large fraction of the sampling window waiting to transmit is credit- or buffer-starved, directly inflating application latency.",
		LikelyCauses: []string{"Downstream congestion", "Insufficient VL credits", "Oversubscribed fabric topology"},
		RecommendedActions: []string{"Correlate with neighbor port counters", "Check VL arbitration / buffer allocation"},
		Reference: "PM-XMITWAIT",
	},
	string(anomaly.HighSymbolBER): {
		Title:        "Symbol bit error rate above threshold",
		WhyItMatters: "Symbol BER is the earliest indicator of a degrading physical link; left unaddressed it leads to retransmits, retraining, and eventually link down.",
		LikelyCauses: []string{"Marginal cable or transceiver", "Dirty/damaged connector", "Excessive cable length for the link speed"},
		RecommendedActions: []string{"Reseat or replace the cable/transceiver", "Check FEC mode matches cable class", "Re-run cable diagnostics after reseat"},
		Reference: "IBTA-PHY-BER",
	},
	string(anomaly.HighRawBER): {
		Title:        "Raw (pre-FEC) bit error rate elevated",
		WhyItMatters: "Elevated raw BER is being compensated by FEC today, but leaves no margin if the link degrades further.",
		LikelyCauses: []string{"Marginal signal integrity", "EMI on the cable run"},
		RecommendedActions: []string{"Monitor trend; replace cable if raw BER keeps rising"},
		Reference: "IBTA-PHY-BER-RAW",
	},
	string(anomaly.HighEffectiveBER): {
		Title:        "Effective (post-FEC) bit error rate elevated",
		WhyItMatters: "Errors are escaping FEC correction, which directly corrupts application traffic.",
		LikelyCauses: []string{"FEC exhaustion from a badly degraded link", "Incorrect FEC mode for the cable class"},
		RecommendedActions: []string{"Replace the cable/transceiver immediately", "Verify FEC mode configuration"},
		Reference: "IBTA-PHY-BER-EFF",
	},
	string(anomaly.OpticalTxBiasAlarm): {
		Title:        "Optical transceiver TX bias alarm",
		WhyItMatters: "An out-of-range laser bias current predicts imminent transceiver failure.",
		LikelyCauses: []string{"Aging transceiver", "Thermal stress"},
		RecommendedActions: []string{"Schedule transceiver replacement"},
		Reference: "SFF-8636-TX-BIAS",
	},
	string(anomaly.OpticalTxPowerAlarm): {
		Title:        "Optical transceiver TX power alarm",
		WhyItMatters: "Transmit power outside the rated envelope reduces link margin and can cause intermittent errors at the far end.",
		LikelyCauses: []string{"Degrading laser", "Dirty fiber end-face"},
		RecommendedActions: []string{"Clean fiber connectors", "Replace transceiver if alarm persists"},
		Reference: "SFF-8636-TX-POWER",
	},
	string(anomaly.OpticalRxPowerAlarm): {
		Title:        "Optical transceiver RX power alarm",
		WhyItMatters: "Out-of-range received optical power often indicates a dirty or damaged fiber path, or a transceiver mismatch.",
		LikelyCauses: []string{"Dirty/damaged fiber", "Excessive link loss/attenuation", "Wrong-reach transceiver for the link"},
		RecommendedActions: []string{"Inspect and clean fiber connectors", "Verify transceiver reach rating matches the run"},
		Reference: "SFF-8636-RX-POWER",
	},
	string(anomaly.OpticalVoltageAlarm): {
		Title:        "Optical transceiver supply voltage alarm",
		WhyItMatters: "Out-of-range module voltage indicates a failing transceiver or a power delivery problem on the host port.",
		LikelyCauses: []string{"Failing transceiver regulator", "Host port power delivery issue"},
		RecommendedActions: []string{"Replace the transceiver", "Check host port power rail if multiple ports alarm together"},
		Reference: "SFF-8636-VCC",
	},
	string(anomaly.LinkErrorRecovery): {
		Title:        "Link error recovery events",
		WhyItMatters: "Frequent link error recovery indicates the physical link is marginal even though it hasn't gone fully down.",
		LikelyCauses: []string{"Marginal cable/transceiver", "Connector seating issue"},
		RecommendedActions: []string{"Reseat cable", "Schedule cable replacement if recurring"},
		Reference: "IBTA-PORT-LINKERRRECOVERY",
	},
	string(anomaly.CreditWatchdog): {
		Title:        "Credit watchdog timeout",
		WhyItMatters: "A credit watchdog timeout means a neighbor stopped returning flow-control credits, stalling traffic on the port.",
		LikelyCauses: []string{"Wedged or hung neighbor port", "Severe downstream congestion"},
		RecommendedActions: []string{"Check neighbor port health", "Consider a port/cable bounce if recurring"},
		Reference: "MLNX-CREDIT-WATCHDOG",
	},
	string(anomaly.LinkDownshift): {
		Title:        "Link negotiated below its supported speed/width",
		WhyItMatters: "A downshifted link silently caps available bandwidth and can mask an underlying cable or transceiver fault.",
		LikelyCauses: []string{"Mismatched or marginal cable for the target speed", "Transceiver or port firmware limitation", "Manual speed cap left in place"},
		RecommendedActions: []string{"Verify cable/transceiver rating for the target speed", "Clear manual speed caps and re-negotiate"},
		Reference: "IBTA-LINK-WIDTH-SPEED",
	},
	string(anomaly.LinkDown): {
		Title:        "Port link down events",
		WhyItMatters: "Each link-down forces a costly re-training and can interrupt in-flight traffic or subnet manager sweeps.",
		LikelyCauses: []string{"Cable/transceiver fault", "Neighbor port flapping", "Power event on one side of the link"},
		RecommendedActions: []string{"Inspect cable seating", "Correlate timing with neighbor-side events"},
		Reference: "LINK_DOWN",
	},
	string(anomaly.LinkFlapping): {
		Title:        "Link oscillating between up and down",
		WhyItMatters: "A flapping link is worse than a link that is simply down — it repeatedly disrupts routing and in-flight traffic on both ends.",
		LikelyCauses: []string{"Marginal cable/transceiver", "Loose connector", "Neighbor-side power/driver instability"},
		RecommendedActions: []string{"Replace cable/transceiver on both ends", "Check neighbor port power and driver logs"},
		Reference: "IBTA-LINK-FLAP",
	},
	string(anomaly.CableMismatch): {
		Title:        "Cable technology/length mismatch for the negotiated speed",
		WhyItMatters: "A cable rated for a lower class than the negotiated speed (e.g. long copper at HDR) operates outside its certified margin and degrades over time.",
		LikelyCauses: []string{"Wrong cable pulled for the link speed", "Rack re-cabling without an updated cable plan"},
		RecommendedActions: []string{"Swap in a cable rated for the negotiated speed/length", "Update the cable plan / inventory record"},
		Reference: "IBTA-CABLE-COMPLIANCE",
	},
	string(anomaly.PSIDUnsupported): {
		Title:        "Unsupported firmware PSID",
		WhyItMatters: "An unqualified PSID may be missing fixes or running an unsupported feature set for this fabric generation.",
		LikelyCauses: []string{"Device shipped with OEM firmware outside the qualified list", "Incomplete fleet firmware rollout"},
		RecommendedActions: []string{"Re-flash to a qualified PSID/firmware combination"},
		Reference: "MLNX-PSID-POLICY",
	},
	string(anomaly.FWOutdated): {
		Title:        "Firmware below the minimum qualified version",
		WhyItMatters: "Outdated firmware may lack bug fixes for known link-stability or counter-reporting issues.",
		LikelyCauses: []string{"Device missed a fleet-wide firmware rollout"},
		RecommendedActions: []string{"Schedule a firmware update to the minimum qualified version"},
		Reference: "MLNX-FW-POLICY",
	},
	string(anomaly.FanFailure): {
		Title:        "Fan speed outside operating range",
		WhyItMatters: "A failing fan risks thermal throttling or shutdown of the switch/HCA it cools.",
		LikelyCauses: []string{"Dust/debris obstruction", "Bearing wear", "Fan controller fault"},
		RecommendedActions: []string{"Inspect and clean the fan tray", "Replace the fan module"},
		Reference: "HW-FAN-RANGE",
	},
	string(anomaly.RoutingAnomaly): {
		Title:        "Routing/adaptive-routing anomaly",
		WhyItMatters: "An unexpected routing configuration can create hot spots or unreachable paths even when individual links are healthy.",
		LikelyCauses: []string{"Stale routing tables after a topology change", "Adaptive routing disabled where it's expected"},
		RecommendedActions: []string{"Re-run subnet manager routing", "Verify adaptive routing configuration matches policy"},
		Reference: "IBTA-ROUTING",
	},
	string(anomaly.PSUCritical): {
		Title:        "Power supply in critical state",
		WhyItMatters: "A failed or failing PSU risks an unplanned shutdown if the remaining supply(ies) cannot cover load.",
		LikelyCauses: []string{"PSU hardware failure", "Input power loss to one feed"},
		RecommendedActions: []string{"Replace the PSU", "Verify redundant power feeds are both live"},
		Reference: "HW-PSU-CRIT",
	},
	string(anomaly.PSUWarning): {
		Title:        "Power supply reporting a warning state",
		WhyItMatters: "An early PSU warning, if ignored, often precedes a critical failure.",
		LikelyCauses: []string{"Aging PSU", "Marginal input power"},
		RecommendedActions: []string{"Schedule PSU inspection at next maintenance window"},
		Reference: "HW-PSU-WARN",
	},
	string(anomaly.TempCritical): {
		Title:        "Device temperature critical",
		WhyItMatters: "Sustained operation above the critical threshold risks thermal shutdown or accelerated hardware wear.",
		LikelyCauses: []string{"Airflow obstruction", "Failed fan", "Data-center cooling issue"},
		RecommendedActions: []string{"Check airflow and fan health immediately", "Verify rack/row cooling"},
		Reference: "HW-TEMP-CRIT",
	},
	string(anomaly.TempWarning): {
		Title:        "Device temperature elevated",
		WhyItMatters: "Elevated temperature reduces margin before a critical shutdown threshold is reached.",
		LikelyCauses: []string{"Partial airflow obstruction", "Elevated ambient temperature"},
		RecommendedActions: []string{"Monitor trend; inspect airflow at next opportunity"},
		Reference: "HW-TEMP-WARN",
	},
	string(anomaly.OpticalTempHigh): {
		Title:        "Transceiver temperature elevated",
		WhyItMatters: "A hot transceiver ages faster and is more likely to produce bit errors.",
		LikelyCauses: []string{"Poor airflow around the cage", "Aging transceiver drawing excess power"},
		RecommendedActions: []string{"Check airflow near the affected port", "Replace transceiver if temperature keeps climbing"},
		Reference: "SFF-8636-TEMP",
	},
	string(anomaly.MLNXRNRHigh): {
		Title:        "Elevated RNR NAK rate",
		WhyItMatters: "Frequent Receiver-Not-Ready NAKs mean the remote QP lacks posted receive buffers, stalling RDMA operations.",
		LikelyCauses: []string{"Application not posting receives fast enough", "Undersized receive queue"},
		RecommendedActions: []string{"Increase receive queue depth", "Profile the application's receive-posting rate"},
		Reference: "MLNX-QP-RNR",
	},
	string(anomaly.MLNXTimeoutHigh): {
		Title:        "Elevated QP timeout rate",
		WhyItMatters: "Frequent retransmit timeouts indicate the remote side is not acknowledging in time, often from congestion or a hung peer.",
		LikelyCauses: []string{"Network congestion", "Remote-side CPU starvation"},
		RecommendedActions: []string{"Correlate with remote-side load", "Check for congestion on the path"},
		Reference: "MLNX-QP-TIMEOUT",
	},
	string(anomaly.MLNXQPError): {
		Title:        "QP entered error state",
		WhyItMatters: "A QP in the error state stops all progress for the application using it until recovered.",
		LikelyCauses: []string{"Remote access violation", "Unrecoverable transport error"},
		RecommendedActions: []string{"Inspect application-level QP error handling/recovery", "Check for a correlated link event"},
		Reference: "MLNX-QP-ERROR",
	},
	string(anomaly.LatencyOutlier): {
		Title:        "Latency histogram outlier",
		WhyItMatters: "A p99/median ratio this large means a small fraction of traffic is experiencing tail latency far outside the norm, which can dominate synchronized collective operations.",
		LikelyCauses: []string{"Transient congestion", "Adaptive routing imbalance", "A single slow hop in the path"},
		RecommendedActions: []string{"Correlate with congestion counters on the same ports", "Check routing balance across available paths"},
		Reference: "PM-HISTOGRAM-P99",
	},
	string(anomaly.PortImbalance): {
		Title:        "Traffic imbalance across equivalent ports",
		WhyItMatters: "An imbalanced port is underutilizing available fabric bandwidth even though nothing is technically broken.",
		LikelyCauses: []string{"Static routing skew", "Application traffic pattern concentrated on one path"},
		RecommendedActions: []string{"Review routing/LAG balancing", "Consider adaptive routing if not already enabled"},
		Reference: "IBTA-BALANCE",
	},

	HeuristicHighTemperature: {
		Title:        "High temperature (heuristic)",
		WhyItMatters: "A raw temperature reading above the heuristic threshold independently of the anomaly taxonomy, still worth surfacing.",
		LikelyCauses: []string{"Airflow obstruction", "Cooling system issue"},
		RecommendedActions: []string{"Inspect airflow and cooling for the affected device"},
		Reference: "HEURISTIC-TEMP",
	},
	HeuristicLinkDownCounter: {
		Title:        "Link downed counter non-zero",
		WhyItMatters: "Any recorded link-down event on a port is worth surfacing even without a matching analyzer anomaly row.",
		LikelyCauses: []string{"Cable/transceiver fault", "Neighbor-side instability"},
		RecommendedActions: []string{"Inspect cable seating and neighbor port health"},
		Reference: "LINK_DOWN",
	},
	HeuristicLinkErrorRecovery: {
		Title:        "Link error recovery counter elevated",
		WhyItMatters: "Elevated link error recovery activity, even if no analyzer flagged it by kind, suggests a marginal link.",
		LikelyCauses: []string{"Marginal cable/transceiver"},
		RecommendedActions: []string{"Reseat or replace the cable"},
		Reference: "IBTA-PORT-LINKERRRECOVERY",
	},
	HeuristicNeighborStateStale: {
		Title:        "Neighbor active but local port not up",
		WhyItMatters: "Topology reports an active neighbor but this port's own state/phy-state disagree, suggesting a stale or asymmetric link state.",
		LikelyCauses: []string{"One-sided link bounce", "Stale PM snapshot"},
		RecommendedActions: []string{"Re-poll port state", "Check for a recent one-sided link event"},
		Reference: "HEURISTIC-NEIGHBOR-STATE",
	},
}

// Lookup returns the KB entry for a key (an anomaly.Kind string form or one
// of the Heuristic* constants), and whether it was found.
func Lookup(key string) (Entry, bool) {
	e, ok := table[key]
	return e, ok
}

// ForKind is a typed convenience wrapper around Lookup.
func ForKind(k anomaly.Kind) (Entry, bool) {
	return Lookup(string(k))
}
