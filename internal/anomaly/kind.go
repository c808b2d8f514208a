// Package anomaly implements the Anomaly Taxonomy (§3): a closed
// enumeration of anomaly kinds, each mapped to a canonical display string,
// a category, and a default severity, plus the Anomaly Frame type and the
// (guid, port) indexing used to filter display rows to "issue rows"
// (§4.8).
package anomaly

// Category is one of the fixed scorer weight-budget categories (§4.6).
type Category string

const (
	CategoryBER         Category = "ber"
	CategoryErrors      Category = "errors"
	CategoryCongestion  Category = "congestion"
	CategoryLatency     Category = "latency"
	CategoryBalance     Category = "balance"
	CategoryConfig      Category = "config"
	CategoryAnomaly     Category = "anomaly"
)

// Severity is one of the three default severities a kind can carry.
type Severity string

const (
	Critical Severity = "critical"
	Warning  Severity = "warning"
	Info     Severity = "info"
)

// Kind is a closed-enum member naming one signal condition (§3). The zero
// value is not a valid kind; use the exported constants below.
type Kind string

const (
	FECNAlert          Kind = "IBH_FECN_ALERT"
	BECNAlert          Kind = "IBH_BECN_ALERT"
	HighXmitWait       Kind = "IBH_HIGH_XMIT_WAIT"
	HighSymbolBER      Kind = "IBH_HIGH_SYMBOL_BER"
	HighRawBER         Kind = "IBH_HIGH_RAW_BER"
	HighEffectiveBER   Kind = "IBH_HIGH_EFFECTIVE_BER"
	OpticalTxBiasAlarm Kind = "IBH_OPTICAL_TX_BIAS_ALARM"
	OpticalTxPowerAlarm Kind = "IBH_OPTICAL_TX_POWER_ALARM"
	OpticalRxPowerAlarm Kind = "IBH_OPTICAL_RX_POWER_ALARM"
	OpticalVoltageAlarm Kind = "IBH_OPTICAL_VOLTAGE_ALARM"
	LinkErrorRecovery  Kind = "IBH_LINK_ERROR_RECOVERY"
	CreditWatchdog     Kind = "IBH_CREDIT_WATCHDOG"
	XmitTimeCongestion Kind = "IBH_XMIT_TIME_CONG"
	LinkDownshift      Kind = "IBH_LINK_DOWNSHIFT"
	LinkDown           Kind = "IBH_LINK_DOWN"
	LinkFlapping       Kind = "IBH_LINK_FLAPPING"
	CableMismatch      Kind = "IBH_CABLE_MISMATCH"
	PSIDUnsupported    Kind = "IBH_PSID_UNSUPPORTED"
	FWOutdated         Kind = "IBH_FW_OUTDATED"
	FanFailure         Kind = "IBH_FAN_FAILURE"
	RoutingAnomaly     Kind = "IBH_ROUTING_ANOMALY"
	PSUCritical        Kind = "IBH_PSU_CRITICAL"
	PSUWarning         Kind = "IBH_PSU_WARNING"
	TempCritical       Kind = "IBH_TEMP_CRITICAL"
	TempWarning        Kind = "IBH_TEMP_WARNING"
	OpticalTempHigh    Kind = "IBH_OPTICAL_TEMP_HIGH"
	MLNXRNRHigh        Kind = "IBH_MLNX_RNR_HIGH"
	MLNXTimeoutHigh    Kind = "IBH_MLNX_TIMEOUT_HIGH"
	MLNXQPError        Kind = "IBH_MLNX_QP_ERROR"
	LatencyOutlier     Kind = "IBH_LATENCY_OUTLIER"
	PortImbalance      Kind = "IBH_PORT_IMBALANCE"
)

// meta describes one kind's canonical display string, category and
// default severity (§3).
type meta struct {
	display  string
	category Category
	severity Severity
}

var registry = map[Kind]meta{
	FECNAlert:           {"FECN Alert", CategoryCongestion, Warning},
	BECNAlert:           {"BECN Alert", CategoryCongestion, Warning},
	HighXmitWait:        {"High Transmit Wait", CategoryCongestion, Warning},
	HighSymbolBER:       {"High Symbol BER", CategoryBER, Critical},
	HighRawBER:          {"High Raw BER", CategoryBER, Warning},
	HighEffectiveBER:    {"High Effective BER", CategoryBER, Warning},
	OpticalTxBiasAlarm:  {"Optical TX Bias Alarm", CategoryErrors, Warning},
	OpticalTxPowerAlarm: {"Optical TX Power Alarm", CategoryErrors, Warning},
	OpticalRxPowerAlarm: {"Optical RX Power Alarm", CategoryErrors, Warning},
	OpticalVoltageAlarm: {"Optical Voltage Alarm", CategoryErrors, Warning},
	LinkErrorRecovery:   {"Link Error Recovery", CategoryErrors, Warning},
	CreditWatchdog:      {"Credit Watchdog Timeout", CategoryCongestion, Critical},
	XmitTimeCongestion:  {"Transmit Time Congestion", CategoryCongestion, Critical},
	LinkDownshift:       {"Link Downshift", CategoryErrors, Warning},
	LinkDown:            {"Link Down", CategoryErrors, Critical},
	LinkFlapping:        {"Link Flapping", CategoryErrors, Critical},
	CableMismatch:       {"Cable Mismatch", CategoryConfig, Warning},
	PSIDUnsupported:     {"PSID Unsupported", CategoryConfig, Critical},
	FWOutdated:          {"Firmware Outdated", CategoryConfig, Warning},
	FanFailure:          {"Fan Failure", CategoryErrors, Warning},
	RoutingAnomaly:      {"Routing Anomaly", CategoryBalance, Warning},
	PSUCritical:         {"PSU Critical", CategoryErrors, Critical},
	PSUWarning:          {"PSU Warning", CategoryErrors, Warning},
	TempCritical:        {"High Temperature Critical", CategoryErrors, Critical},
	TempWarning:         {"High Temperature Warning", CategoryErrors, Warning},
	OpticalTempHigh:     {"Optical Temperature High", CategoryErrors, Warning},
	MLNXRNRHigh:         {"MLNX RNR NAK High", CategoryErrors, Warning},
	MLNXTimeoutHigh:     {"MLNX Timeout High", CategoryErrors, Warning},
	MLNXQPError:         {"MLNX QP Error", CategoryErrors, Critical},
	LatencyOutlier:      {"Latency Outlier", CategoryLatency, Warning},
	PortImbalance:       {"Port Imbalance", CategoryBalance, Info},
}

// Display returns the canonical display string for kind, or the raw kind
// string if it is not a recognized member (defensive — the taxonomy is
// closed but analyzers are plain Go code, not an enum the compiler can
// exhaustively check against a string).
func Display(k Kind) string {
	if m, ok := registry[k]; ok {
		return m.display
	}
	return string(k)
}

// CategoryOf returns the kind's category, defaulting to CategoryAnomaly
// for unrecognized kinds.
func CategoryOf(k Kind) Category {
	if m, ok := registry[k]; ok {
		return m.category
	}
	return CategoryAnomaly
}

// SeverityOf returns the kind's default severity, defaulting to Info for
// unrecognized kinds.
func SeverityOf(k Kind) Severity {
	if m, ok := registry[k]; ok {
		return m.severity
	}
	return Info
}

// All returns every known kind, for tests and KB completeness checks.
func All() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

var byDisplay map[string]Kind

func init() {
	byDisplay = make(map[string]Kind, len(registry))
	for k, m := range registry {
		byDisplay[m.display] = k
	}
}

// KindByDisplay resolves a canonical display string (as carried in a row's
// aggregated "IBH Anomaly" column, §4.6) back to its Kind.
func KindByDisplay(display string) (Kind, bool) {
	k, ok := byDisplay[display]
	return k, ok
}
