package analyzer

import (
	"math"

	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

// Xmit implements Family A (§4.4): port transmit/congestion performance,
// derived from PM_DELTA joined with PORTS and CREDIT_WATCHDOG_TIMEOUT_COUNTERS.
type Xmit struct{}

func (Xmit) Name() string { return "xmit" }

// waitSecondsPerTick is the §4.4 WaitSeconds = PortXmitWaitExt x 4ns rule.
const waitSecondsPerTick = 4e-9

// speed bitmask table, priority-ordered (first matching bit wins), §4.4.
var speedTable = []struct {
	mask     int64
	label    string
	priority int
}{
	{0x800, "HDR/NDR", 7},
	{0x400, "EDR/HDR100", 6},
	{0x200, "FDR", 5},
	{0x100, "QDR", 4},
	{0x080, "DDR", 3},
	{0x040, "SDR", 2},
	{0x002, "FDR10", 1},
	{0x001, "Legacy", 0},
}

var widthTable = []struct {
	mask     int64
	width    int
	priority int
}{
	{0x08, 12, 3},
	{0x04, 8, 2},
	{0x02, 4, 1},
	{0x10, 2, 4},
	{0x01, 1, 0},
}

func decodeSpeed(mask int64) (label string, priority int) {
	for _, e := range speedTable {
		if mask&e.mask != 0 {
			return e.label, e.priority
		}
	}
	return "Unknown", -1
}

func decodeWidth(mask int64) (width, priority int) {
	for _, e := range widthTable {
		if mask&e.mask != 0 {
			return e.width, e.priority
		}
	}
	return 0, -1
}

var portStateNames = []string{"NoChange", "Down", "Initialize", "Armed", "Active"}
var portPhyStateNames = []string{"Unknown", "Sleeping", "Polling", "Disabled", "LinkUp", "LinkUp"}

func decodeEnum(names []string, v int64) string {
	if v < 0 || int(v) >= len(names) {
		return "Unknown"
	}
	return names[v]
}

func congestionLevel(pct float64) string {
	switch {
	case math.IsNaN(pct):
		return "unknown"
	case pct >= 5:
		return "severe"
	case pct >= 1:
		return "warning"
	default:
		return "normal"
	}
}

func (Xmit) Analyze(inv *dataset.Inventory) Result {
	pmDelta := inv.ReadTable("PM_DELTA")
	if pmDelta.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	ports := inv.ReadTable("PORTS")
	portsByKey := indexPortsByKey(ports)
	watchdog := inv.ReadTable("CREDIT_WATCHDOG_TIMEOUT_COUNTERS")
	watchdogByKey := indexCreditByKey(watchdog)

	duration := pmPauseTime(inv)
	topo := inv.Topology()

	var rows []scorer.Row
	var frame anomaly.Frame

	for _, r := range pmDelta.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		row := annotateRow(topo, guid, port)

		waitExt, _ := r.GetFloat("PortXmitWaitExt")
		waitSeconds := waitExt * waitSecondsPerTick
		waitRatioPct := 0.0
		if duration > 0 {
			waitRatioPct = waitSeconds / duration * 100
		}
		row["WaitSeconds"] = waitSeconds
		row["WaitRatioPct"] = waitRatioPct

		fecn := counterPair(r, "PortRcvFECN", "PortRcvFECNExt")
		becn := counterPair(r, "PortRcvBECN", "PortRcvBECNExt")
		row["FECNCount"] = fecn
		row["BECNCount"] = becn
		xmitTimeCongSeconds := counterPair(r, "PortXmitTimeCong", "PortXmitTimeCongExt") * waitSecondsPerTick
		xmitPct := 0.0
		if duration > 0 {
			xmitPct = xmitTimeCongSeconds / duration * 100
		}
		row["XmitCongestionPct"] = xmitPct
		row["CongestionLevel"] = congestionLevel(waitRatioPct)

		var pstate, pphystate int64
		var supSpeedMask, actSpeedMask, supWidthMask, actWidthMask int64
		if p, ok := portsByKey[model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}]; ok {
			pstate, _ = p.GetInt("PortState")
			pphystate, _ = p.GetInt("PortPhyState")
			supSpeedMask, _ = p.GetInt("LinkSpeedSupported")
			actSpeedMask, _ = p.GetInt("LinkSpeedActive")
			supWidthMask, _ = p.GetInt("LinkWidthSupported")
			actWidthMask, _ = p.GetInt("LinkWidthActive")
		}
		row["PortState"] = decodeEnum(portStateNames, pstate)
		row["PortPhyState"] = decodeEnum(portPhyStateNames, pphystate)

		actSpeedLabel, actSpeedPrio := decodeSpeed(actSpeedMask)
		_, supSpeedPrio := decodeSpeed(supSpeedMask)
		actWidth, actWidthPrio := decodeWidth(actWidthMask)
		_, supWidthPrio := decodeWidth(supWidthMask)
		row["ActiveSpeed"] = actSpeedLabel
		row["ActiveWidth"] = actWidth

		downshift := (actSpeedPrio >= 0 && supSpeedPrio >= 0 && actSpeedPrio < supSpeedPrio) ||
			(actWidthPrio >= 0 && supWidthPrio >= 0 && actWidthPrio < supWidthPrio)
		row["Downshift"] = downshift

		neighborIsActive := topo != nil && topo.NeighborIsActive(guid, port)
		row["NeighborIsActive"] = neighborIsActive

		creditTimeout := 0.0
		if c, ok := watchdogByKey[model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}]; ok {
			v, _ := c.GetFloat("CreditWatchdogTimeoutCounter")
			creditTimeout = v
		}
		row["CreditWatchdogTimeoutCounter"] = creditTimeout

		var anomalies []string
		var weights []float64

		if fecn > 0 {
			w := math.Max(0.1, math.Log10(fecn+1))
			frame.Add(guid, port, anomaly.FECNAlert, w)
			anomalies = append(anomalies, anomaly.Display(anomaly.FECNAlert))
			weights = append(weights, w)
		}
		if becn > 0 {
			w := math.Max(0.1, math.Log10(becn+1))
			frame.Add(guid, port, anomaly.BECNAlert, w)
			anomalies = append(anomalies, anomaly.Display(anomaly.BECNAlert))
			weights = append(weights, w)
		}
		switch {
		case xmitPct >= 5:
			w := xmitPct / 5
			frame.Add(guid, port, anomaly.XmitTimeCongestion, w)
			anomalies = append(anomalies, anomaly.Display(anomaly.XmitTimeCongestion))
			weights = append(weights, w)
		case xmitPct >= 1:
			w := xmitPct / 10
			frame.Add(guid, port, anomaly.XmitTimeCongestion, w)
			anomalies = append(anomalies, anomaly.Display(anomaly.XmitTimeCongestion))
			weights = append(weights, w)
		}
		switch {
		case waitRatioPct >= 5:
			w := waitRatioPct / 5
			frame.Add(guid, port, anomaly.HighXmitWait, w)
			anomalies = append(anomalies, anomaly.Display(anomaly.HighXmitWait))
			weights = append(weights, w)
		case waitRatioPct >= 1:
			w := waitRatioPct / 10
			frame.Add(guid, port, anomaly.HighXmitWait, w)
			anomalies = append(anomalies, anomaly.Display(anomaly.HighXmitWait))
			weights = append(weights, w)
		}
		if downshift {
			w := 1.0
			if topo != nil {
				if nt := topo.NodeType(topo.AttachedGUID(guid, port)); nt.String() == "Switch" {
					w = 2.0
				}
			}
			frame.Add(guid, port, anomaly.LinkDownshift, w)
			anomalies = append(anomalies, anomaly.Display(anomaly.LinkDownshift))
			weights = append(weights, w)
		}
		if creditTimeout > 0 {
			w := math.Max(0.1, creditTimeout)
			frame.Add(guid, port, anomaly.CreditWatchdog, w)
			anomalies = append(anomalies, anomaly.Display(anomaly.CreditWatchdog))
			weights = append(weights, w)
		}

		if len(anomalies) > 0 {
			row["IBH Anomaly"] = joinStrings(anomalies)
			row["IBH Anomaly Weight"] = sumFloats(weights)
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: frame, Summary: summaryCount(rows, len(frame.Rows))}
}

func indexPortsByKey(f model.Frame) map[model.PortKey]model.Row {
	out := make(map[model.PortKey]model.Row, len(f.Rows))
	for _, r := range f.Rows {
		guid := model.NormalizeGUID(r.GetString("NodeGUID"))
		port := portFromRow(r, "PortNumber")
		out[model.PortKey{GUID: guid, Port: port}] = r
	}
	return out
}

func indexCreditByKey(f model.Frame) map[model.PortKey]model.Row {
	out := make(map[model.PortKey]model.Row, len(f.Rows))
	for _, r := range f.Rows {
		guid := model.NormalizeGUID(r.GetString("NodeGUID"))
		port := portFromRow(r, "PortNumber")
		out[model.PortKey{GUID: guid, Port: port}] = r
	}
	return out
}

// counterPair sums a base 32-bit counter and its 64-bit extended
// counterpart, per §4.4's "derived counters ... from base+ext 32/64-bit
// counter pairs".
func counterPair(r model.Row, base, ext string) float64 {
	b, _ := r.GetFloat(base)
	e, _ := r.GetFloat(ext)
	return b + e
}

// pmPauseTime extracts the --pm_pause_time duration from the dump's
// argument/header sub-table, defaulting to 1.0 (§4.4). The header table's
// exact name is not dictated by the spec beyond "parsed from the
// --pm_pause_time argument in the file header"; RUN_INFO, ARGS and
// FILE_HEADER are the candidates, tried in that order.
func pmPauseTime(inv *dataset.Inventory) float64 {
	for _, table := range []string{"RUN_INFO", "ARGS", "FILE_HEADER"} {
		f := inv.ReadTable(table)
		if f.Empty() {
			continue
		}
		for _, r := range f.Rows {
			if v, ok := r.GetFloat("pm_pause_time"); ok && v > 0 {
				return v
			}
		}
	}
	return 1.0
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func sumFloats(fs []float64) float64 {
	var sum float64
	for _, f := range fs {
		sum += f
	}
	return sum
}
