package analyzer

import (
	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/scorer"
	"github.com/ftahirops/ibhealth/internal/topobaseline"
)

// Routing implements the adaptive-routing/RN-counter portion of Family F
// (§4.4), plus the optional topology baseline comparison (§6
// EXPECTED_TOPOLOGY_FILE): when a Baseline is configured, every LINKS row
// whose actual far end disagrees with the baseline's expected neighbor is
// flagged IBH_CABLE_MISMATCH — the same kind the Cable analyzer uses for
// cable length/speed disagreement, since both describe "this cable isn't what it
// should be". With no Baseline it is a display-only analyzer.
type Routing struct {
	Baseline *topobaseline.Baseline
}

func (Routing) Name() string { return "routing" }

func (a Routing) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable("AR_INFO")
	topo := inv.Topology()

	var rows []scorer.Row
	if !frame.Empty() {
		for _, r := range frame.Rows {
			guid := r.GetString("NodeGUID")
			port := portFromRow(r, "PortNumber")
			row := annotateRow(topo, guid, port)
			for _, col := range frame.Columns {
				if col == "NodeGUID" || col == "PortNumber" {
					continue
				}
				if v := r.Get(col).Raw(); v != nil {
					row[col] = v
				}
			}
			rows = append(rows, row)
		}
	}

	anomalyFrame := a.checkBaseline(inv)
	if len(rows) == 0 && len(anomalyFrame.Rows) == 0 {
		return Result{Summary: summaryCount(nil, 0)}
	}
	return Result{Rows: rows, Anomalies: anomalyFrame, Summary: summaryCount(rows, len(anomalyFrame.Rows))}
}

// checkBaseline compares every LINKS row's actual far end against the
// configured topology baseline, emitting IBH_CABLE_MISMATCH for any
// (guid, port) whose neighbor the baseline names but disagrees with.
func (a Routing) checkBaseline(inv *dataset.Inventory) anomaly.Frame {
	var frame anomaly.Frame
	if a.Baseline == nil {
		return frame
	}
	links := inv.ReadTable("LINKS")
	if links.Empty() {
		return frame
	}

	seen := make(map[model.PortKey]bool)
	check := func(guid string, port int, peerGUID string, peerPort int) {
		guid = model.NormalizeGUID(guid)
		key := model.PortKey{GUID: guid, Port: port}
		if seen[key] {
			return
		}
		seen[key] = true
		wantGUID, wantPort, ok := a.Baseline.ExpectedNeighbor(guid, port)
		if !ok {
			return
		}
		if model.NormalizeGUID(wantGUID) == model.NormalizeGUID(peerGUID) && wantPort == peerPort {
			return
		}
		frame.Add(guid, port, anomaly.CableMismatch, 1.0)
	}

	for _, r := range links.Rows {
		g1 := r.GetString("NodeGUID1")
		g2 := r.GetString("NodeGUID2")
		p1 := portFromRow(r, "PortNumber1")
		p2 := portFromRow(r, "PortNumber2")
		check(g1, p1, g2, p2)
		check(g2, p2, g1, p1)
	}
	return frame
}

// MLNXCounters implements Family F's MLNX QP counter thresholds (RNR,
// timeouts, flush/QP errors — §4.4).
type MLNXCounters struct{}

func (MLNXCounters) Name() string { return "mlnx_counters" }

func (MLNXCounters) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable("MLNX_QP_COUNTERS")
	if frame.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	topo := inv.Topology()

	var rows []scorer.Row
	var anomalyFrame anomaly.Frame
	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		row := annotateRow(topo, guid, port)

		rnr, _ := r.GetFloat("RNRNakCounter")
		timeouts, _ := r.GetFloat("TimeoutCounter")
		qpErrors, _ := r.GetFloat("QPErrorCounter")
		row["RNRNakCounter"] = rnr
		row["TimeoutCounter"] = timeouts
		row["QPErrorCounter"] = qpErrors

		var anomalies []string
		var weights []float64
		add := func(kind anomaly.Kind, w float64) {
			anomalyFrame.Add(guid, port, kind, w)
			anomalies = append(anomalies, anomaly.Display(kind))
			weights = append(weights, w)
		}

		switch {
		case rnr >= 100000:
			add(anomaly.MLNXRNRHigh, 3.0)
		case rnr >= 1000:
			add(anomaly.MLNXRNRHigh, 1.0)
		}
		switch {
		case timeouts >= 10000:
			add(anomaly.MLNXTimeoutHigh, 3.0)
		case timeouts >= 100:
			add(anomaly.MLNXTimeoutHigh, 1.0)
		}
		if qpErrors >= 10 {
			add(anomaly.MLNXQPError, max01(qpErrors/10))
		}

		if len(anomalies) > 0 {
			row["IBH Anomaly"] = joinStrings(anomalies)
			row["IBH Anomaly Weight"] = sumFloats(weights)
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: anomalyFrame, Summary: summaryCount(rows, len(anomalyFrame.Rows))}
}

// CreditWatchdog exposes the CREDIT_WATCHDOG_TIMEOUT_COUNTERS table as its
// own named view (§6's output payload list names `credit_watchdog`
// separately from `xmit`, even though the anomaly itself, IBH_CREDIT_
// WATCHDOG, is emitted by the Xmit analyzer per §4.4 Family A — this
// analyzer is display-only to avoid double-counting the anomaly).
type CreditWatchdog struct{}

func (CreditWatchdog) Name() string { return "credit_watchdog" }

func (CreditWatchdog) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable("CREDIT_WATCHDOG_TIMEOUT_COUNTERS")
	if frame.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	topo := inv.Topology()

	var rows []scorer.Row
	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		row := annotateRow(topo, guid, port)
		v, _ := r.GetFloat("CreditWatchdogTimeoutCounter")
		row["CreditWatchdogTimeoutCounter"] = v
		rows = append(rows, row)
	}
	return Result{Rows: rows, Summary: summaryCount(rows, 0)}
}
