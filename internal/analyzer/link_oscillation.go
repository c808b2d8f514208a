package analyzer

import (
	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

// LinkOscillation implements Family H (§4.4): bidirectional link flapping
// detection from PM_INFO, pairing each port with its topology neighbor
// and aggregating LinkDownedCounter(+Ext) on both sides.
type LinkOscillation struct{}

func (LinkOscillation) Name() string { return "link_oscillation" }

func (LinkOscillation) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable("PM_INFO")
	if frame.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	topo := inv.Topology()

	byKey := make(map[model.PortKey]model.Row, len(frame.Rows))
	for _, r := range frame.Rows {
		guid := model.NormalizeGUID(r.GetString("NodeGUID"))
		port := portFromRow(r, "PortNumber")
		byKey[model.PortKey{GUID: guid, Port: port}] = r
	}

	var rows []scorer.Row
	var anomalyFrame anomaly.Frame
	seen := make(map[model.PortKey]bool, len(frame.Rows))

	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		key := model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}
		if seen[key] {
			continue
		}
		seen[key] = true

		localFlaps := localDownCount(r)
		total := localFlaps

		var neighborKey model.PortKey
		hasNeighbor := false
		if topo != nil {
			if nPort, ok := topo.AttachedPort(guid, port); ok {
				nGUID := topo.AttachedGUID(guid, port)
				neighborKey = model.PortKey{GUID: model.NormalizeGUID(nGUID), Port: nPort}
				hasNeighbor = true
				if nr, ok := byKey[neighborKey]; ok {
					total += localDownCount(nr)
					seen[neighborKey] = true
				}
			}
		}

		row := annotateRow(topo, guid, port)
		row["LinkDownedCounterTotal"] = total

		var severity anomaly.Severity
		switch {
		case total >= 100:
			severity = anomaly.Critical
		case total >= 20:
			severity = anomaly.Warning
		}
		if severity != "" {
			w := max01(total)
			anomalyFrame.Add(guid, port, anomaly.LinkFlapping, w)
			row["IBH Anomaly"] = anomaly.Display(anomaly.LinkFlapping)
			row["IBH Anomaly Weight"] = w
			if hasNeighbor {
				anomalyFrame.Add(neighborKey.GUID, neighborKey.Port, anomaly.LinkFlapping, w)
			}
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: anomalyFrame, Summary: summaryCount(rows, len(anomalyFrame.Rows))}
}

func localDownCount(r model.Row) float64 {
	a, _ := r.GetFloat("LinkDownedCounter")
	b, _ := r.GetFloat("LinkDownedCounterExt")
	return a + b
}
