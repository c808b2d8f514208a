// Package analyzer implements the per-table analyzer fan-out set (§4.4):
// roughly thirty independent analyzers sharing one Dataset Inventory,
// each producing a row set, an anomaly frame, and a summary mapping.
package analyzer

import (
	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/scorer"
	"github.com/ftahirops/ibhealth/internal/topology"
)

// Result is the uniform analyzer output (§4.4): a display row set, an
// anomaly frame (possibly empty), and a summary dictionary.
type Result struct {
	Rows      []scorer.Row
	Anomalies anomaly.Frame
	Summary   map[string]any
}

// Analyzer is the uniform per-table analyzer interface, mirroring the
// teacher's Collector interface (collector.Collector: Name()/Collect()).
type Analyzer interface {
	Name() string
	Analyze(inv *dataset.Inventory) Result
}

// annotateRow seeds the common (NodeGUID, PortNumber, Node Name, Node
// Type, Attached To*) columns shared by every analyzer row (§4.3, §4.4
// "every record ... MUST carry its source key as NodeGUID + PortNumber").
func annotateRow(topo *topology.Lookup, guid string, port int) scorer.Row {
	guid = model.NormalizeGUID(guid)
	row := scorer.Row{
		"NodeGUID": guid,
	}
	if port != 0 {
		row["PortNumber"] = port
	}
	if topo != nil {
		a := topo.Annotate(guid, port)
		if a.NodeName != "" {
			row["Node Name"] = a.NodeName
		}
		row["Node Type"] = a.NodeType
		if a.AttachedTo != "" {
			row["Attached To"] = a.AttachedTo
			row["Attached To GUID"] = a.AttachedToGUID
			row["Attached To Port"] = a.AttachedToPort
			row["Attached To Type"] = a.AttachedToType
		}
	}
	return row
}

// portFromRow coerces a model.Row's PortNum-like column per §4.4's shared
// edge-case policy: int(float(value)); empty/NaN -> 0 ("node-scope").
func portFromRow(row model.Row, col string) int {
	f, ok := row.GetFloat(col)
	if !ok {
		return 0
	}
	return int(f)
}

// summaryCount is a small helper for the common "total rows processed,
// anomalies raised" summary shape most analyzers emit.
func summaryCount(rows []scorer.Row, anomalyCount int) map[string]any {
	return map[string]any{
		"total_rows":     len(rows),
		"anomaly_count":  anomalyCount,
	}
}
