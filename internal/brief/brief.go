// Package brief implements the Brief Merger (§4.5): combines the raw row
// sets from the xmit, cable, ber and hca analyzers into one ordered
// overview row set for UI display.
package brief

import (
	"strconv"

	"github.com/ftahirops/ibhealth/internal/scorer"
)

// columns is the fixed overview projection (§4.5). Columns absent from
// every input row are dropped when building the merged set.
var columns = []string{
	"Index", "NodeGUID", "Node Name", "Node Type", "PortNumber",
	"Attached To", "Attached To GUID", "Attached To Port", "Attached To Type",
	"PortState", "PortPhyState", "CongestionLevel", "WaitRatioPct",
	"FECNCount", "BECNCount", "Temperature (c)", "SymbolBERSeverity",
	"FWVersion", "PSID",
	"IBH Anomaly", "IBH Anomaly Weight",
}

// Merge builds the overview rows: start from xmit (one row per
// (NodeGUID, PortNumber)), left-join cable and ber on (NodeGUID,
// PortNumber) keeping xmit's value on collision, then left-join hca on
// NodeGUID alone. The result is projected onto the fixed column list.
func Merge(xmit, cable, ber, hca []scorer.Row) []scorer.Row {
	cableByKey := indexByGUIDPort(cable)
	berByKey := indexByGUIDPort(ber)
	hcaByGUID := indexByGUID(hca)

	out := make([]scorer.Row, 0, len(xmit))
	for i, x := range xmit {
		merged := scorer.Row{}
		guid, _ := x["NodeGUID"].(string)
		port := portOf(x)

		if c, ok := cableByKey[key(guid, port)]; ok {
			copyInto(merged, c)
		}
		if b, ok := berByKey[key(guid, port)]; ok {
			copyInto(merged, b)
		}
		copyInto(merged, x) // xmit wins collisions: applied last
		if h, ok := hcaByGUID[guid]; ok {
			copyIfAbsent(merged, h)
		}
		merged["Index"] = i

		out = append(out, project(merged))
	}
	return out
}

func portOf(row scorer.Row) int {
	switch v := row["PortNumber"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func key(guid string, port int) string {
	return guid + "\x00" + strconv.Itoa(port)
}

func indexByGUIDPort(rows []scorer.Row) map[string]scorer.Row {
	out := make(map[string]scorer.Row, len(rows))
	for _, r := range rows {
		guid, _ := r["NodeGUID"].(string)
		out[key(guid, portOf(r))] = r
	}
	return out
}

func indexByGUID(rows []scorer.Row) map[string]scorer.Row {
	out := make(map[string]scorer.Row, len(rows))
	for _, r := range rows {
		guid, _ := r["NodeGUID"].(string)
		out[guid] = r
	}
	return out
}

func copyInto(dst, src scorer.Row) {
	for k, v := range src {
		dst[k] = v
	}
}

func copyIfAbsent(dst, src scorer.Row) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

// project keeps only the fixed overview columns present in row, dropping
// anything else that survived the joins.
func project(row scorer.Row) scorer.Row {
	out := make(scorer.Row, len(columns))
	for _, c := range columns {
		if v, ok := row[c]; ok {
			out[c] = v
		}
	}
	return out
}
