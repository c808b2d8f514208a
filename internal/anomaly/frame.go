package anomaly

import (
	"math"

	"github.com/ftahirops/ibhealth/internal/model"
)

// Row is one anomaly frame entry: (NodeGUID, PortNumber, anomaly_kind,
// weight), §3. PortNumber 0 means a node-level anomaly.
type Row struct {
	GUID   string
	Port   int
	Kind   Kind
	Weight float64
}

// Key returns the row's port key.
func (r Row) Key() model.PortKey { return model.PortKey{GUID: r.GUID, Port: r.Port} }

// Frame is a set of anomaly rows produced by one analyzer. Multiple rows
// for the same key are allowed (§3); zero-weight rows are discarded by
// Add (Merge only concatenates frames), and every weight is finite and >= 0 (invariant I2/P3).
type Frame struct {
	Rows []Row
}

// Add appends a row to the frame, discarding non-finite or non-positive
// weights per invariant I2/P3.
func (f *Frame) Add(guid string, port int, kind Kind, weight float64) {
	if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return
	}
	f.Rows = append(f.Rows, Row{GUID: model.NormalizeGUID(guid), Port: port, Kind: kind, Weight: weight})
}

// Merge union-merges anomaly frames in order, preserving each frame's
// internal row order (the orchestrator's determinism requirement, §4.6/§5
// "iteration order ... insertion-ordered").
func Merge(frames ...Frame) Frame {
	var out Frame
	for _, f := range frames {
		out.Rows = append(out.Rows, f.Rows...)
	}
	return out
}
