// Package dataset implements the Dataset Inventory (§4.2): one instance per
// extracted dump directory, holding the dump file path, a table index
// built when the Inventory is created, a lazily populated table cache, and
// a lazily computed topology lookup. All accessors
// are safe for concurrent reads; internal caches use a mutex on
// first-populate, mirroring how the teacher's config/engine packages guard
// their own singleton state.
package dataset

import (
	"fmt"
	"sync"

	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/reader"
	"github.com/ftahirops/ibhealth/internal/topology"
)

// TopologyBuilder constructs a topology.Lookup from a NODES/LINKS-capable
// table source. It is implemented by *Inventory itself; declared as an
// interface here so internal/topology never imports internal/dataset.
type TopologyBuilder interface {
	ReadTable(name string) model.Frame
	TableExists(name string) bool
}

// Inventory is the per-extract dataset cache described in §4.2. Per the §9
// design note on per-analyzer caches, the Inventory — not each analyzer —
// owns the parsed-frame cache, keyed by table name, so parallel analyzers
// reading the same sub-table (e.g. PORTS, read by both xmit and cable)
// share one parsed copy.
type Inventory struct {
	path string
	r    *reader.Reader

	framesMu sync.Mutex
	frames   map[string]model.Frame

	topoOnce sync.Once
	topo     *topology.Lookup
}

// New builds an Inventory by indexing the dump file at path (§4.1). Returns
// reader.ErrDatasetNotFound / reader.ErrCorruptIndex verbatim so callers can
// match them with errors.Is.
func New(path string) (*Inventory, error) {
	r, err := reader.NewReader(path)
	if err != nil {
		return nil, err
	}
	return &Inventory{
		path:   path,
		r:      r,
		frames: make(map[string]model.Frame),
	}, nil
}

// Path returns the dump file path this Inventory was built from.
func (inv *Inventory) Path() string { return inv.path }

// TableExists probes the index without reading the table body.
func (inv *Inventory) TableExists(name string) bool {
	return inv.r.TableExists(name)
}

// ReadTable returns the named sub-table as a model.Frame, coercing raw CSV
// cells per §3's sentinel/quote rules. Absent tables return an empty frame,
// never an error — analyzers are expected to degrade gracefully (§4.1).
// The parsed frame is cached so repeat callers (and sibling analyzers that
// join the same table) pay the CSV-parse cost once.
func (inv *Inventory) ReadTable(name string) model.Frame {
	inv.framesMu.Lock()
	defer inv.framesMu.Unlock()

	if f, ok := inv.frames[name]; ok {
		return f
	}

	if !inv.r.TableExists(name) {
		f := model.EmptyFrame(name)
		inv.frames[name] = f
		return f
	}

	raw, err := inv.r.ReadTable(name)
	if err != nil {
		// Missing marker races with TableExists are not expected once the
		// index is built; treat any read failure as "absent" rather than
		// propagating, consistent with the analyzer degrade-gracefully
		// contract (§4.1/§7 "Analyzer degraded").
		f := model.EmptyFrame(name)
		inv.frames[name] = f
		return f
	}

	f := convertFrame(raw)
	inv.frames[name] = f
	return f
}

// Topology returns the dataset's topology lookup (§4.3), building it on
// first call from the NODES/LINKS sub-tables.
func (inv *Inventory) Topology() *topology.Lookup {
	inv.topoOnce.Do(func() {
		inv.topo = topology.Build(inv)
	})
	return inv.topo
}

func convertFrame(raw reader.Frame) model.Frame {
	rows := make([]model.Row, len(raw.Rows))
	for i, fields := range raw.Rows {
		row := make(model.Row, len(raw.Header))
		for j, col := range raw.Header {
			if j >= len(fields) {
				row[col] = model.NullCell
				continue
			}
			row[col] = model.CellFromRaw(fields[j])
		}
		rows[i] = row
	}
	return model.Frame{Name: raw.Name, Columns: raw.Header, Rows: rows}
}

// String implements fmt.Stringer for log messages.
func (inv *Inventory) String() string {
	return fmt.Sprintf("dataset(%s)", inv.path)
}
