package topology

import (
	"testing"

	"github.com/ftahirops/ibhealth/internal/model"
)

type fakeSource struct {
	tables map[string]model.Frame
}

func (f fakeSource) TableExists(name string) bool {
	_, ok := f.tables[name]
	return ok
}

func (f fakeSource) ReadTable(name string) model.Frame {
	return f.tables[name]
}

func row(cells map[string]string) model.Row {
	r := make(model.Row, len(cells))
	for k, v := range cells {
		r[k] = model.CellFromRaw(v)
	}
	return r
}

func TestBuildAndAnnotate(t *testing.T) {
	src := fakeSource{tables: map[string]model.Frame{
		"NODES": {
			Rows: []model.Row{
				row(map[string]string{"NodeGUID": "0x1", "NodeDesc": `"switch-a"`, "NodeType": "2"}),
				row(map[string]string{"NodeGUID": "0x2", "NodeDesc": `"hca-a"`, "NodeType": "1"}),
			},
		},
		"LINKS": {
			Rows: []model.Row{
				row(map[string]string{
					"NodeGUID1": "0x1", "PortNumber1": "1",
					"NodeGUID2": "0x2", "PortNumber2": "1",
				}),
			},
		},
	}}

	l := Build(src)

	if l.NodeLabel("0x1") != "switch-a" {
		t.Errorf("NodeLabel(0x1) = %q", l.NodeLabel("0x1"))
	}
	if l.NodeType("0x1") != NodeSwitch {
		t.Errorf("NodeType(0x1) = %v", l.NodeType("0x1"))
	}

	// P2: both directions present.
	if got := l.AttachedGUID("0x1", 1); got != "0x2" {
		t.Errorf("AttachedGUID(0x1,1) = %q", got)
	}
	if got := l.AttachedGUID("0x2", 1); got != "0x1" {
		t.Errorf("AttachedGUID(0x2,1) = %q", got)
	}

	ann := l.Annotate("0x1", 1)
	if ann.AttachedTo != "hca-a" || ann.AttachedToType != "HCA" {
		t.Errorf("unexpected annotation: %+v", ann)
	}
}

func TestBuildMissingTables(t *testing.T) {
	l := Build(fakeSource{tables: map[string]model.Frame{}})
	if l.NodeLabel("0x1") != "" {
		t.Errorf("expected empty label for missing topology")
	}
	ann := l.Annotate("0x1", 1)
	if ann.AttachedTo != "" {
		t.Errorf("expected no attachment, got %+v", ann)
	}
}
