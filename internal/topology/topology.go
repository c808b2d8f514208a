// Package topology implements the Topology Lookup (§4.3): the
// NodeGUID -> (name, type) and (NodeGUID, PortNumber) -> neighbor maps
// derived from the NODES and LINKS sub-tables, plus the row-annotator used
// by analyzers to enrich their output with neighbor/name columns.
package topology

import (
	"strings"

	"github.com/ftahirops/ibhealth/internal/model"
)

// NodeType is the decoded NodeType enum from the NODES table.
type NodeType int

const (
	NodeUnknown NodeType = 0
	NodeHCA     NodeType = 1
	NodeSwitch  NodeType = 2
	NodeRouter  NodeType = 3
)

func (t NodeType) String() string {
	switch t {
	case NodeHCA:
		return "HCA"
	case NodeSwitch:
		return "Switch"
	case NodeRouter:
		return "Router"
	default:
		return "Unknown"
	}
}

// FrameSource is the minimal dependency topology.Build needs from a
// Dataset Inventory: table presence/lookup. Declared here (rather than
// depending on package dataset) so dataset -> topology stays a one-way
// import.
type FrameSource interface {
	TableExists(name string) bool
	ReadTable(name string) model.Frame
}

// Lookup holds the derived NODES/LINKS maps for one dataset.
type Lookup struct {
	names     map[string]string
	types     map[string]NodeType
	neighbors map[model.PortKey]model.PortKey
}

// Build constructs a Lookup from the NODES and LINKS sub-tables of src. A
// missing table degrades to an empty map rather than an error (§4.1/§4.4
// shared edge-case policy).
func Build(src FrameSource) *Lookup {
	l := &Lookup{
		names:     make(map[string]string),
		types:     make(map[string]NodeType),
		neighbors: make(map[model.PortKey]model.PortKey),
	}

	if src.TableExists("NODES") {
		nodes := src.ReadTable("NODES")
		for _, row := range nodes.Rows {
			guid := model.NormalizeGUID(row.GetString("NodeGUID"))
			if guid == "" {
				continue
			}
			desc := strings.Trim(row.GetString("NodeDesc"), `"`)
			if desc != "" {
				l.names[guid] = desc
			}
			if nt, ok := row.GetInt("NodeType"); ok {
				l.types[guid] = NodeType(nt)
			}
		}
	}

	if src.TableExists("LINKS") {
		links := src.ReadTable("LINKS")
		for _, row := range links.Rows {
			g1 := model.NormalizeGUID(row.GetString("NodeGUID1"))
			g2 := model.NormalizeGUID(row.GetString("NodeGUID2"))
			p1, p1ok := model.NormalizePort(row.Get("PortNumber1"))
			p2, p2ok := model.NormalizePort(row.Get("PortNumber2"))
			if g1 == "" || g2 == "" {
				continue
			}
			if !p1ok && !p2ok {
				continue
			}
			k1 := model.PortKey{GUID: g1, Port: p1}
			k2 := model.PortKey{GUID: g2, Port: p2}
			l.neighbors[k1] = k2
			l.neighbors[k2] = k1
		}
	}

	return l
}

// NodeLabel returns the NODES NodeDesc for guid, or "" if unknown.
func (l *Lookup) NodeLabel(guid string) string {
	return l.names[model.NormalizeGUID(guid)]
}

// NodeType returns the decoded NodeType for guid, defaulting to Unknown.
func (l *Lookup) NodeType(guid string) NodeType {
	return l.types[model.NormalizeGUID(guid)]
}

// AttachedGUID returns the neighbor NodeGUID for (guid, port), or "" if no
// link row covers this port.
func (l *Lookup) AttachedGUID(guid string, port int) string {
	k, ok := l.neighbors[model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}]
	if !ok {
		return ""
	}
	return k.GUID
}

// AttachedPort returns the neighbor PortNumber for (guid, port), or (0,
// false) if unknown.
func (l *Lookup) AttachedPort(guid string, port int) (int, bool) {
	k, ok := l.neighbors[model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}]
	if !ok {
		return 0, false
	}
	return k.Port, true
}

// Annotation is the set of derived columns the row-annotator adds.
type Annotation struct {
	NodeName        string
	NodeType        string
	AttachedToGUID  string
	AttachedToPort  int
	AttachedTo      string
	AttachedToType  string
}

// Annotate enriches a (guid, port) pair with the columns described in
// §4.3: Node Name, Node Type, Attached To GUID, Attached To Port, Attached
// To, Attached To Type. Unknown entries default to zero values rather
// than erroring — topology absence never blocks a row from being listed
// (§3 invariant I1).
func (l *Lookup) Annotate(guid string, port int) Annotation {
	guid = model.NormalizeGUID(guid)
	a := Annotation{
		NodeName: l.NodeLabel(guid),
		NodeType: l.NodeType(guid).String(),
	}
	if nk, ok := l.neighbors[model.PortKey{GUID: guid, Port: port}]; ok {
		a.AttachedToGUID = nk.GUID
		a.AttachedToPort = nk.Port
		a.AttachedToType = l.NodeType(nk.GUID).String()
		label := l.NodeLabel(nk.GUID)
		if label == "" {
			label = nk.GUID
		}
		a.AttachedTo = label
	}
	return a
}

// NeighborIsActive reports whether the neighbor of (guid, port), if any,
// looks administratively/physically active. Family A copies it into each
// row's NeighborIsActive column, which the scorer's neighbor heuristic
// rule reads. "Active" here means topology knows of a neighbor at all;
// the neighbor's own port state is not consulted, since topology.Lookup
// has no counters of its own.
func (l *Lookup) NeighborIsActive(guid string, port int) bool {
	_, ok := l.neighbors[model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}]
	return ok
}
