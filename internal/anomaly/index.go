package anomaly

import "github.com/ftahirops/ibhealth/internal/model"

// IndexKey is a three-tier lookup entry: (guid, port), (guid, null) —
// "broadened" to any port on that node — or ("", port) — "unkeyed" to any
// node with that port. nil Port means "null" in the tuple.
type IndexKey struct {
	GUID string
	Port *int
}

// Index is the (guid, port_or_null) set built from one or more anomaly
// frames, per §4.8. It is used to decide whether a display row belongs in
// the "issue rows" view.
type Index struct {
	set map[setKey]struct{}
}

// setKey is the comparable form of an IndexKey: keying the set on IndexKey
// itself would compare Port pointers rather than the port numbers.
type setKey struct {
	guid    string
	port    int
	hasPort bool
}

func (k IndexKey) setKey() setKey {
	if k.Port == nil {
		return setKey{guid: k.GUID}
	}
	return setKey{guid: k.GUID, port: *k.Port, hasPort: true}
}

// NewIndex builds an Index from the given frames. For each row, the
// indexed keys are: (guid, port), (guid, null) and ("", port) — the
// three-tier broadening described in §4.8 — plus ("", null) is never
// inserted, since it would match everything.
func NewIndex(frames ...Frame) *Index {
	idx := &Index{set: make(map[setKey]struct{})}
	for _, f := range frames {
		for _, row := range f.Rows {
			guid := model.NormalizeGUID(row.GUID)
			port := normalizedPort(row.Port)
			idx.insert(IndexKey{GUID: guid, Port: port})
			idx.insert(IndexKey{GUID: guid, Port: nil})
			if port != nil {
				idx.insert(IndexKey{GUID: "", Port: port})
			}
		}
	}
	return idx
}

func normalizedPort(p int) *int {
	if p == 0 {
		return nil
	}
	v := p
	return &v
}

func (idx *Index) insert(k IndexKey) {
	idx.set[k.setKey()] = struct{}{}
}

func (idx *Index) has(k IndexKey) bool {
	_, ok := idx.set[k.setKey()]
	return ok
}

// Matches reports whether (guid, port) is covered by the index under any
// of the four lookup tiers from §4.8: (guid,port), (guid,null),
// ("",port), ("",null).
func (idx *Index) Matches(guid string, port int) bool {
	if idx == nil {
		return false
	}
	guid = model.NormalizeGUID(guid)
	p := normalizedPort(port)
	if idx.has(IndexKey{GUID: guid, Port: p}) {
		return true
	}
	if idx.has(IndexKey{GUID: guid, Port: nil}) {
		return true
	}
	if p != nil && idx.has(IndexKey{GUID: "", Port: p}) {
		return true
	}
	if idx.has(IndexKey{GUID: "", Port: nil}) {
		return true
	}
	return false
}

// Len returns the number of distinct keys in the index (diagnostics only).
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.set)
}
