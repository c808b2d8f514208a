package model

// PortKey is the universal port key used across analyzers and the health
// scorer: (NodeGUID, PortNumber), §3. PortNumber 0 means "no specific
// port" — a node-level anomaly or record.
type PortKey struct {
	GUID string
	Port int
}

// NodeScope builds a node-level key (port 0).
func NodeScope(guid string) PortKey { return PortKey{GUID: guid, Port: 0} }

// IsNodeScope reports whether the key carries no specific port.
func (k PortKey) IsNodeScope() bool { return k.Port == 0 }
