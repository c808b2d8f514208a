package netdumpext

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	line := "CA:x:1:0xabc:x:x:x:x:x:NeighborNode:x:x:1e-13:1e-14:1e-15:3:2:\"MyNode\""
	path := filepath.Join(t.TempDir(), "dump.net_dump_ext")
	if err := os.WriteFile(path, []byte(line+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.NodeType != "CA" || r.PortNum != 1 || r.NodeGUID != "0xabc" {
		t.Errorf("got %+v", r)
	}
	if r.AttachedTo != "NeighborNode" || r.NodeName != "MyNode" {
		t.Errorf("got %+v", r)
	}
	if r.RawBER != 1e-13 || r.EffectiveBER != 1e-14 || r.SymbolBER != 1e-15 {
		t.Errorf("got %+v", r)
	}
}

func TestParseSkipsUnrelatedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.net_dump_ext")
	if err := os.WriteFile(path, []byte("# comment\nshort:line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected 0 rows, got %d", len(rows))
	}
}
