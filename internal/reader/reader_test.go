package reader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDump(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fabric.db_csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIndexAndReadTable(t *testing.T) {
	body := "" +
		"START_NODES\n" +
		"NodeGUID,NodeDesc,NodeType\n" +
		"0x1,\"switch-a\",2\n" +
		"0x2,\"hca-a\",1\n" +
		"END_NODES\n" +
		"START_PORTS\n" +
		"NodeGUID,PortNumber,PortState\n" +
		"0x1,1,4\n" +
		"END_PORTS\n"

	path := writeDump(t, body)
	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if !r.TableExists("NODES") || !r.TableExists("PORTS") {
		t.Fatalf("expected NODES and PORTS in index, got %v", r.Index())
	}
	if r.TableExists("ABSENT") {
		t.Fatalf("ABSENT should not exist")
	}

	nodes, err := r.ReadTable("NODES")
	if err != nil {
		t.Fatalf("ReadTable(NODES): %v", err)
	}
	if len(nodes.Header) != 3 || nodes.Header[0] != "NodeGUID" {
		t.Fatalf("unexpected header: %v", nodes.Header)
	}
	if len(nodes.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(nodes.Rows), nodes.Rows)
	}
	if nodes.Rows[0][1] != "switch-a" {
		t.Fatalf("expected quotes stripped, got %q", nodes.Rows[0][1])
	}

	_, err = r.ReadTable("ABSENT")
	if err == nil {
		t.Fatalf("expected error for absent table")
	}
}

func TestCorruptIndexMissingEdge(t *testing.T) {
	body := "START_NODES\nNodeGUID\n0x1\n" // no END_NODES
	path := writeDump(t, body)
	_, err := NewReader(path)
	if err == nil {
		t.Fatalf("expected corrupt index error")
	}
}

func TestDatasetNotFound(t *testing.T) {
	_, err := NewReader("/nonexistent/path/fabric.db_csv")
	if err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestQuoteCharEscaping(t *testing.T) {
	body := "START_T\nA,B\n\x071,2\x07,3\nEND_T\n"
	path := writeDump(t, body)
	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	fr, err := r.ReadTable("T")
	if err != nil {
		t.Fatal(err)
	}
	if len(fr.Rows) != 1 || fr.Rows[0][0] != "1,2" || fr.Rows[0][1] != "3" {
		t.Fatalf("unexpected quoted parse: %v", fr.Rows)
	}
}
