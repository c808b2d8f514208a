package anomaly

import (
	"math"
	"testing"
)

func TestFrameAddDiscardsNonPositiveWeights(t *testing.T) {
	var f Frame
	f.Add("0x1", 1, FECNAlert, 0)
	f.Add("0x1", 1, FECNAlert, -1)
	f.Add("0x1", 1, FECNAlert, math.NaN())
	f.Add("0x1", 1, FECNAlert, math.Inf(1))
	if len(f.Rows) != 0 {
		t.Fatalf("expected all rows discarded, got %v", f.Rows)
	}
	f.Add("0x1", 1, FECNAlert, 0.1)
	if len(f.Rows) != 1 {
		t.Fatalf("expected one row, got %v", f.Rows)
	}
}

func TestKindDefaults(t *testing.T) {
	if CategoryOf(HighSymbolBER) != CategoryBER {
		t.Errorf("HighSymbolBER category = %v", CategoryOf(HighSymbolBER))
	}
	if SeverityOf(HighSymbolBER) != Critical {
		t.Errorf("HighSymbolBER severity = %v", SeverityOf(HighSymbolBER))
	}
	if len(All()) < 25 {
		t.Errorf("expected a closed enum of ~30 kinds, got %d", len(All()))
	}
}

func TestIndexThreeTierMatch(t *testing.T) {
	var f Frame
	f.Add("0x1", 2, LinkDown, 5)
	idx := NewIndex(f)

	if !idx.Matches("0x1", 2) {
		t.Error("expected exact (guid,port) match")
	}
	if !idx.Matches("0x1", 99) {
		t.Error("expected (guid,null) broadened match")
	}
	if !idx.Matches("0x2", 2) {
		t.Error("expected (\"\",port) unkeyed match for the same port on another guid")
	}
	if idx.Matches("0x2", 3) {
		t.Error("did not expect a match for an unrelated guid and port")
	}
}
