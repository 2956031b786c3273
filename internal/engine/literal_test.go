package engine

import "testing"

func TestLiteralPoolReusesLabelForSameExpr(t *testing.T) {
	p := NewLiteralPool()
	a := p.LabelFor("foo+4")
	b := p.LabelFor("foo+4")
	if a != b {
		t.Errorf("LabelFor called twice with the same expr returned %q and %q", a, b)
	}
}

func TestLiteralPoolDistinctExprsGetDistinctLabels(t *testing.T) {
	p := NewLiteralPool()
	a := p.LabelFor("foo")
	b := p.LabelFor("bar")
	if a == b {
		t.Error("distinct expressions got the same literal label")
	}
}

func TestLiteralPoolFlushClearsAndOrders(t *testing.T) {
	p := NewLiteralPool()
	p.LabelFor("foo")
	p.LabelFor("bar")
	entries := p.Flush()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Expr != "foo" || entries[1].Expr != "bar" {
		t.Errorf("entries = %+v, want insertion order foo, bar", entries)
	}
	if !p.Empty() {
		t.Error("pool not empty after Flush")
	}
}
