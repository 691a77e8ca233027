package importgraph

import (
	"reflect"
	"testing"
)

func edge(from, to string) Edge {
	return Edge{From: from, To: to, Tag: "import_port_type", Line: 1}
}

func TestGraph_AddImport(t *testing.T) {
	g := New()
	g.AddImport(edge("top.xml", "comp.xml"))
	g.AddImport(edge("comp.xml", "port.xml"))
	g.AddImport(edge("comp.xml", "port.xml"))

	if g.DocumentCount() != 3 {
		t.Errorf("expected 3 documents, got %d", g.DocumentCount())
	}
	if g.ImportCount() != 2 {
		t.Errorf("expected 2 imports, got %d", g.ImportCount())
	}
	if got := g.Importers("port.xml"); !reflect.DeepEqual(got, []string{"comp.xml"}) {
		t.Errorf("unexpected importers of port.xml: %v", got)
	}
}

func TestGraph_FindCycle_NoCycle(t *testing.T) {
	g := New()
	g.AddImport(edge("a", "b"))
	g.AddImport(edge("a", "c"))
	g.AddImport(edge("b", "c"))

	if cycle := g.FindCycle("a"); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestGraph_FindCycle_WithCycle(t *testing.T) {
	g := New()
	g.AddImport(edge("top", "a"))
	g.AddImport(edge("a", "b"))
	g.AddImport(edge("b", "c"))
	g.AddImport(edge("c", "a"))

	cycle := g.FindCycle("top")
	want := []string{"a", "b", "c", "a"}
	if !reflect.DeepEqual(cycle, want) {
		t.Errorf("expected cycle %v, got %v", want, cycle)
	}
}

func TestGraph_FindCycle_SelfImport(t *testing.T) {
	g := New()
	g.AddImport(edge("a", "a"))

	cycle := g.FindCycle("a")
	if !reflect.DeepEqual(cycle, []string{"a", "a"}) {
		t.Errorf("expected self cycle, got %v", cycle)
	}
}

func TestGraph_Order(t *testing.T) {
	g := New()
	g.AddImport(edge("top", "comp"))
	g.AddImport(edge("comp", "port"))
	g.AddImport(edge("top", "port"))

	order, err := g.Order()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	if pos["port"] > pos["comp"] || pos["comp"] > pos["top"] {
		t.Errorf("imports must come before importers, got %v", order)
	}

	g.AddImport(edge("port", "top"))
	if _, err := g.Order(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_Affected(t *testing.T) {
	g := New()
	g.AddImport(edge("top1", "comp"))
	g.AddImport(edge("top2", "other"))
	g.AddImport(edge("comp", "port"))

	got := g.Affected([]string{"port", "unknown"})
	want := []string{"comp", "port", "top1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGraph_Merge(t *testing.T) {
	a := New()
	a.AddImport(edge("top", "comp"))
	b := New()
	b.AddImport(edge("comp", "port"))

	a.Merge(b)
	if !a.HasDocument("port") {
		t.Error("expected merged document")
	}
	if got := a.Affected([]string{"port"}); len(got) != 3 {
		t.Errorf("expected 3 affected documents, got %v", got)
	}
}

func TestGraph_Documents(t *testing.T) {
	g := New()
	g.AddImport(edge("top", "comp"))
	g.AddDocument("other")

	got := g.Documents()
	if want := []string{"top", "comp", "other"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	got[0] = "changed"
	if g.Documents()[0] != "top" {
		t.Error("Documents must return a copy")
	}
}
