package dag

import (
	"reflect"
	"testing"

	"typecore/internal/diag"
	"typecore/internal/source"
)

func alias(name, target string, start uint32) Decl {
	return Decl{
		Name: name,
		Span: source.Span{Start: start, End: start + 1},
		Deps: []Dep{{Name: target, Span: source.Span{Start: start + 4, End: start + 5}}},
	}
}

func names(idx Index, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func TestBuildIndexIncludesDeps(t *testing.T) {
	idx := BuildIndex([]Decl{alias("B", "Int", 0), alias("A", "B", 10)})
	want := []string{"A", "B", "Int"}
	if !reflect.DeepEqual(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id := idx.NameToID[name]; int(id) != i {
			t.Fatalf("NameToID[%q] = %d, want %d", name, id, i)
		}
	}
}

func TestToposortAcyclicChain(t *testing.T) {
	decls := []Decl{alias("A", "B", 0), alias("B", "C", 10), alias("C", "Int", 20)}
	idx := BuildIndex(decls)
	g, _ := BuildGraph(idx, decls)
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", names(idx, topo.Cycles))
	}
	if got := names(idx, topo.Order); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("order = %v", got)
	}
	if len(topo.Batches) != 3 {
		t.Fatalf("batches = %v", topo.Batches)
	}
}

func TestToposortReportsCycle(t *testing.T) {
	decls := []Decl{alias("A", "B", 0), alias("B", "A", 10), alias("C", "A", 20)}
	idx := BuildIndex(decls)
	g, slots := BuildGraph(idx, decls)
	topo := ToposortKahn(g)
	if !topo.Cyclic {
		t.Fatal("cycle not detected")
	}
	if got := names(idx, topo.Cycles); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("cycles = %v", got)
	}

	bag := diag.NewBag(8)
	ReportCycles(idx, g, slots, topo, diag.BagReporter{Bag: bag})
	if bag.Len() != 2 {
		t.Fatalf("diagnostics = %d, want 2", bag.Len())
	}
	first := bag.Items()[0]
	if first.Code != diag.TypeAliasCycle {
		t.Fatalf("code = %v", first.Code)
	}
	if first.Message != `type alias "A" is part of a cycle: A -> B -> A` {
		t.Fatalf("message = %q", first.Message)
	}
	if len(first.Notes) != 1 || first.Notes[0].Span.Start != 4 {
		t.Fatalf("notes = %+v", first.Notes)
	}
}

func TestSelfReferenceIsCycle(t *testing.T) {
	decls := []Decl{alias("A", "A", 0)}
	idx := BuildIndex(decls)
	g, _ := BuildGraph(idx, decls)
	topo := ToposortKahn(g)
	if !topo.Cyclic || len(topo.Cycles) != 1 {
		t.Fatalf("topo = %+v", topo)
	}
	if got := names(idx, CyclePath(g, topo, topo.Cycles[0])); !reflect.DeepEqual(got, []string{"A", "A"}) {
		t.Fatalf("path = %v", got)
	}
}

func TestDuplicateDeclKeepsFirst(t *testing.T) {
	decls := []Decl{alias("A", "Int", 0), alias("A", "A", 10)}
	idx := BuildIndex(decls)
	g, slots := BuildGraph(idx, decls)
	if topo := ToposortKahn(g); topo.Cyclic {
		t.Fatal("second declaration must be ignored")
	}
	if slots[idx.NameToID["A"]].Decl.Span.Start != 0 {
		t.Fatalf("slot = %+v", slots[idx.NameToID["A"]])
	}
}
