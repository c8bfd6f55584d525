package dag

import (
	"fmt"
	"slices"
	"strings"

	"typecore/internal/diag"
	"typecore/internal/source"
)

// Dep is a reference from one declaration to another by name.
type Dep struct {
	Name string
	Span source.Span
}

// Decl is one graph node: a declaration and the names it depends on.
type Decl struct {
	Name string
	Span source.Span
	Deps []Dep
}

type Graph struct {
	Edges   [][]NodeID // Edges[from] = []to
	Indeg   []int      // входящие степени для Kahn (только присутствующие узлы)
	Present []bool     // узел объявлен, а не только упомянут
}

type Slot struct {
	Decl    Decl
	Present bool
}

// BuildGraph links declarations by their deps. Names that are only
// referenced stay absent and never block the sort. The first declaration of
// a name wins; duplicates are reported by the caller.
func BuildGraph(idx Index, decls []Decl) (Graph, []Slot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]Slot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Decl.Name = name
	}

	for _, d := range decls {
		id, ok := idx.NameToID[d.Name]
		if !ok || slots[int(id)].Present {
			continue
		}
		slots[int(id)] = Slot{Decl: d, Present: true}
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		seen := make(map[NodeID]struct{}, len(slot.Decl.Deps))
		for _, dep := range slot.Decl.Deps {
			toID, ok := idx.NameToID[dep.Name]
			if !ok {
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}
			g.Edges[from] = append(g.Edges[from], toID)
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}
	for from, edges := range g.Edges {
		if !g.Present[from] {
			continue
		}
		for _, to := range edges {
			if g.Present[int(to)] {
				g.Indeg[int(to)]++
			}
		}
	}

	return g, slots
}

// CyclePath walks the cycle containing start. Only nodes listed in
// topo.Cycles are followed.
func CyclePath(g Graph, topo *Topo, start NodeID) []NodeID {
	inCycle := make(map[NodeID]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		inCycle[id] = true
	}
	path := []NodeID{start}
	visited := map[NodeID]bool{start: true}
	cur := start
	for {
		next, ok := NodeID(0), false
		for _, to := range g.Edges[int(cur)] {
			if inCycle[to] {
				next, ok = to, true
				break
			}
		}
		if !ok {
			return path
		}
		path = append(path, next)
		if visited[next] {
			return path
		}
		visited[next] = true
		cur = next
	}
}

// ReportCycles reports every declaration left in a cycle at its own span.
func ReportCycles(idx Index, g Graph, slots []Slot, topo *Topo, r diag.Reporter) {
	if r == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present {
			continue
		}
		cycle := CyclePath(g, topo, id)
		names := make([]string, len(cycle))
		for i, n := range cycle {
			names[i] = idx.IDToName[int(n)]
		}
		msg := fmt.Sprintf("type alias %q is part of a cycle: %s", slot.Decl.Name, strings.Join(names, " -> "))
		var notes []diag.Note
		for _, dep := range slot.Decl.Deps {
			if len(cycle) > 1 && dep.Name == idx.IDToName[int(cycle[1])] {
				notes = append(notes, diag.Note{Span: dep.Span, Msg: "refers to " + dep.Name + " here"})
				break
			}
		}
		r.Report(diag.TypeAliasCycle, diag.SevError, slot.Decl.Span, msg, notes)
	}
}
