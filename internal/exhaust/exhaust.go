// Package exhaust reports non-exhaustive matches and unreachable arms by
// walking a compiled decision tree. It never mutates the tree or the pool.
package exhaust

import (
	"slices"

	"typecore/internal/decision"
	"typecore/internal/pattern"
	"typecore/internal/types"
)

// Report is the outcome of Check. Missing holds one counter-example per
// distinct reachable Fail, in tree order; a multi-column match gets a tuple
// of column patterns. Unreachable lists arm indices in ascending order.
type Report struct {
	Missing     []pattern.Flat
	Unreachable []int
}

// Exhaustive reports whether no Fail is reachable.
func (r Report) Exhaustive() bool {
	return len(r.Missing) == 0
}

// ProblemKind discriminates pattern problems.
type ProblemKind uint8

const (
	NonExhaustive ProblemKind = iota + 1
	UnreachableArm
)

func (k ProblemKind) String() string {
	switch k {
	case NonExhaustive:
		return "non-exhaustive"
	case UnreachableArm:
		return "unreachable arm"
	default:
		return "unknown"
	}
}

// Problem is one finding, as data for the diagnostics layer.
type Problem struct {
	Kind    ProblemKind
	Example pattern.Flat // NonExhaustive
	Arm     int          // UnreachableArm
}

// Problems flattens the report: missing cases first, then unreachable arms.
func (r Report) Problems() []Problem {
	out := make([]Problem, 0, len(r.Missing)+len(r.Unreachable))
	for _, m := range r.Missing {
		out = append(out, Problem{Kind: NonExhaustive, Example: m})
	}
	for _, a := range r.Unreachable {
		out = append(out, Problem{Kind: UnreachableArm, Arm: a})
	}
	return out
}

// constraint is what the walk knows about the value at one path: either a
// fixed outcome or a set of outcomes it is known not to have.
type constraint struct {
	test     decision.TestKind
	fixed    bool
	value    decision.Outcome
	excluded []decision.Outcome
}

type checker struct {
	pool    *types.Pool
	columns []decision.Column
	known   map[string]constraint
	reached map[int]bool
	missing []pattern.Flat
	seen    map[string]bool
}

// Check walks tree and collects the problems of a match with armCount arms
// over columns.
func Check(pool *types.Pool, tree *decision.Node, armCount int, columns []decision.Column) Report {
	c := &checker{
		pool:    pool,
		columns: columns,
		known:   make(map[string]constraint),
		reached: make(map[int]bool),
		seen:    make(map[string]bool),
	}
	c.walk(tree)
	rep := Report{Missing: c.missing}
	for arm := range armCount {
		if !c.reached[arm] {
			rep.Unreachable = append(rep.Unreachable, arm)
		}
	}
	return rep
}

func (c *checker) walk(n *decision.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case decision.NodeFail:
		ex := c.example()
		key := pattern.Format(c.pool, ex)
		if !c.seen[key] {
			c.seen[key] = true
			c.missing = append(c.missing, ex)
		}
	case decision.NodeLeaf:
		c.reached[n.Arm] = true
	case decision.NodeGuard:
		c.reached[n.Arm] = true
		c.walk(n.Fallback)
	case decision.NodeSwitch:
		c.walkSwitch(n)
	}
}

func (c *checker) walkSwitch(n *decision.Node) {
	key := n.Path.String()
	prev, had := c.known[key]
	restore := func() {
		if had {
			c.known[key] = prev
		} else {
			delete(c.known, key)
		}
	}

	if n.Test == decision.TestDestructure {
		c.known[key] = constraint{test: n.Test, fixed: true}
		c.walk(n.Default)
		restore()
		return
	}

	outcomes := make([]decision.Outcome, len(n.Edges))
	for i, e := range n.Edges {
		outcomes[i] = e.Outcome
		switch {
		case !had:
		case prev.fixed && prev.value != e.Outcome:
			continue
		case !prev.fixed && slices.Contains(prev.excluded, e.Outcome):
			continue
		}
		c.known[key] = constraint{test: n.Test, fixed: true, value: e.Outcome}
		c.walk(e.Node)
		restore()
	}

	if n.Default == nil {
		return
	}
	if had && prev.fixed {
		if !slices.Contains(outcomes, prev.value) {
			c.walk(n.Default)
		}
		return
	}
	excluded := slices.Clone(outcomes)
	if had {
		for _, o := range prev.excluded {
			if !slices.Contains(excluded, o) {
				excluded = append(excluded, o)
			}
		}
	}
	if c.complete(n, excluded) {
		return
	}
	c.known[key] = constraint{test: n.Test, excluded: excluded}
	c.walk(n.Default)
	restore()
}

// complete reports whether excluding every outcome in excluded leaves no
// value of the node's type.
func (c *checker) complete(n *decision.Node, excluded []decision.Outcome) bool {
	switch n.Test {
	case decision.TestBoolEq, decision.TestListShape:
		return len(excluded) >= 2
	case decision.TestVariantTag:
		variants, ok := c.pool.VariantsOf(n.Type)
		return ok && len(excluded) >= len(variants)
	}
	return false
}

// example rebuilds a value that reaches the current Fail.
func (c *checker) example() pattern.Flat {
	if len(c.columns) == 1 {
		return c.build(c.columns[0].Path, c.columns[0].Type)
	}
	subs := make([]pattern.Flat, len(c.columns))
	for i, col := range c.columns {
		subs[i] = c.build(col.Path, col.Type)
	}
	return pattern.Flat{Kind: pattern.Tuple, Subs: subs}
}
