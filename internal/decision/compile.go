package decision

import (
	"fmt"
	"slices"

	"typecore/internal/ast"
	"typecore/internal/pattern"
	"typecore/internal/trace"
	"typecore/internal/types"
)

// Column is one scrutinee position of the pattern matrix.
type Column struct {
	Path Path      `msgpack:"p"`
	Type types.Idx `msgpack:"t"`
}

// RootColumns builds one root column per scrutinee type.
func RootColumns(tys []types.Idx) []Column {
	out := make([]Column, len(tys))
	for i, t := range tys {
		out[i] = Column{Path: RootPath(i), Type: t}
	}
	return out
}

// Row is one arm of the matrix. Guard is ast.NoExprID when the arm has no
// guard. Bindings collects what earlier specialisations already bound.
type Row struct {
	Cols     []pattern.Flat
	Guard    ast.ExprID
	Arm      int
	Bindings []Binding
}

// Option configures compilation.
type Option func(*compiler)

// WithTracer emits a debug point per compiled node under parent span.
func WithTracer(t trace.Tracer, parent uint64) Option {
	return func(c *compiler) {
		if t != nil {
			c.tracer = t
			c.span = parent
		}
	}
}

type compiler struct {
	pool   *types.Pool
	tracer trace.Tracer
	span   uint64
}

// Compile builds the decision tree for rows over cols. Rows are in source
// order and the first matching row wins. pool is only read.
func Compile(pool *types.Pool, cols []Column, rows []Row, opts ...Option) *Node {
	c := &compiler{pool: pool, tracer: trace.Nop}
	for _, opt := range opts {
		opt(c)
	}
	for i := range rows {
		if len(rows[i].Cols) != len(cols) {
			panic(fmt.Sprintf("decision: row %d has %d columns, matrix has %d", i, len(rows[i].Cols), len(cols)))
		}
	}
	return c.compile(cols, rows)
}

// cell normalises a pattern for testing: a list pattern with no prefix and
// a rest accepts every list, so it behaves as its rest.
func cell(f pattern.Flat) pattern.Flat {
	if f.Kind == pattern.List && len(f.Subs) == 0 && f.Rest != nil {
		return *f.Rest
	}
	return f
}

func (c *compiler) note(kind string, col Column) {
	if c.tracer.Level().ShouldEmit(trace.ScopeNode) {
		trace.Point(c.tracer, trace.ScopeNode, "decision."+kind, col.Path.String(), c.span)
	}
}

func (c *compiler) compile(cols []Column, rows []Row) *Node {
	if len(rows) == 0 {
		return &Node{Kind: NodeFail}
	}
	first := rows[0]
	if !slices.ContainsFunc(first.Cols, func(f pattern.Flat) bool { return !cell(f).IsWild() }) {
		bindings := slices.Clone(first.Bindings)
		for i, col := range cols {
			if f := cell(first.Cols[i]); f.Kind == pattern.Binding {
				bindings = append(bindings, Binding{Name: f.Name, Path: col.Path})
			}
		}
		if first.Guard == ast.NoExprID {
			return &Node{Kind: NodeLeaf, Arm: first.Arm, Bindings: bindings}
		}
		return &Node{
			Kind:      NodeGuard,
			Arm:       first.Arm,
			Bindings:  bindings,
			Condition: first.Guard,
			Fallback:  c.compile(cols, rows[1:]),
		}
	}
	sel := selectColumn(cols, rows)
	col := cols[sel]
	head := c.headKind(rows, sel)
	switch head {
	case pattern.Literal:
		return c.literalSwitch(cols, rows, sel)
	case pattern.Variant:
		return c.variantSwitch(cols, rows, sel)
	case pattern.Tuple, pattern.Struct:
		return c.destructure(cols, rows, sel)
	case pattern.List:
		return c.listSwitch(cols, rows, sel)
	}
	panic(fmt.Sprintf("decision: cannot test %s at %s", head, col.Path))
}

// selectColumn picks the leftmost column holding a non-wild pattern.
func selectColumn(cols []Column, rows []Row) int {
	for i := range cols {
		for _, r := range rows {
			if !cell(r.Cols[i]).IsWild() {
				return i
			}
		}
	}
	panic("decision: no column to test")
}

// headKind is the kind of the first non-wild pattern in column sel. Other
// kinds in the same column are a flattener bug; tuples and structs are both
// destructuring and may not mix either.
func (c *compiler) headKind(rows []Row, sel int) pattern.Kind {
	kind := pattern.Wildcard
	for _, r := range rows {
		f := cell(r.Cols[sel])
		if f.IsWild() {
			continue
		}
		if kind == pattern.Wildcard {
			kind = f.Kind
		} else if kind != f.Kind {
			panic(fmt.Sprintf("decision: column mixes %s and %s patterns", kind, f.Kind))
		}
	}
	return kind
}

// splice replaces column sel with subs.
func splice[T any](xs []T, sel int, subs []T) []T {
	out := make([]T, 0, len(xs)-1+len(subs))
	out = append(out, xs[:sel]...)
	out = append(out, subs...)
	return append(out, xs[sel+1:]...)
}

// drop removes column sel from a row, recording a binding if the cell binds.
func drop(r Row, col Column, sel int, subs []pattern.Flat) Row {
	bindings := r.Bindings
	if f := cell(r.Cols[sel]); f.Kind == pattern.Binding {
		bindings = append(slices.Clone(bindings), Binding{Name: f.Name, Path: col.Path})
	}
	return Row{Cols: splice(r.Cols, sel, subs), Guard: r.Guard, Arm: r.Arm, Bindings: bindings}
}

// defaultRows keeps the rows that are wild in column sel, with the column
// removed.
func defaultRows(cols []Column, rows []Row, sel int) []Row {
	var out []Row
	for _, r := range rows {
		if cell(r.Cols[sel]).IsWild() {
			out = append(out, drop(r, cols[sel], sel, nil))
		}
	}
	return out
}

func (c *compiler) literalSwitch(cols []Column, rows []Row, sel int) *Node {
	col := cols[sel]
	c.note("literal", col)
	var lits []ast.Lit
	for _, r := range rows {
		f := cell(r.Cols[sel])
		if f.Kind == pattern.Literal && !slices.Contains(lits, f.Lit) {
			lits = append(lits, f.Lit)
		}
	}
	rest := splice(cols, sel, nil)
	node := &Node{Kind: NodeSwitch, Test: literalTest(lits[0].Kind), Path: col.Path, Type: col.Type}
	for _, lit := range lits {
		var sub []Row
		for _, r := range rows {
			f := cell(r.Cols[sel])
			if f.IsWild() || f.Lit == lit {
				sub = append(sub, drop(r, col, sel, nil))
			}
		}
		node.Edges = append(node.Edges, Edge{Outcome: Outcome{Lit: lit}, Node: c.compile(rest, sub)})
	}
	if !c.covers(node.Test, col.Type, lits) {
		node.Default = c.compile(rest, defaultRows(cols, rows, sel))
	}
	return node
}

// covers reports whether the distinct literals lits exhaust every value of
// ty. Only Bool and Byte are finite enough to enumerate.
func (c *compiler) covers(test TestKind, ty types.Idx, lits []ast.Lit) bool {
	switch test {
	case TestBoolEq:
		return len(lits) == 2
	case TestIntEq:
		if c.pool.Tag(c.pool.Underlying(ty)) != types.TagByte {
			return false
		}
		n := 0
		for _, l := range lits {
			if l.Int >= 0 && l.Int <= types.ByteMax {
				n++
			}
		}
		return n == types.ByteMax+1
	}
	return false
}

func literalTest(k ast.LitKind) TestKind {
	switch k {
	case ast.LitInt:
		return TestIntEq
	case ast.LitBool:
		return TestBoolEq
	case ast.LitChar:
		return TestCharEq
	case ast.LitStr:
		return TestStrEq
	}
	panic(fmt.Sprintf("decision: no test for %s literals", k))
}

func (c *compiler) variantSwitch(cols []Column, rows []Row, sel int) *Node {
	col := cols[sel]
	c.note("variant", col)
	variants, ok := c.pool.VariantsOf(col.Type)
	if !ok {
		panic(fmt.Sprintf("decision: variant test on %s", types.Label(c.pool, col.Type)))
	}
	seen := make([]bool, len(variants))
	for _, r := range rows {
		if f := cell(r.Cols[sel]); f.Kind == pattern.Variant {
			seen[f.Index] = true
		}
	}
	node := &Node{Kind: NodeSwitch, Test: TestVariantTag, Path: col.Path, Type: col.Type}
	covered := 0
	for idx, v := range variants {
		if !seen[idx] {
			continue
		}
		covered++
		payload := make([]Column, len(v.Fields))
		for i, ft := range v.Fields {
			payload[i] = Column{Path: col.Path.Child(Step{Kind: StepPayload, Index: i}), Type: ft}
		}
		var sub []Row
		for _, r := range rows {
			f := cell(r.Cols[sel])
			switch {
			case f.IsWild():
				sub = append(sub, drop(r, col, sel, pattern.Wilds(v.Fields)))
			case f.Index == idx:
				sub = append(sub, drop(r, col, sel, f.Subs))
			}
		}
		node.Edges = append(node.Edges, Edge{
			Outcome: Outcome{Variant: idx, Name: v.Name},
			Node:    c.compile(splice(cols, sel, payload), sub),
		})
	}
	if covered < len(variants) {
		node.Default = c.compile(splice(cols, sel, nil), defaultRows(cols, rows, sel))
	}
	return node
}

func (c *compiler) destructure(cols []Column, rows []Row, sel int) *Node {
	col := cols[sel]
	c.note("destructure", col)
	under := c.pool.Underlying(col.Type)
	var (
		kind StepKind
		tys  []types.Idx
	)
	switch c.pool.Tag(under) {
	case types.TagTuple:
		kind, tys = StepElem, c.pool.TupleElems(under)
	case types.TagUnit:
		kind = StepElem
	case types.TagStruct:
		kind = StepField
		for _, f := range c.pool.StructFields(under) {
			tys = append(tys, f.Type)
		}
	default:
		panic(fmt.Sprintf("decision: destructure on %s", types.Label(c.pool, col.Type)))
	}
	parts := make([]Column, len(tys))
	for i, t := range tys {
		parts[i] = Column{Path: col.Path.Child(Step{Kind: kind, Index: i}), Type: t}
	}
	sub := make([]Row, 0, len(rows))
	for _, r := range rows {
		f := cell(r.Cols[sel])
		if f.IsWild() {
			sub = append(sub, drop(r, col, sel, pattern.Wilds(tys)))
		} else {
			sub = append(sub, drop(r, col, sel, f.Subs))
		}
	}
	return &Node{
		Kind:    NodeSwitch,
		Test:    TestDestructure,
		Path:    col.Path,
		Type:    col.Type,
		Default: c.compile(splice(cols, sel, parts), sub),
	}
}

func (c *compiler) listSwitch(cols []Column, rows []Row, sel int) *Node {
	col := cols[sel]
	c.note("list", col)
	under := c.pool.Underlying(col.Type)
	elem := c.pool.ListElem(under)
	var empty, nonEmpty bool
	for _, r := range rows {
		f := cell(r.Cols[sel])
		if f.Kind != pattern.List {
			continue
		}
		if len(f.Subs) == 0 {
			empty = true
		} else {
			nonEmpty = true
		}
	}
	node := &Node{Kind: NodeSwitch, Test: TestListShape, Path: col.Path, Type: col.Type}
	if empty {
		var sub []Row
		for _, r := range rows {
			f := cell(r.Cols[sel])
			if f.IsWild() || len(f.Subs) == 0 {
				sub = append(sub, drop(r, col, sel, nil))
			}
		}
		node.Edges = append(node.Edges, Edge{
			Outcome: Outcome{Variant: ShapeEmpty},
			Node:    c.compile(splice(cols, sel, nil), sub),
		})
	}
	if nonEmpty {
		parts := []Column{
			{Path: col.Path.Child(Step{Kind: StepHead}), Type: elem},
			{Path: col.Path.Child(Step{Kind: StepTail}), Type: col.Type},
		}
		var sub []Row
		for _, r := range rows {
			f := cell(r.Cols[sel])
			switch {
			case f.IsWild():
				sub = append(sub, drop(r, col, sel, []pattern.Flat{pattern.Wild(elem), pattern.Wild(col.Type)}))
			case len(f.Subs) > 0:
				tail := pattern.Flat{Kind: pattern.List, Subs: f.Subs[1:], Rest: f.Rest, Type: col.Type, Span: f.Span}
				sub = append(sub, drop(r, col, sel, []pattern.Flat{f.Subs[0], tail}))
			}
		}
		node.Edges = append(node.Edges, Edge{
			Outcome: Outcome{Variant: ShapeNonEmpty},
			Node:    c.compile(splice(cols, sel, parts), sub),
		})
	}
	if !(empty && nonEmpty) {
		node.Default = c.compile(splice(cols, sel, nil), defaultRows(cols, rows, sel))
	}
	return node
}
