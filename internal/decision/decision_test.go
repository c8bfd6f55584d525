package decision

import (
	"bytes"
	"errors"
	"testing"

	"typecore/internal/ast"
	"typecore/internal/pattern"
	"typecore/internal/source"
	"typecore/internal/types"
)

func lit(v int64) pattern.Flat {
	return pattern.Flat{Kind: pattern.Literal, Lit: ast.IntLit(v), Type: types.Int}
}

func boolLit(v bool) pattern.Flat {
	return pattern.Flat{Kind: pattern.Literal, Lit: ast.BoolLit(v), Type: types.Bool}
}

func variant(ty types.Idx, index int, name source.StringID, subs ...pattern.Flat) pattern.Flat {
	return pattern.Flat{Kind: pattern.Variant, Name: name, Index: index, Subs: subs, Type: ty}
}

func row(arm int, cols ...pattern.Flat) Row {
	return Row{Cols: cols, Arm: arm}
}

func single(ty types.Idx) []Column {
	return RootColumns([]types.Idx{ty})
}

func runArm(t *testing.T, tree *Node, guard GuardFunc, vals ...Value) Match {
	t.Helper()
	m, err := Run(tree, vals, guard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return m
}

func TestLiteralThenWildcard(t *testing.T) {
	pool := types.NewPool(nil)
	tree := Compile(pool, single(types.Int), []Row{
		row(0, lit(1)),
		row(1, pattern.Wild(types.Int)),
	})
	if tree.Kind != NodeSwitch || tree.Test != TestIntEq || len(tree.Edges) != 1 || tree.Default == nil {
		t.Fatalf("unexpected tree %+v", tree)
	}
	if tree.Edges[0].Node.Kind != NodeLeaf || tree.Edges[0].Node.Arm != 0 {
		t.Fatalf("edge 1 should be arm 0")
	}
	if tree.Default.Kind != NodeLeaf || tree.Default.Arm != 1 {
		t.Fatalf("default should be arm 1")
	}
	if m := runArm(t, tree, nil, IntVal(1)); m.Arm != 0 {
		t.Fatalf("1 matched arm %d", m.Arm)
	}
	if m := runArm(t, tree, nil, IntVal(7)); m.Arm != 1 {
		t.Fatalf("7 matched arm %d", m.Arm)
	}
}

func TestWildcardFirstShadowsLiteral(t *testing.T) {
	pool := types.NewPool(nil)
	tree := Compile(pool, single(types.Int), []Row{
		row(0, pattern.Wild(types.Int)),
		row(1, lit(1)),
	})
	if tree.Kind != NodeLeaf || tree.Arm != 0 {
		t.Fatalf("expected leaf arm 0, got %s", tree.Kind)
	}
}

func TestGuardFallsThrough(t *testing.T) {
	pool := types.NewPool(nil)
	x := pool.Intern("x")
	guarded := row(0, pattern.Bind(x, types.Int))
	guarded.Guard = ast.ExprID(1)
	tree := Compile(pool, single(types.Int), []Row{guarded, row(1, pattern.Wild(types.Int))})

	if tree.Kind != NodeGuard || tree.Condition != 1 || tree.Arm != 0 {
		t.Fatalf("expected guard node, got %+v", tree)
	}
	if tree.Fallback == nil || tree.Fallback.Kind != NodeLeaf || tree.Fallback.Arm != 1 {
		t.Fatalf("fallback must be leaf arm 1, got %+v", tree.Fallback)
	}
	if len(tree.Bindings) != 1 || tree.Bindings[0].Name != x || !tree.Bindings[0].Path.Equal(RootPath(0)) {
		t.Fatalf("unexpected bindings %+v", tree.Bindings)
	}

	positive := func(_ ast.ExprID, b []Bound) bool { return b[0].Value.Int > 0 }
	if m := runArm(t, tree, positive, IntVal(-3)); m.Arm != 1 {
		t.Fatalf("failing guard must fall through to arm 1, got %d", m.Arm)
	}
	m := runArm(t, tree, positive, IntVal(3))
	if m.Arm != 0 || len(m.Bindings) != 1 || m.Bindings[0].Value.Int != 3 {
		t.Fatalf("passing guard: %+v", m)
	}
}

func TestVariantSwitchCoversOption(t *testing.T) {
	pool := types.NewPool(nil)
	opt := pool.Option(types.Int)
	some, none, x := pool.Intern("Some"), pool.Intern("None"), pool.Intern("x")
	tree := Compile(pool, single(opt), []Row{
		row(0, variant(opt, 1, some, pattern.Bind(x, types.Int))),
		row(1, variant(opt, 0, none)),
	})
	if tree.Test != TestVariantTag || len(tree.Edges) != 2 || tree.Default != nil {
		t.Fatalf("expected complete variant switch, got %+v", tree)
	}
	if tree.Edges[0].Outcome.Name != none || tree.Edges[1].Outcome.Name != some {
		t.Fatalf("edges must follow variant order")
	}
	m := runArm(t, tree, nil, VariantVal(1, IntVal(9)))
	if m.Arm != 0 || m.Bindings[0].Value.Int != 9 {
		t.Fatalf("Some(9): %+v", m)
	}
	if leaf := tree.Edges[1].Node; len(leaf.Bindings) != 1 ||
		!leaf.Bindings[0].Path.Equal(RootPath(0).Child(Step{Kind: StepPayload})) {
		t.Fatalf("payload binding path: %+v", leaf.Bindings)
	}
}

func TestPartialVariantsKeepDefault(t *testing.T) {
	pool := types.NewPool(nil)
	res := pool.Result(types.Int, types.Str)
	ok := pool.Intern("Ok")
	tree := Compile(pool, single(res), []Row{
		row(0, variant(res, 0, ok, pattern.Wild(types.Int))),
	})
	if tree.Default == nil || tree.Default.Kind != NodeFail {
		t.Fatalf("missing Err must leave a Fail default")
	}
	if _, err := Run(tree, []Value{VariantVal(1, StrVal("boom"))}, nil); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("Err value: %v", err)
	}
}

func TestBoolBothValuesHaveNoDefault(t *testing.T) {
	pool := types.NewPool(nil)
	tree := Compile(pool, single(types.Bool), []Row{
		row(0, boolLit(true)),
		row(1, boolLit(false)),
	})
	if tree.Test != TestBoolEq || len(tree.Edges) != 2 || tree.Default != nil {
		t.Fatalf("unexpected %+v", tree)
	}
}

func TestAllByteValuesHaveNoDefault(t *testing.T) {
	pool := types.NewPool(nil)
	var rows []Row
	for v := range int64(types.ByteMax + 1) {
		rows = append(rows, row(int(v), pattern.Flat{Kind: pattern.Literal, Lit: ast.IntLit(v), Type: types.Byte}))
	}
	tree := Compile(pool, single(types.Byte), rows)
	if tree.Test != TestIntEq || len(tree.Edges) != types.ByteMax+1 || tree.Default != nil {
		t.Fatalf("edges = %d default = %v", len(tree.Edges), tree.Default != nil)
	}

	tree = Compile(pool, single(types.Byte), rows[:types.ByteMax])
	if tree.Default == nil {
		t.Fatal("partial Byte switch lost its default")
	}
}

func TestListShapes(t *testing.T) {
	pool := types.NewPool(nil)
	list := pool.List(types.Int)
	h, rest := pool.Intern("h"), pool.Intern("t")
	tail := pattern.Bind(rest, list)
	tree := Compile(pool, single(list), []Row{
		row(0, pattern.Flat{Kind: pattern.List, Type: list}),
		row(1, pattern.Flat{Kind: pattern.List, Subs: []pattern.Flat{pattern.Bind(h, types.Int)}, Rest: &tail, Type: list}),
	})
	if tree.Test != TestListShape || len(tree.Edges) != 2 || tree.Default != nil {
		t.Fatalf("unexpected %+v", tree)
	}
	if m := runArm(t, tree, nil, ListVal()); m.Arm != 0 {
		t.Fatalf("[] matched arm %d", m.Arm)
	}
	m := runArm(t, tree, nil, ListVal(IntVal(1), IntVal(2)))
	if m.Arm != 1 || len(m.Bindings) != 2 {
		t.Fatalf("[1, 2]: %+v", m)
	}
	if m.Bindings[0].Value.Int != 1 || len(m.Bindings[1].Value.Elems) != 1 || m.Bindings[1].Value.Elems[0].Int != 2 {
		t.Fatalf("bindings %+v", m.Bindings)
	}
}

func TestExactLengthList(t *testing.T) {
	pool := types.NewPool(nil)
	list := pool.List(types.Int)
	tree := Compile(pool, single(list), []Row{
		row(0, pattern.Flat{Kind: pattern.List, Subs: []pattern.Flat{lit(1), pattern.Wild(types.Int)}, Type: list}),
		row(1, pattern.Wild(list)),
	})
	cases := []struct {
		val  Value
		want int
	}{
		{ListVal(IntVal(1), IntVal(5)), 0},
		{ListVal(IntVal(1)), 1},
		{ListVal(IntVal(1), IntVal(5), IntVal(6)), 1},
		{ListVal(IntVal(2), IntVal(5)), 1},
		{ListVal(), 1},
	}
	for _, tc := range cases {
		if m := runArm(t, tree, nil, tc.val); m.Arm != tc.want {
			t.Fatalf("%+v matched arm %d, want %d", tc.val, m.Arm, tc.want)
		}
	}
}

func TestStructDestructure(t *testing.T) {
	pool := types.NewPool(nil)
	point := pool.StructType(pool.Intern("Point"), []types.Field{
		{Name: pool.Intern("x"), Type: types.Int},
		{Name: pool.Intern("y"), Type: types.Int},
	})
	tree := Compile(pool, single(point), []Row{
		row(0, pattern.Flat{Kind: pattern.Struct, Subs: []pattern.Flat{lit(0), pattern.Wild(types.Int)}, Type: point}),
		row(1, pattern.Wild(point)),
	})
	if tree.Test != TestDestructure || len(tree.Edges) != 0 || tree.Default == nil {
		t.Fatalf("destructure must have a single default edge: %+v", tree)
	}
	inner := tree.Default
	if inner.Test != TestIntEq || !inner.Path.Equal(RootPath(0).Child(Step{Kind: StepField, Index: 0})) {
		t.Fatalf("inner test %s at %s", inner.Test, inner.Path)
	}
	if m := runArm(t, tree, nil, StructVal(IntVal(0), IntVal(4))); m.Arm != 0 {
		t.Fatalf("Point{0,4} matched arm %d", m.Arm)
	}
}

func TestPrint(t *testing.T) {
	pool := types.NewPool(nil)
	tree := Compile(pool, single(types.Int), []Row{
		row(0, lit(1)),
		row(1, lit(22)),
		row(2, pattern.Wild(types.Int)),
	})
	var buf bytes.Buffer
	if err := Print(&buf, pool, tree); err != nil {
		t.Fatal(err)
	}
	want := "switch IntEq $0 : Int\n" +
		"  1  =>\n    leaf arm 0\n" +
		"  22 =>\n    leaf arm 1\n" +
		"  _  =>\n    leaf arm 2\n"
	if buf.String() != want {
		t.Fatalf("Print:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTableRoundTrip(t *testing.T) {
	pool := types.NewPool(nil)
	opt := pool.Option(types.Bool)
	x := pool.Intern("x")
	guarded := row(0, variant(opt, 1, pool.Intern("Some"), pattern.Bind(x, types.Bool)))
	guarded.Guard = 3
	cols := single(opt)
	tree := Compile(pool, cols, []Row{guarded, row(1, pattern.Wild(opt))})

	table := NewTable()
	id := table.Add("opt", 2, cols, tree)
	var buf bytes.Buffer
	if err := EncodeTable(&buf, table); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeTable(&buf)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := decoded.Get(id)
	if !ok || entry.Name != "opt" || entry.Arms != 2 {
		t.Fatalf("entry %+v", entry)
	}
	var before, after bytes.Buffer
	if err := Print(&before, pool, tree); err != nil {
		t.Fatal(err)
	}
	if err := Print(&after, pool, entry.Root); err != nil {
		t.Fatal(err)
	}
	if before.String() != after.String() {
		t.Fatalf("round trip changed the tree:\n%s\nvs\n%s", before.String(), after.String())
	}
}

// firstMatch is a naive reference matcher over flat patterns.
func firstMatch(rows []Row, vals []Value) int {
	for _, r := range rows {
		ok := true
		for i, f := range r.Cols {
			if !matchFlat(f, vals[i]) {
				ok = false
				break
			}
		}
		if ok {
			return r.Arm
		}
	}
	return -1
}

func matchFlat(f pattern.Flat, v Value) bool {
	switch f.Kind {
	case pattern.Wildcard, pattern.Binding:
		return true
	case pattern.Literal:
		switch f.Lit.Kind {
		case ast.LitInt:
			return v.Int == f.Lit.Int
		case ast.LitBool:
			return v.Bool == f.Lit.Bool
		}
		return false
	case pattern.Variant:
		if v.Variant != f.Index {
			return false
		}
		for i, s := range f.Subs {
			if !matchFlat(s, v.Fields[i]) {
				return false
			}
		}
		return true
	case pattern.Tuple, pattern.Struct:
		for i, s := range f.Subs {
			if !matchFlat(s, v.Fields[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func TestEvaluatorAgreesWithFirstMatch(t *testing.T) {
	pool := types.NewPool(nil)
	opt := pool.Option(types.Int)
	some, none := pool.Intern("Some"), pool.Intern("None")
	pair := pool.Tuple([]types.Idx{types.Bool, opt})
	tuple := func(a, b pattern.Flat) pattern.Flat {
		return pattern.Flat{Kind: pattern.Tuple, Subs: []pattern.Flat{a, b}, Type: pair}
	}
	rows := []Row{
		row(0, tuple(boolLit(true), variant(opt, 1, some, lit(0)))),
		row(1, tuple(pattern.Wild(types.Bool), variant(opt, 0, none))),
		row(2, tuple(boolLit(false), variant(opt, 1, some, pattern.Wild(types.Int)))),
		row(3, tuple(pattern.Wild(types.Bool), variant(opt, 1, some, lit(5)))),
	}
	tree := Compile(pool, single(pair), rows)

	var values []Value
	for _, b := range []bool{true, false} {
		values = append(values, TupleVal(BoolVal(b), VariantVal(0)))
		for _, n := range []int64{0, 5, 7} {
			values = append(values, TupleVal(BoolVal(b), VariantVal(1, IntVal(n))))
		}
	}
	for _, v := range values {
		want := firstMatch(rows, []Value{v})
		m, err := Run(tree, []Value{v}, nil)
		got := m.Arm
		if errors.Is(err, ErrNoMatch) {
			got = -1
		} else if err != nil {
			t.Fatalf("Run(%+v): %v", v, err)
		}
		if got != want {
			t.Fatalf("value %+v: tree chose %d, first match is %d", v, got, want)
		}
	}
}
