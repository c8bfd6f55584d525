package exhaust

import (
	"slices"
	"testing"

	"typecore/internal/ast"
	"typecore/internal/decision"
	"typecore/internal/pattern"
	"typecore/internal/source"
	"typecore/internal/types"
)

func lit(ty types.Idx, l ast.Lit) pattern.Flat {
	return pattern.Flat{Kind: pattern.Literal, Lit: l, Type: ty}
}

func variant(ty types.Idx, index int, name source.StringID, subs ...pattern.Flat) pattern.Flat {
	return pattern.Flat{Kind: pattern.Variant, Name: name, Index: index, Subs: subs, Type: ty}
}

func check(pool *types.Pool, tys []types.Idx, rows ...[]pattern.Flat) Report {
	cols := decision.RootColumns(tys)
	mrows := make([]decision.Row, len(rows))
	for i, r := range rows {
		mrows[i] = decision.Row{Cols: r, Arm: i}
	}
	tree := decision.Compile(pool, cols, mrows)
	return Check(pool, tree, len(rows), cols)
}

func missing(pool *types.Pool, r Report) []string {
	out := make([]string, len(r.Missing))
	for i, m := range r.Missing {
		out[i] = pattern.Format(pool, m)
	}
	return out
}

func TestLiteralThenWildcardIsClean(t *testing.T) {
	pool := types.NewPool(nil)
	r := check(pool, []types.Idx{types.Int},
		[]pattern.Flat{lit(types.Int, ast.IntLit(1))},
		[]pattern.Flat{pattern.Wild(types.Int)},
	)
	if !r.Exhaustive() || len(r.Unreachable) != 0 {
		t.Fatalf("unexpected report %+v", r)
	}
	if len(r.Problems()) != 0 {
		t.Fatalf("unexpected problems %+v", r.Problems())
	}
}

func TestWildcardFirstMakesLiteralUnreachable(t *testing.T) {
	pool := types.NewPool(nil)
	r := check(pool, []types.Idx{types.Int},
		[]pattern.Flat{pattern.Wild(types.Int)},
		[]pattern.Flat{lit(types.Int, ast.IntLit(1))},
	)
	if !r.Exhaustive() || !slices.Equal(r.Unreachable, []int{1}) {
		t.Fatalf("unexpected report %+v", r)
	}
	ps := r.Problems()
	if len(ps) != 1 || ps[0].Kind != UnreachableArm || ps[0].Arm != 1 {
		t.Fatalf("unexpected problems %+v", ps)
	}
}

func TestBoolTrueOnlyMissesFalse(t *testing.T) {
	pool := types.NewPool(nil)
	r := check(pool, []types.Idx{types.Bool}, []pattern.Flat{lit(types.Bool, ast.BoolLit(true))})
	if got := missing(pool, r); !slices.Equal(got, []string{"false"}) {
		t.Fatalf("missing = %v", got)
	}
	if ps := r.Problems(); len(ps) != 1 || ps[0].Kind != NonExhaustive {
		t.Fatalf("problems = %+v", ps)
	}
}

func TestResultMissingErr(t *testing.T) {
	pool := types.NewPool(nil)
	res := pool.Result(types.Int, types.Str)
	r := check(pool, []types.Idx{res}, []pattern.Flat{variant(res, 0, pool.Intern("Ok"), pattern.Wild(types.Int))})
	if got := missing(pool, r); !slices.Equal(got, []string{"Err(_)"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestNestedOptionBool(t *testing.T) {
	pool := types.NewPool(nil)
	opt := pool.Option(types.Bool)
	some, none := pool.Intern("Some"), pool.Intern("None")
	r := check(pool, []types.Idx{opt},
		[]pattern.Flat{variant(opt, 1, some, lit(types.Bool, ast.BoolLit(true)))},
		[]pattern.Flat{variant(opt, 0, none)},
	)
	if got := missing(pool, r); !slices.Equal(got, []string{"Some(false)"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestSmallestMissingInteger(t *testing.T) {
	pool := types.NewPool(nil)
	r := check(pool, []types.Idx{types.Int},
		[]pattern.Flat{lit(types.Int, ast.IntLit(1))},
		[]pattern.Flat{lit(types.Int, ast.IntLit(0))},
	)
	if got := missing(pool, r); !slices.Equal(got, []string{"2"}) {
		t.Fatalf("missing = %v", got)
	}
}

func byteRows(n int) [][]pattern.Flat {
	rows := make([][]pattern.Flat, n)
	for i := range rows {
		rows[i] = []pattern.Flat{lit(types.Byte, ast.IntLit(int64(i)))}
	}
	return rows
}

func TestEveryByteValueIsExhaustive(t *testing.T) {
	pool := types.NewPool(nil)
	r := check(pool, []types.Idx{types.Byte}, byteRows(types.ByteMax+1)...)
	if !r.Exhaustive() || len(r.Problems()) != 0 {
		t.Fatalf("problems = %+v", r.Problems())
	}
}

func TestMissingByteStaysInRange(t *testing.T) {
	pool := types.NewPool(nil)
	rows := byteRows(types.ByteMax + 1)
	rows = append(rows[:200], rows[201:]...)
	r := check(pool, []types.Idx{types.Byte}, rows...)
	if got := missing(pool, r); !slices.Equal(got, []string{"200"}) {
		t.Fatalf("missing = %v", got)
	}

	r = check(pool, []types.Idx{types.Byte}, byteRows(types.ByteMax)...)
	if got := missing(pool, r); !slices.Equal(got, []string{"255"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestEmptyListOnly(t *testing.T) {
	pool := types.NewPool(nil)
	list := pool.List(types.Int)
	r := check(pool, []types.Idx{list}, []pattern.Flat{{Kind: pattern.List, Type: list}})
	if got := missing(pool, r); !slices.Equal(got, []string{"[_, ..]"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestSingletonListMissesLonger(t *testing.T) {
	pool := types.NewPool(nil)
	list := pool.List(types.Int)
	r := check(pool, []types.Idx{list},
		[]pattern.Flat{{Kind: pattern.List, Type: list}},
		[]pattern.Flat{{Kind: pattern.List, Subs: []pattern.Flat{pattern.Wild(types.Int)}, Type: list}},
	)
	if got := missing(pool, r); !slices.Equal(got, []string{"[_, _, ..]"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestStructCounterExample(t *testing.T) {
	pool := types.NewPool(nil)
	point := pool.StructType(pool.Intern("Point"), []types.Field{
		{Name: pool.Intern("x"), Type: types.Int},
		{Name: pool.Intern("y"), Type: types.Int},
	})
	r := check(pool, []types.Idx{point}, []pattern.Flat{{
		Kind: pattern.Struct,
		Subs: []pattern.Flat{lit(types.Int, ast.IntLit(0)), pattern.Wild(types.Int)},
		Type: point,
	}})
	if got := missing(pool, r); !slices.Equal(got, []string{"Point { x: 1, .. }"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestMultiColumnCounterExample(t *testing.T) {
	pool := types.NewPool(nil)
	r := check(pool, []types.Idx{types.Bool, types.Bool},
		[]pattern.Flat{lit(types.Bool, ast.BoolLit(true)), pattern.Wild(types.Bool)},
		[]pattern.Flat{lit(types.Bool, ast.BoolLit(false)), lit(types.Bool, ast.BoolLit(true))},
	)
	if got := missing(pool, r); !slices.Equal(got, []string{"(false, false)"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestGuardedArmStillNeedsFallback(t *testing.T) {
	pool := types.NewPool(nil)
	cols := decision.RootColumns([]types.Idx{types.Int})
	rows := []decision.Row{{Cols: []pattern.Flat{pattern.Wild(types.Int)}, Arm: 0, Guard: 1}}
	tree := decision.Compile(pool, cols, rows)
	r := Check(pool, tree, 1, cols)
	if got := missing(pool, r); !slices.Equal(got, []string{"_"}) {
		t.Fatalf("missing = %v", got)
	}
	if len(r.Unreachable) != 0 {
		t.Fatalf("guarded arm must count as reachable")
	}
}

func TestCheckDoesNotMutateTree(t *testing.T) {
	pool := types.NewPool(nil)
	cols := decision.RootColumns([]types.Idx{types.Bool})
	rows := []decision.Row{{Cols: []pattern.Flat{lit(types.Bool, ast.BoolLit(true))}}}
	tree := decision.Compile(pool, cols, rows)
	size, poolLen := decision.Size(tree), pool.Len()
	Check(pool, tree, 1, cols)
	if decision.Size(tree) != size || pool.Len() != poolLen {
		t.Fatalf("Check changed the tree or the pool")
	}
}
