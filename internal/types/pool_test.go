package types

import (
	"strings"
	"testing"

	"typecore/internal/source"
)

func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", want)
		}
		if msg, ok := r.(string); ok && !strings.Contains(msg, want) {
			t.Fatalf("panic %q does not mention %q", msg, want)
		}
	}()
	fn()
}

func TestPoolReservedPrimitives(t *testing.T) {
	p := NewPool(nil)
	for tag := TagInt; tag <= TagOrdering; tag++ {
		id := p.Primitive(tag)
		if !id.IsReserved() {
			t.Fatalf("%s handle %d outside reserved range", tag, id)
		}
		if got := p.Tag(id); got != tag {
			t.Fatalf("Tag(%d) = %s, want %s", id, got, tag)
		}
	}
	if p.Len() != int(FirstDynamic) {
		t.Fatalf("fresh pool should only hold the reserved range, got %d", p.Len())
	}
}

func TestPoolInterningIdempotent(t *testing.T) {
	p := NewPool(nil)
	first := p.List(Int)
	size := p.Len()
	for range 5 {
		if got := p.List(Int); got != first {
			t.Fatalf("List(Int) returned %d, want %d", got, first)
		}
	}
	if p.Len() != size {
		t.Fatalf("pool grew from %d to %d on repeated interning", size, p.Len())
	}

	fn1 := p.Function([]Idx{Int, p.Option(Str)}, Bool)
	fn2 := p.Function([]Idx{Int, p.Option(Str)}, Bool)
	if fn1 != fn2 {
		t.Fatalf("function types should be deduplicated")
	}
	if p.Map(Str, Int) == p.Map(Int, Str) {
		t.Fatalf("map key/value order must matter")
	}
	if p.Result(Int, Str) != p.Result(Int, Str) {
		t.Fatalf("result types should be deduplicated")
	}
	if p.Tuple([]Idx{Int, Bool}) != p.Tuple([]Idx{Int, Bool}) {
		t.Fatalf("tuple types should be deduplicated")
	}
}

func TestPoolEmptyTupleIsUnit(t *testing.T) {
	p := NewPool(nil)
	size := p.Len()
	if got := p.Tuple(nil); got != Unit {
		t.Fatalf("Tuple(nil) = %d, want Unit", got)
	}
	if got := p.Tuple([]Idx{}); got != Unit {
		t.Fatalf("Tuple([]) = %d, want Unit", got)
	}
	if p.Len() != size {
		t.Fatalf("empty tuple must not allocate")
	}
}

func TestPoolNominalNonCollapse(t *testing.T) {
	p := NewPool(nil)
	f := p.Intern("f")
	a := p.StructType(p.Intern("A"), []Field{{Name: f, Type: Int}})
	b := p.StructType(p.Intern("B"), []Field{{Name: f, Type: Int}})
	if a == b {
		t.Fatalf("structs with different names must not be equal")
	}
	again := p.StructType(p.Intern("A"), []Field{{Name: f, Type: Int}})
	if again != a {
		t.Fatalf("same name and layout must intern to one handle")
	}
	other := p.StructType(p.Intern("A"), []Field{{Name: f, Type: Str}})
	if other == a {
		t.Fatalf("differing layouts under one name must not coalesce")
	}

	red, green := p.Intern("Red"), p.Intern("Green")
	e1 := p.EnumType(p.Intern("Color"), []Variant{{Name: red}, {Name: green}})
	e2 := p.EnumType(p.Intern("Paint"), []Variant{{Name: red}, {Name: green}})
	if e1 == e2 {
		t.Fatalf("enums with different names must not be equal")
	}
}

func TestPoolFreshVarDistinct(t *testing.T) {
	p := NewPool(nil)
	a, b := p.FreshVar(), p.FreshVar()
	if a == b {
		t.Fatalf("fresh vars must be distinct")
	}
	if p.VarID(a) >= p.VarID(b) {
		t.Fatalf("var ids must increase: %d then %d", p.VarID(a), p.VarID(b))
	}
	if !p.Flags(p.List(a)).Has(HasVar) {
		t.Fatalf("List<?a> must carry HasVar")
	}
}

func TestPoolResolutionChain(t *testing.T) {
	p := NewPool(nil)
	a := p.Named(p.Intern("A"))
	b := p.Named(p.Intern("B"))
	c := p.StructType(p.Intern("C"), nil)
	if _, ok := p.Resolve(a); ok {
		t.Fatalf("unresolved forward reference must report false")
	}
	p.SetResolution(a, b)
	p.SetResolution(b, c)
	got, ok := p.Resolve(a)
	if !ok || got != c {
		t.Fatalf("Resolve(A) = %d,%v want %d", got, ok, c)
	}
}

func TestPoolResolutionChainStopsAtUnresolved(t *testing.T) {
	p := NewPool(nil)
	a := p.Named(p.Intern("A"))
	b := p.Named(p.Intern("B"))
	p.SetResolution(a, b)
	got, ok := p.Resolve(a)
	if !ok || got != b {
		t.Fatalf("Resolve(A) = %d,%v want B", got, ok)
	}
}

func TestPoolResolutionCyclePanics(t *testing.T) {
	p := NewPool(nil)
	a := p.Named(p.Intern("A"))
	b := p.Named(p.Intern("B"))
	p.SetResolution(a, b)
	p.SetResolution(b, a)
	mustPanic(t, "cyclic resolution", func() { p.Resolve(a) })
}

func TestPoolAccessorOnWrongTagPanics(t *testing.T) {
	p := NewPool(nil)
	opt := p.Option(Int)
	mustPanic(t, "ListElem on Option", func() { p.ListElem(opt) })
	mustPanic(t, "StructFields on Int", func() { p.StructFields(Int) })
}

func TestPoolErrorFlagPropagates(t *testing.T) {
	p := NewPool(nil)
	nested := p.Map(Str, p.List(p.Tuple([]Idx{Int, Error})))
	if !p.Flags(nested).Has(HasError) {
		t.Fatalf("error inside a map value must flag the map")
	}
	if p.Flags(p.List(Int)).Has(HasError) {
		t.Fatalf("List<Int> must not carry HasError")
	}
	if !p.Flags(p.List(Int)).Has(IsComposite) {
		t.Fatalf("List<Int> must be composite")
	}
	if p.Flags(Int).Has(IsComposite) {
		t.Fatalf("Int is not composite")
	}
	s := p.StructType(p.Intern("Bad"), []Field{{Name: p.Intern("x"), Type: Error}})
	if !p.Flags(s).Has(HasError) {
		t.Fatalf("struct with an Error field must carry HasError")
	}
}

func TestPoolUnderlyingFollowsApplied(t *testing.T) {
	p := NewPool(nil)
	treeName := p.Intern("Tree")
	named := p.Named(treeName)
	leaf, node := p.Intern("Leaf"), p.Intern("Node")
	def := p.EnumType(treeName, []Variant{{Name: leaf}, {Name: node, Fields: []Idx{named, named}}})
	p.SetResolution(named, def)

	inst := p.Applied(treeName, []Idx{Int})
	if got := p.Underlying(inst); got != def {
		t.Fatalf("Underlying(Tree<Int>) = %d, want %d", got, def)
	}
	idx, v, ok := p.VariantIndex(named, node)
	if !ok || idx != 1 || len(v.Fields) != 2 {
		t.Fatalf("VariantIndex(Node) = %d %+v %v", idx, v, ok)
	}
}

func TestPoolInstanceSubstitutesPayloads(t *testing.T) {
	p := NewPool(nil)
	maybe, param := p.Intern("Maybe"), p.Named(p.Intern("T"))
	just, nothing := p.Intern("Just"), p.Intern("Nothing")
	named := p.Named(maybe)
	def := p.EnumType(maybe, []Variant{{Name: just, Fields: []Idx{p.List(param)}}, {Name: nothing}})
	p.SetParams(def, []Idx{param})
	p.SetResolution(named, def)

	vs, ok := p.VariantsOf(p.Applied(maybe, []Idx{Int}))
	if !ok || len(vs) != 2 || vs[0].Fields[0] != p.List(Int) {
		t.Fatalf("Maybe<Int> variants = %+v", vs)
	}
	if vs, _ := p.VariantsOf(named); vs[0].Fields[0] != p.List(param) {
		t.Fatalf("definition rewritten: %+v", vs)
	}
}

func TestPoolInstanceSubstitutesFields(t *testing.T) {
	p := NewPool(nil)
	a, b := p.Named(p.Intern("A")), p.Named(p.Intern("B"))
	maybe, boxed := p.Intern("Maybe"), p.Intern("Box")
	mdef := p.EnumType(maybe, []Variant{{Name: p.Intern("Just"), Fields: []Idx{a}}})
	p.SetParams(mdef, []Idx{a})
	p.SetResolution(p.Named(maybe), mdef)
	bdef := p.StructType(boxed, []Field{
		{Name: p.Intern("pair"), Type: p.Tuple([]Idx{a, b})},
		{Name: p.Intern("inner"), Type: p.Applied(maybe, []Idx{b})},
	})
	p.SetParams(bdef, []Idx{a, b})
	p.SetResolution(p.Named(boxed), bdef)

	app := p.Applied(boxed, []Idx{Int, Str})
	p.InstantiateAll()
	p.Freeze()

	under := p.Underlying(app)
	if under == bdef || p.Tag(under) != TagStruct {
		t.Fatalf("Box<Int, Str> = %s", Label(p, under))
	}
	fields := p.StructFields(under)
	if got := Label(p, fields[0].Type); got != "(Int, Str)" {
		t.Fatalf("pair = %s", got)
	}
	vs, ok := p.VariantsOf(fields[1].Type)
	if !ok || vs[0].Fields[0] != Str {
		t.Fatalf("inner = %+v", vs)
	}
}

func TestPoolInstanceDepthIsBounded(t *testing.T) {
	p := NewPool(nil)
	nest, param := p.Intern("Nest"), p.Named(p.Intern("T"))
	def := p.EnumType(nest, []Variant{
		{Name: p.Intern("Flat"), Fields: []Idx{param}},
		{Name: p.Intern("Deep"), Fields: []Idx{p.Applied(nest, []Idx{p.List(param)})}},
	})
	p.SetParams(def, []Idx{param})
	p.SetResolution(p.Named(nest), def)
	p.Applied(nest, []Idx{Int})
	p.InstantiateAll()
	if p.Len() > 200 {
		t.Fatalf("instantiation ran away: %d nodes", p.Len())
	}
}

func TestPoolVariantsOfBuiltins(t *testing.T) {
	p := NewPool(nil)
	vs, ok := p.VariantsOf(p.Option(Int))
	if !ok || len(vs) != 2 || p.Name(vs[0].Name) != "None" || p.Name(vs[1].Name) != "Some" {
		t.Fatalf("unexpected option view %+v", vs)
	}
	if vs[1].Fields[0] != Int {
		t.Fatalf("Some payload should be Int")
	}
	vs, ok = p.VariantsOf(p.Result(Int, Str))
	if !ok || p.Name(vs[1].Name) != "Err" || vs[1].Fields[0] != Str {
		t.Fatalf("unexpected result view %+v", vs)
	}
	if _, ok := p.VariantsOf(Int); ok {
		t.Fatalf("Int has no variants")
	}
}

func TestPoolFreezeAndExtend(t *testing.T) {
	base := NewPool(nil)
	listInt := base.List(Int)
	v0 := base.FreshVar()
	base.Freeze()
	mustPanic(t, "frozen", func() { base.List(Str) })

	left := base.Extend()
	right := base.Extend()
	if got := left.List(Int); got != listInt {
		t.Fatalf("overlay must reuse base handles")
	}
	lv, rv := left.FreshVar(), right.FreshVar()
	if left.VarID(lv) <= base.VarID(v0) || right.VarID(rv) <= base.VarID(v0) {
		t.Fatalf("overlay vars must continue after the base counter")
	}
	ls := left.List(Str)
	if left.Tag(ls) != TagList || left.ListElem(ls) != Str {
		t.Fatalf("overlay allocation broken")
	}
	if base.Len() != int(FirstDynamic)+2 {
		t.Fatalf("base pool changed: len %d", base.Len())
	}
}

func TestPoolInternAfterFreeze(t *testing.T) {
	p := NewPool(nil)
	known := p.Intern("known")
	p.Freeze()
	o := p.Extend()
	if o.Intern("known") != known {
		t.Fatalf("known names must resolve after freeze")
	}
	mustPanic(t, "after freeze", func() { o.Intern("unknown") })
}

func TestLabel(t *testing.T) {
	p := NewPool(nil)
	a := p.Intern("a")
	cases := []struct {
		id   Idx
		want string
	}{
		{p.List(Int), "List<Int>"},
		{p.Tuple([]Idx{Int, Bool}), "(Int, Bool)"},
		{p.Tuple([]Idx{Int}), "(Int,)"},
		{p.Function([]Idx{Int, Str}, Bool), "fn(Int, Str) -> Bool"},
		{p.Result(Int, Str), "Result<Int, Str>"},
		{p.Map(Str, p.Option(Char)), "Map<Str, Option<Char>>"},
		{p.Borrowed(Str, a), "&'a Str"},
		{p.Borrowed(Str, source.NoStringID), "&Str"},
		{Unit, "()"},
		{p.Applied(p.Intern("Tree"), []Idx{Int}), "Tree<Int>"},
	}
	for _, tc := range cases {
		if got := Label(p, tc.id); got != tc.want {
			t.Errorf("Label = %q, want %q", got, tc.want)
		}
	}
}
