package fixture

import (
	"errors"
	"reflect"
	"testing"

	"typecore/internal/decision"
	"typecore/internal/diag"
	"typecore/internal/source"
	"typecore/internal/types"
)

type env struct {
	fs    *source.FileSet
	names *source.Interner
	bag   *diag.Bag
}

func newEnv() *env {
	return &env{fs: source.NewFileSet(), names: source.NewInterner(), bag: diag.NewBag(64)}
}

func (e *env) reporter() diag.Reporter {
	return diag.BagReporter{Bag: e.bag}
}

func (e *env) parse(content string) *Unit {
	id := e.fs.AddVirtual("unit.toml", []byte(content))
	return Parse(e.fs, id, e.names, e.reporter())
}

func (e *env) text(sp source.Span) string {
	return string(e.fs.Get(sp.File).Content[sp.Start:sp.End])
}

func (e *env) declare(t *testing.T, u *Unit) (*types.Pool, *Declared) {
	t.Helper()
	pool := types.NewPool(e.names)
	return pool, Declare(u, pool, e.reporter())
}

func loadShapes(t *testing.T, e *env) *Unit {
	t.Helper()
	u, err := Load(e.fs, "testdata/shapes.toml", e.names, e.reporter())
	if err != nil {
		t.Fatal(err)
	}
	if u.Broken || e.bag.Len() != 0 {
		t.Fatalf("shapes.toml: broken=%v diagnostics=%v", u.Broken, e.bag.Items())
	}
	return u
}

func TestLoadShapes(t *testing.T) {
	e := newEnv()
	u := loadShapes(t, e)
	if u.Name != "shapes" {
		t.Fatalf("name = %q", u.Name)
	}
	decls, queries, matches := u.Counts()
	if decls != 4 || queries != 3 || matches != 1 {
		t.Fatalf("counts = %d/%d/%d", decls, queries, matches)
	}
	m := u.Matches[0]
	if len(m.Arms) != 4 || len(m.Runs) != 3 || !reflect.DeepEqual(m.Unreachable, []int{3}) {
		t.Fatalf("match = %+v", m)
	}
	if !u.Groups[0].Cases[2].WantError {
		t.Fatal("occurs case must expect an error")
	}
	if e.fs.Len() != 1 {
		t.Fatalf("every fragment should be located in place, files = %d", e.fs.Len())
	}
}

func TestFragmentSpansPointIntoUnitFile(t *testing.T) {
	e := newEnv()
	u := loadShapes(t, e)
	if got := e.text(u.Structs[0].Fields[1].Span); got != "y" {
		t.Fatalf("field span text = %q", got)
	}
	if got := e.text(u.Enums[1].Variants[1].Span); got != "Node" {
		t.Fatalf("variant span text = %q", got)
	}
	m := u.Matches[0]
	guard := u.Syntax.Guards.Get(m.Arms[0].Guard)
	if guard == nil || e.text(guard.Span) != "r > 0" {
		t.Fatalf("guard = %+v", guard)
	}
	if got := e.text(m.Arms[3].Span); got != "[[match.arm]]" {
		t.Fatalf("arm header = %q", got)
	}
	if arm, ok := m.GuardArm(m.Arms[0].Guard); !ok || arm != 0 {
		t.Fatalf("GuardArm = %d, %v", arm, ok)
	}
}

func TestFragmentErrorReportedInPlace(t *testing.T) {
	e := newEnv()
	u := e.parse("[[struct]]\nname = \"P\"\nfields = [\"x: List<Int\"]\n")
	if !u.Broken {
		t.Fatal("unit must be broken")
	}
	items := e.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynUnclosedDelimiter {
		t.Fatalf("diagnostics = %+v", items)
	}
	if items[0].Primary.File != u.File {
		t.Fatalf("primary in file %d, want the unit file", items[0].Primary.File)
	}
	if got := e.text(items[0].Notes[0].Span); got != "<" {
		t.Fatalf("note text = %q", got)
	}
}

func TestEscapedFragmentUsesVirtualFile(t *testing.T) {
	e := newEnv()
	u := e.parse("[[alias]]\nname = \"L\"\ntype = \"List<\\u0049nt>\"\n")
	if u.Broken {
		t.Fatalf("diagnostics = %+v", e.bag.Items())
	}
	if e.fs.Len() != 2 {
		t.Fatalf("files = %d, want a virtual file for the escaped fragment", e.fs.Len())
	}
	if path := e.fs.Get(1).Path; path != "unit.toml#alias type" {
		t.Fatalf("virtual path = %q", path)
	}
}

func TestTOMLErrors(t *testing.T) {
	e := newEnv()
	u := e.parse("name = \n")
	if !u.Broken || e.bag.Len() != 1 || e.bag.Items()[0].Code != diag.PrjBadFixture {
		t.Fatalf("broken=%v diagnostics=%+v", u.Broken, e.bag.Items())
	}

	e = newEnv()
	u = e.parse("[[struct]]\nname = \"P\"\ncolour = 1\n")
	if u.Broken {
		t.Fatal("an unknown key is only a warning")
	}
	items := e.bag.Items()
	if len(items) != 1 || items[0].Severity != diag.SevWarning || e.text(items[0].Primary) != "colour" {
		t.Fatalf("diagnostics = %+v", items)
	}
}

func TestStructuralChecks(t *testing.T) {
	cases := map[string]string{
		"arm count":    "[[match]]\nscrutinee = [\"Int\", \"Int\"]\n[[match.arm]]\npatterns = [\"_\"]\n",
		"no arms":      "[[match]]\nscrutinee = [\"Int\"]\n",
		"error kind":   "[[unify]]\n[[unify.case]]\nleft = \"Int\"\nright = \"Int\"\nerror = \"boom\"\n",
		"missing side": "[[unify]]\n[[unify.case]]\nleft = \"Int\"\n",
		"run arm":      "[[match]]\nscrutinee = [\"Int\"]\n[[match.arm]]\npatterns = [\"_\"]\n[[match.run]]\nvalues = [\"1\"]\narm = 4\n",
		"empty enum":   "[[enum]]\nname = \"E\"\n",
	}
	for name, content := range cases {
		e := newEnv()
		u := e.parse(content)
		if !u.Broken {
			t.Errorf("%s: unit must be broken", name)
			continue
		}
		if codes := e.bag.Codes(); len(codes) != 1 || codes[0] != diag.PrjBadFixture {
			t.Errorf("%s: codes = %v", name, codes)
		}
	}
}

func TestDeclareShapes(t *testing.T) {
	e := newEnv()
	u := loadShapes(t, e)
	pool, d := e.declare(t, u)
	if e.bag.Len() != 0 {
		t.Fatalf("diagnostics = %+v", e.bag.Items())
	}
	if len(d.Defs) != 4 {
		t.Fatalf("defs = %d", len(d.Defs))
	}
	scrut := d.Scrutinees[0][0]
	if pool.Tag(scrut) != types.TagOption {
		t.Fatalf("scrutinee = %s", types.Label(pool, scrut))
	}
	shape := pool.Underlying(pool.OptionInner(scrut))
	if pool.Tag(shape) != types.TagEnum || len(pool.EnumVariants(shape)) != 3 {
		t.Fatalf("Shape = %s", types.Label(pool, shape))
	}
	radius, _ := pool.FindNamed(pool.Intern("Radius"))
	if target, ok := pool.Resolve(radius); !ok || target != types.Int {
		t.Fatalf("Radius resolves to %v", target)
	}
}

func TestDeclareForwardReferences(t *testing.T) {
	e := newEnv()
	u := e.parse(`[[struct]]
name = "A"
fields = ["b: B"]

[[struct]]
name = "B"
fields = ["x: Int"]
`)
	pool, _ := e.declare(t, u)
	if e.bag.Len() != 0 {
		t.Fatalf("diagnostics = %+v", e.bag.Items())
	}
	a, _ := pool.FindNamed(pool.Intern("A"))
	field := pool.StructFields(pool.Underlying(a))[0].Type
	if under := pool.Underlying(field); pool.Tag(under) != types.TagStruct || pool.Name(pool.StructName(under)) != "B" {
		t.Fatalf("A.b = %s", types.Label(pool, under))
	}
}

func TestDeclareAliasCycle(t *testing.T) {
	e := newEnv()
	u := e.parse(`[[alias]]
name = "A"
type = "B"

[[alias]]
name = "B"
type = "A"

[[alias]]
name = "C"
type = "List<A>"
`)
	pool, _ := e.declare(t, u)
	codes := e.bag.Codes()
	if len(codes) != 2 || codes[0] != diag.TypeAliasCycle || codes[1] != diag.TypeAliasCycle {
		t.Fatalf("codes = %v", codes)
	}
	a, _ := pool.FindNamed(pool.Intern("A"))
	if target, _ := pool.Resolve(a); target != types.Error {
		t.Fatalf("A resolves to %s", types.Label(pool, target))
	}
	c, _ := pool.FindNamed(pool.Intern("C"))
	if target, _ := pool.Resolve(c); pool.Tag(target) != types.TagList {
		t.Fatalf("C resolves to %s", types.Label(pool, target))
	}
}

func TestDeclareErrors(t *testing.T) {
	e := newEnv()
	u := e.parse(`[[struct]]
name = "Int"
fields = []

[[struct]]
name = "P"
fields = ["x: Int", "x: Bool"]

[[enum]]
name = "P"
variants = ["A"]

[[enum]]
name = "Box"
params = ["T"]
variants = ["Full(T)"]

[[alias]]
name = "X"
type = "Box"

[[alias]]
name = "Y"
type = "Nope"

[[alias]]
name = "Z"
type = "Map<Int>"
`)
	e.declare(t, u)
	want := []diag.Code{
		diag.TypeDuplicateDecl,     // Int
		diag.TypeDuplicateDecl,     // enum P
		diag.TypeDuplicateDecl,     // field x
		diag.TypeArityMismatch,     // Box
		diag.FixtureUnresolvedType, // Nope
		diag.TypeArityMismatch,     // Map<Int>
	}
	if got := e.bag.Codes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if notes := e.bag.Items()[1].Notes; len(notes) != 1 || e.text(notes[0].Span) != "P" {
		t.Fatalf("duplicate note = %+v", notes)
	}
}

func TestScopeForPassBindsVars(t *testing.T) {
	e := newEnv()
	u := loadShapes(t, e)
	pool, d := e.declare(t, u)
	pool.Freeze()

	overlay := pool.Extend()
	sc := d.Scope.ForPass(overlay, e.reporter())
	v := overlay.FreshVar()
	if !sc.Bind(u.Groups[0].Vars[0], v) {
		t.Fatal("bind a failed")
	}
	list := sc.Resolve(u.Groups[0].Cases[0].Left)
	if overlay.Tag(list) != types.TagList || overlay.ListElem(list) != v {
		t.Fatalf("List<a> = %s", types.Label(overlay, list))
	}
	if sc.Bind(Param{Name: pool.Intern("Shape")}, v) {
		t.Fatal("a variable must not shadow a declared type")
	}
}

func TestValueConversion(t *testing.T) {
	e := newEnv()
	u := loadShapes(t, e)
	pool, d := e.declare(t, u)
	pool.Freeze()

	ty := d.Scrutinees[0][0]
	runs := u.Matches[0].Runs
	got, err := Value(pool, u.Syntax.Patterns, runs[0].Values[0], ty)
	if err != nil {
		t.Fatal(err)
	}
	circle := decision.VariantVal(0, decision.StructVal(decision.IntVal(1), decision.IntVal(2)), decision.IntVal(5))
	if want := decision.VariantVal(1, circle); !reflect.DeepEqual(got, want) {
		t.Fatalf("value = %+v, want %+v", got, want)
	}
	none, err := Value(pool, u.Syntax.Patterns, runs[2].Values[0], ty)
	if err != nil || !reflect.DeepEqual(none, decision.VariantVal(0)) {
		t.Fatalf("None = %+v, %v", none, err)
	}
}

func TestValueRejectsNonConcrete(t *testing.T) {
	e := newEnv()
	u := e.parse(`[[struct]]
name = "P"
fields = ["x: Int", "y: Int"]

[[match]]
scrutinee = ["P"]
[[match.arm]]
patterns = ["_"]
[[match.run]]
values = ["P { x: 1 }"]
[[match.run]]
values = ["P { x: 1, y: _ }"]
[[match.run]]
values = ["q"]
`)
	pool, d := e.declare(t, u)
	pool.Freeze()
	for i, run := range u.Matches[0].Runs {
		_, err := Value(pool, u.Syntax.Patterns, run.Values[0], d.Scrutinees[0][0])
		var verr *ValueError
		if !errors.As(err, &verr) {
			t.Fatalf("run %d: err = %v", i, err)
		}
		if verr.Span.File != u.File {
			t.Fatalf("run %d: span %v outside the unit file", i, verr.Span)
		}
	}
}
