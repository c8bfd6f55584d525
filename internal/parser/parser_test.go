package parser

import (
	"testing"

	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/source"
)

type fixture struct {
	fs     *source.FileSet
	arenas *ast.Builder
	bag    *diag.Bag
}

func newFixture() *fixture {
	return &fixture{fs: source.NewFileSet(), arenas: ast.NewBuilder(nil), bag: diag.NewBag(32)}
}

func (f *fixture) opts() Options {
	return Options{Reporter: diag.BagReporter{Bag: f.bag}}
}

func (f *fixture) file(src string) *source.File {
	return f.fs.Get(f.fs.AddVirtual("frag", []byte(src)))
}

func (f *fixture) name(id source.StringID) string {
	return f.arenas.Strings.MustLookup(id)
}

// typeString renders a parsed type back to a canonical spelling.
func (f *fixture) typeString(id ast.TypeExprID) string {
	te := f.arenas.Types.Get(id)
	list := func(ids []ast.TypeExprID) string {
		out := ""
		for i, a := range ids {
			if i > 0 {
				out += ", "
			}
			out += f.typeString(a)
		}
		return out
	}
	switch te.Kind {
	case ast.TypeExprName:
		if len(te.Args) == 0 {
			return f.name(te.Name)
		}
		return f.name(te.Name) + "<" + list(te.Args) + ">"
	case ast.TypeExprTuple:
		return "(" + list(te.Args) + ")"
	case ast.TypeExprFn:
		out := "fn(" + list(te.Args) + ")"
		if te.Result.IsValid() {
			out += " -> " + f.typeString(te.Result)
		}
		return out
	case ast.TypeExprRef:
		if te.Name == source.NoStringID {
			return "&" + f.typeString(te.Args[0])
		}
		return "&'" + f.name(te.Name) + " " + f.typeString(te.Args[0])
	}
	return "?"
}

func TestParseTypeForms(t *testing.T) {
	cases := map[string]string{
		"Int":                      "Int",
		"List<Int>":                "List<Int>",
		"Result<Option<Int>, Str>": "Result<Option<Int>, Str>",
		"(Int, Bool)":              "(Int, Bool)",
		"()":                       "()",
		"(Int)":                    "Int",
		"fn(Int, Str) -> Bool":     "fn(Int, Str) -> Bool",
		"fn()":                     "fn()",
		"&'a Str":                  "&'a Str",
		"&List<Int>":               "&List<Int>",
		"Map<Str, List<(Int,)>>":   "Map<Str, List<(Int)>>",
	}
	for src, want := range cases {
		f := newFixture()
		id, ok := ParseType(f.file(src), f.arenas, f.opts())
		if !ok {
			t.Fatalf("%q: parse failed: %v", src, f.bag.Codes())
		}
		if got := f.typeString(id); got != want {
			t.Errorf("%q: got %q, want %q", src, got, want)
		}
	}
}

func TestParseTypeErrors(t *testing.T) {
	cases := map[string]diag.Code{
		"List<Int":   diag.SynUnclosedDelimiter,
		"List<>":     diag.SynExpectType,
		"Int Str":    diag.SynUnexpectedToken,
		"fn Int":     diag.SynUnexpectedToken,
		",":          diag.SynExpectType,
		"(Int, Bool": diag.SynUnclosedDelimiter,
		"Int#":       diag.LexUnknownChar,
	}
	for src, want := range cases {
		f := newFixture()
		if _, ok := ParseType(f.file(src), f.arenas, f.opts()); ok {
			t.Fatalf("%q: expected failure", src)
		}
		codes := f.bag.Codes()
		if len(codes) != 1 || codes[0] != want {
			t.Errorf("%q: codes %v, want [%v]", src, codes, want)
		}
	}
}

func TestUnclosedNotesOpening(t *testing.T) {
	f := newFixture()
	ParseType(f.file("List<Int"), f.arenas, f.opts())
	d := f.bag.Items()[0]
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != 4 {
		t.Fatalf("notes = %+v", d.Notes)
	}
	if d.Primary.Start != 8 {
		t.Fatalf("primary = %v, want end of fragment", d.Primary)
	}
}

func TestParsePatternForms(t *testing.T) {
	f := newFixture()
	id, ok := ParsePattern(f.file("Shape(Point { x: 0, y, .. }, [1, -2, ..rest], (_, 'c', \"s\", true))"), f.arenas, f.opts())
	if !ok {
		t.Fatalf("parse failed: %v", f.bag.Codes())
	}
	pats := f.arenas.Patterns
	root := pats.Get(id)
	if root.Kind != ast.PatVariant || f.name(root.Name) != "Shape" || len(root.Elems) != 3 {
		t.Fatalf("root = %+v", root)
	}

	st := pats.Get(root.Elems[0])
	if st.Kind != ast.PatStruct || !st.HasRest || len(st.Fields) != 2 {
		t.Fatalf("struct = %+v", st)
	}
	if y := pats.Get(st.Fields[1].Pat); y.Kind != ast.PatBinding || f.name(y.Name) != "y" {
		t.Fatalf("shorthand field = %+v", y)
	}

	list := pats.Get(root.Elems[1])
	if list.Kind != ast.PatList || !list.HasRest || len(list.Elems) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if neg := pats.Get(list.Elems[1]); neg.Lit != ast.IntLit(-2) {
		t.Fatalf("negative literal = %+v", neg.Lit)
	}
	if rest := pats.Get(list.Rest); rest.Kind != ast.PatBinding || f.name(rest.Name) != "rest" {
		t.Fatalf("rest = %+v", rest)
	}

	tup := pats.Get(root.Elems[2])
	if tup.Kind != ast.PatTuple || len(tup.Elems) != 4 {
		t.Fatalf("tuple = %+v", tup)
	}
	want := []ast.Lit{ast.CharLit('c'), ast.StrLit("s"), ast.BoolLit(true)}
	for i, w := range want {
		if got := pats.Get(tup.Elems[i+1]).Lit; got != w {
			t.Fatalf("literal %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestParseListRestForms(t *testing.T) {
	cases := []struct {
		src       string
		prefix    int
		hasRest   bool
		namedRest bool
	}{
		{"[]", 0, false, false},
		{"[x]", 1, false, false},
		{"[..]", 0, true, false},
		{"[x, ..]", 1, true, false},
		{"[.._]", 0, true, true},
		{"[a, b, ..tail,]", 2, true, true},
	}
	for _, tc := range cases {
		f := newFixture()
		id, ok := ParsePattern(f.file(tc.src), f.arenas, f.opts())
		if !ok {
			t.Fatalf("%q: %v", tc.src, f.bag.Codes())
		}
		pat := f.arenas.Patterns.Get(id)
		if len(pat.Elems) != tc.prefix || pat.HasRest != tc.hasRest || pat.Rest.IsValid() != tc.namedRest {
			t.Errorf("%q: %+v", tc.src, pat)
		}
	}
}

func TestParsePatternErrors(t *testing.T) {
	cases := map[string]diag.Code{
		"Some(":       diag.SynUnclosedDelimiter,
		"[1, ..r, 2]": diag.SynUnclosedDelimiter,
		"P { 1 }":     diag.SynExpectPattern,
		"-x":          diag.SynExpectPattern,
		"x y":         diag.SynUnexpectedToken,
		"'ab":         diag.SynExpectPattern,
	}
	for src, want := range cases {
		f := newFixture()
		if _, ok := ParsePattern(f.file(src), f.arenas, f.opts()); ok {
			t.Fatalf("%q: expected failure", src)
		}
		codes := f.bag.Codes()
		if len(codes) != 1 || codes[0] != want {
			t.Errorf("%q: codes %v, want [%v]", src, codes, want)
		}
	}
}

func TestMaxErrorsStopsReporting(t *testing.T) {
	f := newFixture()
	opts := f.opts()
	opts.MaxErrors = 1
	p := newParser(f.file("x"), f.arenas, opts)
	p.err(diag.SynExpectPattern, "first")
	p.err(diag.SynExpectPattern, "second")
	if f.bag.Len() != 1 || p.opts.CurrentErrors != 2 {
		t.Fatalf("reported %d, counted %d", f.bag.Len(), p.opts.CurrentErrors)
	}
}
