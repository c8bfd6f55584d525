package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"typecore/internal/diag"
)

func writeUnit(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func check(t *testing.T, opts Options, paths ...string) *Session {
	t.Helper()
	if opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = 100
	}
	s, err := Check(context.Background(), paths, opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func find(bag *diag.Bag, code diag.Code) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func TestCheckShapes(t *testing.T) {
	s := check(t, Options{Jobs: 2}, "../fixture/testdata/shapes.toml")
	res := &s.Units[0]
	bag := s.Diagnostics()
	if bag.HasWarnings() {
		t.Fatalf("unexpected problems: %v", bag.Items())
	}
	if res.Trees != 1 || res.Table == nil {
		t.Fatalf("trees = %d", res.Trees)
	}
	if _, ok := res.Table.Lookup("area"); !ok {
		t.Fatal("tree for match area not in table")
	}
	if !res.Pool.Frozen() {
		t.Fatal("base pool not frozen")
	}
	occurs := find(bag, diag.TypeOccursCheck)
	if len(occurs) != 1 || occurs[0].Severity != diag.SevInfo {
		t.Fatalf("expected occurs check reported as info, got %v", occurs)
	}
	unreachable := find(bag, diag.PatUnreachableArm)
	if len(unreachable) != 1 || unreachable[0].Severity != diag.SevInfo {
		t.Fatalf("expected unreachable arm reported as info, got %v", unreachable)
	}
}

const problemsUnit = `name = "problems"

[[unify]]
name = "bad"

[[unify.case]]
left = "Int"
right = "Str"

[[match]]
name = "flags"
scrutinee = ["Bool"]

[[match.arm]]
patterns = ["true"]

[[match.run]]
values = ["false"]
arm = 0
`

func TestCheckReportsProblems(t *testing.T) {
	path := writeUnit(t, t.TempDir(), "problems.toml", problemsUnit)
	s := check(t, Options{}, path)
	bag := s.Diagnostics()

	mismatch := find(bag, diag.TypeMismatch)
	if len(mismatch) != 1 || mismatch[0].Severity != diag.SevError {
		t.Fatalf("mismatch: %v", mismatch)
	}
	if got := s.FileSet.Get(mismatch[0].Primary.File).Content[mismatch[0].Primary.Start:mismatch[0].Primary.End]; string(got) != "Int" {
		t.Fatalf("mismatch points at %q", got)
	}
	if len(mismatch[0].Notes) != 1 {
		t.Fatalf("mismatch notes: %v", mismatch[0].Notes)
	}

	missing := find(bag, diag.PatNonExhaustive)
	if len(missing) != 1 || !strings.Contains(missing[0].Message, "false") {
		t.Fatalf("non-exhaustive: %v", missing)
	}
	runs := find(bag, diag.FixtureExpectation)
	if len(runs) != 1 || !strings.Contains(runs[0].Message, "no arm") {
		t.Fatalf("run expectation: %v", runs)
	}
	if !s.HasErrors() {
		t.Fatal("HasErrors = false")
	}
}

const expectationsUnit = `[[unify]]
name = "wrong"
vars = ["a"]

[[unify.case]]
left = "a"
right = "Int"
error = "mismatch"

[[unify.case]]
left = "Option<a>"
right = "Option<Int>"
expect = "Option<Str>"

[[unify.case]]
left = "(Int, Int)"
right = "(Int,)"
error = "mismatch"

[[match]]
name = "total"
scrutinee = ["Bool"]
exhaustive = false
unreachable = [0]

[[match.arm]]
patterns = ["true"]

[[match.arm]]
patterns = ["false"]
`

func TestCheckReportsUnmetExpectations(t *testing.T) {
	path := writeUnit(t, t.TempDir(), "expect.toml", expectationsUnit)
	s := check(t, Options{}, path)
	got := find(s.Diagnostics(), diag.FixtureExpectation)
	var msgs []string
	for _, d := range got {
		msgs = append(msgs, d.Message)
	}
	want := []string{
		"expected mismatch, but",
		"unified to Option<Int>, expected Option<Str>",
		"expected mismatch, got arity mismatch",
		`match "total" was expected to be non-exhaustive`,
		`arm 0 of match "total" was expected to be unreachable`,
	}
	if len(msgs) != len(want) {
		t.Fatalf("got %d expectation errors: %q", len(msgs), msgs)
	}
	for _, w := range want {
		if !slices.ContainsFunc(msgs, func(m string) bool { return strings.Contains(m, w) }) {
			t.Errorf("missing %q in %q", w, msgs)
		}
	}
}

func TestMissingFileIsDiagnostic(t *testing.T) {
	s := check(t, Options{}, filepath.Join(t.TempDir(), "nope.toml"))
	if s.Units[0].Unit != nil {
		t.Fatal("unit loaded from a missing file")
	}
	if codes := s.Diagnostics().Codes(); !slices.Equal(codes, []diag.Code{diag.IOLoadFileError}) {
		t.Fatalf("codes = %v", codes)
	}
}

func TestBrokenUnitSkipsPasses(t *testing.T) {
	path := writeUnit(t, t.TempDir(), "broken.toml", `[[alias]]
name = "X"
type = "List<"
`)
	s := check(t, Options{}, path)
	res := &s.Units[0]
	if !res.Unit.Broken {
		t.Fatal("unit not broken")
	}
	if res.Pool != nil || res.Table != nil {
		t.Fatal("broken unit was checked")
	}
	if !s.HasErrors() {
		t.Fatal("parse error not reported")
	}
}

func TestPassesKeepSourceOrder(t *testing.T) {
	var sb strings.Builder
	names := []string{"m0", "m1", "m2", "m3", "m4", "m5"}
	for _, n := range names {
		sb.WriteString("[[match]]\nname = \"" + n + "\"\nscrutinee = [\"Bool\"]\n\n")
		sb.WriteString("[[match.arm]]\npatterns = [\"_\"]\n\n")
	}
	path := writeUnit(t, t.TempDir(), "many.toml", sb.String())
	s := check(t, Options{Jobs: 4}, path)
	table := s.Units[0].Table
	if table.Len() != len(names) {
		t.Fatalf("table has %d entries", table.Len())
	}
	for i, e := range table.Entries {
		if e.Name != names[i] || int(e.ID) != i+1 {
			t.Fatalf("entry %d = %s/%d", i, e.Name, e.ID)
		}
	}
}

func TestUnitsShareFileSet(t *testing.T) {
	dir := t.TempDir()
	a := writeUnit(t, dir, "a.toml", problemsUnit)
	b := writeUnit(t, dir, "b.toml", problemsUnit)
	s := check(t, Options{}, a, b)
	if s.Units[0].Unit.File == s.Units[1].Unit.File {
		t.Fatal("units share a file id")
	}
	if got := len(find(s.Diagnostics(), diag.TypeMismatch)); got != 2 {
		t.Fatalf("mismatches = %d", got)
	}
	if res, ok := s.Lookup("problems"); !ok || res.Path != a {
		t.Fatal("Lookup by unit name failed")
	}
}

func TestTimingsDiagnostic(t *testing.T) {
	s := check(t, Options{Timings: true}, "../fixture/testdata/shapes.toml")
	items := s.Diagnostics().Items()
	last := items[len(items)-1]
	if last.Code != diag.ObsTimings || len(last.Notes) != 1 {
		t.Fatalf("last diagnostic = %v", last)
	}
	if !strings.Contains(last.Notes[0].Msg, `"phases"`) {
		t.Fatalf("timings note = %s", last.Notes[0].Msg)
	}
}

func TestCheckCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, []string{"../fixture/testdata/shapes.toml"}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

const genericPayloadUnit = `name = "generic"

[[enum]]
name = "Maybe"
params = ["T"]
variants = ["Just(T)", "Nothing"]

[[match]]
name = "flat"
scrutinee = ["Maybe<Int>"]

[[match.arm]]
patterns = ["Just(1)"]

[[match.arm]]
patterns = ["Just(_)"]

[[match.arm]]
patterns = ["Nothing"]

[[match.run]]
values = ["Just(1)"]
arm = 0

[[match.run]]
values = ["Just(2)"]
arm = 1

[[match]]
name = "nested"
scrutinee = ["Maybe<Option<Int>>"]

[[match.arm]]
patterns = ["Just(Some(1))"]

[[match.arm]]
patterns = ["Just(Some(_))"]

[[match.arm]]
patterns = ["Just(None)"]

[[match.arm]]
patterns = ["Nothing"]

[[match.run]]
values = ["Just(Some(1))"]
arm = 0

[[match.run]]
values = ["Just(Some(7))"]
arm = 1

[[match.run]]
values = ["Just(None)"]
arm = 2
`

func TestGenericPayloadIsSubstituted(t *testing.T) {
	path := writeUnit(t, t.TempDir(), "generic.toml", genericPayloadUnit)
	s := check(t, Options{}, path)
	bag := s.Diagnostics()
	if bag.HasWarnings() {
		t.Fatalf("unexpected problems: %v", bag.Items())
	}
	for _, code := range []diag.Code{diag.PatUnreachableArm, diag.PatNonExhaustive, diag.FixtureExpectation} {
		if got := find(bag, code); len(got) != 0 {
			t.Fatalf("%s: %v", code, got)
		}
	}
	if s.Units[0].Trees != 2 {
		t.Fatalf("trees = %d", s.Units[0].Trees)
	}
}
