package fixture

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/parser"
	"typecore/internal/source"
	"typecore/internal/unify"
)

// fragmentMaxErrors caps the diagnostics one fragment may produce.
const fragmentMaxErrors = 4

type rawUnit struct {
	Name    string      `toml:"name"`
	Structs []rawStruct `toml:"struct"`
	Enums   []rawEnum   `toml:"enum"`
	Aliases []rawAlias  `toml:"alias"`
	Unify   []rawUnify  `toml:"unify"`
	Matches []rawMatch  `toml:"match"`
}

type rawStruct struct {
	Name   string   `toml:"name"`
	Params []string `toml:"params"`
	Fields []string `toml:"fields"`
}

type rawEnum struct {
	Name     string   `toml:"name"`
	Params   []string `toml:"params"`
	Variants []string `toml:"variants"`
}

type rawAlias struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type rawUnify struct {
	Name  string    `toml:"name"`
	Vars  []string  `toml:"vars"`
	Cases []rawCase `toml:"case"`
}

type rawCase struct {
	Left   string `toml:"left"`
	Right  string `toml:"right"`
	Expect string `toml:"expect"`
	Error  string `toml:"error"`
}

type rawMatch struct {
	Name        string   `toml:"name"`
	Scrutinee   []string `toml:"scrutinee"`
	Exhaustive  *bool    `toml:"exhaustive"`
	Unreachable []int    `toml:"unreachable"`
	Arms        []rawArm `toml:"arm"`
	Runs        []rawRun `toml:"run"`
}

type rawArm struct {
	Patterns []string `toml:"patterns"`
	Guard    string   `toml:"guard"`
}

type rawRun struct {
	Values []string `toml:"values"`
	Reject []int    `toml:"reject"`
	Arm    *int     `toml:"arm"`
}

// countingReporter forwards diagnostics and remembers whether an error
// went through.
type countingReporter struct {
	r      diag.Reporter
	errors int
}

func (c *countingReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev >= diag.SevError {
		c.errors++
	}
	if c.r != nil {
		c.r.Report(code, sev, primary, msg, notes)
	}
}

// Load reads a unit file into fs and parses it. I/O failures are returned;
// everything wrong with the content is reported and marks the unit Broken.
func Load(fs *source.FileSet, path string, names *source.Interner, r diag.Reporter) (*Unit, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load unit %s: %w", path, err)
	}
	return Parse(fs, id, names, r), nil
}

// Parse decodes the unit file id. Identifiers land in names, which the
// caller shares with the unit's type pool. Virtual files for fragments that
// cannot be located are added to fs.
func Parse(fs *source.FileSet, id source.FileID, names *source.Interner, r diag.Reporter) *Unit {
	file := fs.Get(id)
	rep := &countingReporter{r: r}
	u := &Unit{Path: file.Path, File: id, Syntax: ast.NewBuilder(names)}
	l := &loader{fs: fs, file: file, unit: u, rep: rep, loc: locator{content: file.Content}}

	var raw rawUnit
	meta, err := toml.Decode(string(file.Content), &raw)
	if err != nil {
		l.decodeError(err)
		u.Broken = true
		return u
	}
	for _, k := range meta.Undecoded() {
		sp := l.span(0, 0)
		if at, ok := l.loc.key(k[len(k)-1], 0, len(file.Content)); ok {
			sp = l.span(at, at+len(k[len(k)-1]))
		}
		diag.ReportWarning(rep, diag.PrjBadFixture, sp, fmt.Sprintf("unknown key %q", k.String())).Emit()
	}

	u.Name = raw.Name
	if u.Name == "" {
		u.Name = file.Path
	}
	l.load(&raw)
	u.Broken = rep.errors > 0
	return u
}

type loader struct {
	fs   *source.FileSet
	file *source.File
	unit *Unit
	rep  *countingReporter
	loc  locator
}

func offset(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("fixture: offset overflow: %w", err))
	}
	return v
}

func (l *loader) span(start, end int) source.Span {
	return source.Span{File: l.file.ID, Start: offset(start), End: offset(end)}
}

func (l *loader) decodeError(err error) {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		start := min(perr.Position.Start, len(l.file.Content))
		end := min(start+max(perr.Position.Len, 1), len(l.file.Content))
		msg := perr.Message
		if msg == "" {
			msg = perr.Error()
		}
		diag.ReportError(l.rep, diag.PrjBadFixture, l.span(start, end), "invalid unit file: "+msg).Emit()
		return
	}
	diag.ReportError(l.rep, diag.PrjBadFixture, l.span(0, 0), "invalid unit file: "+err.Error()).Emit()
}

// headerSpan covers the `[[name]]` of s, or the start of the section when
// there is none.
func (l *loader) headerSpan(s section) source.Span {
	if s.header < 0 {
		return l.span(s.start, s.start)
	}
	return l.span(s.header, s.header+len(s.name)+4)
}

func (l *loader) bad(sp source.Span, format string, args ...any) {
	diag.ReportError(l.rep, diag.PrjBadFixture, sp, fmt.Sprintf(format, args...)).Emit()
}

// fragment returns the file and parser options that cover text. When text
// cannot be found in s a virtual file named after what is added.
func (l *loader) fragment(s *section, what, text string) (*source.File, parser.Options) {
	opts := parser.Options{MaxErrors: fragmentMaxErrors, Reporter: l.rep}
	if start, end, ok := l.loc.find(s, text); ok {
		opts.Offset, opts.Limit = offset(start), offset(end)
		return l.file, opts
	}
	id := l.fs.AddVirtual(l.file.Path+"#"+what, []byte(text))
	return l.fs.Get(id), opts
}

func (l *loader) textSpan(s *section, text string) source.Span {
	if start, end, ok := l.loc.find(s, text); ok {
		return l.span(start, end)
	}
	return l.headerSpan(*s)
}

func (l *loader) name(s *section, what, text string) (source.StringID, source.Span, bool) {
	if strings.TrimSpace(text) == "" {
		l.bad(l.headerSpan(*s), "%s without a name", what)
		return source.NoStringID, source.Span{}, false
	}
	file, opts := l.fragment(s, what+" name", text)
	return parser.ParseName(file, l.unit.Syntax, opts)
}

func (l *loader) params(s *section, what string, names []string) []Param {
	out := make([]Param, 0, len(names))
	for _, n := range names {
		file, opts := l.fragment(s, what, n)
		if id, sp, ok := parser.ParseName(file, l.unit.Syntax, opts); ok {
			out = append(out, Param{Name: id, Span: sp})
		}
	}
	return out
}

func (l *loader) typeExpr(s *section, what, text string) ast.TypeExprID {
	file, opts := l.fragment(s, what, text)
	id, _ := parser.ParseType(file, l.unit.Syntax, opts)
	return id
}

func (l *loader) pattern(s *section, what, text string) ast.PatID {
	file, opts := l.fragment(s, what, text)
	id, _ := parser.ParsePattern(file, l.unit.Syntax, opts)
	return id
}

func (l *loader) load(raw *rawUnit) {
	end := len(l.file.Content)

	from := 0
	for _, rs := range raw.Structs {
		sec := l.loc.open("struct", &from, end)
		d := StructDecl{}
		d.Name, d.Span, _ = l.name(&sec, "struct", rs.Name)
		d.Params = l.params(&sec, "type parameter", rs.Params)
		for _, f := range rs.Fields {
			file, opts := l.fragment(&sec, "field", f)
			if fd, ok := parser.ParseField(file, l.unit.Syntax, opts); ok {
				d.Fields = append(d.Fields, fd)
			}
		}
		l.unit.Structs = append(l.unit.Structs, d)
	}

	from = 0
	for _, re := range raw.Enums {
		sec := l.loc.open("enum", &from, end)
		d := EnumDecl{}
		d.Name, d.Span, _ = l.name(&sec, "enum", re.Name)
		d.Params = l.params(&sec, "type parameter", re.Params)
		for _, v := range re.Variants {
			file, opts := l.fragment(&sec, "variant", v)
			if vd, ok := parser.ParseVariant(file, l.unit.Syntax, opts); ok {
				d.Variants = append(d.Variants, vd)
			}
		}
		if len(re.Variants) == 0 {
			l.bad(l.headerSpan(sec), "enum %q has no variants", re.Name)
		}
		l.unit.Enums = append(l.unit.Enums, d)
	}

	from = 0
	for _, ra := range raw.Aliases {
		sec := l.loc.open("alias", &from, end)
		d := AliasDecl{}
		d.Name, d.Span, _ = l.name(&sec, "alias", ra.Name)
		if strings.TrimSpace(ra.Type) == "" {
			l.bad(l.headerSpan(sec), "alias %q has no type", ra.Name)
		} else {
			d.Type = l.typeExpr(&sec, "alias type", ra.Type)
		}
		l.unit.Aliases = append(l.unit.Aliases, d)
	}

	from = 0
	for _, ru := range raw.Unify {
		sec := l.loc.open("unify", &from, end)
		blockEnd := l.loc.block("unify", sec, end)
		l.unit.Groups = append(l.unit.Groups, l.unifyGroup(ru, sec, blockEnd))
	}

	from = 0
	for _, rm := range raw.Matches {
		sec := l.loc.open("match", &from, end)
		blockEnd := l.loc.block("match", sec, end)
		l.unit.Matches = append(l.unit.Matches, l.match(rm, sec, blockEnd))
	}
}

func (l *loader) unifyGroup(ru rawUnify, sec section, blockEnd int) UnifyGroup {
	g := UnifyGroup{Name: ru.Name, Span: l.headerSpan(sec)}
	g.Vars = l.params(&sec, "type variable", ru.Vars)
	from := sec.start
	for _, rc := range ru.Cases {
		cs := l.loc.open("unify.case", &from, blockEnd)
		c := UnifyCase{Span: l.headerSpan(cs)}
		if rc.Left == "" || rc.Right == "" {
			l.bad(c.Span, "unify case needs both left and right")
			g.Cases = append(g.Cases, c)
			continue
		}
		c.Left = l.typeExpr(&cs, "left", rc.Left)
		c.Right = l.typeExpr(&cs, "right", rc.Right)
		if rc.Expect != "" {
			c.Expect = l.typeExpr(&cs, "expect", rc.Expect)
		}
		if rc.Error != "" {
			if rc.Expect != "" {
				l.bad(l.textSpan(&cs, rc.Error), "expect and error are mutually exclusive")
			}
			kind, ok := parseErrorKind(rc.Error)
			if !ok {
				l.bad(l.textSpan(&cs, rc.Error), "unknown error kind %q (expected mismatch|occurs|arity)", rc.Error)
			}
			c.WantError, c.ErrorKind = true, kind
		}
		g.Cases = append(g.Cases, c)
	}
	return g
}

func parseErrorKind(s string) (unify.ErrorKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mismatch":
		return unify.Mismatch, true
	case "occurs":
		return unify.OccursCheck, true
	case "arity":
		return unify.ArityMismatch, true
	}
	return 0, false
}

func (l *loader) match(rm rawMatch, sec section, blockEnd int) Match {
	m := Match{Name: rm.Name, Span: l.headerSpan(sec), Exhaustive: rm.Exhaustive}
	if len(rm.Scrutinee) == 0 {
		l.bad(m.Span, "match %q has no scrutinee", rm.Name)
	}
	for _, s := range rm.Scrutinee {
		m.Scrutinees = append(m.Scrutinees, l.typeExpr(&sec, "scrutinee", s))
	}
	if len(rm.Arms) == 0 {
		l.bad(m.Span, "match %q has no arms", rm.Name)
	}

	from := sec.start
	for i, ra := range rm.Arms {
		as := l.loc.open("match.arm", &from, blockEnd)
		arm := Arm{Span: l.headerSpan(as)}
		if len(ra.Patterns) != len(rm.Scrutinee) {
			l.bad(arm.Span, "arm %d has %d patterns, the match has %d scrutinees", i, len(ra.Patterns), len(rm.Scrutinee))
		}
		for _, p := range ra.Patterns {
			arm.Patterns = append(arm.Patterns, l.pattern(&as, "pattern", p))
		}
		if g := strings.TrimSpace(ra.Guard); g != "" {
			arm.Guard = l.unit.Syntax.Guards.New(g, l.textSpan(&as, ra.Guard))
		}
		m.Arms = append(m.Arms, arm)
	}
	for _, idx := range rm.Unreachable {
		if idx < 0 || idx >= len(rm.Arms) {
			l.bad(m.Span, "unreachable lists arm %d, the match has %d arms", idx, len(rm.Arms))
		}
	}
	m.Unreachable = rm.Unreachable

	from = sec.start
	for i, rr := range rm.Runs {
		rs := l.loc.open("match.run", &from, blockEnd)
		run := Run{Span: l.headerSpan(rs), Reject: rr.Reject, Arm: rr.Arm}
		if len(rr.Values) != len(rm.Scrutinee) {
			l.bad(run.Span, "run %d has %d values, the match has %d scrutinees", i, len(rr.Values), len(rm.Scrutinee))
		}
		for _, v := range rr.Values {
			run.Values = append(run.Values, l.pattern(&rs, "value", v))
		}
		for _, idx := range rr.Reject {
			if idx < 0 || idx >= len(rm.Arms) {
				l.bad(run.Span, "reject lists arm %d, the match has %d arms", idx, len(rm.Arms))
			}
		}
		if rr.Arm != nil && (*rr.Arm < -1 || *rr.Arm >= len(rm.Arms)) {
			l.bad(run.Span, "run expects arm %d, the match has %d arms", *rr.Arm, len(rm.Arms))
		}
		m.Runs = append(m.Runs, run)
	}
	return m
}
