package fixture

import (
	"fmt"

	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/project/dag"
	"typecore/internal/source"
	"typecore/internal/types"
)

type builtin struct {
	arity int
	build func(p *types.Pool, args []types.Idx) types.Idx
}

func prim(id types.Idx) builtin {
	return builtin{build: func(*types.Pool, []types.Idx) types.Idx { return id }}
}

var builtins = map[string]builtin{
	"Int":      prim(types.Int),
	"Float":    prim(types.Float),
	"Bool":     prim(types.Bool),
	"Char":     prim(types.Char),
	"Byte":     prim(types.Byte),
	"Str":      prim(types.Str),
	"Unit":     prim(types.Unit),
	"Never":    prim(types.Never),
	"Duration": prim(types.Duration),
	"Size":     prim(types.Size),
	"Ordering": prim(types.Ordering),
	"List":     {1, func(p *types.Pool, a []types.Idx) types.Idx { return p.List(a[0]) }},
	"Option":   {1, func(p *types.Pool, a []types.Idx) types.Idx { return p.Option(a[0]) }},
	"Set":      {1, func(p *types.Pool, a []types.Idx) types.Idx { return p.Set(a[0]) }},
	"Range":    {1, func(p *types.Pool, a []types.Idx) types.Idx { return p.Range(a[0]) }},
	"Result":   {2, func(p *types.Pool, a []types.Idx) types.Idx { return p.Result(a[0], a[1]) }},
	"Map":      {2, func(p *types.Pool, a []types.Idx) types.Idx { return p.Map(a[0], a[1]) }},
}

// IsBuiltin reports whether name is a built-in type constructor.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

type declKind uint8

const (
	declStruct declKind = iota
	declEnum
	declAlias
)

func (k declKind) String() string {
	switch k {
	case declStruct:
		return "struct"
	case declEnum:
		return "enum"
	default:
		return "alias"
	}
}

type declInfo struct {
	kind   declKind
	named  types.Idx
	params int
	span   source.Span
}

// Scope resolves type expressions of one unit. The declaration map is
// shared and read-only once Declare returns; each pass derives its own
// Scope with ForPass.
type Scope struct {
	pool     *types.Pool
	syntax   *ast.Builder
	reporter diag.Reporter
	decls    map[source.StringID]declInfo
	locals   map[source.StringID]types.Idx
}

// Declared is the outcome of Declare: the unit scope and the resolved
// scrutinee types of every match, all living in the base pool.
type Declared struct {
	Scope      *Scope
	Scrutinees [][]types.Idx
	// Defs maps each declared name to its Named handle, in declaration order.
	Defs []types.Idx
}

// Declare registers every nominal type and alias of u in pool, then resolves
// the match scrutinee types. Forward references work in any order. pool
// must not be frozen yet; the caller freezes it afterwards.
func Declare(u *Unit, pool *types.Pool, r diag.Reporter) *Declared {
	s := &Scope{
		pool:     pool,
		syntax:   u.Syntax,
		reporter: r,
		decls:    make(map[source.StringID]declInfo),
	}
	out := &Declared{Scope: s}

	// первый проход: только имена
	structs := make([]bool, len(u.Structs))
	for i, d := range u.Structs {
		structs[i] = s.declare(d.Name, d.Span, declStruct, len(d.Params), &out.Defs)
	}
	enums := make([]bool, len(u.Enums))
	for i, d := range u.Enums {
		enums[i] = s.declare(d.Name, d.Span, declEnum, len(d.Params), &out.Defs)
	}
	aliases := make([]bool, len(u.Aliases))
	for i, d := range u.Aliases {
		aliases[i] = s.declare(d.Name, d.Span, declAlias, 0, &out.Defs)
	}

	// второй проход: определения
	for i, d := range u.Structs {
		if structs[i] {
			s.defineStruct(d)
		}
	}
	for i, d := range u.Enums {
		if enums[i] {
			s.defineEnum(d)
		}
	}
	s.defineAliases(u.Aliases, aliases)

	out.Scrutinees = make([][]types.Idx, len(u.Matches))
	for i, m := range u.Matches {
		tys := make([]types.Idx, len(m.Scrutinees))
		for j, te := range m.Scrutinees {
			tys[j] = s.Resolve(te)
		}
		out.Scrutinees[i] = tys
	}
	pool.InstantiateAll()
	return out
}

func (s *Scope) report(code diag.Code, sp source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(s.reporter, code, sp, fmt.Sprintf(format, args...))
}

func (s *Scope) declare(name source.StringID, sp source.Span, kind declKind, params int, defs *[]types.Idx) bool {
	if name == source.NoStringID {
		return false
	}
	spelled := s.pool.Name(name)
	if IsBuiltin(spelled) {
		s.report(diag.TypeDuplicateDecl, sp, "%s %q redeclares a built-in type", kind, spelled).Emit()
		return false
	}
	if prev, dup := s.decls[name]; dup {
		s.report(diag.TypeDuplicateDecl, sp, "%s %q is already declared", kind, spelled).
			WithNote(prev.span, "previous declaration of "+spelled).
			Emit()
		return false
	}
	named := s.pool.Named(name)
	s.decls[name] = declInfo{kind: kind, named: named, params: params, span: sp}
	*defs = append(*defs, named)
	return true
}

// withParams derives a scope where the generic parameters of a declaration
// stand for themselves as unresolved Named types. The handles come back in
// parameter order, Error for rejected ones.
func (s *Scope) withParams(params []Param) (*Scope, []types.Idx) {
	child := *s
	child.locals = make(map[source.StringID]types.Idx, len(params))
	ids := make([]types.Idx, len(params))
	for i, p := range params {
		ids[i] = types.Error
		spelled := s.pool.Name(p.Name)
		if _, clash := s.decls[p.Name]; clash || IsBuiltin(spelled) {
			s.report(diag.TypeDuplicateDecl, p.Span, "type parameter %q shadows a type", spelled).Emit()
			child.locals[p.Name] = types.Error
			continue
		}
		if _, dup := child.locals[p.Name]; dup {
			s.report(diag.TypeDuplicateDecl, p.Span, "duplicate type parameter %q", spelled).Emit()
			continue
		}
		ids[i] = s.pool.Named(p.Name)
		child.locals[p.Name] = ids[i]
	}
	return &child, ids
}

func (s *Scope) defineStruct(d StructDecl) {
	inner, params := s.withParams(d.Params)
	fields := make([]types.Field, 0, len(d.Fields))
	seen := make(map[source.StringID]source.Span, len(d.Fields))
	for _, f := range d.Fields {
		if prev, dup := seen[f.Name]; dup {
			s.report(diag.TypeDuplicateDecl, f.Span, "duplicate field %q", s.pool.Name(f.Name)).
				WithNote(prev, "first declared here").
				Emit()
			continue
		}
		seen[f.Name] = f.Span
		fields = append(fields, types.Field{Name: f.Name, Type: inner.Resolve(f.Type)})
	}
	def := s.pool.StructType(d.Name, fields)
	if len(params) > 0 {
		s.pool.SetParams(def, params)
	}
	s.pool.SetResolution(s.decls[d.Name].named, def)
}

func (s *Scope) defineEnum(d EnumDecl) {
	inner, params := s.withParams(d.Params)
	variants := make([]types.Variant, 0, len(d.Variants))
	seen := make(map[source.StringID]source.Span, len(d.Variants))
	for _, v := range d.Variants {
		if prev, dup := seen[v.Name]; dup {
			s.report(diag.TypeDuplicateDecl, v.Span, "duplicate variant %q", s.pool.Name(v.Name)).
				WithNote(prev, "first declared here").
				Emit()
			continue
		}
		seen[v.Name] = v.Span
		payload := make([]types.Idx, len(v.Fields))
		for i, f := range v.Fields {
			payload[i] = inner.Resolve(f)
		}
		variants = append(variants, types.Variant{Name: v.Name, Fields: payload})
	}
	def := s.pool.EnumType(d.Name, variants)
	if len(params) > 0 {
		s.pool.SetParams(def, params)
	}
	s.pool.SetResolution(s.decls[d.Name].named, def)
}

// defineAliases resolves aliases after ruling out cycles of bare alias
// names, which the pool's resolution map cannot represent.
func (s *Scope) defineAliases(aliases []AliasDecl, live []bool) {
	var nodes []dag.Decl
	for i, a := range aliases {
		if !live[i] {
			continue
		}
		node := dag.Decl{Name: s.pool.Name(a.Name), Span: a.Span}
		if te := s.syntax.Types.Get(a.Type); te != nil && te.Kind == ast.TypeExprName && len(te.Args) == 0 {
			if d, ok := s.decls[te.Name]; ok && d.kind == declAlias {
				node.Deps = append(node.Deps, dag.Dep{Name: s.pool.Name(te.Name), Span: te.Span})
			}
		}
		nodes = append(nodes, node)
	}
	idx := dag.BuildIndex(nodes)
	g, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(idx, g, slots, topo, s.reporter)
	cyclic := make(map[string]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		cyclic[idx.IDToName[int(id)]] = true
	}

	for i, a := range aliases {
		if !live[i] {
			continue
		}
		named := s.decls[a.Name].named
		if cyclic[s.pool.Name(a.Name)] {
			s.pool.SetResolution(named, types.Error)
			continue
		}
		s.pool.SetResolution(named, s.Resolve(a.Type))
	}
}

// ForPass derives a scope that builds types in pool, typically an overlay
// of the declaring pool, and reports to r.
func (s *Scope) ForPass(pool *types.Pool, r diag.Reporter) *Scope {
	child := *s
	child.pool = pool
	child.reporter = r
	child.locals = make(map[source.StringID]types.Idx)
	return &child
}

// Bind introduces a local name, such as a unification variable. It reports
// and returns false when name clashes with a declared or built-in type.
func (s *Scope) Bind(p Param, ty types.Idx) bool {
	spelled := s.pool.Name(p.Name)
	if _, clash := s.decls[p.Name]; clash || IsBuiltin(spelled) {
		s.report(diag.TypeDuplicateDecl, p.Span, "type variable %q shadows a type", spelled).Emit()
		return false
	}
	if s.locals == nil {
		s.locals = make(map[source.StringID]types.Idx)
	}
	s.locals[p.Name] = ty
	return true
}

// Pool is the pool this scope builds types in.
func (s *Scope) Pool() *types.Pool {
	return s.pool
}

// Resolve converts a parsed type expression into a pool handle. Unknown
// names and wrong argument counts are reported and yield Error.
func (s *Scope) Resolve(id ast.TypeExprID) types.Idx {
	te := s.syntax.Types.Get(id)
	if te == nil {
		return types.Error
	}
	switch te.Kind {
	case ast.TypeExprName:
		return s.resolveName(te)
	case ast.TypeExprTuple:
		return s.pool.Tuple(s.resolveAll(te.Args))
	case ast.TypeExprFn:
		result := types.Unit
		if te.Result.IsValid() {
			result = s.Resolve(te.Result)
		}
		return s.pool.Function(s.resolveAll(te.Args), result)
	case ast.TypeExprRef:
		return s.pool.Borrowed(s.Resolve(te.Args[0]), te.Name)
	}
	return types.Error
}

func (s *Scope) resolveAll(ids []ast.TypeExprID) []types.Idx {
	out := make([]types.Idx, len(ids))
	for i, id := range ids {
		out[i] = s.Resolve(id)
	}
	return out
}

func (s *Scope) resolveName(te *ast.TypeExpr) types.Idx {
	spelled := s.pool.Name(te.Name)
	if local, ok := s.locals[te.Name]; ok {
		if len(te.Args) > 0 {
			s.report(diag.TypeArityMismatch, te.Span, "%q takes no type arguments", spelled).Emit()
			return types.Error
		}
		return local
	}
	args := s.resolveAll(te.Args)
	if d, ok := s.decls[te.Name]; ok {
		if len(args) != d.params {
			s.report(diag.TypeArityMismatch, te.Span, "%s %q expects %d type arguments, got %d", d.kind, spelled, d.params, len(args)).
				WithNote(d.span, "declared here").
				Emit()
			return types.Error
		}
		if d.params == 0 {
			return d.named
		}
		return s.pool.Applied(te.Name, args)
	}
	if b, ok := builtins[spelled]; ok {
		if len(args) != b.arity {
			s.report(diag.TypeArityMismatch, te.Span, "%q expects %d type arguments, got %d", spelled, b.arity, len(args)).Emit()
			return types.Error
		}
		return b.build(s.pool, args)
	}
	s.report(diag.FixtureUnresolvedType, te.Span, "unknown type %q", spelled).Emit()
	return types.Error
}
