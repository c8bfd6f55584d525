package types

import (
	"fmt"
	"slices"
)

// maxInstanceDepth bounds eager instantiation chains such as Nest<T>
// holding a Nest<List<T>>. Applied types beyond it keep the generic layout.
const maxInstanceDepth = 8

// SetParams records the generic parameters of a struct or enum definition,
// in declaration order. Each parameter is the Named handle the definition's
// layout uses for it; Error marks a parameter that was rejected.
func (p *Pool) SetParams(def Idx, params []Idx) {
	p.mustMutate()
	if tag := p.Tag(def); tag != TagStruct && tag != TagEnum {
		panic(fmt.Sprintf("types: SetParams on %s", tag))
	}
	p.params[def] = slices.Clone(params)
}

// Params returns the generic parameters recorded for def, nil if none.
func (p *Pool) Params(def Idx) []Idx {
	for cur := p; cur != nil; cur = cur.parent {
		if ps, ok := cur.params[def]; ok {
			return ps
		}
	}
	return nil
}

// Substitute replaces every handle found in m throughout ty and interns the
// result. Nominal definitions, variables and schemes are not entered.
func (p *Pool) Substitute(ty Idx, m map[Idx]Idx) Idx {
	if to, ok := m[ty]; ok {
		return to
	}
	if !p.Flags(ty).Has(IsComposite) {
		return ty
	}
	sub := func(id Idx) Idx { return p.Substitute(id, m) }
	all := func(ids []Idx) []Idx {
		out := make([]Idx, len(ids))
		for i, id := range ids {
			out[i] = sub(id)
		}
		return out
	}
	switch p.Tag(ty) {
	case TagList:
		return p.List(sub(p.ListElem(ty)))
	case TagOption:
		return p.Option(sub(p.OptionInner(ty)))
	case TagSet:
		return p.Set(sub(p.SetElem(ty)))
	case TagRange:
		return p.Range(sub(p.RangeElem(ty)))
	case TagResult:
		ok, err := p.ResultParts(ty)
		return p.Result(sub(ok), sub(err))
	case TagMap:
		k, v := p.MapParts(ty)
		return p.Map(sub(k), sub(v))
	case TagTuple:
		return p.Tuple(all(p.TupleElems(ty)))
	case TagFunction:
		return p.Function(all(p.FunctionParams(ty)), sub(p.FunctionResult(ty)))
	case TagBorrowed:
		inner, lifetime := p.BorrowedParts(ty)
		return p.Borrowed(sub(inner), lifetime)
	case TagApplied:
		return p.Applied(p.AppliedName(ty), all(p.AppliedArgs(ty)))
	}
	return ty
}

// instance returns the definition of the Applied type app with its
// arguments substituted for the parameters. A frozen pool only answers
// from instances built before Freeze.
func (p *Pool) instance(app Idx) (Idx, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if id, ok := cur.instances[app]; ok {
			return id, true
		}
	}
	if p.frozen {
		return None, false
	}
	id, ok := p.instantiate(app)
	if ok {
		p.instances[app] = id
	}
	return id, ok
}

func (p *Pool) instantiate(app Idx) (Idx, bool) {
	named, ok := p.FindNamed(p.AppliedName(app))
	if !ok {
		return None, false
	}
	def, ok := p.Resolve(named)
	if !ok {
		return None, false
	}
	params := p.Params(def)
	args := p.AppliedArgs(app)
	if len(params) == 0 || len(params) != len(args) {
		return None, false
	}
	m := make(map[Idx]Idx, len(params))
	for i, param := range params {
		if param == Error {
			continue
		}
		if _, dup := m[param]; !dup {
			m[param] = args[i]
		}
	}

	switch p.Tag(def) {
	case TagStruct:
		layout := p.StructFields(def)
		fields := make([]Field, len(layout))
		for i, f := range layout {
			fields[i] = Field{Name: f.Name, Type: p.Substitute(f.Type, m)}
		}
		return p.StructType(p.StructName(def), fields), true
	case TagEnum:
		layout := p.EnumVariants(def)
		variants := make([]Variant, len(layout))
		for i, v := range layout {
			payload := make([]Idx, len(v.Fields))
			for j, f := range v.Fields {
				payload[j] = p.Substitute(f, m)
			}
			variants[i] = Variant{Name: v.Name, Fields: payload}
		}
		return p.EnumType(p.EnumName(def), variants), true
	}
	return None, false
}

// InstantiateAll builds the instance of every Applied type owned by p and,
// transitively, of the Applied types those instances mention, so that the
// pool can answer Underlying without allocating once frozen.
func (p *Pool) InstantiateAll() {
	p.mustMutate()
	depth := make(map[int]int)
	for i := 0; i < len(p.nodes); i++ {
		if p.nodes[i].Tag != TagApplied || depth[i] > maxInstanceDepth {
			continue
		}
		before := len(p.nodes)
		p.instance(p.base + Idx(slot(i)))
		for j := before; j < len(p.nodes); j++ {
			depth[j] = depth[i] + 1
		}
	}
}
