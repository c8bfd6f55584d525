package types

import (
	"fmt"
	"slices"

	"typecore/internal/source"
)

// Field describes a single field inside a nominal struct type.
type Field struct {
	Name source.StringID
	Type Idx
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name   source.StringID
	Fields []Field
}

// Variant describes one enum variant and its positional payload.
type Variant struct {
	Name   source.StringID
	Fields []Idx
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name     source.StringID
	Variants []Variant
}

// AppliedInfo stores a generic instantiation Name<Args>.
type AppliedInfo struct {
	Name source.StringID
	Args []Idx
}

// StructType interns a struct by name and layout together. Equal layouts
// under different names stay distinct.
func (p *Pool) StructType(name source.StringID, fields []Field) Idx {
	sig := newSig(TagStruct).u32(uint32(name)).u32(slot(len(fields)))
	children := make([]Idx, 0, len(fields))
	for _, f := range fields {
		sig = sig.u32(uint32(f.Name)).u32(uint32(f.Type))
		children = append(children, f.Type)
	}
	return p.internShape(string(sig), func() node {
		s := slot(len(p.structs))
		p.structs = append(p.structs, StructInfo{Name: name, Fields: slices.Clone(fields)})
		return node{Tag: TagStruct, Flags: p.childFlags(children...), Data: s}
	})
}

// EnumType interns an enum by name and variant layout together.
func (p *Pool) EnumType(name source.StringID, variants []Variant) Idx {
	sig := newSig(TagEnum).u32(uint32(name)).u32(slot(len(variants)))
	var children []Idx
	for _, v := range variants {
		sig = sig.u32(uint32(v.Name)).ids(v.Fields)
		children = append(children, v.Fields...)
	}
	return p.internShape(string(sig), func() node {
		s := slot(len(p.enums))
		p.enums = append(p.enums, EnumInfo{Name: name, Variants: cloneVariants(variants)})
		return node{Tag: TagEnum, Flags: p.childFlags(children...), Data: s}
	})
}

// Named interns a by-name reference; its definition is attached later with
// SetResolution, which allows forward references.
func (p *Pool) Named(name source.StringID) Idx {
	key := nodeKey{Tag: TagNamed, A: uint32(name)}
	return p.internFixed(key, func() node {
		return node{Tag: TagNamed, Flags: IsComposite, Data: uint32(name)}
	})
}

// FindNamed returns the Named handle for name without allocating.
func (p *Pool) FindNamed(name source.StringID) (Idx, bool) {
	return p.lookupKey(nodeKey{Tag: TagNamed, A: uint32(name)})
}

// Applied interns the instantiation name<args>.
func (p *Pool) Applied(name source.StringID, args []Idx) Idx {
	sig := string(newSig(TagApplied).u32(uint32(name)).ids(args))
	return p.internShape(sig, func() node {
		s := slot(len(p.applied))
		p.applied = append(p.applied, AppliedInfo{Name: name, Args: slices.Clone(args)})
		return node{Tag: TagApplied, Flags: p.childFlags(args...), Data: s}
	})
}

// SetResolution records that the Named handle named stands for target.
func (p *Pool) SetResolution(named, target Idx) {
	p.mustMutate()
	if tag := p.Tag(named); tag != TagNamed {
		panic(fmt.Sprintf("types: SetResolution on %s", tag))
	}
	if named == target {
		panic("types: Named resolved to itself")
	}
	p.resolutions[named] = target
}

func (p *Pool) resolution(named Idx) (Idx, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if t, ok := cur.resolutions[named]; ok {
			return t, true
		}
	}
	return None, false
}

// Resolve follows the resolution chain of a Named handle to its end. It
// reports false for an unresolved forward reference. A cyclic chain is an
// internal bug and panics.
func (p *Pool) Resolve(named Idx) (Idx, bool) {
	target, ok := p.resolution(named)
	if !ok {
		return None, false
	}
	seen := map[Idx]struct{}{named: {}}
	for p.Tag(target) == TagNamed {
		next, ok := p.resolution(target)
		if !ok {
			break
		}
		if _, dup := seen[target]; dup {
			panic(fmt.Sprintf("types: cyclic resolution through %s", p.Name(p.NamedName(target))))
		}
		seen[target] = struct{}{}
		target = next
	}
	return target, true
}

// Underlying strips Named and Applied indirections down to the nominal or
// structural definition. An Applied type with recorded parameters yields its
// substituted instance. Unresolved references come back unchanged.
func (p *Pool) Underlying(id Idx) Idx {
	for range p.Len() {
		switch p.Tag(id) {
		case TagNamed:
			target, ok := p.Resolve(id)
			if !ok {
				return id
			}
			id = target
		case TagApplied:
			if inst, ok := p.instance(id); ok {
				return inst
			}
			named, ok := p.FindNamed(p.AppliedName(id))
			if !ok {
				return id
			}
			target, ok := p.Resolve(named)
			if !ok {
				return id
			}
			id = target
		default:
			return id
		}
	}
	panic("types: Underlying did not converge")
}

// VariantsOf gives a uniform variant view over Option, Result and enums.
// Option is (None, Some(T)) and Result is (Ok(T), Err(E)).
func (p *Pool) VariantsOf(id Idx) ([]Variant, bool) {
	id = p.Underlying(id)
	switch p.Tag(id) {
	case TagOption:
		return []Variant{
			{Name: p.wk.None},
			{Name: p.wk.Some, Fields: []Idx{p.OptionInner(id)}},
		}, true
	case TagResult:
		ok, err := p.ResultParts(id)
		return []Variant{
			{Name: p.wk.Ok, Fields: []Idx{ok}},
			{Name: p.wk.Err, Fields: []Idx{err}},
		}, true
	case TagEnum:
		return p.EnumVariants(id), true
	default:
		return nil, false
	}
}

// VariantIndex finds a variant by name in the view returned by VariantsOf.
func (p *Pool) VariantIndex(id Idx, name source.StringID) (int, Variant, bool) {
	variants, ok := p.VariantsOf(id)
	if !ok {
		return -1, Variant{}, false
	}
	for i, v := range variants {
		if v.Name == name {
			return i, v, true
		}
	}
	return -1, Variant{}, false
}

func cloneVariants(variants []Variant) []Variant {
	if len(variants) == 0 {
		return nil
	}
	out := make([]Variant, len(variants))
	for i, v := range variants {
		out[i] = Variant{Name: v.Name, Fields: slices.Clone(v.Fields)}
	}
	return out
}
