package types

import (
	"fmt"
	"slices"

	"typecore/internal/source"
)

// Tag returns the discriminant of id.
func (p *Pool) Tag(id Idx) Tag {
	return p.node(id).Tag
}

// Data returns the raw payload word of id.
func (p *Pool) Data(id Idx) uint32 {
	return p.node(id).Data
}

// Flags returns the derived flags of id.
func (p *Pool) Flags(id Idx) Flags {
	return p.node(id).Flags
}

// expect panics when id does not carry tag; mismatched accessors are
// contract violations.
func (p *Pool) expect(id Idx, tag Tag, accessor string) (*Pool, node) {
	o := p.owner(id)
	n := o.nodes[id-o.base]
	if n.Tag != tag {
		panic(fmt.Sprintf("types: %s on %s", accessor, n.Tag))
	}
	return o, n
}

// ListElem returns the element type of a List.
func (p *Pool) ListElem(id Idx) Idx {
	_, n := p.expect(id, TagList, "ListElem")
	return Idx(n.Data)
}

// OptionInner returns the wrapped type of an Option.
func (p *Pool) OptionInner(id Idx) Idx {
	_, n := p.expect(id, TagOption, "OptionInner")
	return Idx(n.Data)
}

// SetElem returns the element type of a Set.
func (p *Pool) SetElem(id Idx) Idx {
	_, n := p.expect(id, TagSet, "SetElem")
	return Idx(n.Data)
}

// RangeElem returns the bound type of a Range.
func (p *Pool) RangeElem(id Idx) Idx {
	_, n := p.expect(id, TagRange, "RangeElem")
	return Idx(n.Data)
}

// ResultParts returns the Ok and Err types of a Result.
func (p *Pool) ResultParts(id Idx) (ok, err Idx) {
	o, n := p.expect(id, TagResult, "ResultParts")
	pr := o.pairs[n.Data]
	return pr.A, pr.B
}

// MapParts returns the key and value types of a Map.
func (p *Pool) MapParts(id Idx) (key, value Idx) {
	o, n := p.expect(id, TagMap, "MapParts")
	pr := o.pairs[n.Data]
	return pr.A, pr.B
}

// TupleElems returns a copy of the element types of a tuple.
func (p *Pool) TupleElems(id Idx) []Idx {
	o, n := p.expect(id, TagTuple, "TupleElems")
	return slices.Clone(o.tuples[n.Data])
}

// FunctionParams returns a copy of the parameter types of a function.
func (p *Pool) FunctionParams(id Idx) []Idx {
	o, n := p.expect(id, TagFunction, "FunctionParams")
	return slices.Clone(o.fns[n.Data].Params)
}

// FunctionResult returns the result type of a function.
func (p *Pool) FunctionResult(id Idx) Idx {
	o, n := p.expect(id, TagFunction, "FunctionResult")
	return o.fns[n.Data].Result
}

// StructName returns the declared name of a struct.
func (p *Pool) StructName(id Idx) source.StringID {
	o, n := p.expect(id, TagStruct, "StructName")
	return o.structs[n.Data].Name
}

// StructFields returns a copy of the struct layout in declaration order.
func (p *Pool) StructFields(id Idx) []Field {
	o, n := p.expect(id, TagStruct, "StructFields")
	return slices.Clone(o.structs[n.Data].Fields)
}

// EnumName returns the declared name of an enum.
func (p *Pool) EnumName(id Idx) source.StringID {
	o, n := p.expect(id, TagEnum, "EnumName")
	return o.enums[n.Data].Name
}

// EnumVariants returns a copy of the enum variants in declaration order.
func (p *Pool) EnumVariants(id Idx) []Variant {
	o, n := p.expect(id, TagEnum, "EnumVariants")
	return cloneVariants(o.enums[n.Data].Variants)
}

// NamedName returns the name a Named reference spells.
func (p *Pool) NamedName(id Idx) source.StringID {
	_, n := p.expect(id, TagNamed, "NamedName")
	return source.StringID(n.Data)
}

// AppliedName returns the generic name of an Applied type.
func (p *Pool) AppliedName(id Idx) source.StringID {
	o, n := p.expect(id, TagApplied, "AppliedName")
	return o.applied[n.Data].Name
}

// AppliedArgs returns a copy of the type arguments of an Applied type.
func (p *Pool) AppliedArgs(id Idx) []Idx {
	o, n := p.expect(id, TagApplied, "AppliedArgs")
	return slices.Clone(o.applied[n.Data].Args)
}

// BorrowedParts returns the borrowed type and its lifetime.
func (p *Pool) BorrowedParts(id Idx) (inner Idx, lifetime source.StringID) {
	o, n := p.expect(id, TagBorrowed, "BorrowedParts")
	b := o.borrows[n.Data]
	return b.Inner, b.Lifetime
}

// SchemeVars returns a copy of the variables a scheme quantifies.
func (p *Pool) SchemeVars(id Idx) []uint32 {
	o, n := p.expect(id, TagScheme, "SchemeVars")
	return slices.Clone(o.schemes[n.Data].Vars)
}

// SchemeBody returns the quantified body of a scheme.
func (p *Pool) SchemeBody(id Idx) Idx {
	o, n := p.expect(id, TagScheme, "SchemeBody")
	return o.schemes[n.Data].Body
}

// VarID returns the identifier of a type variable.
func (p *Pool) VarID(id Idx) uint32 {
	_, n := p.expect(id, TagVar, "VarID")
	return n.Data
}

// Children lists the immediate structural children of id in a fixed order.
// Nominal definitions and Named references have none: their contents are
// reached through the definition, not the handle.
func (p *Pool) Children(id Idx) []Idx {
	switch tag := p.Tag(id); tag {
	case TagNone, TagInt, TagFloat, TagBool, TagChar, TagByte, TagStr, TagUnit,
		TagNever, TagError, TagDuration, TagSize, TagOrdering:
		return nil
	case TagOption, TagList, TagSet, TagRange:
		return []Idx{Idx(p.Data(id))}
	case TagResult:
		ok, err := p.ResultParts(id)
		return []Idx{ok, err}
	case TagMap:
		k, v := p.MapParts(id)
		return []Idx{k, v}
	case TagTuple:
		return p.TupleElems(id)
	case TagFunction:
		return append(slices.Clone(p.FunctionParams(id)), p.FunctionResult(id))
	case TagApplied:
		return p.AppliedArgs(id)
	case TagBorrowed:
		inner, _ := p.BorrowedParts(id)
		return []Idx{inner}
	case TagScheme:
		return []Idx{p.SchemeBody(id)}
	case TagStruct, TagEnum, TagNamed, TagVar:
		return nil
	default:
		panic(fmt.Sprintf("types: Children on %s", tag))
	}
}
