package types

import (
	"fmt"
	"slices"

	"typecore/internal/source"
)

// FnInfo stores metadata for function types.
type FnInfo struct {
	Params []Idx
	Result Idx
}

// BorrowInfo stores a borrowed view of Inner tagged with an opaque lifetime.
type BorrowInfo struct {
	Inner    Idx
	Lifetime source.StringID
}

// Primitive returns the reserved handle for a primitive tag.
func (p *Pool) Primitive(tag Tag) Idx {
	if !tag.IsPrimitive() {
		panic(fmt.Sprintf("types: Primitive(%s)", tag))
	}
	return Idx(tag)
}

func (p *Pool) wrap(tag Tag, inner Idx) Idx {
	key := nodeKey{Tag: tag, A: uint32(inner)}
	return p.internFixed(key, func() node {
		return node{Tag: tag, Flags: p.childFlags(inner), Data: uint32(inner)}
	})
}

// List interns List<elem>.
func (p *Pool) List(elem Idx) Idx { return p.wrap(TagList, elem) }

// Option interns Option<inner>.
func (p *Pool) Option(inner Idx) Idx { return p.wrap(TagOption, inner) }

// Set interns Set<elem>.
func (p *Pool) Set(elem Idx) Idx { return p.wrap(TagSet, elem) }

// Range interns Range<elem>.
func (p *Pool) Range(elem Idx) Idx { return p.wrap(TagRange, elem) }

func (p *Pool) pair(tag Tag, a, b Idx) Idx {
	key := nodeKey{Tag: tag, A: uint32(a), B: uint32(b)}
	return p.internFixed(key, func() node {
		s := slot(len(p.pairs))
		p.pairs = append(p.pairs, pairInfo{A: a, B: b})
		return node{Tag: tag, Flags: p.childFlags(a, b), Data: s}
	})
}

// Result interns Result<ok, err>.
func (p *Pool) Result(ok, err Idx) Idx { return p.pair(TagResult, ok, err) }

// Map interns Map<key, value>.
func (p *Pool) Map(key, value Idx) Idx { return p.pair(TagMap, key, value) }

// Tuple interns a tuple. The empty tuple is Unit itself.
func (p *Pool) Tuple(elems []Idx) Idx {
	if len(elems) == 0 {
		return Unit
	}
	sig := string(newSig(TagTuple).ids(elems))
	return p.internShape(sig, func() node {
		s := slot(len(p.tuples))
		p.tuples = append(p.tuples, slices.Clone(elems))
		return node{Tag: TagTuple, Flags: p.childFlags(elems...), Data: s}
	})
}

// Function interns fn(params) -> result.
func (p *Pool) Function(params []Idx, result Idx) Idx {
	sig := string(newSig(TagFunction).ids(params).u32(uint32(result)))
	return p.internShape(sig, func() node {
		s := slot(len(p.fns))
		p.fns = append(p.fns, FnInfo{Params: slices.Clone(params), Result: result})
		flags := p.childFlags(params...) | p.childFlags(result)
		return node{Tag: TagFunction, Flags: flags, Data: s}
	})
}

// Borrowed interns a borrow of inner. The lifetime is an opaque tag and
// NoStringID stands for an elided lifetime.
func (p *Pool) Borrowed(inner Idx, lifetime source.StringID) Idx {
	key := nodeKey{Tag: TagBorrowed, A: uint32(inner), B: uint32(lifetime)}
	return p.internFixed(key, func() node {
		s := slot(len(p.borrows))
		p.borrows = append(p.borrows, BorrowInfo{Inner: inner, Lifetime: lifetime})
		return node{Tag: TagBorrowed, Flags: p.childFlags(inner), Data: s}
	})
}
