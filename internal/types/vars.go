package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// SchemeInfo stores a generalised type: Body with Vars quantified.
type SchemeInfo struct {
	Vars []uint32
	Body Idx
}

// FreshVar allocates a new type variable. Every call yields a distinct
// handle with a strictly larger id.
func (p *Pool) FreshVar() Idx {
	id := p.nextVar
	next, err := safecast.Conv[uint32](uint64(id) + 1)
	if err != nil {
		panic(fmt.Errorf("types: variable id overflow: %w", err))
	}
	idx := p.alloc(node{Tag: TagVar, Flags: IsComposite | HasVar, Data: id})
	p.nextVar = next
	return idx
}

// NextVarID is the id the next FreshVar call will use.
func (p *Pool) NextVarID() uint32 {
	return p.nextVar
}

// Scheme interns forall vars. body.
func (p *Pool) Scheme(vars []uint32, body Idx) Idx {
	if len(vars) == 0 {
		return body
	}
	sig := newSig(TagScheme).u32(slot(len(vars)))
	for _, v := range vars {
		sig = sig.u32(v)
	}
	sig = sig.u32(uint32(body))
	return p.internShape(string(sig), func() node {
		s := slot(len(p.schemes))
		p.schemes = append(p.schemes, SchemeInfo{Vars: slices.Clone(vars), Body: body})
		return node{Tag: TagScheme, Flags: p.childFlags(body), Data: s}
	})
}
