package types

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"

	"typecore/internal/source"
)

// Pool owns the universe of types of one compilation unit and hands out
// deduplicated handles.
//
// A Pool is not safe for concurrent mutation. After Freeze it may be read
// from many goroutines; each goroutine that needs new types works on its own
// Extend overlay.
type Pool struct {
	parent *Pool
	base   Idx // first handle owned by this pool
	frozen bool

	nodes  []node
	index  map[nodeKey]Idx // fixed-shape signatures
	shapes map[string]Idx  // variable-length signatures

	pairs   []pairInfo
	tuples  [][]Idx
	fns     []FnInfo
	structs []StructInfo
	enums   []EnumInfo
	applied []AppliedInfo
	borrows []BorrowInfo
	schemes []SchemeInfo

	resolutions map[Idx]Idx
	params      map[Idx][]Idx // generic definition -> its parameters
	instances   map[Idx]Idx   // Applied -> substituted definition
	nextVar     uint32

	strings *source.Interner
	wk      wellKnown
}

type nodeKey struct {
	Tag Tag
	A   uint32
	B   uint32
}

type pairInfo struct {
	A Idx
	B Idx
}

// wellKnown holds names the pool itself needs for built-in variant views.
type wellKnown struct {
	None source.StringID
	Some source.StringID
	Ok   source.StringID
	Err  source.StringID
}

// NewPool returns a pool with the primitive range populated. A nil interner
// gets a private one.
func NewPool(strings *source.Interner) *Pool {
	if strings == nil {
		strings = source.NewInterner()
	}
	p := &Pool{
		nodes:       make([]node, FirstDynamic, 64),
		index:       make(map[nodeKey]Idx, 64),
		shapes:      make(map[string]Idx, 16),
		resolutions: make(map[Idx]Idx),
		params:      make(map[Idx][]Idx),
		instances:   make(map[Idx]Idx),
		nextVar:     1,
		strings:     strings,
	}
	for t := TagInt; t <= TagOrdering; t++ {
		p.nodes[t] = node{Tag: t}
	}
	p.nodes[TagError].Flags = HasError
	p.wk = wellKnown{
		None: strings.Intern("None"),
		Some: strings.Intern("Some"),
		Ok:   strings.Intern("Ok"),
		Err:  strings.Intern("Err"),
	}
	return p
}

// Strings exposes the name interner shared by this pool and its overlays.
func (p *Pool) Strings() *source.Interner {
	return p.strings
}

// Intern interns a name. Once the pool chain is frozen only names that are
// already known may be looked up.
func (p *Pool) Intern(name string) source.StringID {
	if p.chainFrozen() {
		id, ok := p.strings.Find(name)
		if !ok {
			panic(fmt.Sprintf("types: intern %q after freeze", name))
		}
		return id
	}
	return p.strings.Intern(name)
}

// Name returns the spelling of an interned name.
func (p *Pool) Name(id source.StringID) string {
	s, ok := p.strings.Lookup(id)
	if !ok {
		return "?"
	}
	return s
}

// Len counts every handle visible from this pool, reserved range included.
func (p *Pool) Len() int {
	return int(p.base) + len(p.nodes)
}

// Freeze makes the pool read-only. Later mutation panics.
func (p *Pool) Freeze() {
	p.frozen = true
}

// Frozen reports whether Freeze was called on this pool.
func (p *Pool) Frozen() bool {
	return p.frozen
}

// Extend returns an overlay that reads p and allocates privately. p must be
// frozen; handles minted by two sibling overlays are not comparable.
func (p *Pool) Extend() *Pool {
	if !p.frozen {
		panic("types: Extend on a pool that is not frozen")
	}
	base, err := safecast.Conv[uint32](p.Len())
	if err != nil {
		panic(fmt.Errorf("types: pool length overflow: %w", err))
	}
	return &Pool{
		parent:      p,
		base:        Idx(base),
		index:       make(map[nodeKey]Idx),
		shapes:      make(map[string]Idx),
		resolutions: make(map[Idx]Idx),
		params:      make(map[Idx][]Idx),
		instances:   make(map[Idx]Idx),
		nextVar:     p.nextVar,
		strings:     p.strings,
		wk:          p.wk,
	}
}

func (p *Pool) chainFrozen() bool {
	for cur := p; cur != nil; cur = cur.parent {
		if cur.frozen {
			return true
		}
	}
	return false
}

// owner returns the pool in the chain that stores id.
func (p *Pool) owner(id Idx) *Pool {
	cur := p
	for id < cur.base {
		cur = cur.parent
	}
	if int(id-cur.base) >= len(cur.nodes) {
		panic(fmt.Sprintf("types: handle %d out of range", id))
	}
	return cur
}

func (p *Pool) node(id Idx) node {
	o := p.owner(id)
	return o.nodes[id-o.base]
}

func (p *Pool) mustMutate() {
	if p.frozen {
		panic("types: mutation of a frozen pool")
	}
}

func (p *Pool) lookupKey(key nodeKey) (Idx, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if id, ok := cur.index[key]; ok {
			return id, true
		}
	}
	return None, false
}

func (p *Pool) lookupShape(sig string) (Idx, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if id, ok := cur.shapes[sig]; ok {
			return id, true
		}
	}
	return None, false
}

// alloc appends a node without consulting the lookup tables.
func (p *Pool) alloc(n node) Idx {
	p.mustMutate()
	off, err := safecast.Conv[uint32](len(p.nodes))
	if err != nil {
		panic(fmt.Errorf("types: len(nodes) overflow: %w", err))
	}
	id := p.base + Idx(off)
	if id < p.base {
		panic("types: handle space exhausted")
	}
	p.nodes = append(p.nodes, n)
	return id
}

// internFixed dedups nodes whose content fits in two words.
func (p *Pool) internFixed(key nodeKey, mk func() node) Idx {
	if id, ok := p.lookupKey(key); ok {
		return id
	}
	id := p.alloc(mk())
	p.index[key] = id
	return id
}

// internShape dedups nodes with variable-length payloads by signature.
func (p *Pool) internShape(sig string, mk func() node) Idx {
	if id, ok := p.lookupShape(sig); ok {
		return id
	}
	id := p.alloc(mk())
	p.shapes[sig] = id
	return id
}

// childFlags folds the derived flags of children into a parent's flags.
func (p *Pool) childFlags(children ...Idx) Flags {
	f := IsComposite
	for _, c := range children {
		f |= p.Flags(c) & (HasError | HasVar)
	}
	return f
}

func slot(n int) uint32 {
	s, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("types: side table overflow: %w", err))
	}
	return s
}

// sigBuf builds signature keys for interning variable-length shapes.
type sigBuf []byte

func newSig(tag Tag) sigBuf {
	return sigBuf{byte(tag)}
}

func (b sigBuf) u32(v uint32) sigBuf {
	return binary.LittleEndian.AppendUint32(b, v)
}

func (b sigBuf) ids(ids []Idx) sigBuf {
	b = b.u32(slot(len(ids)))
	for _, id := range ids {
		b = b.u32(uint32(id))
	}
	return b
}
