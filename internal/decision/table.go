package decision

import (
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the encoded Table format changes
const tableSchemaVersion uint16 = 1

// TreeID keys a tree inside a Table. Zero is never handed out.
type TreeID uint32

const NoTreeID TreeID = 0

// Entry is one compiled match.
type Entry struct {
	ID      TreeID   `msgpack:"id"`
	Name    string   `msgpack:"name"`
	Arms    int      `msgpack:"arms"`
	Columns []Column `msgpack:"cols"`
	Root    *Node    `msgpack:"root"`
}

// Table holds the decision trees of one compilation unit, handed to the
// evaluator or to code generation.
type Table struct {
	Schema  uint16   `msgpack:"schema"`
	Entries []*Entry `msgpack:"entries"`
}

func NewTable() *Table {
	return &Table{Schema: tableSchemaVersion}
}

// Add stores a tree and returns its id.
func (t *Table) Add(name string, arms int, cols []Column, root *Node) TreeID {
	n, err := safecast.Conv[uint32](len(t.Entries) + 1)
	if err != nil {
		panic(fmt.Errorf("decision: table overflow: %w", err))
	}
	id := TreeID(n)
	t.Entries = append(t.Entries, &Entry{ID: id, Name: name, Arms: arms, Columns: cols, Root: root})
	return id
}

// Get returns the entry for id.
func (t *Table) Get(id TreeID) (*Entry, bool) {
	if id == NoTreeID || int(id) > len(t.Entries) {
		return nil, false
	}
	return t.Entries[id-1], true
}

// Lookup finds an entry by name.
func (t *Table) Lookup(name string) (*Entry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func (t *Table) Len() int {
	return len(t.Entries)
}

// EncodeTable writes t as msgpack.
func EncodeTable(w io.Writer, t *Table) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode decision table: %w", err)
	}
	return nil
}

// DecodeTable reads a table written by EncodeTable.
func DecodeTable(r io.Reader) (*Table, error) {
	var t Table
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode decision table: %w", err)
	}
	if t.Schema != tableSchemaVersion {
		return nil, fmt.Errorf("decode decision table: schema %d, want %d", t.Schema, tableSchemaVersion)
	}
	for i, e := range t.Entries {
		if e == nil || int(e.ID) != i+1 {
			return nil, fmt.Errorf("decode decision table: entry %d out of order", i)
		}
	}
	return &t, nil
}
