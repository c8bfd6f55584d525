package decision

import (
	"typecore/internal/ast"
	"typecore/internal/source"
	"typecore/internal/types"
)

// NodeKind discriminates decision tree nodes.
type NodeKind uint8

const (
	NodeFail NodeKind = iota
	NodeLeaf
	NodeGuard
	NodeSwitch
)

func (k NodeKind) String() string {
	switch k {
	case NodeFail:
		return "fail"
	case NodeLeaf:
		return "leaf"
	case NodeGuard:
		return "guard"
	case NodeSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

// TestKind is the discrete test a Switch performs.
type TestKind uint8

const (
	TestIntEq TestKind = iota + 1
	TestBoolEq
	TestCharEq
	TestStrEq
	TestVariantTag
	// TestDestructure never fails: it only opens a struct or tuple, so the
	// switch has a Default and no edges.
	TestDestructure
	TestListShape
)

func (k TestKind) String() string {
	switch k {
	case TestIntEq:
		return "IntEq"
	case TestBoolEq:
		return "BoolEq"
	case TestCharEq:
		return "CharEq"
	case TestStrEq:
		return "StrEq"
	case TestVariantTag:
		return "VariantTag"
	case TestDestructure:
		return "Destructure"
	case TestListShape:
		return "ListShape"
	default:
		return "unknown"
	}
}

// ListShape outcomes.
const (
	ShapeEmpty    = 0
	ShapeNonEmpty = 1
)

// Binding binds Name to the value at Path when the node is reached.
type Binding struct {
	Name source.StringID `msgpack:"n"`
	Path Path            `msgpack:"p"`
}

// Outcome labels an edge. Literal tests use Lit; VariantTag uses Variant
// (the index in types.Pool.VariantsOf order) and Name; ListShape uses
// Variant with ShapeEmpty or ShapeNonEmpty.
type Outcome struct {
	Lit     ast.Lit         `msgpack:"l,omitempty"`
	Variant int             `msgpack:"v,omitempty"`
	Name    source.StringID `msgpack:"m,omitempty"`
}

// Edge is one explicit outcome of a Switch.
type Edge struct {
	Outcome Outcome `msgpack:"o"`
	Node    *Node   `msgpack:"t"`
}

// Node is a decision tree node.
//
//	Fail:   no arm matches
//	Leaf:   Arm matches unconditionally, with Bindings
//	Guard:  Arm matches if Condition holds, otherwise Fallback decides
//	Switch: branch on Test applied to the value at Path
type Node struct {
	Kind NodeKind `msgpack:"k"`

	Arm       int        `msgpack:"a,omitempty"`
	Bindings  []Binding  `msgpack:"b,omitempty"`
	Condition ast.ExprID `msgpack:"c,omitempty"`
	Fallback  *Node      `msgpack:"f,omitempty"`

	Test    TestKind  `msgpack:"x,omitempty"`
	Path    Path      `msgpack:"p"`
	Type    types.Idx `msgpack:"y,omitempty"`
	Edges   []Edge    `msgpack:"e,omitempty"`
	Default *Node     `msgpack:"d,omitempty"`
}

// Walk visits every node reachable from n in preorder: guard fallback,
// then edges in order, then default.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	switch n.Kind {
	case NodeGuard:
		Walk(n.Fallback, visit)
	case NodeSwitch:
		for _, e := range n.Edges {
			Walk(e.Node, visit)
		}
		Walk(n.Default, visit)
	}
}

// Size counts the nodes of the tree.
func Size(n *Node) int {
	count := 0
	Walk(n, func(*Node) { count++ })
	return count
}
