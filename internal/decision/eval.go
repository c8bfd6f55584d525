package decision

import (
	"errors"
	"fmt"

	"typecore/internal/ast"
	"typecore/internal/source"
)

// ErrNoMatch is returned by Run when evaluation reaches a Fail node. It is a
// failure of the matched program, not of the compiler.
var ErrNoMatch = errors.New("no match arm applies")

// ValueKind discriminates runtime values seen by the evaluator.
type ValueKind uint8

const (
	ValInt ValueKind = iota + 1
	ValBool
	ValChar
	ValStr
	ValVariant
	ValTuple
	ValStruct
	ValList
)

// Value is the evaluator's model of a runtime value. Fields holds the
// variant payload, tuple elements or struct fields in layout order; Elems
// holds list elements.
type Value struct {
	Kind    ValueKind
	Int     int64
	Bool    bool
	Char    rune
	Str     string
	Variant int
	Fields  []Value
	Elems   []Value
}

func IntVal(v int64) Value { return Value{Kind: ValInt, Int: v} }
func BoolVal(v bool) Value { return Value{Kind: ValBool, Bool: v} }
func CharVal(v rune) Value { return Value{Kind: ValChar, Char: v} }
func StrVal(v string) Value { return Value{Kind: ValStr, Str: v} }
func TupleVal(elems ...Value) Value { return Value{Kind: ValTuple, Fields: elems} }
func ListVal(elems ...Value) Value { return Value{Kind: ValList, Elems: elems} }

func VariantVal(index int, payload ...Value) Value {
	return Value{Kind: ValVariant, Variant: index, Fields: payload}
}

func StructVal(fields ...Value) Value {
	return Value{Kind: ValStruct, Fields: fields}
}

// Bound is a binding resolved against concrete values.
type Bound struct {
	Name  source.StringID
	Value Value
}

// Match is the outcome of a successful Run.
type Match struct {
	Arm      int
	Bindings []Bound
}

// GuardFunc evaluates a guard with the arm's bindings in scope.
type GuardFunc func(cond ast.ExprID, bindings []Bound) bool

// Run walks tree for the given scrutinee values. A nil guard treats every
// guard as false.
func Run(tree *Node, scrutinees []Value, guard GuardFunc) (Match, error) {
	n := tree
	for n != nil {
		switch n.Kind {
		case NodeFail:
			return Match{}, ErrNoMatch
		case NodeLeaf:
			bound, err := resolveBindings(n.Bindings, scrutinees)
			if err != nil {
				return Match{}, err
			}
			return Match{Arm: n.Arm, Bindings: bound}, nil
		case NodeGuard:
			bound, err := resolveBindings(n.Bindings, scrutinees)
			if err != nil {
				return Match{}, err
			}
			if guard != nil && guard(n.Condition, bound) {
				return Match{Arm: n.Arm, Bindings: bound}, nil
			}
			n = n.Fallback
		case NodeSwitch:
			v, err := Project(scrutinees, n.Path)
			if err != nil {
				return Match{}, err
			}
			next, err := choose(n, v)
			if err != nil {
				return Match{}, err
			}
			n = next
		default:
			return Match{}, fmt.Errorf("decision: unknown node kind %d", n.Kind)
		}
	}
	return Match{}, errors.New("decision: tree ended without a terminal node")
}

func choose(n *Node, v Value) (*Node, error) {
	for _, e := range n.Edges {
		ok, err := matches(n.Test, e.Outcome, v)
		if err != nil {
			return nil, fmt.Errorf("%s at %s: %w", n.Test, n.Path, err)
		}
		if ok {
			return e.Node, nil
		}
	}
	if n.Default == nil {
		return nil, fmt.Errorf("decision: %s at %s has no edge for the value", n.Test, n.Path)
	}
	return n.Default, nil
}

func matches(test TestKind, o Outcome, v Value) (bool, error) {
	want := func(k ValueKind) error {
		if v.Kind != k {
			return fmt.Errorf("value kind %d does not fit the test", v.Kind)
		}
		return nil
	}
	switch test {
	case TestIntEq:
		if err := want(ValInt); err != nil {
			return false, err
		}
		return v.Int == o.Lit.Int, nil
	case TestBoolEq:
		if err := want(ValBool); err != nil {
			return false, err
		}
		return v.Bool == o.Lit.Bool, nil
	case TestCharEq:
		if err := want(ValChar); err != nil {
			return false, err
		}
		return v.Char == o.Lit.Char, nil
	case TestStrEq:
		if err := want(ValStr); err != nil {
			return false, err
		}
		return v.Str == o.Lit.Str, nil
	case TestVariantTag:
		if err := want(ValVariant); err != nil {
			return false, err
		}
		return v.Variant == o.Variant, nil
	case TestListShape:
		if err := want(ValList); err != nil {
			return false, err
		}
		return (len(v.Elems) > 0) == (o.Variant == ShapeNonEmpty), nil
	}
	return false, fmt.Errorf("unexpected edge on %s", test)
}

// Project follows path into the scrutinee values.
func Project(scrutinees []Value, path Path) (Value, error) {
	if path.Root < 0 || path.Root >= len(scrutinees) {
		return Value{}, fmt.Errorf("decision: path %s: no scrutinee %d", path, path.Root)
	}
	v := scrutinees[path.Root]
	for _, s := range path.Steps {
		switch s.Kind {
		case StepField, StepElem, StepPayload:
			if s.Index >= len(v.Fields) {
				return Value{}, fmt.Errorf("decision: path %s: index %d out of range", path, s.Index)
			}
			v = v.Fields[s.Index]
		case StepHead:
			if v.Kind != ValList || len(v.Elems) == 0 {
				return Value{}, fmt.Errorf("decision: path %s: head of an empty list", path)
			}
			v = v.Elems[0]
		case StepTail:
			if v.Kind != ValList || len(v.Elems) == 0 {
				return Value{}, fmt.Errorf("decision: path %s: tail of an empty list", path)
			}
			v = Value{Kind: ValList, Elems: v.Elems[1:]}
		default:
			return Value{}, fmt.Errorf("decision: path %s: unknown step", path)
		}
	}
	return v, nil
}

func resolveBindings(bindings []Binding, scrutinees []Value) ([]Bound, error) {
	if len(bindings) == 0 {
		return nil, nil
	}
	out := make([]Bound, len(bindings))
	for i, b := range bindings {
		v, err := Project(scrutinees, b.Path)
		if err != nil {
			return nil, err
		}
		out[i] = Bound{Name: b.Name, Value: v}
	}
	return out, nil
}
