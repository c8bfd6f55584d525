package ast

import (
	"slices"

	"typecore/internal/source"
)

// TypeExprKind enumerates the syntactic forms of a written type.
type TypeExprKind uint8

const (
	TypeExprName  TypeExprKind = iota // Int, Point, List<Int>
	TypeExprTuple                     // (), (Int, Bool)
	TypeExprFn                        // fn(Int) -> Bool
	TypeExprRef                       // &'a T
)

// TypeExpr is a type as written, before any name is resolved. Names stay
// unresolved so declarations may refer to each other in any order.
type TypeExpr struct {
	Kind TypeExprKind
	Span source.Span

	// Name: the type name, Ref: the lifetime tag (NoStringID when elided)
	Name source.StringID
	// Name: generic arguments, Tuple: elements, Fn: parameters, Ref: the
	// referenced type as the single element
	Args   []TypeExprID
	Result TypeExprID
}

// TypeExprs owns the written types of one fixture.
type TypeExprs struct {
	Arena *Arena[TypeExpr]
}

func NewTypeExprs(capHint uint) *TypeExprs {
	return &TypeExprs{Arena: NewArena[TypeExpr](capHint)}
}

func (t *TypeExprs) new(te TypeExpr) TypeExprID {
	return TypeExprID(t.Arena.Allocate(te))
}

// Get returns the node for id, nil for NoTypeExprID.
func (t *TypeExprs) Get(id TypeExprID) *TypeExpr {
	if !id.IsValid() {
		return nil
	}
	return t.Arena.Get(uint32(id))
}

func (t *TypeExprs) NewName(name source.StringID, args []TypeExprID, span source.Span) TypeExprID {
	return t.new(TypeExpr{Kind: TypeExprName, Span: span, Name: name, Args: slices.Clone(args)})
}

func (t *TypeExprs) NewTuple(elems []TypeExprID, span source.Span) TypeExprID {
	return t.new(TypeExpr{Kind: TypeExprTuple, Span: span, Args: slices.Clone(elems)})
}

func (t *TypeExprs) NewFn(params []TypeExprID, result TypeExprID, span source.Span) TypeExprID {
	return t.new(TypeExpr{Kind: TypeExprFn, Span: span, Args: slices.Clone(params), Result: result})
}

func (t *TypeExprs) NewRef(lifetime source.StringID, inner TypeExprID, span source.Span) TypeExprID {
	return t.new(TypeExpr{Kind: TypeExprRef, Span: span, Name: lifetime, Args: []TypeExprID{inner}})
}
