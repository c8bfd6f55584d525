package ast

type (
	PatID      uint32
	ExprID     uint32
	TypeExprID uint32
)

const (
	NoPatID      PatID      = 0
	NoExprID     ExprID     = 0
	NoTypeExprID TypeExprID = 0
)

func (id PatID) IsValid() bool      { return id != NoPatID }
func (id ExprID) IsValid() bool     { return id != NoExprID }
func (id TypeExprID) IsValid() bool { return id != NoTypeExprID }
