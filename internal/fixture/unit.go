// Package fixture loads unit files: TOML documents that declare nominal
// types and aliases, unification queries and match expressions, each
// written in surface syntax and parsed by internal/parser.
package fixture

import (
	"typecore/internal/ast"
	"typecore/internal/parser"
	"typecore/internal/source"
	"typecore/internal/unify"
)

// Unit is one parsed unit file. Every fragment is already parsed into the
// arenas of Syntax; spans point into the unit file itself where the
// fragment could be located, into a virtual file otherwise.
type Unit struct {
	Path   string
	File   source.FileID
	Name   string
	Syntax *ast.Builder
	Broken bool // a fragment failed to parse

	Structs []StructDecl
	Enums   []EnumDecl
	Aliases []AliasDecl
	Groups  []UnifyGroup
	Matches []Match
}

// Param is a declared identifier: a generic parameter or a unification
// variable.
type Param struct {
	Name source.StringID
	Span source.Span
}

type StructDecl struct {
	Name   source.StringID
	Span   source.Span
	Params []Param
	Fields []parser.FieldDecl
}

type EnumDecl struct {
	Name     source.StringID
	Span     source.Span
	Params   []Param
	Variants []parser.VariantDecl
}

type AliasDecl struct {
	Name source.StringID
	Span source.Span
	Type ast.TypeExprID
}

// UnifyGroup is a sequence of unification queries sharing one substitution.
// Vars are fresh type variables visible to every case of the group.
type UnifyGroup struct {
	Name  string
	Span  source.Span
	Vars  []Param
	Cases []UnifyCase
}

// UnifyCase is `left ~ right`, optionally with the expected unified type or
// the expected kind of failure.
type UnifyCase struct {
	Span      source.Span
	Left      ast.TypeExprID
	Right     ast.TypeExprID
	Expect    ast.TypeExprID // NoTypeExprID when not given
	WantError bool
	ErrorKind unify.ErrorKind
}

// Match is one match expression: scrutinee types, arms and optional
// expectations about the compiled tree.
type Match struct {
	Name        string
	Span        source.Span
	Scrutinees  []ast.TypeExprID
	Arms        []Arm
	Exhaustive  *bool
	Unreachable []int
	Runs        []Run
}

type Arm struct {
	Span     source.Span
	Patterns []ast.PatID
	Guard    ast.ExprID
}

// Run evaluates the compiled tree on concrete values. Values are written in
// pattern syntax. Guards of the arms listed in Reject evaluate to false,
// all others to true. Arm is the expected arm, -1 for no match.
type Run struct {
	Span   source.Span
	Values []ast.PatID
	Reject []int
	Arm    *int
}

// GuardArm maps a guard to the arm that owns it.
func (m *Match) GuardArm(cond ast.ExprID) (int, bool) {
	for i, a := range m.Arms {
		if a.Guard.IsValid() && a.Guard == cond {
			return i, true
		}
	}
	return -1, false
}

// Counts summarises a unit for progress output.
func (u *Unit) Counts() (decls, queries, matches int) {
	decls = len(u.Structs) + len(u.Enums) + len(u.Aliases)
	for _, g := range u.Groups {
		queries += len(g.Cases)
	}
	return decls, queries, len(u.Matches)
}
