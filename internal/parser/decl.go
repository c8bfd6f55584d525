package parser

import (
	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/source"
	"typecore/internal/token"
)

// FieldDecl is one `name: Type` entry of a struct declaration.
type FieldDecl struct {
	Name source.StringID
	Span source.Span
	Type ast.TypeExprID
}

// VariantDecl is one `Name` or `Name(T, ...)` entry of an enum declaration.
type VariantDecl struct {
	Name   source.StringID
	Span   source.Span
	Fields []ast.TypeExprID
}

// ParseName parses file as a single identifier, as used for declaration
// names and generic parameters.
func ParseName(file *source.File, arenas *ast.Builder, opts Options) (source.StringID, source.Span, bool) {
	p := newParser(file, arenas, opts)
	name, sp, ok := p.parseIdent(diag.SynUnexpectedToken, "identifier")
	if !ok || !p.finish() {
		return source.NoStringID, sp, false
	}
	return name, sp, true
}

// ParseField parses file as `name: Type`.
func ParseField(file *source.File, arenas *ast.Builder, opts Options) (FieldDecl, bool) {
	p := newParser(file, arenas, opts)
	name, sp, ok := p.parseIdent(diag.SynUnexpectedToken, "field name")
	if !ok {
		return FieldDecl{}, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after field name"); !ok {
		return FieldDecl{}, false
	}
	ty, ok := p.parseType()
	if !ok || !p.finish() {
		return FieldDecl{}, false
	}
	return FieldDecl{Name: name, Span: sp, Type: ty}, true
}

// ParseVariant parses file as `Name` or `Name(T, ...)`. `Name()` is the same
// as a bare `Name`.
func ParseVariant(file *source.File, arenas *ast.Builder, opts Options) (VariantDecl, bool) {
	p := newParser(file, arenas, opts)
	name, sp, ok := p.parseIdent(diag.SynUnexpectedToken, "variant name")
	if !ok {
		return VariantDecl{}, false
	}
	decl := VariantDecl{Name: name, Span: sp}
	if p.at(token.LParen) {
		open := p.advance()
		fields, ok := p.parseTypeList(token.RParen)
		if !ok {
			return VariantDecl{}, false
		}
		if _, ok := p.expectClose(token.RParen, open); !ok {
			return VariantDecl{}, false
		}
		decl.Fields = fields
	}
	if !p.finish() {
		return VariantDecl{}, false
	}
	return decl, true
}
