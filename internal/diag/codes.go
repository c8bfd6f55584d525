package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1004
	LexBadChar            Code = 1006

	// Разбор фрагментов типов и паттернов
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynUnclosedDelimiter Code = 2002
	SynExpectType        Code = 2202
	SynExpectPattern     Code = 2203

	// Типы
	TypeInfo              Code = 3000
	TypeMismatch          Code = 3015
	TypeOccursCheck       Code = 3016
	TypeArityMismatch     Code = 3017
	TypeUnresolvedName    Code = 3018
	TypeDuplicateDecl     Code = 3019
	TypeUnresolvedForward Code = 3020
	TypeAliasCycle        Code = 3021

	// Паттерны
	PatInfo           Code = 3050
	PatUnknownVariant Code = 3051
	PatArity          Code = 3052
	PatNonExhaustive  Code = 3053
	PatUnreachableArm Code = 3054
	PatLiteralType    Code = 3055
	PatUnknownField   Code = 3056
	PatShapeMismatch  Code = 3057
	PatDuplicateField Code = 3058

	// Фикстуры и проект
	PrjInfo               Code = 5000
	PrjBadFixture         Code = 5001
	PrjBadConfig          Code = 5002
	FixtureUnresolvedType Code = 5003
	FixtureExpectation    Code = 5004

	// I/O
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001

	// Наблюдаемость
	ObsInfo    Code = 9000
	ObsTimings Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	LexInfo:               "Lexical information",
	LexUnknownChar:        "Unknown character",
	LexUnterminatedString: "Unterminated string",
	LexBadNumber:          "Bad number",
	LexBadChar:            "Bad character literal",
	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynUnclosedDelimiter:  "Unclosed delimiter",
	SynExpectType:         "Expected type",
	SynExpectPattern:      "Expected pattern",
	TypeInfo:              "Type information",
	TypeMismatch:          "Type mismatch",
	TypeOccursCheck:       "Infinite type",
	TypeArityMismatch:     "Arity mismatch",
	TypeUnresolvedName:    "Unresolved type name",
	TypeDuplicateDecl:     "Duplicate type declaration",
	TypeUnresolvedForward: "Unresolved forward reference",
	TypeAliasCycle:        "Cyclic type alias",
	PatInfo:               "Pattern information",
	PatUnknownVariant:     "Unknown variant",
	PatArity:              "Wrong number of sub-patterns",
	PatNonExhaustive:      "non-exhaustive pattern match",
	PatUnreachableArm:     "unreachable match arm",
	PatLiteralType:        "Literal does not fit the scrutinee type",
	PatUnknownField:       "Unknown struct field",
	PatShapeMismatch:      "Pattern shape does not fit the scrutinee type",
	PatDuplicateField:     "Field matched twice",
	PrjInfo:               "Project information",
	PrjBadFixture:         "Malformed unit file",
	PrjBadConfig:          "Malformed configuration",
	FixtureUnresolvedType: "Unknown type in unit file",
	FixtureExpectation:    "Expectation not met",
	IOInfo:                "I/O information",
	IOLoadFileError:       "Failed to load file",
	ObsInfo:               "Observability information",
	ObsTimings:            "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 3050:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 3050 && ic < 4000:
		return fmt.Sprintf("PAT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
