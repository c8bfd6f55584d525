package types

import "fmt"

// Idx is a stable handle to a type stored in a Pool.
type Idx uint32

// Reserved handles. The value of each equals its Tag, so primitive checks are
// plain integer compares and never touch pool storage.
const (
	None Idx = iota
	Int
	Float
	Bool
	Char
	Byte
	Str
	Unit
	Never
	Error
	Duration
	Size
	Ordering
)

// FirstDynamic is the first handle a Pool hands out; everything below it is
// reserved for primitives.
const FirstDynamic Idx = 16

// ByteMax is the largest value of type Byte; its range starts at zero.
const ByteMax = 255

// IsReserved reports whether id lies in the fixed primitive range.
func (id Idx) IsReserved() bool { return id < FirstDynamic }

// Tag discriminates the shape of a type node.
type Tag uint8

const (
	TagNone Tag = iota
	TagInt
	TagFloat
	TagBool
	TagChar
	TagByte
	TagStr
	TagUnit
	TagNever
	TagError
	TagDuration
	TagSize
	TagOrdering

	TagOption
	TagResult
	TagList
	TagMap
	TagSet
	TagTuple
	TagFunction
	TagStruct
	TagEnum
	TagNamed
	TagApplied
	TagVar
	TagScheme
	TagBorrowed
	TagRange
)

// IsPrimitive reports whether t names one of the reserved primitive types.
func (t Tag) IsPrimitive() bool {
	return t >= TagInt && t <= TagOrdering
}

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagInt:
		return "Int"
	case TagFloat:
		return "Float"
	case TagBool:
		return "Bool"
	case TagChar:
		return "Char"
	case TagByte:
		return "Byte"
	case TagStr:
		return "Str"
	case TagUnit:
		return "Unit"
	case TagNever:
		return "Never"
	case TagError:
		return "Error"
	case TagDuration:
		return "Duration"
	case TagSize:
		return "Size"
	case TagOrdering:
		return "Ordering"
	case TagOption:
		return "Option"
	case TagResult:
		return "Result"
	case TagList:
		return "List"
	case TagMap:
		return "Map"
	case TagSet:
		return "Set"
	case TagTuple:
		return "Tuple"
	case TagFunction:
		return "Function"
	case TagStruct:
		return "Struct"
	case TagEnum:
		return "Enum"
	case TagNamed:
		return "Named"
	case TagApplied:
		return "Applied"
	case TagVar:
		return "Var"
	case TagScheme:
		return "Scheme"
	case TagBorrowed:
		return "Borrowed"
	case TagRange:
		return "Range"
	default:
		return fmt.Sprintf("Tag(%d)", t)
	}
}

// Flags are derived at construction time from a node's immediate children.
type Flags uint8

const (
	// IsComposite is set on every non-primitive node.
	IsComposite Flags = 1 << iota
	// HasError is set when an Error type occurs anywhere inside the node.
	HasError
	// HasVar is set when a type variable occurs anywhere inside the node.
	HasVar
)

// Has reports whether all bits of mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// node is the compact pool record. Data holds the inner Idx for simple
// wraps, the variable id for Var, the name for Named, and a side-table slot
// for every multi-field shape.
type node struct {
	Tag   Tag
	Flags Flags
	Data  uint32
}
