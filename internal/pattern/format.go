package pattern

import (
	"strconv"
	"strings"

	"typecore/internal/ast"
	"typecore/internal/types"
)

// Format renders f in source syntax, e.g. `Some(_)`, `[_, ..]` or
// `Point { x: 0, .. }`.
func Format(pool *types.Pool, f Flat) string {
	var sb strings.Builder
	write(&sb, pool, f)
	return sb.String()
}

// FormatRow renders a multi-column row as a tuple, a single column bare.
func FormatRow(pool *types.Pool, row []Flat) string {
	if len(row) == 1 {
		return Format(pool, row[0])
	}
	parts := make([]string, len(row))
	for i, f := range row {
		parts[i] = Format(pool, f)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func write(sb *strings.Builder, pool *types.Pool, f Flat) {
	switch f.Kind {
	case Wildcard:
		sb.WriteString("_")
	case Binding:
		sb.WriteString(pool.Name(f.Name))
	case Literal:
		sb.WriteString(FormatLit(f.Lit))
	case Variant:
		sb.WriteString(pool.Name(f.Name))
		if len(f.Subs) > 0 {
			sb.WriteByte('(')
			writeList(sb, pool, f.Subs)
			sb.WriteByte(')')
		}
	case Tuple:
		sb.WriteByte('(')
		writeList(sb, pool, f.Subs)
		if len(f.Subs) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case Struct:
		writeStruct(sb, pool, f)
	case List:
		sb.WriteByte('[')
		writeList(sb, pool, f.Subs)
		if f.Rest != nil {
			if len(f.Subs) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("..")
			if f.Rest.Kind == Binding {
				sb.WriteString(pool.Name(f.Rest.Name))
			}
		}
		sb.WriteByte(']')
	default:
		sb.WriteString("?")
	}
}

func writeList(sb *strings.Builder, pool *types.Pool, subs []Flat) {
	for i, s := range subs {
		if i > 0 {
			sb.WriteString(", ")
		}
		write(sb, pool, s)
	}
}

// writeStruct prints only the fields that test something; the rest fold
// into `..`.
func writeStruct(sb *strings.Builder, pool *types.Pool, f Flat) {
	sb.WriteString(pool.Name(f.Name))
	var layout []types.Field
	if under := pool.Underlying(f.Type); pool.Tag(under) == types.TagStruct {
		layout = pool.StructFields(under)
	}
	shown := 0
	for i, s := range f.Subs {
		if s.Kind == Wildcard || i >= len(layout) {
			continue
		}
		if shown == 0 {
			sb.WriteString(" { ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(pool.Name(layout[i].Name))
		if s.Kind != Binding || s.Name != layout[i].Name {
			sb.WriteString(": ")
			write(sb, pool, s)
		}
		shown++
	}
	switch {
	case shown == 0:
		sb.WriteString(" { .. }")
	case shown < len(f.Subs):
		sb.WriteString(", .. }")
	default:
		sb.WriteString(" }")
	}
}

// FormatLit renders a literal the way it is written in source.
func FormatLit(l ast.Lit) string {
	switch l.Kind {
	case ast.LitInt:
		return strconv.FormatInt(l.Int, 10)
	case ast.LitBool:
		return strconv.FormatBool(l.Bool)
	case ast.LitChar:
		return strconv.QuoteRune(l.Char)
	case ast.LitStr:
		return strconv.Quote(l.Str)
	}
	return "?"
}
