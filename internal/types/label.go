package types

import (
	"strconv"
	"strings"
)

// Label returns a user-friendly label for id.
func Label(pool *Pool, id Idx) string {
	return labelDepth(pool, id, 0)
}

// Labels labels each handle in ids.
func Labels(pool *Pool, ids []Idx) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = Label(pool, id)
	}
	return out
}

func labelDepth(pool *Pool, id Idx, depth int) string {
	if id == None || pool == nil {
		return "?"
	}
	if depth > 8 {
		return "..."
	}
	switch tag := pool.Tag(id); tag {
	case TagNone:
		return "?"
	case TagInt, TagFloat, TagBool, TagChar, TagByte, TagStr, TagNever,
		TagError, TagDuration, TagSize, TagOrdering:
		return tag.String()
	case TagUnit:
		return "()"
	case TagOption, TagList, TagSet, TagRange:
		return tag.String() + "<" + labelDepth(pool, Idx(pool.Data(id)), depth+1) + ">"
	case TagResult:
		ok, err := pool.ResultParts(id)
		return "Result<" + labelList(pool, []Idx{ok, err}, depth) + ">"
	case TagMap:
		k, v := pool.MapParts(id)
		return "Map<" + labelList(pool, []Idx{k, v}, depth) + ">"
	case TagTuple:
		elems := pool.TupleElems(id)
		if len(elems) == 1 {
			return "(" + labelDepth(pool, elems[0], depth+1) + ",)"
		}
		return "(" + labelList(pool, elems, depth) + ")"
	case TagFunction:
		return "fn(" + labelList(pool, pool.FunctionParams(id), depth) + ") -> " +
			labelDepth(pool, pool.FunctionResult(id), depth+1)
	case TagStruct:
		return pool.Name(pool.StructName(id))
	case TagEnum:
		return pool.Name(pool.EnumName(id))
	case TagNamed:
		return pool.Name(pool.NamedName(id))
	case TagApplied:
		return pool.Name(pool.AppliedName(id)) + "<" + labelList(pool, pool.AppliedArgs(id), depth) + ">"
	case TagVar:
		return "?" + strconv.FormatUint(uint64(pool.VarID(id)), 10)
	case TagScheme:
		vars := pool.SchemeVars(id)
		parts := make([]string, len(vars))
		for i, v := range vars {
			parts[i] = "?" + strconv.FormatUint(uint64(v), 10)
		}
		return "forall " + strings.Join(parts, " ") + ". " + labelDepth(pool, pool.SchemeBody(id), depth+1)
	case TagBorrowed:
		inner, lt := pool.BorrowedParts(id)
		if lt == 0 {
			return "&" + labelDepth(pool, inner, depth+1)
		}
		return "&'" + pool.Name(lt) + " " + labelDepth(pool, inner, depth+1)
	default:
		return "?"
	}
}

func labelList(pool *Pool, ids []Idx, depth int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = labelDepth(pool, id, depth+1)
	}
	return strings.Join(parts, ", ")
}
