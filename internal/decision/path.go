package decision

import (
	"slices"
	"strconv"
	"strings"
)

// StepKind selects a sub-value.
type StepKind uint8

const (
	StepField   StepKind = iota + 1 // struct field by layout index
	StepElem                        // tuple element
	StepPayload                     // variant payload position
	StepHead                        // first element of a non-empty list
	StepTail                        // the list without its first element
)

// Step is one projection along a Path.
type Step struct {
	Kind  StepKind `msgpack:"k"`
	Index int      `msgpack:"i,omitempty"`
}

// Path addresses a value inside the scrutinee tuple: Root selects the
// column, Steps descend from there.
type Path struct {
	Root  int    `msgpack:"r"`
	Steps []Step `msgpack:"s,omitempty"`
}

// RootPath addresses column i.
func RootPath(i int) Path {
	return Path{Root: i}
}

// Child extends p by one step without sharing storage with p.
func (p Path) Child(s Step) Path {
	steps := make([]Step, len(p.Steps), len(p.Steps)+1)
	copy(steps, p.Steps)
	return Path{Root: p.Root, Steps: append(steps, s)}
}

func (p Path) Equal(o Path) bool {
	return p.Root == o.Root && slices.Equal(p.Steps, o.Steps)
}

// String renders $0.1#0.head style paths.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	sb.WriteString(strconv.Itoa(p.Root))
	for _, s := range p.Steps {
		switch s.Kind {
		case StepField, StepElem:
			sb.WriteByte('.')
			sb.WriteString(strconv.Itoa(s.Index))
		case StepPayload:
			sb.WriteByte('#')
			sb.WriteString(strconv.Itoa(s.Index))
		case StepHead:
			sb.WriteString(".head")
		case StepTail:
			sb.WriteString(".tail")
		}
	}
	return sb.String()
}
