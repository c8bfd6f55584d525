package decision

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"typecore/internal/pattern"
	"typecore/internal/types"
)

// Print writes a deterministic, indented dump of tree. Edge labels of one
// switch are padded to the same display width.
func Print(w io.Writer, pool *types.Pool, tree *Node) error {
	p := &printer{pool: pool}
	p.node(tree, 0)
	_, err := io.WriteString(w, p.sb.String())
	return err
}

type printer struct {
	pool *types.Pool
	sb   strings.Builder
}

func (p *printer) line(depth int, format string, args ...any) {
	p.sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) bindings(bs []Binding) string {
	if len(bs) == 0 {
		return ""
	}
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = p.pool.Name(b.Name) + "=" + b.Path.String()
	}
	return " {" + strings.Join(parts, ", ") + "}"
}

func (p *printer) node(n *Node, depth int) {
	switch n.Kind {
	case NodeFail:
		p.line(depth, "fail")
	case NodeLeaf:
		p.line(depth, "leaf arm %d%s", n.Arm, p.bindings(n.Bindings))
	case NodeGuard:
		p.line(depth, "guard arm %d if #%d%s", n.Arm, n.Condition, p.bindings(n.Bindings))
		p.line(depth+1, "else =>")
		p.node(n.Fallback, depth+2)
	case NodeSwitch:
		p.line(depth, "switch %s %s : %s", n.Test, n.Path, types.Label(p.pool, n.Type))
		labels := make([]string, len(n.Edges))
		width := 1
		for i, e := range n.Edges {
			labels[i] = p.outcome(n.Test, e.Outcome)
			width = max(width, runewidth.StringWidth(labels[i]))
		}
		for i, e := range n.Edges {
			p.line(depth+1, "%s =>", runewidth.FillRight(labels[i], width))
			p.node(e.Node, depth+2)
		}
		if n.Default != nil {
			p.line(depth+1, "%s =>", runewidth.FillRight("_", width))
			p.node(n.Default, depth+2)
		}
	}
}

func (p *printer) outcome(test TestKind, o Outcome) string {
	switch test {
	case TestIntEq, TestBoolEq, TestCharEq, TestStrEq:
		return pattern.FormatLit(o.Lit)
	case TestVariantTag:
		return p.pool.Name(o.Name)
	case TestListShape:
		if o.Variant == ShapeEmpty {
			return "[]"
		}
		return "[_, ..]"
	}
	return "?"
}
