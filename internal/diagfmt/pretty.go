package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"typecore/internal/diag"
	"typecore/internal/source"
)

type palette struct {
	err, warn, info, caret, gutter, note func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		caret:  mk(color.FgGreen, color.Bold),
		gutter: mk(color.FgBlue),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.err(s.String())
	case diag.SevWarning:
		return p.warn(s.String())
	default:
		return p.info(s.String())
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	var sb strings.Builder
	for _, d := range bag.Items() {
		writeHeader(&sb, fs, d, opts, pal)
		writeSnippet(&sb, fs, d.Primary, opts, pal)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(&sb, "  %s %s: %s\n", pal.note("note:"), location(fs, n.Span, opts.PathMode), n.Msg)
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Summary prints "N errors, M warnings" or nothing for an empty bag.
func Summary(w io.Writer, bag *diag.Bag) error {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s, %s\n", plural(errs, "error"), plural(warns, "warning"))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	if fs == nil || int(sp.File) >= fs.Len() {
		return "<unknown>"
	}
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(mode.mode(), fs.BaseDir()), start.Line, start.Col)
}

func writeHeader(sb *strings.Builder, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts, pal palette) {
	fmt.Fprintf(sb, "%s: %s %s: %s\n", location(fs, d.Primary, opts.PathMode), pal.severity(d.Severity), d.Code.ID(), d.Message)
}

func writeSnippet(sb *strings.Builder, fs *source.FileSet, sp source.Span, opts PrettyOpts, pal palette) {
	if fs == nil || int(sp.File) >= fs.Len() {
		return
	}
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	first := int(start.Line) - int(max(opts.Context, 0))
	first = max(first, 1)
	width := len(strconv.Itoa(int(start.Line)))
	for ln := first; ln <= int(start.Line); ln++ {
		fmt.Fprintf(sb, "%s %s\n", pal.gutter(fmt.Sprintf("%*d |", width, ln)), f.Line(uint32(ln)))
	}
	line := f.Line(start.Line)
	before := prefix(line, int(start.Col)-1)
	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	marked := ""
	if stop > len(before) {
		marked = line[len(before):stop]
	}
	pad := padding(before)
	n := max(runewidth.StringWidth(marked), 1)
	underline := "^" + strings.Repeat("~", n-1)
	fmt.Fprintf(sb, "%s %s%s\n", pal.gutter(strings.Repeat(" ", width)+" |"), pad, pal.caret(underline))
}

func prefix(line string, n int) string {
	if n <= 0 {
		return ""
	}
	if n > len(line) {
		return line
	}
	return line[:n]
}

// padding reproduces the display width of s, keeping tabs so the caret
// lines up under them.
func padding(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}
