package source

import "testing"

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("frag", []byte("ab\ncd\nef"))
	start, end := fs.Resolve(Span{File: id, Start: 3, End: 5})
	if start != (LineCol{Line: 2, Col: 1}) || end != (LineCol{Line: 2, Col: 3}) {
		t.Fatalf("unexpected positions %+v %+v", start, end)
	}
	f := fs.Get(id)
	if got := f.Line(2); got != "cd" {
		t.Fatalf("line 2: got %q", got)
	}
	if got := f.Line(3); got != "ef" {
		t.Fatalf("line 3: got %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("line 4 must be empty, got %q", got)
	}
}

func TestSpanShiftAndCover(t *testing.T) {
	sp := Span{Start: 1, End: 3}.Shift(2, 10)
	if sp.File != 2 || sp.Start != 11 || sp.End != 13 {
		t.Fatalf("shift: %+v", sp)
	}
	c := sp.Cover(Span{File: 2, Start: 5, End: 12})
	if c.Start != 5 || c.End != 13 {
		t.Fatalf("cover: %+v", c)
	}
}
