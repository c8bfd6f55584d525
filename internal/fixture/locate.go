package fixture

import (
	"bytes"
)

// locator maps decoded TOML strings back to byte ranges of the unit file so
// fragments are parsed in place and diagnostics point at the real text.
// Lookups are best effort; a miss makes the caller fall back to a virtual
// file holding only the fragment.
type locator struct {
	content []byte
}

// section is a byte range of the file belonging to one table. cursor
// advances as array elements are found, so equal strings in one array map
// to successive occurrences.
type section struct {
	name   string
	header int // offset of the `[[...]]` line, -1 for the root table or when not found
	start  int
	end    int
	cursor int
}

func (l *locator) root() section {
	end := l.nextHeader(0)
	return section{header: -1, start: 0, end: end, cursor: 0}
}

// open finds the next `[[name]]` line in [*from, limit) and returns the
// table body up to the following header line. Without a match the section
// covers [*from, limit) so lookups still have a chance.
func (l *locator) open(name string, from *int, limit int) section {
	at := l.tableHeader(name, *from, limit)
	if at < 0 {
		return section{name: name, header: -1, start: *from, end: limit, cursor: *from}
	}
	body := lineEnd(l.content, at)
	*from = body
	return section{name: name, header: at, start: body, end: min(l.nextHeader(body), limit), cursor: body}
}

// block returns the end of the table array element starting at header: the
// next `[[name]]` line or limit.
func (l *locator) block(name string, s section, limit int) int {
	if s.header < 0 {
		return limit
	}
	if next := l.tableHeader(name, s.start, limit); next >= 0 {
		return next
	}
	return limit
}

func (l *locator) tableHeader(name string, from, limit int) int {
	needle := []byte("[[" + name + "]]")
	pos := from
	for pos < limit {
		i := bytes.Index(l.content[pos:limit], needle)
		if i < 0 {
			return -1
		}
		at := pos + i
		if atLineStart(l.content, at) {
			return at
		}
		pos = at + len(needle)
	}
	return -1
}

// nextHeader is the offset of the next line starting with '[' after from.
func (l *locator) nextHeader(from int) int {
	pos := from
	for pos < len(l.content) {
		i := bytes.IndexByte(l.content[pos:], '[')
		if i < 0 {
			break
		}
		at := pos + i
		if atLineStart(l.content, at) {
			return at
		}
		pos = at + 1
	}
	return len(l.content)
}

// find locates text written as a TOML string inside s. Array elements are
// searched from the cursor first; keys may appear in any order, so a miss
// retries from the start of the section.
func (l *locator) find(s *section, text string) (start, end int, ok bool) {
	if text == "" {
		return 0, 0, false
	}
	if start, ok = l.quoted(s.cursor, s.end, text); !ok {
		if start, ok = l.quoted(s.start, s.end, text); !ok {
			return 0, 0, false
		}
	}
	end = start + len(text)
	if end > s.cursor {
		s.cursor = end
	}
	return start, end, true
}

// quoted returns the offset just past the opening quote of the first
// "text" or 'text' in [from, limit).
func (l *locator) quoted(from, limit int, text string) (int, bool) {
	if from >= limit {
		return 0, false
	}
	hay := l.content[from:limit]
	best := -1
	for _, q := range []byte{'"', '\''} {
		needle := make([]byte, 0, len(text)+2)
		needle = append(needle, q)
		needle = append(needle, text...)
		needle = append(needle, q)
		if i := bytes.Index(hay, needle); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return from + best + 1, true
}

// key locates `name =` at the start of a line in [from, limit).
func (l *locator) key(name string, from, limit int) (int, bool) {
	pos := from
	for pos < limit {
		i := bytes.Index(l.content[pos:limit], []byte(name))
		if i < 0 {
			return 0, false
		}
		at := pos + i
		rest := bytes.TrimLeft(l.content[at+len(name):limit], " \t")
		if atLineStart(l.content, at) && len(rest) > 0 && rest[0] == '=' {
			return at, true
		}
		pos = at + len(name)
	}
	return 0, false
}

func atLineStart(content []byte, at int) bool {
	for i := at - 1; i >= 0; i-- {
		switch content[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func lineEnd(content []byte, at int) int {
	if i := bytes.IndexByte(content[at:], '\n'); i >= 0 {
		return at + i + 1
	}
	return len(content)
}
