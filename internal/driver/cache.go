package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"typecore/internal/diag"
	"typecore/internal/project"
	"typecore/internal/source"
	"typecore/internal/version"
)

// Current schema version - increment when CachedUnit format changes
const resultCacheSchemaVersion uint16 = 1

// ResultCache хранит диагностики проверенных юнитов на диске, по хешу
// содержимого. Thread-safe for concurrent access.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedUnit is the stored outcome of checking one unit. Spans are kept
// relative to the unit file id: the unit file is 0, its fragment files
// follow in load order.
type CachedUnit struct {
	Schema      uint16
	Name        string
	Path        string
	Trees       int
	Diagnostics []diag.Diagnostic
}

// OpenResultCache opens the cache directory for app under XDG_CACHE_HOME
// or ~/.cache.
func OpenResultCache(app string) (*ResultCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("open result cache: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}
	return &ResultCache{dir: dir}, nil
}

func (c *ResultCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *ResultCache) Put(key project.Digest, payload *CachedUnit) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads a payload. A missing entry or one written by another schema is
// a miss, not an error.
func (c *ResultCache) Get(key project.Digest, out *CachedUnit) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == resultCacheSchemaVersion, nil
}

// DropAll invalidates the cache.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог, затем удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey covers everything the stored diagnostics depend on: the unit
// bytes, the diagnostic limit and the checker version.
func cacheKey(content []byte, maxDiag int) project.Digest {
	opts := fmt.Sprintf("typecore %s schema=%d max=%d", version.Version, resultCacheSchemaVersion, maxDiag)
	return project.Combine(project.HashContent(content), project.HashContent([]byte(opts)))
}

// restore replaces the unit bag with cached diagnostics. Fragment files are
// added by the loader in the same order on every run, so relative file ids
// map back onto this file set.
func (s *Session) restore(res *UnitResult, c *ResultCache) bool {
	if c == nil {
		return false
	}
	start := time.Now()
	defer func() { s.Timer.Add("cache", time.Since(start)) }()

	var payload CachedUnit
	ok, err := c.Get(res.key, &payload)
	if err != nil || !ok {
		return false
	}
	base := res.Unit.File
	bag := diag.NewBag(max(res.Bag.Cap(), len(payload.Diagnostics)))
	for _, d := range payload.Diagnostics {
		d.Primary = shiftSpan(d.Primary, base, true)
		notes := make([]diag.Note, len(d.Notes))
		for i, n := range d.Notes {
			n.Span = shiftSpan(n.Span, base, true)
			notes[i] = n
		}
		d.Notes = notes
		bag.Add(d)
	}
	res.Bag = bag
	res.Trees = payload.Trees
	res.Cached = true
	return true
}

// store writes the unit bag to the cache. Failures only cost a recheck.
func (s *Session) store(res *UnitResult, c *ResultCache) {
	if c == nil {
		return
	}
	start := time.Now()
	defer func() { s.Timer.Add("cache", time.Since(start)) }()

	base := res.Unit.File
	items := res.Bag.Items()
	payload := &CachedUnit{
		Schema:      resultCacheSchemaVersion,
		Name:        res.Unit.Name,
		Path:        res.Path,
		Diagnostics: make([]diag.Diagnostic, len(items)),
	}
	if res.Table != nil {
		payload.Trees = res.Table.Len()
	}
	for i, d := range items {
		d.Primary = shiftSpan(d.Primary, base, false)
		notes := make([]diag.Note, len(d.Notes))
		for j, n := range d.Notes {
			n.Span = shiftSpan(n.Span, base, false)
			notes[j] = n
		}
		d.Notes = notes
		payload.Diagnostics[i] = d
	}
	_ = c.Put(res.key, payload)
}

// shiftSpan moves a span between absolute and unit-relative file ids.
// noFile passes through.
func shiftSpan(sp source.Span, base source.FileID, restore bool) source.Span {
	if sp.File == noFile.File {
		return sp
	}
	if restore {
		sp.File += base
		return sp
	}
	if sp.File >= base {
		sp.File -= base
	}
	return sp
}
