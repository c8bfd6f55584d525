// Package driver runs the checking pipeline over unit files. Loading and
// declaration are sequential and build one base pool per unit; the pool is
// then frozen and every unify group and every match runs as its own pass
// over an overlay, concurrently.
package driver

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"typecore/internal/decision"
	"typecore/internal/diag"
	"typecore/internal/fixture"
	"typecore/internal/observ"
	"typecore/internal/project"
	"typecore/internal/source"
	"typecore/internal/trace"
	"typecore/internal/types"
)

// Options configures Check.
type Options struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int // per unit and per pass
	Timings        bool
	Cache          *ResultCache // nil disables caching
	Progress       ProgressSink
}

// UnitResult is the outcome for one unit file.
type UnitResult struct {
	Path  string
	Unit  *fixture.Unit // nil when the file could not be read
	Pool  *types.Pool   // frozen base pool; nil when the unit was not checked
	Table *decision.Table
	Bag   *diag.Bag
	Trees int
	// Cached is set when the diagnostics came from the result cache.
	Cached bool

	names *source.Interner
	key   project.Digest
}

// Session holds every unit of one run over a shared file set.
type Session struct {
	FileSet *source.FileSet
	Units   []UnitResult
	Timer   *observ.Timer

	extra *diag.Bag
}

// noFile is the span of diagnostics not tied to a source file.
var noFile = source.Span{File: source.FileID(math.MaxUint32)}

// Check loads and checks the unit files at paths. Unreadable files and bad
// content end up as diagnostics; the error is only for cancellation.
func Check(ctx context.Context, paths []string, opts Options) (*Session, error) {
	tracer := trace.FromContext(ctx)
	s := &Session{
		FileSet: source.NewFileSet(),
		Units:   make([]UnitResult, len(paths)),
		Timer:   observ.NewTimer(),
		extra:   diag.NewBag(opts.MaxDiagnostics),
	}

	loadSpan := trace.Begin(tracer, trace.ScopePass, "load", trace.CurrentSpan(ctx))
	phase := s.Timer.Begin("load")
	for i, path := range paths {
		s.Units[i] = s.load(path, opts)
		status := StatusQueued
		if s.Units[i].Unit == nil || s.Units[i].Unit.Broken {
			status = StatusError
		}
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: status})
	}
	s.Timer.End(phase, fmt.Sprintf("%d units", len(paths)))
	loadSpan.End("")

	for i := range s.Units {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		res := &s.Units[i]
		if res.Unit == nil || res.Unit.Broken {
			continue
		}
		if s.restore(res, opts.Cache) {
			emit(opts.Progress, Event{File: res.Path, Stage: StageCache, Status: finalStatus(res)})
			continue
		}
		start := time.Now()
		if err := s.check(ctx, res, opts); err != nil {
			emit(opts.Progress, Event{File: res.Path, Stage: StageCheck, Status: StatusError, Elapsed: time.Since(start)})
			return s, err
		}
		s.store(res, opts.Cache)
		emit(opts.Progress, Event{File: res.Path, Stage: StageCheck, Status: finalStatus(res), Elapsed: time.Since(start)})
	}

	if opts.Timings {
		report := s.Timer.Report()
		appendTimingDiagnostic(s.extra, timingPayload{
			Kind:    "check",
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return s, nil
}

func (s *Session) load(path string, opts Options) UnitResult {
	res := UnitResult{
		Path:  path,
		Bag:   diag.NewBag(opts.MaxDiagnostics),
		names: source.NewInterner(),
	}
	u, err := fixture.Load(s.FileSet, path, res.names, &diag.BagReporter{Bag: res.Bag})
	if err != nil {
		res.Bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, noFile, err.Error()))
		return res
	}
	res.Unit = u
	res.key = cacheKey(s.FileSet.Get(u.File).Content, opts.MaxDiagnostics)
	return res
}

// check declares the unit into a fresh pool, freezes it and runs the passes.
func (s *Session) check(ctx context.Context, res *UnitResult, opts Options) error {
	u := res.Unit
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "check "+u.Name, trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	start := time.Now()
	pool := types.NewPool(res.names)
	decl := fixture.Declare(u, pool, &diag.BagReporter{Bag: res.Bag})
	pool.Freeze()
	s.Timer.Add("declare", time.Since(start))
	res.Pool = pool

	passes := make([]passResult, len(u.Groups)+len(u.Matches))
	var finished atomic.Int32
	progress := func() {
		n := int(finished.Add(1))
		emit(opts.Progress, Event{File: res.Path, Stage: StageCheck, Status: StatusWorking, Passes: n, Total: len(passes)})
	}
	emit(opts.Progress, Event{File: res.Path, Stage: StageCheck, Status: StatusWorking, Total: len(passes)})
	if len(passes) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobCount(opts.Jobs), len(passes)))
		for i := range u.Groups {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				passes[i] = s.unifyPass(gctx, u, decl, i, opts.MaxDiagnostics)
				progress()
				return nil
			})
		}
		for i := range u.Matches {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				passes[len(u.Groups)+i] = s.matchPass(gctx, u, decl, i, opts.MaxDiagnostics)
				progress()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	res.Table = decision.NewTable()
	for _, p := range passes {
		res.Bag.Merge(p.bag)
		if p.tree != nil {
			res.Table.Add(p.name, p.arms, p.cols, p.tree)
		}
	}
	res.Trees = res.Table.Len()
	return nil
}

func jobCount(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return jobs
}

// passResult is what one pass hands back; passes never touch shared state
// other than the timer.
type passResult struct {
	bag  *diag.Bag
	name string
	arms int
	cols []decision.Column
	tree *decision.Node
}

// Diagnostics merges every unit bag in load order, sorted by position, then
// the session-level entries such as timings.
func (s *Session) Diagnostics() *diag.Bag {
	out := diag.NewBag(1)
	for i := range s.Units {
		out.Merge(s.Units[i].Bag)
	}
	out.Sort()
	out.Merge(s.extra)
	return out
}

// HasErrors reports whether any unit produced an error.
func (s *Session) HasErrors() bool {
	for i := range s.Units {
		if s.Units[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Lookup finds a unit by path or by declared name.
func (s *Session) Lookup(name string) (*UnitResult, bool) {
	for i := range s.Units {
		res := &s.Units[i]
		if res.Path == name || (res.Unit != nil && res.Unit.Name == name) {
			return res, true
		}
	}
	return nil, false
}
