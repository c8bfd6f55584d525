// Package trace provides structured event tracing for the type core.
//
// Tracing is how the driver, the unifier and the decision-tree compiler
// report what they are doing: span boundaries for phases and passes, and
// point events for individual variable bindings or tree nodes.
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: reserved for crash dumps
//   - LevelPhase: driver phases and passes
//   - LevelDetail: per-unit work (one match, one unify group)
//   - LevelDebug: every bind and every compiled node
//
// # Usage
//
//	t, _ := trace.New(trace.Config{Level: trace.LevelDetail, Mode: trace.ModeStream})
//	ctx = trace.WithTracer(ctx, t)
//
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "unify", 0)
//	defer span.End("")
package trace
