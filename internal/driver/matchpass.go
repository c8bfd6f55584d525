package driver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"typecore/internal/ast"
	"typecore/internal/decision"
	"typecore/internal/diag"
	"typecore/internal/exhaust"
	"typecore/internal/fixture"
	"typecore/internal/pattern"
	"typecore/internal/trace"
	"typecore/internal/types"
)

// matchPass flattens, compiles and checks one match, then evaluates its
// runs. The scrutinee types were resolved at declaration time, so the pass
// only reads the frozen base pool.
func (s *Session) matchPass(ctx context.Context, u *fixture.Unit, decl *fixture.Declared, i, maxDiag int) passResult {
	m := &u.Matches[i]
	tys := decl.Scrutinees[i]
	pool := decl.Scope.Pool()
	pats := u.Syntax.Patterns
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "match "+m.Name, trace.CurrentSpan(ctx))
	start := time.Now()

	bag := diag.NewBag(maxDiag)
	rep := &diag.BagReporter{Bag: bag}

	units := pattern.NewTable()
	for a, arm := range m.Arms {
		for c, p := range arm.Patterns {
			pattern.ResolveUnitVariants(pool, pats, a, c, p, tys[c], units)
		}
	}
	fl := &pattern.Flattener{Pool: pool, Patterns: pats, Table: units, Reporter: rep}
	rows := make([]decision.Row, len(m.Arms))
	for a, arm := range m.Arms {
		cols := make([]pattern.Flat, len(arm.Patterns))
		for c, p := range arm.Patterns {
			cols[c] = fl.Flatten(p, tys[c], pattern.Key{Arm: a, Column: c})
		}
		rows[a] = decision.Row{Cols: cols, Guard: arm.Guard, Arm: a}
	}

	cols := decision.RootColumns(tys)
	tree := decision.Compile(pool, cols, rows, decision.WithTracer(tracer, span.ID()))
	report := exhaust.Check(pool, tree, len(m.Arms), cols)
	problems(pool, m, report, rep)
	for _, run := range m.Runs {
		evaluate(pool, pats, m, tys, tree, run, rep)
	}

	s.Timer.Add("match", time.Since(start))
	span.End(fmt.Sprintf("%d arms, %d nodes", len(m.Arms), decision.Size(tree)))
	return passResult{bag: bag, name: m.Name, arms: len(m.Arms), cols: cols, tree: tree}
}

// problems turns the checker report into diagnostics. Problems the unit
// declares as expected are reported as info; expectations that did not
// happen are errors.
func problems(pool *types.Pool, m *fixture.Match, report exhaust.Report, r diag.Reporter) {
	allowMissing := m.Exhaustive != nil && !*m.Exhaustive
	for _, p := range report.Problems() {
		switch p.Kind {
		case exhaust.NonExhaustive:
			msg := fmt.Sprintf("match %q is not exhaustive: %s is not covered", m.Name, pattern.Format(pool, p.Example))
			if allowMissing {
				diag.NewReportBuilder(r, diag.SevInfo, diag.PatNonExhaustive, m.Span, msg).Emit()
				continue
			}
			diag.ReportError(r, diag.PatNonExhaustive, m.Span, msg).Emit()
		case exhaust.UnreachableArm:
			sp := m.Arms[p.Arm].Span
			msg := fmt.Sprintf("arm %d of match %q is unreachable", p.Arm, m.Name)
			if slices.Contains(m.Unreachable, p.Arm) {
				diag.NewReportBuilder(r, diag.SevInfo, diag.PatUnreachableArm, sp, msg).Emit()
				continue
			}
			diag.ReportWarning(r, diag.PatUnreachableArm, sp, msg).Emit()
		}
	}

	if allowMissing && report.Exhaustive() {
		diag.ReportError(r, diag.FixtureExpectation, m.Span,
			fmt.Sprintf("match %q was expected to be non-exhaustive", m.Name)).Emit()
	}
	for _, arm := range m.Unreachable {
		if !slices.Contains(report.Unreachable, arm) {
			diag.ReportError(r, diag.FixtureExpectation, m.Arms[arm].Span,
				fmt.Sprintf("arm %d of match %q was expected to be unreachable", arm, m.Name)).Emit()
		}
	}
}

// evaluate runs the tree on the values of run. Guards of rejected arms fail,
// every other guard holds.
func evaluate(pool *types.Pool, pats *ast.Patterns, m *fixture.Match, tys []types.Idx, tree *decision.Node, run fixture.Run, r diag.Reporter) {
	values := make([]decision.Value, len(run.Values))
	for i, id := range run.Values {
		v, err := fixture.Value(pool, pats, id, tys[i])
		if err != nil {
			sp := run.Span
			var ve *fixture.ValueError
			if errors.As(err, &ve) && !ve.Span.Empty() {
				sp = ve.Span
			}
			diag.ReportError(r, diag.PrjBadFixture, sp, "bad run value: "+err.Error()).Emit()
			return
		}
		values[i] = v
	}

	guard := func(cond ast.ExprID, _ []decision.Bound) bool {
		arm, ok := m.GuardArm(cond)
		return ok && !slices.Contains(run.Reject, arm)
	}
	got := -1
	res, err := decision.Run(tree, values, guard)
	switch {
	case err == nil:
		got = res.Arm
	case !errors.Is(err, decision.ErrNoMatch):
		diag.ReportError(r, diag.FixtureExpectation, run.Span, "evaluation failed: "+err.Error()).Emit()
		return
	}
	if run.Arm != nil && *run.Arm != got {
		diag.ReportError(r, diag.FixtureExpectation, run.Span,
			fmt.Sprintf("run selected %s, expected %s", armName(got), armName(*run.Arm))).Emit()
	}
}

func armName(arm int) string {
	if arm < 0 {
		return "no arm"
	}
	return fmt.Sprintf("arm %d", arm)
}
