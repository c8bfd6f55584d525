package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/fixture"
	"typecore/internal/trace"
	"typecore/internal/types"
	"typecore/internal/unify"
)

// unifyPass runs the cases of one group in order on a single substitution.
func (s *Session) unifyPass(ctx context.Context, u *fixture.Unit, decl *fixture.Declared, i, maxDiag int) passResult {
	g := &u.Groups[i]
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unify "+g.Name, trace.CurrentSpan(ctx))
	start := time.Now()

	bag := diag.NewBag(maxDiag)
	rep := &diag.BagReporter{Bag: bag}
	pool := decl.Scope.Pool().Extend()
	sc := decl.Scope.ForPass(pool, rep)
	for _, v := range g.Vars {
		sc.Bind(v, pool.FreshVar())
	}
	c := &caseChecker{
		scope:   sc,
		syntax:  u.Syntax,
		unifier: unify.New(pool, unify.WithTracer(tracer, span.ID())),
		rep:     rep,
	}
	for _, uc := range g.Cases {
		c.check(uc)
	}

	s.Timer.Add("unify", time.Since(start))
	span.End(fmt.Sprintf("%d cases, %d bindings", len(g.Cases), c.unifier.Len()))
	return passResult{bag: bag}
}

type caseChecker struct {
	scope   *fixture.Scope
	syntax  *ast.Builder
	unifier *unify.Unifier
	rep     diag.Reporter
}

func (c *caseChecker) label(ty types.Idx) string {
	return types.Label(c.scope.Pool(), c.unifier.Apply(ty))
}

func (c *caseChecker) check(uc fixture.UnifyCase) {
	left := c.scope.Resolve(uc.Left)
	right := c.scope.Resolve(uc.Right)
	leftSpan := c.syntax.Types.Get(uc.Left).Span
	rightSpan := c.syntax.Types.Get(uc.Right).Span

	got, err := c.unifier.Unify(left, right)
	if err != nil {
		var ue *unify.Error
		if !errors.As(err, &ue) {
			panic(fmt.Errorf("driver: unexpected unifier error: %w", err))
		}
		switch {
		case !uc.WantError:
			diag.ReportError(c.rep, unifyCode(ue.Kind), leftSpan, ue.Error()).
				WithNote(rightSpan, "unified with "+c.label(right)).
				Emit()
		case ue.Kind != uc.ErrorKind:
			diag.ReportError(c.rep, diag.FixtureExpectation, uc.Span,
				fmt.Sprintf("expected %s, got %s: %s", uc.ErrorKind, ue.Kind, ue.Error())).Emit()
		default:
			diag.NewReportBuilder(c.rep, diag.SevInfo, unifyCode(ue.Kind), leftSpan,
				fmt.Sprintf("%s as expected: %s", ue.Kind, ue.Error())).Emit()
		}
		return
	}

	if uc.WantError {
		diag.ReportError(c.rep, diag.FixtureExpectation, uc.Span,
			fmt.Sprintf("expected %s, but %s and %s unify to %s", uc.ErrorKind, c.label(left), c.label(right), c.label(got))).Emit()
		return
	}
	if !uc.Expect.IsValid() {
		return
	}
	want := c.scope.Resolve(uc.Expect)
	if !c.same(got, want) {
		diag.ReportError(c.rep, diag.FixtureExpectation, c.syntax.Types.Get(uc.Expect).Span,
			fmt.Sprintf("unified to %s, expected %s", c.label(got), c.label(want))).Emit()
	}
}

// same reports whether got equals want under the current substitution,
// looking through aliases. A fork keeps the probe from binding anything.
func (c *caseChecker) same(got, want types.Idx) bool {
	got = c.unifier.Apply(got)
	if got == want {
		return true
	}
	probe := c.unifier.Fork()
	before := probe.Len()
	if _, err := probe.Unify(got, want); err != nil {
		return false
	}
	return probe.Len() == before
}

func unifyCode(k unify.ErrorKind) diag.Code {
	switch k {
	case unify.OccursCheck:
		return diag.TypeOccursCheck
	case unify.ArityMismatch:
		return diag.TypeArityMismatch
	default:
		return diag.TypeMismatch
	}
}
