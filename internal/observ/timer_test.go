package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerAddFoldsPasses(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("declare")
	tm.End(idx, "3 types")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add("match", time.Millisecond)
		}()
	}
	wg.Wait()

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %+v", rep.Phases)
	}
	m := rep.Phases[1]
	if m.Name != "match" || m.Count != 4 || m.DurationMS < 4 {
		t.Fatalf("folded phase %+v", m)
	}
	if rep.TotalMS >= m.DurationMS {
		t.Fatalf("folded passes must not count toward the wall total: %+v", rep)
	}
	s := tm.Summary()
	if !strings.Contains(s, "declare") || !strings.Contains(s, "// 3 types") || !strings.Contains(s, "x4") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("End on unknown index must be a no-op")
	}
}
