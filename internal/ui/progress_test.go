package ui

import (
	"math"
	"strings"
	"testing"

	"typecore/internal/driver"
)

func TestFractionCountsPasses(t *testing.T) {
	items := []unitItem{
		{status: "done"},
		{status: "checking", passes: 1, total: 2},
		{status: "queued"},
		{status: "cached"},
	}
	got := fraction(items)
	want := (1 + 0.45 + 0 + 1) / 4.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("fraction = %v, want %v", got, want)
	}
	if fraction(nil) != 0 {
		t.Fatal("empty fraction")
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		ev   driver.Event
		want string
	}{
		{driver.Event{Stage: driver.StageLoad, Status: driver.StatusQueued}, "queued"},
		{driver.Event{Stage: driver.StageCheck, Status: driver.StatusWorking}, "checking"},
		{driver.Event{Stage: driver.StageCheck, Status: driver.StatusDone}, "done"},
		{driver.Event{Stage: driver.StageCache, Status: driver.StatusDone}, "cached"},
		{driver.Event{Stage: driver.StageCheck, Status: driver.StatusError}, "error"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.ev); got != tt.want {
			t.Errorf("statusLabel(%v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestUpdateAppliesEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("check", []string{"a.toml", "b.toml"}, events).(*progressModel)
	m.Update(eventMsg(driver.Event{File: "a.toml", Stage: driver.StageCheck, Status: driver.StatusWorking, Passes: 1, Total: 3}))
	m.Update(eventMsg(driver.Event{File: "unknown.toml", Stage: driver.StageCheck, Status: driver.StatusDone}))
	if m.items[0].status != "checking" || m.items[0].passes != 1 || m.items[0].total != 3 {
		t.Fatalf("item = %+v", m.items[0])
	}
	if m.items[1].status != "queued" {
		t.Fatalf("unrelated item changed: %+v", m.items[1])
	}
	view := m.View()
	if !strings.Contains(view, "a.toml") || !strings.Contains(view, "1/3") {
		t.Fatalf("view:\n%s", view)
	}
	m.Update(doneMsg{})
	if !m.done || !strings.Contains(m.View(), "done: check") {
		t.Fatal("done state not rendered")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a/very/long/unit/path.toml", 10); !strings.HasSuffix(got, "...") || len(got) > 10 {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}
