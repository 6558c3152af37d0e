package ui

import (
	"math"
	"strings"
	"testing"

	"nesc/internal/driver"
)

func TestApplyEventTracksFiles(t *testing.T) {
	m := NewProgressModel("diag", []string{"A.nc"}, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "A.nc", Stage: driver.StageIndex, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "B.nc", Stage: driver.StageResolve, Status: driver.StatusDone})
	m.applyEvent(driver.Event{Stage: driver.StageResolve, Status: driver.StatusWorking})

	if len(m.items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(m.items))
	}
	if m.items[0].status != "indexing" || m.items[1].status != "done" {
		t.Fatalf("unexpected statuses %q, %q", m.items[0].status, m.items[1].status)
	}
	if m.stageLabel != "resolving" {
		t.Fatalf("Expected stage label resolving, got %q", m.stageLabel)
	}
	if got := m.percent(); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("Expected 0.7, got %v", got)
	}
	if view := m.View(); !strings.Contains(view, "A.nc") || !strings.Contains(view, "(resolving)") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"BlinkC.nc", 20, "BlinkC.nc"},
		{"very/long/path/BlinkC.nc", 10, "very/lo..."},
		{"BlinkC.nc", 8, "Blink..."},
		{"BlinkC.nc", 3, "Bli"},
		{"BlinkC.nc", 0, "BlinkC.nc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d): Expected %q, got %q", tc.in, tc.width, tc.want, got)
		}
	}
}
