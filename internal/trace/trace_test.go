package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{LevelOff, LevelError, LevelPhase, LevelDetail, LevelDebug} {
		got, err := ParseLevel(l.String())
		if err != nil || got != l {
			t.Errorf("round trip of %s: %v %v", l, got, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("Expected an error for an unknown level")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestSpansNestThroughContext(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	pass := Begin(FromContext(ctx), ScopePass, "sema", CurrentSpan(ctx).SpanID)
	ctx = pass.Context(ctx)
	file := Begin(FromContext(ctx), ScopeFile, "file:BlinkC.nc", CurrentSpan(ctx).SpanID)
	node := Begin(FromContext(ctx), ScopeNode, "node", file.ID())
	node.End("")
	file.WithExtra("units", "1").End("ok")
	pass.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("Expected 4 events (node scope filtered), got %d", len(events))
	}
	if events[1].ParentID != pass.ID() {
		t.Errorf("file span should be parented to the pass span")
	}
	if events[2].Kind != KindSpanEnd || events[2].Extra["units"] != "1" {
		t.Errorf("unexpected end event %+v", events[2])
	}
}

func TestStreamFormats(t *testing.T) {
	var text, nd bytes.Buffer
	tr := NewMultiTracer(LevelDebug,
		NewStreamTracer(&text, LevelDebug, FormatText),
		NewStreamTracer(&nd, LevelDebug, FormatNDJSON))
	Point(tr, ScopeFile, "fault", "sema: resolve File", 0)

	if !strings.Contains(text.String(), "[file] *  fault (sema: resolve File)") {
		t.Errorf("unexpected text line %q", text.String())
	}
	var ev map[string]any
	if err := json.Unmarshal(nd.Bytes(), &ev); err != nil {
		t.Fatalf("invalid ndjson %q: %v", nd.String(), err)
	}
	if ev["kind"] != "point" || ev["name"] != "fault" {
		t.Errorf("unexpected ndjson event %v", ev)
	}
}

func TestNewByLevel(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off level should give a disabled tracer")
	}
	tr, err = New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := RingOf(tr); !ok {
		t.Errorf("error level should record into a ring")
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := RingOf(tr); !ok {
		t.Errorf("both mode should carry a ring")
	}
	Begin(tr, ScopeDriver, "diag", 0).End("")
	if !strings.Contains(buf.String(), "-> diag") {
		t.Errorf("stream side did not receive the event: %q", buf.String())
	}
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := Start(ctx, ScopeDriver, "analyze-dir")
	inner, innerCtx := Start(ctx, ScopeFile, "file:AppC.nc")
	if CurrentSpan(innerCtx).SpanID != inner.ID() {
		t.Fatalf("Expected the inner span to be current")
	}
	if d := inner.End(""); d < 0 {
		t.Fatalf("negative duration %v", d)
	}
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}
	if events[1].ParentID != outer.ID() {
		t.Errorf("Expected parent %d, got %d", outer.ID(), events[1].ParentID)
	}

	off, offCtx := Start(context.Background(), ScopeDriver, "quiet")
	if off.ID() != 0 || CurrentSpan(offCtx).SpanID != 0 {
		t.Errorf("a span without a tracer should be disabled")
	}
	off.WithExtra("k", "v").End("")
}
