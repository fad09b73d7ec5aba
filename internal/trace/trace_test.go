package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLevel_Filtering(t *testing.T) {
	tests := []struct {
		level   Level
		scope   Scope
		kind    Kind
		accepts bool
	}{
		{LevelOff, ScopeSession, KindPoint, false},
		{LevelOff, ScopeRequest, KindFailure, false},
		{LevelError, ScopeSession, KindPoint, false},
		{LevelError, ScopeRequest, KindFailure, true},
		{LevelSession, ScopeSession, KindSpanBegin, true},
		{LevelSession, ScopeProcess, KindSpanBegin, false},
		{LevelProcess, ScopeProcess, KindSpanEnd, true},
		{LevelProcess, ScopeRequest, KindSpanEnd, false},
		{LevelDebug, ScopeRequest, KindPoint, true},
	}
	for _, tt := range tests {
		ev := &Event{Scope: tt.scope, Kind: tt.kind}
		if got := tt.level.Accepts(ev); got != tt.accepts {
			t.Errorf("%v.Accepts(%v/%v) = %v, want %v", tt.level, tt.scope, tt.kind, got, tt.accepts)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "session", "process", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel accepted garbage")
	}
}

func TestStreamTracer_SpanAndFailure(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf, Format: FormatText})
	if err != nil {
		t.Fatal(err)
	}

	sp := Begin(tr, ScopeRequest, "expand", 0)
	sp.WithExtra("b", "2").WithExtra("a", "1").End("ok")
	Fail(tr, ScopeProcess, "spawn", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"→ request:expand", "← request:expand (ok) {a=1, b=2}", "! process:spawn (boom)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	ring, ok := RingOf(tr)
	if !ok {
		t.Fatalf("ModeBoth tracer has no ring")
	}
	if n := len(ring.Snapshot()); n != 3 {
		t.Errorf("ring holds %d events, want 3", n)
	}
}

func TestRingTracer_Wraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for i, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Seq: uint64(i), Kind: KindPoint, Scope: ScopeRequest, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 || !strings.Contains(buf.String(), `"name":"c"`) {
		t.Fatalf("dump = %s", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	if FromContext(WithTracer(context.Background(), nil)) != Nop {
		t.Fatalf("nil tracer must become Nop")
	}
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not propagated")
	}
}

func TestSpan_InertWhenFiltered(t *testing.T) {
	r := NewRingTracer(8, LevelSession)
	sp := Begin(r, ScopeRequest, "expand", 0).WithExtra("k", "v")
	if sp.ID() != 0 || sp.End("") != 0 {
		t.Fatalf("filtered span is live")
	}
	parent := Begin(r, ScopeSession, "build", 0)
	Begin(r, ScopeSession, "child", parent.ID()).End("")
	snap := r.Snapshot()
	if len(snap) != 3 || snap[2].ParentID != parent.ID() {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestNew_Modes(t *testing.T) {
	if tr, _ := New(Config{Level: LevelOff, Mode: ModeBoth}); tr != Nop {
		t.Fatalf("LevelOff must yield Nop")
	}
	tr, err := New(Config{Level: LevelError, Mode: ModeRing})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := RingOf(tr); !ok {
		t.Fatalf("ring mode has no ring")
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelError, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := RingOf(tr); ok {
		t.Fatalf("stream mode grew a ring")
	}
	if _, err := New(Config{Level: LevelError}); err == nil {
		t.Fatalf("zero mode accepted")
	}
	if m, err := ParseMode(""); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(\"\") = %v, %v", m, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("ParseMode accepted garbage")
	}
}
