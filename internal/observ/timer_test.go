package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimer_ConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := tm.Begin("expand")
			time.Sleep(time.Millisecond)
			tm.End(idx, "ok")
		}()
	}
	wg.Wait()

	r := tm.Report()
	if len(r.Phases) != 8 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	var sum time.Duration
	for _, p := range r.Phases {
		sum += p.Duration
	}
	if r.Wall <= 0 || r.Wall > sum {
		t.Fatalf("wall %v not within (0, %v]", r.Wall, sum)
	}
	s := tm.Summary()
	for _, want := range []string{"timings:", "expand", "// ok", "wall", " ms"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary lacks %q:\n%s", want, s)
		}
	}
}

func TestTimer_UnfinishedAndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if r := tm.Report(); len(r.Phases) != 0 || r.Wall != 0 {
		t.Fatalf("report = %+v", r)
	}
	tm.Begin("running")
	if r := tm.Report(); len(r.Phases) != 1 || r.Phases[0].Duration != 0 {
		t.Fatalf("unfinished phase = %+v", r.Phases)
	}
}
