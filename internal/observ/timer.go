// Package observ measures how long the CLI spends in each step.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

type phase struct {
	name       string
	note       string
	start, end time.Time
}

// Timer records named steps. Steps may overlap and may be started from
// several goroutines.
type Timer struct {
	mu     sync.Mutex
	phases []phase
}

func NewTimer() *Timer { return &Timer{} }

// Begin starts a step and returns the handle End expects.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	return len(t.phases) - 1
}

// End closes step idx; unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	t.phases[idx].end = now
	t.phases[idx].note = note
}

// PhaseReport is one finished or running step.
type PhaseReport struct {
	Name     string
	Duration time.Duration
	Note     string
}

// Report holds the steps in start order. Wall spans from the first start
// to the last end, so overlapping steps are not summed.
type Report struct {
	Wall   time.Duration
	Phases []PhaseReport
}

func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	var first, last time.Time
	for _, p := range t.phases {
		end := p.end
		if end.IsZero() {
			end = p.start
		}
		if first.IsZero() || p.start.Before(first) {
			first = p.start
		}
		if end.After(last) {
			last = end
		}
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, Duration: end.Sub(p.start), Note: p.note})
	}
	r.Wall = last.Sub(first)
	return r
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, p := range r.Phases {
		note := ""
		if p.Note != "" {
			note = "// " + p.Note
		}
		fmt.Fprintf(tw, "  %s\t%s\t %s\t\n", p.Name, ms(p.Duration), note)
	}
	fmt.Fprintf(tw, "  %s\t%s\t\t\n", "wall", ms(r.Wall))
	_ = tw.Flush()
	return sb.String()
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.2f ms", float64(d)/float64(time.Millisecond))
}
