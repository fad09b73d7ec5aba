package trace

import (
	"sync/atomic"
	"time"
)

var seq, spanIDs atomic.Uint64

// Span pairs a begin event with its end.
// A span begun on a filtered-out tracer is inert.
type Span struct {
	t      Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
	extra  map[string]string
}

func emit(t Tracer, ev Event) {
	ev.Time = time.Now()
	ev.Seq = seq.Add(1)
	t.Emit(&ev)
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{t: t, id: spanIDs.Add(1), parent: parent, scope: scope, name: name, start: time.Now()}
	emit(t, Event{Kind: KindSpanBegin, Scope: scope, SpanID: s.id, ParentID: parent, Name: name})
	return s
}

// WithExtra attaches a key to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s.t == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.t == nil {
		return 0
	}
	d := time.Since(s.start)
	emit(s.t, Event{
		Kind: KindSpanEnd, Scope: s.scope, SpanID: s.id, ParentID: s.parent,
		Name: s.name, Detail: detail, Extra: s.extra,
	})
	return d
}

// ID is 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point records an instant event.
func Point(t Tracer, scope Scope, name, detail string) {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return
	}
	emit(t, Event{Kind: KindPoint, Scope: scope, Name: name, Detail: detail})
}

// Fail records err; nil errors are ignored.
func Fail(t Tracer, scope Scope, name string, err error) {
	if t == nil || err == nil || !t.Enabled() {
		return
	}
	emit(t, Event{Kind: KindFailure, Scope: scope, Name: name, Detail: err.Error()})
}
