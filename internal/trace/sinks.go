package trace

import (
	"errors"
	"io"
	"sync"
)

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop drops everything.
var Nop Tracer = nopTracer{}

// StreamTracer formats every accepted event straight to a writer.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.Accepts(ev) {
		return
	}
	line := FormatEvent(ev, t.format)
	t.mu.Lock()
	_, _ = t.w.Write(line) //nolint:errcheck // трейс не должен ронять раскрытие
	t.mu.Unlock()
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (t *StreamTracer) Close() error {
	err := t.Flush()
	if c, ok := t.w.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

// RingTracer remembers the last events in memory so they can be dumped
// after the server dies.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	n     uint64 // events written so far
	level Level
}

// NewRingTracer keeps size events (4096 when size <= 0).
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = 4096
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.Accepts(ev) {
		return
	}
	t.mu.Lock()
	t.buf[t.n%uint64(len(t.buf))] = *ev
	t.n++
	t.mu.Unlock()
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	if t.n <= size {
		return append([]Event(nil), t.buf[:t.n]...)
	}
	head := t.n % size
	return append(append(make([]Event, 0, size), t.buf[head:]...), t.buf[:head]...)
}

// Dump writes the snapshot to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

// fanout sends each event to all of its tracers.
type fanout struct {
	level Level
	sinks []Tracer
}

func (f *fanout) Emit(ev *Event) {
	for _, s := range f.sinks {
		s.Emit(ev)
	}
}

func (f *fanout) each(op func(Tracer) error) error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, op(s))
	}
	return errors.Join(errs...)
}

func (f *fanout) Flush() error  { return f.each(Tracer.Flush) }
func (f *fanout) Close() error  { return f.each(Tracer.Close) }
func (f *fanout) Level() Level  { return f.level }
func (f *fanout) Enabled() bool { return f.level > LevelOff }

// RingOf finds the ring buffer behind t, if any.
func RingOf(t Tracer) (*RingTracer, bool) {
	switch tt := t.(type) {
	case *RingTracer:
		return tt, true
	case *fanout:
		for _, s := range tt.sinks {
			if r, ok := RingOf(s); ok {
				return r, true
			}
		}
	}
	return nil, false
}
