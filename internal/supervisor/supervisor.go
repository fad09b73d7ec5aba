package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"macrobridge/internal/client"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/status"
	"macrobridge/internal/trace"
)

// ErrCrashed is reported once the restart budget is exhausted.
var ErrCrashed = errors.New("macro server crashed")

// Config controls the server lifecycle.
type Config struct {
	Dial Dialer

	// MaxRestarts is the restart budget over the supervisor lifetime.
	// Zero means the first failure is final.
	MaxRestarts int
	// Backoff is the delay before the first restart; it doubles up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
	// HandshakeTimeout bounds the handshake of each attempt.
	HandshakeTimeout time.Duration

	ClientVersion string
	Tracer        trace.Tracer
	// CrashDump receives the trace ring when the server is declared
	// crashed; nil skips the dump.
	CrashDump io.Writer
}

func (c *Config) defaults() {
	if c.Backoff <= 0 {
		c.Backoff = 100 * time.Millisecond
	}
	if c.MaxBackoff < c.Backoff {
		c.MaxBackoff = 5 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.Tracer == nil {
		c.Tracer = trace.Nop
	}
}

// Supervisor runs the server and keeps the status cell current.
type Supervisor struct {
	cfg  Config
	cell *status.Cell

	mu       sync.Mutex
	hs       v2.HandshakeResult
	restarts int
	err      error
	ready    chan struct{}
	readyOne sync.Once

	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches the server in the background and returns immediately.
// cell stays Pending until the first handshake succeeds.
func Start(ctx context.Context, cfg Config, cell *status.Cell) *Supervisor {
	cfg.defaults()
	ctx, cancel := context.WithCancel(ctx)
	s := &Supervisor{
		cfg:    cfg,
		cell:   cell,
		ready:  make(chan struct{}),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

// Ready is closed once the server is connected for the first time or has
// crashed for good, whichever comes first.
func (s *Supervisor) Ready() <-chan struct{} { return s.ready }

// Done is closed when the supervisor stopped, by Stop or by a crash.
func (s *Supervisor) Done() <-chan struct{} { return s.done }

// Handshake returns the latest handshake answer.
func (s *Supervisor) Handshake() (v2.HandshakeResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hs, s.hs.Fingerprint != "" || s.hs.ServerVersion != ""
}

// Restarts returns how many restarts have been spent.
func (s *Supervisor) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// Err returns ErrCrashed wrapping the last failure, or nil.
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop shuts the server down and waits for the supervisor to exit.
// The cell keeps its last status.
func (s *Supervisor) Stop() {
	s.cancel()
	<-s.done
}

func (s *Supervisor) markReady() { s.readyOne.Do(func() { close(s.ready) }) }

func (s *Supervisor) run(ctx context.Context) {
	defer close(s.done)
	defer s.markReady()

	tr := s.cfg.Tracer
	session := trace.Begin(tr, trace.ScopeProcess, "server", 0)
	defer session.End("")

	for attempt := 0; ; attempt++ {
		c, err := s.connect(ctx, session.ID(), attempt)
		if err == nil {
			s.cell.Set(status.Connected(c))
			s.markReady()
			select {
			case <-ctx.Done():
				_ = c.Close()
				return
			case <-c.Done():
				err = c.Err()
			}
		}
		if ctx.Err() != nil {
			return
		}
		trace.Fail(tr, trace.ScopeProcess, "server:lost", err)

		s.mu.Lock()
		exhausted := s.restarts >= s.cfg.MaxRestarts
		if !exhausted {
			s.restarts++
		}
		s.mu.Unlock()
		if exhausted {
			s.crash(err)
			return
		}

		delay := s.backoff(attempt)
		trace.Point(tr, trace.ScopeProcess, "server:restart", "in "+delay.String())
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (s *Supervisor) connect(ctx context.Context, parent uint64, attempt int) (*client.Client, error) {
	sp := trace.Begin(s.cfg.Tracer, trace.ScopeProcess, "spawn", parent).
		WithExtra("attempt", strconv.Itoa(attempt))
	conn, err := s.cfg.Dial(ctx)
	if err != nil {
		sp.End("dial failed")
		return nil, fmt.Errorf("dial: %w", err)
	}
	c := client.New(conn)

	hctx, cancel := context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
	defer cancel()
	hs, err := c.Handshake(hctx, v2.HandshakeParams{
		ClientVersion: s.cfg.ClientVersion,
		Protocols:     []uint8{1, 2},
	})
	if err != nil {
		_ = c.Close()
		sp.End("handshake failed")
		return nil, fmt.Errorf("handshake: %w", err)
	}
	s.mu.Lock()
	s.hs = hs
	s.mu.Unlock()
	sp.WithExtra("server", hs.ServerVersion).End("connected")
	return c, nil
}

func (s *Supervisor) backoff(attempt int) time.Duration {
	d := s.cfg.Backoff
	for range attempt {
		d *= 2
		if d >= s.cfg.MaxBackoff {
			return s.cfg.MaxBackoff
		}
	}
	return d
}

// crash publishes the terminal status and dumps recent trace history.
func (s *Supervisor) crash(cause error) {
	if cause == nil {
		cause = errors.New("connection lost")
	}
	s.mu.Lock()
	s.err = fmt.Errorf("%w: %w", ErrCrashed, cause)
	s.mu.Unlock()

	s.cell.Set(status.Crashed())
	trace.Fail(s.cfg.Tracer, trace.ScopeProcess, "server:crashed", s.err)
	if s.cfg.CrashDump == nil {
		return
	}
	if ring, ok := trace.RingOf(s.cfg.Tracer); ok {
		_ = ring.Dump(s.cfg.CrashDump, trace.FormatText)
	}
}
