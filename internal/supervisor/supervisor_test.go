package supervisor_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/status"
	"macrobridge/internal/supervisor"
	"macrobridge/internal/testkit"
	"macrobridge/internal/trace"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func pipeDialer(srv *testkit.Server) supervisor.Dialer {
	return func(context.Context) (io.ReadWriteCloser, error) { return srv.Conn(), nil }
}

func TestSupervisor_ConnectsAndHandshakes(t *testing.T) {
	srv := testkit.MacroServer(v2.DefinedMacros{})
	var cell status.Cell
	s := supervisor.Start(context.Background(), supervisor.Config{Dial: pipeDialer(srv)}, &cell)
	defer s.Stop()

	<-s.Ready()
	if _, ok := cell.Load().Connected(); !ok {
		t.Fatalf("status = %v, want connected", cell.Load())
	}
	hs, ok := s.Handshake()
	if !ok || hs.Fingerprint != testkit.Fingerprint {
		t.Fatalf("handshake = %+v, %v", hs, ok)
	}
}

func TestSupervisor_RestartsWithinBudget(t *testing.T) {
	srv := testkit.MacroServer(v2.DefinedMacros{})
	var cell status.Cell
	s := supervisor.Start(context.Background(), supervisor.Config{
		Dial:        pipeDialer(srv),
		MaxRestarts: 2,
		Backoff:     time.Millisecond,
	}, &cell)
	defer s.Stop()
	<-s.Ready()
	first, _ := cell.Load().Connected()

	srv.Kill()
	waitFor(t, "restart", func() bool {
		c, ok := cell.Load().Connected()
		return ok && c != first
	})
	if s.Restarts() != 1 {
		t.Fatalf("restarts = %d", s.Restarts())
	}
}

func TestSupervisor_CrashesWhenBudgetExhausted(t *testing.T) {
	var dials atomic.Int32
	dial := func(context.Context) (io.ReadWriteCloser, error) {
		dials.Add(1)
		return nil, errors.New("no such binary")
	}
	var cell status.Cell
	s := supervisor.Start(context.Background(), supervisor.Config{
		Dial:        dial,
		MaxRestarts: 2,
		Backoff:     time.Millisecond,
	}, &cell)

	<-s.Done()
	if !cell.Load().IsCrashed() {
		t.Fatalf("status = %v, want crashed", cell.Load())
	}
	if got := dials.Load(); got != 3 {
		t.Fatalf("dialed %d times, want 3", got)
	}
	if !errors.Is(s.Err(), supervisor.ErrCrashed) {
		t.Fatalf("Err() = %v", s.Err())
	}
	select {
	case <-s.Ready():
	default:
		t.Fatalf("Ready must be closed after a crash")
	}
}

func TestSupervisor_HandshakeFailureCountsAgainstBudget(t *testing.T) {
	srv := testkit.NewServer() // no handshake handler
	var cell status.Cell
	s := supervisor.Start(context.Background(), supervisor.Config{Dial: pipeDialer(srv)}, &cell)
	<-s.Done()
	if !cell.Load().IsCrashed() {
		t.Fatalf("status = %v", cell.Load())
	}
}

func TestSupervisor_StopKeepsStatus(t *testing.T) {
	srv := testkit.MacroServer(v2.DefinedMacros{})
	var cell status.Cell
	s := supervisor.Start(context.Background(), supervisor.Config{Dial: pipeDialer(srv)}, &cell)
	<-s.Ready()
	s.Stop()
	c, ok := cell.Load().Connected()
	if !ok {
		t.Fatalf("status = %v", cell.Load())
	}
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatalf("client not closed by Stop")
	}
}

// TestHelperProcess is not a real test; the exec dialer test runs it as the server.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("MACROBRIDGE_HELPER_SERVER") != "1" {
		return
	}
	srv := testkit.MacroServer(v2.DefinedMacros{Macros: []v2.PackageMacros{{Package: "helper", Derives: []string{"D"}, Protocol: 2}}})
	_ = srv.Serve(stdio{})
	os.Exit(0)
}

type stdio struct{}

func (stdio) Read(b []byte) (int, error)  { return os.Stdin.Read(b) }
func (stdio) Write(b []byte) (int, error) { return os.Stdout.Write(b) }
func (stdio) Close() error                { return os.Stdin.Close() }

func TestExecDialer(t *testing.T) {
	dial := supervisor.ExecDialer(supervisor.Command{
		Path: os.Args[0],
		Args: []string{"-test.run=^TestHelperProcess$"},
		Env:  []string{"MACROBRIDGE_HELPER_SERVER=1"},
	})
	var cell status.Cell
	s := supervisor.Start(context.Background(), supervisor.Config{Dial: dial}, &cell)
	defer s.Stop()
	<-s.Ready()

	c, ok := cell.Load().Connected()
	if !ok {
		t.Fatalf("status = %v (err %v)", cell.Load(), s.Err())
	}
	defs, err := c.DefinedMacros(context.Background())
	if err != nil {
		t.Fatalf("DefinedMacros: %v", err)
	}
	if len(defs.Macros) != 1 || defs.Macros[0].Package != "helper" {
		t.Fatalf("catalogue = %+v", defs)
	}
}

func TestSupervisor_CrashDumpsTraceRing(t *testing.T) {
	dial := func(context.Context) (io.ReadWriteCloser, error) { return nil, errors.New("no such binary") }
	ring := trace.NewRingTracer(64, trace.LevelProcess)

	var dump bytes.Buffer
	s := supervisor.Start(context.Background(), supervisor.Config{
		Dial:      dial,
		Backoff:   time.Millisecond,
		Tracer:    ring,
		CrashDump: &dump,
	}, new(status.Cell))
	<-s.Done()
	for _, want := range []string{"process:spawn", "! process:server:crashed"} {
		if !strings.Contains(dump.String(), want) {
			t.Errorf("dump lacks %q:\n%s", want, dump.String())
		}
	}

	// без CrashDump кольцо никуда не пишется
	quiet := supervisor.Start(context.Background(), supervisor.Config{Dial: dial, Tracer: ring}, new(status.Cell))
	<-quiet.Done()
	if !errors.Is(quiet.Err(), supervisor.ErrCrashed) {
		t.Fatalf("Err() = %v", quiet.Err())
	}
}
