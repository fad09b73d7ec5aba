// Package testkit provides an in-process macro server for tests.
package testkit

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"macrobridge/internal/client"
)

// Handler answers one request. The returned value is msgpack-encoded.
type Handler func(params msgpack.RawMessage) (any, error)

// Call is a request the server received.
type Call struct {
	Method string
	Params msgpack.RawMessage
}

// Server dispatches requests to handlers registered by method name.
// Each request runs in its own goroutine, so answers may come out of order.
type Server struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	conns    []io.Closer
}

func NewServer() *Server {
	return &Server{handlers: make(map[string]Handler)}
}

// Handle registers h for method, replacing any earlier handler.
func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Calls returns the requests received so far, in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many times method was called.
func (s *Server) Count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Kill drops every connection, as if the server process died.
func (s *Server) Kill() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

// Serve answers requests on conn until it is closed.
func (s *Server) Serve(conn io.ReadWriteCloser) error {
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	dec := msgpack.NewDecoder(conn)
	enc := msgpack.NewEncoder(conn)
	var encMu sync.Mutex
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		var req client.Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: req.Method, Params: req.Params})
		h := s.handlers[req.Method]
		s.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := answer(req, h)
			encMu.Lock()
			defer encMu.Unlock()
			_ = enc.Encode(resp)
		}()
	}
}

func answer(req client.Request, h Handler) client.Response {
	resp := client.Response{ID: req.ID}
	if h == nil {
		resp.Error = fmt.Sprintf("unknown method %q", req.Method)
		return resp
	}
	out, err := h(req.Params)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	raw, err := msgpack.Marshal(out)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Result = raw
	return resp
}

// Conn returns the client end of a fresh in-memory pipe served by s.
func (s *Server) Conn() io.ReadWriteCloser {
	srv, cli := net.Pipe()
	go func() { _ = s.Serve(srv) }()
	return cli
}

// Dial connects a fresh client to s.
func (s *Server) Dial() *client.Client {
	return client.New(s.Conn())
}

// Connect is Dial with cleanup registered on t.
func Connect(t testing.TB, s *Server) *client.Client {
	t.Helper()
	c := s.Dial()
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Decode unmarshals params or fails the handler.
func Decode[T any](params msgpack.RawMessage) (T, error) {
	var v T
	if err := msgpack.Unmarshal(params, &v); err != nil {
		return v, fmt.Errorf("decode params: %w", err)
	}
	return v, nil
}
