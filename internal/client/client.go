package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrClosed is returned by calls on a connection that is gone.
var ErrClosed = errors.New("macro server connection closed")

// Client is a live connection to a macro server.
type Client struct {
	conn   io.ReadWriteCloser
	writes chan outgoing

	mu      sync.Mutex
	pending map[uint64]chan Response
	nextID  atomic.Uint64

	done     chan struct{}
	failOnce sync.Once
	err      error
}

// outgoing is a request waiting for the writer; sent gets the write result.
type outgoing struct {
	req  Request
	sent chan error
}

// New starts serving conn. The Client owns conn from now on.
func New(conn io.ReadWriteCloser) *Client {
	c := &Client{
		conn:    conn,
		writes:  make(chan outgoing),
		pending: make(map[uint64]chan Response),
		done:    make(chan struct{}),
	}
	go c.readLoop(msgpack.NewDecoder(conn))
	go c.writeLoop(msgpack.NewEncoder(conn))
	return c
}

// writeLoop is the only writer of conn.
func (c *Client) writeLoop(enc *msgpack.Encoder) {
	for {
		select {
		case w := <-c.writes:
			err := enc.Encode(w.req)
			w.sent <- err
			if err != nil {
				c.fail(fmt.Errorf("write request: %w", err))
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) readLoop(dec *msgpack.Decoder) {
	for {
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			c.fail(fmt.Errorf("read response: %w", err))
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
		// ответы на отменённые запросы просто выбрасываем
	}
}

// fail tears the connection down once; later causes are ignored.
func (c *Client) fail(cause error) {
	c.failOnce.Do(func() {
		c.mu.Lock()
		c.err = cause
		c.mu.Unlock()
		close(c.done)
		_ = c.conn.Close()
	})
}

// Done is closed when the connection is gone.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns why the connection is gone, or nil while it is alive.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close shuts the connection down. In-flight calls fail with ErrClosed.
func (c *Client) Close() error {
	c.fail(ErrClosed)
	return nil
}

// Call sends method with params and decodes the answer into out.
// out may be nil when the result is not needed.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	raw, err := msgpack.Marshal(params)
	if err != nil {
		return fmt.Errorf("%s: encode params: %w", method, err)
	}

	id := c.nextID.Add(1)
	ch := make(chan Response, 1)

	select {
	case <-c.done:
		return c.closedErr(method)
	default:
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	// сервер, переставший читать stdin, не должен держать вызов дольше ctx
	w := outgoing{req: Request{ID: id, Method: method, Params: raw}, sent: make(chan error, 1)}
	select {
	case c.writes <- w:
	case <-c.done:
		return c.closedErr(method)
	case <-ctx.Done():
		// the writer is busy with another caller; that caller owns the stall
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
	select {
	case err := <-w.sent:
		if err != nil {
			return c.closedErr(method)
		}
	case <-c.done:
		return c.closedErr(method)
	case <-ctx.Done():
		select {
		case err := <-w.sent:
			if err != nil {
				return c.closedErr(method)
			}
			return fmt.Errorf("%s: %w", method, ctx.Err())
		default:
			return c.stalled(method, ctx.Err())
		}
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return &RemoteError{Method: method, Message: resp.Error}
		}
		if out == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := msgpack.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
		return nil
	case <-c.done:
		return c.closedErr(method)
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

// stalled drops a connection whose writer could not take a request before
// the caller gave up; the server is no longer reading.
func (c *Client) stalled(method string, cause error) error {
	c.fail(fmt.Errorf("write %s: server stopped reading: %w", method, cause))
	return fmt.Errorf("%s: %w", method, cause)
}

func (c *Client) closedErr(method string) error {
	if cause := c.Err(); cause != nil && !errors.Is(cause, ErrClosed) {
		return fmt.Errorf("%s: %w (%v)", method, ErrClosed, cause)
	}
	return fmt.Errorf("%s: %w", method, ErrClosed)
}
