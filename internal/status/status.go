// Package status tracks whether the macro server can be used right now.
package status

import (
	"sync/atomic"

	"macrobridge/internal/client"
)

type state uint8

const (
	statePending state = iota
	stateConnected
	stateCrashed
)

// Status is an immutable snapshot of the server connection.
// The zero value is Pending.
type Status struct {
	state  state
	client *client.Client
}

// Pending means the server is still starting.
func Pending() Status { return Status{state: statePending} }

// Connected carries a live client handle. A nil client is a programming error.
func Connected(c *client.Client) Status {
	if c == nil {
		panic("status: Connected with nil client")
	}
	return Status{state: stateConnected, client: c}
}

// Crashed means the server is gone for good.
func Crashed() Status { return Status{state: stateCrashed} }

func (s Status) IsPending() bool { return s.state == statePending }
func (s Status) IsCrashed() bool { return s.state == stateCrashed }

// Connected returns the client when the server is ready.
func (s Status) Connected() (*client.Client, bool) {
	if s.state != stateConnected {
		return nil, false
	}
	return s.client, true
}

func (s Status) String() string {
	switch s.state {
	case statePending:
		return "pending"
	case stateConnected:
		return "connected"
	default:
		return "crashed"
	}
}

// Cell publishes the current Status to concurrent readers.
// Transitions: Pending → Connected, Connected → Connected (restart),
// Pending|Connected → Crashed. Crashed is terminal and nothing goes back
// to Pending.
type Cell struct {
	p atomic.Pointer[Status]
}

// Load returns the current snapshot; Pending if nothing was stored.
func (c *Cell) Load() Status {
	if s := c.p.Load(); s != nil {
		return *s
	}
	return Pending()
}

// Set stores s and reports whether it took effect.
func (c *Cell) Set(s Status) bool {
	next := &s
	for {
		cur := c.p.Load()
		if cur != nil && (cur.IsCrashed() || s.IsPending()) {
			return false
		}
		if c.p.CompareAndSwap(cur, next) {
			return true
		}
	}
}
