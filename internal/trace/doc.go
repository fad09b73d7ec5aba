// Package trace records what the bridge did with the expansion server.
//
// Sinks: Nop when tracing is off, StreamTracer for live output and
// RingTracer, which keeps recent events and is dumped to stderr when the
// server is declared crashed. New combines them according to Config.
//
// Scopes, coarse to fine:
//
//   - ScopeSession: catalogue loads, suite builds
//   - ScopeProcess: spawn, handshake, crash, restart
//   - ScopeRequest: one expansion round trip
//
// Usage:
//
//	sp := trace.Begin(t, trace.ScopeRequest, "expand:derive", 0)
//	defer sp.End("")
package trace
