// Package client talks to a procedural-macro server.
//
// Messages are msgpack values written back to back on a single duplex
// stream. Every request carries an id; the server answers with the same id,
// in any order. One reader goroutine dispatches responses to the waiting
// callers, so a Client may be shared by any number of goroutines.
package client
