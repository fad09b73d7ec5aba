package client

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Request is one call on the wire.
type Request struct {
	ID     uint64             `msgpack:"id"`
	Method string             `msgpack:"method"`
	Params msgpack.RawMessage `msgpack:"params"`
}

// Response answers the request with the same ID. Exactly one of Result and
// Error is meaningful.
type Response struct {
	ID     uint64             `msgpack:"id"`
	Result msgpack.RawMessage `msgpack:"result,omitempty"`
	Error  string             `msgpack:"error,omitempty"`
}

// RemoteError is an error reported by the server for a single request.
// The connection stays usable.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: server error: %s", e.Method, e.Message)
}
