// Package protocol groups the wire types of the two macro-protocol
// generations spoken by the expansion server.
//
//   - v1: token streams are plain text; results carry no positions.
//   - v2: token streams are token lists with spans; results carry code
//     mappings and diagnostics may point at precise spans.
//
// A package's catalogue entry selects its generation. The server accepts
// both at the same time, distinguished by method name. Both families are
// encoded with msgpack; byte framing belongs to the transport.
package protocol

// Generation identifies a macro-protocol generation.
type Generation uint8

const (
	V1 Generation = 1
	V2 Generation = 2
)

func (g Generation) String() string {
	switch g {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return "unknown"
	}
}

// Valid reports whether g is a known generation.
func (g Generation) Valid() bool {
	return g == V1 || g == V2
}
