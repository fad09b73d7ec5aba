// Package v2 holds the second-generation macro protocol: token streams
// carry per-token spans and results carry code mappings.
package v2

import "strings"

const (
	MethodHandshake       = "handshake"
	MethodDefinedMacros   = "definedMacros"
	MethodExpandAttribute = "v2/expandAttribute"
	MethodExpandDerive    = "v2/expandDerive"
	MethodExpandInline    = "v2/expandInline"
)

// TextSpan is a zero-based half-open byte range.
type TextSpan struct {
	Start uint32 `msgpack:"start"`
	End   uint32 `msgpack:"end"`
}

type Token struct {
	Content string   `msgpack:"content"`
	Span    TextSpan `msgpack:"span"`
}

// TokenTree is a single token; groups are flattened by the host.
type TokenTree struct {
	Ident Token `msgpack:"ident"`
}

type TokenStreamMetadata struct {
	OriginalFilePath string `msgpack:"original_file_path,omitempty"`
	FileID           string `msgpack:"file_id,omitempty"`
	Edition          string `msgpack:"edition,omitempty"`
}

type TokenStream struct {
	Tokens   []TokenTree         `msgpack:"tokens"`
	Metadata TokenStreamMetadata `msgpack:"metadata"`
}

// String renders the stream as source text.
func (ts TokenStream) String() string {
	var sb strings.Builder
	for _, tt := range ts.Tokens {
		sb.WriteString(tt.Ident.Content)
	}
	return sb.String()
}

// IsEmpty reports whether the stream renders to nothing.
func (ts TokenStream) IsEmpty() bool {
	for _, tt := range ts.Tokens {
		if tt.Ident.Content != "" {
			return false
		}
	}
	return true
}

type Severity uint8

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
	SeverityInfo    Severity = 3
)

type Diagnostic struct {
	Message  string    `msgpack:"message"`
	Severity Severity  `msgpack:"severity"`
	Span     *TextSpan `msgpack:"span,omitempty"`
}

type OriginKind uint8

const (
	OriginStart    OriginKind = 1
	OriginSpan     OriginKind = 2
	OriginCallSite OriginKind = 3
)

// CodeOrigin is a tagged union: Start uses Offset, Span and CallSite use Span.
type CodeOrigin struct {
	Kind   OriginKind `msgpack:"kind"`
	Offset uint32     `msgpack:"offset,omitempty"`
	Span   TextSpan   `msgpack:"span"`
}

func StartOrigin(offset uint32) CodeOrigin { return CodeOrigin{Kind: OriginStart, Offset: offset} }
func SpanOrigin(span TextSpan) CodeOrigin { return CodeOrigin{Kind: OriginSpan, Span: span} }
func CallSiteOrigin(span TextSpan) CodeOrigin {
	return CodeOrigin{Kind: OriginCallSite, Span: span}
}

type CodeMapping struct {
	Span   TextSpan   `msgpack:"span"`
	Origin CodeOrigin `msgpack:"origin"`
}

// ProcMacroScope is an opaque token locating a request within the
// project (workspace, compilation unit, component).
type ProcMacroScope struct {
	Component string `msgpack:"component"`
}

type ExpandAttributeParams struct {
	Context  ProcMacroScope `msgpack:"context"`
	Attr     string         `msgpack:"attr"`
	Args     TokenStream    `msgpack:"args"`
	Item     TokenStream    `msgpack:"item"`
	CallSite TextSpan       `msgpack:"call_site"`
}

type ExpandDeriveParams struct {
	Context  ProcMacroScope `msgpack:"context"`
	Derives  []string       `msgpack:"derives"`
	Item     TokenStream    `msgpack:"item"`
	CallSite TextSpan       `msgpack:"call_site"`
}

type ExpandInlineParams struct {
	Context  ProcMacroScope `msgpack:"context"`
	Name     string         `msgpack:"name"`
	Args     TokenStream    `msgpack:"args"`
	CallSite TextSpan       `msgpack:"call_site"`
}

// Result is the server answer to any expand request.
// Empty CodeMappings means the server did not report any.
type Result struct {
	TokenStream  TokenStream   `msgpack:"token_stream"`
	Diagnostics  []Diagnostic  `msgpack:"diagnostics"`
	CodeMappings []CodeMapping `msgpack:"code_mappings,omitempty"`
}

type HandshakeParams struct {
	ClientVersion string  `msgpack:"client_version"`
	Protocols     []uint8 `msgpack:"protocols"`
}

type HandshakeResult struct {
	ServerVersion string `msgpack:"server_version"`
	// Fingerprint changes whenever the set of loaded macro binaries changes.
	Fingerprint string `msgpack:"fingerprint"`
}

type DefinedMacrosParams struct{}

// PackageMacros lists what one package declares.
type PackageMacros struct {
	Package      string   `msgpack:"package"`
	Attributes   []string `msgpack:"attributes"`
	Derives      []string `msgpack:"derives"`
	InlineMacros []string `msgpack:"inline_macros"`
	Executables  []string `msgpack:"executables"`
	Protocol     uint8    `msgpack:"protocol"`
}

type DefinedMacros struct {
	Macros []PackageMacros `msgpack:"macros"`
}
