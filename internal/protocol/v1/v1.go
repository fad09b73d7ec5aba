// Package v1 holds the first-generation macro protocol: token streams are
// opaque text and results carry no position information.
package v1

const (
	MethodExpandAttribute = "v1/expandAttribute"
	MethodExpandDerive    = "v1/expandDerive"
	MethodExpandInline    = "v1/expandInline"
)

// TokenStreamMetadata identifies where a stream was taken from.
type TokenStreamMetadata struct {
	OriginalFilePath string `msgpack:"original_file_path,omitempty"`
	FileID           string `msgpack:"file_id,omitempty"`
}

// TokenStream is source text handed to a macro.
type TokenStream struct {
	Value    string              `msgpack:"value"`
	Metadata TokenStreamMetadata `msgpack:"metadata"`
}

func (ts TokenStream) String() string { return ts.Value }

type Severity uint8

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

type Diagnostic struct {
	Message  string   `msgpack:"message"`
	Severity Severity `msgpack:"severity"`
}

// ProcMacroScope locates a request within the project.
type ProcMacroScope struct {
	Component string `msgpack:"component"`
}

type ExpandAttributeParams struct {
	Context ProcMacroScope `msgpack:"context"`
	Attr    string         `msgpack:"attr"`
	Args    TokenStream    `msgpack:"args"`
	Item    TokenStream    `msgpack:"item"`
}

type ExpandDeriveParams struct {
	Context ProcMacroScope `msgpack:"context"`
	Derives []string       `msgpack:"derives"`
	Item    TokenStream    `msgpack:"item"`
}

type ExpandInlineParams struct {
	Context ProcMacroScope `msgpack:"context"`
	Name    string         `msgpack:"name"`
	Args    TokenStream    `msgpack:"args"`
}

// Result is the server answer to any expand request.
type Result struct {
	TokenStream TokenStream  `msgpack:"token_stream"`
	Diagnostics []Diagnostic `msgpack:"diagnostics"`
}
