package testkit

import (
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"macrobridge/internal/protocol/v1"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/source"
)

// Fingerprint is what MacroServer reports in the handshake.
const Fingerprint = "testkit-fingerprint"

// MacroServer returns a server that knows the given catalogue and expands
// macros deterministically:
//
//	attribute: "// <attr><args>\n" followed by the item
//	derive:    one "impl <Name> for item;\n" line per derive
//	inline:    "<name>_expanded<args>"
//
// Both protocol generations are served.
func MacroServer(defs v2.DefinedMacros) *Server {
	s := NewServer()
	s.Handle(v2.MethodHandshake, func(msgpack.RawMessage) (any, error) {
		return v2.HandshakeResult{ServerVersion: "testkit", Fingerprint: Fingerprint}, nil
	})
	s.Handle(v2.MethodDefinedMacros, func(msgpack.RawMessage) (any, error) {
		return defs, nil
	})

	s.Handle(v2.MethodExpandAttribute, func(raw msgpack.RawMessage) (any, error) {
		p, err := Decode[v2.ExpandAttributeParams](raw)
		if err != nil {
			return nil, err
		}
		return textResult("// " + p.Attr + p.Args.String() + "\n" + p.Item.String()), nil
	})
	s.Handle(v2.MethodExpandDerive, func(raw msgpack.RawMessage) (any, error) {
		p, err := Decode[v2.ExpandDeriveParams](raw)
		if err != nil {
			return nil, err
		}
		return textResult(deriveText(p.Derives)), nil
	})
	s.Handle(v2.MethodExpandInline, func(raw msgpack.RawMessage) (any, error) {
		p, err := Decode[v2.ExpandInlineParams](raw)
		if err != nil {
			return nil, err
		}
		return textResult(p.Name + "_expanded" + p.Args.String()), nil
	})

	s.Handle(v1.MethodExpandAttribute, func(raw msgpack.RawMessage) (any, error) {
		p, err := Decode[v1.ExpandAttributeParams](raw)
		if err != nil {
			return nil, err
		}
		return v1.Result{TokenStream: v1.TokenStream{Value: "// " + p.Attr + p.Args.Value + "\n" + p.Item.Value}}, nil
	})
	s.Handle(v1.MethodExpandDerive, func(raw msgpack.RawMessage) (any, error) {
		p, err := Decode[v1.ExpandDeriveParams](raw)
		if err != nil {
			return nil, err
		}
		return v1.Result{TokenStream: v1.TokenStream{Value: deriveText(p.Derives)}}, nil
	})
	s.Handle(v1.MethodExpandInline, func(raw msgpack.RawMessage) (any, error) {
		p, err := Decode[v1.ExpandInlineParams](raw)
		if err != nil {
			return nil, err
		}
		return v1.Result{TokenStream: v1.TokenStream{Value: p.Name + "_expanded" + p.Args.Value}}, nil
	})
	return s
}

func deriveText(derives []string) string {
	var sb strings.Builder
	for _, d := range derives {
		sb.WriteString("impl " + d + " for item;\n")
	}
	return sb.String()
}

// textResult wraps text as a single-token stream without code mappings.
func textResult(text string) v2.Result {
	if text == "" {
		return v2.Result{}
	}
	n := uint32(source.WidthOf(text))
	return v2.Result{TokenStream: v2.TokenStream{Tokens: []v2.TokenTree{{
		Ident: v2.Token{Content: text, Span: v2.TextSpan{Start: 0, End: n}},
	}}}}
}
