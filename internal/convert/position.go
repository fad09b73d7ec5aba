package convert

import (
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/source"
	"macrobridge/internal/syntax"
)

// Offset converts a wire offset into a host offset.
func Offset(off uint32) source.TextOffset {
	return source.StartOffset.AddWidth(source.TextWidth(off))
}

// WireOffset is the inverse of Offset.
func WireOffset(off source.TextOffset) uint32 {
	return uint32(off.Width())
}

// Span converts a wire span into a host span.
func Span(sp v2.TextSpan) source.TextSpan {
	return source.TextSpan{Start: Offset(sp.Start), End: Offset(sp.End)}
}

// WireSpan is the inverse of Span.
func WireSpan(sp source.TextSpan) v2.TextSpan {
	return v2.TextSpan{Start: WireOffset(sp.Start), End: WireOffset(sp.End)}
}

// Origin converts a wire origin, keeping its tag. It reports false for a
// tag this host does not know.
func Origin(o v2.CodeOrigin) (source.CodeOrigin, bool) {
	switch o.Kind {
	case v2.OriginStart:
		return source.OriginStart(Offset(o.Offset)), true
	case v2.OriginSpan:
		return source.OriginSpan(Span(o.Span)), true
	case v2.OriginCallSite:
		return source.OriginCallSite(Span(o.Span)), true
	default:
		return source.CodeOrigin{}, false
	}
}

// Mapping converts a single wire code mapping.
func Mapping(m v2.CodeMapping) (source.CodeMapping, bool) {
	origin, ok := Origin(m.Origin)
	if !ok || m.Span.End < m.Span.Start {
		return source.CodeMapping{}, false
	}
	return source.CodeMapping{Span: Span(m.Span), Origin: origin}, true
}

// Mappings converts wire mappings, skipping malformed entries.
// dropped counts the skipped ones.
func Mappings(ms []v2.CodeMapping) (out []source.CodeMapping, dropped int) {
	out = make([]source.CodeMapping, 0, len(ms))
	for _, m := range ms {
		cm, ok := Mapping(m)
		if !ok {
			dropped++
			continue
		}
		out = append(out, cm)
	}
	return out, dropped
}

// WholeOutputMapping maps all of generated to the call site; used when
// the server reports no mappings of its own.
func WholeOutputMapping(generated string, callSite source.TextSpan) []source.CodeMapping {
	return []source.CodeMapping{{
		Span:   source.SpanOf(source.StartOffset, generated),
		Origin: source.OriginCallSite(callSite),
	}}
}

// CallSite is where a macro was invoked.
type CallSite struct {
	Ptr  syntax.StablePtr
	Span source.TextSpan
}

// CallSiteOf captures the invocation site of n. Adapters must use it
// rather than computing spans themselves.
func CallSiteOf(n syntax.Node) CallSite {
	return CallSite{Ptr: n.Ptr, Span: n.SpanWithoutTrivia()}
}

// Wire returns the call site span in wire form.
func (c CallSite) Wire() v2.TextSpan {
	return WireSpan(c.Span)
}

// Primary returns the call site as a diagnostic span.
func (c CallSite) Primary() source.Span {
	return source.SpanIn(c.Ptr.File, c.Span)
}
