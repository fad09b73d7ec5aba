package source

import "fmt"

// OriginKind tells which case of CodeOrigin was selected.
type OriginKind uint8

const (
	// OriginKindStart maps generated text to original text starting at an offset.
	OriginKindStart OriginKind = iota + 1
	// OriginKindSpan maps generated text to a fixed original span.
	OriginKindSpan
	// OriginKindCallSite maps generated text to the macro call site.
	OriginKindCallSite
)

func (k OriginKind) String() string {
	switch k {
	case OriginKindStart:
		return "start"
	case OriginKindSpan:
		return "span"
	case OriginKindCallSite:
		return "call_site"
	default:
		return "unknown"
	}
}

// CodeOrigin says where a piece of generated code came from.
// It is a tagged union; the zero value is invalid.
type CodeOrigin struct {
	kind  OriginKind
	start TextOffset
	span  TextSpan
}

// OriginStart maps generated text onto original text beginning at off.
func OriginStart(off TextOffset) CodeOrigin {
	return CodeOrigin{kind: OriginKindStart, start: off}
}

// OriginSpan maps generated text onto a caller-chosen span.
func OriginSpan(span TextSpan) CodeOrigin {
	return CodeOrigin{kind: OriginKindSpan, span: span}
}

// OriginCallSite maps generated text onto the macro call site.
func OriginCallSite(span TextSpan) CodeOrigin {
	return CodeOrigin{kind: OriginKindCallSite, span: span}
}

func (o CodeOrigin) Kind() OriginKind { return o.kind }

// Start returns the offset of a Start origin.
func (o CodeOrigin) Start() (TextOffset, bool) {
	if o.kind != OriginKindStart {
		return TextOffset{}, false
	}
	return o.start, true
}

// Span returns the span of a Span or CallSite origin.
func (o CodeOrigin) Span() (TextSpan, bool) {
	if o.kind != OriginKindSpan && o.kind != OriginKindCallSite {
		return TextSpan{}, false
	}
	return o.span, true
}

func (o CodeOrigin) String() string {
	switch o.kind {
	case OriginKindStart:
		return fmt.Sprintf("start(%s)", o.start)
	case OriginKindSpan, OriginKindCallSite:
		return fmt.Sprintf("%s(%s)", o.kind, o.span)
	default:
		return "invalid"
	}
}

// CodeMapping ties a span of generated text to its origin.
type CodeMapping struct {
	Span   TextSpan
	Origin CodeOrigin
}

// Translate maps a span inside the generated text back to the original source.
// Returns false when span is inverted or not covered by this mapping.
func (m CodeMapping) Translate(span TextSpan) (TextSpan, bool) {
	if span.End.width < span.Start.width || !m.Span.Contains(span) {
		return TextSpan{}, false
	}
	switch m.Origin.kind {
	case OriginKindStart:
		start := m.Origin.start.AddWidth(span.Start.Sub(m.Span.Start))
		return TextSpan{Start: start, End: start.AddWidth(span.Width())}, true
	case OriginKindSpan, OriginKindCallSite:
		return m.Origin.span, true
	default:
		return TextSpan{}, false
	}
}

// TranslateSpan looks span up in mappings. Precise mappings win over call-site ones.
func TranslateSpan(mappings []CodeMapping, span TextSpan) (TextSpan, bool) {
	var fallback TextSpan
	haveFallback := false
	for _, m := range mappings {
		out, ok := m.Translate(span)
		if !ok {
			continue
		}
		if m.Origin.kind != OriginKindCallSite {
			return out, true
		}
		if !haveFallback {
			fallback, haveFallback = out, true
		}
	}
	return fallback, haveFallback
}
