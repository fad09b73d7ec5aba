package source

import "testing"

func TestCodeOrigin_Kinds(t *testing.T) {
	span := TextSpan{OffsetAt(1), OffsetAt(4)}

	start := OriginStart(OffsetAt(7))
	if start.Kind() != OriginKindStart {
		t.Fatalf("kind = %v", start.Kind())
	}
	if off, ok := start.Start(); !ok || off != OffsetAt(7) {
		t.Fatalf("Start() = %v, %v", off, ok)
	}
	if _, ok := start.Span(); ok {
		t.Fatalf("start origin must not expose a span")
	}

	callSite := OriginCallSite(span)
	if callSite.Kind() != OriginKindCallSite {
		t.Fatalf("kind = %v, want call_site", callSite.Kind())
	}
	if got, ok := callSite.Span(); !ok || got != span {
		t.Fatalf("Span() = %v, %v", got, ok)
	}
	if OriginSpan(span) == callSite {
		t.Fatalf("span and call-site origins must differ")
	}
}

func TestCodeMapping_Translate(t *testing.T) {
	gen := TextSpan{OffsetAt(10), OffsetAt(20)}
	tests := []struct {
		name   string
		origin CodeOrigin
		in     TextSpan
		want   TextSpan
		ok     bool
	}{
		{
			name:   "start shifts",
			origin: OriginStart(OffsetAt(100)),
			in:     TextSpan{OffsetAt(12), OffsetAt(15)},
			want:   TextSpan{OffsetAt(102), OffsetAt(105)},
			ok:     true,
		},
		{
			name:   "span is fixed",
			origin: OriginSpan(TextSpan{OffsetAt(1), OffsetAt(2)}),
			in:     TextSpan{OffsetAt(12), OffsetAt(15)},
			want:   TextSpan{OffsetAt(1), OffsetAt(2)},
			ok:     true,
		},
		{
			name:   "outside",
			origin: OriginStart(OffsetAt(100)),
			in:     TextSpan{OffsetAt(18), OffsetAt(25)},
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CodeMapping{Span: gen, Origin: tt.origin}.Translate(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Translate() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTranslateSpan_PrefersPreciseMapping(t *testing.T) {
	callSite := TextSpan{OffsetAt(50), OffsetAt(60)}
	mappings := []CodeMapping{
		{Span: TextSpan{OffsetAt(0), OffsetAt(30)}, Origin: OriginCallSite(callSite)},
		{Span: TextSpan{OffsetAt(5), OffsetAt(10)}, Origin: OriginStart(OffsetAt(200))},
	}
	got, ok := TranslateSpan(mappings, TextSpan{OffsetAt(6), OffsetAt(7)})
	if !ok || got != (TextSpan{OffsetAt(201), OffsetAt(202)}) {
		t.Fatalf("TranslateSpan() = %v, %v", got, ok)
	}
	got, ok = TranslateSpan(mappings, TextSpan{OffsetAt(20), OffsetAt(21)})
	if !ok || got != callSite {
		t.Fatalf("TranslateSpan() fallback = %v, %v", got, ok)
	}
	if _, ok := TranslateSpan(mappings, TextSpan{OffsetAt(40), OffsetAt(41)}); ok {
		t.Fatalf("expected no mapping")
	}
}

func TestTranslateSpan_RejectsInvertedSpan(t *testing.T) {
	mappings := []CodeMapping{
		{Span: TextSpan{OffsetAt(0), OffsetAt(30)}, Origin: OriginStart(OffsetAt(100))},
		{Span: TextSpan{OffsetAt(0), OffsetAt(30)}, Origin: OriginCallSite(TextSpan{OffsetAt(50), OffsetAt(60)})},
	}
	inverted := TextSpan{OffsetAt(8), OffsetAt(6)}
	if got, ok := mappings[0].Translate(inverted); ok {
		t.Fatalf("Translate(inverted) = %v", got)
	}
	if got, ok := TranslateSpan(mappings, inverted); ok {
		t.Fatalf("TranslateSpan(inverted) = %v", got)
	}
	if _, ok := TranslateSpan(mappings, TextSpan{OffsetAt(6), OffsetAt(6)}); !ok {
		t.Fatalf("empty span inside a mapping must translate")
	}
}
