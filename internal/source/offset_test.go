package source

import "testing"

func TestTextOffset_AddAndSub(t *testing.T) {
	off := StartOffset.AddWidth(3).AddWidth(7)
	if off.Width() != 10 {
		t.Fatalf("Width() = %d, want 10", off.Width())
	}
	if got := off.Sub(OffsetAt(4)); got != 6 {
		t.Fatalf("Sub() = %d, want 6", got)
	}
	if got := off.SubWidth(10); got != StartOffset {
		t.Fatalf("SubWidth() = %v, want start", got)
	}
}

func TestTextOffset_SubPanicsBeforeStart(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when moving before file start")
		}
	}()
	OffsetAt(2).SubWidth(3)
}

func TestTextSpan(t *testing.T) {
	tests := []struct {
		name     string
		outer    TextSpan
		inner    TextSpan
		contains bool
	}{
		{"same", TextSpan{OffsetAt(3), OffsetAt(10)}, TextSpan{OffsetAt(3), OffsetAt(10)}, true},
		{"inside", TextSpan{OffsetAt(3), OffsetAt(10)}, TextSpan{OffsetAt(4), OffsetAt(6)}, true},
		{"empty at end", TextSpan{OffsetAt(3), OffsetAt(10)}, TextSpan{OffsetAt(10), OffsetAt(10)}, true},
		{"overlaps end", TextSpan{OffsetAt(3), OffsetAt(10)}, TextSpan{OffsetAt(9), OffsetAt(11)}, false},
		{"before", TextSpan{OffsetAt(3), OffsetAt(10)}, TextSpan{OffsetAt(0), OffsetAt(2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outer.Contains(tt.inner); got != tt.contains {
				t.Errorf("Contains() = %v, want %v", got, tt.contains)
			}
		})
	}

	sp := SpanOf(OffsetAt(5), "hello")
	if sp.Width() != 5 || sp.End != OffsetAt(10) {
		t.Errorf("SpanOf() = %v", sp)
	}
	if got := (TextSpan{OffsetAt(3), OffsetAt(4)}).Cover(TextSpan{OffsetAt(8), OffsetAt(9)}); got != (TextSpan{OffsetAt(3), OffsetAt(9)}) {
		t.Errorf("Cover() = %v", got)
	}
}

func TestSpan_TextSpanRoundTrip(t *testing.T) {
	sp := Span{File: 2, Start: 3, End: 10}
	if got := SpanIn(2, sp.TextSpan()); got != sp {
		t.Fatalf("SpanIn(TextSpan()) = %v, want %v", got, sp)
	}
}
