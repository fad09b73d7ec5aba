package source

import (
	"fmt"

	"fortio.org/safecast"
)

// TextWidth is a byte width of a piece of text.
type TextWidth uint32

// WidthOf returns the byte width of s.
// Text longer than 4GiB is an invariant violation.
func WidthOf(s string) TextWidth {
	w, err := safecast.Conv[uint32](len(s))
	if err != nil {
		panic(fmt.Errorf("text width overflow: %w", err))
	}
	return TextWidth(w)
}

// Add returns the sum of two widths.
func (w TextWidth) Add(other TextWidth) TextWidth {
	return w + other
}

// TextOffset is a position in a file, built by accumulating widths
// from the start of the file.
type TextOffset struct {
	width TextWidth
}

// StartOffset is the offset of the first byte of a file.
var StartOffset = TextOffset{}

// OffsetAt returns the offset n bytes after the start of a file.
func OffsetAt(n uint32) TextOffset {
	return StartOffset.AddWidth(TextWidth(n))
}

// AddWidth moves the offset forward by w.
func (o TextOffset) AddWidth(w TextWidth) TextOffset {
	return TextOffset{width: o.width + w}
}

// SubWidth moves the offset back by w. Moving before the start of the file
// is an invariant violation.
func (o TextOffset) SubWidth(w TextWidth) TextOffset {
	if w > o.width {
		panic(fmt.Errorf("offset %d moved back by %d", o.width, w))
	}
	return TextOffset{width: o.width - w}
}

// Sub returns the width between other and o. other must not be after o.
func (o TextOffset) Sub(other TextOffset) TextWidth {
	if other.width > o.width {
		panic(fmt.Errorf("offset %d is before %d", o.width, other.width))
	}
	return o.width - other.width
}

// Width returns the distance from the start of the file.
func (o TextOffset) Width() TextWidth {
	return o.width
}

func (o TextOffset) String() string {
	return fmt.Sprintf("%d", o.width)
}

// TextSpan is a half-open range of offsets within one file.
type TextSpan struct {
	Start TextOffset
	End   TextOffset
}

// SpanOf returns the span covering text placed at start.
func SpanOf(start TextOffset, text string) TextSpan {
	return TextSpan{Start: start, End: start.AddWidth(WidthOf(text))}
}

// Width returns the length of the span.
func (s TextSpan) Width() TextWidth {
	return s.End.Sub(s.Start)
}

func (s TextSpan) Empty() bool {
	return s.Start == s.End
}

// Contains reports whether other lies entirely inside s.
func (s TextSpan) Contains(other TextSpan) bool {
	return s.Start.width <= other.Start.width && other.End.width <= s.End.width
}

// Cover returns the smallest span containing both.
func (s TextSpan) Cover(other TextSpan) TextSpan {
	if other.Start.width < s.Start.width {
		s.Start = other.Start
	}
	if other.End.width > s.End.width {
		s.End = other.End
	}
	return s
}

func (s TextSpan) String() string {
	return fmt.Sprintf("%d-%d", s.Start.width, s.End.width)
}
