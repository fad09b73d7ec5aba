package source

import "fmt"

// Span is a byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// SpanIn attaches a file to a text span.
func SpanIn(file FileID, ts TextSpan) Span {
	return Span{File: file, Start: uint32(ts.Start.width), End: uint32(ts.End.width)}
}

// TextSpan drops the file.
func (s Span) TextSpan() TextSpan {
	return TextSpan{Start: OffsetAt(s.Start), End: OffsetAt(s.End)}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}
