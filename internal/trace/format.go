package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

type Format uint8

const (
	// FormatAuto picks NDJSON for .ndjson and .json outputs, text otherwise.
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// ParseFormat accepts auto, text, ndjson and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected auto|text|ndjson)", s)
}

func formatFor(path string, f Format) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".json") {
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent renders one line, newline included.
func FormatEvent(ev *Event, f Format) []byte {
	if f == FormatNDJSON {
		return eventJSON(ev)
	}
	return eventText(ev)
}

func eventJSON(ev *Event) []byte {
	data, err := json.Marshal(struct {
		*Event
		Kind  string `json:"kind"`
		Scope string `json:"scope"`
	}{ev, ev.Kind.String(), ev.Scope.String()})
	if err != nil {
		data = fmt.Appendf(nil, `{"kind":"error","detail":%q}`, err.Error())
	}
	return append(data, '\n')
}

var kindMarks = map[Kind]string{KindSpanBegin: "→", KindSpanEnd: "←", KindPoint: "•", KindFailure: "!"}

// eventText: [seq] mark scope:name (detail) {k=v, ...}; children are indented.
func eventText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%6d] ", ev.Seq)
	if ev.ParentID != 0 {
		sb.WriteString("  ")
	}
	fmt.Fprintf(&sb, "%s %s:%s", kindMarks[ev.Kind], ev.Scope, ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		pairs := make([]string, 0, len(ev.Extra))
		for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			pairs = append(pairs, k+"="+ev.Extra[k])
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
