package trace

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	// KindFailure passes every level except off.
	KindFailure
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindFailure: "failure"}

func (k Kind) String() string { return lookupName(kindNames[:], int(k)) }

// Scope is the granularity of an event; smaller is coarser.
type Scope uint8

const (
	// ScopeSession: catalogue loads and suite builds.
	ScopeSession Scope = iota + 1
	// ScopeProcess: spawn, handshake, crash and restart of the server.
	ScopeProcess
	// ScopeRequest: one expansion round trip.
	ScopeRequest
)

var scopeNames = [...]string{ScopeSession: "session", ScopeProcess: "process", ScopeRequest: "request"}

func (s Scope) String() string { return lookupName(scopeNames[:], int(s)) }

// Level is the verbosity filter.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError lets only failures through.
	LevelError
	LevelSession
	LevelProcess
	// LevelDebug adds single requests.
	LevelDebug
)

var levelNames = [...]string{"off", "error", "session", "process", "debug"}

func (l Level) String() string { return lookupName(levelNames[:], int(l)) }

// ParseLevel is case-insensitive; "" means off.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return LevelOff, nil
	}
	if i := slices.Index(levelNames[:], strings.ToLower(s)); i >= 0 {
		return Level(i), nil
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether regular events of scope pass l.
func (l Level) ShouldEmit(scope Scope) bool {
	switch {
	case l <= LevelError:
		return false
	case l == LevelDebug:
		return true
	default:
		// session → ScopeSession, process → ScopeProcess
		return int(scope) <= int(l-LevelError)
	}
}

// Accepts applies the level to a concrete event.
func (l Level) Accepts(ev *Event) bool {
	if ev.Kind == KindFailure {
		return l > LevelOff
	}
	return l.ShouldEmit(ev.Scope)
}

// Event is one trace record.
type Event struct {
	Time     time.Time         `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     Kind              `json:"-"`
	Scope    Scope             `json:"-"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func lookupName(names []string, i int) string {
	if i < 0 || i >= len(names) || names[i] == "" {
		return "unknown"
	}
	return names[i]
}
