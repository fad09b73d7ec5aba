package trace

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Tracer receives events. Implementations are safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled is Level() > LevelOff.
	Enabled() bool
}

// StorageMode picks where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1
	ModeRing
	// ModeBoth streams and keeps a ring for crash dumps.
	ModeBoth
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string { return lookupName(modeNames[:], int(m)) }

// ParseMode is case-insensitive; "" means both.
func ParseMode(s string) (StorageMode, error) {
	if s == "" {
		return ModeBoth, nil
	}
	if i := slices.Index(modeNames[:], strings.ToLower(s)); i > 0 {
		return StorageMode(i), nil
	}
	return ModeBoth, fmt.Errorf("invalid trace mode %q (expected stream|ring|both)", s)
}

type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format
	// Output wins over OutputPath; "" and "-" mean stderr.
	Output     io.Writer
	OutputPath string
	RingSize   int
}

// New builds the tracer cfg describes. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	var sinks []Tracer
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, NewStreamTracer(w, cfg.Level, formatFor(cfg.OutputPath, cfg.Format)))
	}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	switch len(sinks) {
	case 0:
		return nil, fmt.Errorf("unknown trace mode %v", cfg.Mode)
	case 1:
		return sinks[0], nil
	}
	return &fanout{level: cfg.Level, sinks: sinks}, nil
}

// stderr must survive Close.
type keepOpen struct{ io.Writer }

func openOutput(cfg Config) (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return keepOpen{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}
