package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"macrobridge/internal/config"
	"macrobridge/internal/trace"
)

// setupTracing merges the [trace] table with the trace flags and attaches
// the tracer to the command context. Flags win over the file.
func setupTracing(cmd *cobra.Command) (func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	tc := cfg.Trace
	flags := cmd.Root().PersistentFlags()

	for name, dst := range map[string]*string{
		"trace":       &tc.Output,
		"trace-level": &tc.Level,
		"trace-mode":  &tc.Mode,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, fmt.Errorf("read --%s: %w", name, err)
		}
	}
	if flags.Changed("trace-ring-size") {
		if tc.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
			return nil, fmt.Errorf("read --trace-ring-size: %w", err)
		}
	}

	level, err := trace.ParseLevel(tc.Level)
	if err != nil {
		return nil, err
	}
	// --trace without a level means "show me the process lifecycle"
	if level == trace.LevelOff && tc.Output != "" {
		level = trace.LevelProcess
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(tc.Mode)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: tc.Output,
		RingSize:   tc.RingSize,
	})
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}

	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}
