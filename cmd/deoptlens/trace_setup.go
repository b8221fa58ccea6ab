package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"deoptlens/internal/trace"
)

var (
	traceCleanup func()
	traceOnce    sync.Once
	traceRing    *trace.RingTracer
	traceFormat  trace.Format
)

// dumpTraceRing writes the in-memory trace of a failed run to w.
func dumpTraceRing(w io.Writer) {
	if traceRing == nil {
		return
	}
	fmt.Fprintln(w, "trace: last events before the failure:")
	if err := traceRing.Dump(w, traceFormat); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

func runTraceCleanup() {
	traceOnce.Do(func() {
		if traceCleanup != nil {
			traceCleanup()
		}
	})
}

// setupTracing builds the tracer from the persistent flags and attaches it
// to the command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	output, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	// --trace or --trace-ring-size alone means phase-level tracing
	if level == trace.LevelOff && (output != "" || ringSize > 0) {
		level = trace.LevelPhase
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(ctx, trace.Nop))
		return func() {}, nil
	}

	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(trace.Config{Level: level, Format: format, OutputPath: output, RingSize: ringSize})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	traceRing, _ = trace.RingOf(tracer)
	traceFormat = format
	if traceFormat == trace.FormatAuto {
		traceFormat = trace.FormatText
	}
	cmd.SetContext(trace.WithTracer(ctx, tracer))

	return func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
