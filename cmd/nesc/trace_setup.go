package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nesc/internal/project"
	"nesc/internal/trace"
)

var (
	activeTracer trace.Tracer = trace.Nop
	traceCleanup func()
)

// setupTracing builds the tracer from the trace flags, falling back to
// the manifest's [trace] table, and attaches it to the command context.
func setupTracing(cmd *cobra.Command, mt project.Trace) error {
	pf := cmd.Root().PersistentFlags()

	output, err := pf.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	if !pf.Changed("trace") {
		output = mt.Output
	}
	levelStr, err := pf.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if !pf.Changed("trace-level") && mt.Level != "" {
		levelStr = mt.Level
	}
	modeStr, err := pf.GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := pf.GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// an output without a level means "show phases"
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tracer
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	traceCleanup = func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}
	return nil
}

// dumpTrace writes the ring buffer, if any, to stderr after a fault.
func dumpTrace() {
	if ring, ok := trace.RingOf(activeTracer); ok {
		fmt.Fprintln(os.Stderr, "--- trace ---")
		if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
			fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
		}
	}
}

func teardown(_ *cobra.Command) {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}
