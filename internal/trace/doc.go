// Package trace records the analysis pipeline as a stream of span events.
//
// Tracing is switched on from the command line:
//
//	nesc diag --trace=- --trace-level=phase src/
//
// Stream tracers write each event as it happens (text or ndjson), ring
// tracers keep the last events in memory for a dump after a fault. Levels
// select how deep the events go: phase keeps driver and pass boundaries,
// detail adds one span per file, debug adds everything.
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", parent)
//	defer span.End("")
package trace
