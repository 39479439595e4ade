// Package trace records what the compiler is doing and for how long.
//
// A Tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "infer", 0)
//	defer span.End("")
//
// The level decides which scopes are written: phase keeps driver and pass
// spans, detail adds one span per module task, debug adds per-function
// code generation. Stream tracers write text or NDJSON as events arrive;
// ring tracers keep the most recent events for a dump after a failure.
//
//	vsharp build --trace=build.ndjson --trace-level=detail
package trace
