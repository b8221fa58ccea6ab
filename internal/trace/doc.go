// Package trace is the structured logging layer of deoptlens.
//
// Events are emitted per scope: the driver run, each annotated file, the weave
// of that file, and individual marker placements. Verbosity is chosen with a
// Level; the default is off and costs a nil check per call site.
//
//	deoptlens annotate --trace=- --trace-level=detail page.html
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "annotate:app.js", 0)
//	defer span.End("")
package trace
