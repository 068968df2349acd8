// Package trace implements the optional BTF instrumentation sink described
// in spec §6: a Recorder consumes (line, event) tuples emitted while the
// BTF driver runs and renders them as the JSON stream
// { "initial": {...}, "steps": [ {"type": "array"|"number"|"step", ...} ] }
// consumed by the offline visualizer this is ported from
// (visualizations/btf_viz/src/code/recorder.rs).
//
// A nil *Recorder is always a valid, fully inert value: every method on it
// is a no-op, so attaching a Recorder is pure observation and never
// changes what the solver computes. Separately, the Recorder type itself
// is build-tag gated: recorder_trace.go (the real, JSON-backed
// implementation) only compiles with `-tags trace`; recorder_notrace.go
// (an equally inert stub with the same exported API) compiles otherwise,
// so production builds never pay even Recorder's own bookkeeping cost and
// callers never need their own build tags to hold a *Recorder field.
package trace
