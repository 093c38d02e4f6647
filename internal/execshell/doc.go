// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec in two flavors: ShellExecutor runs short commands with
// buffered output (remote discovery and similar queries), while
// PipelineProcess exposes the stream endpoints and exit classification
// needed to wire long-running processes into the bundle pipeline.
package execshell
