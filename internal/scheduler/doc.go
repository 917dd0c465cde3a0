// Package scheduler runs the complete stream and synchronization pipeline for
// one graph: stream allocation (static or dynamic), synchronization planning
// and, when enabled, post-codegen stream splitting. It reports the scalar
// outputs downstream stages consume.
package scheduler
