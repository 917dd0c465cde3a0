// Package stream implements logical stream allocation for statically shaped
// graphs.
//
// Allocation is an ordered pipeline of passes over the subgraphs of one
// graph. Every pass receives the graph and a Context carrying the running
// stream counter, per-engine and per-label stream maps and the global
// switches, and reports whether it changed anything. The first error aborts
// the remaining passes.
//
// # Pipeline
//
// The default pipeline is:
//
//  1. AssignByLabel: one stream per distinct subgraph stream label.
//  2. IndependentStream: one stream per (engine, label) for engines that
//     must not share a stream.
//  3. AssignByDependency: reuse a predecessor's stream where legal,
//     otherwise open a stream for the engine (round-robin up to the
//     subgraph's max parallel instances).
//  4. NodeStreamUpdate: copy subgraph streams onto member nodes.
//  5. UpdateForParallelGroup and UpdateForEngineStreamTag: split nodes tagged
//     with a group onto their own stream.
//  6. AllReduceParallel (opt-in): move the consumers of a fused all-reduce
//     off the stream of their producers.
//  7. UpdateForSkippedEngine: place nodes of pass-through engines.
//  8. Renumber: compact stream ids to 0..N-1.
//  9. SetActiveStreams and AssignAttachedStream: activation lists, then
//     attached streams numbered after every primary stream.
//
// Single-stream mode replaces steps 1 to 3 and 6 with SingleStream.
//
// Renumber and SetActiveStreams are exported because the dynamic allocator
// finishes with the same steps.
package stream
