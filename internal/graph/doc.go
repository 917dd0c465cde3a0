// Package graph is the in-memory compute graph the stream scheduler works on.
//
// # Why an Arena
//
// The partitioner hands the scheduler a graph in which nodes, subgraphs and
// engines all refer to one another (a subgraph knows its nodes, a node knows
// its subgraph, a subgraph may point at the subgraph whose stream it reused).
// Instead of pointers in both directions, every node and subgraph lives in a
// slice owned by Graph and is addressed by a dense integer index:
//
//   - NodeID indexes Graph.nodes
//   - SubgraphID indexes Graph.subgraphs, NoSubgraph marks "none"
//
// This keeps back-references cycle free and makes the arena safe to copy
// between passes by index.
//
// # Lifecycle
//
//  1. **Population:** the loader (or a test builder) adds nodes, edges and
//     subgraphs, then calls Link to derive placeholder/end boundaries and
//     AssignTopoIDs to freeze a topological order.
//  2. **Scheduling:** stream allocators write StreamID on subgraphs and nodes,
//     the sync inserter writes send/receive ids, the splitter rewrites streams.
//  3. **Reporting:** the app reads the final per-node assignment.
//
// # Thread-Safety
//
// A Graph is not safe for concurrent mutation. Scheduling is a sequential
// batch computation over one graph; independent graphs may be scheduled on
// separate goroutines since they share no state.
//
// # Key Types
//
// **Graph** (types.go): the arena with adjacency lists.
// **Node** (types.go): a vertex with its stream and synchronization assignment.
// **Subgraph** (types.go): the atomic scheduling unit produced by partitioning.
// **StreamIndex** (index.go): per-stream nodes ordered by topological id.
package graph
