/*
Package builder constructs the scheduler's arena graph from a configuration
graph. It is the bridge between the format-agnostic model produced by the
config adapters and the passes that assign streams and synchronization.

Construction runs in phases:

 1. Node Creation: every configured node becomes a graph node carrying its
    attributes and task definitions.

 2. Dependency Linking: data inputs, control inputs and loop-closing back
    inputs become edges. A reference to an undeclared node is a structural
    error.

 3. Partitioning: subgraph blocks group their nodes. Nodes that are not
    claimed by any subgraph get a singleton subgraph on their own engine when
    the graph is linked.

 4. Validation: topological ids are assigned, subgraph boundaries are
    linked and the structural preconditions of scheduling are checked.
*/
package builder
