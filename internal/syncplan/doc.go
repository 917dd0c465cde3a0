// Package syncplan inserts the cross-stream synchronization of a scheduled
// graph.
//
// A Plan starts as a logical overlay: one sync per producer/consumer pair
// whose streams differ. The overlay is then optimized, numbered and finally
// materialized into explicit send and receive nodes that later compiler
// stages turn into event record/wait (or notify) instructions.
//
// # Optimizations
//
//   - Subsumption: between a producer stream S and a consumer stream T, a
//     sync p1->c1 is dropped when another sync p2->c2 exists with p2 at or
//     after p1 on S and c2 at or before c1 on T. This covers both the
//     "later send from the same producer stream" and the "earlier receive on
//     the same consumer stream" rules in one sweep.
//   - Activation: a sync is dropped when a stream-activation node ordered
//     after the producer on its stream already starts the consumer, either
//     by reaching it through forward edges or by listing its stream. Loop
//     activations are never used.
//
// # Numbering
//
// Syncs local to one arm of a mutually exclusive branch construct
// (producer and consumer carry the same branch group and branch index) are
// numbered per arm, so a construct only needs as many ids as its widest arm.
// Every other sync gets a global id first.
package syncplan
