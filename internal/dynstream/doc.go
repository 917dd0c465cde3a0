// Package dynstream allocates streams for graphs whose shapes are only known
// at run time.
//
// Such graphs are small, control-flow heavy and re-scheduled per shape
// bucket, so allocation favors a predictable layout over maximal overlap:
// stream 0 is the main stream shared with the vector engine, every other
// stream-owning engine gets exactly one stream, host CPU work is either
// overlapped on one shared stream or isolated per blocking operator, and the
// remaining subgraphs search their neighbors for a stream to reuse.
package dynstream
