// Package heap implements the HDF5 heap structures this engine reads:
// local heaps for v0/v1 group member names, and fractal heaps for
// densely-stored links and indexed attributes. Global heap traversal
// (variable-length string/sequence storage) is intentionally absent —
// the engine does not support variable-length datatypes.
//
// # Local Heap
//
// The [LocalHeap] (signature "HEAP") stores variable-length data for v0/v1
// groups, primarily object names. Each v0/v1 group has an associated local
// heap where member names are stored as null-terminated strings.
//
// Local heap structure:
//   - Fixed header with data segment size and free list offset
//   - Data segment containing null-terminated strings
//   - Symbol table entries reference strings by offset into this heap
//
// Usage:
//
//	heap, err := heap.ReadLocalHeap(reader, heapAddress)
//	name := heap.GetString(nameOffset)
//
// # Key Types
//
//   - [LocalHeap]: Local heap for group names (v0/v1 groups)
//   - [FractalHeap]: Doubling-table heap for dense links and attributes
package heap
