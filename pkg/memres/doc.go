// Package memres provides pluggable memory resources for structured-document
// processing.
//
// A Resource is a type-erased allocator: a fixed capability surface
// (Allocate, Deallocate, metadata) implemented by concrete strategies such
// as the process heap, a monotonic arena, or a slab pool. Value and codec
// code obtains and releases memory exclusively through a Handle, so it never
// depends on any single allocation strategy.
//
// A Handle can express three ownership modes:
//
//   - Default: the zero Handle (or Default()) resolves to the process-wide
//     heap resource, which is never torn down.
//   - Shared: NewShared and MakeShared produce reference-counted instances;
//     the resource is torn down when the last handle is released.
//   - Scoped: a Scoped wrapper embeds the bookkeeping directly and hands out
//     borrowing handles; the wrapper's owner controls the lifetime and no
//     reference counting takes place.
//
// The ownership policy is encoded as data on the referenced instance, so
// Handle's clone/release logic is uniform and the hot allocation path pays
// no atomic traffic for default or scoped handles.
package memres
