// Package checked provides a memory resource decorator that tracks every
// live allocation of the resource it wraps.
//
// Each Allocate records the buffer's backing address together with the
// requested size and alignment; each Deallocate must present the same
// triple back. A deallocation of an unknown buffer, or one with a size or
// alignment that differs from the original request, panics immediately
// instead of corrupting the underlying resource. Leak detection is a
// by-product: Outstanding and LiveBytes expose what was never returned.
//
// The tracker is safe for concurrent use when the wrapped resource is.
package checked
