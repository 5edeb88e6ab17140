// Package memres provides pluggable memory resources.
package memres

// Resource is the allocator capability implemented by every concrete memory
// resource. Implementations decide their own thread-safety: this layer never
// synchronizes Allocate/Deallocate, only the reference count on shared
// instances.
type Resource interface {
	// Allocate returns a buffer of exactly size bytes whose backing address
	// is a multiple of align. align must be a power of two. A request that
	// cannot be satisfied fails with ErrAllocFailure.
	Allocate(size, align int) ([]byte, error)

	// Deallocate returns a buffer previously obtained from Allocate on this
	// same instance. size and align must match the original request; a
	// mismatched triple is a programming error, not a recoverable condition.
	// Deallocate must not fail.
	Deallocate(buf []byte, size, align int)

	// NeedsRelease reports whether buffers from Allocate must eventually be
	// passed to Deallocate. Resources that reclaim everything at once, such
	// as arenas, return false; callers may then skip individual releases.
	NeedsRelease() bool
}

// Releaser is implemented by resources that hold memory or other state
// requiring teardown. Release is invoked exactly once: when the last handle
// to a shared instance is released, or when a Scoped wrapper is closed.
// Release must not fail.
type Releaser interface {
	Release()
}
