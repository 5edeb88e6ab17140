// Package memres provides pluggable memory resources.
package memres

import (
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// state carries the ownership bookkeeping for one resource instance. Exactly
// one state exists per handleable instance, so comparing state addresses is
// instance-identity comparison.
type state struct {
	res         Resource
	id          ulid.ULID
	needRelease bool
	counted     bool
	refs        atomic.Int64
}

func newState(res Resource, counted bool) *state {
	st := &state{
		res:         res,
		id:          newIdentity(),
		needRelease: res.NeedsRelease(),
		counted:     counted,
	}
	if counted {
		st.refs.Store(1)
	}
	return st
}

// newIdentity mints the opaque per-instance identity token. ULIDs are unique
// and comparable, but identity equality is not handle equality: use
// Handle.Equal for "same instance".
func newIdentity() ulid.ULID {
	return ulid.Make()
}

// Handle is a copyable reference to one memory resource instance. The zero
// Handle is valid and resolves to the process-wide default resource.
//
// Handles referencing a shared instance follow an explicit ownership
// protocol: every owner that keeps a handle past the lifetime of the one it
// was given calls Clone, and every owned handle is Released exactly once.
// Clone and Release are no-ops for default and scoped instances, so callers
// can follow the protocol uniformly without knowing the ownership mode.
type Handle struct {
	st *state
}

// Default returns a handle to the process-wide heap resource. Equivalent to
// the zero Handle.
func Default() Handle {
	return Handle{}
}

func (h Handle) state() *state {
	if h.st == nil {
		return defaultState
	}
	return h.st
}

// Clone returns a handle to the same instance, incrementing the reference
// count when the instance is shared. The atomic increment also publishes the
// fully constructed state to any goroutine the clone is handed to.
func (h Handle) Clone() Handle {
	st := h.state()
	if st.counted {
		st.refs.Add(1)
	}
	return Handle{st: h.st}
}

// Release drops this handle's reference. When the instance is shared and
// this was the last reference, the resource is torn down (Release on the
// resource, if implemented). Release on a default or scoped handle is a
// no-op. Using the handle, or any buffer that must still be deallocated,
// after the final Release is a contract violation.
func (h Handle) Release() {
	st := h.st
	if st == nil || !st.counted {
		return
	}
	if st.refs.Add(-1) == 0 {
		if r, ok := st.res.(Releaser); ok {
			r.Release()
		}
	}
}

// Allocate dispatches to the referenced resource.
func (h Handle) Allocate(size, align int) ([]byte, error) {
	return h.state().res.Allocate(size, align)
}

// Deallocate dispatches to the referenced resource. The triple must match a
// prior Allocate through a handle to the same instance.
func (h Handle) Deallocate(buf []byte, size, align int) {
	h.state().res.Deallocate(buf, size, align)
}

// Resource returns the referenced resource. The resource stays valid only as
// long as the handle's ownership rules keep the instance alive.
func (h Handle) Resource() Resource {
	return h.state().res
}

// Identity returns the opaque per-instance identity token. It is stable for
// the instance's lifetime and unique across instances, but it is not a
// substitute for Equal.
func (h Handle) Identity() ulid.ULID {
	return h.state().id
}

// NeedsRelease reports the referenced resource's deallocation requirement.
func (h Handle) NeedsRelease() bool {
	return h.state().needRelease
}

// Shared reports whether the referenced instance is reference counted.
func (h Handle) Shared() bool {
	return h.state().counted
}

// Refs returns the current reference count of a shared instance, or 0 for
// default and scoped instances. The value is advisory: it may be stale by
// the time the caller observes it.
func (h Handle) Refs() int64 {
	return h.state().refs.Load()
}

// Equal reports whether two handles resolve to the identical resource
// instance. This is address identity, never a structural or configuration
// comparison: two instances of the same type and configuration are unequal.
// Consumers use this to decide whether two values already share an allocator.
func (h Handle) Equal(o Handle) bool {
	return h.state() == o.state()
}
