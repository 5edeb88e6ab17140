// Package memres provides pluggable memory resources.
package memres

// Scoped binds a resource's lifetime to a caller-owned value instead of a
// reference count. The bookkeeping is embedded directly, so converting to a
// Handle allocates nothing and handle churn costs no atomic traffic.
//
// Handles obtained from a Scoped borrow the instance: their Release never
// tears it down, only Close does. The caller must guarantee that no borrowed
// handle, and nothing built through one, outlives the Scoped value; the
// library cannot detect a violation. This discipline is the price of the
// zero-overhead local-allocator mode.
type Scoped[T Resource] struct {
	st     state
	res    T
	closed bool
}

// NewScoped wraps res in a scoped, never-counted instance.
func NewScoped[T Resource](res T) *Scoped[T] {
	s := &Scoped[T]{res: res}
	s.st.res = res
	s.st.id = newIdentity()
	s.st.needRelease = res.NeedsRelease()
	return s
}

// Res returns the wrapped resource with its concrete type, for
// configuration or introspection the Resource interface does not expose.
func (s *Scoped[T]) Res() T {
	return s.res
}

// Handle returns a borrowing handle to the wrapped instance. All handles
// from the same Scoped compare Equal.
func (s *Scoped[T]) Handle() Handle {
	return Handle{st: &s.st}
}

// Close tears down the wrapped resource. Idempotent. Borrowed handles are
// invalid afterwards.
func (s *Scoped[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if r, ok := any(s.res).(Releaser); ok {
		r.Release()
	}
}
