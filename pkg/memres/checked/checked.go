// Package checked provides a live-allocation tracking resource decorator.
package checked

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/nvalden/memres-go/pkg/cmap"
	"github.com/nvalden/memres-go/pkg/memres"
)

// allocation is the record kept for every outstanding buffer. The record
// retains the buffer itself: the live table is keyed by address, and without
// the retention the collector could reclaim a leaked buffer and hand its
// address to a later allocation, tripping the double-allocation check.
type allocation struct {
	buf   []byte
	size  int
	align int
}

// Tracker wraps a memory resource and verifies its deallocation discipline.
type Tracker struct {
	inner memres.Resource
	live  *cmap.Map[uintptr, allocation]
	bytes atomic.Int64
}

// Wrap returns a Tracker decorating inner. Passing a nil inner panics:
// there is nothing meaningful to track.
func Wrap(inner memres.Resource) *Tracker {
	if inner == nil {
		panic("checked: nil inner resource")
	}
	return &Tracker{
		inner: inner,
		live:  cmap.New[uintptr, allocation](),
	}
}

// Allocate forwards to the wrapped resource and records the returned
// buffer as live.
func (t *Tracker) Allocate(size, align int) ([]byte, error) {
	buf, err := t.inner.Allocate(size, align)
	if err != nil {
		return nil, err
	}

	key := bufKey(buf)
	if t.live.Has(key) {
		// The inner resource handed out the same backing address twice
		// without an intervening Deallocate.
		panic(fmt.Sprintf("checked: resource returned live address %#x twice", key))
	}
	t.live.Set(key, allocation{buf: buf, size: size, align: align})
	t.bytes.Add(int64(size))
	return buf, nil
}

// Deallocate verifies the buffer against the live table, then forwards to
// the wrapped resource. It panics on an unknown buffer or a size/alignment
// that does not match the original request.
func (t *Tracker) Deallocate(buf []byte, size, align int) {
	key := bufKey(buf)
	rec, ok := t.live.Pop(key)
	if !ok {
		panic(fmt.Sprintf("checked: deallocate of untracked address %#x", key))
	}
	if rec.size != size || rec.align != align {
		// Restore the record so a corrected retry can still succeed.
		t.live.Set(key, rec)
		panic(fmt.Sprintf(
			"checked: deallocate(%#x) with size=%d align=%d, allocated with size=%d align=%d",
			key, size, align, rec.size, rec.align))
	}
	t.bytes.Add(-int64(size))
	t.inner.Deallocate(buf, size, align)
}

// NeedsRelease reports the wrapped resource's deallocation requirement.
func (t *Tracker) NeedsRelease() bool {
	return t.inner.NeedsRelease()
}

// Release forwards teardown to the wrapped resource if it supports it.
// Outstanding allocations are not an error here: arena-style resources
// reclaim them wholesale on release.
func (t *Tracker) Release() {
	if r, ok := t.inner.(memres.Releaser); ok {
		r.Release()
	}
	t.live.Clear()
	t.bytes.Store(0)
}

// Outstanding returns the number of live allocations.
func (t *Tracker) Outstanding() int {
	return t.live.Count()
}

// LiveBytes returns the total requested size of all live allocations.
func (t *Tracker) LiveBytes() int64 {
	return t.bytes.Load()
}

// Leaks invokes fn for every live allocation. Useful in test teardown to
// report what was never deallocated.
func (t *Tracker) Leaks(fn func(addr uintptr, size, align int)) {
	t.live.Range(func(addr uintptr, rec allocation) bool {
		fn(addr, rec.size, rec.align)
		return true
	})
}

// Unwrap returns the decorated resource.
func (t *Tracker) Unwrap() memres.Resource {
	return t.inner
}

func bufKey(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
}
