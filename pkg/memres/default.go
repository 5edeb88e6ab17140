// Package memres provides pluggable memory resources.
package memres

import (
	"fmt"
	"math"
	"unsafe"
)

// heapResource is the process-wide default resource, backed by the Go heap.
// It is never torn down: default handles perform no reference counting and
// their Release is a no-op. Deallocate is required by the contract
// (NeedsRelease is true) but the collector reclaims the memory, so the
// method only has to accept the call.
type heapResource struct{}

func (heapResource) Allocate(size, align int) ([]byte, error) {
	return heapAlloc(size, align)
}

func (heapResource) Deallocate(buf []byte, size, align int) {}

func (heapResource) NeedsRelease() bool { return true }

// defaultState backs every zero and Default() handle, so they all compare
// equal. counted stays false: handle churn never touches a counter here.
var defaultState = &state{
	res:         heapResource{},
	id:          newIdentity(),
	needRelease: true,
}

// heapAlloc returns a size-byte slice whose backing address is a multiple of
// align. Zero-size requests yield valid, mutually distinguishable buffers
// backed by one private byte.
func heapAlloc(size, align int) ([]byte, error) {
	if err := checkRequest(size, align); err != nil {
		return nil, err
	}
	if size == 0 {
		b, err := heapAlloc(1, align)
		if err != nil {
			return nil, err
		}
		return b[:0], nil
	}
	// The over-allocation for alignment padding must not wrap around.
	if size > math.MaxInt-align+1 {
		return nil, ErrAllocFailure.WithDetails(fmt.Sprintf("size %d with align %d", size, align))
	}
	b := make([]byte, size+align-1)
	pad := alignPad(uintptr(unsafe.Pointer(unsafe.SliceData(b))), align)
	return b[pad : pad+size : pad+size], nil
}

// checkRequest validates the (size, align) pair common to all resources.
func checkRequest(size, align int) error {
	if size < 0 {
		return ErrInvalidSize.WithDetails(fmt.Sprintf("size %d", size))
	}
	if align <= 0 || align&(align-1) != 0 {
		return ErrInvalidAlign.WithDetails(fmt.Sprintf("align %d", align))
	}
	return nil
}

// alignPad returns how many bytes past addr the next align-aligned address
// lies. align must be a power of two.
func alignPad(addr uintptr, align int) int {
	return int(-addr & uintptr(align-1))
}
