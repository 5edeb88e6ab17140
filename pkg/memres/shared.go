// Package memres provides pluggable memory resources.
package memres

import "reflect"

// NewShared wraps an already constructed resource in a reference-counted
// instance and returns the first handle to it, with a reference count of 1.
// Each resource must be wrapped at most once; wrapping the same resource
// twice creates two independent instances whose handles compare unequal and
// whose teardowns race. A nil resource yields a default handle.
func NewShared(res Resource) Handle {
	if isNilResource(res) {
		return Handle{}
	}
	return Handle{st: newState(res, true)}
}

// MakeShared constructs a resource via build and wraps it in a
// reference-counted instance. This is the factory path for resources whose
// construction can fail: build runs exactly once, and on error nothing is
// retained and the error propagates unchanged to the caller. A build that
// returns a nil resource without an error yields ErrNilResource.
func MakeShared[T Resource](build func() (T, error)) (Handle, error) {
	res, err := build()
	if err != nil {
		return Handle{}, err
	}
	if isNilResource(res) {
		return Handle{}, ErrNilResource
	}
	return Handle{st: newState(res, true)}, nil
}

// isNilResource reports whether res is nil, including a nil pointer stored
// in a non-nil interface value.
func isNilResource(res Resource) bool {
	if res == nil {
		return true
	}
	rv := reflect.ValueOf(res)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
