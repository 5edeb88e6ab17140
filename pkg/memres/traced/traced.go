// Package traced provides a logging memory resource decorator.
package traced

import (
	"unsafe"

	"github.com/hashicorp/go-hclog"

	"github.com/nvalden/memres-go/pkg/memres"
)

// Resource wraps a memory resource and traces its operations.
type Resource struct {
	inner memres.Resource
	log   hclog.Logger
}

// Wrap returns a traced decorator around inner. A nil logger disables
// output without changing behavior. A nil inner panics.
func Wrap(inner memres.Resource, log hclog.Logger) *Resource {
	if inner == nil {
		panic("traced: nil inner resource")
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Resource{inner: inner, log: log}
}

// Allocate forwards to the wrapped resource, logging the outcome.
func (r *Resource) Allocate(size, align int) ([]byte, error) {
	buf, err := r.inner.Allocate(size, align)
	if err != nil {
		r.log.Error("allocation failed", "size", size, "align", align, "error", err)
		return nil, err
	}
	if r.log.IsTrace() {
		r.log.Trace("allocate", "size", size, "align", align, "addr", bufAddr(buf))
	}
	return buf, nil
}

// Deallocate forwards to the wrapped resource, logging the request.
func (r *Resource) Deallocate(buf []byte, size, align int) {
	if r.log.IsTrace() {
		r.log.Trace("deallocate", "size", size, "align", align, "addr", bufAddr(buf))
	}
	r.inner.Deallocate(buf, size, align)
}

// NeedsRelease reports the wrapped resource's deallocation requirement.
func (r *Resource) NeedsRelease() bool {
	return r.inner.NeedsRelease()
}

// Release forwards teardown to the wrapped resource if it supports it.
func (r *Resource) Release() {
	if rel, ok := r.inner.(memres.Releaser); ok {
		r.log.Debug("releasing resource")
		rel.Release()
	}
}

// Unwrap returns the decorated resource.
func (r *Resource) Unwrap() memres.Resource {
	return r.inner
}

func bufAddr(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
}
