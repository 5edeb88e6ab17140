// Package slab provides a pooled size-class resource.
package slab

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"sync"
	"unsafe"

	"github.com/spaolacci/murmur3"

	"github.com/nvalden/memres-go/pkg/memres"
)

const (
	// DefaultMinSize is the smallest default size class.
	DefaultMinSize = 16
	// DefaultMaxSize is the largest default size class.
	DefaultMaxSize = 64 << 10
	// DefaultMaxPerClass bounds how many buffers each class retains.
	DefaultMaxPerClass = 256

	// classAlign is the alignment every pooled buffer is padded to, so a
	// recycled buffer satisfies any alignment up to it.
	classAlign = 16
)

// Pool is a pooled size-class resource. It implements memres.Resource and
// memres.Releaser and is safe for concurrent use.
type Pool struct {
	minSize     int
	maxSize     int
	maxPerClass int

	mu     sync.Mutex
	free   [][][]byte // per class, stack of idle buffers
	closed bool

	inUse    int64
	hits     uint64
	misses   uint64
	retained int
}

// Option configures a Pool.
type Option func(*Pool)

// WithMinSize sets the smallest size class. Rounded up to a power of two.
func WithMinSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.minSize = ceilPow2(n)
		}
	}
}

// WithMaxSize sets the largest size class. Rounded up to a power of two.
func WithMaxSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.maxSize = ceilPow2(n)
		}
	}
}

// WithMaxPerClass bounds the idle buffers retained per class.
func WithMaxPerClass(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.maxPerClass = n
		}
	}
}

// New creates a pool.
func New(opts ...Option) *Pool {
	p := &Pool{
		minSize:     DefaultMinSize,
		maxSize:     DefaultMaxSize,
		maxPerClass: DefaultMaxPerClass,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxSize < p.minSize {
		p.maxSize = p.minSize
	}
	p.free = make([][][]byte, p.classCount())
	return p
}

// Allocate returns a size-byte buffer, recycling a class buffer when one is
// idle. Recycled buffers are not zeroed. Requests the classes cannot serve
// fall through to the heap.
func (p *Pool) Allocate(size, align int) ([]byte, error) {
	if size < 0 {
		return nil, memres.ErrInvalidSize.WithDetails(fmt.Sprintf("size %d", size))
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, memres.ErrInvalidAlign.WithDetails(fmt.Sprintf("align %d", align))
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, memres.ErrResourceClosed.WithDetails("slab pool")
	}

	cls, pooled := p.classFor(size, align)
	if pooled {
		if stack := p.free[cls]; len(stack) > 0 {
			entry := stack[len(stack)-1]
			p.free[cls] = stack[:len(stack)-1]
			p.retained--
			p.hits++
			p.inUse += int64(size)
			p.mu.Unlock()
			return entry[:size], nil
		}
	}
	p.misses++
	p.inUse += int64(size)
	p.mu.Unlock()

	if !pooled {
		return directAlloc(size, align)
	}
	entry := newClassBuffer(p.classSize(cls))
	return entry[:size], nil
}

// Deallocate recycles buf into its class freelist, or drops it when the
// class is full or the request was unpooled. The size and align must match
// the original Allocate.
func (p *Pool) Deallocate(buf []byte, size, align int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.inUse -= int64(size)
	cls, pooled := p.classFor(size, align)
	if !pooled {
		return
	}
	if len(p.free[cls]) >= p.maxPerClass {
		return
	}
	// Restore the full class extent; capacity was preserved by Allocate.
	p.free[cls] = append(p.free[cls], buf[:p.classSize(cls)])
	p.retained++
}

// NeedsRelease reports true: every pooled buffer must come back.
func (p *Pool) NeedsRelease() bool { return true }

// Release drops all freelists and closes the pool.
func (p *Pool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = nil
	p.retained = 0
	p.closed = true
}

// Stats is a snapshot of pool accounting.
type Stats struct {
	InUse    int64  // bytes handed out and not yet returned
	Hits     uint64 // allocations served from a freelist
	Misses   uint64 // allocations that went to the heap
	Retained int    // idle buffers currently held
}

// Stats returns a snapshot of the pool's accounting.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		InUse:    p.inUse,
		Hits:     p.hits,
		Misses:   p.misses,
		Retained: p.retained,
	}
}

// Fingerprint returns a hash of the pool's configuration. It identifies a
// configuration, not an instance.
func (p *Pool) Fingerprint() uint64 {
	var b [24]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(p.minSize))
	binary.LittleEndian.PutUint64(b[8:16], uint64(p.maxSize))
	binary.LittleEndian.PutUint64(b[16:24], uint64(p.maxPerClass))
	return murmur3.Sum64(b[:])
}

// classFor maps a request to its size class. pooled is false when the
// request must bypass the freelists: zero or oversized requests, or
// alignments beyond classAlign.
func (p *Pool) classFor(size, align int) (cls int, pooled bool) {
	if size == 0 || size > p.maxSize || align > classAlign {
		return 0, false
	}
	rounded := ceilPow2(size)
	if rounded < p.minSize {
		rounded = p.minSize
	}
	return bits.Len(uint(rounded)) - bits.Len(uint(p.minSize)), true
}

func (p *Pool) classCount() int {
	return bits.Len(uint(p.maxSize)) - bits.Len(uint(p.minSize)) + 1
}

func (p *Pool) classSize(cls int) int {
	return p.minSize << cls
}

// newClassBuffer allocates one class buffer padded so its base address is
// classAlign-aligned, which satisfies every alignment a pooled request may
// carry, now and on any future recycle.
func newClassBuffer(classSize int) []byte {
	raw := make([]byte, classSize+classAlign-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	pad := int(-base & uintptr(classAlign-1))
	return raw[pad : pad+classSize : pad+classSize]
}

// directAlloc serves unpooled requests straight from the heap.
func directAlloc(size, align int) ([]byte, error) {
	if size == 0 {
		b, err := directAlloc(1, align)
		if err != nil {
			return nil, err
		}
		return b[:0], nil
	}
	// The over-allocation for alignment padding must not wrap around.
	if size > math.MaxInt-align+1 {
		return nil, memres.ErrAllocFailure.WithDetails(
			fmt.Sprintf("size %d with align %d", size, align))
	}
	raw := make([]byte, size+align-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	pad := int(-base & uintptr(align-1))
	return raw[pad : pad+size : pad+size], nil
}

// ceilPow2 rounds n up to the next power of two.
func ceilPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
