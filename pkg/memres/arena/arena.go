// Package arena provides a monotonic chunked bump resource.
package arena

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/spaolacci/murmur3"

	"github.com/nvalden/memres-go/pkg/memres"
)

// DefaultChunkSize is the default size of each arena chunk.
const DefaultChunkSize = 64 << 10

// Arena is a monotonic bump resource. It implements memres.Resource and
// memres.Releaser.
type Arena struct {
	chunkSize int
	maxCap    int // 0 = unbounded

	chunks [][]byte
	cur    int // index of the chunk currently bumped into
	off    int // bump offset within chunks[cur]

	used   int // bytes handed out since the last Reset, padding included
	total  int // sum of chunk capacities
	peak   int // high-water mark of used, survives Reset
	closed bool
}

// Option configures an Arena.
type Option func(*Arena)

// WithChunkSize sets the chunk size for newly grown chunks.
func WithChunkSize(n int) Option {
	return func(a *Arena) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// WithMaxCapacity bounds the total chunk bytes the arena may hold.
// Requests that would grow past the bound fail with ErrAllocFailure.
func WithMaxCapacity(n int) Option {
	return func(a *Arena) {
		if n > 0 {
			a.maxCap = n
		}
	}
}

// WithInitialBuffer seeds the arena with a caller-supplied first chunk. The
// arena uses the buffer's full capacity and never returns it to the caller.
func WithInitialBuffer(buf []byte) Option {
	return func(a *Arena) {
		if cap(buf) > 0 {
			a.chunks = append(a.chunks, buf[:cap(buf)])
			a.total += cap(buf)
		}
	}
}

// New creates an arena.
func New(opts ...Option) *Arena {
	a := &Arena{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate bumps out a size-byte slice aligned to align.
func (a *Arena) Allocate(size, align int) ([]byte, error) {
	if a.closed {
		return nil, memres.ErrResourceClosed.WithDetails("arena")
	}
	if size < 0 {
		return nil, memres.ErrInvalidSize.WithDetails(fmt.Sprintf("size %d", size))
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, memres.ErrInvalidAlign.WithDetails(fmt.Sprintf("align %d", align))
	}

	// Zero-size requests still consume one byte so each returned buffer is
	// distinguishable from its neighbors.
	want := size
	if want == 0 {
		want = 1
	}
	// The over-allocation for alignment padding must not wrap around.
	if want > math.MaxInt-align+1 {
		return nil, memres.ErrAllocFailure.WithDetails(
			fmt.Sprintf("size %d with align %d", size, align))
	}

	for {
		if a.cur < len(a.chunks) {
			chunk := a.chunks[a.cur]
			pad := alignPad(chunk, a.off, align)
			if a.off+pad+want <= len(chunk) {
				start := a.off + pad
				a.off = start + want
				a.used += pad + want
				if a.used > a.peak {
					a.peak = a.used
				}
				return chunk[start : start+size : start+want], nil
			}
		}
		if err := a.grow(want + align - 1); err != nil {
			return nil, err
		}
	}
}

// Deallocate is a no-op: arena memory is reclaimed en masse.
func (a *Arena) Deallocate(buf []byte, size, align int) {}

// NeedsRelease reports false: callers may skip individual deallocation.
func (a *Arena) NeedsRelease() bool { return false }

// grow advances to the next retained chunk, or inserts one large enough to
// hold at least need bytes. On failure the cursor is left untouched so the
// current chunk's remaining space still serves smaller requests.
func (a *Arena) grow(need int) error {
	next := a.cur
	if next < len(a.chunks) {
		next++
	}
	if next < len(a.chunks) && len(a.chunks[next]) >= need {
		a.cur = next
		a.off = 0
		return nil
	}
	size := a.chunkSize
	if need > size {
		size = need
	}
	if a.maxCap > 0 && a.total+size > a.maxCap {
		return memres.ErrAllocFailure.WithDetails(
			fmt.Sprintf("capacity %d exhausted (%d in use, %d requested)", a.maxCap, a.total, size))
	}
	a.chunks = append(a.chunks[:next], append([][]byte{make([]byte, size)}, a.chunks[next:]...)...)
	a.total += size
	a.cur = next
	a.off = 0
	return nil
}

// Reset invalidates every buffer handed out so far and makes the retained
// chunks available again. Peak is preserved.
func (a *Arena) Reset() {
	a.cur = 0
	a.off = 0
	a.used = 0
}

// Release returns all chunks to the collector. The arena rejects further
// allocation afterwards.
func (a *Arena) Release() {
	a.chunks = nil
	a.cur = 0
	a.off = 0
	a.used = 0
	a.total = 0
	a.closed = true
}

// Len returns the bytes currently handed out, padding included.
func (a *Arena) Len() int { return a.used }

// Cap returns the total capacity of all retained chunks.
func (a *Arena) Cap() int { return a.total }

// Peak returns the high-water mark of Len. It survives Reset.
func (a *Arena) Peak() int { return a.peak }

// Fingerprint returns a hash of the arena's configuration. Two arenas built
// with the same options share a fingerprint; it identifies a configuration,
// not an instance, and is no substitute for Handle.Equal.
func (a *Arena) Fingerprint() uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(a.chunkSize))
	binary.LittleEndian.PutUint64(b[8:16], uint64(a.maxCap))
	return murmur3.Sum64(b[:])
}

// alignPad returns the padding needed so chunk[off+pad] sits on an
// align-aligned address.
func alignPad(chunk []byte, off, align int) int {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(chunk)))
	return int(-(base + uintptr(off)) & uintptr(align-1))
}
