package checked

import (
	"runtime"
	"strings"
	"testing"

	"github.com/nvalden/memres-go/pkg/memres"
	"github.com/nvalden/memres-go/pkg/memres/slab"
)

func TestTracker_TracksLiveAllocations(t *testing.T) {
	p := slab.New()
	defer p.Release()
	tr := Wrap(p)

	a, err := tr.Allocate(100, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	b, err := tr.Allocate(50, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if tr.Outstanding() != 2 {
		t.Fatalf("Outstanding = %d, want 2", tr.Outstanding())
	}
	if tr.LiveBytes() != 150 {
		t.Fatalf("LiveBytes = %d, want 150", tr.LiveBytes())
	}

	tr.Deallocate(a, 100, 8)
	tr.Deallocate(b, 50, 8)

	if tr.Outstanding() != 0 {
		t.Fatalf("Outstanding = %d after balanced release, want 0", tr.Outstanding())
	}
	if tr.LiveBytes() != 0 {
		t.Fatalf("LiveBytes = %d after balanced release, want 0", tr.LiveBytes())
	}
}

func TestTracker_PanicsOnUntrackedBuffer(t *testing.T) {
	p := slab.New()
	defer p.Release()
	tr := Wrap(p)

	stray := make([]byte, 64)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on untracked deallocate")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "untracked") {
			t.Fatalf("panic = %v, want untracked-address message", r)
		}
	}()
	tr.Deallocate(stray, 64, 8)
}

func TestTracker_PanicsOnMismatchedRequest(t *testing.T) {
	p := slab.New()
	defer p.Release()
	tr := Wrap(p)

	buf, err := tr.Allocate(64, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on mismatched size")
			}
		}()
		tr.Deallocate(buf, 32, 8)
	}()

	// The record survives a mismatched attempt; the corrected call succeeds.
	tr.Deallocate(buf, 64, 8)
	if tr.Outstanding() != 0 {
		t.Fatalf("Outstanding = %d, want 0", tr.Outstanding())
	}
}

func TestTracker_ReportsLeaks(t *testing.T) {
	p := slab.New()
	defer p.Release()
	tr := Wrap(p)

	if _, err := tr.Allocate(128, 16); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	var leaked int
	tr.Leaks(func(addr uintptr, size, align int) {
		if addr == 0 {
			t.Error("leak reported with zero address")
		}
		if size != 128 || align != 16 {
			t.Errorf("leak = size %d align %d, want 128/16", size, align)
		}
		leaked++
	})
	if leaked != 1 {
		t.Fatalf("reported %d leaks, want 1", leaked)
	}
}

func TestTracker_LeakedBufferAddressIsNotRecycled(t *testing.T) {
	tr := Wrap(memres.Default().Resource())

	// Leak one allocation: the tracker's record is the only reference left.
	if _, err := tr.Allocate(64, 8); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	// Churn through fresh allocations under GC pressure. If the record did
	// not retain the leaked buffer, the collector could reuse its address
	// and a balanced Allocate would trip the double-allocation check.
	runtime.GC()
	for i := 0; i < 1000; i++ {
		if i%100 == 0 {
			runtime.GC()
		}
		buf, err := tr.Allocate(64, 8)
		if err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
		tr.Deallocate(buf, 64, 8)
	}

	if tr.Outstanding() != 1 {
		t.Fatalf("Outstanding = %d, want the single leaked allocation", tr.Outstanding())
	}
}

func TestTracker_ForwardsErrors(t *testing.T) {
	p := slab.New()
	p.Release() // closed pool rejects allocation
	tr := Wrap(p)

	if _, err := tr.Allocate(64, 8); err == nil {
		t.Fatal("expected error from closed inner resource")
	}
	if tr.Outstanding() != 0 {
		t.Fatalf("Outstanding = %d after failed allocation, want 0", tr.Outstanding())
	}
}

func TestTracker_ReleaseForwardsAndResets(t *testing.T) {
	p := slab.New()
	tr := Wrap(p)

	if _, err := tr.Allocate(64, 8); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	tr.Release()

	if tr.Outstanding() != 0 || tr.LiveBytes() != 0 {
		t.Fatalf("tracker not reset: outstanding=%d bytes=%d", tr.Outstanding(), tr.LiveBytes())
	}
	// The wrapped pool is closed now.
	if _, err := p.Allocate(16, 8); err == nil {
		t.Fatal("expected closed-pool error after Release")
	}
}

func TestTracker_WorksAsSharedHandle(t *testing.T) {
	h := memres.NewShared(Wrap(slab.New()))
	buf, err := h.Allocate(32, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	h.Deallocate(buf, 32, 8)
	h.Release()
}

func TestWrap_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil inner")
		}
	}()
	Wrap(nil)
}
