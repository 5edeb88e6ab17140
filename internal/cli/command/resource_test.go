package command

import (
	"flag"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/nvalden/memres-go/pkg/memres"
	"github.com/nvalden/memres-go/pkg/memres/arena"
	"github.com/nvalden/memres-go/pkg/memres/checked"
	"github.com/nvalden/memres-go/pkg/memres/slab"
)

// testContext parses args against flags and returns a CLI context.
func testContext(t *testing.T, flags []cli.Flag, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestParseResourceSpec(t *testing.T) {
	c := testContext(t, resourceFlags(),
		"--resource", "arena",
		"--chunk-size", "128KiB",
		"--max-capacity", "1MiB",
		"--checked",
	)

	spec, err := parseResourceSpec(c)
	if err != nil {
		t.Fatalf("parseResourceSpec: %v", err)
	}
	if spec.Kind != "arena" {
		t.Errorf("Kind = %q, want arena", spec.Kind)
	}
	if spec.ChunkSize != 128*1024 {
		t.Errorf("ChunkSize = %d, want %d", spec.ChunkSize, 128*1024)
	}
	if spec.MaxCapacity != 1024*1024 {
		t.Errorf("MaxCapacity = %d, want %d", spec.MaxCapacity, 1024*1024)
	}
	if !spec.Checked || spec.Trace {
		t.Errorf("Checked/Trace = %v/%v, want true/false", spec.Checked, spec.Trace)
	}
}

func TestParseResourceSpec_BadSize(t *testing.T) {
	c := testContext(t, resourceFlags(), "--chunk-size", "lots")
	if _, err := parseResourceSpec(c); err == nil {
		t.Fatal("expected error for unparseable size")
	}
}

func TestBuildHandle_Kinds(t *testing.T) {
	for _, kind := range []string{"arena", "slab"} {
		t.Run(kind, func(t *testing.T) {
			spec := ResourceSpec{Kind: kind, ChunkSize: 64 * 1024, PoolMaxSize: 64 * 1024}
			h, err := BuildHandle(spec, nil)
			if err != nil {
				t.Fatalf("BuildHandle: %v", err)
			}
			defer h.Release()

			buf, err := h.Allocate(64, 8)
			if err != nil {
				t.Fatalf("Allocate: %v", err)
			}
			if h.NeedsRelease() {
				h.Deallocate(buf, 64, 8)
			}

			switch kind {
			case "arena":
				if _, ok := h.Resource().(*arena.Arena); !ok {
					t.Fatalf("Resource() = %T, want *arena.Arena", h.Resource())
				}
			case "slab":
				if _, ok := h.Resource().(*slab.Pool); !ok {
					t.Fatalf("Resource() = %T, want *slab.Pool", h.Resource())
				}
			}
		})
	}
}

func TestBuildHandle_Heap(t *testing.T) {
	h, err := BuildHandle(ResourceSpec{Kind: "heap"}, nil)
	if err != nil {
		t.Fatalf("BuildHandle: %v", err)
	}
	defer h.Release()

	if !h.Shared() {
		t.Error("built handle should be reference counted")
	}
	if h.Equal(memres.Default()) {
		t.Error("wrapped heap handle must be a distinct instance")
	}
}

func TestBuildHandle_UnknownKind(t *testing.T) {
	if _, err := BuildHandle(ResourceSpec{Kind: "mystery"}, nil); err == nil {
		t.Fatal("expected error for unknown resource kind")
	}
}

func TestBuildHandle_DecoratorChain(t *testing.T) {
	spec := ResourceSpec{Kind: "slab", PoolMaxSize: 4096, Checked: true, Trace: true}
	h, err := BuildHandle(spec, nil)
	if err != nil {
		t.Fatalf("BuildHandle: %v", err)
	}
	defer h.Release()

	tr := findTracker(h.Resource())
	if tr == nil {
		t.Fatal("findTracker should locate the tracker through the trace layer")
	}

	buf, err := h.Allocate(100, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if tr.Outstanding() != 1 {
		t.Fatalf("Outstanding = %d, want 1", tr.Outstanding())
	}
	h.Deallocate(buf, 100, 8)
	if tr.Outstanding() != 0 {
		t.Fatalf("Outstanding = %d, want 0", tr.Outstanding())
	}
}

func TestFindTracker_Absent(t *testing.T) {
	p := slab.New()
	defer p.Release()
	if findTracker(p) != nil {
		t.Fatal("findTracker should return nil for an undecorated resource")
	}
}

func TestFindTracker_Bare(t *testing.T) {
	p := slab.New()
	defer p.Release()
	tr := checked.Wrap(p)
	if findTracker(tr) != tr {
		t.Fatal("findTracker should return the tracker itself")
	}
}
