package allocator

import (
	"bytes"
	"testing"

	"github.com/go-test/deep"

	"tinyos/kernel/mem"
	"tinyos/kernel/mem/pmm"
)

func freeIndices(p *Pool) []int {
	var out []int
	p.VisitFree(func(d Descriptor) bool {
		out = append(out, d.Index)
		return true
	})
	return out
}

func listIndices(l FrameList) []int {
	var out []int
	l.Visit(func(d Descriptor) bool {
		out = append(out, d.Index)
		return true
	})
	return out
}

func TestPoolInit(t *testing.T) {
	p := NewPool(0x100000, mem.LargeFrameSize, 4)

	if exp, got := 4, p.FreeCount(); got != exp {
		t.Fatalf("expected free count %d; got %d", exp, got)
	}

	if diff := deep.Equal(freeIndices(p), []int{0, 1, 2, 3}); diff != nil {
		t.Fatal(diff)
	}

	for i := 0; i < 4; i++ {
		d, ok := p.Descriptor(i)
		if !ok {
			t.Fatalf("expected descriptor %d to exist", i)
		}

		if exp := uintptr(0x100000 + i*0x200000); d.Addr != exp {
			t.Errorf("expected frame %d to start at 0x%x; got 0x%x", i, exp, d.Addr)
		}
	}

	if d, _ := p.Descriptor(0); d.Prev != nilIndex {
		t.Errorf("expected first frame to have no predecessor; got %d", d.Prev)
	}

	if d, _ := p.Descriptor(3); d.Next != nilIndex {
		t.Errorf("expected last frame to have no successor; got %d", d.Next)
	}

	if _, ok := p.Descriptor(4); ok {
		t.Error("expected out of range descriptor lookup to fail")
	}

	// Re-initializing returns every frame to the pool.
	if _, err := p.Allocate(3); err != nil {
		t.Fatal(err)
	}
	p.Init()
	if diff := deep.Equal(freeIndices(p), []int{0, 1, 2, 3}); diff != nil {
		t.Fatal(diff)
	}
}

func TestDefaultPool(t *testing.T) {
	p := DefaultPool()

	if exp, got := DefaultFrameCount, p.FrameCount(); got != exp {
		t.Fatalf("expected %d frames; got %d", exp, got)
	}

	if exp, got := 2*mem.Mb, p.FrameSize(); got != exp {
		t.Fatalf("expected frame size %d; got %d", exp, got)
	}

	last, _ := p.Descriptor(DefaultFrameCount - 1)
	if exp := uintptr(127 * 0x200000); last.Addr != exp {
		t.Fatalf("expected last frame at 0x%x; got 0x%x", exp, last.Addr)
	}
}

func TestAllocate(t *testing.T) {
	specs := []struct {
		descr       string
		count       int
		expErr      error
		expList     []int
		expFreeList []int
	}{
		{"zero frames", 0, ErrZeroRequested, nil, []int{0, 1, 2, 3}},
		{"negative count", -1, ErrZeroRequested, nil, []int{0, 1, 2, 3}},
		{"single frame", 1, nil, []int{0}, []int{1, 2, 3}},
		{"two frames", 2, nil, []int{0, 1}, []int{2, 3}},
		{"whole pool", 4, nil, []int{0, 1, 2, 3}, nil},
		{"more than available", 5, ErrInsufficientFrames, nil, []int{0, 1, 2, 3}},
	}

	for _, spec := range specs {
		t.Run(spec.descr, func(t *testing.T) {
			p := NewPool(0, mem.LargeFrameSize, 4)

			list, err := p.Allocate(spec.count)
			if spec.expErr != nil {
				if err != spec.expErr {
					t.Fatalf("expected error %v; got %v", spec.expErr, err)
				}
			} else if err != nil {
				t.Fatal(err)
			}

			if diff := deep.Equal(listIndices(list), spec.expList); diff != nil {
				t.Fatal(diff)
			}

			if diff := deep.Equal(freeIndices(p), spec.expFreeList); diff != nil {
				t.Fatal(diff)
			}

			if exp, got := len(spec.expFreeList), p.FreeCount(); got != exp {
				t.Fatalf("expected free count %d; got %d", exp, got)
			}

			if list.Len() != len(spec.expList) {
				t.Fatalf("expected list length %d; got %d", len(spec.expList), list.Len())
			}

			if list.Empty() {
				return
			}

			head, _ := list.Head()
			tail, _ := list.Tail()
			if head.Prev != nilIndex || tail.Next != nilIndex {
				t.Fatalf("expected detached list ends to be terminated; head.prev=%d tail.next=%d", head.Prev, tail.Next)
			}
		})
	}
}

func TestAllocateFreeScenario(t *testing.T) {
	p := NewPool(0, mem.LargeFrameSize, 4)

	list, err := p.Allocate(2)
	if err != nil {
		t.Fatal(err)
	}

	if diff := deep.Equal(list.Addrs(), []uintptr{0x000000, 0x200000}); diff != nil {
		t.Fatal(diff)
	}

	if diff := deep.Equal(freeIndices(p), []int{2, 3}); diff != nil {
		t.Fatal(diff)
	}

	if _, err = p.Allocate(3); err != ErrInsufficientFrames {
		t.Fatalf("expected ErrInsufficientFrames; got %v", err)
	}

	if diff := deep.Equal(freeIndices(p), []int{2, 3}); diff != nil {
		t.Fatalf("expected failed allocation to leave the free list untouched: %v", diff)
	}

	p.Free(&list)

	if !list.Empty() {
		t.Fatal("expected Free to reset the caller's list")
	}

	if diff := deep.Equal(freeIndices(p), []int{0, 1, 2, 3}); diff != nil {
		t.Fatal(diff)
	}

	if _, err = p.Allocate(0); err != ErrZeroRequested {
		t.Fatalf("expected ErrZeroRequested; got %v", err)
	}
}

func TestFree(t *testing.T) {
	t.Run("prepends in list order", func(t *testing.T) {
		p := NewPool(0, mem.LargeFrameSize, 4)
		a, _ := p.Allocate(1)
		b, _ := p.Allocate(1)

		p.Free(&a)
		if diff := deep.Equal(freeIndices(p), []int{0, 2, 3}); diff != nil {
			t.Fatal(diff)
		}

		p.Free(&b)
		if diff := deep.Equal(freeIndices(p), []int{1, 0, 2, 3}); diff != nil {
			t.Fatal(diff)
		}

		head, _ := p.Descriptor(1)
		if head.Prev != nilIndex || head.Next != 0 {
			t.Fatalf("expected freed frame to be linked at the head; got prev=%d next=%d", head.Prev, head.Next)
		}

		second, _ := p.Descriptor(0)
		if second.Prev != 1 {
			t.Fatalf("expected old head to point back to the freed frame; got %d", second.Prev)
		}
	})

	t.Run("into exhausted pool", func(t *testing.T) {
		p := NewPool(0, mem.LargeFrameSize, 3)
		all, _ := p.Allocate(3)

		if p.FreeCount() != 0 {
			t.Fatalf("expected empty free list; got %d frames", p.FreeCount())
		}

		p.Free(&all)
		if diff := deep.Equal(freeIndices(p), []int{0, 1, 2}); diff != nil {
			t.Fatal(diff)
		}
	})

	t.Run("empty and nil lists", func(t *testing.T) {
		p := NewPool(0, mem.LargeFrameSize, 2)
		var empty FrameList

		p.Free(&empty)
		p.Free(nil)

		if exp, got := 2, p.FreeCount(); got != exp {
			t.Fatalf("expected free count %d; got %d", exp, got)
		}
	})
}

func TestConservation(t *testing.T) {
	p := NewPool(0, mem.LargeFrameSize, 16)

	var held []FrameList
	for _, n := range []int{3, 1, 5, 2} {
		l, err := p.Allocate(n)
		if err != nil {
			t.Fatal(err)
		}
		held = append(held, l)
	}

	check := func() {
		seen := make(map[int]int)
		for _, idx := range freeIndices(p) {
			seen[idx]++
		}
		for _, l := range held {
			for _, idx := range listIndices(l) {
				seen[idx]++
			}
		}

		if len(seen) != 16 {
			t.Fatalf("expected all 16 frames to be accounted for; got %d", len(seen))
		}
		for idx, count := range seen {
			if count != 1 {
				t.Fatalf("expected frame %d to belong to exactly one list; found in %d", idx, count)
			}
		}
	}

	check()
	p.Free(&held[2])
	check()
	p.Free(&held[0])
	check()

	if exp, got := 5+3+16-11, p.FreeCount(); got != exp {
		t.Fatalf("expected free count %d; got %d", exp, got)
	}
}

func TestVisitFrames(t *testing.T) {
	p := NewPool(0x400000, mem.LargeFrameSize, 4)
	list, _ := p.Allocate(3)

	var frames []pmm.Frame
	list.VisitFrames(func(f pmm.Frame) bool {
		frames = append(frames, f)
		return len(frames) < 2
	})

	if diff := deep.Equal(frames, []pmm.Frame{0x400, 0x600}); diff != nil {
		t.Fatal(diff)
	}

	var emptyList FrameList
	emptyList.VisitFrames(func(pmm.Frame) bool {
		t.Fatal("expected visitor not to be invoked for an empty list")
		return false
	})
}

func TestDump(t *testing.T) {
	p := NewPool(0, mem.LargeFrameSize, 4)
	a, _ := p.Allocate(1)
	b, _ := p.Allocate(1)
	p.Free(&a)
	_ = b

	var buf bytes.Buffer
	p.Dump(&buf)

	exp := "free frames: 3/4 (frame size 2Mb)\n" +
		"\t[0x00000000 - 0x00200000] frames 0-0\n" +
		"\t[0x00400000 - 0x00800000] frames 2-3\n"

	if got := buf.String(); got != exp {
		t.Fatalf("expected dump:\n%q\ngot:\n%q", exp, got)
	}
}
