// Package allocator implements the physical frame pool used by the kernel.
//
// The pool manages a fixed set of equally sized physical frames. Frame
// descriptors live in an arena indexed by frame number and are chained into
// doubly linked lists through prev/next indices. Every frame belongs either
// to the pool's free list or to exactly one FrameList held by a caller.
package allocator

import (
	"fmt"
	"io"

	"tinyos/kernel"
	"tinyos/kernel/klog"
	"tinyos/kernel/mem"
)

const (
	// DefaultFrameCount is the number of frames managed by DefaultPool.
	DefaultFrameCount = 128

	// DefaultFrameSize is the size of each frame managed by DefaultPool.
	DefaultFrameSize = mem.LargeFrameSize

	// nilIndex terminates a descriptor chain.
	nilIndex = -1
)

var (
	// ErrZeroRequested is returned when an allocation asks for no frames.
	ErrZeroRequested = &kernel.Error{Module: "frame_alloc", Message: "zero frames requested"}

	// ErrInsufficientFrames is returned when the free list holds fewer
	// frames than requested.
	ErrInsufficientFrames = &kernel.Error{Module: "frame_alloc", Message: "insufficient free frames"}
)

// descriptor tracks a single physical frame.
type descriptor struct {
	addr       uintptr
	prev, next int
}

// Pool is a physical frame allocator over a contiguous run of frames.
//
// Pool is not safe for concurrent use; the kernel drives it from a single
// thread of execution.
type Pool struct {
	base      uintptr
	frameSize mem.Size
	arena     []descriptor

	freeHead  int
	freeCount int
}

// NewPool returns a pool managing count frames of frameSize bytes each,
// starting at physical address base. The returned pool is initialized with
// every frame on the free list.
func NewPool(base uintptr, frameSize mem.Size, count int) *Pool {
	if count < 0 {
		count = 0
	}

	p := &Pool{
		base:      base,
		frameSize: frameSize,
		arena:     make([]descriptor, count),
	}
	p.Init()
	return p
}

// DefaultPool returns a pool of DefaultFrameCount frames of DefaultFrameSize
// bytes starting at physical address 0.
func DefaultPool() *Pool {
	return NewPool(0, DefaultFrameSize, DefaultFrameCount)
}

// Init links every frame into the free list in ascending address order.
// Frame i starts at base + i*frameSize. Init may be called again to return
// all frames to the pool; any outstanding FrameList becomes invalid.
func (p *Pool) Init() {
	for i := range p.arena {
		p.arena[i] = descriptor{
			addr: p.base + uintptr(i)*uintptr(p.frameSize),
			prev: i - 1,
			next: i + 1,
		}
	}

	p.freeHead, p.freeCount = nilIndex, len(p.arena)
	if n := len(p.arena); n > 0 {
		p.arena[n-1].next = nilIndex
		p.freeHead = 0
	}

	klog.Module("pmm").WithField("frames", len(p.arena)).Debugf(
		"frame pool at 0x%x, frame size %s", p.base, p.frameSize,
	)
}

// Allocate detaches the first count frames of the free list and returns
// them as a FrameList in free-list order. The pool is left untouched when
// an error is returned.
func (p *Pool) Allocate(count int) (FrameList, *kernel.Error) {
	if count <= 0 {
		return FrameList{}, ErrZeroRequested
	}

	// Walk the free list to locate the last frame of the run.
	tail := p.freeHead
	for walked := 1; walked < count && tail != nilIndex; walked++ {
		tail = p.arena[tail].next
	}
	if tail == nilIndex {
		return FrameList{}, ErrInsufficientFrames
	}

	list := FrameList{pool: p, head: p.freeHead, tail: tail, length: count}

	remainder := p.arena[tail].next
	p.arena[tail].next = nilIndex
	p.freeHead = remainder
	if remainder != nilIndex {
		p.arena[remainder].prev = nilIndex
	}
	p.freeCount -= count

	return list, nil
}

// Free returns the frames in list to the front of the free list and resets
// list to the empty list. The list's internal order is preserved. Free
// trusts the caller: the frames must have been obtained from this pool and
// not already freed.
func (p *Pool) Free(list *FrameList) {
	if list == nil || list.length == 0 {
		return
	}

	p.arena[list.tail].next = p.freeHead
	if p.freeHead != nilIndex {
		p.arena[p.freeHead].prev = list.tail
	}
	p.arena[list.head].prev = nilIndex
	p.freeHead = list.head
	p.freeCount += list.length

	*list = FrameList{}
}

// FreeCount returns the number of frames on the free list.
func (p *Pool) FreeCount() int {
	return p.freeCount
}

// FrameCount returns the total number of frames managed by the pool.
func (p *Pool) FrameCount() int {
	return len(p.arena)
}

// FrameSize returns the size of each frame.
func (p *Pool) FrameSize() mem.Size {
	return p.frameSize
}

// Descriptor describes the state of a single frame.
type Descriptor struct {
	// Index is the position of the frame in the pool.
	Index int

	// Addr is the physical address of the first byte of the frame.
	Addr uintptr

	// Prev and Next hold the indices of the neighbouring frames in the
	// list that currently owns this frame or -1 at either end.
	Prev, Next int
}

// Descriptor returns the descriptor for the frame at index i. It returns
// false if i is out of range.
func (p *Pool) Descriptor(i int) (Descriptor, bool) {
	if i < 0 || i >= len(p.arena) {
		return Descriptor{}, false
	}
	d := p.arena[i]
	return Descriptor{Index: i, Addr: d.addr, Prev: d.prev, Next: d.next}, true
}

// VisitFree invokes visitor for each frame on the free list in order. The
// walk stops early if visitor returns false.
func (p *Pool) VisitFree(visitor func(Descriptor) bool) {
	p.visit(p.freeHead, visitor)
}

func (p *Pool) visit(head int, visitor func(Descriptor) bool) {
	for i := head; i != nilIndex; i = p.arena[i].next {
		d := p.arena[i]
		if !visitor(Descriptor{Index: i, Addr: d.addr, Prev: d.prev, Next: d.next}) {
			return
		}
	}
}

// Dump writes the free list as a series of contiguous address ranges.
func (p *Pool) Dump(w io.Writer) {
	fmt.Fprintf(w, "free frames: %d/%d (frame size %s)\n", p.freeCount, len(p.arena), p.frameSize)

	runStart, runEnd := nilIndex, nilIndex
	flush := func() {
		if runStart == nilIndex {
			return
		}
		fmt.Fprintf(w, "\t[0x%08x - 0x%08x] frames %d-%d\n",
			p.arena[runStart].addr,
			p.arena[runEnd].addr+uintptr(p.frameSize),
			runStart, runEnd,
		)
	}

	p.VisitFree(func(d Descriptor) bool {
		if runStart != nilIndex && d.Index == runEnd+1 {
			runEnd = d.Index
			return true
		}
		flush()
		runStart, runEnd = d.Index, d.Index
		return true
	})
	flush()
}
