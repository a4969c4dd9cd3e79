package allocator

import (
	"tinyos/kernel/mem/pmm"
)

// FrameList is an ordered run of frames detached from a Pool. The zero
// value is an empty list.
type FrameList struct {
	pool       *Pool
	head, tail int
	length     int
}

// Len returns the number of frames in the list.
func (l FrameList) Len() int {
	return l.length
}

// Empty returns true if the list holds no frames.
func (l FrameList) Empty() bool {
	return l.length == 0
}

// Head returns the descriptor of the first frame in the list.
func (l FrameList) Head() (Descriptor, bool) {
	if l.length == 0 {
		return Descriptor{}, false
	}
	return l.pool.Descriptor(l.head)
}

// Tail returns the descriptor of the last frame in the list.
func (l FrameList) Tail() (Descriptor, bool) {
	if l.length == 0 {
		return Descriptor{}, false
	}
	return l.pool.Descriptor(l.tail)
}

// Visit invokes visitor for each frame in list order. The walk stops early
// if visitor returns false.
func (l FrameList) Visit(visitor func(Descriptor) bool) {
	if l.length == 0 {
		return
	}
	l.pool.visit(l.head, visitor)
}

// VisitFrames invokes visitor with the page frame that starts each frame in
// the list. It allows a FrameList to be handed directly to the page mapper.
func (l FrameList) VisitFrames(visitor func(pmm.Frame) bool) {
	l.Visit(func(d Descriptor) bool {
		return visitor(pmm.FrameFromAddress(d.Addr))
	})
}

// Addrs returns the physical start address of each frame in list order.
func (l FrameList) Addrs() []uintptr {
	addrs := make([]uintptr, 0, l.length)
	l.Visit(func(d Descriptor) bool {
		addrs = append(addrs, d.Addr)
		return true
	})
	return addrs
}
