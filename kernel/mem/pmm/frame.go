// Package pmm contains code that manages physical memory frame allocations.
package pmm

import (
	"math"

	"tinyos/kernel/mem"
)

// Frame describes a physical memory page index.
type Frame uint32

const (
	// InvalidFrame marks a frame index that does not describe memory.
	InvalidFrame = Frame(math.MaxUint32)

	// MaxFrame is the highest page index addressable by a 32-bit physical
	// address.
	MaxFrame = Frame(math.MaxUint32 >> mem.PageShift)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f <= MaxFrame
}

// Address returns the physical address of the first byte of the frame.
func (f Frame) Address() uintptr {
	return uintptr(f) << mem.PageShift
}

// FrameFromAddress returns the frame containing physAddr. Unaligned addresses
// round down.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame(physAddr >> mem.PageShift)
}
