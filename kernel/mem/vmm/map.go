package vmm

import (
	"tinyos/kernel"
	"tinyos/kernel/mem"
	"tinyos/kernel/mem/pmm"
)

// FrameSource yields, in order, the physical frames that back consecutive
// virtual pages. allocator.FrameList implements it.
type FrameSource interface {
	VisitFrames(visitor func(pmm.Frame) bool)
}

// Frames is a FrameSource over an explicit list of frames.
type Frames []pmm.Frame

// VisitFrames implements FrameSource.
func (f Frames) VisitFrames(visitor func(pmm.Frame) bool) {
	for _, frame := range f {
		if !visitor(frame) {
			return
		}
	}
}

// frameRun is a FrameSource over count consecutive frames.
type frameRun struct {
	start pmm.Frame
	count uint32
}

func (r frameRun) VisitFrames(visitor func(pmm.Frame) bool) {
	for i := uint32(0); i < r.count; i++ {
		if !visitor(r.start + pmm.Frame(i)) {
			return
		}
	}
}

// Map installs a mapping for each frame yielded by frames. The i-th frame
// backs the page at virtBase + i*PageSize and is mapped present and RW,
// supervisor-only.
//
// Existing mappings are never replaced: a page whose table entry is already
// present keeps its original frame. Pages outside the window covered by
// directory slot 0 are skipped. Map returns the number of entries it
// installed.
func (pdt *PageDirectory) Map(virtBase uintptr, frames FrameSource) (int, *kernel.Error) {
	if !pdt.initialized {
		return 0, ErrNotInitialized
	}

	var (
		installed int
		page      uint64
	)

	frames.VisitFrames(func(frame pmm.Frame) bool {
		virtAddr := uint64(virtBase) + page*uint64(mem.PageSize)
		page++

		if dirIndex(virtAddr) != mappedDirIndex {
			return true
		}

		pte := &pdt.table[tableIndex(virtAddr)]
		if pte.HasFlags(FlagPresent) {
			return true
		}

		*pte = 0
		pte.SetFrame(frame)
		pte.SetFlags(FlagPresent | FlagRW)
		installed++
		return true
	})

	return installed, nil
}

// MapRegion maps size bytes of physical memory starting at physAddr to the
// virtual range starting at virtAddr. Both addresses are rounded down to a
// page boundary and size is rounded up to cover the last partial page.
func (pdt *PageDirectory) MapRegion(virtAddr, physAddr uintptr, size mem.Size) (int, *kernel.Error) {
	startPage := PageFromAddress(virtAddr).Address()
	run := frameRun{
		start: pmm.FrameFromAddress(physAddr),
		count: (size + mem.Size(PageOffset(virtAddr))).Pages(),
	}
	return pdt.Map(startPage, run)
}

// IdentityMapRegion maps the physical range [physAddr, physAddr+size) to
// the same virtual addresses.
func (pdt *PageDirectory) IdentityMapRegion(physAddr uintptr, size mem.Size) (int, *kernel.Error) {
	return pdt.MapRegion(physAddr, physAddr, size)
}
