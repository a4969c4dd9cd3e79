package vmm

import "tinyos/kernel/mem"

const (
	// pageLevels indicates the number of page levels used by the 32-bit
	// non-PAE paging scheme.
	pageLevels = 2

	// entriesPerTable is the number of 32-bit entries in a page directory
	// or page table.
	entriesPerTable = 1024

	// ptePhysPageMask is a mask that allows us to extract the physical
	// memory address pointed to by a page table entry.
	ptePhysPageMask = uint32(0xfffff000)

	// mappedDirIndex is the only page directory slot backed by a page
	// table. Virtual addresses outside its 4 MiB window cannot be mapped.
	mappedDirIndex = 0

	// MappableLimit is the first virtual address that falls outside the
	// window covered by the page table.
	MappableLimit = uintptr(entriesPerTable) << mem.PageShift
)

// pageLevelShifts defines the shift required to access each page table
// component of a virtual address.
var pageLevelShifts = [pageLevels]uint8{22, 12}
