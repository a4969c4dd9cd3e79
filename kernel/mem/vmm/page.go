package vmm

import "tinyos/kernel/mem"

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address pointed to by this Page.
func (p Page) Address() uintptr {
	return uintptr(p << mem.PageShift)
}

// PageFromAddress returns a Page that corresponds to the given virtual
// address. This function can handle both page-aligned and not aligned virtual
// addresses. in the latter case, the input address will be rounded down to the
// page that contains it.
func PageFromAddress(virtAddr uintptr) Page {
	return Page((virtAddr & ^(uintptr(mem.PageSize - 1))) >> mem.PageShift)
}

// PageOffset returns the offset within the page specified by a virtual
// address.
func PageOffset(virtAddr uintptr) uintptr {
	return virtAddr & uintptr(mem.PageSize-1)
}

// dirIndex returns the page directory slot that covers virtAddr.
func dirIndex(virtAddr uint64) uint64 {
	return virtAddr >> pageLevelShifts[0]
}

// tableIndex returns the page table slot that covers virtAddr.
func tableIndex(virtAddr uint64) uint64 {
	return (virtAddr >> pageLevelShifts[1]) & (entriesPerTable - 1)
}
