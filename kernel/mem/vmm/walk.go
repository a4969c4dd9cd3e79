package vmm

// pageTableWalker is a function that can be passed to the walk method. The
// function receives the current page level and page table entry as its
// arguments.  If the function returns false, then the page walk is aborted.
type pageTableWalker func(pteLevel uint8, pte *PageTableEntry) bool

// walk performs a page table walk for the given virtual address. It calls
// walkFn with the directory entry and then, if the address falls inside the
// window backed by the page table, with the page table entry. The walk stops
// early if walkFn returns false.
func (pdt *PageDirectory) walk(virtAddr uintptr, walkFn pageTableWalker) {
	addr := uint64(virtAddr)
	dirSlot := dirIndex(addr)
	if dirSlot >= entriesPerTable {
		return
	}

	if !walkFn(0, &pdt.dir[dirSlot]) || dirSlot != mappedDirIndex {
		return
	}

	walkFn(1, &pdt.table[tableIndex(addr)])
}
