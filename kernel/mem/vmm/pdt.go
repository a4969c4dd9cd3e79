package vmm

import (
	"tinyos/kernel"
	"tinyos/kernel/cpu"
	"tinyos/kernel/mem/pmm"
)

var (
	// ErrNotInitialized is returned when a page directory is used before
	// Init has zeroed its tables.
	ErrNotInitialized = &kernel.Error{Module: "vmm", Message: "page directory not initialized"}

	// ErrInvalidTableFrame is returned by Init when either table frame is
	// invalid or both tables are placed in the same frame.
	ErrInvalidTableFrame = &kernel.Error{Module: "vmm", Message: "invalid page table frame"}
)

// PageDirectory describes a two-level address space made up of a page
// directory and a single page table. Directory slot 0 points to the page
// table, so the mappable virtual window is [0, MappableLimit).
//
// Entries are edited in host memory and copied to the physical frames they
// describe by Commit.
type PageDirectory struct {
	dirFrame   pmm.Frame
	tableFrame pmm.Frame

	dir   [entriesPerTable]PageTableEntry
	table [entriesPerTable]PageTableEntry

	initialized bool
}

// Init zeroes the page directory and the page table and then points
// directory slot 0 at the page table with the present and RW flags set.
// dirFrame and tableFrame are the physical frames that will hold the two
// tables once they are committed.
func (pdt *PageDirectory) Init(dirFrame, tableFrame pmm.Frame) *kernel.Error {
	if !dirFrame.Valid() || !tableFrame.Valid() || dirFrame == tableFrame {
		return ErrInvalidTableFrame
	}

	pdt.dirFrame, pdt.tableFrame = dirFrame, tableFrame
	pdt.dir = [entriesPerTable]PageTableEntry{}
	pdt.table = [entriesPerTable]PageTableEntry{}

	slot := &pdt.dir[mappedDirIndex]
	slot.SetFrame(tableFrame)
	slot.SetFlags(FlagPresent | FlagRW)

	pdt.initialized = true
	return nil
}

// Initialized returns true once Init has completed.
func (pdt *PageDirectory) Initialized() bool {
	return pdt.initialized
}

// PhysAddr returns the physical address of the page directory. This is the
// value loaded into CR3 when the address space is activated.
func (pdt *PageDirectory) PhysAddr() uintptr {
	return pdt.dirFrame.Address()
}

// TablePhysAddr returns the physical address of the page table.
func (pdt *PageDirectory) TablePhysAddr() uintptr {
	return pdt.tableFrame.Address()
}

// DirEntry returns the page directory entry at index i.
func (pdt *PageDirectory) DirEntry(i int) PageTableEntry {
	return pdt.dir[i]
}

// TableEntry returns the page table entry at index i.
func (pdt *PageDirectory) TableEntry(i int) PageTableEntry {
	return pdt.table[i]
}

// Commit copies both tables to the physical frames passed to Init.
func (pdt *PageDirectory) Commit(phys cpu.PhysMemory) *kernel.Error {
	if !pdt.initialized {
		return ErrNotInitialized
	}

	phys.WritePhys32(pdt.dirFrame.Address(), entryWords(pdt.dir[:]))
	phys.WritePhys32(pdt.tableFrame.Address(), entryWords(pdt.table[:]))
	return nil
}

func entryWords(entries []PageTableEntry) []uint32 {
	words := make([]uint32, len(entries))
	for i, e := range entries {
		words[i] = uint32(e)
	}
	return words
}
