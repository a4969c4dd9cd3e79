package vmm

import "tinyos/kernel"

// Translate returns the physical address that corresponds to the supplied
// virtual address or ErrInvalidMapping if the virtual address does not
// correspond to a mapped physical address.
func (pdt *PageDirectory) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	pte, err := pdt.pteForAddress(virtAddr)
	if err != nil {
		return 0, err
	}

	// Calculate the physical address by taking the physical frame address and
	// appending the offset from the virtual address
	physAddr := pte.Frame().Address() + PageOffset(virtAddr)
	return physAddr, nil
}

// pteForAddress returns the final page table entry that correspond to a
// particular virtual address. The function performs a page table walk till it
// reaches the final page table entry returning ErrInvalidMapping if the page
// is not present.
func (pdt *PageDirectory) pteForAddress(virtAddr uintptr) (*PageTableEntry, *kernel.Error) {
	if !pdt.initialized {
		return nil, ErrNotInitialized
	}

	var entry *PageTableEntry
	pdt.walk(virtAddr, func(pteLevel uint8, pte *PageTableEntry) bool {
		if !pte.HasFlags(FlagPresent) {
			entry = nil
			return false
		}

		if pteLevel == pageLevels-1 {
			entry = pte
		}
		return true
	})

	if entry == nil {
		return nil, ErrInvalidMapping
	}
	return entry, nil
}
