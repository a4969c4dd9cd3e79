package vmm

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"tinyos/kernel"
	"tinyos/kernel/cpu"
	"tinyos/kernel/klog"
	"tinyos/kernel/mem"
)

var (
	// ErrRegionNotMapped is returned by Load when a required region has a
	// page without a present mapping.
	ErrRegionNotMapped = &kernel.Error{Module: "vmm", Message: "required region is not mapped"}

	// ErrNotLoaded is returned by EnablePaging when the page directory has
	// not been loaded into CR3.
	ErrNotLoaded = &kernel.Error{Module: "vmm", Message: "page directory not loaded"}

	// ErrPagingEnabled is returned by EnablePaging when paging is already on.
	ErrPagingEnabled = &kernel.Error{Module: "vmm", Message: "paging already enabled"}
)

// Region is a virtual address range that must be mapped before the address
// space can be activated.
type Region struct {
	Name  string
	Start uintptr
	Size  mem.Size
}

// AddressSpace activates a PageDirectory on the processor. Regions that the
// running code depends on, such as the kernel image, the stack and the
// framebuffer, are registered with Require and checked before the directory
// is loaded.
type AddressSpace struct {
	pdt  *PageDirectory
	mmu  cpu.MMU
	phys cpu.PhysMemory
	log  *logrus.Entry

	required []Region
	loaded   bool
}

// NewAddressSpace returns an address space that activates pdt through mmu
// after committing its tables to phys.
func NewAddressSpace(pdt *PageDirectory, mmu cpu.MMU, phys cpu.PhysMemory) *AddressSpace {
	return &AddressSpace{
		pdt:  pdt,
		mmu:  mmu,
		phys: phys,
		log:  klog.Module("vmm"),
	}
}

// PageDirectory returns the page directory managed by this address space.
func (as *AddressSpace) PageDirectory() *PageDirectory {
	return as.pdt
}

// Require registers a region that must be fully mapped when Load is called.
func (as *AddressSpace) Require(name string, start uintptr, size mem.Size) {
	as.required = append(as.required, Region{Name: name, Start: start, Size: size})
}

// Regions returns the registered regions in registration order.
func (as *AddressSpace) Regions() []Region {
	return append([]Region(nil), as.required...)
}

// Load verifies that every required region is mapped, commits the page
// tables to physical memory and loads the page directory address into CR3.
func (as *AddressSpace) Load() *kernel.Error {
	if !as.pdt.Initialized() {
		return ErrNotInitialized
	}

	for _, r := range as.required {
		if addr, ok := as.firstUnmapped(r); !ok {
			as.log.WithFields(logrus.Fields{
				"region": r.Name,
				"addr":   fmt.Sprintf("0x%x", addr),
			}).Error("required region is not mapped")
			return ErrRegionNotMapped
		}
	}

	if err := as.pdt.Commit(as.phys); err != nil {
		return err
	}

	as.mmu.SwitchPDT(as.pdt.PhysAddr())
	as.loaded = true
	as.log.Infof("loaded page directory at 0x%x", as.pdt.PhysAddr())
	return nil
}

// EnablePaging turns on paging. It must be called after Load and at most
// once.
func (as *AddressSpace) EnablePaging() *kernel.Error {
	switch {
	case !as.loaded || as.mmu.ActivePDT() != as.pdt.PhysAddr():
		return ErrNotLoaded
	case as.mmu.PagingEnabled():
		return ErrPagingEnabled
	}

	as.mmu.EnablePaging()
	as.log.Info("paging enabled")
	return nil
}

// firstUnmapped returns the address of the first page in r without a
// present mapping.
func (as *AddressSpace) firstUnmapped(r Region) (uintptr, bool) {
	pages := (r.Size + mem.Size(PageOffset(r.Start))).Pages()
	page := PageFromAddress(r.Start).Address()
	for i := uint32(0); i < pages; i, page = i+1, page+uintptr(mem.PageSize) {
		if _, err := as.pdt.Translate(page); err != nil {
			return page, false
		}
	}
	return 0, true
}
