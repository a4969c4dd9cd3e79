// Package cpu exposes the processor facilities used by the kernel.
//
// Hardware access goes through the MMU, PhysMemory and PortIO interfaces so
// that the memory manager and the port-mapped drivers can run against the
// native implementation on i386 or against a simulated machine elsewhere.
package cpu

import "encoding/binary"

// Control register bits used when enabling paging.
const (
	CR0ProtectionEnable = uint32(1 << 0)
	CR0Paging           = uint32(1 << 31)
)

// MMU is the control-register surface used by the virtual memory manager.
type MMU interface {
	// SwitchPDT loads the physical address of a page directory into CR3.
	SwitchPDT(pdtPhysAddr uintptr)

	// ActivePDT returns the physical address currently held in CR3.
	ActivePDT() uintptr

	// EnablePaging sets the protection-enable and paging bits in CR0.
	EnablePaging()

	// PagingEnabled reports whether the paging bit in CR0 is set.
	PagingEnabled() bool
}

// PhysMemory provides write access to physical memory. It is used to place
// page tables at the frames referenced by their entries before paging is
// switched on.
type PhysMemory interface {
	// WritePhys32 stores words at consecutive 32-bit slots starting at
	// physAddr.
	WritePhys32(physAddr uintptr, words []uint32)
}

// PortIO provides access to the x86 I/O port space.
type PortIO interface {
	PortReadByte(port uint16) uint8
	PortReadWord(port uint16) uint16
	PortWriteByte(port uint16, val uint8)
}

var (
	// cpuidFn is mocked by tests.
	cpuidFn = ID
)

// Vendor returns the 12-character vendor identification string reported by
// CPUID leaf 0. It returns an empty string when CPUID is unavailable.
func Vendor() string {
	_, ebx, ecx, edx := cpuidFn(0)
	if ebx == 0 && ecx == 0 && edx == 0 {
		return ""
	}

	var id [12]byte
	binary.LittleEndian.PutUint32(id[0:], ebx)
	binary.LittleEndian.PutUint32(id[4:], edx)
	binary.LittleEndian.PutUint32(id[8:], ecx)
	return string(id[:])
}

// IsIntel returns true if the code is running on an Intel processor.
func IsIntel() bool {
	return Vendor() == "GenuineIntel"
}
