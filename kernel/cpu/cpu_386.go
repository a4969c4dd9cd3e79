//go:build 386
// +build 386

package cpu

import (
	"reflect"
	"unsafe"
)

// Native drives the processor it is running on. It implements MMU,
// PhysMemory and PortIO.
type Native struct{}

// SwitchPDT sets the root page table directory to point to the specified
// physical address and flushes the TLB.
func (Native) SwitchPDT(pdtPhysAddr uintptr) { switchPDT(pdtPhysAddr) }

// ActivePDT returns the physical address of the currently active page table.
func (Native) ActivePDT() uintptr { return activePDT() }

// EnablePaging sets CR0.PE and CR0.PG.
func (Native) EnablePaging() { enablePaging() }

// PagingEnabled reports whether CR0.PG is set.
func (Native) PagingEnabled() bool { return readCR0()&CR0Paging != 0 }

// WritePhys32 copies words to physical memory. It must only be used while
// the target range is identity-mapped or paging is disabled.
func (Native) WritePhys32(physAddr uintptr, words []uint32) {
	dst := *(*[]uint32)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  len(words),
		Cap:  len(words),
		Data: physAddr,
	}))
	copy(dst, words)
}

// PortReadByte reads a uint8 value from the requested port.
func (Native) PortReadByte(port uint16) uint8 { return portReadByte(port) }

// PortReadWord reads a uint16 value from the requested port.
func (Native) PortReadWord(port uint16) uint16 { return portReadWord(port) }

// PortWriteByte writes a uint8 value to the requested port.
func (Native) PortWriteByte(port uint16, val uint8) { portWriteByte(port, val) }

// Halt disables interrupts and stops instruction execution.
func Halt()

// ID returns information about the CPU and its features. It
// is implemented as a CPUID instruction with EAX=leaf and
// returns the values in EAX, EBX, ECX and EDX.
func ID(leaf uint32) (uint32, uint32, uint32, uint32)

func switchPDT(pdtPhysAddr uintptr)
func activePDT() uintptr
func readCR0() uint32
func enablePaging()
func portReadByte(port uint16) uint8
func portReadWord(port uint16) uint16
func portWriteByte(port uint16, val uint8)
