// Package cpusim provides a software model of the processor facilities
// used by the kernel so that the boot path can run as a regular process.
package cpusim

import (
	"sort"
	"sync"

	"tinyos/kernel/cpu"
)

// MMU models the CR0 and CR3 control registers.
type MMU struct {
	mu   sync.Mutex
	cr0  uint32
	cr3  uintptr
	pdts []uintptr
}

// NewMMU returns an MMU with paging disabled.
func NewMMU() *MMU {
	return &MMU{}
}

// SwitchPDT implements cpu.MMU.
func (m *MMU) SwitchPDT(pdtPhysAddr uintptr) {
	m.mu.Lock()
	m.cr3 = pdtPhysAddr
	m.pdts = append(m.pdts, pdtPhysAddr)
	m.mu.Unlock()
}

// ActivePDT implements cpu.MMU.
func (m *MMU) ActivePDT() uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cr3
}

// EnablePaging implements cpu.MMU.
func (m *MMU) EnablePaging() {
	m.mu.Lock()
	m.cr0 |= cpu.CR0ProtectionEnable | cpu.CR0Paging
	m.mu.Unlock()
}

// PagingEnabled implements cpu.MMU.
func (m *MMU) PagingEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cr0&cpu.CR0Paging != 0
}

// CR0 returns the raw value of the CR0 register.
func (m *MMU) CR0() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cr0
}

// LoadedPDTs returns every address written to CR3 in order.
func (m *MMU) LoadedPDTs() []uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uintptr(nil), m.pdts...)
}

// Memory is a sparse, word-addressed model of physical memory. Words that
// were never written read back as zero.
type Memory struct {
	mu    sync.Mutex
	words map[uintptr]uint32
}

// NewMemory returns an empty physical memory model.
func NewMemory() *Memory {
	return &Memory{words: make(map[uintptr]uint32)}
}

// WritePhys32 implements cpu.PhysMemory.
func (m *Memory) WritePhys32(physAddr uintptr, words []uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, w := range words {
		addr := physAddr + uintptr(i)*4
		if w == 0 {
			delete(m.words, addr)
			continue
		}
		m.words[addr] = w
	}
}

// ReadPhys32 returns the word stored at physAddr.
func (m *Memory) ReadPhys32(physAddr uintptr) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.words[physAddr]
}

// Populated returns the addresses of all non-zero words in ascending order.
func (m *Memory) Populated() []uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()

	addrs := make([]uintptr, 0, len(m.words))
	for addr := range m.words {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
