package vmm

import (
	"testing"

	"github.com/golang/mock/gomock"

	"tinyos/kernel/cpu/cpumock"
	"tinyos/kernel/cpu/cpusim"
	"tinyos/kernel/mem"
)

func TestAddressSpaceLoad(t *testing.T) {
	t.Run("uninitialized directory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		as := NewAddressSpace(&PageDirectory{}, cpumock.NewMockMMU(ctrl), cpusim.NewMemory())
		if err := as.Load(); err != ErrNotInitialized {
			t.Fatalf("expected ErrNotInitialized; got %v", err)
		}
	})

	t.Run("required region not mapped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		pdt := newTestPDT(t)
		if _, err := pdt.IdentityMapRegion(0x100000, 0x2000); err != nil {
			t.Fatal(err)
		}

		// No CR3 writes are expected.
		mmu := cpumock.NewMockMMU(ctrl)
		phys := cpusim.NewMemory()

		as := NewAddressSpace(pdt, mmu, phys)
		as.Require("kernel", 0x100000, 0x3000)

		if err := as.Load(); err != ErrRegionNotMapped {
			t.Fatalf("expected ErrRegionNotMapped; got %v", err)
		}

		if len(phys.Populated()) != 0 {
			t.Fatal("expected tables not to be committed when a region is missing")
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		pdt := newTestPDT(t)
		if _, err := pdt.IdentityMapRegion(0x100000, 0x3000); err != nil {
			t.Fatal(err)
		}
		if _, err := pdt.IdentityMapRegion(0xB8000, 4000); err != nil {
			t.Fatal(err)
		}

		mmu := cpumock.NewMockMMU(ctrl)
		mmu.EXPECT().SwitchPDT(uintptr(0x100000)).Times(1)
		phys := cpusim.NewMemory()

		as := NewAddressSpace(pdt, mmu, phys)
		as.Require("kernel", 0x100000, 0x3000)
		as.Require("framebuffer", 0xB8000, 80*25*2)
		as.Require("empty", 0x300000, 0)

		if err := as.Load(); err != nil {
			t.Fatal(err)
		}

		if exp, got := uint32(0x101003), phys.ReadPhys32(pdt.PhysAddr()); got != exp {
			t.Fatalf("expected committed directory slot 0 to be 0x%x; got 0x%x", exp, got)
		}

		if got := len(as.Regions()); got != 3 {
			t.Fatalf("expected 3 required regions; got %d", got)
		}
	})
}

func TestAddressSpaceEnablePaging(t *testing.T) {
	newLoaded := func(t *testing.T, mmu *cpusim.MMU) *AddressSpace {
		pdt := newTestPDT(t)
		if _, err := pdt.IdentityMapRegion(0, mem.PageSize); err != nil {
			t.Fatal(err)
		}
		return NewAddressSpace(pdt, mmu, cpusim.NewMemory())
	}

	t.Run("before load", func(t *testing.T) {
		mmu := cpusim.NewMMU()
		as := newLoaded(t, mmu)

		if err := as.EnablePaging(); err != ErrNotLoaded {
			t.Fatalf("expected ErrNotLoaded; got %v", err)
		}

		if mmu.PagingEnabled() {
			t.Fatal("expected paging to stay disabled")
		}
	})

	t.Run("after another directory was loaded", func(t *testing.T) {
		mmu := cpusim.NewMMU()
		as := newLoaded(t, mmu)
		if err := as.Load(); err != nil {
			t.Fatal(err)
		}

		mmu.SwitchPDT(0x900000)
		if err := as.EnablePaging(); err != ErrNotLoaded {
			t.Fatalf("expected ErrNotLoaded; got %v", err)
		}
	})

	t.Run("load then enable", func(t *testing.T) {
		mmu := cpusim.NewMMU()
		as := newLoaded(t, mmu)

		if err := as.Load(); err != nil {
			t.Fatal(err)
		}

		if err := as.EnablePaging(); err != nil {
			t.Fatal(err)
		}

		if !mmu.PagingEnabled() {
			t.Fatal("expected paging to be enabled")
		}

		if err := as.EnablePaging(); err != ErrPagingEnabled {
			t.Fatalf("expected ErrPagingEnabled; got %v", err)
		}
	})

	t.Run("mmu call order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		pdt := newTestPDT(t)
		mmu := cpumock.NewMockMMU(ctrl)
		gomock.InOrder(
			mmu.EXPECT().SwitchPDT(pdt.PhysAddr()),
			mmu.EXPECT().ActivePDT().Return(pdt.PhysAddr()),
			mmu.EXPECT().PagingEnabled().Return(false),
			mmu.EXPECT().EnablePaging(),
		)

		as := NewAddressSpace(pdt, mmu, cpusim.NewMemory())
		if err := as.Load(); err != nil {
			t.Fatal(err)
		}
		if err := as.EnablePaging(); err != nil {
			t.Fatal(err)
		}
	})
}
