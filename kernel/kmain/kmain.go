// Package kmain sequences the kernel boot: it brings up the console and the
// boot disk, sets up the frame pool and the identity-mapped address space,
// turns on paging and loads the boot file from the FAT16 boot volume.
package kmain

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tinyos/device"
	"tinyos/device/block"
	"tinyos/device/video/console"
	"tinyos/fs/fat16"
	"tinyos/kernel"
	"tinyos/kernel/cpu"
	"tinyos/kernel/klog"
	"tinyos/kernel/mem"
	"tinyos/kernel/mem/pmm"
	"tinyos/kernel/mem/pmm/allocator"
	"tinyos/kernel/mem/vmm"
	"tinyos/partition/mbr"
)

var (
	// ErrNoBootDisk is returned by Boot when the boot disk driver fails to
	// initialize.
	ErrNoBootDisk = &kernel.Error{Module: "kmain", Message: "boot disk not available"}

	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
)

// Hardware groups the devices Boot drives.
type Hardware struct {
	MMU     cpu.MMU
	Memory  cpu.PhysMemory
	Disk    block.Device
	Console *console.VgaTextConsole
}

// Config describes the physical memory layout and the boot volume.
type Config struct {
	// BootID tags the log output of this boot. A random id is generated
	// when empty.
	BootID string

	// PoolBase, FrameSize and FrameCount describe the physical frame pool.
	PoolBase   uintptr
	FrameSize  mem.Size
	FrameCount int

	// KernelStart and KernelEnd delimit the loaded kernel image. The page
	// directory and page table are placed on the pages following
	// KernelEnd.
	KernelStart uintptr
	KernelEnd   uintptr

	// StackStart and StackSize delimit the boot stack; StackPointer is the
	// stack address in use when Boot is called.
	StackStart   uintptr
	StackSize    mem.Size
	StackPointer uintptr

	// FramebufferAddr is the physical address of the text framebuffer.
	FramebufferAddr uintptr

	// HeapBase is the virtual address where HeapFrames pool frames are
	// mapped.
	HeapBase   uintptr
	HeapFrames int

	// PartitionBase is the LBA of the FAT16 boot sector. When
	// ProbePartition is set the MBR is consulted first and PartitionBase
	// is used only if no FAT16 partition is listed.
	PartitionBase  uint32
	ProbePartition bool

	// BootFile is read from the root directory of the boot volume, up to
	// ReadLimit bytes. An empty BootFile skips the read.
	BootFile  string
	ReadLimit int
}

// DefaultConfig returns the layout used on a standard PC.
func DefaultConfig() Config {
	return Config{
		PoolBase:        0,
		FrameSize:       allocator.DefaultFrameSize,
		FrameCount:      allocator.DefaultFrameCount,
		KernelStart:     0x100000,
		KernelEnd:       0x180000,
		StackStart:      0x1F0000,
		StackSize:       64 * mem.Kb,
		StackPointer:    0x1FFF00,
		FramebufferAddr: console.FramebufferPhysAddr,
		HeapBase:        0x200000,
		HeapFrames:      4,
		PartitionBase:   fat16.DefaultPartitionBase,
		ProbePartition:  true,
		BootFile:        "BOOT.TXT",
		ReadLimit:       4096,
	}
}

// System is the state built by a successful Boot.
type System struct {
	BootID  string
	Drivers []device.Driver

	Pool         *allocator.Pool
	Heap         allocator.FrameList
	AddressSpace *vmm.AddressSpace

	PartitionBase uint32
	Volume        *fat16.Volume

	// BootFile is nil when the configured file is missing.
	BootFile *fat16.File
	BootData []byte
}

// Boot runs the boot sequence on hw. Steps run strictly in order: the
// address space is activated only after every region the kernel touches
// has been mapped.
func Boot(hw Hardware, cfg Config) (*System, error) {
	sys := &System{BootID: cfg.BootID}
	if sys.BootID == "" {
		sys.BootID = uuid.New().String()
	}

	klog.SetOutputSink(hw.Console)
	log := klog.Module("kmain").WithField("boot_id", sys.BootID)

	drivers := []device.Driver{hw.Console}
	diskDriver, isDriver := hw.Disk.(device.Driver)
	if isDriver {
		drivers = append(drivers, diskDriver)
	}
	sys.Drivers = device.InitDrivers(hw.Console, drivers...)
	if isDriver && !hasDriver(sys.Drivers, diskDriver) {
		return nil, ErrNoBootDisk
	}
	log.Info("booting")

	if err := setupMemory(sys, hw, cfg, log); err != nil {
		return nil, err
	}

	if err := mountBootVolume(sys, hw.Disk, cfg, log); err != nil {
		return nil, err
	}

	return sys, nil
}

func setupMemory(sys *System, hw Hardware, cfg Config, log *logrus.Entry) error {
	sys.Pool = allocator.NewPool(cfg.PoolBase, cfg.FrameSize, cfg.FrameCount)

	heap, kerr := sys.Pool.Allocate(cfg.HeapFrames)
	if kerr != nil {
		return errors.Wrapf(kerr, "kmain: allocate %d heap frames", cfg.HeapFrames)
	}
	sys.Heap = heap

	dirFrame := pmm.FrameFromAddress(vmm.PageFromAddress(cfg.KernelEnd + uintptr(mem.PageSize) - 1).Address())
	tableFrame := dirFrame + 1

	pdt := &vmm.PageDirectory{}
	if kerr = pdt.Init(dirFrame, tableFrame); kerr != nil {
		return errors.Wrap(kerr, "kmain: init page directory")
	}

	kernelSize := mem.Size((tableFrame + 1).Address() - cfg.KernelStart)
	regions := []vmm.Region{
		{Name: "kernel", Start: cfg.KernelStart, Size: kernelSize},
		{Name: "stack", Start: cfg.StackStart, Size: cfg.StackSize},
		{Name: "current stack page", Start: vmm.PageFromAddress(cfg.StackPointer).Address(), Size: mem.PageSize},
		{Name: "framebuffer", Start: cfg.FramebufferAddr, Size: mem.Size(console.DefaultColumns * console.DefaultRows * 2)},
	}

	as := vmm.NewAddressSpace(pdt, hw.MMU, hw.Memory)
	for _, r := range regions {
		if _, kerr = pdt.IdentityMapRegion(r.Start, r.Size); kerr != nil {
			return errors.Wrapf(kerr, "kmain: map %s", r.Name)
		}
		as.Require(r.Name, r.Start, r.Size)
	}

	mapped, kerr := pdt.Map(cfg.HeapBase, sys.Heap)
	if kerr != nil {
		return errors.Wrap(kerr, "kmain: map heap")
	}
	log.WithField("pages", mapped).Infof("heap mapped at 0x%x", cfg.HeapBase)

	if kerr = as.Load(); kerr != nil {
		return errors.Wrap(kerr, "kmain: load address space")
	}
	if kerr = as.EnablePaging(); kerr != nil {
		return errors.Wrap(kerr, "kmain: enable paging")
	}

	sys.AddressSpace = as
	return nil
}

func mountBootVolume(sys *System, disk block.Device, cfg Config, log *logrus.Entry) error {
	sys.PartitionBase = cfg.PartitionBase
	if cfg.ProbePartition {
		base, err := mbr.Locate(disk)
		if err == nil {
			sys.PartitionBase = base
		} else {
			log.WithError(err).Warnf("partition probe failed; using lba %d", cfg.PartitionBase)
		}
	}

	vol, err := fat16.Mount(disk, sys.PartitionBase)
	if err != nil {
		return errors.Wrap(err, "kmain: mount boot volume")
	}
	sys.Volume = vol

	if cfg.BootFile == "" {
		return nil
	}

	f, err := vol.Open(cfg.BootFile)
	switch {
	case errors.Is(err, fat16.ErrNotFound):
		log.Warnf("boot file %s not found", cfg.BootFile)
		return nil
	case err != nil:
		return errors.Wrap(err, "kmain: open boot file")
	}

	buf := make([]byte, cfg.ReadLimit)
	n, err := vol.Read(f, buf, cfg.ReadLimit)
	if err != nil {
		return errors.Wrapf(err, "kmain: read %s", cfg.BootFile)
	}

	if n > int(f.Entry.Size) {
		n = int(f.Entry.Size)
	}
	sys.BootFile, sys.BootData = f, buf[:n]
	log.Infof("loaded %s (%d bytes)", f.Name(), n)
	return nil
}

func hasDriver(drivers []device.Driver, drv device.Driver) bool {
	for _, d := range drivers {
		if d == drv {
			return true
		}
	}
	return false
}
