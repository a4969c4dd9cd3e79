//go:build 386
// +build 386

package kmain

import (
	"tinyos/device/block/ata"
	"tinyos/device/video/console"
	"tinyos/kernel"
	"tinyos/kernel/cpu"
)

// Kmain is invoked by the rt0 code once a stack is available. The rt0 code
// passes the physical addresses for the kernel start/end and the current
// stack pointer.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(kernelStart, kernelEnd, stackPointer uintptr) {
	cfg := DefaultConfig()
	cfg.KernelStart, cfg.KernelEnd, cfg.StackPointer = kernelStart, kernelEnd, stackPointer

	fb := console.MapFramebuffer(cfg.FramebufferAddr, console.DefaultColumns, console.DefaultRows)
	native := cpu.Native{}
	hw := Hardware{
		MMU:     native,
		Memory:  native,
		Disk:    ata.New(native),
		Console: console.NewVgaTextConsole(console.DefaultColumns, console.DefaultRows, fb),
	}

	sys, err := Boot(hw, cfg)
	if err != nil {
		kernel.Panic(err)
	}

	if sys.BootFile != nil {
		_, _ = hw.Console.Write(sys.BootData)
	}

	// Use kernel.Panic instead of panic to prevent the compiler from
	// treating kernel.Panic as dead-code and eliminating it.
	kernel.Panic(errKmainReturned)
}
