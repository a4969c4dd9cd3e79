package kernel

import (
	"tinyos/kernel/cpu"
	"tinyos/kernel/klog"
)

var (
	// cpuHaltFn is mocked by tests.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// Panic outputs the supplied error (if not nil) to the active log sink and
// halts the CPU. Calls to Panic never return on real hardware.
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	log := klog.Logger()
	log.Error("-----------------------------------")
	if err != nil {
		klog.Module(err.Module).Errorf("unrecoverable error: %s", err.Message)
	}
	log.Error("*** kernel panic: system halted ***")
	log.Error("-----------------------------------")

	cpuHaltFn()
}
