//go:build !386
// +build !386

package cpu

// Halt blocks the calling goroutine forever. Hosted builds have no
// processor to stop.
func Halt() {
	select {}
}

// ID reports zero for every leaf on hosted builds.
func ID(_ uint32) (uint32, uint32, uint32, uint32) {
	return 0, 0, 0, 0
}
