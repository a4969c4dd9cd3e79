// Package mem defines the sizes and constants shared by the memory managers.
package mem

import "fmt"

// Size represents a memory block size in bytes.
type Size uint64

// Common memory block sizes.
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
	Gb        = 1024 * Mb
)

// Pages returns the number of pages needed to hold s bytes.
func (s Size) Pages() uint32 {
	return uint32((s + PageSize - 1) >> PageShift)
}

// String renders s using the largest unit that divides it evenly.
func (s Size) String() string {
	switch {
	case s >= Gb && s%Gb == 0:
		return fmt.Sprintf("%dGb", uint64(s/Gb))
	case s >= Mb && s%Mb == 0:
		return fmt.Sprintf("%dMb", uint64(s/Mb))
	case s >= Kb && s%Kb == 0:
		return fmt.Sprintf("%dKb", uint64(s/Kb))
	}
	return fmt.Sprintf("%dB", uint64(s))
}
