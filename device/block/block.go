// Package block defines the sector-addressed storage interface used by the
// filesystem drivers.
package block

import "tinyos/kernel"

// SectorSize is the size in bytes of a single addressable sector.
const SectorSize = 512

var (
	// ErrIO is returned when the underlying device fails to complete a
	// transfer.
	ErrIO = &kernel.Error{Module: "block", Message: "device I/O error"}

	// ErrShortBuffer is returned when the destination buffer cannot hold
	// the requested number of sectors.
	ErrShortBuffer = &kernel.Error{Module: "block", Message: "buffer too small for sector transfer"}

	// ErrOutOfRange is returned when a transfer addresses sectors beyond
	// the end of the device.
	ErrOutOfRange = &kernel.Error{Module: "block", Message: "sector out of range"}
)

// Device is a read-only, sector-addressed storage device.
type Device interface {
	// ReadSectors reads count consecutive sectors starting at lba into
	// buf. buf must hold at least count*SectorSize bytes. Implementations
	// never write past count*SectorSize bytes of buf.
	ReadSectors(lba uint32, buf []byte, count uint32) error
}

// CheckTransfer validates that buf can receive count sectors.
func CheckTransfer(buf []byte, count uint32) error {
	if uint64(len(buf)) < uint64(count)*SectorSize {
		return ErrShortBuffer
	}
	return nil
}

// ReadSector reads the single sector at lba into a newly allocated buffer.
func ReadSector(dev Device, lba uint32) ([]byte, error) {
	buf := make([]byte, SectorSize)
	if err := dev.ReadSectors(lba, buf, 1); err != nil {
		return nil, err
	}
	return buf, nil
}
