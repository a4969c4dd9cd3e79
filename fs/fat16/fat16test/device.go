package fat16test

import (
	"github.com/pkg/errors"

	"tinyos/device/block"
)

// Device is an in-memory block.Device that records every transfer.
type Device struct {
	data   []byte
	reads  []uint32
	failAt map[uint32]bool
}

// NewDevice returns a device backed by img.
func NewDevice(img []byte) *Device {
	return &Device{data: img, failAt: make(map[uint32]bool)}
}

// ReadSectors implements block.Device.
func (d *Device) ReadSectors(lba uint32, buf []byte, count uint32) error {
	if err := block.CheckTransfer(buf, count); err != nil {
		return err
	}

	for i := uint32(0); i < count; i++ {
		d.reads = append(d.reads, lba+i)
		if d.failAt[lba+i] {
			return errors.Wrapf(block.ErrIO, "sector %d", lba+i)
		}

		off := (uint64(lba) + uint64(i)) * block.SectorSize
		if off+block.SectorSize > uint64(len(d.data)) {
			return errors.Wrapf(block.ErrOutOfRange, "sector %d", lba+i)
		}
		copy(buf[i*block.SectorSize:(i+1)*block.SectorSize], d.data[off:])
	}
	return nil
}

// Fail makes every later read of lba return block.ErrIO.
func (d *Device) Fail(lba uint32) {
	d.failAt[lba] = true
}

// Reads returns the LBAs read since the last call to ResetReads.
func (d *Device) Reads() []uint32 {
	return d.reads
}

// ResetReads clears the transfer log.
func (d *Device) ResetReads() {
	d.reads = nil
}
