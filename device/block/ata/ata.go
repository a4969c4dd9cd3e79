// Package ata implements a polling PIO driver for the primary ATA channel
// using 28-bit LBA addressing.
package ata

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"tinyos/device"
	"tinyos/device/block"
	"tinyos/kernel"
	"tinyos/kernel/cpu"
)

// Primary ATA channel register ports.
const (
	portData        = 0x1F0
	portError       = 0x1F1
	portSectorCount = 0x1F2
	portLBALow      = 0x1F3
	portLBAMid      = 0x1F4
	portLBAHigh     = 0x1F5
	portDrive       = 0x1F6
	portCommand     = 0x1F7
	portStatus      = portCommand
)

// Status register bits.
const (
	statusErr  = 0x01
	statusDRQ  = 0x08
	statusDF   = 0x20
	statusDRDY = 0x40
	statusBSY  = 0x80

	// floatingBus is read back from the status register when no drive is
	// attached to the channel.
	floatingBus = 0xFF
)

const (
	cmdReadSectors = 0x20

	// driveSelectLBA selects the master drive in LBA mode. Bits 0-3 carry
	// LBA bits 24-27.
	driveSelectLBA = 0xE0

	// maxSectorsPerCommand is the largest transfer a single LBA28 command
	// can request; a sector count of 0 encodes 256.
	maxSectorsPerCommand = 256

	// maxLBA is the number of sectors addressable with 28 bits.
	maxLBA = 1 << 28

	wordsPerSector = block.SectorSize / 2
)

var (
	// ErrNoDrive is returned by DriverInit when the channel has no drive.
	ErrNoDrive = &kernel.Error{Module: "ata", Message: "no drive on primary channel"}

	// ErrLBARange is returned for transfers beyond the 28-bit LBA limit.
	ErrLBARange = &kernel.Error{Module: "ata", Message: "transfer exceeds LBA28 range"}

	errDeviceFault = &kernel.Error{Module: "ata", Message: "drive reported a device fault"}
	errCommand     = &kernel.Error{Module: "ata", Message: "drive aborted the command"}
)

// Disk is the master drive of the primary ATA channel.
type Disk struct {
	ports cpu.PortIO
}

// New returns a driver for the primary master drive reached through ports.
func New(ports cpu.PortIO) *Disk {
	return &Disk{ports: ports}
}

// ReadSectors implements block.Device. The transfer is split into commands
// of at most 256 sectors. Each sector is read as 256 little-endian 16-bit
// words from the data port once the drive signals DRQ.
func (d *Disk) ReadSectors(lba uint32, buf []byte, count uint32) error {
	if err := block.CheckTransfer(buf, count); err != nil {
		return err
	}

	if uint64(lba)+uint64(count) > maxLBA {
		return errors.Wrapf(ErrLBARange, "ata: lba %d count %d", lba, count)
	}

	for count > 0 {
		n := count
		if n > maxSectorsPerCommand {
			n = maxSectorsPerCommand
		}

		d.issueRead(lba, n)
		for s := uint32(0); s < n; s++ {
			if err := d.waitDataReady(); err != nil {
				return errors.Wrapf(kernel.Wrap(err, block.ErrIO), "ata: read lba %d", lba+s)
			}
			d.readSector(buf[s*block.SectorSize : (s+1)*block.SectorSize])
		}

		lba += n
		count -= n
		buf = buf[n*block.SectorSize:]
	}

	return nil
}

func (d *Disk) issueRead(lba, count uint32) {
	d.ports.PortWriteByte(portDrive, driveSelectLBA|uint8(lba>>24)&0x0F)
	d.ports.PortWriteByte(portSectorCount, uint8(count))
	d.ports.PortWriteByte(portLBALow, uint8(lba))
	d.ports.PortWriteByte(portLBAMid, uint8(lba>>8))
	d.ports.PortWriteByte(portLBAHigh, uint8(lba>>16))
	d.ports.PortWriteByte(portCommand, cmdReadSectors)
}

// waitDataReady polls the status register until the drive is ready to
// transfer a sector. Polling is unbounded.
func (d *Disk) waitDataReady() error {
	for {
		status := d.ports.PortReadByte(portStatus)
		switch {
		case status&statusBSY != 0:
			continue
		case status&statusDF != 0:
			return errDeviceFault
		case status&statusErr != 0:
			return errors.Wrapf(errCommand, "error register 0x%02x", d.ports.PortReadByte(portError))
		case status&statusDRQ != 0:
			return nil
		}
	}
}

func (d *Disk) readSector(dst []byte) {
	for w := 0; w < wordsPerSector; w++ {
		v := d.ports.PortReadWord(portData)
		dst[2*w] = uint8(v)
		dst[2*w+1] = uint8(v >> 8)
	}
}

// DriverName implements device.Driver.
func (d *Disk) DriverName() string {
	return "ata_pio"
}

// DriverVersion implements device.Driver.
func (d *Disk) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit implements device.Driver. It checks that a drive responds on
// the primary channel.
func (d *Disk) DriverInit(w io.Writer) error {
	d.ports.PortWriteByte(portDrive, driveSelectLBA)
	status := d.ports.PortReadByte(portStatus)
	if status == floatingBus {
		return ErrNoDrive
	}

	fmt.Fprintf(w, "primary master present (status 0x%02x)\n", status)
	return nil
}

var (
	_ block.Device  = (*Disk)(nil)
	_ device.Driver = (*Disk)(nil)
)
