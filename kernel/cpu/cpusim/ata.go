package cpusim

import (
	"io"
	"sync"
)

// Primary ATA channel register ports.
const (
	ataData        = 0x1F0
	ataError       = 0x1F1
	ataSectorCount = 0x1F2
	ataLBALow      = 0x1F3
	ataLBAMid      = 0x1F4
	ataLBAHigh     = 0x1F5
	ataDrive       = 0x1F6
	ataCommand     = 0x1F7
)

const (
	ataStatusErr  = 0x01
	ataStatusDRQ  = 0x08
	ataStatusDRDY = 0x40

	ataErrAbort = 0x04
	ataErrIDNF  = 0x10

	ataCmdReadSectors = 0x20
	ataDriveLBA       = 0x40

	sectorSize = 512

	// floatingBus is returned when no drive is attached to the channel.
	floatingBus = 0xFF
)

// ATADisk models the primary master drive of an ATA controller operating in
// PIO mode. It implements cpu.PortIO and serves READ SECTORS commands from
// a backing io.ReaderAt.
type ATADisk struct {
	mu      sync.Mutex
	backing io.ReaderAt
	sectors uint32

	count                   uint8
	lbaLow, lbaMid, lbaHigh uint8
	drive                   uint8
	status, errReg          uint8
	buf                     []byte
	pos                     int
	commands                []uint8
}

// NewATADisk returns a drive backed by r which holds sectors 512-byte
// sectors. A nil backing reader models an empty channel.
func NewATADisk(r io.ReaderAt, sectors uint32) *ATADisk {
	d := &ATADisk{backing: r, sectors: sectors}
	if r != nil {
		d.status = ataStatusDRDY
	}
	return d
}

// PortReadByte implements cpu.PortIO.
func (d *ATADisk) PortReadByte(port uint16) uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.backing == nil {
		return floatingBus
	}

	switch port {
	case ataCommand:
		return d.status
	case ataError:
		return d.errReg
	case ataSectorCount:
		return d.count
	case ataLBALow:
		return d.lbaLow
	case ataLBAMid:
		return d.lbaMid
	case ataLBAHigh:
		return d.lbaHigh
	case ataDrive:
		return d.drive
	}
	return 0
}

// PortReadWord implements cpu.PortIO. Reads from the data port drain the
// sector buffer filled by the last READ SECTORS command.
func (d *ATADisk) PortReadWord(port uint16) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.backing == nil {
		return 0xFFFF
	}

	if port != ataData || d.status&ataStatusDRQ == 0 {
		return 0
	}

	w := uint16(d.buf[d.pos]) | uint16(d.buf[d.pos+1])<<8
	d.pos += 2
	if d.pos == len(d.buf) {
		d.buf, d.pos = nil, 0
		d.status = ataStatusDRDY
	}
	return w
}

// PortWriteByte implements cpu.PortIO.
func (d *ATADisk) PortWriteByte(port uint16, val uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.backing == nil {
		return
	}

	switch port {
	case ataSectorCount:
		d.count = val
	case ataLBALow:
		d.lbaLow = val
	case ataLBAMid:
		d.lbaMid = val
	case ataLBAHigh:
		d.lbaHigh = val
	case ataDrive:
		d.drive = val
	case ataCommand:
		d.commands = append(d.commands, val)
		d.execute(val)
	}
}

// Commands returns every command byte written to the command register.
func (d *ATADisk) Commands() []uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint8(nil), d.commands...)
}

func (d *ATADisk) execute(cmd uint8) {
	d.buf, d.pos, d.errReg = nil, 0, 0

	if cmd != ataCmdReadSectors || d.drive&ataDriveLBA == 0 {
		d.fail(ataErrAbort)
		return
	}

	lba := uint32(d.drive&0x0F)<<24 | uint32(d.lbaHigh)<<16 | uint32(d.lbaMid)<<8 | uint32(d.lbaLow)
	count := uint32(d.count)
	if count == 0 {
		count = 256
	}

	if uint64(lba)+uint64(count) > uint64(d.sectors) {
		d.fail(ataErrIDNF)
		return
	}

	buf := make([]byte, count*sectorSize)
	if n, err := d.backing.ReadAt(buf, int64(lba)*sectorSize); n != len(buf) && err != nil {
		d.fail(ataErrIDNF)
		return
	}

	d.buf = buf
	d.status = ataStatusDRDY | ataStatusDRQ
}

func (d *ATADisk) fail(errBits uint8) {
	d.errReg = errBits
	d.status = ataStatusDRDY | ataStatusErr
}
