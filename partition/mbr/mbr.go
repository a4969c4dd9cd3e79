// Package mbr parses the classic PC master boot record partition table.
package mbr

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"

	"tinyos/device/block"
	"tinyos/kernel"
)

// PartitionType identifies the filesystem stored in a partition.
type PartitionType uint8

// Partition types recognized by this package.
const (
	TypeEmpty        PartitionType = 0x00
	TypeFAT12        PartitionType = 0x01
	TypeFAT16Small   PartitionType = 0x04
	TypeExtended     PartitionType = 0x05
	TypeFAT16        PartitionType = 0x06
	TypeFAT32CHS     PartitionType = 0x0B
	TypeFAT32LBA     PartitionType = 0x0C
	TypeFAT16LBA     PartitionType = 0x0E
	TypeLinux        PartitionType = 0x83
	TypeProtectedGPT PartitionType = 0xEE
)

// IsFAT16 returns true for the partition types that hold a FAT16 volume.
func (t PartitionType) IsFAT16() bool {
	return t == TypeFAT16Small || t == TypeFAT16 || t == TypeFAT16LBA
}

func (t PartitionType) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypeFAT12:
		return "FAT12"
	case TypeFAT16Small, TypeFAT16, TypeFAT16LBA:
		return "FAT16"
	case TypeExtended:
		return "extended"
	case TypeFAT32CHS, TypeFAT32LBA:
		return "FAT32"
	case TypeLinux:
		return "linux"
	case TypeProtectedGPT:
		return "GPT protective"
	}
	return fmt.Sprintf("0x%02x", uint8(t))
}

const (
	bootableFlag = 0x80
	signature    = 0xAA55
)

var (
	// ErrNoSignature is returned when sector 0 does not end with 0x55 0xAA.
	ErrNoSignature = &kernel.Error{Module: "mbr", Message: "missing boot record signature"}

	// ErrNoFAT16Partition is returned by Locate when no partition entry
	// holds a FAT16 volume.
	ErrNoFAT16Partition = &kernel.Error{Module: "mbr", Message: "no FAT16 partition"}
)

// rawPartition mirrors a 16-byte partition table entry.
type rawPartition struct {
	Status      uint8
	FirstCHS    [3]byte
	Type        uint8
	LastCHS     [3]byte
	LBAStart    uint32
	SectorCount uint32
}

// rawMBR mirrors the 512-byte master boot record.
type rawMBR struct {
	BootCode      [440]byte
	DiskSignature uint32
	Reserved      uint16
	Partitions    [4]rawPartition
	Signature     uint16
}

// Partition describes a primary partition entry.
type Partition struct {
	Bootable    bool
	Type        PartitionType
	LBAStart    uint32
	SectorCount uint32
}

// Table is a decoded partition table.
type Table struct {
	DiskSignature uint32
	Partitions    [4]Partition
}

// Parse decodes the partition table stored in sector.
func Parse(sector []byte) (*Table, error) {
	if len(sector) < block.SectorSize {
		return nil, errors.Wrapf(block.ErrShortBuffer, "mbr: %d byte sector", len(sector))
	}

	var raw rawMBR
	if err := restruct.Unpack(sector[:block.SectorSize], binary.LittleEndian, &raw); err != nil {
		return nil, errors.Wrap(err, "mbr: decode")
	}

	if raw.Signature != signature {
		return nil, ErrNoSignature
	}

	t := &Table{DiskSignature: raw.DiskSignature}
	for i, p := range raw.Partitions {
		t.Partitions[i] = Partition{
			Bootable:    p.Status&bootableFlag != 0,
			Type:        PartitionType(p.Type),
			LBAStart:    p.LBAStart,
			SectorCount: p.SectorCount,
		}
	}
	return t, nil
}

// Bytes encodes the table into a 512-byte boot record with zeroed boot code
// and CHS fields.
func (t *Table) Bytes() ([]byte, error) {
	raw := rawMBR{DiskSignature: t.DiskSignature, Signature: signature}
	for i, p := range t.Partitions {
		raw.Partitions[i] = rawPartition{
			Type:        uint8(p.Type),
			LBAStart:    p.LBAStart,
			SectorCount: p.SectorCount,
		}
		if p.Bootable {
			raw.Partitions[i].Status = bootableFlag
		}
	}
	return restruct.Pack(binary.LittleEndian, &raw)
}

// FirstFAT16 returns the first partition entry that holds a FAT16 volume.
func (t *Table) FirstFAT16() (Partition, bool) {
	for _, p := range t.Partitions {
		if p.Type.IsFAT16() && p.SectorCount != 0 {
			return p, true
		}
	}
	return Partition{}, false
}

// Locate reads the partition table from sector 0 of dev and returns the
// starting LBA of the first FAT16 partition.
func Locate(dev block.Device) (uint32, error) {
	sector, err := block.ReadSector(dev, 0)
	if err != nil {
		return 0, errors.Wrap(err, "mbr: read sector 0")
	}

	table, err := Parse(sector)
	if err != nil {
		return 0, err
	}

	p, ok := table.FirstFAT16()
	if !ok {
		return 0, ErrNoFAT16Partition
	}
	return p.LBAStart, nil
}
