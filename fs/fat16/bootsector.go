package fat16

import (
	"encoding/binary"
	"strings"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"

	"tinyos/device/block"
)

const (
	// BootSignature is the value stored in the last two bytes of a valid
	// boot sector.
	BootSignature = 0xAA55

	// FileSystemType is the filesystem type tag of a FAT16 volume.
	FileSystemType = "FAT16"
)

// BootSector mirrors the on-disk FAT16 boot sector including the extended
// BIOS parameter block. All multi-byte fields are little-endian.
type BootSector struct {
	JumpBoot          [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntries       uint16
	TotalSectors16    uint16
	Media             uint8
	SectorsPerFAT     uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	DriveNumber       uint8
	Reserved1         uint8
	ExtBootSignature  uint8
	VolumeID          uint32
	VolumeLabel       [11]byte
	FSType            [8]byte
	BootCode          [448]byte
	Signature         uint16
}

// ParseBootSector decodes the first 512 bytes of sector.
func ParseBootSector(sector []byte) (*BootSector, error) {
	if len(sector) < block.SectorSize {
		return nil, errors.Wrapf(block.ErrShortBuffer, "fat16: %d byte boot sector", len(sector))
	}

	var bs BootSector
	if err := restruct.Unpack(sector[:block.SectorSize], binary.LittleEndian, &bs); err != nil {
		return nil, errors.Wrap(err, "fat16: decode boot sector")
	}
	return &bs, nil
}

// Bytes encodes the boot sector into its 512-byte on-disk form.
func (bs *BootSector) Bytes() ([]byte, error) {
	return restruct.Pack(binary.LittleEndian, bs)
}

// FileSystemType returns the filesystem type tag up to the first space or
// NUL byte.
func (bs *BootSector) FileSystemType() string {
	tag := bs.FSType[:]
	if i := strings.IndexAny(string(tag), " \x00"); i >= 0 {
		tag = tag[:i]
	}
	return string(tag)
}

// Label returns the volume label with its padding removed.
func (bs *BootSector) Label() string {
	return trimPadding(bs.VolumeLabel[:])
}

// OEM returns the OEM name with its padding removed.
func (bs *BootSector) OEM() string {
	return trimPadding(bs.OEMName[:])
}

// TotalSectors returns the sector count of the volume.
func (bs *BootSector) TotalSectors() uint32 {
	if bs.TotalSectors16 != 0 {
		return uint32(bs.TotalSectors16)
	}
	return bs.TotalSectors32
}

// RootDirSectors returns the number of sectors occupied by the root
// directory.
func (bs *BootSector) RootDirSectors() uint32 {
	if bs.BytesPerSector == 0 {
		return 0
	}
	bps := uint32(bs.BytesPerSector)
	return (uint32(bs.RootEntries)*dirEntrySize + bps - 1) / bps
}

// FATStart returns the LBA of the first FAT for a volume starting at base.
func (bs *BootSector) FATStart(base uint32) uint32 {
	return base + uint32(bs.ReservedSectors)
}

// RootSector returns the LBA of the first root directory sector for a
// volume starting at base.
func (bs *BootSector) RootSector(base uint32) uint32 {
	return base + uint32(bs.NumFATs)*uint32(bs.SectorsPerFAT) + uint32(bs.ReservedSectors) + bs.HiddenSectors
}

// DataStart returns the LBA of cluster 2 for a volume starting at base.
func (bs *BootSector) DataStart(base uint32) uint32 {
	return base + uint32(bs.ReservedSectors) + uint32(bs.NumFATs)*uint32(bs.SectorsPerFAT) + bs.RootDirSectors()
}

func trimPadding(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}
