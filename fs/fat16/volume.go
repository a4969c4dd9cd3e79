// Package fat16 implements a read-only FAT16 driver.
//
// A Volume is mounted from a block device at a partition base LBA. Files
// are looked up by their 8.3 name in the root directory and read by
// following their cluster chain through the cached FAT. Subdirectories,
// long file names and write support are not provided.
package fat16

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tinyos/device/block"
	"tinyos/kernel"
	"tinyos/kernel/klog"
)

// DefaultPartitionBase is the LBA of the FAT16 boot sector on disks
// partitioned with the standard 1 MiB alignment.
const DefaultPartitionBase = 2048

var (
	// ErrDeviceRead is returned by Mount when the boot sector cannot be
	// read.
	ErrDeviceRead = &kernel.Error{Module: "fat16", Message: "unable to read boot sector"}

	// ErrBadBootSignature is returned by Mount when the boot sector does
	// not end with 0xAA55.
	ErrBadBootSignature = &kernel.Error{Module: "fat16", Message: "invalid boot sector signature"}

	// ErrUnsupportedFilesystem is returned by Mount when the filesystem
	// type tag is not FAT16.
	ErrUnsupportedFilesystem = &kernel.Error{Module: "fat16", Message: "filesystem is not FAT16"}

	// ErrFatTableRead is returned by Mount when the FAT cannot be read.
	ErrFatTableRead = &kernel.Error{Module: "fat16", Message: "unable to read file allocation table"}

	// ErrUnsupportedGeometry is returned by Mount for volumes whose sector
	// size, cluster size or FAT count cannot be handled.
	ErrUnsupportedGeometry = &kernel.Error{Module: "fat16", Message: "unsupported volume geometry"}

	// ErrNotFound is returned when no root directory entry matches a name.
	ErrNotFound = &kernel.Error{Module: "fat16", Message: "file not found"}

	// ErrIO is returned when a directory or data sector cannot be read.
	ErrIO = &kernel.Error{Module: "fat16", Message: "I/O error"}

	// ErrBadCluster is returned when a cluster chain reaches a cluster
	// marked as bad.
	ErrBadCluster = &kernel.Error{Module: "fat16", Message: "bad cluster in chain"}

	// ErrCorruptChain is returned when a cluster chain leaves the cached
	// FAT, reaches a reserved entry or loops.
	ErrCorruptChain = &kernel.Error{Module: "fat16", Message: "corrupt cluster chain"}
)

// Volume is a mounted FAT16 filesystem. A Volume holds no per-file state
// and may be shared by any number of open files.
type Volume struct {
	dev  block.Device
	base uint32
	bs   BootSector
	fat  *Table

	rootSector     uint32
	rootDirSectors uint32
	dataStart      uint32

	log *logrus.Entry
}

// Mount reads and validates the boot sector at partitionBase and caches
// the first FAT sectors.
func Mount(dev block.Device, partitionBase uint32) (*Volume, error) {
	sector := make([]byte, block.SectorSize)
	if err := dev.ReadSectors(partitionBase, sector, 1); err != nil {
		return nil, errors.Wrapf(kernel.Wrap(err, ErrDeviceRead), "fat16: boot sector at lba %d", partitionBase)
	}

	bs, err := ParseBootSector(sector)
	if err != nil {
		return nil, err
	}

	if bs.Signature != BootSignature {
		return nil, errors.Wrapf(ErrBadBootSignature, "fat16: signature 0x%04x", bs.Signature)
	}

	if fsType := bs.FileSystemType(); fsType != FileSystemType {
		return nil, errors.Wrapf(ErrUnsupportedFilesystem, "fat16: type %q", fsType)
	}

	if bs.BytesPerSector != block.SectorSize || bs.SectorsPerCluster == 0 || bs.NumFATs == 0 {
		return nil, errors.Wrapf(ErrUnsupportedGeometry,
			"fat16: %d bytes per sector, %d sectors per cluster, %d FATs",
			bs.BytesPerSector, bs.SectorsPerCluster, bs.NumFATs,
		)
	}

	fatBuf := make([]byte, tableSectors*block.SectorSize)
	if err = dev.ReadSectors(bs.FATStart(partitionBase), fatBuf, tableSectors); err != nil {
		return nil, errors.Wrapf(kernel.Wrap(err, ErrFatTableRead), "fat16: FAT at lba %d", bs.FATStart(partitionBase))
	}

	v := &Volume{
		dev:            dev,
		base:           partitionBase,
		bs:             *bs,
		fat:            tableFromBytes(fatBuf),
		rootSector:     bs.RootSector(partitionBase),
		rootDirSectors: bs.RootDirSectors(),
		dataStart:      bs.DataStart(partitionBase),
		log:            klog.Module("fat16"),
	}

	v.log.WithFields(logrus.Fields{
		"label":       bs.Label(),
		"root_sector": v.rootSector,
		"data_start":  v.dataStart,
	}).Infof("mounted volume at lba %d", partitionBase)

	return v, nil
}

// BootSector returns a copy of the volume's boot sector.
func (v *Volume) BootSector() BootSector {
	return v.bs
}

// Label returns the volume label stored in the boot sector.
func (v *Volume) Label() string {
	return v.bs.Label()
}

// PartitionBase returns the LBA of the volume's boot sector.
func (v *Volume) PartitionBase() uint32 {
	return v.base
}

// RootSector returns the LBA of the first root directory sector.
func (v *Volume) RootSector() uint32 {
	return v.rootSector
}

// RootDirSectors returns the number of sectors in the root directory.
func (v *Volume) RootDirSectors() uint32 {
	return v.rootDirSectors
}

// DataStart returns the LBA of cluster 2.
func (v *Volume) DataStart() uint32 {
	return v.dataStart
}

// ClusterSize returns the size of a cluster in bytes.
func (v *Volume) ClusterSize() uint32 {
	return uint32(v.bs.SectorsPerCluster) * block.SectorSize
}

// FAT returns the cached file allocation table.
func (v *Volume) FAT() *Table {
	return v.fat
}

// clusterLBA returns the LBA of the first sector of a data cluster.
func (v *Volume) clusterLBA(cluster ClusterEntry) uint32 {
	return v.dataStart + uint32(cluster-2)*uint32(v.bs.SectorsPerCluster)
}

// visitRoot invokes visitor for each live entry of the root directory in
// on-disk order. Deleted entries are skipped and the scan stops at the
// end-of-directory marker or when visitor returns false.
func (v *Volume) visitRoot(visitor func(*DirEntry) bool) error {
	sector := make([]byte, block.SectorSize)
	for s := uint32(0); s < v.rootDirSectors; s++ {
		lba := v.rootSector + s
		if err := v.dev.ReadSectors(lba, sector, 1); err != nil {
			return errors.Wrapf(kernel.Wrap(err, ErrIO), "fat16: root directory sector %d", lba)
		}

		for off := 0; off+dirEntrySize <= len(sector); off += dirEntrySize {
			raw := sector[off : off+dirEntrySize]
			switch raw[0] {
			case entryEndOfDir:
				return nil
			case entryDeleted:
				continue
			}

			entry, err := parseDirEntry(raw)
			if err != nil {
				return err
			}

			if !visitor(&entry) {
				return nil
			}
		}
	}
	return nil
}
