// Package fat16test builds FAT16 disk images and in-memory block devices
// for exercising the fat16 driver.
package fat16test

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	"tinyos/device/block"
	"tinyos/fs/fat16"
	"tinyos/partition/mbr"
)

// Default geometry of images produced by New.
const (
	DefaultSectorsPerCluster = 1
	DefaultReservedSectors   = 1
	DefaultNumFATs           = 2
	DefaultRootEntries       = 64
	DefaultSectorsPerFAT     = 8
)

// Stamp is the write time stored in entries added by the builder.
var Stamp = time.Date(2020, time.March, 14, 15, 9, 26, 0, time.UTC)

type record struct {
	raw  [32]byte
	free bool
}

// Builder assembles a FAT16 image. The zero value is not usable; create one
// with New.
type Builder struct {
	base    uint32
	bs      fat16.BootSector
	fat     map[fat16.ClusterEntry]fat16.ClusterEntry
	data    map[fat16.ClusterEntry][]byte
	root    []record
	next    fat16.ClusterEntry
	mbrType mbr.PartitionType
	withMBR bool
}

// New returns a builder for a volume whose boot sector lives at LBA base.
func New(base uint32) *Builder {
	b := &Builder{
		base: base,
		fat:  make(map[fat16.ClusterEntry]fat16.ClusterEntry),
		data: make(map[fat16.ClusterEntry][]byte),
		next: 2,
	}

	b.bs = fat16.BootSector{
		JumpBoot:          [3]byte{0xEB, 0x3C, 0x90},
		BytesPerSector:    block.SectorSize,
		SectorsPerCluster: DefaultSectorsPerCluster,
		ReservedSectors:   DefaultReservedSectors,
		NumFATs:           DefaultNumFATs,
		RootEntries:       DefaultRootEntries,
		Media:             0xF8,
		SectorsPerFAT:     DefaultSectorsPerFAT,
		ExtBootSignature:  0x29,
		VolumeID:          0x0B0070C5,
		Signature:         fat16.BootSignature,
	}
	copy(b.bs.OEMName[:], "TINYOS  ")
	copy(b.bs.VolumeLabel[:], "TINYOS     ")
	copy(b.bs.FSType[:], "FAT16   ")

	b.fat[0] = fat16.ClusterEntry(0xFF00) | fat16.ClusterEntry(b.bs.Media)
	b.fat[1] = 0xFFFF
	return b
}

// BootSector returns the boot sector that will be written. Callers may
// modify it before calling Build.
func (b *Builder) BootSector() *fat16.BootSector {
	return &b.bs
}

// WithMBR writes a partition table in sector 0 whose first entry points at
// the volume.
func (b *Builder) WithMBR(ptype mbr.PartitionType) *Builder {
	b.withMBR, b.mbrType = true, ptype
	return b
}

// AddFile stores data in freshly allocated consecutive clusters and adds a
// root directory entry for it. Empty files get start cluster 0.
func (b *Builder) AddFile(name string, data []byte) fat16.DirEntry {
	var chain []fat16.ClusterEntry
	clusterSize := int(b.bs.SectorsPerCluster) * block.SectorSize
	for off := 0; off < len(data); off += clusterSize {
		chain = append(chain, b.next)
		b.next++
	}
	return b.AddChain(name, uint32(len(data)), chain, data)
}

// AddChain adds a root directory entry of the given size whose data is
// spread over chain. The FAT links the clusters in order and terminates the
// last one with an end-of-chain marker.
func (b *Builder) AddChain(name string, size uint32, chain []fat16.ClusterEntry, data []byte) fat16.DirEntry {
	clusterSize := int(b.bs.SectorsPerCluster) * block.SectorSize
	for i, cluster := range chain {
		if i+1 < len(chain) {
			b.fat[cluster] = chain[i+1]
		} else {
			b.fat[cluster] = 0xFFFF
		}

		start := i * clusterSize
		if start < len(data) {
			end := start + clusterSize
			if end > len(data) {
				end = len(data)
			}
			b.WriteCluster(cluster, data[start:end])
		}

		if cluster.IsData() && cluster >= b.next {
			b.next = cluster + 1
		}
	}

	entry := newEntry(name, 0)
	entry.Size = size
	if len(chain) != 0 {
		entry.Cluster = uint16(chain[0])
	}
	b.AddEntry(entry)
	return entry
}

// AddDir adds a subdirectory entry with no contents.
func (b *Builder) AddDir(name string) fat16.DirEntry {
	entry := newEntry(name, fat16.AttrDirectory)
	b.AddEntry(entry)
	return entry
}

// AddLabel adds a volume label entry.
func (b *Builder) AddLabel(label string) fat16.DirEntry {
	entry := newEntry("", fat16.AttrVolumeID|fat16.AttrArchive)
	copy(entry.Name[:], label+"        ")
	if len(label) > 8 {
		copy(entry.Ext[:], label[8:]+"   ")
	}
	b.AddEntry(entry)
	return entry
}

// AddDeleted adds a root directory entry for name and marks it deleted.
func (b *Builder) AddDeleted(name string, cluster fat16.ClusterEntry) fat16.DirEntry {
	entry := newEntry(name, 0)
	entry.Cluster = uint16(cluster)
	entry.Name[0] = 0xE5
	b.AddEntry(entry)
	return entry
}

// AddEntry appends a raw directory entry.
func (b *Builder) AddEntry(entry fat16.DirEntry) {
	var rec record
	raw, err := entry.Bytes()
	if err != nil {
		panic(err)
	}
	copy(rec.raw[:], raw)
	b.root = append(b.root, rec)
}

// AddEndMarker appends a free record. Entries added after it are hidden
// from directory scans.
func (b *Builder) AddEndMarker() {
	b.root = append(b.root, record{free: true})
}

// SetFAT overrides the FAT entry of cluster.
func (b *Builder) SetFAT(cluster, value fat16.ClusterEntry) {
	b.fat[cluster] = value
}

// WriteCluster stores data at the start of cluster.
func (b *Builder) WriteCluster(cluster fat16.ClusterEntry, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	b.data[cluster] = buf
}

// Build renders the disk image.
func (b *Builder) Build() ([]byte, error) {
	// Lay out the image with 512-byte sectors even when the boot sector
	// advertises another size.
	bs := b.bs
	bs.BytesPerSector = block.SectorSize

	var (
		spc        = uint32(bs.SectorsPerCluster)
		fatStart   = bs.FATStart(b.base)
		rootSector = bs.RootSector(b.base)
		rootEnd    = rootSector + bs.RootDirSectors()
		dataStart  = bs.DataStart(b.base)
		end        = rootEnd
	)

	if spc == 0 {
		spc = 1
	}
	for cluster, data := range b.data {
		last := dataStart + uint32(cluster-2)*spc + (uint32(len(data))+block.SectorSize-1)/block.SectorSize
		if last > end {
			end = last
		}
	}
	if clusterEnd := dataStart + uint32(b.next-2)*spc; clusterEnd > end {
		end = clusterEnd
	}
	if fatEnd := fatStart + uint32(b.bs.NumFATs)*uint32(b.bs.SectorsPerFAT); fatEnd > end {
		end = fatEnd
	}

	img := make([]byte, int(end)*block.SectorSize)

	if b.withMBR {
		table := mbr.Table{DiskSignature: 0x7150}
		table.Partitions[0] = mbr.Partition{
			Bootable:    true,
			Type:        b.mbrType,
			LBAStart:    b.base,
			SectorCount: end - b.base,
		}
		sector, err := table.Bytes()
		if err != nil {
			return nil, errors.Wrap(err, "fat16test: encode MBR")
		}
		copy(img, sector)
	}

	bsBytes, err := b.bs.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "fat16test: encode boot sector")
	}
	copy(img[int(b.base)*block.SectorSize:], bsBytes)

	fatBytes := make([]byte, int(b.bs.SectorsPerFAT)*block.SectorSize)
	for cluster, value := range b.fat {
		if off := int(cluster) * 2; off+2 <= len(fatBytes) {
			binary.LittleEndian.PutUint16(fatBytes[off:], uint16(value))
		}
	}
	for i := 0; i < int(b.bs.NumFATs); i++ {
		copy(img[(int(fatStart)+i*int(b.bs.SectorsPerFAT))*block.SectorSize:], fatBytes)
	}

	if len(b.root) > int(bs.RootEntries) {
		return nil, errors.Errorf("fat16test: %d root entries exceed capacity %d", len(b.root), bs.RootEntries)
	}
	for i, rec := range b.root {
		if !rec.free {
			copy(img[int(rootSector)*block.SectorSize+i*32:], rec.raw[:])
		}
	}

	for cluster, data := range b.data {
		copy(img[int(dataStart+uint32(cluster-2)*spc)*block.SectorSize:], data)
	}

	return img, nil
}

func newEntry(name string, attr uint8) fat16.DirEntry {
	entry := fat16.DirEntry{
		Attribute: attr,
		WriteDate: fat16.EncodeDate(Stamp),
		WriteTime: fat16.EncodeTime(Stamp),
	}
	entry.CreateDate, entry.CreateTime = entry.WriteDate, entry.WriteTime
	entry.SetName(name)
	return entry
}
