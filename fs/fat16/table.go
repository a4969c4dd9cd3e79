package fat16

import (
	"encoding/binary"

	"tinyos/device/block"
)

const (
	// tableSectors is the number of FAT sectors cached at mount time.
	tableSectors = 8

	// tableEntries is the number of cluster entries held by the cached FAT.
	tableEntries = tableSectors * block.SectorSize / 2
)

// ClusterEntry is a 16-bit FAT entry. It holds the number of the next
// cluster in a chain or one of the reserved markers.
type ClusterEntry uint16

// Reserved FAT entry values.
const (
	ClusterFree ClusterEntry = 0x0000

	// ClusterBad marks a cluster that must not be used.
	ClusterBad ClusterEntry = 0xFFF7

	// ClusterEndOfChain is the smallest value that terminates a chain.
	ClusterEndOfChain ClusterEntry = 0xFFF8
)

// IsFree returns true if the entry marks an unallocated cluster.
func (e ClusterEntry) IsFree() bool {
	return e == ClusterFree
}

// IsBad returns true if the entry marks a defective cluster.
func (e ClusterEntry) IsBad() bool {
	return e == ClusterBad
}

// IsEndOfChain returns true if the entry terminates a cluster chain.
func (e ClusterEntry) IsEndOfChain() bool {
	return e >= ClusterEndOfChain
}

// IsData returns true if the entry refers to a cluster in the data area.
func (e ClusterEntry) IsData() bool {
	return e >= 2 && e < ClusterBad
}

// Table is the cached copy of the first tableSectors sectors of the FAT.
type Table [tableEntries]ClusterEntry

// tableFromBytes decodes a little-endian FAT into a Table.
func tableFromBytes(b []byte) *Table {
	var t Table
	for i := 0; i < tableEntries && 2*i+1 < len(b); i++ {
		t[i] = ClusterEntry(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return &t
}

// Next returns the entry stored for cluster. It returns false if cluster
// lies beyond the cached portion of the FAT.
func (t *Table) Next(cluster ClusterEntry) (ClusterEntry, bool) {
	if int(cluster) >= len(t) {
		return 0, false
	}
	return t[cluster], true
}

// Chain returns the clusters of the chain that starts at start, stopping at
// the end-of-chain marker. It fails if the chain leaves the cached FAT,
// hits a reserved entry or loops.
func (t *Table) Chain(start ClusterEntry) ([]ClusterEntry, error) {
	var chain []ClusterEntry
	for cluster := start; !cluster.IsEndOfChain(); {
		if !cluster.IsData() {
			if cluster.IsBad() {
				return chain, ErrBadCluster
			}
			return chain, ErrCorruptChain
		}

		if len(chain) >= len(t) {
			return chain, ErrCorruptChain
		}
		chain = append(chain, cluster)

		next, ok := t.Next(cluster)
		if !ok {
			return chain, ErrCorruptChain
		}
		cluster = next
	}
	return chain, nil
}
