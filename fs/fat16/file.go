package fat16

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"tinyos/device/block"
	"tinyos/kernel"
)

// File is an open root directory entry. Every call to Open returns a new
// File owned by the caller.
type File struct {
	// Entry is a copy of the matched directory record.
	Entry DirEntry

	// Cluster is the first cluster of the file's data.
	Cluster ClusterEntry
}

// Name returns the BASE.EXT name of the file.
func (f *File) Name() string {
	return f.Entry.DisplayName()
}

// Size returns the file size recorded in the directory entry.
func (f *File) Size() int64 {
	return int64(f.Entry.Size)
}

// Open looks up name in the root directory. The comparison ignores case.
// Deleted records, subdirectories and the volume label are skipped and the
// scan ends at the first end-of-directory record.
func (v *Volume) Open(name string) (*File, error) {
	target := strings.ToUpper(name)

	var found *File
	err := v.visitRoot(func(e *DirEntry) bool {
		// Labels share the 8.3 name space but carry no data.
		if e.IsDir() || e.IsVolumeLabel() {
			return true
		}

		if !strings.EqualFold(e.DisplayName(), target) {
			return true
		}

		found = &File{Entry: *e, Cluster: e.StartCluster()}
		return false
	})

	switch {
	case err != nil:
		return nil, err
	case found == nil:
		return nil, errors.Wrapf(ErrNotFound, "fat16: open %q", name)
	}

	v.log.WithField("cluster", found.Cluster).Debugf("opened %s (%d bytes)", found.Name(), found.Entry.Size)
	return found, nil
}

// Stat returns the directory entry for name without opening it.
func (v *Volume) Stat(name string) (DirEntry, error) {
	f, err := v.Open(name)
	if err != nil {
		return DirEntry{}, err
	}
	return f.Entry, nil
}

// ReadDir returns the live file entries of the root directory in on-disk
// order. Subdirectories are included, the volume label is not.
func (v *Volume) ReadDir() ([]DirEntry, error) {
	var entries []DirEntry
	err := v.visitRoot(func(e *DirEntry) bool {
		if !e.IsVolumeLabel() {
			entries = append(entries, *e)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Read copies the data of f into buf by following its cluster chain. At
// most maxLen bytes are written, further capped by len(buf). Reading stops
// without error at the end of the chain. The size recorded in the directory
// entry is not consulted.
//
// Read returns the number of bytes transferred together with ErrIO if a
// sector cannot be read, ErrBadCluster if the chain reaches a bad cluster or
// ErrCorruptChain if the chain leaves the cached FAT or loops.
func (v *Volume) Read(f *File, buf []byte, maxLen int) (int, error) {
	switch {
	case maxLen <= 0:
		return 0, nil
	case maxLen > len(buf):
		maxLen = len(buf)
	}
	return v.readChain(f.Cluster, 0, buf[:maxLen])
}

// ReadAt reads len(p) bytes of f starting at byte offset off. It honors the
// file size and returns io.EOF when fewer than len(p) bytes remain.
func (v *Volume) ReadAt(f *File, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Errorf("fat16: negative offset %d", off)
	}

	size := f.Size()
	if off >= size {
		return 0, io.EOF
	}

	want := p
	if remaining := size - off; int64(len(want)) > remaining {
		want = want[:remaining]
	}

	n, err := v.readChain(f.Cluster, off, want)
	if err != nil {
		return n, err
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// readChain walks the chain starting at start, skips skip bytes and fills
// dst. A full sector is read straight into dst while a trailing partial
// sector is staged so that dst never receives more than len(dst) bytes.
func (v *Volume) readChain(start ClusterEntry, skip int64, dst []byte) (int, error) {
	if len(dst) == 0 || !start.IsData() {
		if start.IsBad() {
			return 0, ErrBadCluster
		}
		return 0, nil
	}

	var (
		spc     = uint32(v.bs.SectorsPerCluster)
		staging []byte
		read    int
		hops    int
	)

	for cluster := start; !cluster.IsEndOfChain() && read < len(dst); {
		if cluster.IsBad() {
			return read, errors.Wrapf(ErrBadCluster, "fat16: cluster 0x%04x", uint16(cluster))
		}
		if !cluster.IsData() {
			return read, errors.Wrapf(ErrCorruptChain, "fat16: reserved entry 0x%04x in chain", uint16(cluster))
		}

		lba := v.clusterLBA(cluster)
		for s := uint32(0); s < spc && read < len(dst); s++ {
			if skip >= block.SectorSize {
				skip -= block.SectorSize
				continue
			}

			remaining := dst[read:]
			if skip == 0 && len(remaining) >= block.SectorSize {
				if err := v.dev.ReadSectors(lba+s, remaining[:block.SectorSize], 1); err != nil {
					return read, errors.Wrapf(kernel.Wrap(err, ErrIO), "fat16: data sector %d", lba+s)
				}
				read += block.SectorSize
				continue
			}

			if staging == nil {
				staging = make([]byte, block.SectorSize)
			}
			if err := v.dev.ReadSectors(lba+s, staging, 1); err != nil {
				return read, errors.Wrapf(kernel.Wrap(err, ErrIO), "fat16: data sector %d", lba+s)
			}
			read += copy(remaining, staging[skip:])
			skip = 0
		}

		if read == len(dst) {
			break
		}

		if hops++; hops > tableEntries {
			return read, errors.Wrap(ErrCorruptChain, "fat16: cluster chain loops")
		}

		next, ok := v.fat.Next(cluster)
		if !ok {
			return read, errors.Wrapf(ErrCorruptChain, "fat16: cluster 0x%04x beyond cached FAT", uint16(cluster))
		}
		cluster = next
	}

	return read, nil
}
