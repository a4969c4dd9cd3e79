// Package image implements a block device backed by a disk image file.
package image

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"tinyos/device/block"
	"tinyos/kernel"
)

// Disk is a read-only block device that serves sectors from an image file
// or a host block device.
type Disk struct {
	f      afero.File
	path   string
	size   int64
	readAt func(p []byte, off int64) (int, error)
}

// Open opens the image at path on fs. Host block devices are accepted as
// long as they use 512-byte logical sectors.
func Open(fs afero.Fs, path string) (*Disk, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "image: open %s", path)
	}

	size, err := imageSize(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "image: size of %s", path)
	}

	if osFile, ok := f.(*os.File); ok {
		if err = checkSectorSize(osFile); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "image: %s", path)
		}
	}

	return &Disk{
		f:      f,
		path:   path,
		size:   size,
		readAt: positionalReader(f),
	}, nil
}

// imageSize returns the size of f. Block devices report a zero size when
// stat'ed so their size is obtained by seeking to the end.
func imageSize(f afero.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	if fi.Mode()&os.ModeDevice == 0 {
		return fi.Size(), nil
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	_, err = f.Seek(0, io.SeekStart)
	return size, err
}

// ReadSectors implements block.Device.
func (d *Disk) ReadSectors(lba uint32, buf []byte, count uint32) error {
	if err := block.CheckTransfer(buf, count); err != nil {
		return err
	}

	var (
		off = int64(lba) * block.SectorSize
		n   = int64(count) * block.SectorSize
	)

	if off+n > d.size {
		return errors.Wrapf(block.ErrOutOfRange, "image: sectors %d-%d of %s (%d sectors)", lba, uint64(lba)+uint64(count), d.path, d.Sectors())
	}

	if _, err := d.ReadAt(buf[:n], off); err != nil {
		return errors.Wrapf(kernel.Wrap(err, block.ErrIO), "image: read lba %d", lba)
	}
	return nil
}

// ReadAt implements io.ReaderAt.
func (d *Disk) ReadAt(p []byte, off int64) (int, error) {
	n, err := d.readAt(p, off)
	switch {
	case n == len(p) && err == io.EOF:
		err = nil
	case n < len(p) && err == nil:
		err = io.EOF
	}
	return n, err
}

// Sectors returns the number of whole sectors in the image.
func (d *Disk) Sectors() uint32 {
	return uint32(d.size / block.SectorSize)
}

// Size returns the size of the image in bytes.
func (d *Disk) Size() int64 {
	return d.size
}

// Close releases the underlying file.
func (d *Disk) Close() error {
	return d.f.Close()
}
