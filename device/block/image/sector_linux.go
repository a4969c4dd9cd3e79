package image

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"tinyos/device/block"
)

// blksszGet is the BLKSSZGET ioctl that reports the logical sector size of
// a block device.
const blksszGet = 0x1268

// checkSectorSize rejects host block devices whose logical sector size is
// not block.SectorSize. Regular files are always accepted.
func checkSectorSize(f *os.File) error {
	fi, err := f.Stat()
	if err != nil {
		return err
	}

	if fi.Mode()&os.ModeDevice == 0 {
		return nil
	}

	size, err := unix.IoctlGetInt(int(f.Fd()), blksszGet)
	if err != nil {
		return errors.Wrap(err, "unable to get device logical sector size")
	}

	if size != block.SectorSize {
		return errors.Errorf("unsupported logical sector size %d", size)
	}
	return nil
}
