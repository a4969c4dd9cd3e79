//go:build linux || darwin || freebsd
// +build linux darwin freebsd

package image

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// positionalReader returns a ReadAt implementation for f. Files on the host
// filesystem are read with pread(2) so concurrent readers do not share a
// file offset.
func positionalReader(f afero.File) func([]byte, int64) (int, error) {
	osFile, ok := f.(*os.File)
	if !ok {
		return f.ReadAt
	}

	fd := int(osFile.Fd())
	return func(p []byte, off int64) (int, error) {
		var read int
		for read < len(p) {
			n, err := unix.Pread(fd, p[read:], off+int64(read))
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				return read, &os.PathError{Op: "pread", Path: osFile.Name(), Err: err}
			}
			if n == 0 {
				return read, io.EOF
			}
			read += n
		}
		return read, nil
	}
}
