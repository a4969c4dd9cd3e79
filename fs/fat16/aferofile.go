package fat16

import (
	"io"
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// aferoFile is an afero.File over a root directory entry or over the root
// directory itself.
type aferoFile struct {
	fs   *Fs
	name string
	root bool
	file *File
	info os.FileInfo

	offset    int64
	dirOffset int
	closed    bool
}

var _ afero.File = (*aferoFile)(nil)

func (f *aferoFile) pathError(op string, err error) error {
	return &os.PathError{Op: op, Path: f.name, Err: err}
}

func (f *aferoFile) Close() error {
	if f.closed {
		return f.pathError("close", os.ErrClosed)
	}
	f.closed = true
	return nil
}

func (f *aferoFile) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.offset)
	f.offset += int64(n)
	return n, err
}

func (f *aferoFile) ReadAt(p []byte, off int64) (int, error) {
	switch {
	case f.closed:
		return 0, f.pathError("read", os.ErrClosed)
	case f.root || f.file.Entry.IsDir():
		return 0, f.pathError("read", syscall.EISDIR)
	case len(p) == 0:
		return 0, nil
	}

	n, err := f.fs.vol.ReadAt(f.file, p, off)
	if err != nil && err != io.EOF {
		return n, f.pathError("read", err)
	}
	return n, err
}

// Seek sets the offset for the next Read. Offsets beyond the end of the
// file are rejected with afero.ErrOutOfRange.
func (f *aferoFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, f.pathError("seek", os.ErrClosed)
	}

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += f.offset
	case io.SeekEnd:
		offset += f.info.Size()
	default:
		return 0, f.pathError("seek", syscall.EINVAL)
	}

	if offset < 0 || offset > f.info.Size() {
		return 0, f.pathError("seek", afero.ErrOutOfRange)
	}

	f.offset = offset
	return offset, nil
}

func (f *aferoFile) Name() string {
	return f.name
}

// Readdir returns up to count entries of the root directory. A count of
// zero or less returns all remaining entries. Subdirectories list as empty.
func (f *aferoFile) Readdir(count int) ([]os.FileInfo, error) {
	if f.closed {
		return nil, f.pathError("readdir", os.ErrClosed)
	}

	var entries []DirEntry
	switch {
	case f.root:
		var err error
		if entries, err = f.fs.vol.ReadDir(); err != nil {
			return nil, f.pathError("readdir", err)
		}
	case !f.file.Entry.IsDir():
		return nil, f.pathError("readdir", syscall.ENOTDIR)
	}

	if f.dirOffset > len(entries) {
		f.dirOffset = len(entries)
	}
	entries = entries[f.dirOffset:]

	if count > 0 {
		if len(entries) == 0 {
			return nil, io.EOF
		}
		if len(entries) > count {
			entries = entries[:count]
		}
	}
	f.dirOffset += len(entries)

	infos := make([]os.FileInfo, len(entries))
	for i := range entries {
		infos[i] = entryFileInfo{entry: entries[i]}
	}
	return infos, nil
}

func (f *aferoFile) Readdirnames(n int) ([]string, error) {
	infos, err := f.Readdir(n)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, err
}

func (f *aferoFile) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, f.pathError("stat", os.ErrClosed)
	}
	return f.info, nil
}

func (f *aferoFile) Sync() error {
	return nil
}

func (f *aferoFile) Write(p []byte) (int, error) {
	return 0, f.pathError("write", syscall.EROFS)
}

func (f *aferoFile) WriteAt(p []byte, off int64) (int, error) {
	return 0, f.pathError("write", syscall.EROFS)
}

func (f *aferoFile) WriteString(s string) (int, error) {
	return 0, f.pathError("write", syscall.EROFS)
}

func (f *aferoFile) Truncate(size int64) error {
	return f.pathError("truncate", syscall.EROFS)
}
