package fat16

import (
	"os"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

// Fs is a read-only afero.Fs view of the root directory of a Volume.
// Every mutating call fails with syscall.EROFS.
type Fs struct {
	vol *Volume
}

// NewFs returns an afero.Fs backed by vol.
func NewFs(vol *Volume) afero.Fs {
	return &Fs{vol: vol}
}

// cleanName maps an afero path to a root directory name. An empty result
// refers to the root directory itself.
func cleanName(name string) string {
	name = path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(name, "/")
}

func (fs *Fs) lookup(op, name string) (DirEntry, error) {
	clean := cleanName(name)
	if strings.Contains(clean, "/") {
		return DirEntry{}, &os.PathError{Op: op, Path: name, Err: os.ErrNotExist}
	}

	var (
		found DirEntry
		ok    bool
	)
	err := fs.vol.visitRoot(func(e *DirEntry) bool {
		if e.IsVolumeLabel() || !strings.EqualFold(e.DisplayName(), clean) {
			return true
		}
		found, ok = *e, true
		return false
	})

	switch {
	case err != nil:
		return DirEntry{}, &os.PathError{Op: op, Path: name, Err: err}
	case !ok:
		return DirEntry{}, &os.PathError{Op: op, Path: name, Err: os.ErrNotExist}
	}
	return found, nil
}

// Open opens name for reading. The root directory is opened with "/" or
// an empty name.
func (fs *Fs) Open(name string) (afero.File, error) {
	if cleanName(name) == "" {
		return &aferoFile{fs: fs, name: name, root: true, info: rootFileInfo{label: fs.vol.Label()}}, nil
	}

	entry, err := fs.lookup("open", name)
	if err != nil {
		return nil, err
	}

	return &aferoFile{
		fs:   fs,
		name: name,
		file: &File{Entry: entry, Cluster: entry.StartCluster()},
		info: entryFileInfo{entry: entry},
	}, nil
}

// OpenFile opens name for reading. Any flag requesting write access fails.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, readOnly("open", name)
	}
	return fs.Open(name)
}

// Stat returns the FileInfo of name.
func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	if cleanName(name) == "" {
		return rootFileInfo{label: fs.vol.Label()}, nil
	}

	entry, err := fs.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return entryFileInfo{entry: entry}, nil
}

// Name returns the name of the filesystem.
func (fs *Fs) Name() string {
	return "fat16"
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, readOnly("create", name)
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return readOnly("mkdir", name)
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return readOnly("mkdir", path)
}

func (fs *Fs) Remove(name string) error {
	return readOnly("remove", name)
}

func (fs *Fs) RemoveAll(path string) error {
	return readOnly("remove", path)
}

func (fs *Fs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: syscall.EROFS}
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return readOnly("chmod", name)
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return readOnly("chown", name)
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return readOnly("chtimes", name)
}

func readOnly(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: syscall.EROFS}
}
