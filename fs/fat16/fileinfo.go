package fat16

import (
	"os"
	"time"
)

// entryFileInfo exposes a directory entry as an os.FileInfo.
type entryFileInfo struct {
	entry DirEntry
}

func (e entryFileInfo) Name() string {
	return e.entry.DisplayName()
}

func (e entryFileInfo) Size() int64 {
	return int64(e.entry.Size)
}

func (e entryFileInfo) Mode() os.FileMode {
	mode := os.FileMode(0444)
	if e.entry.IsDir() {
		mode |= os.ModeDir | 0111
	}
	return mode
}

func (e entryFileInfo) ModTime() time.Time {
	return e.entry.ModTime()
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.IsDir()
}

// Sys returns the underlying DirEntry.
func (e entryFileInfo) Sys() interface{} {
	return e.entry
}

// rootFileInfo describes the root directory, which has no entry of its own.
type rootFileInfo struct {
	label string
}

func (r rootFileInfo) Name() string       { return "/" }
func (r rootFileInfo) Size() int64        { return 0 }
func (r rootFileInfo) Mode() os.FileMode  { return os.ModeDir | 0555 }
func (r rootFileInfo) ModTime() time.Time { return time.Time{} }
func (r rootFileInfo) IsDir() bool        { return true }
func (r rootFileInfo) Sys() interface{}   { return r.label }
