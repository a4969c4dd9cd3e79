package fat16

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"
)

const (
	dirEntrySize = 32

	// entryEndOfDir in the first name byte marks the end of the directory.
	entryEndOfDir = 0x00

	// entryDeleted in the first name byte marks a deleted entry.
	entryDeleted = 0xE5
)

// Directory entry attribute bits.
const (
	AttrReadOnly  uint8 = 0x01
	AttrHidden    uint8 = 0x02
	AttrSystem    uint8 = 0x04
	AttrVolumeID  uint8 = 0x08
	AttrDirectory uint8 = 0x10
	AttrArchive   uint8 = 0x20
)

// DirEntry mirrors a 32-byte short-name directory entry.
type DirEntry struct {
	Name            [8]byte
	Ext             [3]byte
	Attribute       uint8
	NTReserved      uint8
	CreateTimeTenth uint8
	CreateTime      uint16
	CreateDate      uint16
	AccessDate      uint16
	ClusterHigh     uint16
	WriteTime       uint16
	WriteDate       uint16
	Cluster         uint16
	Size            uint32
}

func parseDirEntry(raw []byte) (DirEntry, error) {
	var e DirEntry
	if err := restruct.Unpack(raw[:dirEntrySize], binary.LittleEndian, &e); err != nil {
		return DirEntry{}, errors.Wrap(err, "fat16: decode directory entry")
	}
	return e, nil
}

// Bytes encodes the entry into its 32-byte on-disk form.
func (e *DirEntry) Bytes() ([]byte, error) {
	return restruct.Pack(binary.LittleEndian, e)
}

// DisplayName returns the entry name as BASE.EXT. The base name ends at the
// first space. The dot is omitted when the extension is blank.
func (e *DirEntry) DisplayName() string {
	base := e.Name[:]
	if i := strings.IndexByte(string(base), ' '); i >= 0 {
		base = base[:i]
	}

	ext := e.Ext[:]
	if strings.TrimLeft(string(ext), " ") == "" {
		return string(base)
	}
	if i := strings.IndexByte(string(ext), ' '); i >= 0 {
		ext = ext[:i]
	}

	return string(base) + "." + string(ext)
}

// IsDir returns true for subdirectory entries.
func (e *DirEntry) IsDir() bool {
	return e.Attribute&AttrDirectory != 0
}

// IsVolumeLabel returns true for the entry that holds the volume label.
func (e *DirEntry) IsVolumeLabel() bool {
	return e.Attribute&AttrVolumeID != 0
}

// StartCluster returns the first cluster of the entry's data.
func (e *DirEntry) StartCluster() ClusterEntry {
	return ClusterEntry(e.Cluster)
}

// ModTime returns the last write time of the entry. It returns the zero
// time when the stored date is invalid.
func (e *DirEntry) ModTime() time.Time {
	date := ParseDate(e.WriteDate)
	if date.IsZero() {
		return time.Time{}
	}

	clock := ParseTime(e.WriteTime)
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
}

// SetName stores name in the 8.3 name fields, upper-cased and space padded.
// Characters beyond the 8.3 limits are dropped.
func (e *DirEntry) SetName(name string) {
	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		base, ext = name[:i], name[i+1:]
	}

	copy(e.Name[:], padName(base, len(e.Name)))
	copy(e.Ext[:], padName(ext, len(e.Ext)))
}

func padName(s string, width int) string {
	s = strings.ToUpper(s)
	if len(s) > width {
		s = s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
