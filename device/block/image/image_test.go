package image

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"tinyos/device/block"
)

func testImage(sectors int) []byte {
	data := make([]byte, sectors*block.SectorSize)
	for i := range data {
		data[i] = byte(i/block.SectorSize) ^ byte(i)
	}
	return data
}

func TestDiskReadSectors(t *testing.T) {
	data := testImage(8)

	fsSpecs := []struct {
		descr string
		fs    func(t *testing.T) (afero.Fs, string)
	}{
		{
			"memory fs",
			func(t *testing.T) (afero.Fs, string) {
				return afero.NewMemMapFs(), "/disk.img"
			},
		},
		{
			"os fs",
			func(t *testing.T) (afero.Fs, string) {
				return afero.NewOsFs(), filepath.Join(t.TempDir(), "disk.img")
			},
		},
	}

	for _, fsSpec := range fsSpecs {
		t.Run(fsSpec.descr, func(t *testing.T) {
			fs, path := fsSpec.fs(t)
			require.NoError(t, afero.WriteFile(fs, path, data, 0644))

			disk, err := Open(fs, path)
			require.NoError(t, err)
			defer disk.Close()

			require.Equal(t, uint32(8), disk.Sectors())
			require.Equal(t, int64(len(data)), disk.Size())

			buf := make([]byte, 3*block.SectorSize+7)
			for i := range buf {
				buf[i] = 0xEE
			}

			require.NoError(t, disk.ReadSectors(2, buf, 3))
			require.Equal(t, data[2*block.SectorSize:5*block.SectorSize], buf[:3*block.SectorSize])
			require.Equal(t, bytes.Repeat([]byte{0xEE}, 7), buf[3*block.SectorSize:], "bytes past the transfer must not be touched")

			require.NoError(t, disk.ReadSectors(7, buf, 1))
			require.Equal(t, data[7*block.SectorSize:], buf[:block.SectorSize])

			err = disk.ReadSectors(7, buf, 2)
			require.True(t, errors.Is(err, block.ErrOutOfRange), "got %v", err)

			err = disk.ReadSectors(0, make([]byte, 100), 1)
			require.Equal(t, block.ErrShortBuffer, err)

			require.NoError(t, disk.ReadSectors(0, nil, 0))
		})
	}
}

func TestDiskReadAt(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := testImage(2)
	require.NoError(t, afero.WriteFile(fs, "/disk.img", data, 0644))

	disk, err := Open(fs, "/disk.img")
	require.NoError(t, err)

	p := make([]byte, 16)
	n, err := disk.ReadAt(p, int64(len(data)-16))
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.Equal(t, data[len(data)-16:], p)

	n, err = disk.ReadAt(p, int64(len(data)-8))
	require.Equal(t, io.EOF, err)
	require.Equal(t, 8, n)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(afero.NewMemMapFs(), "/missing.img")
	require.Error(t, err)
	require.Contains(t, err.Error(), "image: open /missing.img")
}
