package main

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bootText = "hello from the boot disk\n"

func run(fs afero.Fs, args ...string) (string, error) {
	a := newApp(fs, ioutil.Discard)
	cmd := newRootCmd(a)

	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(ioutil.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func newImage(t *testing.T, extra ...string) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "host/boot.txt", []byte(bootText), 0644))
	require.NoError(t, afero.WriteFile(fs, "host/notes.md", bytes.Repeat([]byte("n"), 1500), 0644))

	args := append([]string{"mkimage", "disk.img", "--label", "tinyos", "host/boot.txt", "host/notes.md"}, extra...)
	out, err := run(fs, args...)
	require.NoError(t, err)
	require.Contains(t, out, "wrote disk.img")
	return fs
}

func TestMkimage(t *testing.T) {
	fs := newImage(t)

	info, err := fs.Stat("disk.img")
	require.NoError(t, err)
	assert.True(t, info.Size() > 2048*512)
	assert.Zero(t, info.Size()%512)
}

func TestMkimageMissingHostFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := run(fs, "mkimage", "disk.img", "missing.txt")
	assert.Error(t, err)

	exists, _ := afero.Exists(fs, "disk.img")
	assert.False(t, exists)
}

func TestMkimageRejectsZeroClusterSize(t *testing.T) {
	_, err := run(afero.NewMemMapFs(), "mkimage", "disk.img", "--cluster-sectors", "0")
	assert.Error(t, err)
}

func TestLs(t *testing.T) {
	fs := newImage(t)

	out, err := run(fs, "ls", "disk.img")
	require.NoError(t, err)

	assert.Contains(t, out, "volume TINYOS at lba 2048")
	assert.Contains(t, out, "BOOT.TXT")
	assert.Contains(t, out, "NOTES.MD")
	assert.Contains(t, out, "1500")
	assert.Contains(t, out, "2020-03-14 15:09")
}

func TestLsWithoutPartitionTable(t *testing.T) {
	fs := newImage(t, "--mbr=false", "--base", "0")

	out, err := run(fs, "ls", "--probe=false", "--base", "0", "disk.img")
	require.NoError(t, err)
	assert.Contains(t, out, "volume TINYOS at lba 0")
}

func TestCat(t *testing.T) {
	fs := newImage(t)

	specs := []struct {
		name string
		exp  string
	}{
		{"BOOT.TXT", bootText},
		{"boot.txt", bootText},
		{"/notes.md", strings.Repeat("n", 1500)},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			out, err := run(fs, "cat", "disk.img", spec.name)
			require.NoError(t, err)
			assert.Equal(t, spec.exp, out)
		})
	}
}

func TestCatMissingFile(t *testing.T) {
	fs := newImage(t)

	_, err := run(fs, "cat", "disk.img", "nope.txt")
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	fs := newImage(t)

	out, err := run(fs, "chain", "disk.img", "NOTES.MD")
	require.NoError(t, err)
	assert.Equal(t, "NOTES.MD: 1500 bytes, 3 clusters: 3 -> 4 -> 5\n", out)
}

func TestBoot(t *testing.T) {
	fs := newImage(t)

	out, err := run(fs, "boot", "disk.img", "--boot-id", "test-boot")
	require.NoError(t, err)

	assert.Contains(t, out, "boot_id=test-boot")
	assert.Contains(t, out, "[ata_pio] primary master present")
	assert.Contains(t, out, "loaded BOOT.TXT (25 bytes)")
	assert.Contains(t, out, "--- BOOT.TXT ---\n"+bootText)
	assert.Contains(t, out, "free frames: 124/128")
}

func TestBootCustomFile(t *testing.T) {
	fs := newImage(t)

	out, err := run(fs, "boot", "disk.img", "--boot-file", "NOTES.MD", "--read-limit", "600", "--heap-frames", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "loaded NOTES.MD (600 bytes)")
	assert.Contains(t, out, "free frames: 126/128")
}

func TestBootErrors(t *testing.T) {
	fs := newImage(t)

	specs := []struct {
		name string
		args []string
	}{
		{"missing image", []string{"boot", "absent.img"}},
		{"heap larger than pool", []string{"boot", "disk.img", "--frames", "2", "--heap-frames", "3"}},
		{"wrong partition base", []string{"boot", "disk.img", "--probe=false", "--base", "1"}},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			_, err := run(fs, spec.args...)
			assert.Error(t, err)
		})
	}
}
