//go:build !linux && !darwin && !freebsd
// +build !linux,!darwin,!freebsd

package image

import "github.com/spf13/afero"

func positionalReader(f afero.File) func([]byte, int64) (int, error) {
	return f.ReadAt
}
