//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/ostafen/memefs/internal/memefs"
)

func Mount(mountpoint string, vol *memefs.Volume) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
