//go:build !windows
// +build !windows

package fs

import "os"

// Open opens an image file for read/write access.
func Open(path string) (File, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}
