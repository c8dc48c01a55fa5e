//go:build windows
// +build windows

// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package fs

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

// WindowsImageFile opens the image through CreateFile so that raw volume
// paths (\\.\X:) work the same way regular files do.
type WindowsImageFile struct {
	handle windows.Handle
	name   string
}

type imageFileInfo struct {
	name string
	size int64
}

func (fi *imageFileInfo) Name() string       { return fi.name }
func (fi *imageFileInfo) Size() int64        { return fi.size }
func (fi *imageFileInfo) Mode() os.FileMode  { return 0 }
func (fi *imageFileInfo) ModTime() time.Time { return time.Time{} }
func (fi *imageFileInfo) IsDir() bool        { return false }
func (fi *imageFileInfo) Sys() interface{}   { return nil }

// Open opens an image file or raw volume for read/write access.
func Open(path string) (File, error) {
	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	return &WindowsImageFile{handle: handle, name: path}, nil
}

func (f *WindowsImageFile) ReadAt(p []byte, off int64) (int, error) {
	var n uint32
	ov := overlappedAt(off)

	err := windows.ReadFile(f.handle, p, &n, ov)
	if err == syscall.ERROR_IO_PENDING {
		err = windows.GetOverlappedResult(f.handle, ov, &n, true)
	}
	if err != nil {
		return int(n), fmt.Errorf("read at %d failed: %w", off, err)
	}
	return int(n), nil
}

func (f *WindowsImageFile) WriteAt(p []byte, off int64) (int, error) {
	var n uint32
	ov := overlappedAt(off)

	err := windows.WriteFile(f.handle, p, &n, ov)
	if err == syscall.ERROR_IO_PENDING {
		err = windows.GetOverlappedResult(f.handle, ov, &n, true)
	}
	if err != nil {
		return int(n), fmt.Errorf("write at %d failed: %w", off, err)
	}
	return int(n), nil
}

func (f *WindowsImageFile) Stat() (os.FileInfo, error) {
	var size int64
	if err := windows.GetFileSizeEx(f.handle, &size); err != nil {
		return nil, fmt.Errorf("GetFileSizeEx failed: %w", err)
	}
	return &imageFileInfo{name: f.name, size: size}, nil
}

func (f *WindowsImageFile) Sync() error {
	return windows.FlushFileBuffers(f.handle)
}

func (f *WindowsImageFile) Close() error {
	return windows.CloseHandle(f.handle)
}

func overlappedAt(off int64) *windows.Overlapped {
	return &windows.Overlapped{
		Offset:     uint32(off),
		OffsetHigh: uint32(off >> 32),
	}
}
