//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/ostafen/memefs/internal/memefs"
)

// MemeFS adapts a memefs.Volume to the kernel VFS. The host library
// dispatches requests on multiple goroutines; a single mutex serializes
// every mutation of the volume so that operations appear atomic.
type MemeFS struct {
	mu  sync.Mutex
	vol *memefs.Volume
}

func New(vol *memefs.Volume) *MemeFS {
	return &MemeFS{vol: vol}
}

func (m *MemeFS) Root() (fs.Node, error) {
	return &Dir{fs: m}, nil
}

func (m *MemeFS) Statfs(ctx context.Context, req *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp.Bsize = memefs.BlockSize
	resp.Blocks = memefs.NumUserBlocks
	resp.Bfree = uint64(m.vol.FreeBlocks())
	resp.Bavail = resp.Bfree
	resp.Files = memefs.NumDirEntries
	resp.Ffree = uint64(m.vol.FreeEntries())
	resp.Namelen = 12
	return nil
}

// Dir is the root directory node. MEMEfs has a flat namespace, so this is
// the only directory in the tree.
type Dir struct {
	fs *MemeFS
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1
	a.Mode = os.ModeDir | 0755
	a.Nlink = 2
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()

	slot, ok := d.fs.vol.Lookup(name)
	if !ok {
		return nil, fuse.ENOENT
	}
	return &File{fs: d.fs, name: name, slot: slot}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()

	dirEntries := []fuse.Dirent{
		{Inode: 1, Name: ".", Type: fuse.DT_Dir},
		{Inode: 1, Name: "..", Type: fuse.DT_Dir},
	}
	for _, name := range d.fs.vol.Names() {
		slot, _ := d.fs.vol.Lookup(name)
		dirEntries = append(dirEntries, fuse.Dirent{
			Inode: inode(slot),
			Name:  name,
			Type:  fuse.DT_File,
		})
	}
	return dirEntries, nil
}

func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()

	slot, err := d.fs.vol.Create(
		req.Name,
		uint16(req.Mode.Perm()),
		uint16(req.Uid),
		uint16(req.Gid),
	)
	if err != nil {
		// A full directory table maps to ENFILE, unlike a full FAT.
		if errors.Is(err, memefs.ErrNoSpace) {
			return nil, nil, fuse.Errno(syscall.ENFILE)
		}
		return nil, nil, toErrno(err)
	}

	f := &File{fs: d.fs, name: req.Name, slot: slot}
	return f, f, nil
}

func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()

	if req.Dir {
		return fuse.Errno(syscall.EPERM)
	}
	return toErrno(d.fs.vol.Unlink(req.Name))
}

// File is both the node and the handle for one directory slot. The slot is
// cached to skip the directory scan on the I/O path, but names can move
// slots across unlink/create cycles, so every operation revalidates it.
type File struct {
	fs   *MemeFS
	name string
	slot int
}

// resolve returns the current slot for the file's name. Callers must hold
// the filesystem lock.
func (f *File) resolve() (int, error) {
	e := f.fs.vol.Entry(f.slot)
	if !e.Free() && e.Name() == f.name {
		return f.slot, nil
	}

	slot, ok := f.fs.vol.Lookup(f.name)
	if !ok {
		return 0, fuse.ENOENT
	}
	f.slot = slot
	return slot, nil
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	slot, err := f.resolve()
	if err != nil {
		return err
	}

	e := f.fs.vol.Entry(slot)
	fillAttr(&e, slot, a)
	return nil
}

func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	if _, err := f.resolve(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	slot, err := f.resolve()
	if err != nil {
		return err
	}

	buf := make([]byte, req.Size)
	n, err := f.fs.vol.ReadAt(slot, buf, req.Offset)
	if err != nil {
		return toErrno(err)
	}
	resp.Data = buf[:n]
	return nil
}

func (f *File) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	slot, err := f.resolve()
	if err != nil {
		return err
	}

	n, err := f.fs.vol.WriteAt(slot, req.Data, req.Offset)
	if err != nil {
		return toErrno(err)
	}
	resp.Size = n
	return nil
}

func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	slot, err := f.resolve()
	if err != nil {
		return err
	}

	if req.Valid.Size() {
		if err := f.fs.vol.Truncate(slot, int64(req.Size)); err != nil {
			return toErrno(err)
		}
	}
	if req.Valid.Mtime() || req.Valid.Atime() {
		f.fs.vol.Touch(slot)
	}

	e := f.fs.vol.Entry(slot)
	fillAttr(&e, slot, &resp.Attr)
	return nil
}

func (f *File) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	// All state is in memory until unmount.
	return nil
}

func fillAttr(e *memefs.DirEntry, slot int, a *fuse.Attr) {
	a.Inode = inode(slot)
	a.Mode = os.FileMode(e.Type & 0o777)
	a.Nlink = 1
	a.Size = uint64(e.Size)
	a.Blocks = (uint64(e.Size) + memefs.BlockSize - 1) / memefs.BlockSize
	a.BlockSize = memefs.BlockSize
	a.Uid = uint32(e.OwnerUID)
	a.Gid = uint32(e.GroupGID)
	a.Mtime = e.Timestamp.Time()
	a.Ctime = a.Mtime
}

// inode maps a directory slot to a stable inode number; 1 is the root.
func inode(slot int) uint64 {
	return uint64(slot) + 2
}

func toErrno(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, memefs.ErrNotFound):
		return fuse.ENOENT
	case errors.Is(err, memefs.ErrExist):
		return fuse.Errno(syscall.EEXIST)
	case errors.Is(err, memefs.ErrNameTooLong):
		return fuse.Errno(syscall.ENAMETOOLONG)
	case errors.Is(err, memefs.ErrBadName):
		return fuse.Errno(syscall.EBADF)
	case errors.Is(err, memefs.ErrNoSpace):
		return fuse.Errno(syscall.ENOSPC)
	}
	return fuse.EIO
}
