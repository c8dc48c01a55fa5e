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
package memefs

import (
	"fmt"

	"github.com/ostafen/memefs/internal/bcd"
	"github.com/ostafen/memefs/internal/fs"
)

// Volume is the in-memory state of a MEMEfs image. All mutation happens on
// these tables; the backing file is rewritten only at unmount.
type Volume struct {
	main   Superblock
	backup Superblock
	fat    *Table
	dir    [NumDirEntries]DirEntry
	user   [NumUserBlocks * BlockSize]byte

	img fs.File
}

// Format returns a freshly formatted volume: FSVersion 1, empty directory,
// all user blocks free and zeroed.
func Format(label string) *Volume {
	v := &Volume{
		main: NewSuperblock(label, bcd.Now()),
		fat:  NewTable(),
	}
	v.backup = v.main

	for i := range v.dir {
		v.dir[i] = tombstone()
	}
	return v
}

// Load parses a raw image into a Volume. The in-memory clean-unmount flag
// is forced to dirty for the live session. When the image carries the
// fresh-format version, the directory and user area are initialized in
// memory instead of being deserialized.
func Load(data []byte) (*Volume, error) {
	if len(data) != ImageSize {
		return nil, fmt.Errorf("%w: size mismatch: expected %d bytes, got %d",
			ErrBadImage, ImageSize, len(data))
	}

	v := &Volume{fat: &Table{}}

	main, mainErr := ParseSuperblock(block(data, MainSuperblockNum))
	backup, backupErr := ParseSuperblock(block(data, BackupSuperblockNum))

	// A torn unmount may leave one superblock unreadable; the surviving
	// copy wins.
	switch {
	case mainErr == nil && backupErr == nil:
		v.main, v.backup = main, backup
	case mainErr == nil:
		v.main, v.backup = main, main
	case backupErr == nil:
		v.main, v.backup = backup, backup
	default:
		return nil, mainErr
	}

	v.main.CleanlyUnmounted = FlagDirty
	v.backup.CleanlyUnmounted = FlagDirty

	unmarshalFAT(&v.fat.main, block(data, MainFATBlockNum))
	unmarshalFAT(&v.fat.backup, block(data, BackupFATBlockNum))

	if v.main.FSVersion == 1 {
		for i := range v.dir {
			v.dir[i] = tombstone()
		}
		return v, nil
	}

	dirRegion := data[DirectoryStartBlock*BlockSize:]
	for i := range v.dir {
		v.dir[i].unmarshal(dirRegion[i*DirEntrySize:])
	}
	copy(v.user[:], data[FirstUserBlock*BlockSize:])
	return v, nil
}

// Marshal serializes the full volume state into a raw image. Padding,
// reserved blocks and unused superblock bytes are zero.
func (v *Volume) Marshal() []byte {
	data := make([]byte, ImageSize)

	// The order in which regions are filled into the buffer has no effect
	// on disk. Unmount writes the whole buffer with one front-to-back
	// WriteAt, so the backup superblock (block 0) reaches the file first
	// and the main superblock (block 255) last.
	v.backup.marshal(block(data, BackupSuperblockNum))
	marshalFAT(&v.fat.backup, block(data, BackupFATBlockNum))

	dirRegion := data[DirectoryStartBlock*BlockSize:]
	for i := range v.dir {
		v.dir[i].marshal(dirRegion[i*DirEntrySize:])
	}
	copy(data[FirstUserBlock*BlockSize:], v.user[:])

	marshalFAT(&v.fat.main, block(data, MainFATBlockNum))
	v.main.marshal(block(data, MainSuperblockNum))
	return data
}

// Mount opens the image at path read/write and loads it. The file stays
// open for the mount lifetime; Unmount serializes the state back and
// closes it.
func Mount(path string) (*Volume, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %q: %w", path, err)
	}

	data := make([]byte, ImageSize)
	if _, err := f.ReadAt(data, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read image %q: %w", path, err)
	}

	v, err := Load(data)
	if err != nil {
		f.Close()
		return nil, err
	}

	v.img = f
	return v, nil
}

// Unmount marks both superblocks clean, bumps the main filesystem version,
// writes the full image back and closes the backing file.
func (v *Volume) Unmount() error {
	if v.img == nil {
		return fmt.Errorf("memefs: volume has no backing image")
	}

	v.main.CleanlyUnmounted = FlagClean
	v.backup.CleanlyUnmounted = FlagClean
	v.main.FSVersion++

	data := v.Marshal()
	if _, err := v.img.WriteAt(data, 0); err != nil {
		v.img.Close()
		return fmt.Errorf("failed to write image back: %w", err)
	}
	if err := v.img.Sync(); err != nil {
		v.img.Close()
		return fmt.Errorf("failed to sync image: %w", err)
	}

	err := v.img.Close()
	v.img = nil
	return err
}

// Close releases the backing file without serializing the in-memory
// state. Used on error paths where the volume was never surfaced.
func (v *Volume) Close() error {
	if v.img == nil {
		return nil
	}
	err := v.img.Close()
	v.img = nil
	return err
}

// Super returns a copy of the main superblock.
func (v *Volume) Super() Superblock {
	return v.main
}

// FreeBlocks returns the number of unallocated user data blocks.
func (v *Volume) FreeBlocks() int {
	return v.fat.FreeBlocks()
}

// block returns the 512-byte slice of block n within a raw image.
func block(data []byte, n int) []byte {
	return data[n*BlockSize : (n+1)*BlockSize]
}
