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

// Package memefs implements the MEMEfs on-disk format: a fixed 256-block
// FAT-style volume with dual superblocks, dual allocation tables, a flat
// 8.3-name directory and a 220-block user data area. All multi-byte fields
// on disk are big-endian.
package memefs

const (
	// BlockSize is the fixed unit of image addressing.
	BlockSize = 512

	// NumBlocks is the total number of blocks in an image.
	NumBlocks = 256

	// ImageSize is the exact byte size of a MEMEfs image.
	ImageSize = NumBlocks * BlockSize
)

// Fixed region map. Block numbers never move; the superblock repeats them
// so that external tools can read the layout without hardcoding it.
const (
	BackupSuperblockNum = 0
	FirstUserBlock      = 19
	NumUserBlocks       = 220
	BackupFATBlockNum   = 239
	DirectoryStartBlock = 240
	DirectoryBlocks     = 14
	MainFATBlockNum     = 254
	MainSuperblockNum   = 255
)

const (
	// DirEntrySize is the packed on-disk size of one directory entry.
	DirEntrySize = 32

	// NumDirEntries is the directory table capacity.
	NumDirEntries = DirectoryBlocks * (BlockSize / DirEntrySize)
)

// FAT slot values. Anything else is the index of the next block in the
// same chain.
const (
	FreeBlock  uint16 = 0x0000
	EndOfChain uint16 = 0xFFFF
)

// ModeRegular is the S_IFREG bit stored in the directory entry type field
// alongside the permission bits.
const ModeRegular uint16 = 0x8000

// SignatureString identifies a MEMEfs image. It is exactly 16 bytes and
// occupies the first field of both superblocks.
const SignatureString = "?MEMEFS++CMSC421"

// userBlock reports whether block b belongs to the user data area.
func userBlock(b uint16) bool {
	return b >= FirstUserBlock && b < FirstUserBlock+NumUserBlocks
}
