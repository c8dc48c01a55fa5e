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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ostafen/memefs/internal/bcd"
)

// Clean-unmount flag values. While a volume is mounted the in-memory flag
// is held at FlagDirty; a graceful teardown writes FlagClean to both
// superblocks.
const (
	FlagDirty uint8 = 0x00
	FlagClean uint8 = 0xFF
)

// Superblock describes the volume layout, version and mount state. Two
// copies exist on disk: the main one in block 255 and a backup in block 0.
type Superblock struct {
	Signature        [16]byte      // 0x00: filesystem signature
	CleanlyUnmounted uint8         // 0x10: FlagClean after a graceful unmount
	FSVersion        uint32        // 0x14: incremented on each successful unmount
	CTime            bcd.Timestamp // 0x18: creation time, BCD UTC
	MainFAT          uint16        // 0x20: main FAT starting block
	MainFATSize      uint16        // 0x22: main FAT size in blocks
	BackupFAT        uint16        // 0x24: backup FAT starting block
	BackupFATSize    uint16        // 0x26: backup FAT size in blocks
	DirectoryStart   uint16        // 0x28: directory starting block
	DirectorySize    uint16        // 0x2A: directory size in blocks
	NumUserBlocks    uint16        // 0x2C: number of user data blocks
	FirstUserBlock   uint16        // 0x2E: first user data block
	VolumeLabel      [16]byte      // 0x30: zero-padded volume label
	// 0x40..0x1FF: unused, must be zero
}

// NewSuperblock returns a superblock holding the fixed MEMEfs layout with
// FSVersion 1 (the fresh-format convention) and the given label.
func NewSuperblock(label string, ctime bcd.Timestamp) Superblock {
	sb := Superblock{
		CleanlyUnmounted: FlagClean,
		FSVersion:        1,
		CTime:            ctime,
		MainFAT:          MainFATBlockNum,
		MainFATSize:      1,
		BackupFAT:        BackupFATBlockNum,
		BackupFATSize:    1,
		DirectoryStart:   DirectoryStartBlock,
		DirectorySize:    DirectoryBlocks,
		NumUserBlocks:    NumUserBlocks,
		FirstUserBlock:   FirstUserBlock,
	}
	copy(sb.Signature[:], SignatureString)
	copy(sb.VolumeLabel[:], label)
	return sb
}

// Label returns the volume label with trailing padding stripped.
func (sb *Superblock) Label() string {
	return string(bytes.TrimRight(sb.VolumeLabel[:], "\x00"))
}

// marshal serializes the superblock into a 512-byte block. All multi-byte
// fields are big-endian; the unused tail stays zero.
func (sb *Superblock) marshal(block []byte) {
	copy(block[0x00:], sb.Signature[:])
	block[0x10] = sb.CleanlyUnmounted
	binary.BigEndian.PutUint32(block[0x14:], sb.FSVersion)
	copy(block[0x18:], sb.CTime[:])
	binary.BigEndian.PutUint16(block[0x20:], sb.MainFAT)
	binary.BigEndian.PutUint16(block[0x22:], sb.MainFATSize)
	binary.BigEndian.PutUint16(block[0x24:], sb.BackupFAT)
	binary.BigEndian.PutUint16(block[0x26:], sb.BackupFATSize)
	binary.BigEndian.PutUint16(block[0x28:], sb.DirectoryStart)
	binary.BigEndian.PutUint16(block[0x2A:], sb.DirectorySize)
	binary.BigEndian.PutUint16(block[0x2C:], sb.NumUserBlocks)
	binary.BigEndian.PutUint16(block[0x2E:], sb.FirstUserBlock)
	copy(block[0x30:], sb.VolumeLabel[:])
}

// ParseSuperblock deserializes a 512-byte block into a Superblock and
// validates its signature.
func ParseSuperblock(block []byte) (Superblock, error) {
	var sb Superblock
	if len(block) != BlockSize {
		return sb, fmt.Errorf("%w: superblock size mismatch: expected %d bytes, got %d",
			ErrBadImage, BlockSize, len(block))
	}

	copy(sb.Signature[:], block[0x00:0x10])
	sb.CleanlyUnmounted = block[0x10]
	sb.FSVersion = binary.BigEndian.Uint32(block[0x14:])
	copy(sb.CTime[:], block[0x18:0x20])
	sb.MainFAT = binary.BigEndian.Uint16(block[0x20:])
	sb.MainFATSize = binary.BigEndian.Uint16(block[0x22:])
	sb.BackupFAT = binary.BigEndian.Uint16(block[0x24:])
	sb.BackupFATSize = binary.BigEndian.Uint16(block[0x26:])
	sb.DirectoryStart = binary.BigEndian.Uint16(block[0x28:])
	sb.DirectorySize = binary.BigEndian.Uint16(block[0x2A:])
	sb.NumUserBlocks = binary.BigEndian.Uint16(block[0x2C:])
	sb.FirstUserBlock = binary.BigEndian.Uint16(block[0x2E:])
	copy(sb.VolumeLabel[:], block[0x30:0x40])

	if string(sb.Signature[:]) != SignatureString {
		return sb, fmt.Errorf("%w: bad signature %q", ErrBadImage, sb.Signature[:])
	}
	return sb, nil
}

// String provides a human-readable representation of the superblock.
func (sb *Superblock) String() string {
	state := "dirty"
	if sb.CleanlyUnmounted == FlagClean {
		state = "clean"
	}
	return fmt.Sprintf("--- MEMEfs Superblock ---\n"+
		"Signature: %q\n"+
		"State: %s (0x%02X)\n"+
		"Version: %d\n"+
		"Created: %s\n"+
		"Main FAT: block %d (%d block)\n"+
		"Backup FAT: block %d (%d block)\n"+
		"Directory: blocks %d..%d\n"+
		"User Data: blocks %d..%d (%d blocks)\n"+
		"Volume Label: %q",
		sb.Signature[:], state, sb.CleanlyUnmounted, sb.FSVersion, sb.CTime,
		sb.MainFAT, sb.MainFATSize,
		sb.BackupFAT, sb.BackupFATSize,
		sb.DirectoryStart, sb.DirectoryStart+sb.DirectorySize-1,
		sb.FirstUserBlock, sb.FirstUserBlock+sb.NumUserBlocks-1, sb.NumUserBlocks,
		sb.Label())
}
