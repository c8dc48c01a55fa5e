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
	"encoding/binary"

	"github.com/ostafen/memefs/internal/bcd"
)

// DirEntry is one 32-byte record of the directory table. A zero Type marks
// the slot as free; a freed slot additionally carries the single-space
// tombstone filename.
type DirEntry struct {
	Type       uint16        // 0x00: 0 = free, otherwise S_IFREG | permission bits
	StartBlock uint16        // 0x02: first block of the chain, EndOfChain when empty
	Filename   [11]byte      // 0x04: packed 8.3 name
	Timestamp  bcd.Timestamp // 0x10: last modification, BCD UTC
	Size       uint32        // 0x18: logical byte length
	OwnerUID   uint16        // 0x1C
	GroupGID   uint16        // 0x1E
}

// tombstone is the state of a never-used or freed directory slot.
func tombstone() DirEntry {
	e := DirEntry{
		StartBlock: EndOfChain,
		OwnerUID:   0xFFFF,
		GroupGID:   0xFFFF,
	}
	e.Filename[0] = ' '
	return e
}

// Free reports whether the slot holds no file.
func (e *DirEntry) Free() bool {
	return e.Type == 0
}

// Name returns the decoded external name of the entry.
func (e *DirEntry) Name() string {
	return DecodeName(e.Filename)
}

// listed reports whether the entry should appear in a directory listing:
// it must be in use and its filename must be neither empty nor the
// single-space tombstone marker.
func (e *DirEntry) listed() bool {
	return !e.Free() && e.Filename[0] != 0 && e.Filename[0] != ' '
}

func (e *DirEntry) marshal(buf []byte) {
	binary.BigEndian.PutUint16(buf[0x00:], e.Type)
	binary.BigEndian.PutUint16(buf[0x02:], e.StartBlock)
	copy(buf[0x04:], e.Filename[:])
	buf[0x0F] = 0 // unused
	copy(buf[0x10:], e.Timestamp[:])
	binary.BigEndian.PutUint32(buf[0x18:], e.Size)
	binary.BigEndian.PutUint16(buf[0x1C:], e.OwnerUID)
	binary.BigEndian.PutUint16(buf[0x1E:], e.GroupGID)
}

func (e *DirEntry) unmarshal(buf []byte) {
	e.Type = binary.BigEndian.Uint16(buf[0x00:])
	e.StartBlock = binary.BigEndian.Uint16(buf[0x02:])
	copy(e.Filename[:], buf[0x04:0x0F])
	copy(e.Timestamp[:], buf[0x10:0x18])
	e.Size = binary.BigEndian.Uint32(buf[0x18:])
	e.OwnerUID = binary.BigEndian.Uint16(buf[0x1C:])
	e.GroupGID = binary.BigEndian.Uint16(buf[0x1E:])
}

// Lookup scans the directory table for the entry whose decoded name equals
// name and returns its slot.
func (v *Volume) Lookup(name string) (int, bool) {
	for i := range v.dir {
		if !v.dir[i].Free() && v.dir[i].Name() == name {
			return i, true
		}
	}
	return -1, false
}

// Entry returns a copy of the directory entry at slot i.
func (v *Volume) Entry(i int) DirEntry {
	return v.dir[i]
}

// Create allocates a directory entry for name. Free slots are scanned from
// the end of the table toward the beginning. The new file owns no data
// blocks until the first write; its start block holds the end-of-chain
// sentinel.
func (v *Volume) Create(name string, mode uint16, uid, gid uint16) (int, error) {
	packed, err := EncodeName(name)
	if err != nil {
		return -1, err
	}
	if err := checkNameBytes(packed); err != nil {
		return -1, err
	}

	if _, ok := v.Lookup(name); ok {
		return -1, ErrExist
	}

	slot := -1
	for i := NumDirEntries - 1; i >= 0; i-- {
		if v.dir[i].Free() {
			slot = i
			break
		}
	}
	if slot < 0 {
		return -1, ErrNoSpace
	}

	v.dir[slot] = DirEntry{
		Type:       ModeRegular | (mode & 0o777),
		StartBlock: EndOfChain,
		Filename:   packed,
		Timestamp:  bcd.Now(),
		OwnerUID:   uid,
		GroupGID:   gid,
	}
	return slot, nil
}

// Unlink removes the entry for name, releasing its block chain and leaving
// the slot as a tombstone.
func (v *Volume) Unlink(name string) error {
	slot, ok := v.Lookup(name)
	if !ok {
		return ErrNotFound
	}

	v.fat.FreeChain(v.dir[slot].StartBlock)
	v.dir[slot] = tombstone()
	return nil
}

// FreeEntries returns the number of unused directory slots.
func (v *Volume) FreeEntries() int {
	n := 0
	for i := range v.dir {
		if v.dir[i].Free() {
			n++
		}
	}
	return n
}

// Names returns the decoded names of all listed entries, in slot order.
func (v *Volume) Names() []string {
	var names []string
	for i := range v.dir {
		if v.dir[i].listed() {
			names = append(names, v.dir[i].Name())
		}
	}
	return names
}
