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
)

// MaxFileSize is the largest logical file size: one file may at most span
// the whole user data area.
const MaxFileSize = NumUserBlocks * BlockSize

// blocksFor returns the chain length needed to hold n bytes.
func blocksFor(n int64) int {
	return int((n + BlockSize - 1) / BlockSize)
}

// userData returns the in-memory 512-byte slice backing user block b.
func (v *Volume) userData(b uint16) []byte {
	off := (int(b) - FirstUserBlock) * BlockSize
	return v.user[off : off+BlockSize]
}

// growChain extends the entry's chain to needed blocks. Newly appended
// blocks are zeroed so that holes and growth always read back as zeros,
// even when a block is recycled after an unlink. When the FAT cannot
// supply enough blocks nothing is mutated and ErrNoSpace is returned.
func (v *Volume) growChain(e *DirEntry, needed int) error {
	blocks := v.fat.chainBlocks(e.StartBlock)

	extra := needed - len(blocks)
	if extra <= 0 {
		return nil
	}
	if extra > v.fat.FreeBlocks() {
		return ErrNoSpace
	}

	if len(blocks) == 0 {
		first, err := v.fat.AllocChain(needed)
		if err != nil {
			return err
		}
		e.StartBlock = first
	} else if err := v.fat.ExtendChain(blocks[len(blocks)-1], extra); err != nil {
		return err
	}

	blocks = v.fat.chainBlocks(e.StartBlock)
	for _, b := range blocks[len(blocks)-extra:] {
		clear(v.userData(b))
	}
	return nil
}

// ReadAt copies up to len(p) bytes of the file at slot into p, starting at
// byte offset off, walking the block chain across block boundaries. It
// returns 0 at or past end of file.
func (v *Volume) ReadAt(slot int, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("memefs: negative read offset %d", off)
	}

	e := &v.dir[slot]
	if off >= int64(e.Size) {
		return 0, nil
	}

	n := len(p)
	if rem := int64(e.Size) - off; int64(n) > rem {
		n = int(rem)
	}

	blocks := v.fat.chainBlocks(e.StartBlock)

	read := 0
	for read < n {
		pos := off + int64(read)
		data := v.userData(blocks[pos/BlockSize])
		read += copy(p[read:n], data[pos%BlockSize:])
	}
	return n, nil
}

// WriteAt copies p into the file at slot starting at byte offset off,
// extending the block chain as required. Writes past the current end are
// permitted; any hole in between reads back as zeros. On ErrNoSpace no
// partial write occurs.
func (v *Volume) WriteAt(slot int, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("memefs: negative write offset %d", off)
	}
	if len(p) == 0 {
		return 0, nil
	}

	e := &v.dir[slot]

	newSize := int64(e.Size)
	if end := off + int64(len(p)); end > newSize {
		newSize = end
	}
	if newSize > MaxFileSize {
		return 0, ErrNoSpace
	}

	if err := v.growChain(e, blocksFor(newSize)); err != nil {
		return 0, err
	}

	blocks := v.fat.chainBlocks(e.StartBlock)

	written := 0
	for written < len(p) {
		pos := off + int64(written)
		data := v.userData(blocks[pos/BlockSize])
		written += copy(data[pos%BlockSize:], p[written:])
	}

	e.Size = uint32(newSize)
	e.Timestamp = bcd.Now()
	return len(p), nil
}

// Truncate resizes the file at slot to size bytes. Shrinking releases the
// chain tail and zeroes the residue of the last kept block; growing
// behaves like a write of zeros up to size.
func (v *Volume) Truncate(slot int, size int64) error {
	if size < 0 {
		return fmt.Errorf("memefs: negative truncate size %d", size)
	}
	if size > MaxFileSize {
		return ErrNoSpace
	}

	e := &v.dir[slot]

	switch {
	case size > int64(e.Size):
		if err := v.growChain(e, blocksFor(size)); err != nil {
			return err
		}

	case size < int64(e.Size):
		keep := blocksFor(size)
		if keep == 0 {
			v.fat.FreeChain(e.StartBlock)
			e.StartBlock = EndOfChain
		} else {
			blocks := v.fat.chainBlocks(e.StartBlock)
			last := blocks[keep-1]
			tail := v.fat.Entry(last)
			v.fat.set(last, EndOfChain)
			v.fat.FreeChain(tail)

			if rem := size % BlockSize; rem != 0 {
				clear(v.userData(last)[rem:])
			}
		}
	}

	e.Size = uint32(size)
	e.Timestamp = bcd.Now()
	return nil
}

// Touch refreshes the entry's timestamp to the current UTC time.
func (v *Volume) Touch(slot int) {
	v.dir[slot].Timestamp = bcd.Now()
}
