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

	"github.com/bits-and-blooms/bitset"
)

// Check runs a structural audit of the volume and returns one message per
// problem found. A clean volume yields an empty slice.
//
// Audited properties: superblock layout fields, main/backup FAT agreement,
// reserved FAT slot values, chain termination and ownership (every chain
// must end at the sentinel, stay inside the user area and share no block
// with another chain), size/chain-length consistency, and filename
// validity.
func (v *Volume) Check() []string {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	v.checkSuper(report)
	v.checkFAT(report)
	v.checkDirectory(report)
	return problems
}

func (v *Volume) checkSuper(report func(string, ...any)) {
	for _, c := range []struct {
		name string
		sb   *Superblock
	}{{"main", &v.main}, {"backup", &v.backup}} {
		if c.sb.MainFAT != MainFATBlockNum || c.sb.MainFATSize != 1 {
			report("%s superblock: main FAT region %d/%d, want %d/1",
				c.name, c.sb.MainFAT, c.sb.MainFATSize, MainFATBlockNum)
		}
		if c.sb.BackupFAT != BackupFATBlockNum || c.sb.BackupFATSize != 1 {
			report("%s superblock: backup FAT region %d/%d, want %d/1",
				c.name, c.sb.BackupFAT, c.sb.BackupFATSize, BackupFATBlockNum)
		}
		if c.sb.DirectoryStart != DirectoryStartBlock || c.sb.DirectorySize != DirectoryBlocks {
			report("%s superblock: directory region %d/%d, want %d/%d",
				c.name, c.sb.DirectoryStart, c.sb.DirectorySize,
				DirectoryStartBlock, DirectoryBlocks)
		}
		if c.sb.NumUserBlocks != NumUserBlocks || c.sb.FirstUserBlock != FirstUserBlock {
			report("%s superblock: user area %d blocks from %d, want %d from %d",
				c.name, c.sb.NumUserBlocks, c.sb.FirstUserBlock,
				NumUserBlocks, FirstUserBlock)
		}
	}
}

func (v *Volume) checkFAT(report func(string, ...any)) {
	if !v.fat.Mirrored() {
		report("FAT: main and backup copies disagree")
	}

	for i := uint16(0); i < NumBlocks; i++ {
		if !userBlock(i) && v.fat.main[i] != EndOfChain {
			report("FAT: reserved slot %d holds 0x%04X, want 0x%04X",
				i, v.fat.main[i], EndOfChain)
		}
	}
}

func (v *Volume) checkDirectory(report func(string, ...any)) {
	owned := bitset.New(NumBlocks)

	for i := range v.dir {
		e := &v.dir[i]
		if e.Free() {
			continue
		}

		name := e.Name()
		if err := checkNameBytes(e.Filename); err != nil {
			report("entry %d: invalid filename %q", i, e.Filename)
		}

		blocks, ok := v.walkChain(e.StartBlock, owned, report, i, name)
		if !ok {
			continue
		}
		if want := blocksFor(int64(e.Size)); len(blocks) != want {
			report("entry %d (%s): size %d needs %d blocks, chain has %d",
				i, name, e.Size, want, len(blocks))
		}
	}
}

// walkChain follows a chain, marking each block in owned. It reports
// blocks outside the user area, blocks claimed by two chains, and cycles.
func (v *Volume) walkChain(first uint16, owned *bitset.BitSet, report func(string, ...any), slot int, name string) ([]uint16, bool) {
	var blocks []uint16

	seen := bitset.New(NumBlocks)
	for cur := first; cur != EndOfChain; cur = v.fat.main[cur] {
		if !userBlock(cur) {
			report("entry %d (%s): chain escapes the user area at block %d", slot, name, cur)
			return blocks, false
		}
		if seen.Test(uint(cur)) {
			report("entry %d (%s): chain cycles at block %d", slot, name, cur)
			return blocks, false
		}
		if owned.Test(uint(cur)) {
			report("entry %d (%s): block %d is shared with another chain", slot, name, cur)
			return blocks, false
		}

		seen.Set(uint(cur))
		owned.Set(uint(cur))
		blocks = append(blocks, cur)
	}
	return blocks, true
}
