package memefs

import "encoding/binary"

// Table is the file allocation table pair. Every mutation goes through
// set(), which updates the main and backup copies in lockstep, so the two
// arrays are identical whenever an operation completes.
type Table struct {
	main   [NumBlocks]uint16
	backup [NumBlocks]uint16
}

// NewTable returns a table for a freshly formatted volume: metadata blocks
// pinned at the end-of-chain sentinel, user blocks free.
func NewTable() *Table {
	t := &Table{}
	for i := uint16(0); i < NumBlocks; i++ {
		if !userBlock(i) {
			t.set(i, EndOfChain)
		}
	}
	return t
}

func (t *Table) set(i, v uint16) {
	t.main[i] = v
	t.backup[i] = v
}

// Entry returns the main-FAT value of slot i.
func (t *Table) Entry(i uint16) uint16 {
	return t.main[i]
}

// Mirrored reports whether the main and backup copies agree.
func (t *Table) Mirrored() bool {
	return t.main == t.backup
}

// FreeBlocks returns the number of unallocated user data blocks.
func (t *Table) FreeBlocks() int {
	n := 0
	for i := uint16(FirstUserBlock); i < FirstUserBlock+NumUserBlocks; i++ {
		if t.main[i] == FreeBlock {
			n++
		}
	}
	return n
}

// freeSlots returns up to n free user blocks in ascending order.
func (t *Table) freeSlots(n int) []uint16 {
	slots := make([]uint16, 0, n)
	for i := uint16(FirstUserBlock); i < FirstUserBlock+NumUserBlocks && len(slots) < n; i++ {
		if t.main[i] == FreeBlock {
			slots = append(slots, i)
		}
	}
	return slots
}

// AllocChain allocates a chain of n blocks and returns its first block.
// Slots are picked in ascending order and linked through both FAT copies,
// with the last slot terminated by EndOfChain. When fewer than n blocks
// are free, no slot is touched and ErrNoSpace is returned.
func (t *Table) AllocChain(n int) (uint16, error) {
	if n <= 0 {
		return EndOfChain, nil
	}

	slots := t.freeSlots(n)
	if len(slots) < n {
		return EndOfChain, ErrNoSpace
	}

	for i := 0; i < n-1; i++ {
		t.set(slots[i], slots[i+1])
	}
	t.set(slots[n-1], EndOfChain)
	return slots[0], nil
}

// ExtendChain appends extra blocks to the chain terminating at last.
// When fewer than extra blocks are free, the chain is left untouched and
// ErrNoSpace is returned.
func (t *Table) ExtendChain(last uint16, extra int) error {
	if extra <= 0 {
		return nil
	}

	first, err := t.AllocChain(extra)
	if err != nil {
		return err
	}
	t.set(last, first)
	return nil
}

// FreeChain walks the chain starting at first, clearing every visited slot
// in both FAT copies. Passing EndOfChain is a no-op.
func (t *Table) FreeChain(first uint16) {
	for cur := first; cur != EndOfChain; {
		next := t.main[cur]
		t.set(cur, FreeBlock)
		cur = next
	}
}

// Chain yields the block numbers of the chain starting at first, in chain
// order, until the end-of-chain sentinel.
func (t *Table) Chain(first uint16) func(yield func(uint16) bool) {
	return func(yield func(uint16) bool) {
		for cur := first; cur != EndOfChain; cur = t.main[cur] {
			if !yield(cur) {
				return
			}
		}
	}
}

// chainBlocks collects the chain into a slice.
func (t *Table) chainBlocks(first uint16) []uint16 {
	var blocks []uint16
	for b := range t.Chain(first) {
		blocks = append(blocks, b)
	}
	return blocks
}

// marshalFAT serializes one FAT copy into a 512-byte block, big-endian.
func marshalFAT(fat *[NumBlocks]uint16, block []byte) {
	for i, v := range fat {
		binary.BigEndian.PutUint16(block[i*2:], v)
	}
}

// unmarshalFAT deserializes one FAT copy from a 512-byte block.
func unmarshalFAT(fat *[NumBlocks]uint16, block []byte) {
	for i := range fat {
		fat[i] = binary.BigEndian.Uint16(block[i*2:])
	}
}
