package memefs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateLookup(t *testing.T) {
	v := Format("")

	slot, err := v.Create("HELLO.TXT", 0o644, 1000, 1000)
	require.NoError(t, err)

	e := v.Entry(slot)
	require.Equal(t, ModeRegular|0o644, e.Type)
	require.Equal(t, EndOfChain, e.StartBlock)
	require.Equal(t, uint32(0), e.Size)
	require.Equal(t, uint16(1000), e.OwnerUID)
	require.Equal(t, uint16(1000), e.GroupGID)
	require.Equal(t, "HELLO.TXT", e.Name())
	require.False(t, e.Timestamp.IsZero())

	got, ok := v.Lookup("HELLO.TXT")
	require.True(t, ok)
	require.Equal(t, slot, got)
}

func TestCreatePicksHighestFreeSlot(t *testing.T) {
	v := Format("")

	slot, err := v.Create("FIRST.TXT", 0o644, 0, 0)
	require.NoError(t, err)
	require.Equal(t, NumDirEntries-1, slot)

	slot, err = v.Create("SECOND.TXT", 0o644, 0, 0)
	require.NoError(t, err)
	require.Equal(t, NumDirEntries-2, slot)
}

func TestCreateDuplicate(t *testing.T) {
	v := Format("")

	_, err := v.Create("HELLO.TXT", 0o644, 0, 0)
	require.NoError(t, err)

	_, err = v.Create("HELLO.TXT", 0o644, 0, 0)
	require.ErrorIs(t, err, ErrExist)
}

func TestCreateBadName(t *testing.T) {
	v := Format("")

	free := v.FreeEntries()
	_, err := v.Create("foo@bar.txt", 0o644, 0, 0)
	require.ErrorIs(t, err, ErrBadName)

	// The directory must be left untouched.
	require.Equal(t, free, v.FreeEntries())
}

func TestCreateNameTooLong(t *testing.T) {
	v := Format("")

	_, err := v.Create("TOOLONGNAME.TXT", 0o644, 0, 0)
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestUnlink(t *testing.T) {
	v := Format("")

	_, err := v.Create("HELLO.TXT", 0o644, 0, 0)
	require.NoError(t, err)

	require.NoError(t, v.Unlink("HELLO.TXT"))

	_, ok := v.Lookup("HELLO.TXT")
	require.False(t, ok)

	// Freed slots carry the single-space tombstone.
	e := v.Entry(NumDirEntries - 1)
	require.True(t, e.Free())
	require.Equal(t, byte(' '), e.Filename[0])
}

func TestUnlinkNotFound(t *testing.T) {
	v := Format("")
	require.ErrorIs(t, v.Unlink("MISSING.TXT"), ErrNotFound)
}

func TestUnlinkFreesChain(t *testing.T) {
	v := Format("")

	slot, err := v.Create("DATA.BIN", 0o644, 0, 0)
	require.NoError(t, err)

	buf := make([]byte, 1000)
	for i := range buf {
		buf[i] = 'A'
	}
	_, err = v.WriteAt(slot, buf, 0)
	require.NoError(t, err)

	start := v.Entry(slot).StartBlock
	blocks := v.fat.chainBlocks(start)
	require.Len(t, blocks, 2)

	require.NoError(t, v.Unlink("DATA.BIN"))
	for _, b := range blocks {
		require.Equal(t, FreeBlock, v.fat.main[b])
		require.Equal(t, FreeBlock, v.fat.backup[b])
	}
	require.NotContains(t, v.Names(), "DATA.BIN")
}

func TestNames(t *testing.T) {
	v := Format("")

	require.Empty(t, v.Names())

	for _, name := range []string{"A.TXT", "B.TXT", "C.TXT"} {
		_, err := v.Create(name, 0o644, 0, 0)
		require.NoError(t, err)
	}

	// Slot order: reverse creation order.
	require.Equal(t, []string{"C.TXT", "B.TXT", "A.TXT"}, v.Names())
}

func TestDirectoryCapacity(t *testing.T) {
	v := Format("")

	for i := 0; i < NumDirEntries; i++ {
		_, err := v.Create(fmt.Sprintf("F%03d.TXT", i), 0o644, 0, 0)
		require.NoError(t, err)
	}

	_, err := v.Create("FULL.TXT", 0o644, 0, 0)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, 0, v.FreeEntries())
}
