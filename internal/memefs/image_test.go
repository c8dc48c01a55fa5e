package memefs_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/memefs/internal/memefs"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, vol *memefs.Volume) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "myfilesystem.img")
	require.NoError(t, os.WriteFile(path, vol.Marshal(), 0644))
	return path
}

func TestFreshVolumeIsEmpty(t *testing.T) {
	v, err := memefs.Load(memefs.Format("FRESH").Marshal())
	require.NoError(t, err)

	require.Empty(t, v.Names())
	require.Equal(t, uint32(1), v.Super().FSVersion)
	require.Equal(t, memefs.NumUserBlocks, v.FreeBlocks())
	require.Equal(t, memefs.NumDirEntries, v.FreeEntries())
}

func TestSuperblockLayout(t *testing.T) {
	data := memefs.Format("TESTVOL").Marshal()
	require.Len(t, data, memefs.ImageSize)

	sb := data[memefs.MainSuperblockNum*memefs.BlockSize:]

	require.Equal(t, []byte(memefs.SignatureString), sb[:16])
	require.Equal(t, byte(0xFF), sb[0x10], "fresh image must be clean")
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(sb[0x14:]))
	require.Equal(t, uint16(254), binary.BigEndian.Uint16(sb[0x20:]))
	require.Equal(t, uint16(1), binary.BigEndian.Uint16(sb[0x22:]))
	require.Equal(t, uint16(239), binary.BigEndian.Uint16(sb[0x24:]))
	require.Equal(t, uint16(1), binary.BigEndian.Uint16(sb[0x26:]))
	require.Equal(t, uint16(240), binary.BigEndian.Uint16(sb[0x28:]))
	require.Equal(t, uint16(14), binary.BigEndian.Uint16(sb[0x2A:]))
	require.Equal(t, uint16(220), binary.BigEndian.Uint16(sb[0x2C:]))
	require.Equal(t, uint16(19), binary.BigEndian.Uint16(sb[0x2E:]))
	require.Equal(t, "TESTVOL", string(bytes.TrimRight(sb[0x30:0x40], "\x00")))
	require.Equal(t, bytes.Repeat([]byte{0}, memefs.BlockSize-0x40), sb[0x40:memefs.BlockSize])

	// The backup superblock of a fresh image is byte-identical.
	backup := data[:memefs.BlockSize]
	require.Equal(t, sb[:memefs.BlockSize], backup)
}

func TestFATLayout(t *testing.T) {
	data := memefs.Format("").Marshal()

	main := data[memefs.MainFATBlockNum*memefs.BlockSize:]
	backup := data[memefs.BackupFATBlockNum*memefs.BlockSize:]
	require.Equal(t, main[:memefs.BlockSize], backup[:memefs.BlockSize])

	for i := 0; i < memefs.NumBlocks; i++ {
		got := binary.BigEndian.Uint16(main[i*2:])
		if i >= memefs.FirstUserBlock && i < memefs.FirstUserBlock+memefs.NumUserBlocks {
			require.Equal(t, memefs.FreeBlock, got, "user slot %d", i)
		} else {
			require.Equal(t, memefs.EndOfChain, got, "reserved slot %d", i)
		}
	}
}

func TestLoadWrongSize(t *testing.T) {
	_, err := memefs.Load(make([]byte, 100))
	require.ErrorIs(t, err, memefs.ErrBadImage)
}

func TestLoadBadSignature(t *testing.T) {
	data := memefs.Format("").Marshal()

	// Corrupting only the main superblock lets the backup win.
	copy(data[memefs.MainSuperblockNum*memefs.BlockSize:], make([]byte, 16))
	v, err := memefs.Load(data)
	require.NoError(t, err)
	super := v.Super()
	require.Equal(t, memefs.SignatureString, string(super.Signature[:]))

	// Corrupting both makes the image unloadable.
	copy(data[:16], make([]byte, 16))
	_, err = memefs.Load(data)
	require.ErrorIs(t, err, memefs.ErrBadImage)
}

func TestLoadForcesDirtyFlag(t *testing.T) {
	v, err := memefs.Load(memefs.Format("").Marshal())
	require.NoError(t, err)
	require.Equal(t, memefs.FlagDirty, v.Super().CleanlyUnmounted)
}

func TestMountMissingImage(t *testing.T) {
	_, err := memefs.Mount(filepath.Join(t.TempDir(), "nope.img"))
	require.Error(t, err)
}

func TestMountUnmountPersistence(t *testing.T) {
	path := writeImage(t, memefs.Format("PERSIST"))

	v, err := memefs.Mount(path)
	require.NoError(t, err)
	require.Equal(t, uint32(1), v.Super().FSVersion)

	slot, err := v.Create("HELLO.TXT", 0o644, 1000, 1000)
	require.NoError(t, err)
	_, err = v.WriteAt(slot, []byte("hello\n"), 0)
	require.NoError(t, err)

	require.NoError(t, v.Unmount())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, memefs.ImageSize)

	mainSB := raw[memefs.MainSuperblockNum*memefs.BlockSize:]
	require.Equal(t, byte(0xFF), mainSB[0x10], "clean-unmount flag")
	require.Equal(t, uint32(2), binary.BigEndian.Uint32(mainSB[0x14:]))

	// The backup keeps the pre-increment version.
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(raw[0x14:]))
	require.Equal(t, byte(0xFF), raw[0x10])

	v2, err := memefs.Mount(path)
	require.NoError(t, err)
	defer v2.Close()

	require.Equal(t, uint32(2), v2.Super().FSVersion)
	require.Equal(t, []string{"HELLO.TXT"}, v2.Names())

	slot, ok := v2.Lookup("HELLO.TXT")
	require.True(t, ok)

	e := v2.Entry(slot)
	require.Equal(t, uint32(6), e.Size)
	require.Equal(t, uint16(1000), e.OwnerUID)

	buf := make([]byte, 6)
	n, err := v2.ReadAt(slot, buf, 0)
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, "hello\n", string(buf))
}

func TestUnmountWithoutBackingImage(t *testing.T) {
	v := memefs.Format("")
	require.Error(t, v.Unmount())
}

func TestFreshMountIgnoresDirectoryRegion(t *testing.T) {
	// A version-1 image signals a fresh format: whatever the directory
	// region holds is discarded and the volume starts empty.
	v := memefs.Format("")
	slot, err := v.Create("GHOST.TXT", 0o644, 0, 0)
	require.NoError(t, err)
	_ = slot

	v2, err := memefs.Load(v.Marshal())
	require.NoError(t, err)
	require.Empty(t, v2.Names())
}
