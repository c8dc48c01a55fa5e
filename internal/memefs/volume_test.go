package memefs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// pastFresh moves a formatted volume past the fresh-format version so that
// its directory and user area persist across a marshal/load cycle.
func pastFresh(v *Volume) {
	v.main.FSVersion = 2
	v.backup.FSVersion = 2
	v.main.CleanlyUnmounted = FlagDirty
	v.backup.CleanlyUnmounted = FlagDirty
}

func TestMarshalLoadRoundTrip(t *testing.T) {
	v := Format("ROUNDTRIP")
	pastFresh(v)

	slot := mkfile(t, v, "HELLO.TXT")
	_, err := v.WriteAt(slot, bytes.Repeat([]byte{'A'}, 1000), 0)
	require.NoError(t, err)

	mkfile(t, v, "OTHER.TXT")
	mkfile(t, v, "GONE.TXT")
	require.NoError(t, v.Unlink("GONE.TXT"))

	data := v.Marshal()
	require.Len(t, data, ImageSize)

	v2, err := Load(data)
	require.NoError(t, err)

	require.Equal(t, v.main, v2.main)
	require.Equal(t, v.backup, v2.backup)
	require.Equal(t, v.fat.main, v2.fat.main)
	require.Equal(t, v.fat.backup, v2.fat.backup)
	require.Equal(t, v.dir, v2.dir)
	require.Equal(t, v.user, v2.user)

	// Serialize-then-deserialize is a fixed point.
	require.Equal(t, data, v2.Marshal())
}

func TestMarshalReservedBlocksAreZero(t *testing.T) {
	v := Format("")
	pastFresh(v)

	slot := mkfile(t, v, "HELLO.TXT")
	_, err := v.WriteAt(slot, []byte("hello\n"), 0)
	require.NoError(t, err)

	data := v.Marshal()
	reserved := data[1*BlockSize : FirstUserBlock*BlockSize]
	require.Equal(t, bytes.Repeat([]byte{0}, len(reserved)), reserved)
}

func TestOperationsKeepInvariants(t *testing.T) {
	v := Format("")

	slots := make([]int, 0)
	for _, name := range []string{"A.TXT", "B.TXT", "C.TXT"} {
		slot := mkfile(t, v, name)
		_, err := v.WriteAt(slot, bytes.Repeat([]byte{'x'}, 700), 0)
		require.NoError(t, err)
		slots = append(slots, slot)
	}

	require.NoError(t, v.Truncate(slots[0], 100))
	require.NoError(t, v.Unlink("B.TXT"))
	_, err := v.WriteAt(slots[2], bytes.Repeat([]byte{'y'}, 300), 1024)
	require.NoError(t, err)

	require.True(t, v.fat.Mirrored())
	reservedIntact(t, v.fat)
	require.Empty(t, v.Check())
}
