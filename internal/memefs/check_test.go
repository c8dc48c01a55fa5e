package memefs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireProblem(t *testing.T, problems []string, substr string) {
	t.Helper()
	for _, p := range problems {
		if strings.Contains(p, substr) {
			return
		}
	}
	t.Fatalf("no problem mentioning %q in %v", substr, problems)
}

func TestCheckCleanVolume(t *testing.T) {
	v := Format("CLEAN")
	require.Empty(t, v.Check())
}

func TestCheckMirrorDivergence(t *testing.T) {
	v := Format("")
	v.fat.main[30] = 5

	requireProblem(t, v.Check(), "disagree")
}

func TestCheckReservedSlotCorruption(t *testing.T) {
	v := Format("")
	v.fat.set(5, FreeBlock)

	requireProblem(t, v.Check(), "reserved slot 5")
}

func TestCheckSharedBlocks(t *testing.T) {
	v := Format("")
	v.fat.set(19, EndOfChain)

	for i, name := range []string{"A.TXT", "B.TXT"} {
		packed, err := EncodeName(name)
		require.NoError(t, err)
		v.dir[i] = DirEntry{
			Type:       ModeRegular | 0o644,
			StartBlock: 19,
			Filename:   packed,
			Size:       512,
		}
	}

	requireProblem(t, v.Check(), "shared")
}

func TestCheckChainCycle(t *testing.T) {
	v := Format("")
	v.fat.set(19, 20)
	v.fat.set(20, 19)

	packed, err := EncodeName("LOOP.BIN")
	require.NoError(t, err)
	v.dir[0] = DirEntry{
		Type:       ModeRegular | 0o644,
		StartBlock: 19,
		Filename:   packed,
		Size:       1024,
	}

	requireProblem(t, v.Check(), "cycles")
}

func TestCheckSizeChainMismatch(t *testing.T) {
	v := Format("")

	packed, err := EncodeName("EMPTY.BIN")
	require.NoError(t, err)
	v.dir[0] = DirEntry{
		Type:       ModeRegular | 0o644,
		StartBlock: EndOfChain,
		Filename:   packed,
		Size:       100,
	}

	requireProblem(t, v.Check(), "chain has 0")
}

func TestCheckChainEscapesUserArea(t *testing.T) {
	v := Format("")

	packed, err := EncodeName("WILD.BIN")
	require.NoError(t, err)
	v.dir[0] = DirEntry{
		Type:       ModeRegular | 0o644,
		StartBlock: MainFATBlockNum,
		Filename:   packed,
		Size:       512,
	}

	requireProblem(t, v.Check(), "escapes")
}
