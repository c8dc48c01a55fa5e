package bcd_test

import (
	"testing"
	"time"

	"github.com/ostafen/memefs/internal/bcd"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	require.Equal(t, byte(0x00), bcd.Encode(0))
	require.Equal(t, byte(0x07), bcd.Encode(7))
	require.Equal(t, byte(0x42), bcd.Encode(42))
	require.Equal(t, byte(0x99), bcd.Encode(99))

	// Out-of-range values yield the sentinel.
	require.Equal(t, byte(0xFF), bcd.Encode(100))
	require.Equal(t, byte(0xFF), bcd.Encode(-1))
}

func TestDecode(t *testing.T) {
	for n := 0; n <= 99; n++ {
		require.Equal(t, n, bcd.Decode(bcd.Encode(n)))
	}
}

func TestFromTime(t *testing.T) {
	ts := bcd.FromTime(time.Date(2024, time.December, 31, 23, 59, 58, 0, time.UTC))
	require.Equal(t, bcd.Timestamp{0x20, 0x24, 0x12, 0x31, 0x23, 0x59, 0x58, 0x00}, ts)
}

func TestFromTimeUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	local := time.Date(2024, time.January, 1, 2, 0, 0, 0, loc)

	ts := bcd.FromTime(local)
	require.Equal(t, bcd.Timestamp{0x20, 0x23, 0x12, 0x31, 0x21, 0x00, 0x00, 0x00}, ts)
}

func TestTimeRoundTrip(t *testing.T) {
	when := time.Date(2025, time.June, 15, 8, 30, 45, 0, time.UTC)
	require.Equal(t, when, bcd.FromTime(when).Time())
}

func TestZeroTimestamp(t *testing.T) {
	var ts bcd.Timestamp
	require.True(t, ts.IsZero())
	require.True(t, ts.Time().IsZero())
	require.Equal(t, "-", ts.String())
}

func TestString(t *testing.T) {
	ts := bcd.FromTime(time.Date(2026, time.August, 2, 3, 4, 5, 0, time.UTC))
	require.Equal(t, "2026-08-02 03:04:05", ts.String())
}
