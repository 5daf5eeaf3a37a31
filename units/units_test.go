package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnits_Convert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rate float64
		unit Unit
		want float64
	}{
		{"one binary megabyte", 1_048_576, MBps, 1.0},
		{"one binary kilobyte", 1024, KBps, 1.0},
		{"one decimal megabit", 125_000, Mbps, 1.0},
		{"one decimal kilobit", 125, Kbps, 1.0},
		{"zero", 0, Mbps, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Convert(tt.rate, tt.unit)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestUnits_Convert_InvalidUnit(t *testing.T) {
	t.Parallel()

	_, err := Convert(100, Unit("GBps"))
	require.ErrorIs(t, err, ErrInvalidUnit)

	_, err = Format(100, Unit(""))
	require.ErrorIs(t, err, ErrInvalidUnit)
}

func TestUnits_KbpsAndMbpsAreConsistent(t *testing.T) {
	t.Parallel()

	for _, rate := range []float64{0, 1, 333.3, 125_000, 9_876_543.21, 1e12} {
		mbps, err := Convert(rate, Mbps)
		require.NoError(t, err)
		kbps, err := Convert(rate, Kbps)
		require.NoError(t, err)
		require.InDelta(t, kbps, mbps*1000, 1e-6*max(1, kbps))
	}
}

func TestUnits_ParseUnit(t *testing.T) {
	t.Parallel()

	u, err := ParseUnit("")
	require.NoError(t, err)
	require.Equal(t, MBps, u)

	u, err = ParseUnit(" Mbps ")
	require.NoError(t, err)
	require.Equal(t, Mbps, u)

	u, err = ParseUnit("MB/s")
	require.NoError(t, err)
	require.Equal(t, MBps, u)

	u, err = ParseUnit("KB/s")
	require.NoError(t, err)
	require.Equal(t, KBps, u)

	_, err = ParseUnit("mbps")
	require.ErrorIs(t, err, ErrInvalidUnit)
}

func TestUnits_Format(t *testing.T) {
	t.Parallel()

	s, err := Format(1_048_576*1.5, MBps)
	require.NoError(t, err)
	require.Equal(t, "1.50 MB/s", s)

	s, err = Format(2048, KBps)
	require.NoError(t, err)
	require.Equal(t, "2.0 KB/s", s)

	s, err = Format(250_000, Mbps)
	require.NoError(t, err)
	require.Equal(t, "2.00 Mbps", s)

	s, err = Format(105_000, Kbps)
	require.NoError(t, err)
	require.Equal(t, "840 Kbps", s)
}

func TestUnits_FormatBytes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0 B", FormatBytes(0))
	require.Equal(t, "1023 B", FormatBytes(1023))
	require.Equal(t, "1.0 KB", FormatBytes(1024))
	require.Equal(t, "1.5 MB", FormatBytes(1024*1024*3/2))
	require.Equal(t, "2.0 GB", FormatBytes(2<<30))
}
