package counter

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounter_Selector_AutoSelection(t *testing.T) {
	t.Parallel()

	ifaces := []Interface{
		{Name: "lo", Up: true, Loopback: true, BytesIn: 1, BytesOut: 1},
		{Name: "wlan0", Up: true, BytesIn: 100, BytesOut: 10},
		{Name: "eth0", Up: true, BytesIn: 200, BytesOut: 20},
		{Name: "eth1", Up: false, BytesIn: 300, BytesOut: 30},
		{Name: "docker0", Up: true, BytesIn: 400, BytesOut: 40},
		{Name: "vEthernet (WSL)", Up: true, BytesIn: 500, BytesOut: 50},
	}
	sel := &Selector{ExcludePrefixes: DefaultExcludePrefixes}

	selected := sel.Select(ifaces)
	require.Equal(t, []string{"eth0", "wlan0"}, selected)
}

func TestCounter_Selector_Preferred(t *testing.T) {
	t.Parallel()

	ifaces := []Interface{
		{Name: "eth0", Up: true},
		{Name: "wlan0", Up: true},
		{Name: "docker0", Up: true},
		{Name: "eth1", Up: false},
	}

	sel := &Selector{Preferred: "wlan0", ExcludePrefixes: DefaultExcludePrefixes}
	require.Equal(t, []string{"wlan0"}, sel.Select(ifaces))

	// 明确指定时即使在排除列表里也统计
	sel.Preferred = "docker0"
	require.Equal(t, []string{"docker0"}, sel.Select(ifaces))

	// 指定的网卡不存在或者 down，回退到自动选择
	sel.Preferred = "eth1"
	require.Equal(t, []string{"eth0", "wlan0"}, sel.Select(ifaces))
	sel.Preferred = "missing"
	require.Equal(t, []string{"eth0", "wlan0"}, sel.Select(ifaces))
}

func TestCounter_Selector_EmptyPrefixIgnored(t *testing.T) {
	t.Parallel()

	sel := &Selector{ExcludePrefixes: []string{""}}
	require.True(t, sel.Includes(Interface{Name: "eth0", Up: true}))
}

func TestCounter_New_UnknownSource(t *testing.T) {
	t.Parallel()

	_, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), "snmp")
	require.ErrorIs(t, err, ErrUnknownSource)
}

func TestCounter_New_Psutil(t *testing.T) {
	t.Parallel()

	s, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), SourcePsutil)
	require.NoError(t, err)
	require.Equal(t, SourcePsutil, s.Name())
	require.NoError(t, s.Close())
}
