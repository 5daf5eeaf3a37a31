package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"speedmeter/counter"
	"speedmeter/units"

	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, time.Second, cfg.Interval)
	require.Equal(t, 10*time.Second, cfg.Window)
	require.Equal(t, units.MBps, cfg.Unit)
	require.Equal(t, counter.DefaultSourceName(), cfg.Source)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	mutate := func(f func(c *Config)) *Config {
		c := Default()
		f(c)
		return c
	}

	require.Error(t, mutate(func(c *Config) { c.Interval = 0 }).Validate())
	require.Error(t, mutate(func(c *Config) { c.Window = 500 * time.Millisecond }).Validate())
	require.ErrorIs(t, mutate(func(c *Config) { c.Unit = "bps" }).Validate(), units.ErrInvalidUnit)
	require.Error(t, mutate(func(c *Config) { c.Smoothing = -1 }).Validate())
	require.Error(t, mutate(func(c *Config) { c.SaveInterval = 0 }).Validate())
	require.Error(t, mutate(func(c *Config) { c.InterfaceRefresh = 0 }).Validate())
	require.ErrorIs(t, mutate(func(c *Config) { c.Source = "wmi" }).Validate(), counter.ErrUnknownSource)
	require.Error(t, mutate(func(c *Config) { c.DataDir = "" }).Validate())
}

func TestConfig_LoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	require.Equal(t, dir, cfg.DataDir)
	require.Equal(t, DefaultInterval, cfg.Interval)
	require.NoError(t, cfg.Validate())
}

func TestConfig_LoadYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
interval: 500ms
unit: Kbps
interface: wlan0
source: psutil
smoothing: 3s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 500*time.Millisecond, cfg.Interval)
	require.Equal(t, units.Kbps, cfg.Unit)
	require.Equal(t, "wlan0", cfg.Interface)
	require.Equal(t, counter.SourcePsutil, cfg.Source)
	require.Equal(t, 3*time.Second, cfg.Smoothing)
	// 没写的字段保持默认
	require.Equal(t, DefaultWindow, cfg.Window)
	require.Equal(t, DefaultSaveInterval, cfg.SaveInterval)
	require.NoError(t, cfg.Validate())
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("interval: [1, 2"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested")
	cfg.Unit = units.Mbps
	cfg.Interface = "eth0"
	cfg.Interval = 2 * time.Second
	require.NoError(t, cfg.Save())

	loaded, err := Load(cfg.Path())
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvInterval:    "250ms",
		EnvUnit:        "Mbps",
		EnvInterface:   "en0",
		EnvSource:      counter.SourcePsutil,
		EnvSmoothing:   "2s",
		EnvWindow:      "30s",
		EnvMetricsAddr: ":9100",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	require.Equal(t, 250*time.Millisecond, cfg.Interval)
	require.Equal(t, units.Mbps, cfg.Unit)
	require.Equal(t, "en0", cfg.Interface)
	require.Equal(t, counter.SourcePsutil, cfg.Source)
	require.Equal(t, 2*time.Second, cfg.Smoothing)
	require.Equal(t, 30*time.Second, cfg.Window)
	require.Equal(t, ":9100", cfg.MetricsAddr)

	bad := Default()
	err := bad.ApplyEnv(func(k string) string {
		if k == EnvUnit {
			return "furlongs"
		}
		return ""
	})
	require.ErrorIs(t, err, units.ErrInvalidUnit)

	err = Default().ApplyEnv(func(k string) string {
		if k == EnvInterval {
			return "soon"
		}
		return ""
	})
	require.Error(t, err)

	err = Default().ApplyEnv(func(k string) string {
		if k == EnvWindow {
			return "long"
		}
		return ""
	})
	require.Error(t, err)
}

func TestConfig_LoadDotEnvMissingFileIgnored(t *testing.T) {
	t.Parallel()

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
