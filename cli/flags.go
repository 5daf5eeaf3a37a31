package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"

	"speedmeter/config"
	"speedmeter/units"
)

const (
	flagVerbose     = "verbose"
	flagConfig      = "config"
	flagDataDir     = "data-dir"
	flagUnit        = "unit"
	flagInterface   = "interface"
	flagSource      = "source"
	flagInterval    = "interval"
	flagWindow      = "window"
	flagMetricsAddr = "metrics-addr"
)

func addPersistentFlags(fs *pflag.FlagSet) {
	fs.BoolP(flagVerbose, "v", false, "set debug logging level")
	fs.StringP(flagConfig, "c", "", "path to config.yaml (default: <data-dir>/config.yaml)")
	fs.String(flagDataDir, "", "directory for config, usage data and logs (default: "+config.DefaultDataDir()+")")
	fs.StringP(flagUnit, "u", "", fmt.Sprintf("display unit %v", units.All))
	fs.StringP(flagInterface, "i", "", "interface to monitor (default: auto-selected)")
	fs.String(flagSource, "", "counter source (netlink, psutil, ebpf)")
	fs.Duration(flagInterval, 0, "poll interval (default: "+config.DefaultInterval.String()+")")
	fs.Duration(flagWindow, 0, "rolling average window, at least one interval (default: "+config.DefaultWindow.String()+")")
	fs.String(flagMetricsAddr, "", "address to serve prometheus metrics on, empty to disable")
}

// resolveConfig 合并配置：命令行 > 环境变量 > config.yaml > 默认值
// 返回的 path 是配置文件的位置
func resolveConfig(fs *pflag.FlagSet, getenv func(string) string) (*config.Config, string, error) {
	dataDir := config.DefaultDataDir()
	if v := getenv(config.EnvDataDir); v != "" {
		dataDir = v
	}
	if fs.Changed(flagDataDir) {
		v, err := fs.GetString(flagDataDir)
		if err != nil {
			return nil, "", fmt.Errorf("failed to get data-dir flag: %w", err)
		}
		dataDir = v
	}

	path := filepath.Join(dataDir, config.FileName)
	if fs.Changed(flagConfig) {
		v, err := fs.GetString(flagConfig)
		if err != nil {
			return nil, "", fmt.Errorf("failed to get config flag: %w", err)
		}
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	cfg.DataDir = dataDir

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, "", err
	}
	if err := applyFlags(cfg, fs); err != nil {
		return nil, "", err
	}
	// 只调大了间隔时，窗口跟着放大到一个间隔
	if cfg.Window < cfg.Interval && !fs.Changed(flagWindow) && getenv(config.EnvWindow) == "" {
		cfg.Window = cfg.Interval
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

func applyFlags(cfg *config.Config, fs *pflag.FlagSet) error {
	if fs.Changed(flagUnit) {
		v, err := fs.GetString(flagUnit)
		if err != nil {
			return fmt.Errorf("failed to get unit flag: %w", err)
		}
		u, err := units.ParseUnit(v)
		if err != nil {
			return err
		}
		cfg.Unit = u
	}
	if fs.Changed(flagInterface) {
		v, err := fs.GetString(flagInterface)
		if err != nil {
			return fmt.Errorf("failed to get interface flag: %w", err)
		}
		cfg.Interface = v
	}
	if fs.Changed(flagSource) {
		v, err := fs.GetString(flagSource)
		if err != nil {
			return fmt.Errorf("failed to get source flag: %w", err)
		}
		cfg.Source = v
	}
	if fs.Changed(flagInterval) {
		v, err := fs.GetDuration(flagInterval)
		if err != nil {
			return fmt.Errorf("failed to get interval flag: %w", err)
		}
		cfg.Interval = v
	}
	if fs.Changed(flagWindow) {
		v, err := fs.GetDuration(flagWindow)
		if err != nil {
			return fmt.Errorf("failed to get window flag: %w", err)
		}
		cfg.Window = v
	}
	if fs.Changed(flagMetricsAddr) {
		v, err := fs.GetString(flagMetricsAddr)
		if err != nil {
			return fmt.Errorf("failed to get metrics-addr flag: %w", err)
		}
		cfg.MetricsAddr = v
	}
	return nil
}
