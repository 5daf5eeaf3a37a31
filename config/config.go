// Package config 读取和保存 speedmeter 的配置
//
// 优先级：命令行参数 > 环境变量 (SPEEDMETER_*，支持 .env) > config.yaml > 默认值
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"speedmeter/counter"
	"speedmeter/units"
	"speedmeter/usage"
)

const (
	AppName  = "speedmeter"
	FileName = "config.yaml"
	LogName  = "speedmeter.log"

	DefaultInterval         = 1 * time.Second
	DefaultWindow           = 10 * time.Second
	DefaultSaveInterval     = 10 * time.Second
	DefaultInterfaceRefresh = 10 * time.Second
)

// 环境变量名
const (
	EnvInterval    = "SPEEDMETER_INTERVAL"
	EnvWindow      = "SPEEDMETER_WINDOW"
	EnvUnit        = "SPEEDMETER_UNIT"
	EnvInterface   = "SPEEDMETER_INTERFACE"
	EnvSource      = "SPEEDMETER_SOURCE"
	EnvSmoothing   = "SPEEDMETER_SMOOTHING"
	EnvMetricsAddr = "SPEEDMETER_METRICS_ADDR"
	EnvDataDir     = "SPEEDMETER_DATA_DIR"
)

type Config struct {
	Interval         time.Duration `yaml:"interval"`
	Window           time.Duration `yaml:"window"`
	Unit             units.Unit    `yaml:"unit"`
	Interface        string        `yaml:"interface"`
	Source           string        `yaml:"source"`
	Smoothing        time.Duration `yaml:"smoothing"`
	SaveInterval     time.Duration `yaml:"save_interval"`
	InterfaceRefresh time.Duration `yaml:"interface_refresh"`
	ExcludePrefixes  []string      `yaml:"exclude_prefixes"`
	MetricsAddr      string        `yaml:"metrics_addr"`

	// DataDir 不写进配置文件，由 --data-dir / 环境变量决定
	DataDir string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Interval:         DefaultInterval,
		Window:           DefaultWindow,
		Unit:             units.Default,
		Source:           counter.DefaultSourceName(),
		SaveInterval:     DefaultSaveInterval,
		InterfaceRefresh: DefaultInterfaceRefresh,
		ExcludePrefixes:  append([]string(nil), counter.DefaultExcludePrefixes...),
		DataDir:          DefaultDataDir(),
	}
}

// DefaultDataDir Windows 上是 %APPDATA%\speedmeter，Linux 上是 ~/.config/speedmeter
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err != nil {
			dir = "."
		}
	}
	return filepath.Join(dir, AppName)
}

func (c *Config) Path() string      { return filepath.Join(c.DataDir, FileName) }
func (c *Config) UsagePath() string { return filepath.Join(c.DataDir, usage.FileName) }
func (c *Config) LogPath() string   { return filepath.Join(c.DataDir, LogName) }

func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if c.Window < c.Interval {
		return errors.New("window must be at least one interval")
	}
	if !c.Unit.Valid() {
		return fmt.Errorf("%w: %q", units.ErrInvalidUnit, string(c.Unit))
	}
	if c.Smoothing < 0 {
		return errors.New("smoothing must not be negative")
	}
	if c.SaveInterval <= 0 {
		return errors.New("save interval must be greater than 0")
	}
	if c.InterfaceRefresh <= 0 {
		return errors.New("interface refresh must be greater than 0")
	}
	switch c.Source {
	case counter.SourceNetlink, counter.SourcePsutil, counter.SourceEBPF:
	default:
		return fmt.Errorf("%w: %q", counter.ErrUnknownSource, c.Source)
	}
	if c.DataDir == "" {
		return errors.New("data dir is required")
	}
	return nil
}

// Load 读取 path 指向的 YAML，文件不存在时返回默认值
// 文件里没写的字段保持默认
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.DataDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Unit == "" {
		cfg.Unit = units.Default
	}
	return cfg, nil
}

func (c *Config) Save() error {
	return c.SaveTo(c.Path())
}

// SaveTo 写到指定路径，--config 指向别处时使用
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadDotEnv 加载 .env (如果存在)，已有的环境变量不会被覆盖
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv 用环境变量覆盖配置，getenv 一般传 os.Getenv
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvInterval, err)
		}
		c.Interval = d
	}
	if v := getenv(EnvWindow); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWindow, err)
		}
		c.Window = d
	}
	if v := getenv(EnvSmoothing); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSmoothing, err)
		}
		c.Smoothing = d
	}
	if v := getenv(EnvUnit); v != "" {
		u, err := units.ParseUnit(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvUnit, err)
		}
		c.Unit = u
	}
	if v := getenv(EnvInterface); v != "" {
		c.Interface = v
	}
	if v := getenv(EnvSource); v != "" {
		c.Source = v
	}
	if v := getenv(EnvMetricsAddr); v != "" {
		c.MetricsAddr = v
	}
	return nil
}
