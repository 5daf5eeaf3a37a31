// Package cli speedmeter 的命令行入口
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"speedmeter/config"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

// BuildInfo 由 main 通过 ldflags 注入
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, date: %s)", b.Version, b.Commit, b.Date)
}

// app 各个子命令共享的状态，PersistentPreRunE 里填好 cfg
type app struct {
	info    BuildInfo
	getenv  func(string) string
	dotenv  []string
	now     func() time.Time
	cfg     *config.Config
	cfgPath string
	verbose bool
}

func Run(info BuildInfo) ExitCode {
	a := &app{
		info:   info,
		getenv: os.Getenv,
		dotenv: []string{".env"},
		now:    time.Now,
	}
	if err := newRootCmd(a).Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func newRootCmd(a *app) *cobra.Command {
	dashboard := NewDashboardCmd(a).Command()

	rootCmd := &cobra.Command{
		Use:          config.AppName,
		Short:        "Network throughput meter with daily usage accounting.",
		Version:      a.info.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		// 不带子命令时直接打开仪表盘
		RunE: dashboard.RunE,
	}

	addPersistentFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		dashboard,
		NewWatchCmd(a).Command(),
		NewUsageCmd(a).Command(),
		NewInterfacesCmd(a).Command(),
		NewConfigCmd(a).Command(),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	verbose, err := cmd.Flags().GetBool(flagVerbose)
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	a.verbose = verbose

	if err := config.LoadDotEnv(a.dotenv...); err != nil {
		return err
	}
	cfg, path, err := resolveConfig(cmd.Flags(), a.getenv)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.cfgPath = path
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// newFileLogger 仪表盘模式下日志写文件，避免弄花终端
func newFileLogger(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(f, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    true,
	}))
	return log, f, nil
}
