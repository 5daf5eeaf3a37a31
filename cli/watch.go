package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"speedmeter/render"
)

type WatchCmd struct {
	app *app
}

func NewWatchCmd(a *app) *WatchCmd {
	return &WatchCmd{app: a}
}

func (c *WatchCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print one tooltip line per poll to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.app.cfg
			// stdout 留给速率行，日志走 stderr
			log := newLogger(os.Stderr, c.app.verbose)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := startMetricsServer(ctx, log, cfg.MetricsAddr, c.app.info); err != nil {
				return err
			}
			return runMonitor(ctx, log, cfg, render.NewTooltip(cmd.OutOrStdout()))
		},
	}
}
