package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"speedmeter/render"
)

type DashboardCmd struct {
	app *app
}

func NewDashboardCmd(a *app) *DashboardCmd {
	return &DashboardCmd{app: a}
}

func (c *DashboardCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the terminal dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run()
		},
	}
}

func (c *DashboardCmd) run() error {
	cfg := c.app.cfg
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	log, closer, err := newFileLogger(cfg.LogPath(), c.app.verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := startMetricsServer(ctx, log, cfg.MetricsAddr, c.app.info); err != nil {
		return err
	}

	dash := render.NewDashboard(log)

	// monitor 在后台协程轮询，termui 事件循环留在当前协程
	monErr := make(chan error, 1)
	go func() {
		monErr <- runMonitor(ctx, log, cfg, dash)
		cancel()
	}()

	uiErr := dash.Run(ctx)
	cancel()
	if err := <-monErr; err != nil {
		log.Error("Monitor stopped with error", "error", err)
		return err
	}
	return uiErr
}
