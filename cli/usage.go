package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"speedmeter/units"
	"speedmeter/usage"
)

type UsageCmd struct {
	app *app
}

func NewUsageCmd(a *app) *UsageCmd {
	return &UsageCmd{app: a}
}

func (c *UsageCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show today and this month's traffic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := cmd.Flags().GetBool("days")
			if err != nil {
				return fmt.Errorf("failed to get days flag: %w", err)
			}
			store, err := c.repository().Load()
			if err != nil {
				return err
			}
			printUsage(cmd.OutOrStdout(), store, c.app.now(), days)
			return nil
		},
	}
	cmd.Flags().Bool("days", false, "list every recorded day of the current month")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear-today",
		Short: "Reset today's counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := c.repository()
			store, err := repo.Load()
			if err != nil {
				return err
			}
			now := c.app.now()
			store.ClearToday(now)
			if err := repo.Save(store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared usage for %s\n", usage.DayKey(now))
			return nil
		},
	})
	return cmd
}

func (c *UsageCmd) repository() *usage.Repository {
	return usage.NewRepository(newLogger(os.Stderr, c.app.verbose), c.app.cfg.UsagePath())
}

func printUsage(w io.Writer, store *usage.Store, now time.Time, days bool) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(true)
	table.SetHeader([]string{"统计", "下载总量", "上传总量"})

	if days {
		prefix := usage.MonthKey(now) + "-"
		keys := make([]string, 0, len(store.ByDay))
		for k := range store.ByDay {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			d := store.ByDay[k]
			table.Append([]string{k, units.FormatBytes(d.Down), units.FormatBytes(d.Up)})
		}
	}

	today := store.Today(now)
	month := store.Month(now)
	table.Append([]string{"今日", units.FormatBytes(today.Down), units.FormatBytes(today.Up)})
	table.Append([]string{"本月", units.FormatBytes(month.Down), units.FormatBytes(month.Up)})
	table.Render()
}
