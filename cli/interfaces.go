package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"speedmeter/counter"
	"speedmeter/units"
)

type InterfacesCmd struct {
	app *app
}

func NewInterfacesCmd(a *app) *InterfacesCmd {
	return &InterfacesCmd{app: a}
}

func (c *InterfacesCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List interfaces, their counters and whether they are counted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(os.Stderr, c.app.verbose)

			source, err := counter.New(log, c.app.cfg.Source)
			if err != nil {
				return fmt.Errorf("failed to open counter source: %w", err)
			}
			defer source.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			ifaces, err := source.Counters(ctx)
			if err != nil {
				return fmt.Errorf("failed to read counters: %w", err)
			}
			printInterfaces(cmd.OutOrStdout(), ifaces, newSelector(c.app.cfg))
			return nil
		},
	}
}

func printInterfaces(w io.Writer, ifaces []counter.Interface, sel *counter.Selector) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetBorder(true)
	table.SetHeader([]string{"网卡", "状态", "接收", "发送", "统计"})
	table.AppendBulk(interfaceRows(ifaces, sel))
	table.Render()
}

func interfaceRows(ifaces []counter.Interface, sel *counter.Selector) [][]string {
	sorted := slices.Clone(ifaces)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	selected := sel.Select(sorted)

	rows := make([][]string, 0, len(sorted))
	for _, iface := range sorted {
		state := "down"
		switch {
		case iface.Loopback:
			state = "loopback"
		case iface.Up:
			state = "up"
		}
		counted := ""
		if slices.Contains(selected, iface.Name) {
			counted = "✓"
		}
		rows = append(rows, []string{
			iface.Name,
			state,
			units.FormatBytes(iface.BytesIn),
			units.FormatBytes(iface.BytesOut),
			counted,
		})
	}
	return rows
}
