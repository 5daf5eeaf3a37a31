package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"speedmeter/config"
	"speedmeter/units"
)

type ConfigCmd struct {
	app *app
}

func NewConfigCmd(a *app) *ConfigCmd {
	return &ConfigCmd{app: a}
}

func (c *ConfigCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the persisted settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := yaml.Marshal(c.app.cfg)
				if err != nil {
					return fmt.Errorf("failed to encode config: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "# file: %s\n# data dir: %s\n", c.app.cfgPath, c.app.cfg.DataDir)
				_, err = out.Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "set-unit <unit>",
			Short: fmt.Sprintf("Persist the display unit %v", units.All),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := units.ParseUnit(args[0])
				if err != nil {
					return err
				}
				return c.update(func(cfg *config.Config) { cfg.Unit = u })
			},
		},
		&cobra.Command{
			Use:   "set-interface [name]",
			Short: "Persist the preferred interface, no name means auto-select",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				return c.update(func(cfg *config.Config) { cfg.Interface = name })
			},
		},
	)
	return cmd
}

// update 只改配置文件本身的内容，环境变量和命令行的覆盖不会被写回
func (c *ConfigCmd) update(fn func(*config.Config)) error {
	cfg, err := config.Load(c.app.cfgPath)
	if err != nil {
		return err
	}
	fn(cfg)
	return cfg.SaveTo(c.app.cfgPath)
}
