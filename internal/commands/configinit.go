package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/awb-kalender/internal/config"
)

const defaultConfigFile = configName + ".yaml"

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(c.configInitCmd())
	return cmd
}

func (c *cli) configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample configuration file",
		Long: `Write a YAML configuration with every setting at its default value.
City and street are taken from --city/--street when given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			sample := config.Sample(c.v.GetString(config.KeyCity), c.v.GetString(config.KeyStreet))
			if err := config.WriteSample(path, sample, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Config written: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
