// Package commands implements the awb-kalender command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/klabast/wb-services/awb-kalender/internal/config"
	"github.com/klabast/wb-services/awb-kalender/internal/entity"
	"github.com/klabast/wb-services/awb-kalender/internal/logger"
	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

const configName = "awb-kalender"

// cli carries state shared by all subcommands.
type cli struct {
	v       *viper.Viper
	cfgFile string
	envFile string
}

// NewRootCmd builds the command tree with a fresh viper instance.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "awb-kalender",
		Short: "Waste collection calendar for AWB Bad Kreuznach",
		Long: `awb-kalender fetches the AWB Bad Kreuznach collection schedule for one
address and exposes the next pickup per waste category as sensor and
calendar entities, an ICS feed and Prometheus metrics.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ./awb-kalender.yaml or $HOME/.config/awb-kalender/awb-kalender.yaml)")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.String("city", "", "city as known to AWB (form field ort)")
	flags.String("street", "", "street as known to AWB (form field strasse)")
	flags.String("offset", "", "lead time before pickup day for the imminence flag (HH:MM:SS or duration, default 12:00:00)")
	flags.String("timezone", "", "schedule time zone (default Europe/Berlin)")
	flags.String("endpoint", "", "schedule endpoint URL")
	flags.Duration("throttle", 0, "minimum interval between schedule fetches (default 24h)")
	flags.Duration("timeout", 0, "HTTP request timeout (default 30s)")

	for key, flag := range map[string]string{
		config.KeyCity:     "city",
		config.KeyStreet:   "street",
		config.KeyOffset:   "offset",
		config.KeyTimezone: "timezone",
		config.KeyEndpoint: "endpoint",
		config.KeyThrottle: "throttle",
		config.KeyTimeout:  "timeout",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		c.serveCmd(),
		c.nextCmd(),
		c.hashPasswordCmd(),
		c.configCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func (c *cli) initConfig(cmd *cobra.Command, args []string) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", c.envFile, err)
		}
	}

	config.SetDefaults(c.v)

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		c.v.SetConfigName(configName)
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if c.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", c.v.ConfigFileUsed())
	}
	return nil
}

// newRegistry wires client, cache and entities for cfg.
func newRegistry(cfg *config.Config, log logger.Logger) *entity.Registry {
	client := schedule.NewClient(cfg.Endpoint, cfg.Timeout, cfg.Location, log)
	cache := schedule.NewCache(client, cfg.City, cfg.Street,
		schedule.WithThrottle(cfg.Throttle),
		schedule.WithLocation(cfg.Location),
		schedule.WithLogger(log))
	return entity.NewRegistry(cache, cfg.Offset)
}
