package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/klabast/wb-services/awb-kalender/internal/poller"
	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

// FileConfig mirrors the YAML config file layout.
type FileConfig struct {
	City         string `yaml:"city"`
	Street       string `yaml:"street"`
	Offset       string `yaml:"offset"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	Throttle     string `yaml:"throttle"`
	Timeout      string `yaml:"timeout"`
	Timezone     string `yaml:"timezone"`
	PollSchedule string `yaml:"poll_schedule"`
	Listen       string `yaml:"listen"`
	AuthFile     string `yaml:"auth_file,omitempty"`
}

// Sample returns a config with all defaults filled in.
func Sample(city, street string) FileConfig {
	return FileConfig{
		City:         city,
		Street:       street,
		Offset:       DefaultOffset,
		Throttle:     schedule.DefaultThrottle.String(),
		Timeout:      schedule.DefaultTimeout.String(),
		Timezone:     DefaultTimezone,
		PollSchedule: poller.DefaultSchedule,
		Listen:       DefaultListen,
	}
}

// WriteSample writes cfg as YAML to path. An existing file is only replaced
// when overwrite is set.
func WriteSample(path string, cfg FileConfig, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
