// Package config loads and validates the service configuration. Values come
// from flags, AWB_* environment variables, an optional YAML file and
// defaults, in that order of precedence (resolved by viper).
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/klabast/wb-services/awb-kalender/internal/poller"
	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

// Configuration keys
const (
	KeyCity         = "city"
	KeyStreet       = "street"
	KeyOffset       = "offset"
	KeyEndpoint     = "endpoint"
	KeyThrottle     = "throttle"
	KeyTimeout      = "timeout"
	KeyTimezone     = "timezone"
	KeyPollSchedule = "poll_schedule"
	KeyListen       = "listen"
	KeyAuthFile     = "auth_file"
)

// Defaults
const (
	DefaultOffset   = "12:00:00"
	DefaultTimezone = "Europe/Berlin"
	DefaultListen   = ":8080"
	EnvPrefix       = "AWB"
)

// Validation errors
var (
	ErrMissingCity   = errors.New("city is required")
	ErrMissingStreet = errors.New("street is required")
	ErrInvalidOffset = errors.New("invalid offset")
)

// Config is the resolved service configuration.
type Config struct {
	City         string
	Street       string
	Offset       time.Duration
	Endpoint     string
	Throttle     time.Duration
	Timeout      time.Duration
	Timezone     string
	Location     *time.Location
	PollSchedule string
	Listen       string
	AuthFile     string
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOffset, DefaultOffset)
	v.SetDefault(KeyEndpoint, schedule.DefaultEndpoint)
	v.SetDefault(KeyThrottle, schedule.DefaultThrottle)
	v.SetDefault(KeyTimeout, schedule.DefaultTimeout)
	v.SetDefault(KeyTimezone, DefaultTimezone)
	v.SetDefault(KeyPollSchedule, poller.DefaultSchedule)
	v.SetDefault(KeyListen, DefaultListen)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// AUTH_FILE is honoured for compatibility with existing deployments
	_ = v.BindEnv(KeyAuthFile, EnvPrefix+"_AUTH_FILE", "AUTH_FILE")
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	offset, err := ParseOffset(v.GetString(KeyOffset))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		City:         strings.TrimSpace(v.GetString(KeyCity)),
		Street:       strings.TrimSpace(v.GetString(KeyStreet)),
		Offset:       offset,
		Endpoint:     v.GetString(KeyEndpoint),
		Throttle:     v.GetDuration(KeyThrottle),
		Timeout:      v.GetDuration(KeyTimeout),
		Timezone:     v.GetString(KeyTimezone),
		PollSchedule: v.GetString(KeyPollSchedule),
		Listen:       v.GetString(KeyListen),
		AuthFile:     v.GetString(KeyAuthFile),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and resolves the time zone.
func (c *Config) Validate() error {
	if c.City == "" {
		return ErrMissingCity
	}
	if c.Street == "" {
		return ErrMissingStreet
	}
	if c.Offset < 0 {
		return fmt.Errorf("%w: must not be negative", ErrInvalidOffset)
	}
	if c.Throttle <= 0 {
		return fmt.Errorf("throttle must be positive, got %v", c.Throttle)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if err := poller.ValidateSchedule(c.PollSchedule); err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// ParseOffset parses a lead time given as "HH:MM:SS", "HH:MM" or a Go
// duration string such as "36h". An empty string yields DefaultOffset.
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultOffset
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
		}
		var total time.Duration
		units := []time.Duration{time.Hour, time.Minute, time.Second}
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
			}
			if i > 0 && n > 59 {
				return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
			}
			total += time.Duration(n) * units[i]
		}
		return total, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: must not be negative", ErrInvalidOffset)
	}
	return d, nil
}
