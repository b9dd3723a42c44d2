package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(values map[string]string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"12:00:00", 12 * time.Hour, false},
		{"24:00:00", 24 * time.Hour, false},
		{"06:30", 6*time.Hour + 30*time.Minute, false},
		{"1:02:03", time.Hour + 2*time.Minute + 3*time.Second, false},
		{"36h", 36 * time.Hour, false},
		{"", 12 * time.Hour, false},
		{"12:60:00", 0, true},
		{"1:2:3:4", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOffset(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOffset(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidOffset) {
				t.Errorf("error should wrap ErrInvalidOffset, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseOffset(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(map[string]string{
		KeyCity:   "Bad Kreuznach",
		KeyStreet: "Salinenstraße",
	}))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Offset != 12*time.Hour {
		t.Errorf("Offset = %v, want 12h", cfg.Offset)
	}
	if cfg.Throttle != 24*time.Hour {
		t.Errorf("Throttle = %v, want 24h", cfg.Throttle)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.Location == nil || cfg.Location.String() != "Europe/Berlin" {
		t.Errorf("Location = %v, want Europe/Berlin", cfg.Location)
	}
	if !strings.Contains(cfg.Endpoint, "awb-bad-kreuznach.de") {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		wantErr error
	}{
		{"missing city", map[string]string{KeyStreet: "x"}, ErrMissingCity},
		{"missing street", map[string]string{KeyCity: "x"}, ErrMissingStreet},
		{"bad offset", map[string]string{KeyCity: "x", KeyStreet: "y", KeyOffset: "later"}, ErrInvalidOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(tt.values))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("bad cron", func(t *testing.T) {
		_, err := Load(newViper(map[string]string{KeyCity: "x", KeyStreet: "y", KeyPollSchedule: "hourly"}))
		if err == nil {
			t.Error("expected error for invalid poll schedule")
		}
	})

	t.Run("bad timezone", func(t *testing.T) {
		_, err := Load(newViper(map[string]string{KeyCity: "x", KeyStreet: "y", KeyTimezone: "Mars/Olympus"}))
		if err == nil {
			t.Error("expected error for unknown timezone")
		}
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AWB_CITY", "Bad Kreuznach")
	t.Setenv("AWB_STREET", "Mannheimer Straße")
	t.Setenv("AWB_OFFSET", "24:00:00")
	t.Setenv("AUTH_FILE", "/tmp/awb.secret")

	cfg, err := Load(newViper(nil))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Street != "Mannheimer Straße" || cfg.Offset != 24*time.Hour {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.AuthFile != "/tmp/awb.secret" {
		t.Errorf("AuthFile = %q", cfg.AuthFile)
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := WriteSample(path, Sample("Bad Kreuznach", "Salinenstraße"), false); err != nil {
		t.Fatalf("WriteSample() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	for _, want := range []string{"city: Bad Kreuznach", "12:00:00", "*/30 * * * *", "timezone: Europe/Berlin"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("sample missing %q:\n%s", want, data)
		}
	}

	if err := WriteSample(path, Sample("a", "b"), false); err == nil {
		t.Error("expected error when file exists and overwrite is false")
	}

	// The written file must load back through viper.
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.City != "Bad Kreuznach" || cfg.Offset != 12*time.Hour {
		t.Errorf("cfg = %+v", cfg)
	}
}
