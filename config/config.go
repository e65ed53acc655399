package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk client configuration. Every field has a default, so
// an absent or partial file is valid.
type Config struct {
	TokenURL       string        `yaml:"token_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DeviceFile     string        `yaml:"device_file"`

	Channel     ChannelConfig     `yaml:"channel"`
	Layout      LayoutConfig      `yaml:"layout"`
	TokenServer TokenServerConfig `yaml:"token_server"`
}

// ChannelConfig names the shared channel every client joins.
type ChannelConfig struct {
	UniqueName   string `yaml:"unique_name"`
	FriendlyName string `yaml:"friendly_name"`
}

// LayoutConfig holds the keyboard-avoidance constants, in layout points.
type LayoutConfig struct {
	DefaultBottom   float64       `yaml:"default_bottom"`
	KeyboardPadding float64       `yaml:"keyboard_padding"`
	Animation       time.Duration `yaml:"animation"`
}

type TokenServerConfig struct {
	Listen string        `yaml:"listen"`
	Secret string        `yaml:"secret"`
	Issuer string        `yaml:"issuer"`
	TTL    time.Duration `yaml:"ttl"`
}

var ErrInvalidConfig = errors.New("invalid config")

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		RequestTimeout: 30 * time.Second,
		DeviceFile:     defaultDeviceFile(),
		Channel: ChannelConfig{
			UniqueName:   "general",
			FriendlyName: "General Chat Channel",
		},
		Layout: LayoutConfig{
			DefaultBottom:   20,
			KeyboardPadding: 10,
			Animation:       100 * time.Millisecond,
		},
		TokenServer: TokenServerConfig{
			Listen: ":8000",
			Secret: "quickstart-secret-change-me",
			Issuer: "ipm-quickstart",
			TTL:    time.Hour,
		},
	}
}

func defaultDeviceFile() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ""
	}
	return filepath.Join(base, "ipm-quickstart", "device.json")
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; an empty path skips reading entirely.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports values that would leave the client unable to run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Channel.UniqueName) == "" {
		return fmt.Errorf("%w: channel.unique_name is empty", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout is negative", ErrInvalidConfig)
	}
	if c.Layout.Animation < 0 {
		return fmt.Errorf("%w: layout.animation is negative", ErrInvalidConfig)
	}
	if c.TokenServer.TTL <= 0 {
		return fmt.Errorf("%w: token_server.ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
