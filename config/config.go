package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// Default identity strings sent during legacy pairing. TVs display the
// Name in the on-screen authorization prompt.
const (
	DefaultName        = "samsungtv"
	DefaultDescription = "go-samsungtv"
)

// Config holds everything needed to reach and control one TV. It is
// shared with the Remote instances, which mutate it as a side effect of
// successful pairing (Paired, Token) and MAC resolution (MAC).
type Config struct {
	Version int `yaml:"version"`

	// Host is the TV's IP address or hostname
	Host string `yaml:"host"`
	// Port overrides the protocol default when non-zero
	Port int `yaml:"port,omitempty"`

	// Name is the client identity shown in the TV's pairing prompt
	Name string `yaml:"name"`
	// ID is the client identifier string
	ID string `yaml:"id"`
	// Description is the client description string
	Description string `yaml:"description"`

	// MAC is the TV's MAC address, lazily resolved and cached
	MAC string `yaml:"mac,omitempty"`

	// Paired records a successful legacy pairing handshake
	Paired bool `yaml:"paired"`
	// Token is the websocket auth token granted by newer TVs
	Token string `yaml:"token,omitempty"`

	// Timeout applies to dials and blocking socket reads (0 = none)
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// AuthTimeout caps the wait for on-screen pairing confirmation.
	// Zero preserves the classic behavior: wait until the user answers
	// or the remote is closed.
	AuthTimeout time.Duration `yaml:"auth_timeout,omitempty"`

	// Locations are UPnP device-description URLs for this TV, usually
	// filled in by discovery
	Locations []string `yaml:"upnp_locations,omitempty"`
}

// New creates a Config for the given host with default identity values.
func New(host string) *Config {
	return &Config{
		Version:     CurrentVersion,
		Host:        host,
		Name:        DefaultName,
		ID:          DefaultName,
		Description: DefaultDescription,
		Timeout:     5 * time.Second,
	}
}

// Load reads a Config from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config: %s: host is required", path)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the Config to a YAML file. Called after pairing so the
// granted state survives restarts.
func (c *Config) Save(path string) error {
	c.Version = CurrentVersion
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.ID == "" {
		cfg.ID = cfg.Name
	}
	if cfg.Description == "" {
		cfg.Description = DefaultDescription
	}
}
