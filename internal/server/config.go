package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
	Store  StoreSettings  `hcl:"store,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains game-level configuration
type GameSettings struct {
	// LobbyTTLMinutes is how long a game may sit in the lobby without
	// starting before the sweeper removes it.
	LobbyTTLMinutes int `hcl:"lobby_ttl_minutes,optional"`

	// SweepIntervalSeconds is how often the lobby sweeper runs.
	SweepIntervalSeconds int `hcl:"sweep_interval_seconds,optional"`
}

// StoreSettings contains persistence configuration
type StoreSettings struct {
	Path string `hcl:"path,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			LobbyTTLMinutes:      60,
			SweepIntervalSeconds: 60,
		},
		Store: StoreSettings{
			Path: "paintbid.db",
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Game.LobbyTTLMinutes == 0 {
		config.Game.LobbyTTLMinutes = 60
	}
	if config.Game.SweepIntervalSeconds == 0 {
		config.Game.SweepIntervalSeconds = 60
	}
	if config.Store.Path == "" {
		config.Store.Path = "paintbid.db"
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Game.LobbyTTLMinutes < 1 {
		return fmt.Errorf("lobby TTL must be at least one minute, got %d", c.Game.LobbyTTLMinutes)
	}
	if c.Game.SweepIntervalSeconds < 1 {
		return fmt.Errorf("sweep interval must be at least one second, got %d", c.Game.SweepIntervalSeconds)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path must not be empty")
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// LobbyTTL returns the lobby time-to-live as a duration
func (c *Config) LobbyTTL() time.Duration {
	return time.Duration(c.Game.LobbyTTLMinutes) * time.Minute
}

// SweepInterval returns the sweeper period as a duration
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Game.SweepIntervalSeconds) * time.Second
}
