package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
	Rooms  RoomSettings   `hcl:"rooms,block"`
}

// ServerSettings contains listener-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains the rule knobs that are product decisions rather
// than rules of Hearts: the game ends at the first round boundary where any
// score reaches end_score; the lowest cumulative score wins, ties going to
// the earliest seat. A non-zero seed makes shuffles deterministic.
type GameSettings struct {
	EndScore int   `hcl:"end_score,optional"`
	Seed     int64 `hcl:"seed,optional"`
}

// RoomSettings controls room lifecycle
type RoomSettings struct {
	IdleTimeoutMinutes int `hcl:"idle_timeout_minutes,optional"`
}

// DefaultServerConfig returns the default configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			EndScore: 100,
		},
		Rooms: RoomSettings{
			IdleTimeoutMinutes: 30,
		},
	}
}

// LoadServerConfig loads configuration from an HCL file, falling back to
// defaults if the file does not exist
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
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
	if config.Game.EndScore == 0 {
		config.Game.EndScore = 100
	}
	if config.Rooms.IdleTimeoutMinutes == 0 {
		config.Rooms.IdleTimeoutMinutes = 30
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.EndScore < 1 {
		return fmt.Errorf("end_score must be positive, got %d", c.Game.EndScore)
	}
	if c.Rooms.IdleTimeoutMinutes < 1 {
		return fmt.Errorf("idle_timeout_minutes must be positive, got %d", c.Rooms.IdleTimeoutMinutes)
	}
	return nil
}

// ListenAddress returns the full address to bind to
func (c *ServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IdleTimeout returns the room idle timeout as a duration
func (c *ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.Rooms.IdleTimeoutMinutes) * time.Minute
}
