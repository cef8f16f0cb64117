// Package config loads and saves commandlogd's on-disk configuration,
// following the same data-dir-plus-JSON-file convention as the teacher
// repo's own config package.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/commandlogd/commandlogd/internal/ringlog"
)

const (
	// DefaultDataDir is where commandlogd keeps its config file, metrics
	// database, and server log file.
	DefaultDataDir = "/var/lib/commandlogd"
	// DefaultListenAddr is the TCP address the command server listens on.
	DefaultListenAddr = "0.0.0.0:9000"
	// DefaultLogPath is the backing file for the command log itself.
	DefaultLogPath = "/var/tmp/aesdsocketdata"
	// DefaultTickerSeconds is how often the Ticker appends a timestamp
	// command.
	DefaultTickerSeconds = 10
	// DefaultReadChunkBytes bounds a single socket read in the
	// ConnectionServer's READING state.
	DefaultReadChunkBytes = 1024
	// ConfigFileName is the config file's name within the data directory.
	ConfigFileName = "config.json"
)

// Config holds all configuration for a commandlogd node.
type Config struct {
	DataDir        string `json:"data_dir"`
	ListenAddr     string `json:"listen_addr"`
	LogPath        string `json:"log_path"`
	RingCapacity   int    `json:"ring_capacity"`
	TickerSeconds  int    `json:"ticker_seconds"`
	ReadChunkBytes int    `json:"read_chunk_bytes"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:        DefaultDataDir,
		ListenAddr:     DefaultListenAddr,
		LogPath:        DefaultLogPath,
		RingCapacity:   ringlog.DefaultCapacity,
		TickerSeconds:  DefaultTickerSeconds,
		ReadChunkBytes: DefaultReadChunkBytes,
	}
}

// Load reads configuration from dataDir, falling back to defaults for any
// field a partial config file omits. A missing config file is not an
// error — it returns DefaultConfig with DataDir set to dataDir.
func Load(dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	path := filepath.Join(dataDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.DataDir = dataDir

	return cfg, nil
}

// Save writes c to its data directory, creating the directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(c.DataDir, ConfigFileName)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// MetricsDBPath returns the path to the session-telemetry SQLite database.
func (c *Config) MetricsDBPath() string {
	return filepath.Join(c.DataDir, "telemetry.db")
}

// LogFilePath returns the path to the server's append-only log file, used
// by the "logs" CLI command to show recent activity after the server has
// exited.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.DataDir, "commandlogd.log")
}
