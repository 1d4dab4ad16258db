/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/freyjawal/pkg/backend"
	"github.com/ssargent/freyjawal/pkg/wal"
)

// Config represents the freyjawal configuration
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Port     int      `yaml:"port"`
	Bind     string   `yaml:"bind"`
	WAL      WAL      `yaml:"wal"`
	Sequence Sequence `yaml:"sequence"`
	Security Security `yaml:"security"`
	Logging  Logging  `yaml:"logging"`
}

// WAL contains log writer configuration
type WAL struct {
	FileName   string `yaml:"file_name"`
	BufferSize int    `yaml:"buffer_size"`
	Backend    string `yaml:"backend"`
}

// Sequence configures the LSN sequencer store
type Sequence struct {
	Dir string `yaml:"dir"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    9300,
		Bind:    "127.0.0.1",
		WAL: WAL{
			FileName:   "freyja.wal",
			BufferSize: wal.DefaultBufferSize,
			Backend:    backend.KindAuto,
		},
		Sequence: Sequence{
			Dir: "sequence",
		},
		Security: Security{
			APIKey: "auto",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// WALPath returns the log file path. Relative file names live in DataDir.
func (c *Config) WALPath() string {
	if filepath.IsAbs(c.WAL.FileName) {
		return c.WAL.FileName
	}
	return filepath.Join(c.DataDir, c.WAL.FileName)
}

// SequenceDir returns the sequencer directory. Relative paths live in DataDir.
func (c *Config) SequenceDir() string {
	if filepath.IsAbs(c.Sequence.Dir) {
		return c.Sequence.Dir
	}
	return filepath.Join(c.DataDir, c.Sequence.Dir)
}

// Validate checks the configuration for values the writer cannot use
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.WAL.FileName == "" {
		return fmt.Errorf("wal.file_name is required")
	}
	if c.WAL.BufferSize < 0 {
		return fmt.Errorf("wal.buffer_size must not be negative: %d", c.WAL.BufferSize)
	}
	if _, err := backend.Lookup(c.WAL.Backend); err != nil {
		return fmt.Errorf("wal.backend: %w", err)
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// WriterConfig builds the log writer configuration
func (c *Config) WriterConfig() (wal.Config, error) {
	open, err := backend.Lookup(c.WAL.Backend)
	if err != nil {
		return wal.Config{}, err
	}
	return wal.Config{
		Path:       c.WALPath(),
		BufferSize: c.WAL.BufferSize,
		Backend:    open,
	}, nil
}

// LoadConfig loads configuration from the specified path. Fields missing from
// the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file holds the API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and saves it
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./freyjawal.yaml"
	}

	// ~/.config/freyjawal/config.yaml
	configDir := filepath.Join(homeDir, ".config", "freyjawal")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
