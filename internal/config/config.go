package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	API     APIConfig     `toml:"api"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
}

// APIConfig points the client at the contacts backend
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	// Timeout bounds each request; zero waits indefinitely
	Timeout Duration `toml:"timeout"`
}

// SessionConfig selects where the login session is persisted
type SessionConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Env  string `toml:"env"`
	Path string `toml:"path"`
}

// ServerConfig configures the reference backend
type ServerConfig struct {
	Addr   string `toml:"addr"`
	DBPath string `toml:"db_path"`
	Secret string `toml:"secret"`
	// LogPath sends server logs to a file instead of stderr
	LogPath string `toml:"log_path"`
	// TokenTTL is how long issued tokens stay valid
	TokenTTL Duration `toml:"token_ttl"`
	Users    []User   `toml:"users"`
}

// User is a login accepted by the reference backend
type User struct {
	Username string `toml:"username"`
	// PasswordHash is a bcrypt hash
	PasswordHash string `toml:"password_hash"`
}

// Duration lets durations be written as strings like "30s" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText formats the duration
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Dir returns the configuration directory
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "addressbook")
}

// Default returns the default configuration
func Default() *Config {
	dir := Dir()
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
		},
		Session: SessionConfig{
			Backend: "sqlite",
			Path:    filepath.Join(dir, "session.db"),
		},
		Log: LogConfig{
			Env:  "development",
			Path: filepath.Join(dir, "addressbook.log"),
		},
		Server: ServerConfig{
			Addr:     ":5000",
			DBPath:   filepath.Join(dir, "contacts.db"),
			TokenTTL: Duration{24 * time.Hour},
		},
	}
}

// Path returns the standard config file location
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads configuration from a specific path
func LoadFrom(configPath string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// No config file, return defaults
		return cfg, nil
	}

	// Read and parse config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand home directory in paths
	cfg.Session.Path = expandPath(cfg.Session.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
	cfg.Server.DBPath = expandPath(cfg.Server.DBPath)
	cfg.Server.LogPath = expandPath(cfg.Server.LogPath)

	return cfg, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return c.SaveTo(Path())
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
