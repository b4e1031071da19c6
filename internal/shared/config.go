package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override the [credentials.spotify] section.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Session store backends
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	HTTP        HTTPConfig        `toml:"http"`
	Session     SessionConfig     `toml:"session"`
	Database    DatabaseConfig    `toml:"database"`
	Cache       CacheConfig       `toml:"cache"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and endpoints.
//
// The credentials are only used by the CLI; the web relay takes them from the login form.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
	APIURL       string `toml:"api_url"`
}

// HTTPConfig contains outbound HTTP client settings.
type HTTPConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ReferenceURL   string `toml:"reference_url"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host                string  `toml:"host"`
	Port                int     `toml:"port"`
	ReadTimeoutSeconds  int     `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int     `toml:"write_timeout_seconds"`
	RequestsPerSecond   float64 `toml:"requests_per_second"`
	Burst               int     `toml:"burst"`
}

// SessionConfig selects where login credentials are held between requests.
type SessionConfig struct {
	Backend    string `toml:"backend"`
	CookieName string `toml:"cookie_name"`
	Secure     bool   `toml:"secure"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CacheConfig controls the reference data cache.
type CacheConfig struct {
	ReferenceTTLMinutes int `toml:"reference_ttl_minutes"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// Addr returns the host:port the server listens on.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReadTimeout returns the server read timeout.
func (c *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout.
func (c *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// Timeout returns the outbound request timeout, defaulting to ten seconds.
func (c *HTTPConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReferenceTTL returns how long reference lists stay cached.
func (c *CacheConfig) ReferenceTTL() time.Duration {
	return time.Duration(c.ReferenceTTLMinutes) * time.Minute
}

// Validate checks the settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}

	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: sqlite session backend requires database.path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown session backend %q", ErrInvalidConfig, c.Session.Backend)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("%w: session.cookie_name is empty", ErrInvalidConfig)
	}
	if c.Credentials.Spotify.TokenURL == "" || c.Credentials.Spotify.APIURL == "" {
		return fmt.Errorf("%w: spotify token_url and api_url are required", ErrInvalidConfig)
	}
	if c.HTTP.ReferenceURL == "" {
		return fmt.Errorf("%w: http.reference_url is empty", ErrInvalidConfig)
	}

	return nil
}

// ApplyEnv overrides the Spotify credentials with [EnvClientID] and [EnvClientSecret] when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from the given dotenv files into the process environment.
//
// Missing files are skipped; variables already set in the environment win.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
