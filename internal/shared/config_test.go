package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.TokenURL != "https://accounts.spotify.com/api/token" {
			t.Errorf("unexpected token url %s", config.Credentials.Spotify.TokenURL)
		}

		if config.Credentials.Spotify.APIURL != "https://api.spotify.com/v1" {
			t.Errorf("unexpected api url %s", config.Credentials.Spotify.APIURL)
		}

		if config.HTTP.ReferenceURL != "https://date.nager.at/api/v3" {
			t.Errorf("unexpected reference url %s", config.HTTP.ReferenceURL)
		}

		if config.Session.CookieName != "spotlist_session" {
			t.Errorf("expected cookie spotlist_session, got %s", config.Session.CookieName)
		}

		if config.HTTP.Timeout() != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", config.HTTP.Timeout())
		}

		if config.Cache.ReferenceTTL() != time.Hour {
			t.Errorf("expected 1h reference ttl, got %v", config.Cache.ReferenceTTL())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[server]
host = "0.0.0.0"
port = 8080

[session]
backend = "sqlite"

[database]
path = "/custom/path.db"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.TokenURL == "" {
			t.Error("keys missing from the file should keep their defaults")
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("LoadConfig errors", func(t *testing.T) {
		dir := t.TempDir()

		_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}

		bad := filepath.Join(dir, "bad.toml")
		if err := os.WriteFile(bad, []byte("[server\nport = "), 0644); err != nil {
			t.Fatal(err)
		}
		_, err = LoadConfig(bad)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{"port", func(c *Config) { c.Server.Port = 0 }},
			{"backend", func(c *Config) { c.Session.Backend = "redis" }},
			{"sqlite without path", func(c *Config) { c.Session.Backend = SessionBackendSQLite; c.Database.Path = "" }},
			{"cookie", func(c *Config) { c.Session.CookieName = "" }},
			{"token url", func(c *Config) { c.Credentials.Spotify.TokenURL = "" }},
			{"reference url", func(c *Config) { c.HTTP.ReferenceURL = "" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvClientID, "env-id")
		t.Setenv(EnvClientSecret, "")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientSecret = "file-secret"
		config.ApplyEnv()

		if config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("expected env-id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "file-secret" {
			t.Errorf("empty env var should not override, got %s", config.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		if err := os.WriteFile(envPath, []byte("SPOTLIST_TEST_VALUE=from-dotenv\n"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SPOTLIST_TEST_VALUE", "")
		os.Unsetenv("SPOTLIST_TEST_VALUE")

		if err := LoadEnv(filepath.Join(dir, "absent.env"), envPath); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}
		if got := os.Getenv("SPOTLIST_TEST_VALUE"); got != "from-dotenv" {
			t.Errorf("expected from-dotenv, got %q", got)
		}
	})
}
