package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Enrich      EnrichConfig      `toml:"enrich"`
}

// CredentialsConfig contains per-provider API credentials.
//
// A provider with empty credentials is skipped at chain construction;
// it is never invoked.
type CredentialsConfig struct {
	GetSongBPM GetSongBPMConfig `toml:"getsongbpm"`
	SoundNet   SoundNetConfig   `toml:"soundnet"`
	Spotify    SpotifyConfig    `toml:"spotify"`
	LastFM     LastFMConfig     `toml:"lastfm"`
}

// GetSongBPMConfig contains the GetSongBPM API key.
type GetSongBPMConfig struct {
	APIKey string `toml:"api_key"`
}

// SoundNetConfig contains the RapidAPI key for the track-analysis API.
type SoundNetConfig struct {
	RapidAPIKey string `toml:"rapidapi_key"`
}

// SpotifyConfig contains Spotify client-credentials (no user auth).
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// LastFMConfig contains the Last.fm API key.
type LastFMConfig struct {
	APIKey string `toml:"api_key"`
}

// DatabaseConfig contains settings for the persistent track cache.
//
// An empty path disables persistence entirely; lookups then go straight
// to the providers.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// EnrichConfig contains batch sizing for the enrichment engine.
type EnrichConfig struct {
	BpmBatchSize   int `toml:"bpm_batch_size"`
	GenreBatchSize int `toml:"genre_batch_size"`
	GenreWorkers   int `toml:"genre_workers"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
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
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidInput)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
