// Package config loads the wikibot configuration from a TOML file and
// the environment.
//
// Settings live in the TOML file; secrets (API tokens, the database
// URL) are read from the environment so the file can be committed.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Environment variable names for secrets.
const (
	EnvConfluenceToken = "CONFLUENCE_API_TOKEN"
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvSlackToken      = "SLACK_TOKEN"
	EnvDatabaseURL     = "DATABASE_URL"
)

// Config is the full wikibot configuration.
type Config struct {
	Confluence ConfluenceConfig `toml:"confluence"`
	Ingest     IngestConfig     `toml:"ingest"`
	OpenAI     OpenAIConfig     `toml:"openai"`
	Vector     VectorConfig     `toml:"vector"`
	Slack      SlackConfig      `toml:"slack"`
	Server     ServerConfig     `toml:"server"`

	// DataDir holds local state such as the run history database.
	// Empty means ~/.wikibot/data.
	DataDir string `toml:"data_dir"`

	// Secrets, populated from the environment.
	ConfluenceToken string `toml:"-"`
	OpenAIKey       string `toml:"-"`
	SlackToken      string `toml:"-"`
	DatabaseURL     string `toml:"-"`
}

// ConfluenceConfig selects the wiki to ingest.
type ConfluenceConfig struct {
	// BaseURL is the site root, e.g. https://example.atlassian.net/wiki.
	BaseURL string `toml:"base_url"`

	// Username is the account email for basic auth.
	Username string `toml:"username"`

	// SpaceKey is the default space for ingestion and answer links.
	SpaceKey string `toml:"space_key"`

	// RequestsPerSecond caps the API request rate. Zero means the
	// client default.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	// ChunkSize is the chunk window in words (default 2048).
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the word overlap between neighbouring chunks
	// (default 50). Must be smaller than ChunkSize.
	ChunkOverlap int `toml:"chunk_overlap"`

	// Limit caps the pages processed per run (default 5000).
	Limit int `toml:"limit"`
}

// OpenAIConfig selects the models.
type OpenAIConfig struct {
	// BaseURL overrides the API endpoint, e.g. for Azure OpenAI.
	BaseURL string `toml:"base_url"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `toml:"embedding_model"`

	// ChatModel is the chat model name.
	ChatModel string `toml:"chat_model"`
}

// VectorConfig names the index collection.
type VectorConfig struct {
	// Collection namespaces this wiki's chunks in the database.
	Collection string `toml:"collection"`
}

// SlackConfig tunes the bot identity.
type SlackConfig struct {
	// Username is the display name used when posting.
	Username string `toml:"username"`

	// IconEmoji is the avatar emoji used when posting.
	IconEmoji string `toml:"icon_emoji"`
}

// ServerConfig configures the events server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `toml:"addr"`
}

// Default values applied by Load.
const (
	DefaultChunkSize    = 2048
	DefaultChunkOverlap = 50
	DefaultCollection   = "wiki"
	DefaultAddr         = ":8080"
)

// DefaultPath returns the default config file location,
// ~/.wikibot/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".wikibot", "config.toml"), nil
}

// Load reads the config file, applies defaults, pulls secrets from the
// environment and validates the result. A missing file is not an
// error; the environment and defaults still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to env and defaults.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.loadSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Ingest.ChunkSize == 0 {
		c.Ingest.ChunkSize = DefaultChunkSize
	}
	if c.Ingest.ChunkOverlap == 0 {
		c.Ingest.ChunkOverlap = DefaultChunkOverlap
	}
	if c.Vector.Collection == "" {
		c.Vector.Collection = DefaultCollection
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

func (c *Config) loadSecrets() {
	c.ConfluenceToken = os.Getenv(EnvConfluenceToken)
	c.OpenAIKey = os.Getenv(EnvOpenAIKey)
	c.SlackToken = os.Getenv(EnvSlackToken)
	c.DatabaseURL = os.Getenv(EnvDatabaseURL)
}

// Validate checks settings that would otherwise fail deep inside an
// ingestion run.
func (c *Config) Validate() error {
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk_size must be positive")
	}
	if c.Ingest.ChunkOverlap < 0 {
		return fmt.Errorf("config: chunk_overlap must not be negative")
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("config: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	return nil
}
