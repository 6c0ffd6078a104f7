// cmd/verifact/config.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds the application configuration
type Config struct {
	Version string

	// Credentials. A missing news key disables that fetcher; a missing
	// model key is an initialization failure surfaced on every verify.
	OpenAIAPIKey string
	NewsAPIKey   string

	// Paths
	CacheDir    string
	LogPath     string
	LogLevel    LogLevel
	SourcesPath string

	// Evidence gathering
	MaxEvidence    int
	TrustedDomains []string
	TrustedSources []string

	// Google News RSS locale parameters
	GoogleNewsHL   string
	GoogleNewsGL   string
	GoogleNewsCEID string

	// GDELT source-country filter
	GDELTSourceCountry string

	// Model resolution
	KnownModels []string

	// API server
	EnableAPI bool
	APIPort   int
}

// sourceList is the optional YAML override for source and model lists
type sourceList struct {
	TrustedSources []string `yaml:"trusted_sources"`
	TrustedDomains []string `yaml:"trusted_domains"`
	KnownModels    []string `yaml:"known_models"`
}

// LoadConfig builds configuration from the environment, loading a local
// .env file first when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Version:            GetEnvString("VERIFACT_VERSION", VERSION),
		OpenAIAPIKey:       GetEnvString("OPENAI_API_KEY", ""),
		NewsAPIKey:         GetEnvString("NEWSAPI_API_KEY", ""),
		CacheDir:           GetEnvString("CACHE_DIR", DefaultCacheDir),
		LogPath:            GetEnvString("LOG_PATH", DefaultLogPath),
		LogLevel:           ParseLogLevel(GetEnvString("LOG_LEVEL", "info")),
		SourcesPath:        GetEnvString("SOURCES_PATH", DefaultSourcesPath),
		MaxEvidence:        GetEnvInt("MAX_EVIDENCE", DefaultMaxEvidence),
		TrustedDomains:     GetEnvStringSlice("TRUSTED_DOMAINS", defaultTrustedDomains),
		TrustedSources:     defaultTrustedSources,
		GoogleNewsHL:       GetEnvString("GOOGLE_NEWS_HL", "en-IN"),
		GoogleNewsGL:       GetEnvString("GOOGLE_NEWS_GL", "IN"),
		GoogleNewsCEID:     GetEnvString("GOOGLE_NEWS_CEID", "IN:en"),
		GDELTSourceCountry: GetEnvString("GDELT_SOURCE_COUNTRY", "IN"),
		KnownModels:        GetEnvStringSlice("KNOWN_MODELS", defaultKnownModels),
		EnableAPI:          GetEnvBool("ENABLE_API", true),
		APIPort:            GetEnvInt("API_PORT", DefaultAPIPort),
	}

	if err := cfg.applySourcesFile(); err != nil {
		// The override file is optional; a broken one should not stop startup
		Logger().Warning("Ignoring sources file %s: %v", cfg.SourcesPath, err)
	}

	if cfg.MaxEvidence <= 0 {
		cfg.MaxEvidence = DefaultMaxEvidence
	}

	return cfg, nil
}

// applySourcesFile overlays trusted source/domain and model lists from the
// optional YAML file when it exists.
func (c *Config) applySourcesFile() error {
	if c.SourcesPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.SourcesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var list sourceList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse yaml: %v", err)
	}

	if len(list.TrustedSources) > 0 {
		c.TrustedSources = list.TrustedSources
	}
	if len(list.TrustedDomains) > 0 {
		c.TrustedDomains = list.TrustedDomains
	}
	if len(list.KnownModels) > 0 {
		c.KnownModels = list.KnownModels
	}
	return nil
}
