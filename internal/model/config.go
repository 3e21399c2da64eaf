package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete Decoda configuration
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	Terminology TerminologyConfig `yaml:"terminology"`
	Sources     SourcesConfig     `yaml:"sources"`
	Ranking     RankingConfig     `yaml:"ranking"`
	Cache       CacheConfig       `yaml:"cache"`
	Session     SessionConfig     `yaml:"session"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// CatalogConfig locates the support catalogue dataset
type CatalogConfig struct {
	Path string `yaml:"path"` // CSV export of the support catalogue; built-in sample when empty/missing
}

// TerminologyConfig holds the injectable domain vocabulary. The tables are
// owned by the Normalizer; the "terms add" operation persists changes to Path.
type TerminologyConfig struct {
	Path        string            `yaml:"path"` // yaml file; built-in defaults when missing
	Acronyms    map[string]string `yaml:"acronyms,omitempty"`
	CommonTerms map[string]string `yaml:"common_terms,omitempty"`
}

// SourcesConfig lists the official scheme domains used for citation
// classification and legitimacy checks
type SourcesConfig struct {
	OfficialDomains []string `yaml:"official_domains"`
	KeyPolicies     []string `yaml:"key_policies"`
}

// RankingConfig holds the multiplicative relevance weights
type RankingConfig struct {
	OfficialSource float64 `yaml:"official_source"`
	Recency        float64 `yaml:"recency"`
	Specificity    float64 `yaml:"specificity"`
	LocalRelevance float64 `yaml:"local_relevance"`
	StalePenalty   float64 `yaml:"stale_penalty"`
	MaxItems       int     `yaml:"max_items"`
}

// CacheConfig locates the verification cache
type CacheConfig struct {
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
}

// SessionConfig locates session storage and sets the retention window
type SessionConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// LLMConfig configures the generative completion collaborator
type LLMConfig struct {
	Provider    string        `yaml:"provider"` // "openai" or "" (disabled)
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"` // e.g. a Sonar-style search backend
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	RatePerSec  float64       `yaml:"rate_per_sec"` // Per-host request rate
	RateBurst   int           `yaml:"rate_burst"`
	Temperature float32       `yaml:"temperature"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	SeedWorkers int `yaml:"seed_workers"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults. Data paths live under
// ~/.decoda; the domain tables match the published scheme sources.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".decoda")

	return &Config{
		Catalog: CatalogConfig{
			Path: filepath.Join(base, "support_catalogue.csv"),
		},
		Terminology: TerminologyConfig{
			Path: filepath.Join(base, "terminology.yaml"),
		},
		Sources: SourcesConfig{
			OfficialDomains: []string{
				"ndis.gov.au",
				"dss.gov.au",
				"ndiscommission.gov.au",
				"ndia.gov.au",
			},
			KeyPolicies: []string{
				"Price Guide",
				"Support Catalogue",
				"Operational Guidelines",
				"Practice Standards",
				"Provider Registration",
				"Quality and Safeguards",
			},
		},
		Ranking: RankingConfig{
			OfficialSource: 2.0,
			Recency:        1.5,
			Specificity:    1.2,
			LocalRelevance: 1.3,
			StalePenalty:   0.5,
			MaxItems:       5,
		},
		Cache: CacheConfig{
			Dir:       filepath.Join(base, "verification_cache"),
			MemoryTTL: 10 * time.Minute,
		},
		Session: SessionConfig{
			Dir:           filepath.Join(base, "sessions"),
			RetentionDays: 7,
		},
		LLM: LLMConfig{
			Provider:    "",
			Model:       "sonar",
			Timeout:     30 * time.Second,
			MaxTokens:   800,
			RatePerSec:  2,
			RateBurst:   5,
			Temperature: 0.1,
		},
		Concurrency: ConcurrencyConfig{
			SeedWorkers: 4,
		},
		Output: OutputConfig{},
	}
}
