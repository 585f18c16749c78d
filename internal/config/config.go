package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for a conversion run.
type Config struct {
	DSN       string
	DictPath  string // optional Parquet dictionary; empty means embedded tables
	LogFormat string // "text" or "json"

	MinScore    float64 // candidate cutoff for the matcher
	AcceptScore float64 // auto-accept threshold for chosen codes

	ExtractTimeout    time.Duration // per-document budget in claim mode
	MaxClaimDocuments int
	EmbedSource       bool // carry base64 document bytes in DocumentReference
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	DictPath          string  `yaml:"dict_path"`
	MinScore          float64 `yaml:"min_score"`
	AcceptScore       float64 `yaml:"accept_score"`
	ExtractTimeout    string  `yaml:"extract_timeout"`
	MaxClaimDocuments int     `yaml:"max_claim_documents"`
	EmbedSource       *bool   `yaml:"embed_source"`
}

// Default returns the configuration used when no file or flags override it.
func Default() Config {
	return Config{
		LogFormat:         "text",
		ExtractTimeout:    30 * time.Second,
		MaxClaimDocuments: 20,
		EmbedSource:       true,
	}
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.DictPath != "" {
		c.DictPath = yc.DictPath
	}
	if yc.MinScore != 0 {
		c.MinScore = yc.MinScore
	}
	if yc.AcceptScore != 0 {
		c.AcceptScore = yc.AcceptScore
	}
	if yc.ExtractTimeout != "" {
		d, err := time.ParseDuration(yc.ExtractTimeout)
		if err != nil {
			return fmt.Errorf("parse extract_timeout: %w", err)
		}
		c.ExtractTimeout = d
	}
	if yc.MaxClaimDocuments != 0 {
		c.MaxClaimDocuments = yc.MaxClaimDocuments
	}
	if yc.EmbedSource != nil {
		c.EmbedSource = *yc.EmbedSource
	}
	return nil
}

// Validate checks threshold and limit sanity.
func (c *Config) Validate() error {
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score %v out of range [0,1]", c.MinScore)
	}
	if c.AcceptScore < 0 || c.AcceptScore > 1 {
		return fmt.Errorf("accept_score %v out of range [0,1]", c.AcceptScore)
	}
	if c.MinScore > c.AcceptScore && c.AcceptScore != 0 {
		return fmt.Errorf("min_score %v exceeds accept_score %v", c.MinScore, c.AcceptScore)
	}
	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("extract_timeout must be positive")
	}
	if c.MaxClaimDocuments <= 0 {
		return fmt.Errorf("max_claim_documents must be positive")
	}
	if c.DictPath != "" {
		if _, err := os.Stat(c.DictPath); err != nil {
			return fmt.Errorf("dictionary not accessible: %w", err)
		}
	}
	return nil
}

// ValidateWithDSN additionally requires a database connection string.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}
