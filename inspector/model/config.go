package model

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config controls extraction and policy evaluation for a run.
type Config struct {
	// Extensions is the per-root file allowlist; defaults cover JS/TS.
	Extensions []string `yaml:"extensions"`
	// IgnoreGlobs are gitignore-style patterns excluded from scanning.
	IgnoreGlobs []string `yaml:"ignoreGlobs"`

	// AuthMiddlewarePatterns are substrings that mark a middleware as
	// auth-enforcing, matched case-insensitively.
	AuthMiddlewarePatterns []string `yaml:"authMiddlewarePatterns"`
	// AuthHeaderNames are header keys whose presence marks a call as
	// authenticated.
	AuthHeaderNames []string `yaml:"authHeaderNames"`
	// HTTPClientAliases are receiver identifiers treated as HTTP clients.
	HTTPClientAliases []string `yaml:"httpClientAliases"`

	// RequireAuthPatterns are regex patterns marking endpoints sensitive;
	// they take precedence over the built-in keyword list.
	RequireAuthPatterns []string `yaml:"requireAuthPatterns"`
	// SensitiveMethods require auth regardless of path keywords.
	SensitiveMethods []string `yaml:"sensitiveMethods"`
	// PublicEndpoints are exempt from sensitivity classification.
	PublicEndpoints []string `yaml:"publicEndpoints"`
	// SeverityMap rebinds an issue type to a severity.
	SeverityMap map[string]string `yaml:"severityMap"`

	// SimilarityThreshold is the minimum ratio for duplicate-component
	// reports.
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
}

// DefaultConfig returns the built-in extraction and policy settings.
func DefaultConfig() *Config {
	return &Config{
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"},
		IgnoreGlobs: []string{
			"node_modules/", "dist/", "build/", "coverage/", ".next/",
			"out/", ".git/",
		},
		AuthMiddlewarePatterns: []string{
			"auth", "jwt", "verify", "protect", "authenticate",
			"authorize", "guard", "secure",
		},
		AuthHeaderNames: []string{
			"authorization", "x-auth-token", "x-api-key", "x-access-token",
			"token", "api-key",
		},
		HTTPClientAliases: []string{
			"axios", "http", "fetcher", "request", "superagent", "got", "ky",
		},
		SensitiveMethods:    []string{"POST", "PUT", "PATCH", "DELETE"},
		SimilarityThreshold: 0.8,
	}
}

// LoadConfig reads a YAML config, overlaying the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if config.SimilarityThreshold <= 0 {
		config.SimilarityThreshold = 0.8
	}
	return config, nil
}

// SeverityFor resolves an issue type's severity, honoring SeverityMap
// overrides.
func (c *Config) SeverityFor(issueType IssueType, fallback Severity) Severity {
	if c == nil || c.SeverityMap == nil {
		return fallback
	}
	if override, ok := c.SeverityMap[string(issueType)]; ok {
		switch Severity(override) {
		case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
			return Severity(override)
		}
	}
	return fallback
}
