package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProviderChainEntry describes one provider in the ordered fallback chain.
type ProviderChainEntry struct {
	Vendor  string
	Model   string
	BaseURL string
}

// ProviderChainConfig is the parsed ordered provider chain.
type ProviderChainConfig struct {
	entries []ProviderChainEntry
}

// Entries returns a copy of the configured chain, in fallback order.
func (c *ProviderChainConfig) Entries() []ProviderChainEntry {
	if c == nil {
		return nil
	}
	result := make([]ProviderChainEntry, len(c.entries))
	copy(result, c.entries)
	return result
}

type providerChainDocument struct {
	Providers []struct {
		Vendor  string `yaml:"vendor"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"providers"`
}

var knownVendors = map[string]bool{
	"anthropic": true,
	"openai":    true,
	"google":    true,
}

// LoadProviderChainConfig parses the yaml file at the provided path. A missing
// file is not an error: the caller falls back to the built-in chain order.
func LoadProviderChainConfig(path string) (*ProviderChainConfig, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read provider config %q: %w", cleanPath, err)
	}

	var doc providerChainDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse provider config %q: %w", cleanPath, err)
	}

	if len(doc.Providers) == 0 {
		return nil, fmt.Errorf("provider config %q has no providers defined", cleanPath)
	}

	result := &ProviderChainConfig{}
	for idx, entry := range doc.Providers {
		vendor := strings.ToLower(strings.TrimSpace(entry.Vendor))
		if !knownVendors[vendor] {
			return nil, fmt.Errorf("providers[%d]: unknown vendor %q", idx, entry.Vendor)
		}
		result.entries = append(result.entries, ProviderChainEntry{
			Vendor:  vendor,
			Model:   strings.TrimSpace(entry.Model),
			BaseURL: strings.TrimSpace(entry.BaseURL),
		})
	}

	return result, nil
}
