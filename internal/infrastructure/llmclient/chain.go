package llmclient

import (
	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/config"
	"github.com/homematch/assistant-api/internal/domain/generation"
)

// BuildChain assembles the ordered provider fallback chain. An explicit
// chain file controls order and models; without one the built-in order is
// anthropic, openai, google. Unconfigured providers stay in the chain and
// are skipped at call time, so a key added via env is picked up without a
// chain file change.
func BuildChain(cfg *config.Config, chain *config.ProviderChainConfig, log zerolog.Logger) []generation.ProviderClient {
	entries := chain.Entries()
	if len(entries) == 0 {
		entries = []config.ProviderChainEntry{
			{Vendor: "anthropic", Model: cfg.AnthropicModel},
			{Vendor: "openai", Model: cfg.OpenAIModel},
			{Vendor: "google", Model: cfg.GeminiModel},
		}
	}

	clients := make([]generation.ProviderClient, 0, len(entries))
	for _, entry := range entries {
		client := clientFor(cfg, entry)
		if client == nil {
			continue
		}
		log.Info().
			Str("vendor", entry.Vendor).
			Str("model", modelFor(cfg, entry)).
			Bool("configured", client.Configured()).
			Msg("provider registered")
		clients = append(clients, client)
	}
	return clients
}

func clientFor(cfg *config.Config, entry config.ProviderChainEntry) generation.ProviderClient {
	model := modelFor(cfg, entry)
	switch entry.Vendor {
	case "anthropic":
		return NewAnthropicClient(cfg.AnthropicAPIKey, model, entry.BaseURL, cfg.ProviderTimeout)
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, model, entry.BaseURL, cfg.ProviderTimeout)
	case "google":
		return NewGoogleClient(cfg.GoogleAPIKey, model, entry.BaseURL, cfg.ProviderTimeout)
	default:
		return nil
	}
}

func modelFor(cfg *config.Config, entry config.ProviderChainEntry) string {
	if entry.Model != "" {
		return entry.Model
	}
	switch entry.Vendor {
	case "anthropic":
		return cfg.AnthropicModel
	case "openai":
		return cfg.OpenAIModel
	case "google":
		return cfg.GeminiModel
	default:
		return ""
	}
}
