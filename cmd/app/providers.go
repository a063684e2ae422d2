package main

import (
	"log/slog"

	"github.com/yanqian/astroml/internal/domain/generation"
	"github.com/yanqian/astroml/internal/domain/reading"
	"github.com/yanqian/astroml/internal/infra/config"
	"github.com/yanqian/astroml/internal/infra/llm/messages"
	"github.com/yanqian/astroml/internal/infra/sessionstore"
)

func provideMessagesClient(cfg *config.Config, logger *slog.Logger) *messages.Client {
	if cfg.LLM.APIKey == "" {
		logger.Info("llm api key not set, calling endpoint without credentials", "base_url", cfg.LLM.BaseURL)
	}
	return messages.NewClient(messages.Options{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Path:       cfg.LLM.Path,
		APIVersion: cfg.LLM.APIVersion,
	})
}

func provideGenerationConfig(cfg *config.Config) generation.Config {
	return generation.Config{
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	}
}

func provideReadingConfig(cfg *config.Config) (reading.Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return reading.Config{}, err
	}
	return reading.Config{
		ProcessingDwell: cfg.Reading.ProcessingDwell,
		TransitClock:    cfg.Reading.TransitClock,
		Location:        loc,
	}, nil
}

func provideSessionStore(cfg *config.Config) *sessionstore.MemoryStore {
	return sessionstore.NewMemoryStore(cfg.Session.TTL)
}
