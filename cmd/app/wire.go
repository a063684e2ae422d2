//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/astroml/internal/bootstrap"
	"github.com/yanqian/astroml/internal/domain/generation"
	"github.com/yanqian/astroml/internal/domain/reading"
	"github.com/yanqian/astroml/internal/infra/config"
	"github.com/yanqian/astroml/internal/infra/llm/messages"
	"github.com/yanqian/astroml/internal/infra/sessionstore"
	httpiface "github.com/yanqian/astroml/internal/interface/http"
	"github.com/yanqian/astroml/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideMessagesClient,
		provideGenerationConfig,
		provideReadingConfig,
		provideSessionStore,
		generation.NewClient,
		reading.NewService,
		wire.Bind(new(generation.MessageClient), new(*messages.Client)),
		wire.Bind(new(reading.Generator), new(*generation.Client)),
		wire.Bind(new(reading.SessionStore), new(*sessionstore.MemoryStore)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
