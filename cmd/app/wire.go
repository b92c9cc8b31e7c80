//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/faq-assistant/internal/bootstrap"
	"github.com/yanqian/faq-assistant/internal/domain/faq"
	"github.com/yanqian/faq-assistant/internal/domain/query"
	"github.com/yanqian/faq-assistant/internal/domain/semantics"
	"github.com/yanqian/faq-assistant/internal/domain/session"
	"github.com/yanqian/faq-assistant/internal/domain/user"
	"github.com/yanqian/faq-assistant/internal/infra/config"
	"github.com/yanqian/faq-assistant/internal/infra/embeddings"
	"github.com/yanqian/faq-assistant/internal/infra/metrics"
	httpiface "github.com/yanqian/faq-assistant/internal/interface/http"
	"github.com/yanqian/faq-assistant/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.New,
		providePostgresPool,
		provideFAQRepository,
		provideUserRepository,
		provideQueryRepository,
		provideAuditRepository,
		provideSessionRepository,
		provideRecencyCache,
		provideEmbeddingClient,
		provideEngine,
		provideQueryConfig,
		faq.NewService,
		user.NewService,
		session.NewService,
		query.NewService,
		wire.Bind(new(faq.Embedder), new(*embeddings.Client)),
		wire.Bind(new(query.Matcher), new(*semantics.Engine)),
		wire.Bind(new(query.MetricsRecorder), new(*metrics.Metrics)),
		wire.Bind(new(user.Invalidator), new(query.RecencyCache)),
		wire.Bind(new(session.SnapshotCache), new(query.RecencyCache)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
