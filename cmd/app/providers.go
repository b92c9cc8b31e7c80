package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-assistant/internal/domain/audit"
	"github.com/yanqian/faq-assistant/internal/domain/faq"
	"github.com/yanqian/faq-assistant/internal/domain/query"
	"github.com/yanqian/faq-assistant/internal/domain/semantics"
	"github.com/yanqian/faq-assistant/internal/domain/session"
	"github.com/yanqian/faq-assistant/internal/domain/user"
	"github.com/yanqian/faq-assistant/internal/infra/auditrepo"
	"github.com/yanqian/faq-assistant/internal/infra/config"
	"github.com/yanqian/faq-assistant/internal/infra/embeddings"
	"github.com/yanqian/faq-assistant/internal/infra/faqrepo"
	"github.com/yanqian/faq-assistant/internal/infra/metrics"
	"github.com/yanqian/faq-assistant/internal/infra/queryrepo"
	"github.com/yanqian/faq-assistant/internal/infra/recencycache"
	"github.com/yanqian/faq-assistant/internal/infra/sessionrepo"
	"github.com/yanqian/faq-assistant/internal/infra/userrepo"
)

// providePostgresPool connects to Postgres, or returns nil so every
// repository falls back to its in-memory implementation.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideFAQRepository(pool *pgxpool.Pool) faq.Repository {
	if pool == nil {
		return faqrepo.NewMemory()
	}
	return faqrepo.NewPostgres(pool)
}

func provideUserRepository(pool *pgxpool.Pool) user.Repository {
	if pool == nil {
		return userrepo.NewMemory()
	}
	return userrepo.NewPostgres(pool)
}

func provideQueryRepository(pool *pgxpool.Pool) query.Repository {
	if pool == nil {
		return queryrepo.NewMemory()
	}
	return queryrepo.NewPostgres(pool)
}

func provideAuditRepository(pool *pgxpool.Pool) audit.Repository {
	if pool == nil {
		return auditrepo.NewMemory()
	}
	return auditrepo.NewPostgres(pool)
}

func provideSessionRepository(pool *pgxpool.Pool) session.Repository {
	if pool == nil {
		return sessionrepo.NewMemory()
	}
	return sessionrepo.NewPostgres(pool)
}

// provideRecencyCache prefers the shared Valkey backend and falls back to
// the in-process cache when Valkey is disabled or unreachable.
func provideRecencyCache(cfg *config.Config, logger *slog.Logger) query.RecencyCache {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return newMemoryCache(cfg, logger)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return newMemoryCache(cfg, logger)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey recency cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return recencycache.NewValkey(client, cfg.Cache.TTL, cfg.Cache.MaxQueriesPerUser, logger)
		}
	}
	return newMemoryCache(cfg, logger)
}

func newMemoryCache(cfg *config.Config, logger *slog.Logger) *recencycache.Memory {
	return recencycache.NewMemory(cfg.Cache.TTL, cfg.Cache.MaxQueriesPerUser, cfg.Cache.SweepInterval, logger)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideEmbeddingClient(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *embeddings.Client {
	return embeddings.NewClient(embeddings.Config{
		BaseURL: cfg.Embedding.BaseURL,
		Token:   cfg.Embedding.Token,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout,
	}, m, logger)
}

func provideEngine(repo faq.Repository, client *embeddings.Client, logger *slog.Logger) *semantics.Engine {
	return semantics.NewEngine(repo, client, logger)
}

func provideQueryConfig(cfg *config.Config) query.Config {
	return query.Config{
		SemanticMatchLimit:  cfg.Context.SemanticMatchLimit,
		RecentQueriesLimit:  cfg.Context.RecentQueriesLimit,
		SimilarityThreshold: cfg.Context.SimilarityThreshold,
		FallbackAnswer:      cfg.Context.FallbackAnswer,
		AnalyticsLimit:      cfg.Analytics.DefaultLimit,
	}
}
