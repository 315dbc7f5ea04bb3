package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/enrich"
	"github.com/DavidEscobar2707/bta-onboarding/internal/research"
	"github.com/DavidEscobar2707/bta-onboarding/internal/research/provider"
	"github.com/DavidEscobar2707/bta-onboarding/internal/scrape"
	"github.com/DavidEscobar2707/bta-onboarding/internal/store"
	"github.com/DavidEscobar2707/bta-onboarding/internal/workspace"
	"github.com/DavidEscobar2707/bta-onboarding/pkg/firecrawl"
	"github.com/DavidEscobar2707/bta-onboarding/pkg/google"
	"github.com/DavidEscobar2707/bta-onboarding/pkg/jina"
	"github.com/DavidEscobar2707/bta-onboarding/pkg/notion"
)

// appEnv wires the application's components from configuration.
type appEnv struct {
	Store        store.Store
	Orchestrator *research.Orchestrator
	Reviews      *enrich.ReviewLookup
	Writer       *workspace.NotionWriter
	CacheTTL     time.Duration
}

// initEnv builds the full environment: store, provider router,
// scraper chain, orchestrator, and optional enrichment/workspace
// clients.
func initEnv(ctx context.Context) (*appEnv, error) {
	env := &appEnv{
		CacheTTL: time.Duration(cfg.Store.CacheTTLHours) * time.Hour,
	}

	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		env.Store = st
	case "sqlite", "":
		st, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite store")
		}
		env.Store = st
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err := env.Store.Migrate(ctx); err != nil {
		_ = env.Store.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	providers := []provider.Provider{
		provider.NewGemini(cfg.Gemini.Key, cfg.Gemini.Model),
		provider.NewPerplexity(cfg.Perplexity.Key, cfg.Perplexity.Model),
		provider.NewClaude(cfg.Anthropic.Key, cfg.Anthropic.Model),
	}

	primary := provider.ID(cfg.Research.PrimaryProvider)
	if !primary.Valid() {
		zap.L().Warn("unknown primary provider, using gemini",
			zap.String("configured", cfg.Research.PrimaryProvider),
		)
		primary = provider.Gemini
	}
	router := research.NewRouter(providers, primary, cfg.Research.FallbackEnabled)

	policy := research.DefaultPolicy()
	if cfg.Research.PolicyFile != "" {
		p, err := research.LoadPolicy(cfg.Research.PolicyFile)
		if err != nil {
			_ = env.Store.Close()
			return nil, err
		}
		policy = p
	}

	opts := []research.OrchestratorOption{
		research.WithPolicy(policy),
		research.WithAttemptTimeout(time.Duration(cfg.Research.AttemptTimeoutSecs) * time.Second),
	}
	if cfg.Research.ScrapeEnabled {
		fetchers := []scrape.Fetcher{scrape.NewLocalFetcher()}
		if cfg.Jina.Key != "" {
			fetchers = append(fetchers, scrape.NewJinaFetcher(jina.NewClient(cfg.Jina.Key)))
		}
		if cfg.Firecrawl.Key != "" {
			fetchers = append(fetchers, scrape.NewFirecrawlFetcher(firecrawl.NewClient(cfg.Firecrawl.Key)))
		}
		opts = append(opts, research.WithScraper(scrape.NewStructuralScraper(scrape.NewChain(fetchers...))))
	}
	env.Orchestrator = research.NewOrchestrator(router, opts...)

	if cfg.Places.Key != "" {
		env.Reviews = enrich.NewReviewLookup(google.NewClient(cfg.Places.Key))
	}
	if cfg.Notion.Token != "" && cfg.Notion.CompanyDB != "" {
		env.Writer = workspace.NewNotionWriter(notion.NewClient(cfg.Notion.Token), cfg.Notion.CompanyDB)
	}

	return env, nil
}

func (e *appEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}
