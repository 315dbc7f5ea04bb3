package research

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
	"github.com/DavidEscobar2707/bta-onboarding/internal/research/provider"
)

// Scraper supplies pre-research structural facts from the subject's own
// site. Any failure is treated as "no context available".
type Scraper interface {
	ScrapeStructuralData(ctx context.Context, domain string) (*model.StructuralContext, error)
}

// Orchestrator sequences prompt construction, provider routing,
// normalization, and escalation into the public research operations.
// Safe for concurrent use: all per-request state (the provider skip set
// included) is created inside each call.
type Orchestrator struct {
	router  *Router
	scraper Scraper
	policy  Policy
	timeout time.Duration
	now     func() time.Time
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithScraper attaches a structural scraper for pre-research context.
func WithScraper(s Scraper) OrchestratorOption {
	return func(o *Orchestrator) { o.scraper = s }
}

// WithPolicy overrides the default escalation thresholds.
func WithPolicy(p Policy) OrchestratorOption {
	return func(o *Orchestrator) { o.policy = p }
}

// WithAttemptTimeout bounds each individual provider attempt.
func WithAttemptTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator builds an orchestrator over the given router.
func NewOrchestrator(router *Router, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		router:  router,
		policy:  DefaultPolicy(),
		timeout: 3 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// callOptions builds the per-call router options sharing one request's
// skip set. A provider that times out or reports quota exhaustion while
// primary is excluded from every later stage of the same request.
func (o *Orchestrator) callOptions(skip map[provider.ID]bool) CallOptions {
	return CallOptions{
		Timeout: o.timeout,
		Skip:    skip,
		OnPrimaryFailure: func(id provider.ID, err error) {
			if errors.Is(err, context.DeadlineExceeded) || IsQuotaExhausted(err) {
				skip[id] = true
				zap.L().Info("provider excluded for remainder of request",
					zap.String("provider", string(id)),
					zap.Error(err),
				)
			}
		},
	}
}

// ResearchDomain runs the full client research pipeline for a domain:
// optional structural scrape, lite research, escalation to the master
// prompt when the lite pass under-delivers, and a competitor discovery
// recovery pass when too few competitors were found. Only a total
// provider failure on the primary pass is fatal; every secondary pass
// degrades gracefully to the best result so far.
func (o *Orchestrator) ResearchDomain(ctx context.Context, rawDomain string) (*model.DomainResult, error) {
	domain := CanonicalizeDomain(rawDomain)
	if domain == "" {
		return nil, eris.Errorf("unusable domain %q", rawDomain)
	}

	log := zap.L().With(zap.String("domain", domain))
	skip := make(map[provider.ID]bool)

	var scraped *model.StructuralContext
	if o.scraper != nil {
		var err error
		scraped, err = o.scraper.ScrapeStructuralData(ctx, domain)
		if err != nil {
			log.Warn("structural scrape failed, proceeding without context", zap.Error(err))
			scraped = nil
		}
	}

	prompt := BuildPrompt(PromptRequest{
		Domain:    domain,
		Role:      model.RoleClient,
		Intensity: IntensityLite,
		Scraped:   scraped,
		Now:       o.now(),
	})
	raw, usedProvider, err := o.router.Call(ctx, prompt, "lite", o.callOptions(skip))
	if err != nil {
		return nil, eris.Wrapf(err, "primary research pass for %s", domain)
	}
	rec := o.finishRecord(raw, domain)
	log.Info("lite research complete",
		zap.String("provider", string(usedProvider)),
		zap.Int("competitors", len(rec.Competitors)),
	)

	if ShouldEscalate(rec) {
		rec = o.escalateToMaster(ctx, domain, scraped, rec, skip, log)
	}

	if o.policy.NeedsCompetitorRecovery(rec) {
		rec.Competitors = o.recoverCompetitors(ctx, domain, rec.Competitors, skip, log)
	}

	return &model.DomainResult{Data: rec, Competitors: rec.Competitors}, nil
}

// escalateToMaster reruns research with the full-depth prompt. On
// success the master record replaces the lite one, keeping competitor
// finds from both passes. On failure the lite record stands.
func (o *Orchestrator) escalateToMaster(ctx context.Context, domain string, scraped *model.StructuralContext, lite *model.ResearchRecord, skip map[provider.ID]bool, log *zap.Logger) *model.ResearchRecord {
	log.Info("escalating to master prompt")
	prompt := BuildPrompt(PromptRequest{
		Domain:    domain,
		Role:      model.RoleClient,
		Intensity: IntensityMaster,
		Scraped:   scraped,
		Now:       o.now(),
	})
	raw, _, err := o.router.Call(ctx, prompt, "master", o.callOptions(skip))
	if err != nil {
		log.Warn("escalation failed, keeping lite result", zap.Error(err))
		return lite
	}
	master := o.finishRecord(raw, domain)
	master.Competitors = MergeAndDedupe(master.Competitors, lite.Competitors)
	return master
}

// recoverCompetitors runs one narrow discovery prompt and merges its
// finds additively behind the ones already known. On failure the known
// list stands.
func (o *Orchestrator) recoverCompetitors(ctx context.Context, domain string, known []model.CompetitorRef, skip map[provider.ID]bool, log *zap.Logger) []model.CompetitorRef {
	log.Info("running competitor discovery recovery",
		zap.Int("found", len(known)),
		zap.Int("min", o.policy.MinCompetitors),
	)
	prompt := BuildCompetitorDiscoveryPrompt(domain, known, o.policy.MinCompetitors, o.now())
	raw, _, err := o.router.Call(ctx, prompt, "competitor-recovery", o.callOptions(skip))
	if err != nil {
		log.Warn("competitor recovery failed, keeping existing list", zap.Error(err))
		return known
	}
	found := SanitizeCompetitors(anyList(raw["competitors"]))
	merged := MergeAndDedupe(known, found)
	log.Info("competitor recovery merged",
		zap.Int("recovered", len(found)),
		zap.Int("total", len(merged)),
	)
	return merged
}

// ResearchCompetitor runs a single-competitor deep dive with the
// enriched profile schema, then a fill-missing backfill pass when the
// result is under-covered. Only total provider failure on the first
// pass is fatal.
func (o *Orchestrator) ResearchCompetitor(ctx context.Context, rawDomain string, comparison *model.ComparisonContext) (*model.CompetitorResult, error) {
	domain := CanonicalizeDomain(rawDomain)
	if domain == "" {
		return nil, eris.Errorf("unusable competitor domain %q", rawDomain)
	}

	log := zap.L().With(zap.String("competitor", domain))
	skip := make(map[provider.ID]bool)

	prompt := BuildPrompt(PromptRequest{
		Domain:     domain,
		Role:       model.RoleCompetitor,
		Intensity:  IntensityCompetitorEnriched,
		Comparison: comparison,
		Now:        o.now(),
	})
	raw, usedProvider, err := o.router.Call(ctx, prompt, "competitor", o.callOptions(skip))
	if err != nil {
		return nil, eris.Wrapf(err, "competitor research for %s", domain)
	}
	rec := o.finishRecord(raw, domain)
	log.Info("competitor research complete", zap.String("provider", string(usedProvider)))

	if o.policy.UnderCovered(rec) {
		met, unmet := CoverageMet(rec)
		log.Info("competitor record under-covered, running backfill",
			zap.Int("met", met),
			zap.Strings("unmet", unmet),
		)
		rec = o.backfill(ctx, domain, model.RoleCompetitor, comparison, rec, nil, skip, log)
	}

	return &model.CompetitorResult{Data: rec}, nil
}

// backfill runs one post-call enrichment pass and merges its output into
// base with fill-missing semantics. On any failure base stands.
func (o *Orchestrator) backfill(ctx context.Context, domain string, role model.Role, comparison *model.ComparisonContext, base *model.ResearchRecord, enrich *model.EnrichmentContext, skip map[provider.ID]bool, log *zap.Logger) *model.ResearchRecord {
	if enrich == nil {
		enrich = &model.EnrichmentContext{}
	}
	enrich.Snapshot = base

	prompt := BuildPrompt(PromptRequest{
		Domain:     domain,
		Role:       role,
		Intensity:  IntensityPostcallEnrichment,
		Comparison: comparison,
		Enrichment: enrich,
		Now:        o.now(),
	})
	raw, _, err := o.router.Call(ctx, prompt, "backfill", o.callOptions(skip))
	if err != nil {
		log.Warn("backfill pass failed, keeping current record", zap.Error(err))
		return base
	}
	merged, err := MergeRecords(base, Normalize(raw))
	if err != nil {
		log.Warn("backfill merge failed, keeping current record", zap.Error(err))
		return base
	}
	if RecordsEquivalent(base, merged) {
		log.Info("backfill contributed no new data")
		return base
	}
	return merged
}

// AutofillRequest carries the current review-stage data set: the client
// record, per-domain competitor records, the known competitor list, and
// post-call signals (interview transcript highlights, blog themes).
type AutofillRequest struct {
	ClientDomain string
	ClientData   *model.ResearchRecord
	CompData     map[string]*model.ResearchRecord
	Competitors  []model.CompetitorRef
	Enrichment   *model.EnrichmentContext
}

// AutofillResult holds fill-missing patches produced by the autofill
// pass. Records that were already well covered are absent.
type AutofillResult struct {
	ClientPatch       *model.ResearchRecord
	CompetitorPatches map[string]*model.ResearchRecord
}

// maxConcurrentBackfills bounds the competitor fan-out during autofill.
const maxConcurrentBackfills = 3

// DataReviewAutofill backfills every under-covered record in a review
// data set. The client record is processed first; competitor records are
// then backfilled concurrently, each with its own request-scoped skip
// set. Individual failures are absorbed: a record that cannot be
// improved is simply left out of the result.
func (o *Orchestrator) DataReviewAutofill(ctx context.Context, req AutofillRequest) (*AutofillResult, error) {
	if req.ClientData == nil && len(req.CompData) == 0 {
		return nil, eris.New("autofill request carries no records")
	}

	out := &AutofillResult{CompetitorPatches: make(map[string]*model.ResearchRecord)}
	clientDomain := CanonicalizeDomain(req.ClientDomain)

	if req.ClientData != nil && o.policy.UnderCovered(req.ClientData) {
		log := zap.L().With(zap.String("domain", clientDomain))
		skip := make(map[provider.ID]bool)
		merged := o.backfill(ctx, clientDomain, model.RoleClient, nil, req.ClientData, req.Enrichment, skip, log)
		if merged != req.ClientData {
			out.ClientPatch = merged
		}
	}

	comparison := comparisonFrom(clientDomain, req.ClientData)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBackfills)
	for rawDomain, rec := range req.CompData {
		if rec == nil || !o.policy.UnderCovered(rec) {
			continue
		}
		domain := CanonicalizeDomain(rawDomain)
		rec := rec
		g.Go(func() error {
			log := zap.L().With(zap.String("competitor", domain))
			skip := make(map[provider.ID]bool)
			merged := o.backfill(gctx, domain, model.RoleCompetitor, comparison, rec, req.Enrichment, skip, log)
			if merged != rec {
				mu.Lock()
				out.CompetitorPatches[domain] = merged
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "competitor autofill")
	}

	return out, nil
}

// comparisonFrom derives the competitor-comparison context from the
// client record, when one is available.
func comparisonFrom(clientDomain string, client *model.ResearchRecord) *model.ComparisonContext {
	if client == nil {
		return nil
	}
	cmp := &model.ComparisonContext{Domain: clientDomain, Features: client.Features}
	if client.Name != nil {
		cmp.Name = *client.Name
	}
	if client.USP != nil {
		cmp.USP = *client.USP
	}
	if client.ICP != nil {
		cmp.ICP = *client.ICP
	}
	return cmp
}

// finishRecord normalizes a raw provider object and stamps the
// request-level fields the provider cannot be trusted to set.
func (o *Orchestrator) finishRecord(raw map[string]any, domain string) *model.ResearchRecord {
	rec := Normalize(raw)
	if rec == nil {
		rec = Normalize(map[string]any{})
	}
	rec.Domain = domain
	if rec.Name == nil || *rec.Name == "" {
		name := NameFromDomain(domain)
		rec.Name = &name
	}
	if rec.ResearchDate == "" {
		rec.ResearchDate = o.now().Format("2006-01-02")
	}
	return rec
}
