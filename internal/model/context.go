package model

import "time"

// StructuralContext holds known facts scraped directly from the subject's
// website before any provider call. It is best-effort: any subset of
// fields may be empty, and the orchestrator treats scrape failure as "no
// context available".
type StructuralContext struct {
	Headline              string            `json:"headline"`
	Subheadline           string            `json:"subheadline"`
	ValueProps            []string          `json:"value_props"`
	Features              []string          `json:"features"`
	Industries            []string          `json:"industries"`
	ComplianceMentions    []string          `json:"compliance_mentions"`
	PricingModel          string            `json:"pricing_model"`
	Keywords              []string          `json:"keywords"`
	IntegrationsMentioned []string          `json:"integrations_mentioned"`
	PageResults           map[string]string `json:"page_results"`
}

// ComparisonContext describes the client company a competitor is being
// compared against.
type ComparisonContext struct {
	Domain   string   `json:"domain"`
	Name     string   `json:"name"`
	USP      string   `json:"usp,omitempty"`
	ICP      string   `json:"icp,omitempty"`
	Features []string `json:"features,omitempty"`
}

// EnrichmentContext carries post-call signals for the fill-missing
// backfill pass: the current record snapshot plus interview transcript
// highlights and blog-derived topics.
type EnrichmentContext struct {
	Snapshot             *ResearchRecord `json:"snapshot"`
	TranscriptHighlights []string        `json:"transcript_highlights,omitempty"`
	BlogSignals          []string        `json:"blog_signals,omitempty"`
}

// RunStatus tracks a persisted research run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusResearching RunStatus = "researching"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Run is one persisted research invocation.
type Run struct {
	ID        string          `json:"id"`
	Domain    string          `json:"domain"`
	Role      Role            `json:"role"`
	Status    RunStatus       `json:"status"`
	Record    *ResearchRecord `json:"record,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
