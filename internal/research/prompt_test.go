package research

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

var promptNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestBuildPromptDeterministic(t *testing.T) {
	req := PromptRequest{Domain: "acme.io", Role: model.RoleClient, Intensity: IntensityLite, Now: promptNow}
	assert.Equal(t, BuildPrompt(req), BuildPrompt(req))
}

func TestBuildPromptDateToken(t *testing.T) {
	p := BuildPrompt(PromptRequest{Domain: "acme.io", Role: model.RoleClient, Intensity: IntensityLite, Now: promptNow})
	assert.Contains(t, p, "Today's date is 2026-08-30")
}

func TestBuildPromptClientRole(t *testing.T) {
	p := BuildPrompt(PromptRequest{Domain: "acme.io", Role: model.RoleClient, Intensity: IntensityLite, Now: promptNow})
	assert.Contains(t, p, "CLIENT being onboarded")
	assert.Contains(t, p, "leave the *VsTarget fields null")
	assert.NotContains(t, p, "strengthVsTarget")
}

func TestBuildPromptCompetitorRole(t *testing.T) {
	p := BuildPrompt(PromptRequest{
		Domain:    "rival.com",
		Role:      model.RoleCompetitor,
		Intensity: IntensityCompetitorEnriched,
		Comparison: &model.ComparisonContext{
			Domain:   "acme.io",
			Name:     "Acme",
			USP:      "fastest onboarding",
			Features: []string{"A", "B"},
		},
		Now: promptNow,
	})
	assert.Contains(t, p, "TARGET COMPANY: Acme (acme.io)")
	assert.Contains(t, p, `Search for "rival.com vs acme.io"`)
	assert.Contains(t, p, "strengthVsTarget")
	assert.Contains(t, p, "reviewProfiles")
}

func TestBuildPromptSchemaByIntensity(t *testing.T) {
	base := PromptRequest{Domain: "acme.io", Role: model.RoleClient, Now: promptNow}

	fastest := base
	fastest.Intensity = IntensityFastest
	p := BuildPrompt(fastest)
	assert.NotContains(t, p, "integrations")
	assert.Contains(t, p, `"confidence"`)

	lite := base
	lite.Intensity = IntensityLite
	p = BuildPrompt(lite)
	assert.Contains(t, p, "integrations")
	assert.NotContains(t, p, "searchesPerformed")

	master := base
	master.Intensity = IntensityMaster
	p = BuildPrompt(master)
	assert.Contains(t, p, "searchesPerformed")
	assert.Contains(t, p, "developerProfiles")
}

func TestBuildPromptScrapedContext(t *testing.T) {
	p := BuildPrompt(PromptRequest{
		Domain:    "acme.io",
		Role:      model.RoleClient,
		Intensity: IntensityLite,
		Scraped: &model.StructuralContext{
			Headline:     "Onboard customers in minutes",
			PricingModel: "per-seat",
		},
		Now: promptNow,
	})
	assert.Contains(t, p, "KNOWN FACTS")
	assert.Contains(t, p, "Onboard customers in minutes")
	assert.Contains(t, p, "per-seat")
}

func TestBuildPromptPostcallSnapshot(t *testing.T) {
	snapshot := Normalize(map[string]any{"domain": "acme.io", "about": "already known"})
	p := BuildPrompt(PromptRequest{
		Domain:    "acme.io",
		Role:      model.RoleClient,
		Intensity: IntensityPostcallEnrichment,
		Enrichment: &model.EnrichmentContext{
			Snapshot:             snapshot,
			TranscriptHighlights: []string{"we sell to dental clinics"},
			BlogSignals:          []string{"posts weekly about compliance"},
		},
		Now: promptNow,
	})
	assert.Contains(t, p, "CURRENT DATA SNAPSHOT")
	assert.Contains(t, p, "already known")
	assert.Contains(t, p, "we sell to dental clinics")
	assert.Contains(t, p, "posts weekly about compliance")
}

func TestBuildCompetitorDiscoveryPrompt(t *testing.T) {
	known := []model.CompetitorRef{{Domain: "foo.com", Name: "Foo"}}
	p := BuildCompetitorDiscoveryPrompt("acme.io", known, 4, promptNow)

	assert.Contains(t, p, "do NOT repeat these")
	assert.Contains(t, p, "Foo (foo.com)")
	assert.Contains(t, p, "at least 4 additional competitors")
	assert.Contains(t, p, `"competitors"`)

	empty := BuildCompetitorDiscoveryPrompt("acme.io", nil, 5, promptNow)
	assert.NotContains(t, empty, "do NOT repeat these")
}

func TestPromptsCarryGuardrails(t *testing.T) {
	for _, intensity := range []Intensity{IntensityFastest, IntensityLite, IntensityMaster} {
		p := BuildPrompt(PromptRequest{Domain: "acme.io", Role: model.RoleClient, Intensity: intensity, Now: promptNow})
		assert.True(t, strings.Contains(p, "STRICT RULES"), "intensity %s missing guardrails", intensity)
		assert.True(t, strings.Contains(p, "COMPETITOR VALIDATION RUBRIC"), "intensity %s missing rubric", intensity)
	}
}
