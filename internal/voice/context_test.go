package voice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

func strPtr(s string) *string { return &s }

func TestBuildAgentContext(t *testing.T) {
	client := &model.ResearchRecord{
		Name:             strPtr("Acme"),
		Domain:           "acme.io",
		About:            strPtr("Acme automates onboarding."),
		USP:              strPtr("Fastest time to value"),
		ICP:              strPtr("CTO at SMB SaaS"),
		Tone:             strPtr("friendly, direct"),
		Features:         []string{"Playbooks", "Analytics"},
		CommonObjections: []string{"price", "migration effort"},
		Pricing: []model.PricingTier{
			{Tier: "Starter", Price: "$29"},
			{Tier: "Pro"},
			{Price: "$99"}, // no tier name, skipped
		},
		Support:    strPtr("email and chat"),
		Confidence: model.ConfidenceHigh,
	}
	competitors := map[string]*model.ResearchRecord{
		"rival.com": {
			Name:             strPtr("Rival"),
			Domain:           "rival.com",
			StrengthVsTarget: strPtr("Enterprise integrations"),
			WeaknessVsTarget: strPtr("Slow setup"),
		},
		"ghost.io": nil,
	}

	out := BuildAgentContext(client, competitors)

	assert.Contains(t, out, "COMPANY: Acme (acme.io)")
	assert.Contains(t, out, "About: Acme automates onboarding.")
	assert.Contains(t, out, "Unique selling point: Fastest time to value")
	assert.Contains(t, out, "Ideal customer: CTO at SMB SaaS")
	assert.Contains(t, out, "Key features: Playbooks, Analytics")
	assert.Contains(t, out, "Pricing: Starter at $29, Pro")
	assert.Contains(t, out, "Common objections to expect: price, migration effort")
	assert.Contains(t, out, "Support: email and chat")

	assert.Contains(t, out, "COMPETITIVE LANDSCAPE:")
	assert.Contains(t, out, "- Rival (rival.com): their edge is enterprise integrations; their weakness is slow setup")
	assert.NotContains(t, out, "ghost.io", "nil competitor records are skipped")

	assert.NotContains(t, out, "NOTE: research confidence is low")
	assert.NotContains(t, out, "null")
}

func TestBuildAgentContextSkipsMissingFields(t *testing.T) {
	out := BuildAgentContext(&model.ResearchRecord{Domain: "bare.io"}, nil)

	assert.Equal(t, "COMPANY: bare.io (bare.io)", out, "only the header renders for an empty record")
}

func TestBuildAgentContextNilClient(t *testing.T) {
	assert.Equal(t, "", BuildAgentContext(nil, nil))
}

func TestBuildAgentContextLowConfidenceNote(t *testing.T) {
	out := BuildAgentContext(&model.ResearchRecord{
		Domain:     "acme.io",
		Confidence: model.ConfidenceLow,
	}, nil)
	assert.Contains(t, out, "NOTE: research confidence is low")
}

func TestBuildAgentContextCapsLists(t *testing.T) {
	features := make([]string, 10)
	for i := range features {
		features[i] = "Feature" + string(rune('A'+i))
	}
	out := BuildAgentContext(&model.ResearchRecord{
		Domain:   "acme.io",
		Features: features,
	}, nil)

	assert.Contains(t, out, "FeatureF")
	assert.NotContains(t, out, "FeatureG", "list capped at six entries")
}

func TestBuildAgentContextCapsCompetitors(t *testing.T) {
	competitors := make(map[string]*model.ResearchRecord, 8)
	for _, d := range []string{"a.com", "b.com", "c.com", "d.com", "e.com", "f.com", "g.com", "h.com"} {
		competitors[d] = &model.ResearchRecord{Domain: d}
	}

	out := BuildAgentContext(&model.ResearchRecord{Domain: "acme.io"}, competitors)
	listed := strings.Count(out, "\n- ")
	require.LessOrEqual(t, listed, maxListed)
	assert.Greater(t, listed, 0)
}

func TestBuildAgentContextCompetitorOrderIsStable(t *testing.T) {
	competitors := map[string]*model.ResearchRecord{
		"zeta.com":  {Domain: "zeta.com"},
		"alpha.com": {Domain: "alpha.com"},
		"mid.io":    {Domain: "mid.io"},
	}
	client := &model.ResearchRecord{Domain: "acme.io"}

	first := BuildAgentContext(client, competitors)
	idxAlpha := strings.Index(first, "alpha.com")
	idxMid := strings.Index(first, "mid.io")
	idxZeta := strings.Index(first, "zeta.com")
	assert.True(t, idxAlpha < idxMid && idxMid < idxZeta, "competitors listed in domain order")

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildAgentContext(client, competitors))
	}
}
