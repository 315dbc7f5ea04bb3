package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

func strPtr(s string) *string { return &s }

func thinRecord() *model.ResearchRecord {
	return Normalize(map[string]any{
		"domain":     "acme.io",
		"about":      "Acme builds onboarding software.",
		"niche":      "SMB onboarding",
		"features":   []any{"A", "B", "C"},
		"confidence": "medium",
	})
}

func TestShouldEscalate(t *testing.T) {
	t.Run("nil record escalates", func(t *testing.T) {
		assert.True(t, ShouldEscalate(nil))
	})

	t.Run("medium confidence with narratives and three features holds", func(t *testing.T) {
		assert.False(t, ShouldEscalate(thinRecord()))
	})

	t.Run("two features escalates", func(t *testing.T) {
		rec := thinRecord()
		rec.Features = []string{"A", "B"}
		assert.True(t, ShouldEscalate(rec))
	})

	t.Run("low confidence escalates", func(t *testing.T) {
		rec := thinRecord()
		rec.Confidence = model.ConfidenceLow
		assert.True(t, ShouldEscalate(rec))
	})

	t.Run("missing about escalates", func(t *testing.T) {
		rec := thinRecord()
		rec.About = nil
		assert.True(t, ShouldEscalate(rec))
	})

	t.Run("missing niche escalates", func(t *testing.T) {
		rec := thinRecord()
		rec.Niche = strPtr("")
		assert.True(t, ShouldEscalate(rec))
	})
}

func TestCoverageMet(t *testing.T) {
	t.Run("nil record fails everything", func(t *testing.T) {
		met, unmet := CoverageMet(nil)
		assert.Equal(t, 0, met)
		assert.Len(t, unmet, len(coverageChecks))
	})

	t.Run("empty record fails everything", func(t *testing.T) {
		met, unmet := CoverageMet(Normalize(map[string]any{}))
		assert.Equal(t, 0, met)
		assert.Equal(t, []string{
			"about", "usp", "icp", "niche", "features", "integrations",
			"pricing", "compliance", "reviews", "customer_proof",
			"company_scale", "reachability",
		}, unmet)
	})

	t.Run("partial record reports unmet names", func(t *testing.T) {
		met, unmet := CoverageMet(thinRecord())
		assert.Equal(t, 3, met) // about, niche, features
		assert.Contains(t, unmet, "usp")
		assert.Contains(t, unmet, "pricing")
		assert.NotContains(t, unmet, "about")
		assert.NotContains(t, unmet, "features")
	})

	t.Run("either branch satisfies compound checks", func(t *testing.T) {
		rec := Normalize(map[string]any{
			"notableCustomers": []any{"BigCo"},
			"teamSize":         "11-50",
			"contact":          []any{map[string]any{"label": "sales", "value": "sales@acme.io", "type": "email"}},
		})
		_, unmet := CoverageMet(rec)
		assert.NotContains(t, unmet, "customer_proof")
		assert.NotContains(t, unmet, "company_scale")
		assert.NotContains(t, unmet, "reachability")
	})
}

func TestPolicyUnderCovered(t *testing.T) {
	policy := Policy{MinCompetitors: 5, CoverageMinMet: 3}

	assert.False(t, policy.UnderCovered(thinRecord()), "meets exactly the threshold")

	policy.CoverageMinMet = 4
	assert.True(t, policy.UnderCovered(thinRecord()))
}

func TestNeedsCompetitorRecovery(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, policy.NeedsCompetitorRecovery(nil))

	rec := thinRecord()
	rec.Competitors = []model.CompetitorRef{{Domain: "a.com"}, {Domain: "b.com"}}
	assert.True(t, policy.NeedsCompetitorRecovery(rec))

	for _, d := range []string{"c.com", "d.com", "e.com"} {
		rec.Competitors = append(rec.Competitors, model.CompetitorRef{Domain: d})
	}
	assert.False(t, policy.NeedsCompetitorRecovery(rec))
}
