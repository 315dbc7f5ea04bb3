package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

func TestNormalizeNilInput(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}

func TestNormalizeEmptyObjectYieldsCompleteShape(t *testing.T) {
	rec := Normalize(map[string]any{})
	require.NotNil(t, rec)

	assert.Nil(t, rec.Name)
	assert.Nil(t, rec.About)
	assert.Nil(t, rec.USP)
	assert.Nil(t, rec.Niche)

	// Every list field must come back as an empty slice, never nil.
	assert.NotNil(t, rec.Features)
	assert.Empty(t, rec.Features)
	assert.NotNil(t, rec.Integrations)
	assert.NotNil(t, rec.Compliance)
	assert.NotNil(t, rec.Pricing)
	assert.NotNil(t, rec.Reviews)
	assert.NotNil(t, rec.Contact)
	assert.NotNil(t, rec.Competitors)
	assert.Empty(t, rec.Competitors)

	// Profile groups carry every known sub-key explicitly.
	assert.Len(t, rec.ReviewProfiles, len(model.ReviewProfileKeys))
	for _, k := range model.ReviewProfileKeys {
		v, present := rec.ReviewProfiles[k]
		assert.True(t, present, "missing review profile key %q", k)
		assert.Nil(t, v)
	}
	assert.Len(t, rec.BusinessProfiles, len(model.BusinessProfileKeys))
	assert.Len(t, rec.AppProfiles, len(model.AppProfileKeys))
}

func TestNormalizeFlattensICPObject(t *testing.T) {
	rec := Normalize(map[string]any{
		"icp": map[string]any{
			"buyerPersona":  "CTO",
			"companySize":   "SMB",
			"industries":    []any{"SaaS", "Fintech"},
			"triggerEvents": []any{"new funding"},
		},
	})
	require.NotNil(t, rec.ICP)
	assert.Equal(t, "CTO — SMB — SaaS, Fintech — new funding", *rec.ICP)
}

func TestNormalizeICPStringIsStable(t *testing.T) {
	in := map[string]any{"icp": "CTO — SMB"}
	first := Normalize(in)
	require.NotNil(t, first.ICP)

	second := Normalize(map[string]any{"icp": *first.ICP})
	require.NotNil(t, second.ICP)
	assert.Equal(t, *first.ICP, *second.ICP, "re-normalizing must not double-flatten")
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := map[string]any{
		"icp":          map[string]any{"buyerPersona": "CTO"},
		"fundingTotal": "$5M",
	}
	_ = Normalize(in)
	_, stillObject := in["icp"].(map[string]any)
	assert.True(t, stillObject, "caller's icp object must survive")
	assert.Equal(t, "$5M", in["fundingTotal"])
}

func TestNormalizeFlattensGroupedFeatures(t *testing.T) {
	rec := Normalize(map[string]any{
		"features": []any{
			map[string]any{"category": "Core", "items": []any{"A", "B"}},
			"C",
			map[string]any{"name": "D"},
			map[string]any{"category": "Empty group"},
		},
	})
	assert.Equal(t, []string{"A", "B", "C", "D", "Empty group"}, rec.Features)
}

func TestNormalizeFunding(t *testing.T) {
	t.Run("object flattened", func(t *testing.T) {
		rec := Normalize(map[string]any{
			"funding": map[string]any{"totalRaised": "$10M", "stage": "Series A"},
		})
		require.NotNil(t, rec.Funding)
		assert.Equal(t, "$10M — Series A", *rec.Funding)
	})

	t.Run("fundingTotal alias fills empty funding", func(t *testing.T) {
		rec := Normalize(map[string]any{"fundingTotal": "$2M"})
		require.NotNil(t, rec.Funding)
		assert.Equal(t, "$2M", *rec.Funding)
	})

	t.Run("canonical funding beats alias", func(t *testing.T) {
		rec := Normalize(map[string]any{"funding": "$9M", "fundingTotal": "$2M"})
		require.NotNil(t, rec.Funding)
		assert.Equal(t, "$9M", *rec.Funding)
	})

	t.Run("employeeRange alias fills teamSize", func(t *testing.T) {
		rec := Normalize(map[string]any{"employeeRange": "11-50"})
		require.NotNil(t, rec.TeamSize)
		assert.Equal(t, "11-50", *rec.TeamSize)
	})
}

func TestNormalizeSupportSeedsActiveHours(t *testing.T) {
	rec := Normalize(map[string]any{
		"support": map[string]any{
			"channels": []any{"email", "chat"},
			"hours":    "24/7",
		},
	})
	require.NotNil(t, rec.Support)
	assert.Equal(t, "email, chat — 24/7", *rec.Support)
	require.NotNil(t, rec.ActiveHours)
	assert.Equal(t, "24/7", *rec.ActiveHours)
}

func TestNormalizeCoercesScalars(t *testing.T) {
	rec := Normalize(map[string]any{
		"yearFounded": float64(2016),
		"teamSize":    float64(42),
	})
	require.NotNil(t, rec.YearFounded)
	assert.Equal(t, "2016", *rec.YearFounded)
	require.NotNil(t, rec.TeamSize)
	assert.Equal(t, "42", *rec.TeamSize)
}

func TestNormalizePricingVariants(t *testing.T) {
	tier := map[string]any{"tier": "Pro", "price": "$49", "period": "month", "features": []any{"API"}}

	fromArray := Normalize(map[string]any{"pricing": []any{tier}})
	require.Len(t, fromArray.Pricing, 1)
	assert.Equal(t, "Pro", fromArray.Pricing[0].Tier)
	assert.Equal(t, []string{"API"}, fromArray.Pricing[0].Features)

	fromObject := Normalize(map[string]any{"pricing": map[string]any{"model": "per-seat", "tiers": []any{tier}}})
	require.Len(t, fromObject.Pricing, 1)
	assert.Equal(t, "$49", fromObject.Pricing[0].Price)
}

func TestNormalizeDedupesCompetitors(t *testing.T) {
	rec := Normalize(map[string]any{
		"competitors": []any{
			map[string]any{"domain": "foo.com", "name": "Foo"},
			map[string]any{"domain": "https://www.FOO.com/", "name": "Foo again"},
			map[string]any{"name": "no domain"},
		},
	})
	require.Len(t, rec.Competitors, 1)
	assert.Equal(t, "foo.com", rec.Competitors[0].Domain)
	assert.Equal(t, "Foo", rec.Competitors[0].Name)
}

func TestNormalizeConfidenceLowercased(t *testing.T) {
	rec := Normalize(map[string]any{"confidence": "High"})
	assert.Equal(t, model.ConfidenceHigh, rec.Confidence)
}
