package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

func TestSanitizeCompetitor(t *testing.T) {
	t.Run("domain field wins", func(t *testing.T) {
		ref := SanitizeCompetitor(map[string]any{
			"domain": "https://www.Foo.com/pricing",
			"name":   "Foo Inc",
			"reason": "same buyer",
		})
		require.NotNil(t, ref)
		assert.Equal(t, "foo.com", ref.Domain)
		assert.Equal(t, "Foo Inc", ref.Name)
		assert.Equal(t, "same buyer", ref.Reason)
	})

	t.Run("falls back through url and website", func(t *testing.T) {
		ref := SanitizeCompetitor(map[string]any{"website": "bar.io"})
		require.NotNil(t, ref)
		assert.Equal(t, "bar.io", ref.Domain)
		assert.Equal(t, "Bar", ref.Name)
	})

	t.Run("name used as domain when it looks like one", func(t *testing.T) {
		ref := SanitizeCompetitor(map[string]any{"name": "baz.com"})
		require.NotNil(t, ref)
		assert.Equal(t, "baz.com", ref.Domain)
		assert.Equal(t, "Baz", ref.Name)
	})

	t.Run("rejected without a dotted host", func(t *testing.T) {
		assert.Nil(t, SanitizeCompetitor(map[string]any{"name": "Just A Name"}))
		assert.Nil(t, SanitizeCompetitor(map[string]any{}))
		assert.Nil(t, SanitizeCompetitor(nil))
	})
}

func TestSanitizeCompetitors(t *testing.T) {
	out := SanitizeCompetitors([]any{
		map[string]any{"domain": "foo.com", "name": "Foo"},
		"bar.io",
		map[string]any{"name": "no domain here"},
		42,
	})
	require.Len(t, out, 2)
	assert.Equal(t, "foo.com", out[0].Domain)
	assert.Equal(t, "bar.io", out[1].Domain)
}

func TestMergeAndDedupe(t *testing.T) {
	a := []model.CompetitorRef{
		{Domain: "a.com", Name: "A"},
		{Domain: "A.com", Name: "A dup"},
	}
	b := []model.CompetitorRef{
		{Domain: "a.com", Name: "A again"},
		{Domain: "b.com", Name: "B"},
	}

	out := MergeAndDedupe(a, b)
	require.Len(t, out, 2)
	assert.Equal(t, "a.com", out[0].Domain)
	assert.Equal(t, "A", out[0].Name, "first occurrence wins")
	assert.Equal(t, "b.com", out[1].Domain)
}

func TestMergeAndDedupeDropsEmptyDomains(t *testing.T) {
	out := MergeAndDedupe([]model.CompetitorRef{{Domain: "", Name: "ghost"}})
	assert.Empty(t, out)
}

func TestMergeAndDedupeEmptyInputsYieldEmptySlice(t *testing.T) {
	out := MergeAndDedupe(nil, nil)
	require.NotNil(t, out, "result must serialize as [] rather than null")
	assert.Empty(t, out)

	out = MergeAndDedupe([]model.CompetitorRef{}, nil)
	assert.NotNil(t, out)
}
