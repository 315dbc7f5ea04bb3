package research

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPolicy(t *testing.T) {
	t.Run("overrides applied", func(t *testing.T) {
		path := writePolicyFile(t, "research:\n  min_competitors: 3\n  coverage_min_met: 10\n")
		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, 3, p.MinCompetitors)
		assert.Equal(t, 10, p.CoverageMinMet)
	})

	t.Run("absent keys keep defaults", func(t *testing.T) {
		path := writePolicyFile(t, "research:\n  min_competitors: 2\n")
		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, 2, p.MinCompetitors)
		assert.Equal(t, DefaultPolicy().CoverageMinMet, p.CoverageMinMet)
	})

	t.Run("empty file keeps all defaults", func(t *testing.T) {
		path := writePolicyFile(t, "")
		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicy(), p)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("out-of-range threshold is rejected", func(t *testing.T) {
		path := writePolicyFile(t, "research:\n  coverage_min_met: 99\n")
		p, err := LoadPolicy(path)
		assert.Error(t, err)
		assert.Equal(t, DefaultPolicy(), p, "invalid file falls back to defaults")
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := writePolicyFile(t, "research: [not a map")
		_, err := LoadPolicy(path)
		assert.Error(t, err)
	})
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.Error(t, Policy{MinCompetitors: -1, CoverageMinMet: 8}.Validate())
	assert.Error(t, Policy{MinCompetitors: 5, CoverageMinMet: len(coverageChecks) + 1}.Validate())
	assert.NoError(t, Policy{MinCompetitors: 0, CoverageMinMet: 0}.Validate())
}
