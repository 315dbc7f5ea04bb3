package research

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk shape of a research policy document.
type policyFile struct {
	Research struct {
		MinCompetitors *int `yaml:"min_competitors"`
		CoverageMinMet *int `yaml:"coverage_min_met"`
	} `yaml:"research"`
}

// LoadPolicy reads threshold overrides from a YAML file. Keys absent
// from the file keep their defaults; a missing file is an error so
// typoed paths fail loudly.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, eris.Wrapf(err, "read policy file %s", path)
	}

	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return p, eris.Wrapf(err, "parse policy file %s", path)
	}

	if f.Research.MinCompetitors != nil {
		p.MinCompetitors = *f.Research.MinCompetitors
	}
	if f.Research.CoverageMinMet != nil {
		p.CoverageMinMet = *f.Research.CoverageMinMet
	}

	if err := p.Validate(); err != nil {
		return DefaultPolicy(), eris.Wrapf(err, "invalid policy file %s", path)
	}
	return p, nil
}

// Validate rejects thresholds that would disable the pipeline outright.
func (p Policy) Validate() error {
	if p.MinCompetitors < 0 {
		return eris.New("min_competitors must be >= 0")
	}
	if p.CoverageMinMet < 0 || p.CoverageMinMet > len(coverageChecks) {
		return eris.Errorf("coverage_min_met must be between 0 and %d", len(coverageChecks))
	}
	return nil
}
