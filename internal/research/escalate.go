package research

import (
	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

// Policy holds the thresholds that drive escalation and recovery.
type Policy struct {
	// MinCompetitors is the competitor count below which a dedicated
	// discovery pass runs after primary research.
	MinCompetitors int `yaml:"min_competitors"`

	// CoverageMinMet is how many coverage checks must pass before a
	// competitor record is considered complete enough to skip backfill.
	CoverageMinMet int `yaml:"coverage_min_met"`
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinCompetitors: 5,
		CoverageMinMet: 8,
	}
}

// ShouldEscalate decides whether a lite research pass was too thin and
// the full-depth prompt should rerun. Any one trigger is enough: the
// provider self-reported low confidence, a core narrative (about or
// niche) is missing, or fewer than three features came back.
func ShouldEscalate(rec *model.ResearchRecord) bool {
	if rec == nil {
		return true
	}
	if rec.Confidence == model.ConfidenceLow {
		return true
	}
	if isBlank(rec.About) || isBlank(rec.Niche) {
		return true
	}
	return len(rec.Features) < 3
}

// coverageChecks are the per-record completeness probes, evaluated in a
// fixed order so the unmet list is stable.
var coverageChecks = []struct {
	name string
	met  func(rec *model.ResearchRecord) bool
}{
	{"about", func(r *model.ResearchRecord) bool { return !isBlank(r.About) }},
	{"usp", func(r *model.ResearchRecord) bool { return !isBlank(r.USP) }},
	{"icp", func(r *model.ResearchRecord) bool { return !isBlank(r.ICP) }},
	{"niche", func(r *model.ResearchRecord) bool { return !isBlank(r.Niche) }},
	{"features", func(r *model.ResearchRecord) bool { return len(r.Features) >= 3 }},
	{"integrations", func(r *model.ResearchRecord) bool { return len(r.Integrations) >= 1 }},
	{"pricing", func(r *model.ResearchRecord) bool { return len(r.Pricing) >= 1 }},
	{"compliance", func(r *model.ResearchRecord) bool { return len(r.Compliance) >= 1 }},
	{"reviews", func(r *model.ResearchRecord) bool { return len(r.Reviews) >= 1 }},
	{"customer_proof", func(r *model.ResearchRecord) bool {
		return len(r.CaseStudies) >= 1 || len(r.NotableCustomers) >= 1
	}},
	{"company_scale", func(r *model.ResearchRecord) bool {
		return !isBlank(r.TeamSize) || !isBlank(r.Funding)
	}},
	{"reachability", func(r *model.ResearchRecord) bool {
		return !isBlank(r.Support) || len(r.Contact) >= 1
	}},
}

// CoverageMet counts how many completeness checks the record passes and
// returns the names of the checks it fails.
func CoverageMet(rec *model.ResearchRecord) (met int, unmet []string) {
	if rec == nil {
		for _, c := range coverageChecks {
			unmet = append(unmet, c.name)
		}
		return 0, unmet
	}
	for _, c := range coverageChecks {
		if c.met(rec) {
			met++
		} else {
			unmet = append(unmet, c.name)
		}
	}
	return met, unmet
}

// UnderCovered reports whether the record fails enough checks to warrant
// a backfill pass under the given policy.
func (p Policy) UnderCovered(rec *model.ResearchRecord) bool {
	met, _ := CoverageMet(rec)
	return met < p.CoverageMinMet
}

// NeedsCompetitorRecovery reports whether a dedicated competitor
// discovery pass should run for this record.
func (p Policy) NeedsCompetitorRecovery(rec *model.ResearchRecord) bool {
	if rec == nil {
		return true
	}
	return len(rec.Competitors) < p.MinCompetitors
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
