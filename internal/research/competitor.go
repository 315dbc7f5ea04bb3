package research

import (
	"strings"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

// SanitizeCompetitor validates and canonicalizes a single raw competitor
// entry. It returns nil when no usable domain can be derived from the
// domain, url, website, or name fields; the derived host must contain a
// literal dot. Missing names fall back to the domain label.
func SanitizeCompetitor(raw map[string]any) *model.CompetitorRef {
	if raw == nil {
		return nil
	}

	var domain string
	for _, key := range []string{"domain", "url", "website", "name"} {
		v, _ := raw[key].(string)
		if v == "" {
			continue
		}
		if host := CanonicalizeDomain(v); strings.Contains(host, ".") {
			domain = host
			break
		}
	}
	if domain == "" {
		return nil
	}

	name, _ := raw["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ".") && CanonicalizeDomain(name) == domain {
		// Name was absent or just a restatement of the domain.
		name = NameFromDomain(domain)
	}

	reason, _ := raw["reason"].(string)
	differentiator, _ := raw["differentiator"].(string)

	return &model.CompetitorRef{
		Domain:         domain,
		Name:           name,
		Reason:         strings.TrimSpace(reason),
		Differentiator: strings.TrimSpace(differentiator),
	}
}

// SanitizeCompetitors runs SanitizeCompetitor over a raw JSON list,
// silently dropping entries that yield no usable domain.
func SanitizeCompetitors(items []any) []model.CompetitorRef {
	out := make([]model.CompetitorRef, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			// A bare string is treated as a domain-or-name.
			if s, isStr := item.(string); isStr && s != "" {
				entry = map[string]any{"domain": s}
			} else {
				continue
			}
		}
		if ref := SanitizeCompetitor(entry); ref != nil {
			out = append(out, *ref)
		}
	}
	return out
}

// MergeAndDedupe merges competitor lists from multiple discovery passes.
// The canonical domain is the identity key; the first occurrence across
// the supplied lists, in argument order, wins. Later duplicates are
// dropped without field merging. The result is never nil, so records
// that pass through escalation or recovery keep a real JSON array.
func MergeAndDedupe(lists ...[]model.CompetitorRef) []model.CompetitorRef {
	seen := make(map[string]bool)
	out := []model.CompetitorRef{}
	for _, list := range lists {
		for _, ref := range list {
			key := CanonicalizeDomain(ref.Domain)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			ref.Domain = key
			out = append(out, ref)
		}
	}
	return out
}
