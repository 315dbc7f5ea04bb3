// Package research implements the multi-provider company-research
// orchestration engine: prompt construction, provider routing with
// fallback, output normalization, competitor deduplication, and
// escalation policy.
package research

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tldSuffixes are TLD-like endings recognized when deriving a display
// name from a bare domain.
var tldSuffixes = []string{".com", ".io", ".net", ".org", ".co", ".ai", ".app", ".dev", ".tech", ".xyz"}

var titleCaser = cases.Title(language.English)

// CanonicalizeDomain reduces any URL-ish string to a bare lowercase host:
// no scheme, no "www.", no path. Returns "" when no host can be derived.
// The same input always yields the same key, so it doubles as the
// competitor dedup key.
func CanonicalizeDomain(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	parseTarget := s
	if !strings.Contains(parseTarget, "://") {
		parseTarget = "https://" + parseTarget
	}

	host := ""
	if u, err := url.Parse(parseTarget); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		// Manual fallback for strings url.Parse chokes on.
		host = s
		for _, prefix := range []string{"https://", "http://"} {
			host = strings.TrimPrefix(host, prefix)
		}
		for _, sep := range []string{"/", "?", "#"} {
			if i := strings.Index(host, sep); i >= 0 {
				host = host[:i]
			}
		}
	}

	host = strings.TrimPrefix(host, "www.")
	host = strings.Trim(host, ".")
	return host
}

// NameFromDomain derives a display name from a canonical domain by
// stripping the first recognized TLD-like suffix and everything after it,
// then title-casing the remaining label.
func NameFromDomain(domain string) string {
	if domain == "" {
		return ""
	}
	label := domain
	for _, suffix := range tldSuffixes {
		if i := strings.Index(label, suffix); i > 0 {
			label = label[:i]
			break
		}
	}
	return titleCaser.String(label)
}
