package scrape

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

// structuralPaths are the site paths mined for pre-research signals, in
// the order their text is considered.
var structuralPaths = []string{"", "/pricing", "/about"}

// StructuralScraper distills a company's own pages into the known-facts
// context given to research prompts. Extraction is keyword-heuristic and
// best-effort: partial output is normal and never an error.
type StructuralScraper struct {
	chain *Chain
}

// NewStructuralScraper builds a StructuralScraper over a fetcher chain.
func NewStructuralScraper(chain *Chain) *StructuralScraper {
	return &StructuralScraper{chain: chain}
}

// ScrapeStructuralData fetches the subject's key pages concurrently and
// extracts structural signals from whatever came back.
func (s *StructuralScraper) ScrapeStructuralData(ctx context.Context, domain string) (*model.StructuralContext, error) {
	urls := make([]string, 0, len(structuralPaths))
	for _, p := range structuralPaths {
		urls = append(urls, "https://"+domain+p)
	}

	pages := s.chain.FetchAll(ctx, urls, len(urls))
	if len(pages) == 0 {
		zap.L().Debug("scrape: no pages fetched", zap.String("domain", domain))
		return &model.StructuralContext{}, nil
	}

	out := &model.StructuralContext{PageResults: make(map[string]string, len(pages))}
	var corpus strings.Builder
	for _, page := range pages {
		out.PageResults[page.URL] = truncate(page.Text, 2000)
		corpus.WriteString(page.Text)
		corpus.WriteString("\n")

		if strings.TrimSuffix(page.URL, "/") == "https://"+domain && out.Headline == "" {
			out.Headline, out.Subheadline = headlines(page)
		}
	}

	text := corpus.String()
	lower := strings.ToLower(text)

	out.ComplianceMentions = mentions(lower, complianceTerms)
	out.IntegrationsMentioned = mentions(lower, integrationTerms)
	out.Industries = mentions(lower, industryTerms)
	out.PricingModel = pricingModel(lower)
	out.ValueProps = valueProps(text)
	out.Features = featureLines(text)
	out.Keywords = keywordsFrom(out.Headline, out.Subheadline)

	zap.L().Debug("scrape: structural context extracted",
		zap.String("domain", domain),
		zap.Int("pages", len(pages)),
		zap.Int("features", len(out.Features)),
		zap.Int("integrations", len(out.IntegrationsMentioned)),
	)
	return out, nil
}

// headlines derives the headline and subheadline from the homepage: the
// page title, then the first substantial line of body text.
func headlines(page Page) (string, string) {
	headline := strings.TrimSpace(page.Title)
	var sub string
	for _, line := range strings.Split(page.Text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= 30 && len(line) <= 200 && line != headline {
			sub = line
			break
		}
	}
	return headline, sub
}

var complianceTerms = map[string]string{
	"soc 2":     "SOC 2",
	"soc2":      "SOC 2",
	"gdpr":      "GDPR",
	"hipaa":     "HIPAA",
	"iso 27001": "ISO 27001",
	"pci dss":   "PCI DSS",
	"ccpa":      "CCPA",
	"fedramp":   "FedRAMP",
}

var integrationTerms = map[string]string{
	"salesforce": "Salesforce",
	"hubspot":    "HubSpot",
	"slack":      "Slack",
	"zapier":     "Zapier",
	"shopify":    "Shopify",
	"stripe":     "Stripe",
	"zendesk":    "Zendesk",
	"intercom":   "Intercom",
	"jira":       "Jira",
	"notion":     "Notion",
	"snowflake":  "Snowflake",
	"quickbooks": "QuickBooks",
}

var industryTerms = map[string]string{
	"healthcare":    "Healthcare",
	"fintech":       "Fintech",
	"e-commerce":    "E-commerce",
	"ecommerce":     "E-commerce",
	"real estate":   "Real estate",
	"manufacturing": "Manufacturing",
	"logistics":     "Logistics",
	"education":     "Education",
	"insurance":     "Insurance",
	"legal":         "Legal",
	"hospitality":   "Hospitality",
	"saas":          "SaaS",
}

// mentions returns the canonical form of every term found in the text,
// preserving a stable order.
func mentions(lower string, terms map[string]string) []string {
	seen := make(map[string]bool)
	var out []string
	for needle, canonical := range terms {
		if strings.Contains(lower, needle) && !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	// Map iteration order is random; sort for determinism.
	sort.Strings(out)
	return out
}

func pricingModel(lower string) string {
	switch {
	case strings.Contains(lower, "per seat") || strings.Contains(lower, "per user"):
		return "per-seat"
	case strings.Contains(lower, "usage-based") || strings.Contains(lower, "pay as you go"):
		return "usage-based"
	case strings.Contains(lower, "free trial"):
		return "subscription with free trial"
	case strings.Contains(lower, "freemium") || strings.Contains(lower, "free plan"):
		return "freemium"
	case strings.Contains(lower, "contact sales") || strings.Contains(lower, "request a demo"):
		return "sales-led"
	}
	return ""
}

// valuePropRe matches short benefit-phrased lines ("Automate your...",
// "Save time on...").
var valuePropRe = regexp.MustCompile(`(?m)^(Automate|Save|Boost|Grow|Streamline|Simplify|Accelerate|Eliminate|Reduce|Increase)\b.{10,120}$`)

func valueProps(text string) []string {
	matches := valuePropRe.FindAllString(text, 6)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m))
	}
	return out
}

// featureLines picks short noun-phrase lines that read like feature
// bullets: title-cased, no terminal punctuation, bounded length.
func featureLines(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 8 || len(line) > 60 {
			continue
		}
		if strings.ContainsAny(line, ".!?,:;") {
			continue
		}
		first := line[0]
		if first < 'A' || first > 'Z' {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 6 {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
		if len(out) == 12 {
			break
		}
	}
	return out
}

var keywordStop = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "your": true,
	"you": true, "our": true, "that": true, "from": true, "into": true,
}

func keywordsFrom(parts ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range parts {
		for _, word := range strings.Fields(strings.ToLower(part)) {
			word = strings.Trim(word, ".,|–—-:;()")
			if len(word) < 4 || keywordStop[word] || seen[word] {
				continue
			}
			seen[word] = true
			out = append(out, word)
		}
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
