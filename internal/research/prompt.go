package research

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

// Intensity selects the schema variant and depth of a research prompt.
type Intensity string

const (
	// IntensityFastest requests only the eight cheapest fields.
	IntensityFastest Intensity = "fastest"
	// IntensityLite is the default mid-size schema.
	IntensityLite Intensity = "lite"
	// IntensityMaster requests the full schema including the
	// searchesPerformed audit trail.
	IntensityMaster Intensity = "master"
	// IntensityCompetitorEnriched adds directory/profile link fields.
	IntensityCompetitorEnriched Intensity = "competitor_enriched"
	// IntensityPostcallEnrichment instructs fill-missing-only backfill
	// against a supplied data snapshot.
	IntensityPostcallEnrichment Intensity = "postcall_enrichment"
)

// PromptRequest carries everything BuildPrompt needs. Output is pure
// text; the only non-input-derived content is the date token from Now.
type PromptRequest struct {
	Domain     string
	Role       model.Role
	Intensity  Intensity
	Scraped    *model.StructuralContext
	Comparison *model.ComparisonContext
	Enrichment *model.EnrichmentContext
	Now        time.Time
}

const antiHallucinationRules = `STRICT RULES:
- Only state facts you can verify through search or the provided context.
- Use null for any string field you cannot verify. Use [] for any list you cannot verify.
- Never fabricate pricing, funding amounts, customer names, or review scores.
- Do not pad lists with generic filler.
- Respond with a single JSON object and nothing else. No markdown, no commentary.`

const competitorRubric = `COMPETITOR VALIDATION RUBRIC — a company qualifies as a competitor only if ALL hold:
- Same product type (a buyer would evaluate them for the same job).
- Same buyer persona (sold to the same role and company profile).
- Same market tier (comparable price band and company size served).
Exclude broad horizontal platforms, marketplaces, and parent categories the subject merely belongs to.`

// BuildPrompt renders the research prompt for one subject. Deterministic
// for identical inputs apart from the embedded current-date token.
func BuildPrompt(req PromptRequest) string {
	var b strings.Builder

	date := req.Now.Format("2006-01-02")
	fmt.Fprintf(&b, "You are researching the company operating %s. Today's date is %s.\n\n", req.Domain, date)

	switch req.Role {
	case model.RoleCompetitor:
		b.WriteString("ROLE: This company is being profiled as a COMPETITOR of a target company.\n")
		if req.Comparison != nil {
			fmt.Fprintf(&b, "TARGET COMPANY: %s (%s)\n", req.Comparison.Name, req.Comparison.Domain)
			if req.Comparison.USP != "" {
				fmt.Fprintf(&b, "Target USP: %s\n", req.Comparison.USP)
			}
			if req.Comparison.ICP != "" {
				fmt.Fprintf(&b, "Target ICP: %s\n", req.Comparison.ICP)
			}
			if len(req.Comparison.Features) > 0 {
				fmt.Fprintf(&b, "Target features: %s\n", strings.Join(req.Comparison.Features, ", "))
			}
			fmt.Fprintf(&b, "Search for \"%s vs %s\" comparisons and fill the *VsTarget fields relative to the target.\n", req.Domain, req.Comparison.Domain)
		}
		b.WriteString("\n")
	default:
		b.WriteString("ROLE: This company is the CLIENT being onboarded. Profile it for its own sake; leave the *VsTarget fields null.\n\n")
	}

	if req.Scraped != nil {
		b.WriteString("KNOWN FACTS (scraped from the company's own site — trust over search results, do not re-verify):\n")
		writeScrapedContext(&b, req.Scraped)
		b.WriteString("\n")
	}

	if req.Intensity == IntensityPostcallEnrichment && req.Enrichment != nil {
		b.WriteString("CURRENT DATA SNAPSHOT — fill ONLY the fields that are null or empty below. Never change a field that already has a value:\n")
		if snap, err := json.MarshalIndent(req.Enrichment.Snapshot, "", "  "); err == nil {
			b.Write(snap)
			b.WriteString("\n")
		}
		if len(req.Enrichment.TranscriptHighlights) > 0 {
			b.WriteString("\nINTERVIEW TRANSCRIPT HIGHLIGHTS:\n")
			for _, h := range req.Enrichment.TranscriptHighlights {
				fmt.Fprintf(&b, "- %s\n", h)
			}
		}
		if len(req.Enrichment.BlogSignals) > 0 {
			b.WriteString("\nBLOG / CONTENT SIGNALS:\n")
			for _, s := range req.Enrichment.BlogSignals {
				fmt.Fprintf(&b, "- %s\n", s)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(antiHallucinationRules)
	b.WriteString("\n\n")
	b.WriteString(competitorRubric)
	b.WriteString("\n\n")

	b.WriteString("Return a JSON object with exactly this shape:\n")
	b.WriteString(schemaFor(req.Intensity, req.Role))

	return b.String()
}

// BuildCompetitorDiscoveryPrompt renders the narrow recovery prompt that
// only asks for more competitors, used when the main pass found too few.
func BuildCompetitorDiscoveryPrompt(domain string, known []model.CompetitorRef, minWanted int, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find direct competitors of the company operating %s. Today's date is %s.\n\n", domain, now.Format("2006-01-02"))

	if len(known) > 0 {
		b.WriteString("Already known (do NOT repeat these):\n")
		for _, ref := range known {
			fmt.Fprintf(&b, "- %s (%s)\n", ref.Name, ref.Domain)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Find at least %d additional competitors.\n\n", minWanted)
	b.WriteString(competitorRubric)
	b.WriteString("\n\n")
	b.WriteString(antiHallucinationRules)
	b.WriteString("\n\n")
	b.WriteString(`Return a JSON object with exactly this shape:
{
  "competitors": [
    {"domain": "bare lowercase host", "name": "string", "reason": "why it qualifies under the rubric", "differentiator": "how it differs from the subject"}
  ]
}`)
	return b.String()
}

func writeScrapedContext(b *strings.Builder, ctx *model.StructuralContext) {
	if ctx.Headline != "" {
		fmt.Fprintf(b, "- Headline: %s\n", ctx.Headline)
	}
	if ctx.Subheadline != "" {
		fmt.Fprintf(b, "- Subheadline: %s\n", ctx.Subheadline)
	}
	if len(ctx.ValueProps) > 0 {
		fmt.Fprintf(b, "- Value props: %s\n", strings.Join(ctx.ValueProps, "; "))
	}
	if len(ctx.Features) > 0 {
		fmt.Fprintf(b, "- Features on site: %s\n", strings.Join(ctx.Features, ", "))
	}
	if len(ctx.Industries) > 0 {
		fmt.Fprintf(b, "- Industries mentioned: %s\n", strings.Join(ctx.Industries, ", "))
	}
	if len(ctx.ComplianceMentions) > 0 {
		fmt.Fprintf(b, "- Compliance mentioned: %s\n", strings.Join(ctx.ComplianceMentions, ", "))
	}
	if ctx.PricingModel != "" {
		fmt.Fprintf(b, "- Pricing model: %s\n", ctx.PricingModel)
	}
	if len(ctx.IntegrationsMentioned) > 0 {
		fmt.Fprintf(b, "- Integrations mentioned: %s\n", strings.Join(ctx.IntegrationsMentioned, ", "))
	}
	if len(ctx.Keywords) > 0 {
		fmt.Fprintf(b, "- Keywords: %s\n", strings.Join(ctx.Keywords, ", "))
	}
}

// Schema fragments, composed per intensity. Field names here are the
// canonical record keys; the normalizer tolerates drift but prompting
// with the right names keeps provider output close to canonical.

const schemaFastest = `{
  "name": "string|null",
  "domain": "bare lowercase host",
  "about": "2-3 sentence summary|null",
  "usp": "string|null",
  "icp": "string|null",
  "niche": "string|null",
  "features": ["string"],
  "confidence": "high|medium|low"
}`

const schemaLiteBody = `  "name": "string|null",
  "domain": "bare lowercase host",
  "about": "2-3 sentence summary|null",
  "usp": "string|null",
  "icp": "string|null",
  "tone": "brand voice description|null",
  "industry": "string|null",
  "niche": "string|null",
  "productModel": "SaaS|services|marketplace|...|null",
  "yearFounded": "string|null",
  "headquarters": "string|null",
  "teamSize": "string|null",
  "funding": "string|null",
  "support": "string|null",
  "activeHours": "string|null",
  "features": ["string"],
  "integrations": ["string"],
  "techStack": ["string"],
  "compliance": ["string"],
  "limitations": ["string"],
  "commonObjections": ["string"],
  "segments": ["string"],
  "notableCustomers": ["string"],
  "pricing": [{"tier": "string", "price": "string", "period": "string", "features": ["string"]}],
  "reviews": [{"platform": "string", "score": "string", "count": "string", "summary": "string"}],
  "contact": [{"label": "string", "value": "string", "type": "email|phone|form|chat"}],
  "social": {"linkedin": "url|null", "twitter": "url|null", "facebook": "url|null", "instagram": "url|null", "youtube": "url|null"},
  "competitors": [{"domain": "bare host", "name": "string", "reason": "string", "differentiator": "string"}],
  "confidence": "high|medium|low",
  "confidenceNotes": "what could not be verified|null"`

const schemaMasterExtra = `  "contentStrategy": "string|null",
  "blogTopics": ["string"],
  "contentThemes": ["string"],
  "partnerships": ["string"],
  "caseStudies": [{"company": "string", "result": "string", "industry": "string"}],
  "founders": [{"name": "string", "role": "string", "background": "string", "linkedin": "url|null"}],
  "searchesPerformed": ["every search query you ran"]`

const schemaProfilesExtra = `  "contentProfiles": {"blog": "url|null", "youtube": "url|null", "medium": "url|null", "substack": "url|null", "podcast": "url|null"},
  "developerProfiles": {"github": "url|null", "stackoverflow": "url|null", "devto": "url|null", "producthunt": "url|null"},
  "reviewProfiles": {"g2": "url|null", "capterra": "url|null", "trustpilot": "url|null", "getapp": "url|null", "softwareadvice": "url|null"},
  "businessProfiles": {"crunchbase": "url|null", "linkedin": "url|null", "glassdoor": "url|null", "angellist": "url|null"},
  "appProfiles": {"appstore": "url|null", "playstore": "url|null", "chromewebstore": "url|null", "shopifyappstore": "url|null"}`

const schemaComparisonExtra = `  "strengthVsTarget": "string|null",
  "weaknessVsTarget": "string|null",
  "pricingComparison": "Cheaper|Similar|More expensive|Unknown",
  "marketPositionVsTarget": "string|null"`

func schemaFor(intensity Intensity, role model.Role) string {
	if intensity == IntensityFastest {
		return schemaFastest
	}

	parts := []string{schemaLiteBody}
	switch intensity {
	case IntensityMaster, IntensityCompetitorEnriched, IntensityPostcallEnrichment:
		parts = append(parts, schemaMasterExtra, schemaProfilesExtra)
	}
	if role == model.RoleCompetitor {
		parts = append(parts, schemaComparisonExtra)
	}
	return "{\n" + strings.Join(parts, ",\n") + "\n}"
}
