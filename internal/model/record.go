// Package model defines the canonical data shapes shared across the
// research pipeline.
package model

// Confidence is the provider-self-reported verification level.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Role distinguishes the research subject's relationship to the caller.
type Role string

const (
	RoleClient     Role = "client"
	RoleCompetitor Role = "competitor"
)

// PricingTier is one entry of a pricing table.
type PricingTier struct {
	Tier     string   `json:"tier"`
	Price    string   `json:"price"`
	Period   string   `json:"period"`
	Features []string `json:"features"`
}

// Founder describes a company founder.
type Founder struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Background string `json:"background"`
	LinkedIn   string `json:"linkedin"`
}

// Review summarizes ratings on a single review platform.
type Review struct {
	Platform string `json:"platform"`
	Score    string `json:"score"`
	Count    string `json:"count"`
	Summary  string `json:"summary"`
}

// CaseStudy is a published customer outcome.
type CaseStudy struct {
	Company  string `json:"company"`
	Result   string `json:"result"`
	Industry string `json:"industry"`
}

// ContactEntry is a labeled contact channel.
type ContactEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// CompetitorRef is a lightweight pointer to a discovered competitor.
// Two refs denote the same entity iff their canonical domains match.
type CompetitorRef struct {
	Domain         string `json:"domain"`
	Name           string `json:"name"`
	Reason         string `json:"reason,omitempty"`
	Differentiator string `json:"differentiator,omitempty"`
}

// Known sub-keys for the directory/profile groups. Normalization fills
// every key explicitly so consumers never need existence checks.
var (
	SocialKeys           = []string{"twitter", "linkedin", "facebook", "instagram", "youtube", "tiktok"}
	ContentProfileKeys   = []string{"blog", "youtube", "podcast", "newsletter", "medium", "substack"}
	DeveloperProfileKeys = []string{"github", "stackoverflow", "devto", "npm", "dockerhub"}
	ReviewProfileKeys    = []string{"g2", "capterra", "trustpilot", "getapp", "producthunt"}
	BusinessProfileKeys  = []string{"linkedin", "crunchbase", "glassdoor", "bbb", "indeed"}
	AppProfileKeys       = []string{"shopify", "wordpress", "chrome", "zapier", "hubspot"}
)

// ResearchRecord is the canonical output shape for both client and
// competitor subjects. After normalization every list field is a non-nil
// slice and every narrative field key is present (value may be null);
// downstream consumers rely on the shape, not just the semantics.
type ResearchRecord struct {
	Name   *string `json:"name"`
	Domain string  `json:"domain"`

	// Narrative fields.
	USP             *string `json:"usp"`
	ICP             *string `json:"icp"`
	Tone            *string `json:"tone"`
	About           *string `json:"about"`
	Industry        *string `json:"industry"`
	Niche           *string `json:"niche"`
	ProductModel    *string `json:"productModel"`
	YearFounded     *string `json:"yearFounded"`
	Headquarters    *string `json:"headquarters"`
	TeamSize        *string `json:"teamSize"`
	Funding         *string `json:"funding"`
	Support         *string `json:"support"`
	ActiveHours     *string `json:"activeHours"`
	ContentStrategy *string `json:"contentStrategy"`

	// List fields.
	Features          []string `json:"features"`
	Integrations      []string `json:"integrations"`
	TechStack         []string `json:"techStack"`
	Compliance        []string `json:"compliance"`
	Limitations       []string `json:"limitations"`
	CommonObjections  []string `json:"commonObjections"`
	BlogTopics        []string `json:"blogTopics"`
	Segments          []string `json:"segments"`
	ContentThemes     []string `json:"contentThemes"`
	Partnerships      []string `json:"partnerships"`
	NotableCustomers  []string `json:"notableCustomers"`
	SearchesPerformed []string `json:"searchesPerformed"`

	// Structured list fields.
	Pricing     []PricingTier  `json:"pricing"`
	Founders    []Founder      `json:"founders"`
	Reviews     []Review       `json:"reviews"`
	CaseStudies []CaseStudy    `json:"caseStudies"`
	Contact     []ContactEntry `json:"contact"`

	Competitors []CompetitorRef `json:"competitors"`

	// Nested object fields.
	Social            map[string]*string `json:"social"`
	ContentProfiles   map[string]*string `json:"contentProfiles"`
	DeveloperProfiles map[string]*string `json:"developerProfiles"`
	ReviewProfiles    map[string]*string `json:"reviewProfiles"`
	BusinessProfiles  map[string]*string `json:"businessProfiles"`
	AppProfiles       map[string]*string `json:"appProfiles"`

	// Comparison fields, competitor mode only.
	StrengthVsTarget       *string `json:"strengthVsTarget,omitempty"`
	WeaknessVsTarget       *string `json:"weaknessVsTarget,omitempty"`
	PricingComparison      *string `json:"pricingComparison,omitempty"`
	MarketPositionVsTarget *string `json:"marketPositionVsTarget,omitempty"`

	// Provenance.
	Confidence      Confidence `json:"confidence"`
	ConfidenceNotes *string    `json:"confidenceNotes"`
	ResearchDate    string     `json:"researchDate"`
}

// DomainResult is the outcome of a full client-domain research call.
type DomainResult struct {
	Data        *ResearchRecord `json:"data"`
	Competitors []CompetitorRef `json:"competitors"`
}

// CompetitorResult is the outcome of a single-competitor deep dive.
type CompetitorResult struct {
	Data *ResearchRecord `json:"data"`
}
