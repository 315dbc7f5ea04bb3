package research

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

// Normalize maps an arbitrarily-shaped provider JSON object onto the
// canonical ResearchRecord. Providers drift between schema variants, so
// nothing about the input shape is trusted: nested objects are flattened,
// grouped arrays are coerced flat, legacy aliases are folded in, and
// every declared field is guaranteed present afterward. Returns nil only
// for nil input. Pure function; no timestamps are injected here.
func Normalize(raw map[string]any) *model.ResearchRecord {
	if raw == nil {
		return nil
	}

	// Work on a shallow copy so flattening never mutates the caller's map.
	work := make(map[string]any, len(raw))
	for k, v := range raw {
		work[k] = v
	}

	flattenICP(work)
	flattenFunding(work)
	flattenSupport(work)

	rec := &model.ResearchRecord{
		Name:   strField(work, "name"),
		Domain: CanonicalizeDomain(stringOf(work["domain"])),

		USP:             strField(work, "usp"),
		ICP:             strField(work, "icp"),
		Tone:            strField(work, "tone"),
		About:           strField(work, "about"),
		Industry:        strField(work, "industry"),
		Niche:           strField(work, "niche"),
		ProductModel:    strField(work, "productModel"),
		YearFounded:     strField(work, "yearFounded"),
		Headquarters:    strField(work, "headquarters"),
		TeamSize:        strField(work, "teamSize"),
		Funding:         strField(work, "funding"),
		Support:         strField(work, "support"),
		ActiveHours:     strField(work, "activeHours"),
		ContentStrategy: strField(work, "contentStrategy"),

		Features:          flattenFeatures(work["features"]),
		Integrations:      stringList(work["integrations"]),
		TechStack:         stringList(work["techStack"]),
		Compliance:        stringList(work["compliance"]),
		Limitations:       stringList(work["limitations"]),
		CommonObjections:  stringList(work["commonObjections"]),
		BlogTopics:        stringList(work["blogTopics"]),
		Segments:          stringList(work["segments"]),
		ContentThemes:     stringList(work["contentThemes"]),
		Partnerships:      stringList(work["partnerships"]),
		NotableCustomers:  stringList(work["notableCustomers"]),
		SearchesPerformed: stringList(work["searchesPerformed"]),

		Pricing:     pricingTiers(work["pricing"]),
		Founders:    founderList(work["founders"]),
		Reviews:     reviewList(work["reviews"]),
		CaseStudies: caseStudyList(work["caseStudies"]),
		Contact:     contactList(work["contact"]),

		Competitors: MergeAndDedupe(SanitizeCompetitors(anyList(work["competitors"]))),

		Social:            looseProfileMap(work["social"]),
		ContentProfiles:   fixedProfileMap(work["contentProfiles"], model.ContentProfileKeys),
		DeveloperProfiles: fixedProfileMap(work["developerProfiles"], model.DeveloperProfileKeys),
		ReviewProfiles:    fixedProfileMap(work["reviewProfiles"], model.ReviewProfileKeys),
		BusinessProfiles:  fixedProfileMap(work["businessProfiles"], model.BusinessProfileKeys),
		AppProfiles:       fixedProfileMap(work["appProfiles"], model.AppProfileKeys),

		StrengthVsTarget:       strField(work, "strengthVsTarget"),
		WeaknessVsTarget:       strField(work, "weaknessVsTarget"),
		PricingComparison:      strField(work, "pricingComparison"),
		MarketPositionVsTarget: strField(work, "marketPositionVsTarget"),

		Confidence:      model.Confidence(strings.ToLower(stringOf(work["confidence"]))),
		ConfidenceNotes: strField(work, "confidenceNotes"),
		ResearchDate:    stringOf(work["researchDate"]),
	}

	if rec.Competitors == nil {
		rec.Competitors = []model.CompetitorRef{}
	}

	return rec
}

// flattenICP collapses an {buyerPersona, companySize, industries[],
// triggerEvents[]} object into one " — "-joined string. A string icp
// passes through untouched so re-normalizing is stable.
func flattenICP(work map[string]any) {
	obj, ok := work["icp"].(map[string]any)
	if !ok {
		return
	}
	var parts []string
	if s := stringOf(obj["buyerPersona"]); s != "" {
		parts = append(parts, s)
	}
	if s := stringOf(obj["companySize"]); s != "" {
		parts = append(parts, s)
	}
	if items := stringList(obj["industries"]); len(items) > 0 {
		parts = append(parts, strings.Join(items, ", "))
	}
	if items := stringList(obj["triggerEvents"]); len(items) > 0 {
		parts = append(parts, strings.Join(items, ", "))
	}
	if len(parts) == 0 {
		work["icp"] = nil
		return
	}
	work["icp"] = strings.Join(parts, " — ")
}

// flattenFunding collapses a {totalRaised, stage, lastRound} object into
// one string and folds the legacy fundingTotal/employeeRange/team_size
// aliases into the canonical funding/teamSize fields.
func flattenFunding(work map[string]any) {
	if obj, ok := work["funding"].(map[string]any); ok {
		var parts []string
		for _, key := range []string{"totalRaised", "stage", "lastRound"} {
			if s := stringOf(obj[key]); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			work["funding"] = nil
		} else {
			work["funding"] = strings.Join(parts, " — ")
		}
	}

	if stringOf(work["funding"]) == "" {
		if s := stringOf(work["fundingTotal"]); s != "" {
			work["funding"] = s
		}
	}
	delete(work, "fundingTotal")

	if stringOf(work["teamSize"]) == "" {
		for _, alias := range []string{"employeeRange", "team_size"} {
			if s := stringOf(work[alias]); s != "" {
				work["teamSize"] = s
				break
			}
		}
	}
	delete(work, "employeeRange")
	delete(work, "team_size")
}

// flattenSupport collapses a {channels[], hours, notes} object into one
// string; hours additionally seeds activeHours when that is unset.
func flattenSupport(work map[string]any) {
	obj, ok := work["support"].(map[string]any)
	if !ok {
		return
	}
	var parts []string
	if items := stringList(obj["channels"]); len(items) > 0 {
		parts = append(parts, strings.Join(items, ", "))
	}
	hours := stringOf(obj["hours"])
	if hours != "" {
		parts = append(parts, hours)
	}
	if s := stringOf(obj["notes"]); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		work["support"] = nil
	} else {
		work["support"] = strings.Join(parts, " — ")
	}

	if hours != "" && stringOf(work["activeHours"]) == "" {
		work["activeHours"] = hours
	}
}

// flattenFeatures accepts either a flat list or grouped
// [{category, items[]}] entries and always returns a flat string list
// with falsy entries removed.
func flattenFeatures(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch entry := item.(type) {
		case map[string]any:
			if grouped := stringList(entry["items"]); len(grouped) > 0 {
				out = append(out, grouped...)
				continue
			}
			if s := stringOf(entry["name"]); s != "" {
				out = append(out, s)
				continue
			}
			if s := stringOf(entry["category"]); s != "" {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprintf("%v", entry))
		default:
			if s := stringOf(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// pricingTiers accepts either a tier array or a {model, tiers[]} object.
func pricingTiers(v any) []model.PricingTier {
	items, ok := v.([]any)
	if !ok {
		if obj, isObj := v.(map[string]any); isObj {
			items, _ = obj["tiers"].([]any)
		}
	}
	out := make([]model.PricingTier, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.PricingTier{
			Tier:     stringOf(entry["tier"]),
			Price:    stringOf(entry["price"]),
			Period:   stringOf(entry["period"]),
			Features: stringList(entry["features"]),
		})
	}
	return out
}

func founderList(v any) []model.Founder {
	items, _ := v.([]any)
	out := make([]model.Founder, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Founder{
			Name:       stringOf(entry["name"]),
			Role:       stringOf(entry["role"]),
			Background: stringOf(entry["background"]),
			LinkedIn:   stringOf(entry["linkedin"]),
		})
	}
	return out
}

func reviewList(v any) []model.Review {
	items, _ := v.([]any)
	out := make([]model.Review, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Review{
			Platform: stringOf(entry["platform"]),
			Score:    stringOf(entry["score"]),
			Count:    stringOf(entry["count"]),
			Summary:  stringOf(entry["summary"]),
		})
	}
	return out
}

func caseStudyList(v any) []model.CaseStudy {
	items, _ := v.([]any)
	out := make([]model.CaseStudy, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.CaseStudy{
			Company:  stringOf(entry["company"]),
			Result:   stringOf(entry["result"]),
			Industry: stringOf(entry["industry"]),
		})
	}
	return out
}

func contactList(v any) []model.ContactEntry {
	items, _ := v.([]any)
	out := make([]model.ContactEntry, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.ContactEntry{
			Label: stringOf(entry["label"]),
			Value: stringOf(entry["value"]),
			Type:  stringOf(entry["type"]),
		})
	}
	return out
}

// looseProfileMap keeps whatever link keys the provider returned.
func looseProfileMap(v any) map[string]*string {
	out := make(map[string]*string)
	obj, ok := v.(map[string]any)
	if !ok {
		return out
	}
	for k, val := range obj {
		if s := stringOf(val); s != "" {
			out[k] = &s
		} else {
			out[k] = nil
		}
	}
	return out
}

// fixedProfileMap sets every known sub-key explicitly to the provider's
// value or null, so consumers never need existence checks.
func fixedProfileMap(v any, keys []string) map[string]*string {
	obj, _ := v.(map[string]any)
	out := make(map[string]*string, len(keys))
	for _, k := range keys {
		if s := stringOf(obj[k]); s != "" {
			val := s
			out[k] = &val
		} else {
			out[k] = nil
		}
	}
	return out
}

// strField returns a pointer to the trimmed string value, or nil so the
// JSON key serializes as null rather than being absent.
func strField(work map[string]any, key string) *string {
	s := stringOf(work[key])
	if s == "" {
		return nil
	}
	return &s
}

// stringOf coerces scalars to their string form; objects and arrays
// yield "".
func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'g', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// stringList coerces any value to a flat list of non-empty strings.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := stringOf(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func anyList(v any) []any {
	items, _ := v.([]any)
	return items
}
