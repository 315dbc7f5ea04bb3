// Package voice renders a finished research record into the compact
// context string fed to the voice-call agent before an onboarding call.
package voice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

// maxListed bounds list fields so the agent context stays within the
// voice platform's prompt budget.
const maxListed = 6

// BuildAgentContext summarizes the client record and its competitors
// into plain prose sections. Missing fields are skipped, never rendered
// as "null".
func BuildAgentContext(client *model.ResearchRecord, competitors map[string]*model.ResearchRecord) string {
	if client == nil {
		return ""
	}

	var b strings.Builder

	name := value(client.Name)
	if name == "" {
		name = client.Domain
	}
	fmt.Fprintf(&b, "COMPANY: %s (%s)\n", name, client.Domain)

	writeIf(&b, "About", client.About)
	writeIf(&b, "Unique selling point", client.USP)
	writeIf(&b, "Ideal customer", client.ICP)
	writeIf(&b, "Niche", client.Niche)
	writeIf(&b, "Brand tone", client.Tone)

	if len(client.Features) > 0 {
		fmt.Fprintf(&b, "Key features: %s\n", joinCapped(client.Features))
	}
	if len(client.Pricing) > 0 {
		var tiers []string
		for _, t := range client.Pricing {
			if t.Tier == "" {
				continue
			}
			entry := t.Tier
			if t.Price != "" {
				entry += " at " + t.Price
			}
			tiers = append(tiers, entry)
		}
		if len(tiers) > 0 {
			fmt.Fprintf(&b, "Pricing: %s\n", joinCapped(tiers))
		}
	}
	if len(client.CommonObjections) > 0 {
		fmt.Fprintf(&b, "Common objections to expect: %s\n", joinCapped(client.CommonObjections))
	}
	writeIf(&b, "Support", client.Support)

	if len(competitors) > 0 {
		b.WriteString("\nCOMPETITIVE LANDSCAPE:\n")
		domains := make([]string, 0, len(competitors))
		for domain := range competitors {
			domains = append(domains, domain)
		}
		sort.Strings(domains)
		count := 0
		for _, domain := range domains {
			rec := competitors[domain]
			if rec == nil || count == maxListed {
				continue
			}
			count++
			compName := value(rec.Name)
			if compName == "" {
				compName = domain
			}
			fmt.Fprintf(&b, "- %s (%s)", compName, domain)
			if s := value(rec.StrengthVsTarget); s != "" {
				fmt.Fprintf(&b, ": their edge is %s", lowerFirst(s))
			}
			if w := value(rec.WeaknessVsTarget); w != "" {
				fmt.Fprintf(&b, "; their weakness is %s", lowerFirst(w))
			}
			b.WriteString("\n")
		}
	}

	if client.Confidence == model.ConfidenceLow {
		b.WriteString("\nNOTE: research confidence is low; verify key facts with the customer during the call.\n")
	}

	return strings.TrimSpace(b.String())
}

func writeIf(b *strings.Builder, label string, field *string) {
	if v := value(field); v != "" {
		fmt.Fprintf(b, "%s: %s\n", label, v)
	}
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func joinCapped(items []string) string {
	if len(items) > maxListed {
		items = items[:maxListed]
	}
	return strings.Join(items, ", ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
