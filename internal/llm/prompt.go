package llm

import (
	"fmt"
	"strings"

	"github.com/blackbeanteam/lease-analysis-back/internal/job"
)

const systemPrompt = "You are an extraction-and-compliance engine for residential leases under the relevant " +
	"jurisdiction (country/state/city) and applicable U.S. federal law where relevant. " +
	"Output VALID JSON ONLY that conforms to the provided JSON Schema. " +
	"Do not include any prose outside JSON. Only rely on the contract text. " +
	"For each finding, include: status, category, statutes (if any), explanation, recommendation, " +
	"a short evidence.quote (20-50 words), page if known, and an `original_text` field with a longer " +
	"contiguous excerpt (~100-400 words) from the contract covering the clause, to support later " +
	"human annotation. If you cannot find page or section, set them to null and mark low_confidence=true."

var focusAreas = []string{
	"returned-check fees",
	"non-emergency entry notice",
	"security deposit accounting/timing",
	"auto-renew visibility and tenant rights",
	"service/assistance animals or pets",
	"holdover charges reasonableness",
}

// buildRulesSection renders the jurisdiction hint as a concise instruction to
// consult the governing landlord-tenant law.
func buildRulesSection(jur *job.Jurisdiction) string {
	country := "United States"
	state := ""
	if jur != nil {
		if jur.Country != "" {
			country = jur.Country
		}
		state = jur.State
	}

	var stateHuman string
	switch state {
	case "ALL_STATES":
		stateHuman = "all U.S. states (nationwide)"
	case "", "N/A", "OTHER":
		stateHuman = ""
	default:
		stateHuman = state
	}

	var b strings.Builder
	b.WriteString("Research governing landlord-tenant law for the selected jurisdiction. ")
	fmt.Fprintf(&b, "Jurisdiction: country = %s", country)
	if stateHuman != "" {
		fmt.Fprintf(&b, ", state/region = %s", stateHuman)
	}
	b.WriteString(". When evaluating the contract, consult and reflect applicable statutory/administrative rules around ")
	b.WriteString(strings.Join(focusAreas, ", "))
	b.WriteString(". Cite or name statutes if feasible. Keep answers grounded in the contract text.")
	return b.String()
}

func buildUserPrompt(contractText string, jur *job.Jurisdiction) string {
	return buildRulesSection(jur) +
		"\n\n=== CONTRACT TEXT START ===\n" +
		contractText +
		"\n=== CONTRACT TEXT END ==="
}
