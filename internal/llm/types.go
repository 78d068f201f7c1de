package llm

import "github.com/blackbeanteam/lease-analysis-back/internal/job"

// Output is the normalized shape of a lease compliance analysis.
type Output struct {
	SchemaVersion string     `json:"schema_version"`
	Summary       Summary    `json:"summary"`
	Findings      []Finding  `json:"findings"`
	LawChecks     []LawCheck `json:"law_checks,omitempty"`
	Actions       []Action   `json:"actions,omitempty"`
	Sources       []Source   `json:"sources,omitempty"`
}

type Summary struct {
	Verdict      string            `json:"verdict"` // ok | conditional_ok | do_not_sign
	RiskScore    int               `json:"risk_score"`
	Jurisdiction *job.Jurisdiction `json:"jurisdiction,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

type Finding struct {
	ID             string     `json:"id,omitempty"`
	Status         string     `json:"status"` // ok | borderline | non_compliant
	Severity       string     `json:"severity,omitempty"`
	Category       string     `json:"category"`
	Statutes       []string   `json:"statutes,omitempty"`
	Explanation    string     `json:"explanation"`
	Recommendation string     `json:"recommendation,omitempty"`
	OriginalText   string     `json:"original_text"`
	Evidence       []Evidence `json:"evidence,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	LowConfidence  bool       `json:"low_confidence,omitempty"`
}

type Evidence struct {
	Page    int    `json:"page"`
	Section string `json:"section,omitempty"`
	Quote   string `json:"quote"`
}

type LawCheck struct {
	Rule    string `json:"rule"`
	Status  string `json:"status"` // ok | needs_detail | exceeds | missing
	Statute string `json:"statute,omitempty"`
}

type Action struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
	Blocker  bool   `json:"blocker"`
}

type Source struct {
	Page    int    `json:"page"`
	Section string `json:"section"`
}
