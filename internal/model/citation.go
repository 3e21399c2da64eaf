package model

import "time"

// Citation represents an extracted reference asserted to support a generated statement
type Citation struct {
	URL              string    `json:"url"`                    // Full URL
	Source           string    `json:"source"`                 // Domain name, www-stripped
	Title            string    `json:"title,omitempty"`        // Optional page title from vendor metadata
	AccessedAt       time.Time `json:"accessed_at"`            // When the citation was extracted
	IsOfficialSource bool      `json:"is_official_source"`     // Domain matches the official allow-list
	LegitimateSource bool      `json:"legitimate_source"`      // Set by the verifier's legitimacy check
}

// FactType classifies the typed literal tokens the verifier can extract
type FactType string

const (
	FactCode       FactType = "support_code" // Canonical xx_xxx_xxxx_x_x identifier
	FactPrice      FactType = "price_amount" // Currency amount
	FactPercentage FactType = "percentage"
	FactDate       FactType = "date"
	FactEmail      FactType = "email"
)

// Fact is a typed literal extracted from a response for verification
type Fact struct {
	Type     FactType `json:"type"`
	Value    string   `json:"value"`
	Verified bool     `json:"verified"`
}

// VerificationRecord is the durable verdict for one fact, keyed by (type, value)
type VerificationRecord struct {
	Verified bool     `json:"verified"`
	Sources  []string `json:"sources"`
}

// VerificationSummary aggregates a cache-replay verification pass.
// The score is a replay of previously asserted verdicts, not a live check.
type VerificationSummary struct {
	VerifiedFacts    []Fact   `json:"verified_facts"`
	UnverifiedFacts  []Fact   `json:"unverified_facts"`
	Score            float64  `json:"verification_score"`
	SourcesConsulted []string `json:"sources_checked"`
	Status           string   `json:"verification_status"`
	Warning          string   `json:"warning,omitempty"`
}

// UncertaintyFlag marks hedging language found in a response payload
type UncertaintyFlag struct {
	ContainsUncertainty bool     `json:"contains_uncertainty"`
	Statements          []string `json:"uncertain_statements,omitempty"` // At most 3 surrounding clauses
}
