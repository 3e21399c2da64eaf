package model

import "time"

// QueryType routes a query to one of the fixed response templates
type QueryType string

const (
	QueryGeneral QueryType = "general" // Defaults to code lookup
	QueryCode    QueryType = "code_lookup"
	QueryPolicy  QueryType = "policy_guidance"
	QueryService QueryType = "service_recommendation"
	QueryUpdates QueryType = "scheme_updates"
	QueryBudget  QueryType = "budget_planning"
)

// FormattedResponse is the per-request output record. Exactly one of the
// per-type sections is populated, keyed by Type; the shared fields are
// always present.
type FormattedResponse struct {
	Type            QueryType  `json:"type"`
	ConfidenceScore float64    `json:"confidence_score"` // Clamped to [0.1, 0.95]
	ConfidenceLabel string     `json:"confidence_indicator"`
	Citations       []Citation `json:"citations"`
	Summary         string     `json:"summary"`
	Status          string     `json:"status,omitempty"`  // e.g. degraded-mode or no-citations notes
	Warning         string     `json:"warning,omitempty"` // Outdated / low-verification warnings
	Degraded        bool       `json:"degraded,omitempty"`

	Verification *VerificationSummary `json:"verification,omitempty"`
	Uncertainty  *UncertaintyFlag     `json:"uncertainty,omitempty"`

	CodeLookup *CodeLookupResult            `json:"code_lookup,omitempty"`
	Policy     *PolicyGuidanceResult        `json:"policy_guidance,omitempty"`
	Service    *ServiceRecommendationResult `json:"service_recommendation,omitempty"`
	Updates    *UpdatesResult               `json:"updates,omitempty"`
	Budget     *BudgetPlanResult            `json:"budget_plan,omitempty"`
}

// CodeRef is a lightweight reference to a catalogue item
type CodeRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportCode is one ranked catalogue match presented to the user
type SupportCode struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Category       string  `json:"category,omitempty"`
	Description    string  `json:"description,omitempty"`
	PriceCaps      string  `json:"price_caps,omitempty"` // Per-region formatted string
	Rules          string  `json:"rules,omitempty"`
	Similarity     float64 `json:"similarity"`
	RegionSpecific bool    `json:"region_specific,omitempty"`
	RegionPrice    string  `json:"highlighted_price,omitempty"`
	Outdated       bool    `json:"outdated,omitempty"`
}

// CodeLookupResult is the code-lookup template
type CodeLookupResult struct {
	SupportCodes     []SupportCode `json:"support_codes"`
	Explanation      string        `json:"explanation"`
	FormattedResults []string      `json:"formatted_results,omitempty"`
}

// PolicyGuidanceResult is the policy-guidance template
type PolicyGuidanceResult struct {
	Topic           string    `json:"topic"`
	Guidance        string    `json:"guidance"`
	KeyPoints       []string  `json:"key_points"` // Capped at 3
	RelatedPolicies []string  `json:"related_policies,omitempty"`
	RelatedCodes    []CodeRef `json:"related_codes,omitempty"`
}

// RecommendedService is one ranked service suggestion
type RecommendedService struct {
	ServiceType    string `json:"service_type"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Reference      string `json:"reference,omitempty"`
	Price          string `json:"price,omitempty"`
	RegionSpecific bool   `json:"region_specific,omitempty"`
}

// ServiceRecommendationResult is the service-recommendation template
type ServiceRecommendationResult struct {
	NeedsAddressed      []string             `json:"needs_addressed"`
	RecommendedServices []RecommendedService `json:"recommended_services"`
	SupportCategories   []string             `json:"support_categories"`
	Rationale           string               `json:"rationale"`
}

// UpdateItem is one scheme change notice
type UpdateItem struct {
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	EffectiveDate  string    `json:"effective_date,omitempty"`
	Source         string    `json:"source,omitempty"`
	Date           time.Time `json:"date,omitempty"`
	RegionSpecific bool      `json:"region_specific,omitempty"`
	Outdated       bool      `json:"outdated,omitempty"`
}

// UpdatesResult is the scheme-updates template
type UpdatesResult struct {
	UpdatePeriod     string       `json:"update_period"`
	Updates          []UpdateItem `json:"updates"`
	ImpactAssessment string       `json:"impact_assessment,omitempty"`
}

// Allocation is one budget line of a plan breakdown
type Allocation struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// BudgetPlanResult is the budget-planning template
type BudgetPlanResult struct {
	TotalAmount      float64                  `json:"total_amount"`
	Allocations      []Allocation             `json:"allocations"`
	Rationale        string                   `json:"rationale,omitempty"`
	Notes            string                   `json:"notes,omitempty"`
	RecommendedCodes map[string][]SupportCode `json:"recommended_codes,omitempty"`
}
