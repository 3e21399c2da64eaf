package pipeline

import (
	"regexp"
	"strings"

	"github.com/decoda/decoda/internal/model"
)

var codeHint = regexp.MustCompile(`\b\d{2}[._-]\d{3}[._-]\d{4}[._-]\d[._-]\d\b|\b\d{2}_\d{3}\b`)

// Keyword tables for query routing, checked in priority order
var (
	budgetHints  = []string{"budget", "allocat", "plan my", "how much", "spend", "funding breakdown"}
	updateHints  = []string{"update", "change", "changes", "latest", "recent", "news", "announce"}
	policyHints  = []string{"policy", "policies", "guideline", "rule", "eligib", "criteria", "allowed", "can i claim", "am i able"}
	serviceHints = []string{"recommend", "help with", "assistance with", "support for", "struggling with", "what services", "which services"}
	codeHints    = []string{"code", "item number", "price cap", "price for", "line item"}
)

// DetectQueryType routes a raw query to a response template by keyword.
// Unmatched queries fall back to code lookup via the general type.
func DetectQueryType(query string) model.QueryType {
	lower := strings.ToLower(query)

	if containsAny(lower, budgetHints) {
		return model.QueryBudget
	}
	if containsAny(lower, updateHints) {
		return model.QueryUpdates
	}
	if containsAny(lower, serviceHints) {
		return model.QueryService
	}
	if containsAny(lower, policyHints) {
		return model.QueryPolicy
	}
	if containsAny(lower, codeHints) || codeHint.MatchString(query) {
		return model.QueryCode
	}
	return model.QueryGeneral
}

func containsAny(text string, hints []string) bool {
	for _, hint := range hints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return false
}
