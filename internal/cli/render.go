package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/decoda/decoda/internal/extract"
	"github.com/decoda/decoda/internal/model"
	"github.com/decoda/decoda/internal/pipeline"
)

// renderResponse writes the human-readable form of an answer
func renderResponse(w io.Writer, resp *pipeline.Response) {
	answer := resp.Answer

	fmt.Fprintf(w, "Session: %s\n", resp.SessionID)
	fmt.Fprintf(w, "Confidence: %s (%.2f)\n", answer.ConfidenceLabel, answer.ConfidenceScore)
	if answer.Status != "" {
		fmt.Fprintf(w, "Note: %s\n", answer.Status)
	}
	if answer.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", answer.Warning)
	}
	fmt.Fprintln(w)

	switch {
	case answer.CodeLookup != nil:
		renderCodeLookup(w, answer.CodeLookup)
	case answer.Policy != nil:
		renderPolicy(w, answer.Policy)
	case answer.Service != nil:
		renderService(w, answer.Service)
	case answer.Updates != nil:
		renderUpdates(w, answer.Updates)
	case answer.Budget != nil:
		renderBudget(w, answer.Budget)
	}

	if answer.Verification != nil {
		renderVerification(w, answer.Verification)
	}
	if answer.Uncertainty != nil && answer.Uncertainty.ContainsUncertainty {
		fmt.Fprintln(w, "\nUncertain statements:")
		for _, s := range answer.Uncertainty.Statements {
			fmt.Fprintf(w, "  - %s\n", strings.TrimSpace(s))
		}
	}

	fmt.Fprintln(w, "\nCitations:")
	fmt.Fprintln(w, indent(extract.FormatForDisplay(answer.Citations), "  "))
}

func renderCodeLookup(w io.Writer, result *model.CodeLookupResult) {
	fmt.Fprintln(w, result.Explanation)
	fmt.Fprintln(w)
	if len(result.SupportCodes) == 0 {
		fmt.Fprintln(w, "No matching support codes found.")
		return
	}
	for _, c := range result.SupportCodes {
		fmt.Fprintf(w, "%s  %s (%.0f%% match)\n", c.Code, c.Name, c.Similarity*100)
		if c.Category != "" {
			fmt.Fprintf(w, "    Category: %s\n", c.Category)
		}
		if c.RegionPrice != "" {
			fmt.Fprintf(w, "    Price (your region): %s\n", c.RegionPrice)
		} else if c.PriceCaps != "" {
			fmt.Fprintf(w, "    Price caps: %s\n", c.PriceCaps)
		}
		if c.Rules != "" {
			fmt.Fprintf(w, "    Rules: %s\n", c.Rules)
		}
		if c.Outdated {
			fmt.Fprintln(w, "    (may reference superseded arrangements)")
		}
	}
}

func renderPolicy(w io.Writer, result *model.PolicyGuidanceResult) {
	fmt.Fprintf(w, "Topic: %s\n\n%s\n", result.Topic, result.Guidance)
	if len(result.KeyPoints) > 0 {
		fmt.Fprintln(w, "\nKey points:")
		for _, p := range result.KeyPoints {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
	if len(result.RelatedPolicies) > 0 {
		fmt.Fprintf(w, "\nRelated policies: %s\n", strings.Join(result.RelatedPolicies, ", "))
	}
	if len(result.RelatedCodes) > 0 {
		fmt.Fprintln(w, "Related codes:")
		for _, ref := range result.RelatedCodes {
			fmt.Fprintf(w, "  %s  %s\n", ref.Code, ref.Name)
		}
	}
}

func renderService(w io.Writer, result *model.ServiceRecommendationResult) {
	if len(result.NeedsAddressed) > 0 {
		fmt.Fprintf(w, "Needs addressed: %s\n\n", strings.Join(result.NeedsAddressed, ", "))
	}
	fmt.Fprintln(w, result.Rationale)
	fmt.Fprintln(w)
	if len(result.RecommendedServices) == 0 {
		fmt.Fprintln(w, "No services could be recommended for this query.")
		return
	}
	for _, s := range result.RecommendedServices {
		fmt.Fprintf(w, "%s  %s\n", s.Code, s.Name)
		if s.ServiceType != "" {
			fmt.Fprintf(w, "    Type: %s\n", s.ServiceType)
		}
		if s.Price != "" {
			fmt.Fprintf(w, "    Price caps: %s\n", s.Price)
		}
	}
	if len(result.SupportCategories) > 0 {
		fmt.Fprintf(w, "\nSupport categories: %s\n", strings.Join(result.SupportCategories, ", "))
	}
}

func renderUpdates(w io.Writer, result *model.UpdatesResult) {
	fmt.Fprintf(w, "Scheme updates (%s):\n\n", result.UpdatePeriod)
	if len(result.Updates) == 0 {
		fmt.Fprintln(w, "No updates found.")
	}
	for i, u := range result.Updates {
		fmt.Fprintf(w, "%d. %s\n", i+1, u.Title)
		if u.Description != "" {
			fmt.Fprintf(w, "   %s\n", u.Description)
		}
		if u.EffectiveDate != "" {
			fmt.Fprintf(w, "   Effective: %s\n", u.EffectiveDate)
		}
		if u.Source != "" {
			fmt.Fprintf(w, "   Source: %s\n", u.Source)
		}
		if u.Outdated {
			fmt.Fprintln(w, "   (may reference superseded arrangements)")
		}
	}
	if result.ImpactAssessment != "" {
		fmt.Fprintf(w, "\n%s\n", result.ImpactAssessment)
	}
}

func renderBudget(w io.Writer, result *model.BudgetPlanResult) {
	fmt.Fprintf(w, "Budget plan for $%.2f:\n\n", result.TotalAmount)
	for _, a := range result.Allocations {
		fmt.Fprintf(w, "  %-24s $%10.2f  (%.0f%%)\n", a.Category, a.Amount, a.Percentage)
		for _, c := range result.RecommendedCodes[a.Category] {
			fmt.Fprintf(w, "      %s  %s\n", c.Code, c.Name)
		}
	}
	if result.Rationale != "" {
		fmt.Fprintf(w, "\n%s\n", result.Rationale)
	}
	if result.Notes != "" {
		fmt.Fprintf(w, "%s\n", result.Notes)
	}
}

func renderVerification(w io.Writer, v *model.VerificationSummary) {
	fmt.Fprintf(w, "\nVerification: %s (%.2f)\n", v.Status, v.Score)
	if len(v.VerifiedFacts) > 0 {
		fmt.Fprintf(w, "  Verified facts: %d\n", len(v.VerifiedFacts))
	}
	if len(v.UnverifiedFacts) > 0 {
		fmt.Fprintf(w, "  Unverified facts: %d\n", len(v.UnverifiedFacts))
	}
	if len(v.SourcesConsulted) > 0 {
		fmt.Fprintf(w, "  Sources: %s\n", strings.Join(v.SourcesConsulted, "; "))
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
