// Package format assembles the per-type response records and attaches the
// shared confidence, citation and summary fields.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/decoda/decoda/internal/model"
)

// Confidence bounds and adjustments. The score is advisory metadata about
// citation support, separate from the verification score.
const (
	confidenceBase = 0.5
	confidenceMin  = 0.1
	confidenceMax  = 0.95
	citationBoost  = 0.2
	officialBoost  = 0.15
	recencyAdjust  = 0.1
	recencyWindow  = 7 * 24 * time.Hour

	// DefaultOutdatedDays is the staleness threshold for MarkOutdated
	DefaultOutdatedDays = 365

	summaryMaxChars  = 80
	keyPointMinChars = 30
	maxKeyPoints     = 3
)

// Confidence labels by threshold
const (
	LabelHigh     = "High confidence"
	LabelModerate = "Moderate confidence"
	LabelStandard = "Standard confidence"
	LabelLow      = "Low confidence - please verify"
)

var (
	reasoningBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	sentenceEnd    = regexp.MustCompile(`[.!?]`)
)

// Formatter builds FormattedResponse records
type Formatter struct{}

// New creates a formatter
func New() *Formatter { return &Formatter{} }

// Confidence derives a citation-support score: base 0.5, boosted when
// citations exist, boosted again when any is official, nudged up or down by
// the payload's explicit last-updated timestamp when one is present, clamped
// to [0.1, 0.95]. Citations only ever add, so attaching another source never
// lowers the score.
func (f *Formatter) Confidence(citations []model.Citation, lastUpdated time.Time) (float64, string) {
	score := confidenceBase

	if len(citations) > 0 {
		score += citationBoost
		for _, c := range citations {
			if c.IsOfficialSource {
				score += officialBoost
				break
			}
		}
	}

	if !lastUpdated.IsZero() {
		if time.Since(lastUpdated) <= recencyWindow {
			score += recencyAdjust
		} else {
			score -= recencyAdjust
		}
	}

	if score > confidenceMax {
		score = confidenceMax
	}
	if score < confidenceMin {
		score = confidenceMin
	}
	return score, confidenceLabel(score)
}

func confidenceLabel(score float64) string {
	switch {
	case score >= 0.8:
		return LabelHigh
	case score >= 0.6:
		return LabelModerate
	case score >= 0.4:
		return LabelStandard
	default:
		return LabelLow
	}
}

// CodeLookup builds the code-lookup response
func (f *Formatter) CodeLookup(codes []model.SupportCode, explanation string, citations []model.Citation) *model.FormattedResponse {
	resp := f.base(model.QueryCode, citations, explanation, time.Time{})
	resp.CodeLookup = &model.CodeLookupResult{
		SupportCodes:     codes,
		Explanation:      explanation,
		FormattedResults: FormatCodeLines(codes),
	}
	if anyOutdated(codes) {
		resp.Warning = "Some results reference superseded arrangements; check the current price guide"
	}
	return resp
}

// PolicyGuidance builds the policy-guidance response
func (f *Formatter) PolicyGuidance(topic, guidance string, relatedPolicies []string, relatedCodes []model.CodeRef, citations []model.Citation) *model.FormattedResponse {
	resp := f.base(model.QueryPolicy, citations, guidance, time.Time{})
	resp.Policy = &model.PolicyGuidanceResult{
		Topic:           topic,
		Guidance:        guidance,
		KeyPoints:       KeyPoints(guidance),
		RelatedPolicies: relatedPolicies,
		RelatedCodes:    relatedCodes,
	}
	return resp
}

// ServiceRecommendation builds the service-recommendation response
func (f *Formatter) ServiceRecommendation(result model.ServiceRecommendationResult, citations []model.Citation) *model.FormattedResponse {
	resp := f.base(model.QueryService, citations, result.Rationale, time.Time{})
	resp.Service = &result
	return resp
}

// Updates builds the scheme-updates response
func (f *Formatter) Updates(result model.UpdatesResult, citations []model.Citation) *model.FormattedResponse {
	resp := f.base(model.QueryUpdates, citations, result.ImpactAssessment, latestUpdateDate(result.Updates))
	resp.Updates = &result
	if anyOutdatedUpdates(result.Updates) {
		resp.Warning = "Some updates reference superseded arrangements; check the current price guide"
	}
	return resp
}

// BudgetPlan builds the budget-planning response
func (f *Formatter) BudgetPlan(result model.BudgetPlanResult, citations []model.Citation) *model.FormattedResponse {
	resp := f.base(model.QueryBudget, citations, result.Rationale, time.Time{})
	resp.Budget = &result
	return resp
}

func (f *Formatter) base(qt model.QueryType, citations []model.Citation, text string, lastUpdated time.Time) *model.FormattedResponse {
	score, label := f.Confidence(citations, lastUpdated)
	resp := &model.FormattedResponse{
		Type:            qt,
		ConfidenceScore: score,
		ConfidenceLabel: label,
		Citations:       citations,
		Summary:         Summarize(text),
	}
	if resp.Citations == nil {
		resp.Citations = []model.Citation{}
	}
	if len(citations) == 0 {
		resp.Status = "No citations available for this response"
	}
	return resp
}

// MarkOutdated appends a staleness warning when no citation was accessed
// within the threshold. A response with no citations at all counts as stale
// too, since nothing current supports it.
func MarkOutdated(resp *model.FormattedResponse, thresholdDays int) {
	cutoff := time.Now().AddDate(0, 0, -thresholdDays)
	for _, c := range resp.Citations {
		if c.AccessedAt.After(cutoff) {
			return
		}
	}
	warning := "This information may be outdated; verify against current official sources"
	if resp.Warning != "" {
		resp.Warning += "; " + warning
		return
	}
	resp.Warning = warning
}

func latestUpdateDate(updates []model.UpdateItem) time.Time {
	var latest time.Time
	for _, u := range updates {
		if u.Date.After(latest) {
			latest = u.Date
		}
	}
	return latest
}

// FormatCodeLines renders codes as display lines with similarity percentages
func FormatCodeLines(codes []model.SupportCode) []string {
	lines := make([]string, 0, len(codes))
	for _, c := range codes {
		line := fmt.Sprintf("%s - %s (%.0f%% match)", c.Code, c.Name, c.Similarity*100)
		if c.RegionPrice != "" {
			line += " [" + c.RegionPrice + "]"
		}
		lines = append(lines, line)
	}
	return lines
}

// ScrubReasoning removes chain-of-thought blocks some models emit before
// their answer
func ScrubReasoning(text string) string {
	return strings.TrimSpace(reasoningBlock.ReplaceAllString(text, ""))
}

// Summarize returns the first sentence when it fits in 80 characters, the
// truncated prefix with an ellipsis otherwise.
func Summarize(text string) string {
	text = strings.TrimSpace(ScrubReasoning(text))
	if text == "" {
		return ""
	}

	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		sentence := strings.TrimSpace(text[:loc[1]])
		if len(sentence) <= summaryMaxChars {
			return sentence
		}
	}
	if len(text) <= summaryMaxChars {
		return text
	}
	return strings.TrimSpace(text[:summaryMaxChars]) + "..."
}

// KeyPoints splits text into paragraphs and keeps the substantive ones,
// capped at 3
func KeyPoints(text string) []string {
	points := []string{}
	for _, para := range strings.Split(ScrubReasoning(text), "\n\n") {
		para = strings.TrimSpace(para)
		if len(para) > keyPointMinChars {
			points = append(points, para)
		}
		if len(points) == maxKeyPoints {
			break
		}
	}
	return points
}

func anyOutdated(codes []model.SupportCode) bool {
	for _, c := range codes {
		if c.Outdated {
			return true
		}
	}
	return false
}

func anyOutdatedUpdates(updates []model.UpdateItem) bool {
	for _, u := range updates {
		if u.Outdated {
			return true
		}
	}
	return false
}
