// Package rank orders result items by multiplicative relevance weights.
// Ranking is fully deterministic: equal scores keep their input order, so
// the same inputs always produce the same output sequence.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/decoda/decoda/internal/model"
)

const (
	specificityMinChars = 50
	staleAfter          = 365 * 24 * time.Hour
	updateRecencyWindow = 30 * 24 * time.Hour
	citationFreshWindow = 7 * 24 * time.Hour
)

// Phrases that mark content as describing superseded scheme arrangements
var outdatedTerms = []string{
	"previous scheme",
	"has been replaced",
	"no longer valid",
	"discontinued",
	"prior to 2023",
}

// Ranker applies the configured relevance weights
type Ranker struct {
	cfg model.RankingConfig
}

// New creates a ranker with the given weights
func New(cfg model.RankingConfig) *Ranker {
	return &Ranker{cfg: cfg}
}

// RankCodes orders catalogue matches by weighted similarity and truncates to
// the configured maximum. The base score is the match similarity; detailed
// descriptions and region-specific pricing boost it.
func (r *Ranker) RankCodes(codes []model.SupportCode) []model.SupportCode {
	ranked := append([]model.SupportCode(nil), codes...)
	scores := make([]float64, len(ranked))
	for i, c := range ranked {
		score := c.Similarity
		if len(c.Description) > specificityMinChars {
			score *= r.cfg.Specificity
		}
		if c.RegionSpecific {
			score *= r.cfg.LocalRelevance
		}
		if c.Outdated {
			score *= r.cfg.StalePenalty
		}
		scores[i] = score
	}
	sort.Stable(scored[model.SupportCode]{ranked, scores})
	return r.truncateCodes(ranked)
}

// RankCitations orders citations: official sources first, fresh accesses
// boosted, stale ones penalized.
func (r *Ranker) RankCitations(citations []model.Citation) []model.Citation {
	ranked := append([]model.Citation(nil), citations...)
	now := time.Now()
	scores := make([]float64, len(ranked))
	for i, c := range ranked {
		score := 1.0
		if c.IsOfficialSource {
			score *= r.cfg.OfficialSource
		}
		if !c.AccessedAt.IsZero() {
			age := now.Sub(c.AccessedAt)
			if age < citationFreshWindow {
				score *= r.cfg.Recency
			}
			if age > staleAfter {
				score *= r.cfg.StalePenalty
			}
		}
		scores[i] = score
	}
	sort.Stable(scored[model.Citation]{ranked, scores})
	if r.cfg.MaxItems > 0 && len(ranked) > r.cfg.MaxItems {
		ranked = ranked[:r.cfg.MaxItems]
	}
	return ranked
}

// RankUpdates orders scheme change notices. Updates effective within the
// last 30 days get the recency boost; updates older than a year and updates
// flagged as outdated are penalized.
func (r *Ranker) RankUpdates(updates []model.UpdateItem, officialDomains []string) []model.UpdateItem {
	ranked := append([]model.UpdateItem(nil), updates...)
	now := time.Now()
	scores := make([]float64, len(ranked))
	for i, u := range ranked {
		score := 1.0
		for _, d := range officialDomains {
			if strings.Contains(strings.ToLower(u.Source), d) {
				score *= r.cfg.OfficialSource
				break
			}
		}
		if !u.Date.IsZero() {
			age := now.Sub(u.Date)
			if age < updateRecencyWindow {
				score *= r.cfg.Recency
			}
			if age > staleAfter {
				score *= r.cfg.StalePenalty
			}
		}
		if len(u.Description) > specificityMinChars {
			score *= r.cfg.Specificity
		}
		if u.RegionSpecific {
			score *= r.cfg.LocalRelevance
		}
		if u.Outdated {
			score *= r.cfg.StalePenalty
		}
		scores[i] = score
	}
	sort.Stable(scored[model.UpdateItem]{ranked, scores})
	if r.cfg.MaxItems > 0 && len(ranked) > r.cfg.MaxItems {
		ranked = ranked[:r.cfg.MaxItems]
	}
	return ranked
}

// HighlightRegionSpecific marks codes whose price table names the region and
// lifts that region's price into RegionPrice for display.
func HighlightRegionSpecific(codes []model.SupportCode, region string) []model.SupportCode {
	if region == "" {
		return codes
	}
	out := append([]model.SupportCode(nil), codes...)
	for i, c := range out {
		if price, ok := regionPrice(c.PriceCaps, region); ok {
			out[i].RegionSpecific = true
			out[i].RegionPrice = price
		}
	}
	return out
}

// MarkOutdated reports whether text mentions superseded scheme arrangements
func MarkOutdated(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range outdatedTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// FlagOutdatedCodes sets the Outdated flag on any code whose name or
// description mentions superseded arrangements
func FlagOutdatedCodes(codes []model.SupportCode) []model.SupportCode {
	out := append([]model.SupportCode(nil), codes...)
	for i, c := range out {
		if MarkOutdated(c.Name + " " + c.Description) {
			out[i].Outdated = true
		}
	}
	return out
}

// FlagOutdatedUpdates sets the Outdated flag on any update whose title or
// description mentions superseded arrangements, or whose effective date is
// more than a year old
func FlagOutdatedUpdates(updates []model.UpdateItem) []model.UpdateItem {
	out := append([]model.UpdateItem(nil), updates...)
	now := time.Now()
	for i, u := range out {
		if MarkOutdated(u.Title+" "+u.Description) ||
			(!u.Date.IsZero() && now.Sub(u.Date) > staleAfter) {
			out[i].Outdated = true
		}
	}
	return out
}

func (r *Ranker) truncateCodes(codes []model.SupportCode) []model.SupportCode {
	if r.cfg.MaxItems > 0 && len(codes) > r.cfg.MaxItems {
		return codes[:r.cfg.MaxItems]
	}
	return codes
}

// regionPrice finds the region's segment in a "VIC: $57.10; NSW: $57.10"
// style price table
func regionPrice(priceCaps, region string) (string, bool) {
	if priceCaps == "" {
		return "", false
	}
	for _, segment := range strings.Split(priceCaps, ";") {
		segment = strings.TrimSpace(segment)
		if strings.HasPrefix(strings.ToLower(segment), strings.ToLower(region)+":") {
			return segment, true
		}
	}
	return "", false
}

// scored pairs items with their scores for a stable descending sort
type scored[T any] struct {
	items  []T
	scores []float64
}

func (s scored[T]) Len() int           { return len(s.items) }
func (s scored[T]) Less(i, j int) bool { return s.scores[i] > s.scores[j] }
func (s scored[T]) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	s.scores[i], s.scores[j] = s.scores[j], s.scores[i]
}
