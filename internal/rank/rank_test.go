package rank

import (
	"testing"
	"time"

	"github.com/decoda/decoda/internal/model"
)

func testWeights() model.RankingConfig {
	return model.RankingConfig{
		OfficialSource: 2.0,
		Recency:        1.5,
		Specificity:    1.2,
		LocalRelevance: 1.3,
		StalePenalty:   0.5,
		MaxItems:       5,
	}
}

func TestRankCodesSpecificityBoost(t *testing.T) {
	r := New(testWeights())

	codes := []model.SupportCode{
		{Code: "A", Similarity: 0.5, Description: "short"},
		{Code: "B", Similarity: 0.5, Description: "a long and detailed description of the support item provided"},
	}
	ranked := r.RankCodes(codes)
	if ranked[0].Code != "B" {
		t.Errorf("detailed entry should rank first, got %s", ranked[0].Code)
	}
}

func TestRankCodesStableTies(t *testing.T) {
	r := New(testWeights())

	codes := []model.SupportCode{
		{Code: "A", Similarity: 0.5},
		{Code: "B", Similarity: 0.5},
		{Code: "C", Similarity: 0.5},
	}
	ranked := r.RankCodes(codes)
	for i, want := range []string{"A", "B", "C"} {
		if ranked[i].Code != want {
			t.Fatalf("tie order not preserved: %v", ranked)
		}
	}
}

func TestRankCodesTruncates(t *testing.T) {
	cfg := testWeights()
	cfg.MaxItems = 2
	r := New(cfg)

	codes := []model.SupportCode{
		{Code: "A", Similarity: 0.9},
		{Code: "B", Similarity: 0.8},
		{Code: "C", Similarity: 0.7},
	}
	if got := len(r.RankCodes(codes)); got != 2 {
		t.Errorf("expected 2 results, got %d", got)
	}
}

func TestRankCodesOutdatedPenalty(t *testing.T) {
	r := New(testWeights())

	codes := []model.SupportCode{
		{Code: "old", Similarity: 0.6, Outdated: true},
		{Code: "new", Similarity: 0.4},
	}
	ranked := r.RankCodes(codes)
	if ranked[0].Code != "new" {
		t.Errorf("outdated entry should be penalized below a weaker match: %v", ranked)
	}
}

func TestRankCodesDoesNotMutateInput(t *testing.T) {
	r := New(testWeights())
	codes := []model.SupportCode{
		{Code: "A", Similarity: 0.2},
		{Code: "B", Similarity: 0.9},
	}
	_ = r.RankCodes(codes)
	if codes[0].Code != "A" {
		t.Error("input slice was reordered")
	}
}

func TestRankCitationsOfficialFirst(t *testing.T) {
	r := New(testWeights())
	now := time.Now()

	citations := []model.Citation{
		{URL: "https://blog.example.com/a", AccessedAt: now},
		{URL: "https://www.ndis.gov.au/b", AccessedAt: now, IsOfficialSource: true},
	}
	ranked := r.RankCitations(citations)
	if !ranked[0].IsOfficialSource {
		t.Errorf("official citation should rank first: %v", ranked)
	}
}

func TestRankCitationsStalePenalty(t *testing.T) {
	r := New(testWeights())

	citations := []model.Citation{
		{URL: "https://a", AccessedAt: time.Now().Add(-400 * 24 * time.Hour)},
		{URL: "https://b", AccessedAt: time.Now()},
	}
	ranked := r.RankCitations(citations)
	if ranked[0].URL != "https://b" {
		t.Errorf("stale citation should rank last: %v", ranked)
	}
}

func TestRankUpdatesRecencyAndOfficial(t *testing.T) {
	r := New(testWeights())
	official := []string{"ndis.gov.au"}

	updates := []model.UpdateItem{
		{Title: "old blog", Source: "blog.example.com", Date: time.Now().Add(-500 * 24 * time.Hour)},
		{Title: "fresh official", Source: "www.ndis.gov.au", Date: time.Now().Add(-24 * time.Hour)},
	}
	ranked := r.RankUpdates(updates, official)
	if ranked[0].Title != "fresh official" {
		t.Errorf("fresh official update should rank first: %v", ranked)
	}
}

func TestHighlightRegionSpecific(t *testing.T) {
	codes := []model.SupportCode{
		{Code: "A", PriceCaps: "VIC: $67.56; NSW: $67.56; Remote: $94.58"},
		{Code: "B", PriceCaps: "NSW: $50.00"},
	}

	out := HighlightRegionSpecific(codes, "VIC")
	if !out[0].RegionSpecific || out[0].RegionPrice != "VIC: $67.56" {
		t.Errorf("VIC price not highlighted: %+v", out[0])
	}
	if out[1].RegionSpecific {
		t.Errorf("entry without VIC price highlighted: %+v", out[1])
	}

	// Empty region leaves everything untouched
	out = HighlightRegionSpecific(codes, "")
	if out[0].RegionSpecific {
		t.Error("empty region must not highlight")
	}
}

func TestMarkOutdated(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"this item has been replaced by a new line item", true},
		{"rates prior to 2023 no longer apply", true},
		{"Support is NO LONGER VALID", true},
		{"current support item", false},
	}
	for _, tt := range tests {
		if got := MarkOutdated(tt.text); got != tt.want {
			t.Errorf("MarkOutdated(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestFlagOutdatedCodes(t *testing.T) {
	codes := FlagOutdatedCodes([]model.SupportCode{
		{Code: "A", Description: "this code has been replaced"},
		{Code: "B", Description: "current"},
	})
	if !codes[0].Outdated || codes[1].Outdated {
		t.Errorf("outdated flags wrong: %+v", codes)
	}
}

func TestFlagOutdatedUpdates(t *testing.T) {
	now := time.Now()
	updates := FlagOutdatedUpdates([]model.UpdateItem{
		{Title: "Old arrangements", Description: "the previous scheme rates"},
		{Title: "Stale notice", Date: now.Add(-2 * 365 * 24 * time.Hour)},
		{Title: "Current notice", Date: now.Add(-10 * 24 * time.Hour)},
		{Title: "Undated notice"},
	})

	if !updates[0].Outdated {
		t.Error("superseded phrasing not flagged")
	}
	if !updates[1].Outdated {
		t.Error("a two-year-old date must be flagged")
	}
	if updates[2].Outdated {
		t.Error("a recent date must not be flagged")
	}
	if updates[3].Outdated {
		t.Error("a missing date alone must not be flagged")
	}
}
