package pipeline

import (
	"testing"
)

func TestParseUpdatesJSON(t *testing.T) {
	text := `Updates follow:
[{"title": "Price guide refresh", "description": "Caps updated", "effective_date": "2026-07-01", "source": "ndis.gov.au"}]`

	updates := parseUpdates(text)
	if len(updates) != 1 {
		t.Fatalf("updates = %v", updates)
	}
	u := updates[0]
	if u.Title != "Price guide refresh" || u.Source != "ndis.gov.au" {
		t.Errorf("update = %+v", u)
	}
	if u.Date.IsZero() {
		t.Error("effective date not parsed")
	}
}

func TestParseUpdatesNumberedSections(t *testing.T) {
	text := `Recent changes:
1. Price guide refresh
   Caps updated for therapy supports.
2. Registration changes
   New provider obligations apply.`

	updates := parseUpdates(text)
	if len(updates) != 2 {
		t.Fatalf("updates = %v", updates)
	}
	if updates[0].Title != "Price guide refresh" {
		t.Errorf("title = %q", updates[0].Title)
	}
	if updates[1].Description == "" {
		t.Error("description missing")
	}
}

func TestParseUpdatesUnstructured(t *testing.T) {
	if updates := parseUpdates("nothing structured here"); len(updates) != 0 {
		t.Errorf("expected no updates, got %v", updates)
	}
	if updates := parseUpdates(""); len(updates) != 0 {
		t.Errorf("expected no updates for empty text, got %v", updates)
	}
}
