package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/decoda/decoda/internal/model"
)

var (
	numberedSection = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	updateDateForms = []string{"2006-01-02", "02/01/2006", "2 January 2006", "January 2, 2006"}
)

// parseUpdates extracts scheme change notices from generated text: a JSON
// array when the model produced one, numbered sections otherwise.
func parseUpdates(text string) []model.UpdateItem {
	if updates := parseUpdateJSON(text); len(updates) > 0 {
		return updates
	}
	return parseUpdateSections(text)
}

type updateJSON struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	EffectiveDate string `json:"effective_date"`
	Source        string `json:"source"`
}

func parseUpdateJSON(text string) []model.UpdateItem {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var raw []updateJSON
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil
	}

	var updates []model.UpdateItem
	for _, u := range raw {
		if u.Title == "" {
			continue
		}
		updates = append(updates, model.UpdateItem{
			Title:         u.Title,
			Description:   u.Description,
			EffectiveDate: u.EffectiveDate,
			Source:        u.Source,
			Date:          parseUpdateDate(u.EffectiveDate),
		})
	}
	return updates
}

// parseUpdateSections splits numbered lists: the first line of each section
// is the title, the remainder the description.
func parseUpdateSections(text string) []model.UpdateItem {
	locs := numberedSection.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var updates []model.UpdateItem
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		section := strings.TrimSpace(text[loc[1]:end])
		if section == "" {
			continue
		}

		title := section
		description := ""
		if idx := strings.IndexAny(section, "\n"); idx >= 0 {
			title = strings.TrimSpace(section[:idx])
			description = strings.TrimSpace(section[idx+1:])
		}
		title = strings.TrimRight(strings.TrimSpace(title), ":")
		if title == "" {
			continue
		}
		updates = append(updates, model.UpdateItem{Title: title, Description: description})
	}
	return updates
}

func parseUpdateDate(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, form := range updateDateForms {
		if t, err := time.Parse(form, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
