package pipeline

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var allocationLine = regexp.MustCompile(`(?m)^[\s*-]*([A-Za-z][A-Za-z /&]+?):\s*\$([\d,]+(?:\.\d{1,2})?)`)

// parseAllocations extracts category/amount pairs from generated text. It
// tries an embedded JSON object first, then line-by-line "Category: $amount"
// scanning, and finally falls back to the standard plan split.
func parseAllocations(text string, total float64) map[string]float64 {
	if allocations := parseAllocationJSON(text); len(allocations) > 0 {
		return allocations
	}

	allocations := make(map[string]float64)
	for _, m := range allocationLine.FindAllStringSubmatch(text, -1) {
		category := strings.TrimSpace(m[1])
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		if err != nil || amount <= 0 {
			continue
		}
		allocations[category] = amount
	}
	if len(allocations) > 0 {
		return allocations
	}

	return defaultAllocations(total)
}

// parseAllocationJSON finds the first {...} block whose values are numbers
func parseAllocationJSON(text string) map[string]float64 {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}

	var raw map[string]json.Number
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil
	}

	allocations := make(map[string]float64, len(raw))
	for category, number := range raw {
		amount, err := number.Float64()
		if err != nil || amount <= 0 {
			continue
		}
		allocations[category] = amount
	}
	return allocations
}

// defaultAllocations is the standard plan split used when no breakdown can
// be parsed: core supports 60%, capacity building 25%, capital supports 15%.
func defaultAllocations(total float64) map[string]float64 {
	if total <= 0 {
		return map[string]float64{}
	}
	return map[string]float64{
		"Core Supports":     total * 0.60,
		"Capacity Building": total * 0.25,
		"Capital Supports":  total * 0.15,
	}
}
