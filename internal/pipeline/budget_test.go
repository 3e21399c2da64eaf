package pipeline

import (
	"math"
	"testing"
)

func TestParseAllocationsJSON(t *testing.T) {
	text := `Here is the breakdown:
{"Core Supports": 30000, "Capacity Building": 12500, "Capital Supports": 7500}
as requested.`

	got := parseAllocations(text, 50000)
	if len(got) != 3 {
		t.Fatalf("allocations = %v", got)
	}
	if got["Core Supports"] != 30000 {
		t.Errorf("core = %v", got["Core Supports"])
	}
}

func TestParseAllocationsLines(t *testing.T) {
	text := "Suggested split:\nCore Supports: $30,000\nCapacity Building: $12,500.50\n"

	got := parseAllocations(text, 50000)
	if got["Core Supports"] != 30000 {
		t.Errorf("core = %v", got["Core Supports"])
	}
	if got["Capacity Building"] != 12500.50 {
		t.Errorf("capacity = %v", got["Capacity Building"])
	}
}

func TestParseAllocationsFallback(t *testing.T) {
	got := parseAllocations("no structured content at all", 10000)

	total := 0.0
	for _, amount := range got {
		total += amount
	}
	if math.Abs(total-10000) > 0.01 {
		t.Errorf("default split must cover the full amount, got %v", total)
	}
	if got["Core Supports"] != 6000 {
		t.Errorf("core = %v", got["Core Supports"])
	}
}

func TestParseAllocationsIgnoresNonPositive(t *testing.T) {
	got := parseAllocations(`{"Core Supports": -5, "Capacity Building": 100}`, 1000)
	if _, ok := got["Core Supports"]; ok {
		t.Error("negative allocation kept")
	}
	if got["Capacity Building"] != 100 {
		t.Errorf("capacity = %v", got["Capacity Building"])
	}
}
