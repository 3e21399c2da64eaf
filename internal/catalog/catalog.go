// Package catalog holds the immutable support catalogue snapshot loaded at
// startup. Rows are read-only after load; row order is preserved and used
// downstream for stable tie-breaking.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Entry is one row of the support catalogue
type Entry struct {
	ItemNumber   string             // Canonical xx_xxx_xxxx_x_x identifier
	ItemName     string             // Display name
	CategoryName string             // Support category
	GroupName    string             // Registration group, may be empty
	PriceCaps    map[string]float64 // Region -> price cap, sparse
	RuleFlags    map[string]bool    // Rule name -> yes/no; absent key means unspecified
}

// CombinedText returns the text field the similarity index vectorizes:
// display name, category and group concatenated.
func (e *Entry) CombinedText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{e.ItemName, e.CategoryName, e.GroupName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// FormatPriceCaps renders the price table in the fixed region order, e.g.
// "VIC: $67.56; NSW: $67.56". Empty when no caps are published.
func (e *Entry) FormatPriceCaps() string {
	parts := make([]string, 0, len(e.PriceCaps))
	for _, region := range priceRegions {
		if price, ok := e.PriceCaps[region]; ok {
			parts = append(parts, fmt.Sprintf("%s: $%.2f", region, price))
		}
	}
	return strings.Join(parts, "; ")
}

// FormatRules renders the specified rule flags in the fixed column order,
// e.g. "Provider Travel: yes; Short Notice Cancellations: no". Unspecified
// rules are omitted.
func (e *Entry) FormatRules() string {
	parts := make([]string, 0, len(e.RuleFlags))
	for _, rule := range ruleColumns {
		allowed, ok := e.RuleFlags[rule]
		if !ok {
			continue
		}
		value := "no"
		if allowed {
			value = "yes"
		}
		parts = append(parts, rule+": "+value)
	}
	return strings.Join(parts, "; ")
}

// Snapshot is an immutable ordered set of catalogue entries
type Snapshot struct {
	entries []Entry
}

// NewSnapshot wraps rows into a snapshot, keeping their order
func NewSnapshot(entries []Entry) *Snapshot {
	return &Snapshot{entries: entries}
}

// Entries returns the rows in catalogue order. Callers must not mutate them.
func (s *Snapshot) Entries() []Entry { return s.entries }

// Len reports the number of rows
func (s *Snapshot) Len() int { return len(s.entries) }

// Regions recognised in the price-cap columns of the dataset
var priceRegions = []string{"VIC", "NSW", "QLD", "SA", "WA", "TAS", "NT", "ACT", "Remote", "Very Remote"}

// Rule-flag columns of the dataset
var ruleColumns = []string{
	"Provider Travel",
	"NDIA Requested Reports",
	"Short Notice Cancellations",
	"Non-Face-to-Face Support",
}

// Load reads the catalogue CSV at path. A missing or unreadable file falls
// back to the built-in sample catalogue; a malformed row is logged and
// skipped, never aborting the load.
func Load(path string, log *slog.Logger) *Snapshot {
	if log == nil {
		log = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		log.Warn("catalogue file unavailable, using built-in sample", "path", path, "err", err)
		return NewSnapshot(defaultEntries())
	}
	defer f.Close()

	entries, err := parse(f, log)
	if err != nil || len(entries) == 0 {
		log.Warn("catalogue file unusable, using built-in sample", "path", path, "err", err)
		return NewSnapshot(defaultEntries())
	}

	log.Info("loaded support catalogue", "path", path, "items", len(entries))
	return NewSnapshot(entries)
}

func parse(r io.Reader, log *slog.Logger) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["Support Item Number"]; !ok {
		return nil, fmt.Errorf("missing Support Item Number column")
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var entries []Entry
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Warn("skipping malformed catalogue row", "line", line, "err", err)
			continue
		}

		e := Entry{
			ItemNumber:   field(row, "Support Item Number"),
			ItemName:     field(row, "Support Item Name"),
			CategoryName: field(row, "Support Category Name"),
			GroupName:    field(row, "Registration Group Name"),
			PriceCaps:    make(map[string]float64),
			RuleFlags:    make(map[string]bool),
		}
		if e.ItemNumber == "" || e.ItemName == "" {
			log.Warn("skipping catalogue row without item number or name", "line", line)
			continue
		}

		for _, region := range priceRegions {
			raw := field(row, region)
			if raw == "" {
				continue
			}
			price, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
			if err != nil {
				log.Warn("skipping unparsable price cap", "line", line, "region", region, "value", raw)
				continue
			}
			e.PriceCaps[region] = price
		}

		for _, rule := range ruleColumns {
			switch field(row, rule) {
			case "Y":
				e.RuleFlags[rule] = true
			case "N":
				e.RuleFlags[rule] = false
			}
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// defaultEntries is a small slice of the published catalogue, enough to keep
// code lookup functional when the dataset file is absent.
func defaultEntries() []Entry {
	return []Entry{
		{
			ItemNumber:   "01_011_0107_1_1",
			ItemName:     "Assistance With Self-Care Activities - Standard - Weekday Daytime",
			CategoryName: "Assistance with Daily Life",
			GroupName:    "Daily Personal Activities",
			PriceCaps:    map[string]float64{"NSW": 67.56, "VIC": 67.56, "Remote": 94.58},
			RuleFlags:    map[string]bool{"Provider Travel": true, "Short Notice Cancellations": true},
		},
		{
			ItemNumber:   "01_013_0107_1_1",
			ItemName:     "Assistance With Self-Care Activities - Standard - Weekday Evening",
			CategoryName: "Assistance with Daily Life",
			GroupName:    "Daily Personal Activities",
			PriceCaps:    map[string]float64{"NSW": 74.44, "VIC": 74.44},
			RuleFlags:    map[string]bool{"Provider Travel": true},
		},
		{
			ItemNumber:   "02_051_0108_1_1",
			ItemName:     "Transport To And From Appointments",
			CategoryName: "Transport",
			GroupName:    "Assistance with Travel/Transport Arrangements",
			PriceCaps:    map[string]float64{"NSW": 1.0},
			RuleFlags:    map[string]bool{"Provider Travel": false},
		},
		{
			ItemNumber:   "03_092_0117_1_1",
			ItemName:     "Low Cost Assistive Technology For Personal Care And Safety",
			CategoryName: "Consumables",
			GroupName:    "Assistive Equipment",
			PriceCaps:    map[string]float64{},
			RuleFlags:    map[string]bool{},
		},
		{
			ItemNumber:   "04_104_0125_6_1",
			ItemName:     "Community Social And Recreational Activities",
			CategoryName: "Assistance with Social, Economic and Community Participation",
			GroupName:    "Participation in Community",
			PriceCaps:    map[string]float64{"NSW": 67.56, "QLD": 67.56},
			RuleFlags:    map[string]bool{"Short Notice Cancellations": true},
		},
		{
			ItemNumber:   "07_001_0106_8_3",
			ItemName:     "Support Coordination Level 1: Support Connection",
			CategoryName: "Support Coordination",
			GroupName:    "Support Coordination and Plan Management",
			PriceCaps:    map[string]float64{"NSW": 65.09},
			RuleFlags:    map[string]bool{"NDIA Requested Reports": true},
		},
		{
			ItemNumber:   "15_056_0128_1_3",
			ItemName:     "Assessment Recommendation Therapy And/Or Training - Occupational Therapist",
			CategoryName: "Improved Daily Living Skills",
			GroupName:    "Therapeutic Supports",
			PriceCaps:    map[string]float64{"NSW": 193.99, "Remote": 271.59},
			RuleFlags:    map[string]bool{"Provider Travel": true, "Non-Face-to-Face Support": true},
		},
	}
}
