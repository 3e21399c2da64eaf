package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `Support Item Number,Support Item Name,Support Category Name,Registration Group Name,VIC,NSW,QLD,Provider Travel,Short Notice Cancellations
01_011_0107_1_1,Assistance With Self-Care Activities,Assistance with Daily Life,Daily Personal Activities,$67.56,$67.56,,Y,N
02_051_0108_1_1,Transport To And From Appointments,Transport,,1.00,,,N,
bad row without enough meaning,,,,,,,,
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogue.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesRows(t *testing.T) {
	snap := Load(writeCSV(t, sampleCSV), nil)

	if snap.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", snap.Len())
	}

	first := snap.Entries()[0]
	if first.ItemNumber != "01_011_0107_1_1" {
		t.Errorf("item number = %q", first.ItemNumber)
	}
	if first.PriceCaps["VIC"] != 67.56 {
		t.Errorf("VIC price = %v", first.PriceCaps["VIC"])
	}
	if _, ok := first.PriceCaps["QLD"]; ok {
		t.Error("empty price column must stay absent")
	}
	if !first.RuleFlags["Provider Travel"] {
		t.Error("Provider Travel should be allowed")
	}
	if first.RuleFlags["Short Notice Cancellations"] {
		t.Error("Short Notice Cancellations should be disallowed")
	}

	second := snap.Entries()[1]
	if second.PriceCaps["VIC"] != 1.00 {
		t.Errorf("unprefixed price not parsed: %v", second.PriceCaps)
	}
	if _, ok := second.RuleFlags["Short Notice Cancellations"]; ok {
		t.Error("blank rule column must stay unspecified")
	}
}

func TestLoadMissingFileUsesSample(t *testing.T) {
	snap := Load(filepath.Join(t.TempDir(), "nope.csv"), nil)
	if snap.Len() == 0 {
		t.Fatal("built-in sample catalogue is empty")
	}
}

func TestLoadCorruptFileUsesSample(t *testing.T) {
	snap := Load(writeCSV(t, "no header here"), nil)
	if snap.Len() == 0 {
		t.Fatal("expected fallback to the built-in sample")
	}
}

func TestCombinedText(t *testing.T) {
	e := Entry{ItemName: "Transport", CategoryName: "Travel", GroupName: ""}
	if got := e.CombinedText(); got != "Transport Travel" {
		t.Errorf("CombinedText = %q", got)
	}
}

func TestFormatPriceCapsOrder(t *testing.T) {
	e := Entry{PriceCaps: map[string]float64{"NSW": 67.56, "VIC": 67.56, "Remote": 94.58}}

	got := e.FormatPriceCaps()
	want := "VIC: $67.56; NSW: $67.56; Remote: $94.58"
	if got != want {
		t.Errorf("FormatPriceCaps = %q, want %q", got, want)
	}

	// Map iteration must not leak into the output order
	for i := 0; i < 10; i++ {
		if e.FormatPriceCaps() != want {
			t.Fatal("price formatting not deterministic")
		}
	}
}

func TestFormatRules(t *testing.T) {
	e := Entry{RuleFlags: map[string]bool{"Provider Travel": true, "Short Notice Cancellations": false}}
	got := e.FormatRules()
	if !strings.Contains(got, "Provider Travel: yes") || !strings.Contains(got, "Short Notice Cancellations: no") {
		t.Errorf("FormatRules = %q", got)
	}

	empty := Entry{RuleFlags: map[string]bool{}}
	if empty.FormatRules() != "" {
		t.Errorf("empty rules should render empty, got %q", empty.FormatRules())
	}
}
