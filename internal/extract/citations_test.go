package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decoda/decoda/internal/model"
)

var officialDomains = []string{"ndis.gov.au", "dss.gov.au", "ndiscommission.gov.au", "ndia.gov.au"}

func TestExtractFromTextDedup(t *testing.T) {
	e := New(officialDomains)

	text := "See https://www.ndis.gov.au/pricing for details.\n" +
		"Sources: https://www.ndis.gov.au/pricing\n" +
		"Also https://example.com/blog"

	citations := e.ExtractFromText(text)
	urls := make(map[string]int)
	for _, c := range citations {
		urls[c.URL]++
	}
	assert.Equal(t, 1, urls["https://www.ndis.gov.au/pricing"], "duplicate URL must appear once")
}

func TestExtractFromTextOfficialClassification(t *testing.T) {
	e := New(officialDomains)

	citations := e.ExtractFromText("https://www.ndis.gov.au/pricing and https://randomblog.com/ndis")
	require.Len(t, citations, 2)

	byURL := map[string]model.Citation{}
	for _, c := range citations {
		byURL[c.URL] = c
	}
	assert.True(t, byURL["https://www.ndis.gov.au/pricing"].IsOfficialSource)
	assert.False(t, byURL["https://randomblog.com/ndis"].IsOfficialSource)
}

func TestExtractFromTextPrefersSourceSection(t *testing.T) {
	e := New(officialDomains)

	text := "Some body text with https://bodylink.com/page mentioned.\n\n" +
		"Sources:\nhttps://www.ndis.gov.au/real-source"

	citations := e.ExtractFromText(text)
	require.NotEmpty(t, citations)
	for _, c := range citations {
		assert.NotEqual(t, "https://bodylink.com/page", c.URL,
			"body URL must be ignored when a source section exists")
	}
}

func TestExtractFromTextNumberedBlock(t *testing.T) {
	e := New(officialDomains)
	citations := e.ExtractFromText("[1]: https://www.ndis.gov.au/a\n[2]: https://www.dss.gov.au/b")
	require.Len(t, citations, 2)
}

func TestExtractFromTextUnparsableURLSkipped(t *testing.T) {
	e := New(officialDomains)
	citations := e.ExtractFromText("see http://%zz-invalid and https://www.ndis.gov.au/ok")
	for _, c := range citations {
		assert.NotContains(t, c.URL, "%zz")
	}
}

func TestExtractFromStructuredPriority(t *testing.T) {
	e := New(officialDomains)

	meta := model.GenerationMeta{
		Citations: []model.MetaLink{{URL: "https://www.ndis.gov.au/from-citations"}},
		Sources:   []model.MetaLink{{URL: "https://www.ndis.gov.au/from-sources"}},
	}
	citations := e.ExtractFromStructured(meta)
	require.Len(t, citations, 1)
	assert.Equal(t, "https://www.ndis.gov.au/from-citations", citations[0].URL,
		"Citations variant must win over Sources")

	// Empty first variant falls through to the next
	meta = model.GenerationMeta{
		Sources: []model.MetaLink{{URL: "https://www.ndis.gov.au/from-sources"}},
	}
	citations = e.ExtractFromStructured(meta)
	require.Len(t, citations, 1)
	assert.Equal(t, "https://www.ndis.gov.au/from-sources", citations[0].URL)
}

func TestExtractStructuredFirstTextFallback(t *testing.T) {
	e := New(officialDomains)

	gen := &model.Generation{
		Text: "Body https://www.ndis.gov.au/from-text",
		Meta: model.GenerationMeta{
			Links: []model.MetaLink{{URL: "https://www.ndis.gov.au/from-links", Title: "Pricing"}},
		},
	}
	citations := e.Extract(gen)
	require.Len(t, citations, 1)
	assert.Equal(t, "https://www.ndis.gov.au/from-links", citations[0].URL)
	assert.Equal(t, "Pricing", citations[0].Title)

	gen.Meta = model.GenerationMeta{}
	citations = e.Extract(gen)
	require.Len(t, citations, 1)
	assert.Equal(t, "https://www.ndis.gov.au/from-text", citations[0].URL)
}

func TestExtractNilGeneration(t *testing.T) {
	e := New(officialDomains)
	assert.Nil(t, e.Extract(nil))
	assert.Nil(t, e.ExtractFromText(""))
}

func TestDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.ndis.gov.au/pricing", "ndis.gov.au"},
		{"https://improvements.ndis.gov.au/x", "ndis.gov.au"},
		{"https://example.com/a", "example.com"},
	}
	for _, tt := range tests {
		got, err := Domain(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got, tt.url)
	}

	_, err := Domain("not a url at all ://")
	assert.Error(t, err)
}

func TestFormatForDisplay(t *testing.T) {
	assert.Equal(t, "No citations available", FormatForDisplay(nil))

	out := FormatForDisplay([]model.Citation{
		{URL: "https://www.ndis.gov.au/a", Title: "Pricing", Source: "ndis.gov.au"},
		{URL: "https://example.com/b", Source: "example.com"},
	})
	assert.Contains(t, out, "[1] Pricing: https://www.ndis.gov.au/a")
	assert.Contains(t, out, "[2] example.com: https://example.com/b")
}
