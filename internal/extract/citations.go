// Package extract pulls citation records out of generation output, either
// from vendor metadata or from the response text itself.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/decoda/decoda/internal/model"
)

// citationPatterns is the ordered regex bank for text extraction. Patterns
// with a capture group yield the group; the bare-URL pattern yields the
// whole match.
var citationPatterns = []*regexp.Regexp{
	// Bare URLs
	regexp.MustCompile(`https?://[^\s)>]+`),
	// Numbered citation blocks: [1]: http://...
	regexp.MustCompile(`\[\d+\]:\s*(https?://[^\s)>]+)`),
	// Footnotes with URLs
	regexp.MustCompile(`\[\^?\d+\][^\[]*?(https?://[^\s)>]+)`),
	// Parenthetical (Source: http://...)
	regexp.MustCompile(`\((?:Source|Reference|Citation)?:?\s*(https?://[^\s)>]+)\)`),
	// Prefixed forms
	regexp.MustCompile(`(?i)Sources?:?\s*(https?://[^\s)>]+)`),
	regexp.MustCompile(`(?i)References?:?\s*(https?://[^\s)>]+)`),
	regexp.MustCompile(`(?i)Citations?:?\s*(https?://[^\s)>]+)`),
}

// sectionHeaders are the markup variants vendors use for a trailing source
// list. When one is present, text extraction is restricted to the content
// after it so incidental body URLs are not picked up.
var sectionHeaders = []*regexp.Regexp{
	regexp.MustCompile(`\n\n[Ss]ources:\s*\n`),
	regexp.MustCompile(`\n\n[Cc]itations:\s*\n`),
	regexp.MustCompile(`\n\n[Rr]eferences:\s*\n`),
	regexp.MustCompile(`### [Ss]ources\s*\n`),
	regexp.MustCompile(`### [Cc]itations\s*\n`),
	regexp.MustCompile(`\*\*[Ss]ources\*\*\s*\n`),
	regexp.MustCompile(`\*\*[Cc]itations\*\*\s*\n`),
}

// CitationExtractor turns generation output into deduplicated Citation
// records classified against the official domain allow-list.
type CitationExtractor struct {
	officialDomains []string
}

// New creates an extractor with the given official-domain allow-list
func New(officialDomains []string) *CitationExtractor {
	return &CitationExtractor{officialDomains: officialDomains}
}

// Extract tries structured metadata first and falls back to text scanning
// only when the metadata yields nothing.
func (e *CitationExtractor) Extract(gen *model.Generation) []model.Citation {
	if gen == nil {
		return nil
	}
	if citations := e.ExtractFromStructured(gen.Meta); len(citations) > 0 {
		return citations
	}
	return e.ExtractFromText(gen.Text)
}

// ExtractFromStructured decodes the vendor metadata variants in priority
// order, stopping at the first non-empty source.
func (e *CitationExtractor) ExtractFromStructured(meta model.GenerationMeta) []model.Citation {
	for _, links := range [][]model.MetaLink{meta.Citations, meta.Sources, meta.Links} {
		if len(links) == 0 {
			continue
		}
		var citations []model.Citation
		seen := make(map[string]struct{})
		for _, link := range links {
			c, ok := e.classify(link.URL)
			if !ok {
				continue
			}
			if _, dup := seen[c.URL]; dup {
				continue
			}
			seen[c.URL] = struct{}{}
			c.Title = link.Title
			if c.Title == "" {
				c.Title = c.Source
			}
			citations = append(citations, c)
		}
		if len(citations) > 0 {
			return citations
		}
	}
	return nil
}

// ExtractFromText applies the regex bank to text, preferring a dedicated
// source section when one exists. URLs are deduplicated by exact string,
// first occurrence wins, discovery order preserved.
func (e *CitationExtractor) ExtractFromText(text string) []model.Citation {
	if text == "" {
		return nil
	}

	if section := citationSection(text); section != "" {
		if citations := e.scan(section); len(citations) > 0 {
			return citations
		}
	}
	return e.scan(text)
}

func (e *CitationExtractor) scan(text string) []model.Citation {
	var urls []string
	seen := make(map[string]struct{})

	for _, pattern := range citationPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			raw := m[0]
			if len(m) > 1 && m[1] != "" {
				raw = m[1]
			}
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}
			urls = append(urls, raw)
		}
	}

	var citations []model.Citation
	for _, raw := range urls {
		if c, ok := e.classify(raw); ok {
			citations = append(citations, c)
		}
	}
	return citations
}

// classify parses the URL authority and checks it against the official
// allow-list. An unparsable URL reads as not-a-citation.
func (e *CitationExtractor) classify(rawURL string) (model.Citation, bool) {
	domain, err := Domain(rawURL)
	if err != nil {
		return model.Citation{}, false
	}

	official := false
	for _, d := range e.officialDomains {
		if strings.Contains(domain, d) {
			official = true
			break
		}
	}

	return model.Citation{
		URL:              rawURL,
		Source:           domain,
		AccessedAt:       time.Now(),
		IsOfficialSource: official,
	}, true
}

// Domain extracts the display domain from a URL: the registrable domain
// when the public suffix list knows the host, the www-stripped host
// otherwise.
func Domain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld, nil
	}
	return strings.TrimPrefix(host, "www."), nil
}

// FormatForDisplay renders citations as a numbered list
func FormatForDisplay(citations []model.Citation) string {
	if len(citations) == 0 {
		return "No citations available"
	}
	var b strings.Builder
	for i, c := range citations {
		title := c.Title
		if title == "" {
			title = c.Source
		}
		fmt.Fprintf(&b, "[%d] %s: %s\n", i+1, title, c.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func citationSection(text string) string {
	for _, header := range sectionHeaders {
		if loc := header.FindStringIndex(text); loc != nil {
			return text[loc[0]:]
		}
	}
	return ""
}
