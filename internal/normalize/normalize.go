// Package normalize rewrites raw user queries into the canonical form the
// similarity index and the generation service expect: acronyms expanded,
// support codes in underscore format, and a type-specific context prefix.
package normalize

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decoda/decoda/internal/model"
)

var (
	dottedCode  = regexp.MustCompile(`(\d{2})\.(\d{3})\.(\d{4})\.(\d)\.(\d)`)
	dashedCode  = regexp.MustCompile(`(\d{2})-(\d{3})-(\d{4})-(\d)-(\d)`)
	partialCode = regexp.MustCompile(`\b(\d{2})(\d{3})\b`)
)

// terminology is the persisted shape of the vocabulary file
type terminology struct {
	Acronyms    map[string]string `yaml:"acronyms"`
	CommonTerms map[string]string `yaml:"common_terms"`
}

// Normalizer owns the injectable terminology tables. It is safe for
// concurrent reads; Teach is the only mutating operation and persists the
// updated table.
type Normalizer struct {
	path  string
	terms terminology
	log   *slog.Logger
}

// New builds a normalizer from the terminology config. A missing or
// malformed vocabulary file falls back to the built-in table; entries from
// the config override file entries.
func New(cfg model.TerminologyConfig, log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}

	terms := defaultTerminology()
	if cfg.Path != "" {
		if data, err := os.ReadFile(cfg.Path); err == nil {
			var loaded terminology
			if err := yaml.Unmarshal(data, &loaded); err != nil {
				log.Warn("terminology file malformed, using built-in table", "path", cfg.Path, "err", err)
			} else {
				for k, v := range loaded.Acronyms {
					terms.Acronyms[k] = v
				}
				for k, v := range loaded.CommonTerms {
					terms.CommonTerms[k] = v
				}
			}
		}
	}
	for k, v := range cfg.Acronyms {
		terms.Acronyms[k] = v
	}
	for k, v := range cfg.CommonTerms {
		terms.CommonTerms[k] = v
	}

	return &Normalizer{path: cfg.Path, terms: terms, log: log}
}

// Normalize applies the full rewrite chain and prepends the type-specific
// context phrase. It never fails.
func (n *Normalizer) Normalize(rawQuery string, queryType model.QueryType) string {
	enhanced := strings.TrimSpace(rawQuery)
	enhanced = n.ExpandAcronyms(enhanced)
	enhanced = CanonicalizeCodes(enhanced)

	switch queryType {
	case model.QueryPolicy:
		enhanced = "NDIS policy question: " + enhanced
	case model.QueryService:
		enhanced = "NDIS service question: " + enhanced
	case model.QueryBudget:
		enhanced = "NDIS budget planning question: " + enhanced
	}

	return enhanced
}

// ExpandAcronyms rewrites every whole-word acronym occurrence to
// "ACRONYM (Full Form)". Acronyms are applied in sorted order so the output
// is deterministic.
func (n *Normalizer) ExpandAcronyms(query string) string {
	keys := make([]string, 0, len(n.terms.Acronyms))
	for k := range n.terms.Acronyms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expanded := query
	for _, acronym := range keys {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(acronym) + `\b`)
		if err != nil {
			continue
		}
		expanded = re.ReplaceAllString(expanded, acronym+" ("+n.terms.Acronyms[acronym]+")")
	}
	return expanded
}

// CanonicalizeCodes rewrites dot- and dash-delimited support codes into the
// underscore form, and partial 2+3 digit prefixes into a wildcard pattern.
func CanonicalizeCodes(query string) string {
	corrected := dottedCode.ReplaceAllString(query, "${1}_${2}_${3}_${4}_${5}")
	corrected = dashedCode.ReplaceAllString(corrected, "${1}_${2}_${3}_${4}_${5}")
	corrected = partialCode.ReplaceAllString(corrected, "${1}_${2}_xxxx_x_x")
	return corrected
}

// Teach adds an acronym to the table and persists the updated vocabulary.
func (n *Normalizer) Teach(acronym, fullForm string) error {
	if acronym == "" || fullForm == "" {
		return fmt.Errorf("acronym and full form are required")
	}
	n.terms.Acronyms[acronym] = fullForm

	if n.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(n.path), 0755); err != nil {
		return fmt.Errorf("create terminology dir: %w", err)
	}
	data, err := yaml.Marshal(n.terms)
	if err != nil {
		return fmt.Errorf("marshal terminology: %w", err)
	}
	if err := os.WriteFile(n.path, data, 0644); err != nil {
		return fmt.Errorf("write terminology: %w", err)
	}
	return nil
}

// LogQuery appends the raw query to the query log next to the terminology
// file. Failures are logged, never surfaced.
func (n *Normalizer) LogQuery(query string) {
	if n.path == "" {
		return
	}
	logPath := filepath.Join(filepath.Dir(n.path), "query_log.txt")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		n.log.Warn("query log unavailable", "err", err)
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, query); err != nil {
		n.log.Warn("query log write failed", "err", err)
	}
}

func defaultTerminology() terminology {
	return terminology{
		Acronyms: map[string]string{
			"SIL":  "Supported Independent Living",
			"SDA":  "Specialist Disability Accommodation",
			"LAC":  "Local Area Coordinator",
			"ECEI": "Early Childhood Early Intervention",
			"AT":   "Assistive Technology",
		},
		CommonTerms: map[string]string{
			"plan":        "NDIS plan",
			"participant": "NDIS participant",
			"funding":     "NDIS funding",
			"provider":    "NDIS provider",
			"support":     "NDIS support",
		},
	}
}
