// Package verify scores response payloads by replaying previously cached
// verification verdicts. It never performs live fact-checking: a cache miss
// reads as unverified, and new verdicts arrive only through the explicit
// CacheVerificationResult operation.
package verify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/decoda/decoda/internal/cache"
	"github.com/decoda/decoda/internal/model"
)

// Verification status labels by score threshold
const (
	StatusHighly    = "Highly verified"
	StatusMostly    = "Mostly verified"
	StatusPartially = "Partially verified"
	StatusMinimally = "Minimally verified"
	StatusNoFacts   = "No verifiable facts found"

	lowVerificationWarning = "This information requires additional verification"
)

// Hedging phrases scanned for by FlagUncertainty
var uncertaintyMarkers = []string{
	"may be", "might be", "could be", "possibly", "potentially",
	"unclear", "uncertain", "not specified", "not stated",
	"varies", "depends", "subject to change",
}

// Verifier owns the durable verification store and the legitimacy rules
type Verifier struct {
	store           cache.Store
	officialDomains []string
	keyPolicies     []string
	log             *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-fact-key write locks
}

// New creates a verifier over the given store
func New(store cache.Store, sources model.SourcesConfig, log *slog.Logger) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{
		store:           store,
		officialDomains: sources.OfficialDomains,
		keyPolicies:     sources.KeyPolicies,
		log:             log,
	}
}

// Verify replays cached verdicts for the given facts. The aggregate score
// is verified/total, or the neutral 0.5 when there are no facts (absence of
// facts is not evidence of falsehood). Calling Verify twice without an
// intervening CacheVerificationResult yields identical scores.
func (v *Verifier) Verify(facts []model.Fact) model.VerificationSummary {
	summary := model.VerificationSummary{
		VerifiedFacts:    []model.Fact{},
		UnverifiedFacts:  []model.Fact{},
		Score:            0.5,
		SourcesConsulted: []string{},
	}

	if len(facts) == 0 {
		summary.Status = StatusNoFacts
		return summary
	}

	seenSources := make(map[string]struct{})
	for _, fact := range facts {
		record, ok := v.lookup(fact)
		if ok && record.Verified {
			fact.Verified = true
			summary.VerifiedFacts = append(summary.VerifiedFacts, fact)
		} else {
			summary.UnverifiedFacts = append(summary.UnverifiedFacts, fact)
		}
		if ok {
			for _, source := range record.Sources {
				if _, dup := seenSources[source]; dup {
					continue
				}
				seenSources[source] = struct{}{}
				summary.SourcesConsulted = append(summary.SourcesConsulted, source)
			}
		}
	}

	summary.Score = float64(len(summary.VerifiedFacts)) / float64(len(facts))

	switch {
	case summary.Score > 0.8:
		summary.Status = StatusHighly
	case summary.Score > 0.6:
		summary.Status = StatusMostly
	case summary.Score > 0.4:
		summary.Status = StatusPartially
	default:
		summary.Status = StatusMinimally
		summary.Warning = lowVerificationWarning
	}

	return summary
}

// CacheVerificationResult records a verdict for a fact. This is the only
// way new entries enter the store; it is invoked by the out-of-pipeline
// seeding process. Writes for the same fact key are mutually exclusive.
func (v *Verifier) CacheVerificationResult(fact model.Fact, record model.VerificationRecord) error {
	key := factKey(fact)

	lock := v.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal verification record: %w", err)
	}
	if err := v.store.Set(key, data, 0); err != nil {
		return fmt.Errorf("store verification record: %w", err)
	}
	return nil
}

// CheckCitations annotates each citation's legitimacy: true iff its URL
// parses and its host contains an official domain. Input order is kept.
func (v *Verifier) CheckCitations(citations []model.Citation) []model.Citation {
	checked := make([]model.Citation, len(citations))
	for i, c := range citations {
		c.LegitimateSource = false
		if parsed, err := url.Parse(c.URL); err == nil {
			host := parsed.Hostname()
			for _, d := range v.officialDomains {
				if strings.Contains(host, d) {
					c.LegitimateSource = true
					break
				}
			}
		}
		checked[i] = c
	}
	return checked
}

// FlagUncertainty scans the serialized payload for hedging phrases and
// returns up to 3 surrounding clauses. It is additive only, never blocking.
func (v *Verifier) FlagUncertainty(payload any) model.UncertaintyFlag {
	text := strings.ToLower(serialize(payload))
	if text == "" {
		return model.UncertaintyFlag{}
	}

	var statements []string
	for _, marker := range uncertaintyMarkers {
		pattern := regexp.MustCompile(`[^.!?]*\b` + regexp.QuoteMeta(marker) + `\b[^.!?]*[.!?]`)
		statements = append(statements, pattern.FindAllString(text, -1)...)
	}

	if len(statements) == 0 {
		return model.UncertaintyFlag{}
	}
	if len(statements) > 3 {
		statements = statements[:3]
	}
	return model.UncertaintyFlag{ContainsUncertainty: true, Statements: statements}
}

// CrossReference computes a heuristic verdict for a factual statement from
// the known policy names and code shapes. It backs the seeding process, not
// the request pipeline.
func (v *Verifier) CrossReference(statement string, threshold float64) model.VerificationRecord {
	record := model.VerificationRecord{Sources: []string{}}
	confidence := 0.0
	lower := strings.ToLower(statement)

	if regexp.MustCompile(`(?i)\b(NDIS plan|NDIS funding|NDIS support)\b`).MatchString(statement) {
		confidence = 0.7
		record.Sources = append(record.Sources, "NDIS general information")
	}

	for _, policy := range v.keyPolicies {
		if strings.Contains(lower, strings.ToLower(policy)) {
			confidence = 0.8
			record.Sources = append(record.Sources, "NDIS "+policy)
		}
	}

	if factPatterns[0].pattern.MatchString(statement) {
		if confidence < 0.6 {
			confidence = 0.6
		}
		record.Sources = append(record.Sources, "NDIS Support Catalogue")
	}

	record.Verified = confidence >= threshold
	return record
}

func (v *Verifier) lookup(fact model.Fact) (model.VerificationRecord, bool) {
	data, found := v.store.Get(factKey(fact))
	if !found {
		return model.VerificationRecord{}, false
	}
	var record model.VerificationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// A malformed cached file reads as unverified and is skipped
		v.log.Warn("malformed verification record", "type", fact.Type, "value", fact.Value, "err", err)
		return model.VerificationRecord{}, false
	}
	return record, true
}

func (v *Verifier) keyLock(key string) *sync.Mutex {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.locks == nil {
		v.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := v.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		v.locks[key] = lock
	}
	return lock
}

func factKey(fact model.Fact) string {
	return cache.Key(string(fact.Type) + ":" + fact.Value)
}
