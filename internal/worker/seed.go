package worker

import (
	"context"

	"github.com/decoda/decoda/internal/model"
	"github.com/decoda/decoda/internal/verify"
)

// SeedEntry is one verdict to load into the verification cache. When
// Verified is nil the verdict is derived by cross-referencing Statement
// (or the fact value itself) against the known scheme sources.
type SeedEntry struct {
	Type      model.FactType `json:"type"`
	Value     string         `json:"value"`
	Statement string         `json:"statement,omitempty"`
	Verified  *bool          `json:"verified,omitempty"`
	Sources   []string       `json:"sources,omitempty"`
}

// SeedJob caches one verdict
type SeedJob struct {
	Entry     SeedEntry
	Verifier  *verify.Verifier
	Threshold float64
}

// SeedResult is the outcome of one seed job
type SeedResult struct {
	Fact   model.Fact
	Record model.VerificationRecord
	Err    error
}

// GetError implements Result
func (r SeedResult) GetError() error { return r.Err }

// Execute derives the verdict and writes it to the verification cache
func (j SeedJob) Execute(ctx context.Context) Result {
	fact := model.Fact{Type: j.Entry.Type, Value: j.Entry.Value}

	var record model.VerificationRecord
	if j.Entry.Verified != nil {
		record = model.VerificationRecord{
			Verified: *j.Entry.Verified,
			Sources:  j.Entry.Sources,
		}
	} else {
		statement := j.Entry.Statement
		if statement == "" {
			statement = j.Entry.Value
		}
		record = j.Verifier.CrossReference(statement, j.Threshold)
		record.Sources = append(record.Sources, j.Entry.Sources...)
	}

	if err := ctx.Err(); err != nil {
		return SeedResult{Fact: fact, Err: err}
	}

	err := j.Verifier.CacheVerificationResult(fact, record)
	return SeedResult{Fact: fact, Record: record, Err: err}
}

// Seed loads entries into the verification cache across workers and reports
// how many verdicts were cached, how many verified, and the failures.
func Seed(verifier *verify.Verifier, entries []SeedEntry, threshold float64, workers int) (cached, verified int, errs []error) {
	pool := NewPool(workers)
	pool.Start()

	for _, entry := range entries {
		pool.Submit(SeedJob{Entry: entry, Verifier: verifier, Threshold: threshold})
	}

	for _, result := range pool.Wait() {
		if err := result.GetError(); err != nil {
			errs = append(errs, err)
			continue
		}
		cached++
		if sr, ok := result.(SeedResult); ok && sr.Record.Verified {
			verified++
		}
	}
	return cached, verified, errs
}
