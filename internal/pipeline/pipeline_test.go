package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/decoda/decoda/internal/cache"
	"github.com/decoda/decoda/internal/llm"
	"github.com/decoda/decoda/internal/model"
	"github.com/decoda/decoda/internal/session"
	"github.com/decoda/decoda/internal/verify"
)

// fakeProvider returns a canned generation
type fakeProvider struct {
	gen *model.Generation
	err error
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Generate(ctx context.Context, req llm.Request) (*model.Generation, error) {
	return f.gen, f.err
}
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Catalog.Path = ""     // built-in sample
	cfg.Terminology.Path = "" // built-in table, no persistence
	cfg.Cache.Dir = t.TempDir()
	cfg.Session.Dir = t.TempDir()
	return cfg
}

func newTestEngine(t *testing.T, cfg *model.Config, provider llm.Provider) *Engine {
	t.Helper()
	store := cache.NewLayered(time.Minute, cfg.Cache.Dir)
	verifier := verify.New(store, cfg.Sources, nil)
	sessions, err := session.NewStore(cfg.Session.Dir, cfg.Session.RetentionDays, nil)
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	return New(cfg, verifier, sessions, provider, nil)
}

func TestAnswerEmptyQuery(t *testing.T) {
	e := newTestEngine(t, testConfig(t), nil)
	if _, err := e.Answer(context.Background(), Request{Query: "   "}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestAnswerBudgetRequiresAmount(t *testing.T) {
	e := newTestEngine(t, testConfig(t), nil)
	_, err := e.Answer(context.Background(), Request{Query: "plan my budget", Type: model.QueryBudget})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestAnswerCodeLookup(t *testing.T) {
	provider := &fakeProvider{gen: &model.Generation{
		Text: "Weekday personal care is billed under 01_011_0107_1_1 at $67.56 per hour.\n\n" +
			"Sources:\nhttps://www.ndis.gov.au/providers/pricing-arrangements",
	}}
	e := newTestEngine(t, testConfig(t), provider)

	resp, err := e.Answer(context.Background(), Request{Query: "what is the code for personal care"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	answer := resp.Answer
	if answer.Type != model.QueryCode {
		t.Errorf("type = %v", answer.Type)
	}
	if answer.Degraded {
		t.Error("healthy provider must not degrade")
	}
	if answer.CodeLookup == nil || len(answer.CodeLookup.SupportCodes) == 0 {
		t.Fatal("expected catalogue matches for personal care")
	}
	if len(answer.Citations) != 1 || !answer.Citations[0].IsOfficialSource {
		t.Errorf("citations = %+v", answer.Citations)
	}
	if answer.Verification == nil {
		t.Fatal("verification summary missing")
	}
	if len(answer.Verification.UnverifiedFacts) == 0 {
		t.Error("facts from an unseeded cache must be unverified")
	}
	if answer.ConfidenceScore <= 0.5 {
		t.Errorf("official citation should lift confidence, got %v", answer.ConfidenceScore)
	}
}

func TestAnswerVerifiedAfterSeeding(t *testing.T) {
	cfg := testConfig(t)
	provider := &fakeProvider{gen: &model.Generation{
		Text: "Use code 01_011_0107_1_1.",
	}}
	e := newTestEngine(t, cfg, provider)

	// Seed the verdict the way the out-of-pipeline process would
	err := e.verifier.CacheVerificationResult(
		model.Fact{Type: model.FactCode, Value: "01_011_0107_1_1"},
		model.VerificationRecord{Verified: true, Sources: []string{"NDIS Support Catalogue"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := e.Answer(context.Background(), Request{Query: "code for personal care"})
	if err != nil {
		t.Fatal(err)
	}
	v := resp.Answer.Verification
	if len(v.VerifiedFacts) != 1 {
		t.Errorf("verified facts = %v", v.VerifiedFacts)
	}
	if v.Status != verify.StatusHighly {
		t.Errorf("status = %q", v.Status)
	}
}

func TestAnswerDegradedOnProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("backend down")}
	e := newTestEngine(t, testConfig(t), provider)

	resp, err := e.Answer(context.Background(), Request{Query: "code for personal care"})
	if err != nil {
		t.Fatalf("degraded mode must still answer: %v", err)
	}
	if !resp.Answer.Degraded {
		t.Error("expected degraded flag")
	}
	if resp.Answer.Status == "" {
		t.Error("expected explicit degraded status")
	}
	if resp.Answer.CodeLookup == nil || len(resp.Answer.CodeLookup.SupportCodes) == 0 {
		t.Error("catalogue matches must survive provider failure")
	}
}

func TestAnswerNoProviderDegrades(t *testing.T) {
	e := newTestEngine(t, testConfig(t), nil)
	resp, err := e.Answer(context.Background(), Request{Query: "code for personal care"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Answer.Degraded {
		t.Error("nil provider must degrade")
	}
	if resp.Answer.Warning == "" {
		t.Error("an answer with no current citations must carry the outdated warning")
	}
}

func TestAnswerRecordsSession(t *testing.T) {
	e := newTestEngine(t, testConfig(t), nil)

	resp, err := e.Answer(context.Background(), Request{Query: "code for personal care"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected an auto-created session id")
	}

	sess, err := e.Sessions().Get(resp.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Queries) != 1 || sess.Queries[0].Query != "code for personal care" {
		t.Errorf("queries = %+v", sess.Queries)
	}

	// Follow-up on the same session accumulates
	resp2, err := e.Answer(context.Background(), Request{SessionID: resp.SessionID, Query: "what about transport code"})
	if err != nil {
		t.Fatal(err)
	}
	if resp2.SessionID != resp.SessionID {
		t.Errorf("session changed: %s vs %s", resp2.SessionID, resp.SessionID)
	}
	sess, _ = e.Sessions().Get(resp.SessionID)
	if len(sess.Queries) != 2 {
		t.Errorf("queries = %+v", sess.Queries)
	}
}

func TestAnswerBudget(t *testing.T) {
	provider := &fakeProvider{gen: &model.Generation{
		Text: `Suggested split: {"Core Supports": 30000, "Capacity Building": 12500, "Capital Supports": 7500}`,
	}}
	e := newTestEngine(t, testConfig(t), provider)

	resp, err := e.Answer(context.Background(), Request{
		Query:      "plan my budget",
		Type:       model.QueryBudget,
		PlanAmount: 50000,
		Priorities: []string{"therapy"},
	})
	if err != nil {
		t.Fatal(err)
	}

	budget := resp.Answer.Budget
	if budget == nil {
		t.Fatal("budget section missing")
	}
	if budget.TotalAmount != 50000 {
		t.Errorf("total = %v", budget.TotalAmount)
	}
	if len(budget.Allocations) != 3 {
		t.Fatalf("allocations = %+v", budget.Allocations)
	}
	total := 0.0
	for _, a := range budget.Allocations {
		total += a.Percentage
	}
	if total < 99.9 || total > 100.1 {
		t.Errorf("percentages sum to %v", total)
	}
	if budget.Notes == "" {
		t.Error("priorities note missing")
	}
}

func TestAnswerUpdates(t *testing.T) {
	provider := &fakeProvider{gen: &model.Generation{
		Text: "1. Price guide refresh\n   Caps updated from 2026-07-01.\n2. Registration changes\n   New obligations.",
	}}
	e := newTestEngine(t, testConfig(t), provider)

	resp, err := e.Answer(context.Background(), Request{Query: "latest scheme updates"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Answer.Type != model.QueryUpdates {
		t.Errorf("type = %v", resp.Answer.Type)
	}
	if resp.Answer.Updates == nil || len(resp.Answer.Updates.Updates) != 2 {
		t.Fatalf("updates = %+v", resp.Answer.Updates)
	}
}

func TestAnswerService(t *testing.T) {
	e := newTestEngine(t, testConfig(t), nil)

	resp, err := e.Answer(context.Background(), Request{Query: "I need help with personal care"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Answer.Type != model.QueryService {
		t.Errorf("type = %v", resp.Answer.Type)
	}
	service := resp.Answer.Service
	if service == nil {
		t.Fatal("service section missing")
	}
	if len(service.NeedsAddressed) == 0 {
		t.Error("needs not extracted")
	}
	if len(service.RecommendedServices) == 0 {
		t.Error("expected recommendations from the sample catalogue")
	}
}

func TestAnswerRegionHighlight(t *testing.T) {
	e := newTestEngine(t, testConfig(t), nil)

	resp, err := e.Answer(context.Background(), Request{
		Query:  "code for personal care",
		Region: "Remote",
	})
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, c := range resp.Answer.CodeLookup.SupportCodes {
		if c.RegionSpecific && c.RegionPrice != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a Remote price highlight from the sample catalogue")
	}
}
