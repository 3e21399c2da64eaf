// Package pipeline wires the full query flow: normalize, match, generate,
// extract, verify, rank, format, and record the interaction in the session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/decoda/decoda/internal/catalog"
	"github.com/decoda/decoda/internal/extract"
	"github.com/decoda/decoda/internal/format"
	"github.com/decoda/decoda/internal/llm"
	"github.com/decoda/decoda/internal/match"
	"github.com/decoda/decoda/internal/model"
	"github.com/decoda/decoda/internal/normalize"
	"github.com/decoda/decoda/internal/rank"
	"github.com/decoda/decoda/internal/session"
	"github.com/decoda/decoda/internal/verify"
)

// Sentinel request errors
var (
	ErrEmptyQuery    = errors.New("query is empty")
	ErrInvalidAmount = errors.New("plan amount must be positive")
)

const degradedStatus = "Live generation unavailable - showing catalogue matches only"

// Request is one user query plus its routing hints
type Request struct {
	SessionID string
	Query     string
	Type      model.QueryType // Empty means auto-detect
	Region    string

	// Budget planning inputs
	PlanAmount       float64
	ExistingSupports []string
	Priorities       []string
}

// Response pairs the formatted answer with the session that recorded it
type Response struct {
	SessionID string
	Answer    *model.FormattedResponse
}

// Engine owns the pipeline stages
type Engine struct {
	cfg       *model.Config
	log       *slog.Logger
	norm      *normalize.Normalizer
	snapshot  *catalog.Snapshot
	index     *match.Index
	extractor *extract.CitationExtractor
	verifier  *verify.Verifier
	ranker    *rank.Ranker
	formatter *format.Formatter
	sessions  *session.Store
	provider  llm.Provider
}

// New builds an engine from configuration. A nil provider is accepted; the
// engine then answers in degraded mode from the catalogue alone.
func New(cfg *model.Config, verifier *verify.Verifier, sessions *session.Store, provider llm.Provider, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	snapshot := catalog.Load(cfg.Catalog.Path, log)
	return &Engine{
		cfg:       cfg,
		log:       log,
		norm:      normalize.New(cfg.Terminology, log),
		snapshot:  snapshot,
		index:     match.New(snapshot),
		extractor: extract.New(cfg.Sources.OfficialDomains),
		verifier:  verifier,
		ranker:    rank.New(cfg.Ranking),
		formatter: format.New(),
		sessions:  sessions,
		provider:  provider,
	}
}

// Sessions exposes the session store for session-level operations
func (e *Engine) Sessions() *session.Store { return e.sessions }

// Normalizer exposes the normalizer for terminology operations
func (e *Engine) Normalizer() *normalize.Normalizer { return e.norm }

// ReloadCatalog re-reads the catalogue dataset and swaps the index
func (e *Engine) ReloadCatalog() {
	e.snapshot = catalog.Load(e.cfg.Catalog.Path, e.log)
	e.index.Reload(e.snapshot)
}

// Answer runs the full pipeline for one query
func (e *Engine) Answer(ctx context.Context, req Request) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	queryType := req.Type
	if queryType == "" || queryType == model.QueryGeneral {
		queryType = DetectQueryType(query)
	}
	if queryType == model.QueryBudget && req.PlanAmount <= 0 {
		return nil, fmt.Errorf("budget planning: %w", ErrInvalidAmount)
	}

	sess, err := e.sessions.GetOrCreate(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	relevant, err := e.sessions.RelevantContext(sess.ID, query)
	if err != nil {
		return nil, fmt.Errorf("session context: %w", err)
	}

	normalized := e.norm.Normalize(query, queryType)
	e.norm.LogQuery(query)
	e.log.Debug("normalized query", "type", queryType, "normalized", normalized)

	// Generation and catalogue matching are independent; overlap them.
	genCh := make(chan genOutcome, 1)
	go func() {
		genCh <- e.generate(ctx, normalized, relevant)
	}()

	limit := e.cfg.Ranking.MaxItems
	if limit <= 0 {
		limit = 5
	}
	matches := e.index.Match(normalized, limit*2)

	gen := <-genCh
	degraded := gen.err != nil || gen.generation == nil
	if gen.err != nil {
		e.log.Warn("generation failed, degrading to catalogue matches", "err", gen.err)
	}

	var citations []model.Citation
	if gen.generation != nil {
		citations = e.extractor.Extract(gen.generation)
		citations = e.verifier.CheckCitations(citations)
		citations = e.ranker.RankCitations(citations)
	}

	genText := ""
	if gen.generation != nil {
		genText = format.ScrubReasoning(gen.generation.Text)
	}

	var resp *model.FormattedResponse
	switch queryType {
	case model.QueryPolicy:
		resp = e.answerPolicy(query, genText, matches, citations)
	case model.QueryService:
		resp = e.answerService(query, genText, matches, citations, req.Region)
	case model.QueryUpdates:
		resp = e.answerUpdates(genText, citations)
	case model.QueryBudget:
		resp = e.answerBudget(req, genText, citations)
	default:
		resp = e.answerCodeLookup(genText, matches, citations, req.Region)
	}

	e.attachVerification(resp, genText)
	format.MarkOutdated(resp, format.DefaultOutdatedDays)
	if degraded {
		resp.Degraded = true
		resp.Status = degradedStatus
	}

	if err := e.recordInteraction(sess.ID, query, queryType, resp); err != nil {
		e.log.Warn("failed to record interaction", "session", sess.ID, "err", err)
	}

	return &Response{SessionID: sess.ID, Answer: resp}, nil
}

type genOutcome struct {
	generation *model.Generation
	err        error
}

func (e *Engine) generate(ctx context.Context, prompt string, relevant *model.RelevantContext) genOutcome {
	if e.provider == nil {
		return genOutcome{}
	}

	var contextLines []string
	for _, q := range relevant.RecentQueries {
		contextLines = append(contextLines, "Previous question: "+q)
	}
	for _, pin := range relevant.PinnedItems {
		contextLines = append(contextLines, "Pinned: "+pin.Content)
	}
	for _, code := range relevant.RelevantCodes {
		contextLines = append(contextLines, "Previously discussed code: "+code)
	}

	generation, err := e.provider.Generate(ctx, llm.Request{
		Prompt:  prompt,
		Context: contextLines,
	})
	return genOutcome{generation: generation, err: err}
}

func (e *Engine) answerCodeLookup(genText string, matches []match.Match, citations []model.Citation, region string) *model.FormattedResponse {
	codes := e.matchesToCodes(matches)
	codes = rank.FlagOutdatedCodes(codes)
	codes = rank.HighlightRegionSpecific(codes, region)
	codes = e.ranker.RankCodes(codes)

	explanation := format.Summarize(genText)
	if explanation == "" {
		explanation = "Closest support catalogue matches for your query"
	}
	return e.formatter.CodeLookup(codes, explanation, citations)
}

func (e *Engine) answerPolicy(query, genText string, matches []match.Match, citations []model.Citation) *model.FormattedResponse {
	guidance := genText
	if guidance == "" {
		guidance = "No guidance could be generated for this topic. Refer to the official operational guidelines."
	}

	var related []string
	lower := strings.ToLower(guidance + " " + query)
	for _, policy := range e.cfg.Sources.KeyPolicies {
		if strings.Contains(lower, strings.ToLower(policy)) {
			related = append(related, policy)
		}
	}

	var refs []model.CodeRef
	for i, m := range matches {
		if i == 3 {
			break
		}
		refs = append(refs, model.CodeRef{Code: m.Entry.ItemNumber, Name: m.Entry.ItemName})
	}

	return e.formatter.PolicyGuidance(policyTopic(query), guidance, related, refs, citations)
}

func (e *Engine) answerService(query, genText string, matches []match.Match, citations []model.Citation, region string) *model.FormattedResponse {
	entities := normalize.ExtractEntities(query)

	codes := e.matchesToCodes(matches)
	codes = rank.HighlightRegionSpecific(codes, region)
	codes = e.ranker.RankCodes(codes)

	services := make([]model.RecommendedService, 0, len(codes))
	categories := append([]string{}, entities.SupportCategories...)
	for _, c := range codes {
		services = append(services, model.RecommendedService{
			ServiceType:    c.Category,
			Code:           c.Code,
			Name:           c.Name,
			Description:    c.Description,
			Price:          c.PriceCaps,
			RegionSpecific: c.RegionSpecific,
		})
		categories = appendUnique(categories, c.Category)
	}

	rationale := genText
	if rationale == "" {
		rationale = "Recommendations selected by similarity to your described needs."
	}

	return e.formatter.ServiceRecommendation(model.ServiceRecommendationResult{
		NeedsAddressed:      entities.NeedsPhrases,
		RecommendedServices: services,
		SupportCategories:   categories,
		Rationale:           rationale,
	}, citations)
}

func (e *Engine) answerUpdates(genText string, citations []model.Citation) *model.FormattedResponse {
	updates := parseUpdates(genText)
	updates = rank.FlagOutdatedUpdates(updates)
	updates = e.ranker.RankUpdates(updates, e.cfg.Sources.OfficialDomains)

	result := model.UpdatesResult{
		UpdatePeriod: "last 30 days",
		Updates:      updates,
	}
	if len(updates) == 0 {
		result.ImpactAssessment = "No recent scheme updates could be retrieved."
	} else {
		result.ImpactAssessment = format.Summarize(genText)
	}
	return e.formatter.Updates(result, citations)
}

func (e *Engine) answerBudget(req Request, genText string, citations []model.Citation) *model.FormattedResponse {
	allocations := parseAllocations(genText, req.PlanAmount)

	categories := make([]string, 0, len(allocations))
	for category := range allocations {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	result := model.BudgetPlanResult{
		TotalAmount:      req.PlanAmount,
		Allocations:      make([]model.Allocation, 0, len(allocations)),
		Rationale:        format.Summarize(genText),
		RecommendedCodes: make(map[string][]model.SupportCode),
	}
	for _, category := range categories {
		amount := allocations[category]
		result.Allocations = append(result.Allocations, model.Allocation{
			Category:   category,
			Amount:     amount,
			Percentage: amount / req.PlanAmount * 100,
		})

		codes := e.matchesToCodes(e.index.Match(category, 3))
		if len(codes) > 0 {
			result.RecommendedCodes[category] = codes
		}
	}

	if len(req.Priorities) > 0 {
		result.Notes = "Priorities considered: " + strings.Join(req.Priorities, ", ")
	}
	if result.Rationale == "" {
		result.Rationale = "Standard allocation split applied across support categories."
	}

	return e.formatter.BudgetPlan(result, citations)
}

// attachVerification extracts typed facts from the generated text, replays
// the verification cache over them, and flags hedged statements.
func (e *Engine) attachVerification(resp *model.FormattedResponse, genText string) {
	facts := verify.ExtractFacts(genText)
	summary := e.verifier.Verify(facts)
	resp.Verification = &summary
	if resp.Warning == "" {
		resp.Warning = summary.Warning
	}

	if flag := e.verifier.FlagUncertainty(genText); flag.ContainsUncertainty {
		resp.Uncertainty = &flag
	}
}

func (e *Engine) recordInteraction(sessionID, query string, queryType model.QueryType, resp *model.FormattedResponse) error {
	entities := normalize.ExtractEntities(query)

	upd := model.SessionUpdate{
		Query: query,
		Codes: entities.Codes,
		Topic: string(queryType),
	}
	if resp.CodeLookup != nil {
		for _, c := range resp.CodeLookup.SupportCodes {
			upd.Codes = append(upd.Codes, c.Code)
		}
	}
	if resp.Policy != nil {
		upd.Policies = resp.Policy.RelatedPolicies
	}

	_, err := e.sessions.Update(sessionID, upd)
	return err
}

func (e *Engine) matchesToCodes(matches []match.Match) []model.SupportCode {
	codes := make([]model.SupportCode, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, model.SupportCode{
			Code:        m.Entry.ItemNumber,
			Name:        m.Entry.ItemName,
			Category:    m.Entry.CategoryName,
			Description: strings.TrimSpace(m.Entry.ItemName + " " + m.Entry.GroupName),
			PriceCaps:   m.Entry.FormatPriceCaps(),
			Rules:       m.Entry.FormatRules(),
			Similarity:  m.Score,
		})
	}
	return codes
}

// policyTopic strips the leading question words so the topic reads as a noun
// phrase
func policyTopic(query string) string {
	topic := strings.TrimSpace(query)
	lower := strings.ToLower(topic)
	for _, prefix := range []string{"what is the policy on ", "what are the rules for ", "what is ", "what are ", "tell me about ", "explain "} {
		if strings.HasPrefix(lower, prefix) {
			topic = topic[len(prefix):]
			break
		}
	}
	return strings.TrimRight(topic, "?")
}

func appendUnique(items []string, item string) []string {
	if item == "" {
		return items
	}
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}
