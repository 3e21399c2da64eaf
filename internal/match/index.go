// Package match ranks catalogue entries against query text using a TF-IDF
// vector space and cosine similarity.
package match

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/decoda/decoda/internal/catalog"
)

// Entries with similarity at or below this threshold are never returned.
const minSimilarity = 0.1

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Match pairs a catalogue entry with its similarity score in (0,1]
type Match struct {
	Entry catalog.Entry
	Score float64
}

// Index is the similarity index over the catalogue snapshot. Reads are
// lock-free; Reload swaps in a fully built space so readers never observe a
// half-built index.
type Index struct {
	space atomic.Pointer[vectorSpace]
}

type vectorSpace struct {
	entries    []catalog.Entry
	vocabulary map[string]int
	idf        []float64
	docVectors []map[int]float64 // L2-normalized, sparse
}

// New builds an index over the snapshot
func New(snapshot *catalog.Snapshot) *Index {
	idx := &Index{}
	idx.Reload(snapshot)
	return idx
}

// Reload rebuilds the vector space from the snapshot and swaps it in
// atomically.
func (i *Index) Reload(snapshot *catalog.Snapshot) {
	i.space.Store(build(snapshot.Entries()))
}

// Match ranks entries by cosine similarity to text, strongest first,
// returning at most topN entries scoring strictly above 0.1. Ties keep
// catalogue row order. An empty catalogue or an out-of-vocabulary query
// yields an empty result, never an error.
func (i *Index) Match(text string, topN int) []Match {
	space := i.space.Load()
	if space == nil || len(space.entries) == 0 || topN <= 0 {
		return nil
	}

	query := space.vectorize(text)
	if len(query) == 0 {
		return nil
	}

	scored := make([]Match, 0, len(space.entries))
	for row, doc := range space.docVectors {
		score := dot(query, doc)
		if score > minSimilarity {
			scored = append(scored, Match{Entry: space.entries[row], Score: score})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

func build(entries []catalog.Entry) *vectorSpace {
	space := &vectorSpace{
		entries:    entries,
		vocabulary: make(map[string]int),
	}

	// Document frequencies over the combined text field
	df := make(map[string]int)
	docTokens := make([][]string, len(entries))
	for row, entry := range entries {
		tokens := tokenize(entry.CombinedText())
		docTokens[row] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable vocabulary ordering
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	space.idf = make([]float64, len(terms))
	n := float64(len(entries))
	for i, term := range terms {
		space.vocabulary[term] = i
		// Smoothed IDF
		space.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	space.docVectors = make([]map[int]float64, len(entries))
	for row, tokens := range docTokens {
		space.docVectors[row] = space.weigh(tokens)
	}

	return space
}

// vectorize tokenizes text and returns its normalized TF-IDF vector
func (s *vectorSpace) vectorize(text string) map[int]float64 {
	return s.weigh(tokenize(text))
}

func (s *vectorSpace) weigh(tokens []string) map[int]float64 {
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if idx, ok := s.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	vec := make(map[int]float64, len(tf))
	norm := 0.0
	for idx, count := range tf {
		w := float64(count) / float64(total) * s.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0.0
	for idx, av := range a {
		if bv, ok := b[idx]; ok {
			sum += av * bv
		}
	}
	return sum
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := stopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were",
		"be", "been", "being", "it", "this", "that", "these", "those", "from",
		"up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after",
		"above", "below", "out", "off", "own", "same", "too", "very", "can",
		"will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
