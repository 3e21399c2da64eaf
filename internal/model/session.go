package model

import "time"

// Limits on the bounded session collections. Pins and mention sets are
// append-only and unbounded.
const (
	MaxSessionQueries = 5
	MaxRecentTopics   = 3
)

// Session holds per-user rolling conversational memory
type Session struct {
	ID          string    `json:"session_id"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`

	Queries           []QueryRecord `json:"queries"`                 // FIFO, oldest dropped beyond MaxSessionQueries
	PinnedItems       []PinnedItem  `json:"pinned_items"`            // Append-only, duplicates allowed
	MentionedCodes    []string      `json:"support_codes_mentioned"` // Set semantics, insertion order kept
	MentionedPolicies []string      `json:"relevant_policies"`       // Set semantics, insertion order kept
	RecentTopics      []string      `json:"recent_topics"`           // FIFO, oldest dropped beyond MaxRecentTopics
}

// QueryRecord is one entry of the session query history
type QueryRecord struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// PinnedItem is content the user pinned for future reference
type PinnedItem struct {
	Content  string    `json:"content"`
	PinnedAt time.Time `json:"pinned_at"`
}

// SessionUpdate carries the fields of one atomic session mutation.
// Zero-value fields are ignored.
type SessionUpdate struct {
	Query    string
	Codes    []string
	Policies []string
	Topic    string
	Pin      string
}

// RelevantContext is the slice of session memory matched to the current query
type RelevantContext struct {
	RecentQueries    []string     `json:"recent_queries"` // Last 2 at most
	PinnedItems      []PinnedItem `json:"pinned_items"`
	RelevantCodes    []string     `json:"relevant_codes"`
	RelevantPolicies []string     `json:"relevant_policies"`
}
