// Package session persists per-conversation context: recent queries,
// mentioned codes and policies, and pinned items. Sessions survive process
// restarts through a file-per-session JSON layout.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/decoda/decoda/internal/model"
)

// ErrNotFound is returned when a session id has no stored record
var ErrNotFound = errors.New("session not found")

// Store manages session records in memory with write-through persistence
type Store struct {
	dir       string
	retention time.Duration
	log       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*model.Session
	locks    map[string]*sync.Mutex // per-session write locks
}

// NewStore creates a store persisting under dir. Records older than
// retentionDays are removed by Sweep.
func NewStore(dir string, retentionDays int, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Store{
		dir:       dir,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log,
		sessions:  make(map[string]*model.Session),
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// Create starts a new session with a fresh id
func (s *Store) Create() (*model.Session, error) {
	now := time.Now()
	sess := &model.Session{
		ID:                uuid.NewString(),
		CreatedAt:         now,
		LastUpdated:       now,
		Queries:           []model.QueryRecord{},
		PinnedItems:       []model.PinnedItem{},
		MentionedCodes:    []string{},
		MentionedPolicies: []string{},
		RecentTopics:      []string{},
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if err := s.persist(sess); err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// Get returns a copy of the session for id, loading from disk when it is not
// in memory. Callers never see later mutations through the returned record.
// A missing record yields ErrNotFound.
func (s *Store) Get(id string) (*model.Session, error) {
	sess, err := s.live(id)
	if err != nil {
		return nil, err
	}

	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()
	return snapshot(sess), nil
}

// live resolves id to the in-memory record shared with Update
func (s *Store) live(id string) (*model.Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	sess, err := s.load(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// Another goroutine may have loaded it first; keep one record
	if existing, ok := s.sessions[id]; ok {
		sess = existing
	} else {
		s.sessions[id] = sess
	}
	s.mu.Unlock()
	return sess, nil
}

// GetOrCreate resolves id to a session, creating a new one when id is empty
// or unknown
func (s *Store) GetOrCreate(id string) (*model.Session, error) {
	if id == "" {
		return s.Create()
	}
	sess, err := s.Get(id)
	if errors.Is(err, ErrNotFound) {
		return s.Create()
	}
	return sess, err
}

// Update applies an interaction to the session and persists it. Query
// history is bounded at 5 and topics at 3, oldest evicted first; codes,
// policies and pins accumulate without bound, deduplicated.
func (s *Store) Update(id string, upd model.SessionUpdate) (*model.Session, error) {
	sess, err := s.live(id)
	if err != nil {
		return nil, err
	}

	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	if upd.Query != "" {
		sess.Queries = append(sess.Queries, model.QueryRecord{Query: upd.Query, Timestamp: now})
		if len(sess.Queries) > model.MaxSessionQueries {
			sess.Queries = sess.Queries[len(sess.Queries)-model.MaxSessionQueries:]
		}
	}
	for _, code := range upd.Codes {
		sess.MentionedCodes = appendUnique(sess.MentionedCodes, code)
	}
	for _, policy := range upd.Policies {
		sess.MentionedPolicies = appendUnique(sess.MentionedPolicies, policy)
	}
	if upd.Topic != "" {
		sess.RecentTopics = appendUnique(sess.RecentTopics, upd.Topic)
		if len(sess.RecentTopics) > model.MaxRecentTopics {
			sess.RecentTopics = sess.RecentTopics[len(sess.RecentTopics)-model.MaxRecentTopics:]
		}
	}
	if upd.Pin != "" {
		sess.PinnedItems = append(sess.PinnedItems, model.PinnedItem{Content: upd.Pin, PinnedAt: now})
	}
	sess.LastUpdated = now

	if err := s.persist(sess); err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// Pin stores an item the user wants kept across the whole session
func (s *Store) Pin(id, content string) (*model.Session, error) {
	return s.Update(id, model.SessionUpdate{Pin: content})
}

// RelevantContext assembles the context slice for a new query: the last two
// queries, all pinned items, and the mentioned codes and policies whose text
// overlaps the query.
func (s *Store) RelevantContext(id, query string) (*model.RelevantContext, error) {
	sess, err := s.live(id)
	if err != nil {
		return nil, err
	}

	// Hold the session lock so a concurrent Update cannot grow the slices
	// mid-read
	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	ctx := &model.RelevantContext{
		RecentQueries:    []string{},
		PinnedItems:      []model.PinnedItem{},
		RelevantCodes:    []string{},
		RelevantPolicies: []string{},
	}

	start := len(sess.Queries) - 2
	if start < 0 {
		start = 0
	}
	for _, q := range sess.Queries[start:] {
		ctx.RecentQueries = append(ctx.RecentQueries, q.Query)
	}

	ctx.PinnedItems = append(ctx.PinnedItems, sess.PinnedItems...)

	lower := strings.ToLower(query)
	for _, code := range sess.MentionedCodes {
		if strings.Contains(lower, strings.ToLower(code)) {
			ctx.RelevantCodes = append(ctx.RelevantCodes, code)
		}
	}
	for _, policy := range sess.MentionedPolicies {
		if strings.Contains(lower, strings.ToLower(policy)) {
			ctx.RelevantPolicies = append(ctx.RelevantPolicies, policy)
		}
	}

	return ctx, nil
}

// List returns the ids of every persisted session
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read session dir: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}

// Delete removes a session from memory and disk
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	delete(s.locks, id)
	s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Sweep removes sessions whose files have not been touched within the
// retention window. Files are judged by modification time, so a session
// active at any point inside the window survives.
func (s *Store) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read session dir: %w", err)
	}

	cutoff := time.Now().Add(-s.retention)
	removed := 0
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		if err := s.Delete(id); err != nil {
			s.log.Warn("failed to sweep session", "id", id, "err", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info("swept expired sessions", "removed", removed)
	}
	return removed, nil
}

func (s *Store) persist(sess *model.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}
	if err := os.WriteFile(s.path(sess.ID), data, 0o644); err != nil {
		return fmt.Errorf("persist session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *Store) load(id string) (*model.Session, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt session file reads as absent
		s.log.Warn("corrupt session file", "id", id, "err", err)
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *Store) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// snapshot deep-copies a session so callers never share the mutable record
func snapshot(sess *model.Session) *model.Session {
	out := *sess
	out.Queries = slices.Clone(sess.Queries)
	out.PinnedItems = slices.Clone(sess.PinnedItems)
	out.MentionedCodes = slices.Clone(sess.MentionedCodes)
	out.MentionedPolicies = slices.Clone(sess.MentionedPolicies)
	out.RecentTopics = slices.Clone(sess.RecentTopics)
	return &out
}

func appendUnique(items []string, item string) []string {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}
