package knowledge

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is an in-memory knowledge store backed by a PersistencePort. The
// in-memory state is authoritative; persistence writes are best-effort and
// failures are logged and swallowed, never surfaced to callers.
//
// All operations are serialized by an internal mutex. Get is a read that
// also mutates (it bumps the access count), so even read paths take the
// write lock.
type Store struct {
	mu      sync.Mutex
	port    PersistencePort
	entries map[string]*Entry
	now     func() time.Time
}

// NewStore creates a store and loads the previous snapshot from the port.
// A missing or unparsable snapshot starts an empty store, never an error.
func NewStore(port PersistencePort) *Store {
	s := &Store{
		port:    port,
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := s.port.Load()
	if err != nil {
		log.Printf("[KnowledgeStore] Failed to load snapshot, starting empty: %v", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[KnowledgeStore] Corrupt snapshot, starting empty: %v", err)
		return
	}

	for i := range entries {
		entry := entries[i]
		s.entries[entry.ID] = &entry
	}
}

// persist writes the full entry set through the port. Must be called with
// the mutex held.
func (s *Store) persist() {
	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, *entry)
	}
	// Stable snapshot order keeps file-backed ports diff-friendly.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})

	data, err := json.Marshal(entries)
	if err != nil {
		log.Printf("[KnowledgeStore] Failed to serialize snapshot: %v", err)
		return
	}
	if err := s.port.Save(data); err != nil {
		log.Printf("[KnowledgeStore] Failed to persist snapshot: %v", err)
	}
}

// clampImportance bounds importance to its documented 0..1 range.
func clampImportance(importance float64) float64 {
	if importance < 0 {
		return 0
	}
	if importance > 1 {
		return 1
	}
	return importance
}

// Save stores a new entry, assigning a unique ID and timestamps, and
// persists the snapshot. The stored entry is returned by value.
func (s *Store) Save(input Input) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	entry := &Entry{
		ID:          uuid.NewString(),
		Type:        input.Type,
		Content:     input.Content,
		Importance:  clampImportance(input.Importance),
		Tags:        append([]string(nil), input.Tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
		AccessCount: 0,
		RelatedIDs:  append([]string(nil), input.RelatedIDs...),
	}
	s.entries[entry.ID] = entry
	s.persist()

	return entry.clone()
}

// Get returns the entry with the given id and bumps its access count.
// The second return value reports whether the entry exists.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	entry.AccessCount++
	return entry.clone(), true
}

// Search returns entries matching all provided filters, sorted by importance
// descending. An empty query returns the full set. Equal importances are
// ordered oldest first, then by ID, so results are deterministic.
func (s *Store) Search(query Query) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []Entry
	for _, entry := range s.entries {
		if query.Type != "" && entry.Type != query.Type {
			continue
		}
		if query.Tag != "" && !containsTag(entry.Tags, query.Tag) {
			continue
		}
		if entry.Importance < query.MinImportance {
			continue
		}
		results = append(results, entry.clone())
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Importance != results[j].Importance {
			return results[i].Importance > results[j].Importance
		}
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.Before(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})

	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results
}

// ByImportance returns the top entries overall, equivalent to an unfiltered
// search with a limit.
func (s *Store) ByImportance(limit int) []Entry {
	return s.Search(Query{Limit: limit})
}

// Update merges the patch into an existing entry, refreshes UpdatedAt, and
// persists. Returns the updated entry, or false if the id is unknown.
func (s *Store) Update(id string, patch Patch) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}

	if patch.Type != nil {
		entry.Type = *patch.Type
	}
	if patch.Content != nil {
		entry.Content = *patch.Content
	}
	if patch.Importance != nil {
		entry.Importance = clampImportance(*patch.Importance)
	}
	if patch.Tags != nil {
		entry.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.RelatedIDs != nil {
		entry.RelatedIDs = append([]string(nil), patch.RelatedIDs...)
	}
	entry.UpdatedAt = s.now().UTC()
	s.persist()

	return entry.clone(), true
}

// Delete removes the entry with the given id. Returns whether a removal
// occurred; the snapshot is persisted only if it did.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	s.persist()
	return true
}

// PruneOld removes every entry created more than daysOld days ago and
// returns the count removed. Persists only when something was removed.
func (s *Store) PruneOld(daysOld int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().Add(-time.Duration(daysOld) * 24 * time.Hour)

	removed := 0
	for id, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}

	if removed > 0 {
		s.persist()
	}
	return removed
}

// Related resolves an entry's related ids to currently-present entries,
// silently dropping ids that no longer exist.
func (s *Store) Related(id string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil
	}

	var related []Entry
	for _, relatedID := range entry.RelatedIDs {
		if other, ok := s.entries[relatedID]; ok {
			related = append(related, other.clone())
		}
	}
	return related
}

// GroupByTag maps each tag to the entries carrying it. An entry with N tags
// appears in N groups. Groups are sorted newest first.
func (s *Store) GroupByTag() map[string][]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make(map[string][]Entry)
	for _, entry := range s.entries {
		for _, tag := range entry.Tags {
			groups[tag] = append(groups[tag], entry.clone())
		}
	}

	for tag := range groups {
		group := groups[tag]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.After(group[j].CreatedAt)
			}
			return group[i].ID < group[j].ID
		})
	}
	return groups
}

// Stats aggregates the current contents. An empty store yields zeroed
// counts and nil oldest/newest timestamps.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{ByType: make(map[EntryType]int)}
	if len(s.entries) == 0 {
		return stats
	}

	var totalImportance float64
	var oldest, newest time.Time
	for _, entry := range s.entries {
		stats.TotalEntries++
		stats.ByType[entry.Type]++
		totalImportance += entry.Importance

		if oldest.IsZero() || entry.CreatedAt.Before(oldest) {
			oldest = entry.CreatedAt
		}
		if newest.IsZero() || entry.CreatedAt.After(newest) {
			newest = entry.CreatedAt
		}
	}

	stats.AverageImportance = totalImportance / float64(stats.TotalEntries)
	stats.OldestEntry = &oldest
	stats.NewestEntry = &newest
	return stats
}

// Clear removes all entries and persists the empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	s.persist()
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
