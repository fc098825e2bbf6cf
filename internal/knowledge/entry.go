// Package knowledge persists importance-scored insights derived by the
// assist layer so later decisions can query what was learned.
package knowledge

import "time"

// EntryType categorizes a knowledge entry.
type EntryType string

// Entry types recognized by the store.
const (
	EntryCombo           EntryType = "combo"
	EntryStrategy        EntryType = "strategy"
	EntryOpponentPattern EntryType = "opponent_pattern"
	EntryCardSynergy     EntryType = "card_synergy"
	EntryGameInsight     EntryType = "game_insight"
)

// Entry is a persisted unit of derived insight. Timestamps serialize as
// RFC 3339 so snapshots stay portable across backends.
type Entry struct {
	ID          string    `json:"id"`
	Type        EntryType `json:"type"`
	Content     string    `json:"content"`
	Importance  float64   `json:"importance"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AccessCount int       `json:"access_count"`
	RelatedIDs  []string  `json:"related_ids,omitempty"`
}

// clone returns a deep copy so callers never hold live references into the
// store.
func (e *Entry) clone() Entry {
	copied := *e
	if e.Tags != nil {
		copied.Tags = append([]string(nil), e.Tags...)
	}
	if e.RelatedIDs != nil {
		copied.RelatedIDs = append([]string(nil), e.RelatedIDs...)
	}
	return copied
}

// Input carries the caller-supplied fields for a new entry. The store
// assigns ID, timestamps, and access count.
type Input struct {
	Type       EntryType
	Content    string
	Importance float64
	Tags       []string
	RelatedIDs []string
}

// Patch carries a partial update. Nil fields are left unchanged; ID and
// CreatedAt are never touched.
type Patch struct {
	Type       *EntryType
	Content    *string
	Importance *float64
	Tags       []string
	RelatedIDs []string
}

// Query filters a search. Zero-valued fields are ignored; provided filters
// are ANDed.
type Query struct {
	Type          EntryType
	Tag           string
	MinImportance float64
	Limit         int
}

// Stats aggregates the current store contents. OldestEntry and NewestEntry
// are nil on an empty store.
type Stats struct {
	TotalEntries      int
	ByType            map[EntryType]int
	AverageImportance float64
	OldestEntry       *time.Time
	NewestEntry       *time.Time
}
