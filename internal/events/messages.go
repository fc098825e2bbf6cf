package events

// Event types dispatched by the analysis engine.
const (
	// TypePatternDetected fires when a combo pattern is first seen
	// recurring across turns.
	TypePatternDetected = "pattern:detected"

	// TypeThreatRaised fires when a known pattern crosses the threat
	// threshold.
	TypeThreatRaised = "threat:raised"

	// TypeKnowledgeSaved fires when a new knowledge entry is stored.
	TypeKnowledgeSaved = "knowledge:saved"

	// TypeKnowledgePruned fires after an eviction pass removed entries.
	TypeKnowledgePruned = "knowledge:pruned"
)

// PatternDetectedEvent is the payload for pattern:detected events.
type PatternDetectedEvent struct {
	CardNames   []string `json:"card_names"`
	Occurrences int      `json:"occurrences"`
	Turns       []int    `json:"turns"`
}

// ThreatRaisedEvent is the payload for threat:raised events.
type ThreatRaisedEvent struct {
	CardNames   []string `json:"card_names"`
	Occurrences int      `json:"occurrences"`
	Warning     string   `json:"warning"`
}

// KnowledgeSavedEvent is the payload for knowledge:saved events.
type KnowledgeSavedEvent struct {
	EntryID    string  `json:"entry_id"`
	EntryType  string  `json:"entry_type"`
	Importance float64 `json:"importance"`
}

// KnowledgePrunedEvent is the payload for knowledge:pruned events.
type KnowledgePrunedEvent struct {
	Removed int `json:"removed"`
	DaysOld int `json:"days_old"`
}
