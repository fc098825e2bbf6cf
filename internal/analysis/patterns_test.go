package analysis

import (
	"strings"
	"testing"
	"time"
)

// recordCombo records the given card names as one in-turn sequence.
func recordCombo(tracker *PlayTracker, turn int, names ...string) {
	for i, name := range names {
		tracker.RecordPlay(playAt(name, turn, time.Duration(turn)*time.Minute+time.Duration(i)*time.Second, PlaySummon))
	}
}

func TestDetectComboPatterns_RequiresTwoTurns(t *testing.T) {
	tracker := NewPlayTracker()
	recordCombo(tracker, 1, "DangerousCard", "ComboCard")

	if patterns := tracker.DetectComboPatterns(); len(patterns) != 0 {
		t.Fatalf("Expected no patterns from a single turn, got %d", len(patterns))
	}

	recordCombo(tracker, 3, "DangerousCard", "ComboCard")

	patterns := tracker.DetectComboPatterns()
	if len(patterns) != 1 {
		t.Fatalf("Expected 1 pattern, got %d", len(patterns))
	}

	pattern := patterns[0]
	if pattern.Occurrences != 2 {
		t.Errorf("Expected 2 occurrences, got %d", pattern.Occurrences)
	}
	if pattern.IsThreat {
		t.Error("Expected 2 occurrences to not be a threat")
	}
	if len(pattern.Turns) != 2 || pattern.Turns[0] != 1 || pattern.Turns[1] != 3 {
		t.Errorf("Expected turns [1 3], got %v", pattern.Turns)
	}
}

func TestDetectComboPatterns_ThreatAtThreeOccurrences(t *testing.T) {
	tracker := NewPlayTracker()
	recordCombo(tracker, 1, "DangerousCard", "ComboCard")
	recordCombo(tracker, 3, "DangerousCard", "ComboCard")
	recordCombo(tracker, 5, "DangerousCard", "ComboCard")

	patterns := tracker.DetectComboPatterns()
	if len(patterns) != 1 {
		t.Fatalf("Expected 1 pattern, got %d", len(patterns))
	}
	if !patterns[0].IsThreat {
		t.Error("Expected 3 occurrences to flip IsThreat")
	}
}

func TestDetectComboPatterns_OrderMatters(t *testing.T) {
	tracker := NewPlayTracker()
	recordCombo(tracker, 1, "A", "B")
	recordCombo(tracker, 2, "B", "A")

	if patterns := tracker.DetectComboPatterns(); len(patterns) != 0 {
		t.Errorf("Expected reversed sequences to be distinct patterns, got %d", len(patterns))
	}
}

func TestDetectComboPatterns_SortAndTieBreak(t *testing.T) {
	tracker := NewPlayTracker()
	// "X Y" occurs 3 times, "P Q" and "M N" twice each; "P Q" first at
	// turn 2, "M N" first at turn 4.
	recordCombo(tracker, 1, "X", "Y")
	recordCombo(tracker, 2, "P", "Q")
	recordCombo(tracker, 3, "X", "Y")
	recordCombo(tracker, 4, "M", "N")
	recordCombo(tracker, 5, "P", "Q")
	recordCombo(tracker, 6, "M", "N")
	recordCombo(tracker, 7, "X", "Y")

	patterns := tracker.DetectComboPatterns()
	if len(patterns) != 3 {
		t.Fatalf("Expected 3 patterns, got %d", len(patterns))
	}
	if patterns[0].CardNames[0] != "X" {
		t.Errorf("Expected most frequent pattern first, got %v", patterns[0].CardNames)
	}
	if patterns[1].CardNames[0] != "P" || patterns[2].CardNames[0] != "M" {
		t.Errorf("Expected equal counts ordered by first occurrence turn, got %v then %v",
			patterns[1].CardNames, patterns[2].CardNames)
	}
}

func TestWarnings(t *testing.T) {
	tracker := NewPlayTracker()

	if warnings := tracker.Warnings(); len(warnings) != 0 {
		t.Fatalf("Expected no warnings on empty history, got %d", len(warnings))
	}

	recordCombo(tracker, 1, "DangerousCard", "ComboCard")
	recordCombo(tracker, 3, "DangerousCard", "ComboCard")

	warnings := tracker.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0], "DangerousCard") || !strings.Contains(warnings[0], "ComboCard") {
		t.Errorf("Expected warning to contain card names: %q", warnings[0])
	}
	if !strings.Contains(warnings[0], "2") {
		t.Errorf("Expected warning to contain occurrence count: %q", warnings[0])
	}
	if strings.Contains(warnings[0], "[THREAT]") {
		t.Errorf("Expected no threat marker at 2 occurrences: %q", warnings[0])
	}

	recordCombo(tracker, 5, "DangerousCard", "ComboCard")
	warnings = tracker.Warnings()
	if !strings.Contains(warnings[0], "[THREAT]") {
		t.Errorf("Expected threat marker at 3 occurrences: %q", warnings[0])
	}
}
