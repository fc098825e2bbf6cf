// Package feed ingests play events from the game-observation layer. The
// feed is a JSONL file: one PlayEvent object per line, appended as the
// observer sees cards played. Delivery order is not guaranteed; the
// analysis layer sorts within turns.
package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/duelware/insight/internal/analysis"
)

// ParseEvent decodes a single feed line into a play event.
func ParseEvent(line []byte) (analysis.PlayEvent, error) {
	var event analysis.PlayEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return analysis.PlayEvent{}, fmt.Errorf("parse play event: %w", err)
	}
	return event, nil
}

// ReadAll reads every event in a feed file. Blank lines are skipped;
// malformed lines are logged and dropped so one bad record never loses a
// session.
func ReadAll(path string) ([]analysis.PlayEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer func() { _ = file.Close() }()

	var events []analysis.PlayEvent
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		event, err := ParseEvent(line)
		if err != nil {
			log.Printf("[Feed] Skipping malformed line %d: %v", lineNo, err)
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	return events, nil
}
