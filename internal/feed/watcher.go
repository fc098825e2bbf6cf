package feed

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/duelware/insight/internal/analysis"
)

// Watcher tails a play-event feed file and pushes events into the analyzer
// as they are appended. File-system notifications drive the tail, with a
// polling ticker as backup for platforms where events are delayed. A rate
// limiter coalesces write bursts so a chatty observer does not trigger a
// re-read per byte.
type Watcher struct {
	path         string
	analyzer     *analysis.Analyzer
	pollInterval time.Duration
	limiter      *rate.Limiter
	stopChan     chan struct{}

	// pending holds a partial trailing line until the observer finishes
	// writing it.
	pending []byte
}

// NewWatcher creates a watcher for the feed file at path.
func NewWatcher(path string, analyzer *analysis.Analyzer, pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Watcher{
		path:         path,
		analyzer:     analyzer,
		pollInterval: pollInterval,
		limiter:      rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		stopChan:     make(chan struct{}),
	}
}

// Run replays the feed's existing content, then tails it until the context
// is cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	file, err := os.Open(w.path)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	defer func() { _ = file.Close() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.path); err != nil {
		return fmt.Errorf("watch feed file: %w", err)
	}

	reader := bufio.NewReader(file)
	if err := w.consume(reader); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event := <-watcher.Events:
			if event.Op&fsnotify.Write != fsnotify.Write {
				continue
			}
			if !w.limiter.Allow() {
				continue // ticker will catch up
			}
			if err := w.consume(reader); err != nil {
				log.Printf("[FeedWatcher] Read error, will retry: %v", err)
			}
		case err := <-watcher.Errors:
			log.Printf("[FeedWatcher] Watch error: %v", err)
		case <-ticker.C:
			if err := w.consume(reader); err != nil {
				log.Printf("[FeedWatcher] Read error, will retry: %v", err)
			}
		}
	}
}

// Stop terminates a running watcher.
func (w *Watcher) Stop() {
	close(w.stopChan)
}

// consume reads complete lines appended since the last call and feeds them
// to the analyzer.
func (w *Watcher) consume(reader *bufio.Reader) error {
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			w.pending = append(w.pending, line...)
			return nil
		}
		if err != nil {
			return err
		}

		if len(w.pending) > 0 {
			line = append(w.pending, line...)
			w.pending = nil
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}

		event, err := ParseEvent(trimmed)
		if err != nil {
			log.Printf("[FeedWatcher] Skipping malformed line: %v", err)
			continue
		}
		w.analyzer.ObservePlay(event)
	}
}
