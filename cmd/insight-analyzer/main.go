// insight-analyzer replays or watches a play-event feed, prints the
// detected sequences, combo patterns, and warnings, and reports knowledge
// store statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/duelware/insight/internal/analysis"
	"github.com/duelware/insight/internal/config"
	"github.com/duelware/insight/internal/events"
	"github.com/duelware/insight/internal/feed"
	"github.com/duelware/insight/internal/knowledge"
	"github.com/duelware/insight/internal/storage"
)

// consoleObserver prints dispatched analysis events as they happen.
type consoleObserver struct{}

func (consoleObserver) OnEvent(event events.Event) error {
	switch payload := event.Payload.(type) {
	case events.ThreatRaisedEvent:
		fmt.Println(payload.Warning)
	case events.PatternDetectedEvent:
		fmt.Printf("Pattern detected: %s (turns %v)\n",
			strings.Join(payload.CardNames, " → "), payload.Turns)
	case events.KnowledgeSavedEvent:
		fmt.Printf("Knowledge saved: %s (%s, importance %.2f)\n",
			payload.EntryID, payload.EntryType, payload.Importance)
	case events.KnowledgePrunedEvent:
		fmt.Printf("Knowledge pruned: %d entries older than %d days\n",
			payload.Removed, payload.DaysOld)
	}
	return nil
}

func (consoleObserver) Name() string { return "ConsoleObserver" }

func (consoleObserver) ShouldHandle(eventType string) bool {
	return eventType == events.TypeThreatRaised ||
		eventType == events.TypePatternDetected ||
		eventType == events.TypeKnowledgeSaved ||
		eventType == events.TypeKnowledgePruned
}

func main() {
	feedPath := flag.String("feed", "", "Path to the JSONL play-event feed (overrides config)")
	watch := flag.Bool("watch", false, "Keep watching the feed after replay")
	prune := flag.Bool("prune", false, "Evict old knowledge entries before reporting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	path := cfg.Feed.FilePath
	if *feedPath != "" {
		path = *feedPath
	}
	if path == "" {
		log.Fatal("No feed file configured; pass -feed or set feed.file_path")
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open knowledge store: %v", err)
	}
	defer cleanup()

	dispatcher := events.NewDispatcher()
	dispatcher.Register(consoleObserver{})
	analyzer := analysis.NewAnalyzer(dispatcher, store)

	if *watch {
		runWatch(cfg, path, analyzer)
	} else {
		plays, err := feed.ReadAll(path)
		if err != nil {
			log.Fatalf("Failed to read feed: %v", err)
		}
		log.Printf("Replaying %d play events from %s", len(plays), path)
		analyzer.ObservePlays(plays)
	}

	printReport(analyzer, store, dispatcher, cfg, *prune)
}

func runWatch(cfg *config.Config, path string, analyzer *analysis.Analyzer) {
	interval, err := cfg.FeedPollInterval()
	if err != nil {
		log.Fatalf("Invalid poll interval: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watcher := feed.NewWatcher(path, analyzer, interval)
	log.Printf("Watching feed: %s", path)
	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Feed watcher failed: %v", err)
	}
}

func openStore(cfg *config.Config) (*knowledge.Store, func(), error) {
	switch cfg.Knowledge.Backend {
	case "memory":
		return knowledge.NewStore(knowledge.NewMemoryPort()), func() {}, nil

	case "file":
		if cfg.Knowledge.FilePath == "" {
			return nil, nil, fmt.Errorf("file backend requires knowledge.file_path")
		}
		if cfg.Knowledge.Encrypt {
			password := os.Getenv("INSIGHT_SNAPSHOT_PASSWORD")
			if password == "" {
				return nil, nil, fmt.Errorf("encrypted backend requires INSIGHT_SNAPSHOT_PASSWORD")
			}
			port := storage.NewEncryptedFilePort(cfg.Knowledge.FilePath, password)
			return knowledge.NewStore(port), func() {}, nil
		}
		return knowledge.NewStore(storage.NewFilePort(cfg.Knowledge.FilePath)), func() {}, nil

	case "sqlite":
		dbPath := cfg.Knowledge.DBPath
		if dbPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, fmt.Errorf("get home directory: %w", err)
			}
			dbPath = filepath.Join(home, ".duel-insight", "insight.db")
		}
		db, err := storage.Open(storage.DefaultConfig(dbPath))
		if err != nil {
			return nil, nil, err
		}
		repo := storage.NewSnapshotRepository(db.Conn())
		port := storage.NewSQLitePort(repo, storage.DefaultSnapshotSlot)
		return knowledge.NewStore(port), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown knowledge backend %q", cfg.Knowledge.Backend)
	}
}

func printReport(analyzer *analysis.Analyzer, store *knowledge.Store, dispatcher *events.Dispatcher, cfg *config.Config, prune bool) {
	fmt.Println()
	fmt.Println("=== Play Sequences ===")
	for _, seq := range analyzer.Sequences() {
		names := make([]string, len(seq.Events))
		for i, event := range seq.Events {
			names[i] = event.CardName
		}
		fmt.Printf("Turn %d: %s (%dms)\n", seq.Turn, strings.Join(names, ", "), seq.Duration.Milliseconds())
	}

	fmt.Println()
	fmt.Println("=== Combo Patterns ===")
	for _, pattern := range analyzer.Patterns() {
		marker := " "
		if pattern.IsThreat {
			marker = "!"
		}
		fmt.Printf("%s %s — %d occurrences, turns %v\n",
			marker, strings.Join(pattern.CardNames, " → "), pattern.Occurrences, pattern.Turns)
	}

	fmt.Println()
	fmt.Println("=== Warnings ===")
	for _, warning := range analyzer.Warnings() {
		fmt.Println(warning)
	}

	fmt.Println()
	fmt.Println("=== Frequent Cards ===")
	for _, freq := range analyzer.FrequentCards(0) {
		fmt.Printf("%s: %d plays\n", freq.CardName, freq.Count)
	}

	if prune && cfg.Knowledge.PruneDays > 0 {
		removed := store.PruneOld(cfg.Knowledge.PruneDays)
		dispatcher.Dispatch(events.Event{
			Type: events.TypeKnowledgePruned,
			Payload: events.KnowledgePrunedEvent{
				Removed: removed,
				DaysOld: cfg.Knowledge.PruneDays,
			},
		})
	}

	stats := store.Stats()
	fmt.Println()
	fmt.Println("=== Knowledge Store ===")
	fmt.Printf("Entries: %d, average importance: %.3f\n", stats.TotalEntries, stats.AverageImportance)
	for entryType, count := range stats.ByType {
		fmt.Printf("  %s: %d\n", entryType, count)
	}
	if stats.OldestEntry != nil {
		fmt.Printf("Oldest: %s, newest: %s\n",
			stats.OldestEntry.Format("2006-01-02"), stats.NewestEntry.Format("2006-01-02"))
	}
}
