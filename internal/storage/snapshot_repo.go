package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DefaultSnapshotSlot is the logical slot the knowledge store writes to. A
// deployment tracking several opponents can use one slot per opponent.
const DefaultSnapshotSlot = "knowledge"

// SnapshotRepository handles database operations for knowledge snapshots.
// Each slot holds the full serialized entry collection; writes replace the
// previous snapshot.
type SnapshotRepository interface {
	// LoadSnapshot returns the snapshot stored in the slot, or nil if the
	// slot has never been written.
	LoadSnapshot(ctx context.Context, slot string) ([]byte, error)

	// SaveSnapshot replaces the snapshot in the slot.
	SaveSnapshot(ctx context.Context, slot string, data []byte) error

	// DeleteSnapshot removes the slot entirely.
	DeleteSnapshot(ctx context.Context, slot string) error
}

// snapshotRepository is the concrete implementation.
type snapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// LoadSnapshot returns the snapshot stored in the slot, or nil if absent.
func (r *snapshotRepository) LoadSnapshot(ctx context.Context, slot string) ([]byte, error) {
	query := `SELECT data FROM knowledge_snapshots WHERE slot = ?`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, slot).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return data, nil
}

// SaveSnapshot replaces the snapshot in the slot.
func (r *snapshotRepository) SaveSnapshot(ctx context.Context, slot string, data []byte) error {
	query := `
		INSERT INTO knowledge_snapshots (slot, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`

	timestampStr := time.Now().UTC().Format("2006-01-02 15:04:05.999999")

	_, err := r.db.ExecContext(ctx, query, slot, data, timestampStr)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// DeleteSnapshot removes the slot entirely.
func (r *snapshotRepository) DeleteSnapshot(ctx context.Context, slot string) error {
	query := `DELETE FROM knowledge_snapshots WHERE slot = ?`

	_, err := r.db.ExecContext(ctx, query, slot)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}
