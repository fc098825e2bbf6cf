package storage

import (
	"context"
	"fmt"
	"os"
	"time"
)

// portTimeout bounds a single snapshot read or write against the database.
const portTimeout = 5 * time.Second

// SQLitePort adapts a SnapshotRepository to the knowledge store's
// persistence boundary. Each port instance is bound to one slot.
type SQLitePort struct {
	repo SnapshotRepository
	slot string
}

// NewSQLitePort creates a port over the given repository and slot. An empty
// slot uses DefaultSnapshotSlot.
func NewSQLitePort(repo SnapshotRepository, slot string) *SQLitePort {
	if slot == "" {
		slot = DefaultSnapshotSlot
	}
	return &SQLitePort{repo: repo, slot: slot}
}

// Load returns the slot's snapshot, or nil if it was never written.
func (p *SQLitePort) Load() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), portTimeout)
	defer cancel()

	return p.repo.LoadSnapshot(ctx, p.slot)
}

// Save replaces the slot's snapshot.
func (p *SQLitePort) Save(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), portTimeout)
	defer cancel()

	return p.repo.SaveSnapshot(ctx, p.slot, data)
}

// FilePort persists snapshots to a single file on disk.
type FilePort struct {
	path string
}

// NewFilePort creates a file-backed port. The parent directory must exist.
func NewFilePort(path string) *FilePort {
	return &FilePort{path: path}
}

// Load returns the file contents, or nil if the file does not exist.
func (p *FilePort) Load() ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// Save writes the snapshot via a temp file and rename so a crash mid-write
// never leaves a truncated snapshot behind.
func (p *FilePort) Save(data []byte) error {
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

// EncryptedFilePort persists snapshots to a file encrypted with
// AES-256-GCM under an Argon2id-derived key.
type EncryptedFilePort struct {
	file     FilePort
	password string
}

// NewEncryptedFilePort creates an encrypted file-backed port.
func NewEncryptedFilePort(path, password string) *EncryptedFilePort {
	return &EncryptedFilePort{file: FilePort{path: path}, password: password}
}

// Load reads and decrypts the snapshot, or returns nil if the file does not
// exist.
func (p *EncryptedFilePort) Load() ([]byte, error) {
	encrypted, err := p.file.Load()
	if err != nil || encrypted == nil {
		return nil, err
	}
	return decryptSnapshot(encrypted, p.password)
}

// Save encrypts and writes the snapshot.
func (p *EncryptedFilePort) Save(data []byte) error {
	encrypted, err := encryptSnapshot(data, p.password)
	if err != nil {
		return err
	}
	return p.file.Save(encrypted)
}
