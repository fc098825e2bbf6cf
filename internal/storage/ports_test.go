package storage

import (
	"path/filepath"
	"testing"
)

func TestSQLitePort_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	port := NewSQLitePort(NewSnapshotRepository(db.Conn()), "")

	data, err := port.Load()
	if err != nil {
		t.Fatalf("Failed initial load: %v", err)
	}
	if data != nil {
		t.Error("Expected nil before first save")
	}

	payload := []byte(`[{"id":"x"}]`)
	if err := port.Save(payload); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := port.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Expected %q, got %q", payload, got)
	}
}

func TestFilePort_MissingFile(t *testing.T) {
	port := NewFilePort(filepath.Join(t.TempDir(), "missing.json"))

	data, err := port.Load()
	if err != nil {
		t.Fatalf("Expected missing file to load as nil, got error: %v", err)
	}
	if data != nil {
		t.Error("Expected nil for missing file")
	}
}

func TestFilePort_RoundTrip(t *testing.T) {
	port := NewFilePort(filepath.Join(t.TempDir(), "snapshot.json"))

	payload := []byte(`[{"id":"y"}]`)
	if err := port.Save(payload); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := port.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Expected %q, got %q", payload, got)
	}
}

func TestEncryptedFilePort_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.enc")
	port := NewEncryptedFilePort(path, "correct horse battery staple")

	payload := []byte(`[{"id":"z","content":"secret insight"}]`)
	if err := port.Save(payload); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := port.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Expected %q, got %q", payload, got)
	}

	// The on-disk form must not contain the plaintext.
	raw, err := NewFilePort(path).Load()
	if err != nil {
		t.Fatalf("Failed to read raw file: %v", err)
	}
	if string(raw) == string(payload) {
		t.Error("Expected on-disk snapshot to be encrypted")
	}
}

func TestEncryptedFilePort_WrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.enc")

	writer := NewEncryptedFilePort(path, "right password")
	if err := writer.Save([]byte("data")); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	reader := NewEncryptedFilePort(path, "wrong password")
	if _, err := reader.Load(); err == nil {
		t.Error("Expected wrong password to fail authentication")
	}
}

func TestEncryptedFilePort_MissingFile(t *testing.T) {
	port := NewEncryptedFilePort(filepath.Join(t.TempDir(), "missing.enc"), "pw")

	data, err := port.Load()
	if err != nil {
		t.Fatalf("Expected missing file to load as nil, got error: %v", err)
	}
	if data != nil {
		t.Error("Expected nil for missing file")
	}
}
