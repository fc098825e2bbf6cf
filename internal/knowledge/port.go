package knowledge

import "sync"

// PersistencePort is the durable-storage boundary for the store. The store
// reads one snapshot at construction and writes the full snapshot back after
// every mutation. Implementations live at the composition root (memory,
// file, database); the store itself has no backend dependency.
type PersistencePort interface {
	// Load returns the last saved snapshot, or nil if none exists.
	Load() ([]byte, error)

	// Save replaces the snapshot.
	Save(data []byte) error
}

// MemoryPort is an in-process PersistencePort, used in tests and for
// sessions that do not outlive the process.
type MemoryPort struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryPort creates an empty in-memory port.
func NewMemoryPort() *MemoryPort {
	return &MemoryPort{}
}

// Load returns the last saved snapshot.
func (p *MemoryPort) Load() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.data == nil {
		return nil, nil
	}
	snapshot := make([]byte, len(p.data))
	copy(snapshot, p.data)
	return snapshot, nil
}

// Save replaces the snapshot.
func (p *MemoryPort) Save(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data = make([]byte, len(data))
	copy(p.data, data)
	return nil
}
