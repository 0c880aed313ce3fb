package attendance

import (
	"slices"
	"sync"
)

// Repository holds attendance records in memory, most recent first.
type Repository struct {
	mu      sync.RWMutex
	records []Record
}

// NewRepository creates a repo holding a copy of seed.
func NewRepository(seed []Record) *Repository {
	return &Repository{records: slices.Clone(seed)}
}

// InsertRecord puts rec at the front of the log.
func (r *Repository) InsertRecord(rec Record) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = slices.Insert(r.records, 0, rec)
	return rec
}

// ListRecords returns a snapshot of the log.
func (r *Repository) ListRecords() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records)
}

// Len returns the number of records.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
