// Package store persists assembled plot specifications.
//
// This package defines the Store interface with implementations for different
// backends:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for server deployments
//
// Records hold the serialized specification plus enough metadata (modality,
// source name, creation time) to list and retrieve plots without decoding
// the full document.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpmx/vpc/pkg/errors"
	"github.com/openpmx/vpc/pkg/result"
)

// Record is a stored plot specification with metadata.
type Record struct {
	ID        string          `json:"id" bson:"_id"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Modality  result.Modality `json:"modality" bson:"modality"`
	Source    string          `json:"source,omitempty" bson:"source,omitempty"`
	Spec      json.RawMessage `json:"spec" bson:"spec"`
}

// NewRecord builds a record with a fresh ID and timestamp.
func NewRecord(modality result.Modality, source string, spec json.RawMessage) Record {
	return Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Modality:  modality,
		Source:    source,
		Spec:      spec,
	}
}

// Store persists plot records.
type Store interface {
	// Put stores a record, overwriting any record with the same ID.
	Put(ctx context.Context, rec Record) error

	// Get retrieves a record by ID. Returns an ErrCodeNotFound error when
	// no record exists.
	Get(ctx context.Context, id string) (Record, error)

	// List returns records newest first, at most limit entries
	// (limit <= 0 means no limit).
	List(ctx context.Context, limit int) ([]Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// =============================================================================
// Memory Store
// =============================================================================

// MemoryStore keeps records in a map. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Put(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "record ID is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, errors.New(errors.ErrCodeNotFound, "plot %q not found", id)
	}
	return rec, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
