package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/livaro/home/backend/api/internal/record"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store keeping documents in insertion order.
// It backs unit tests and STORE_DRIVER=memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]record.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]record.Document)}
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, doc record.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stored := make(record.Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	oid := primitive.NewObjectID()
	stored["_id"] = oid

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], stored)
	return oid.Hex(), nil
}

func (m *MemoryStore) Find(ctx context.Context, collection string, filter record.Filter, limit int64) ([]record.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []record.Document{}
	for _, d := range m.collections[collection] {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		if !filter.Matches(d) {
			continue
		}
		cp := make(record.Document, len(d))
		for k, v := range d {
			cp[k] = v
		}
		out = append(out, exportID(cp))
	}
	return out, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Collections(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for n := range m.collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the number of documents in a collection.
func (m *MemoryStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}
