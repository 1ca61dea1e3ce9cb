package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. Documents are copied on the way in and out
// so callers never share maps with the store. It is safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	order []string
	docs  map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memoryCollection)}
}

func (m *Memory) collection(name string) *memoryCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string][]byte)}
		m.collections[name] = c
	}
	return c
}

// List returns every record of a collection in insertion order.
func (m *Memory) List(ctx context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return []Record{}, nil
	}
	records := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		doc, err := decode(c.docs[id])
		if err != nil {
			return nil, err
		}
		records = append(records, Record{ID: id, Data: doc})
	}
	return records, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return Record{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	b, ok := c.docs[id]
	if !ok {
		return Record{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	doc, err := decode(b)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Data: doc}, nil
}

func (m *Memory) Create(ctx context.Context, collection string, data Document) (string, error) {
	b, err := encode(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	c := m.collection(collection)
	c.order = append(c.order, id)
	c.docs[id] = b
	return id, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, data Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	b, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	current, err := decode(b)
	if err != nil {
		return err
	}
	patch, err := clone(data)
	if err != nil {
		return err
	}
	merged, err := encode(merge(current, patch))
	if err != nil {
		return err
	}
	c.docs[id] = merged
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// FindOne returns the first record, in insertion order, whose field equals value.
func (m *Memory) FindOne(ctx context.Context, collection, field string, value any) (Record, error) {
	records, err := m.List(ctx, collection)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if v, ok := r.Data[field]; ok && valuesEqual(v, value) {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%s where %s=%v: %w", collection, field, value, ErrNotFound)
}

// Seed stores data under a caller-chosen id. It is meant for tests and
// imports that must preserve existing ids.
func (m *Memory) Seed(collection, id string, data Document) error {
	b, err := encode(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = b
	return nil
}
