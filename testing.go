package recordseal

// This file provides in-memory collaborators for tests and examples.

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/hengadev/recordseal/internal/sealerr"
	"github.com/hengadev/recordseal/internal/store"
)

// MemorySource is a Source backed by a map.
type MemorySource struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemorySource returns a MemorySource holding a copy of objects.
func NewMemorySource(objects map[string][]byte) *MemorySource {
	m := &MemorySource{objects: make(map[string][]byte, len(objects))}
	for name, data := range objects {
		m.objects[name] = slices.Clone(data)
	}
	return m
}

func (m *MemorySource) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, sealerr.NewNotFoundError(name, sealerr.Load)
	}
	return slices.Clone(data), nil
}

func (m *MemorySource) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = slices.Clone(data)
	return nil
}

// Ping always succeeds unless ctx is done.
func (m *MemorySource) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Names returns the stored object names in sorted order.
func (m *MemorySource) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.objects))
}

// NewTestPipeline returns a pipeline over a MemorySource and an in-memory
// SQLite store, which also serves as key store. A nil cfg uses DefaultConfig.
//
//	p, src, err := recordseal.NewTestPipeline(nil)
//	src.Put(ctx, "H001.csv", []byte("name,age\nAlice,40\n"))
//	sealed, err := p.Process(ctx, "H001")
func NewTestPipeline(cfg *Config, opts ...Option) (*Pipeline, *MemorySource, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}

	st, err := store.OpenSQLite(store.MemoryPath)
	if err != nil {
		return nil, nil, err
	}

	src := NewMemorySource(nil)
	base := []Option{WithSource(src), WithStore(st)}
	p, err := New(c, append(base, opts...)...)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return p, src, nil
}
