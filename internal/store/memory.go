package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
)

// Memory : implémentation en mémoire du Store, utilisée par les tests
// et comme repli quand aucun backend n'est configuré.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, path string, out interface{}) error {
	m.mu.RLock()
	data, ok := m.docs[path]
	m.mu.RUnlock()
	if !ok {
		return errs.E(errs.NotFound, "store.Get", "document absent : "+path, nil)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.E(errs.StoreUnavailable, "store.Get", "document illisible", err)
	}
	return nil
}

func (m *Memory) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	m.mu.RLock()
	var docs []Document
	for path, data := range m.docs {
		if collectionOf(path) != collection {
			continue
		}
		docs = append(docs, Document{Path: path, Data: append(json.RawMessage(nil), data...)})
	}
	m.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		return createdAtOf(docs[i].Data) > createdAtOf(docs[j].Data)
	})

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if opts.Before > 0 && createdAtOf(d.Data) >= opts.Before {
			continue
		}
		out = append(out, d)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) Query(ctx context.Context, collection, field, value string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Document
	for path, data := range m.docs {
		if collectionOf(path) != collection {
			continue
		}
		var fields map[string]interface{}
		if err := json.Unmarshal(data, &fields); err != nil {
			continue
		}
		if s, ok := fields[field].(string); ok && s == value {
			out = append(out, Document{Path: path, Data: append(json.RawMessage(nil), data...)})
		}
	}
	return out, nil
}

func (m *Memory) Write(ctx context.Context, path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errs.E(errs.StoreUnavailable, "store.Write", "document non sérialisable", err)
	}
	m.mu.Lock()
	m.docs[path] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	delete(m.docs, path)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Count(ctx context.Context, collection string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for path := range m.docs {
		if collectionOf(path) == collection {
			n++
		}
	}
	return n, nil
}
