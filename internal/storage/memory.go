package storage

import (
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store used by tests and the offline analyze
// path, where nothing needs to outlive the process.
type MemStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	order map[string]int
	next  int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data:  make(map[string][]byte),
		order: make(map[string]int),
	}
}

func (m *MemStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *MemStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		m.order[key] = m.next
		m.next++
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

func (m *MemStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.order, key)
	return nil
}

func (m *MemStore) Keys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return m.order[keys[i]] < m.order[keys[j]]
	})
	return keys, nil
}
