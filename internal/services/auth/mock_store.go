package auth

import "sync"

// MockStore is an in-memory auth store for testing.
type MockStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{values: make(map[string]string)}
}

func (m *MockStore) Set(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[NormalizeKey(key)] = value
	return nil
}

func (m *MockStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[NormalizeKey(key)]
	if !ok {
		return "", ErrTokenNotFound
	}
	return value, nil
}

func (m *MockStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[NormalizeKey(key)]; !ok {
		return ErrTokenNotFound
	}
	delete(m.values, NormalizeKey(key))
	return nil
}
