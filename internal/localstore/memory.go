package localstore

import "context"

const memoryNamespace = "memory"

// Memory is the user's /remember notebook.
type Memory struct {
	store *SQLiteStore
}

// NewMemory wraps store.
func NewMemory(store *SQLiteStore) *Memory {
	return &Memory{store: store}
}

// Remember stores value under key.
func (m *Memory) Remember(ctx context.Context, key, value string) error {
	return m.store.Set(ctx, memoryNamespace, key, value)
}

// Recall returns the value stored under key.
func (m *Memory) Recall(ctx context.Context, key string) (string, bool, error) {
	return m.store.Get(ctx, memoryNamespace, key)
}

// All returns every remembered entry.
func (m *Memory) All(ctx context.Context) (map[string]string, error) {
	return m.store.List(ctx, memoryNamespace)
}

// Forget removes key.
func (m *Memory) Forget(ctx context.Context, key string) error {
	return m.store.Delete(ctx, memoryNamespace, key)
}
