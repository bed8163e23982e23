package avatars

import "sync"

// memo maps deterministic avatar names to stored paths. A nil memo is a
// valid, always-empty memo.
type memo struct {
	mu      sync.Mutex
	limit   int
	entries map[string]string
}

func newMemo(limit int) *memo {
	if limit <= 0 {
		return nil
	}
	return &memo{limit: limit, entries: make(map[string]string, limit)}
}

func (m *memo) get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path, ok := m.entries[name]
	return path, ok
}

// put records name. The table is cleared wholesale once it is full.
func (m *memo) put(name, path string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; !ok && len(m.entries) >= m.limit {
		clear(m.entries)
	}
	m.entries[name] = path
}

func (m *memo) remove(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, name)
}

func (m *memo) reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}

func (m *memo) len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
