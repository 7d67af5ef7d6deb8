package cache

import (
	"context"
	"sync"
)

const defaultMaxEntries = 4096

// node is one entry in the eviction list.
type node struct {
	key  string
	next *node
}

func (n *node) reset() {
	n.key = ""
	n.next = nil
}

// MemoryTier is an in-process map tier. With a positive size bound it
// evicts LIFO: the most recently added key goes first, which protects
// long-lived rosters and histories from churny medal keys. The same
// implementation backs both the process tier and the session tier;
// only the lifecycle differs.
type MemoryTier struct {
	name string

	mu       sync.RWMutex
	entries  map[string][]byte
	nodes    map[string]*node
	head     *node
	maxSize  int
	nodePool sync.Pool
}

// MemoryOption applies a configuration option to a MemoryTier.
type MemoryOption func(*MemoryTier)

// WithMaxEntries bounds the tier; zero or negative means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(t *MemoryTier) {
		t.maxSize = n
	}
}

// NewMemoryTier creates a named in-memory tier.
func NewMemoryTier(name string, opts ...MemoryOption) *MemoryTier {
	t := &MemoryTier{
		name:    name,
		maxSize: defaultMaxEntries,
		entries: map[string][]byte{},
		nodes:   map[string]*node{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.nodePool = sync.Pool{New: func() any { return &node{} }}
	return t
}

func (t *MemoryTier) Name() string { return t.name }

func (t *MemoryTier) Get(_ context.Context, key string) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value, ok := t.entries[key]
	return value, ok
}

func (t *MemoryTier) Set(_ context.Context, key string, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[key]; exists {
		t.entries[key] = value
		return nil
	}

	if t.maxSize > 0 && len(t.entries) >= t.maxSize {
		t.evict()
	}

	n := t.nodePool.Get().(*node)
	n.key = key
	n.next = t.head
	t.head = n
	t.nodes[key] = n
	t.entries[key] = value
	return nil
}

func (t *MemoryTier) Delete(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remove(key)
	return nil
}

// Clear drops every entry. The session lifecycle and tests use this.
func (t *MemoryTier) Clear(_ context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = map[string][]byte{}
	t.nodes = map[string]*node{}
	t.head = nil
}

// Len returns the number of stored entries.
func (t *MemoryTier) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// evict removes the head of the list (the most recently added key).
func (t *MemoryTier) evict() {
	if t.head == nil {
		return
	}
	victim := t.head
	t.head = victim.next
	delete(t.entries, victim.key)
	delete(t.nodes, victim.key)
	victim.reset()
	t.nodePool.Put(victim)
}

func (t *MemoryTier) remove(key string) {
	n, exists := t.nodes[key]
	if !exists {
		delete(t.entries, key)
		return
	}
	if t.head == n {
		t.head = n.next
	} else {
		current := t.head
		for current != nil && current.next != n {
			current = current.next
		}
		if current != nil {
			current.next = n.next
		}
	}
	delete(t.entries, key)
	delete(t.nodes, key)
	n.reset()
	t.nodePool.Put(n)
}
