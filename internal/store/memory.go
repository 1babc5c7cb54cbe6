package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local runs
// without a Redis. It honors the same ordering and subscription
// contract as RedisStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	order  map[string][]string
	subs   map[string][]*Subscription
	seq    uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		order:  make(map[string][]string),
		subs:   make(map[string][]*Subscription),
	}
}

var _ Store = (*MemoryStore)(nil)

// Get returns the value at path, or (nil, nil) when absent.
func (m *MemoryStore) Get(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[path]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), v...), nil
}

// Set writes the value at path and notifies subscribers of its tree.
func (m *MemoryStore) Set(_ context.Context, path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(path, data)
	m.notifyLocked(topLevel(path))
	return nil
}

// Update applies the patch atomically: all values are marshaled before
// any write happens. Each affected tree is notified once.
func (m *MemoryStore) Update(_ context.Context, patch map[string]any) error {
	encoded := make(map[string][]byte, len(patch))
	for path, value := range patch {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		encoded[path] = data
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trees := make(map[string]struct{})
	for path, data := range encoded {
		m.setLocked(path, data)
		trees[topLevel(path)] = struct{}{}
	}
	for tree := range trees {
		m.notifyLocked(tree)
	}
	return nil
}

// Delete removes path and its whole subtree.
func (m *MemoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(path)
	parent, key := splitParent(path)
	if key != "" {
		m.order[parent] = removeString(m.order[parent], key)
	}
	m.notifyLocked(topLevel(path))
	return nil
}

// Push stores the value under a fresh child id and returns the id.
func (m *MemoryStore) Push(_ context.Context, path string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(path+"/"+id, data)
	m.notifyLocked(topLevel(path))
	return id, nil
}

// Children lists the direct children of path in insertion order.
func (m *MemoryStore) Children(_ context.Context, path string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.childrenLocked(path), nil
}

// Snapshot returns the full value of path.
func (m *MemoryStore) Snapshot(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(path)
}

// Subscribe attaches a watch on the tree containing path and delivers
// an initial snapshot.
func (m *MemoryStore) Subscribe(_ context.Context, path string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := &Subscription{path: path, events: make(chan Event, 1)}
	tree := topLevel(path)
	sub.detach = func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		live := m.subs[tree][:0]
		for _, s := range m.subs[tree] {
			if s != sub {
				live = append(live, s)
			}
		}
		m.subs[tree] = live
		close(sub.events)
	}
	m.subs[tree] = append(m.subs[tree], sub)
	m.seq++
	snap, err := m.snapshotLocked(path)
	if err != nil {
		return nil, err
	}
	deliver(sub.events, Event{Seq: m.seq, Path: path, Value: snap})
	return sub, nil
}

func (m *MemoryStore) setLocked(path string, data []byte) {
	m.values[path] = data
	// Register the chain of parent -> child links so collection reads
	// see directly-set children as well as pushed ones.
	for p := path; ; {
		parent, key := splitParent(p)
		if key == "" {
			break
		}
		if !containsString(m.order[parent], key) {
			m.order[parent] = append(m.order[parent], key)
		}
		p = parent
	}
}

func (m *MemoryStore) deleteLocked(path string) {
	delete(m.values, path)
	for _, key := range m.order[path] {
		m.deleteLocked(path + "/" + key)
	}
	delete(m.order, path)
}

func (m *MemoryStore) childrenLocked(path string) []Entry {
	keys := m.order[path]
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		snap, err := m.snapshotLocked(path + "/" + key)
		if err != nil || snap == nil {
			continue
		}
		entries = append(entries, Entry{ID: key, Value: snap})
	}
	return entries
}

func (m *MemoryStore) snapshotLocked(path string) (json.RawMessage, error) {
	if len(m.order[path]) > 0 {
		return json.Marshal(m.childrenLocked(path))
	}
	v, ok := m.values[path]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), v...), nil
}

func (m *MemoryStore) notifyLocked(tree string) {
	m.seq++
	for _, sub := range m.subs[tree] {
		snap, err := m.snapshotLocked(sub.path)
		if err != nil {
			continue
		}
		deliver(sub.events, Event{Seq: m.seq, Path: sub.path, Value: snap})
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
