// Package store provides the key-path addressable real-time store that
// holds all shared dashboard state. Paths look like "questions/{id}" or
// "dailyProgress/{username}/{date}". Values are JSON documents. A
// subscription delivers the full current value of the watched path on
// attach and after every write underneath it; consumers must treat each
// delivery as an authoritative snapshot, not a diff.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// Entry is one child of a collection path, in store insertion order.
// For nested parents the value is the child's own snapshot.
type Entry struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

// Event is one snapshot delivery to a subscriber. Seq increases
// monotonically per subscription; a consumer holding a newer Seq must
// drop the older event.
type Event struct {
	Seq   uint64
	Path  string
	Value json.RawMessage
}

// Store is the contract every backing implementation honors.
type Store interface {
	// Get returns the value at path, or (nil, nil) when absent.
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// Set writes the value at path, replacing any previous value.
	Set(ctx context.Context, path string, value any) error
	// Update applies a multi-path patch atomically: either every entry
	// is written or none is.
	Update(ctx context.Context, patch map[string]any) error
	// Delete removes the value at path and everything underneath it.
	Delete(ctx context.Context, path string) error
	// Push stores the value under a store-assigned child id of path and
	// returns that id. Children preserves push order.
	Push(ctx context.Context, path string, value any) (string, error)
	// Children lists the direct children of path in insertion order.
	Children(ctx context.Context, path string) ([]Entry, error)
	// Snapshot returns the full value of path: the entry list for a
	// collection node, the raw value for a leaf, nil for an absent path.
	Snapshot(ctx context.Context, path string) (json.RawMessage, error)
	// Subscribe watches the top-level tree containing path. The
	// subscription receives an initial snapshot and one per change.
	Subscribe(ctx context.Context, path string) (*Subscription, error)
}

// Subscription is a live watch on one path. Close fully detaches it; no
// events are delivered afterwards.
type Subscription struct {
	path      string
	events    chan Event
	closeOnce sync.Once
	detach    func()
}

// Events returns the delivery channel. It is closed on detach.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close detaches the subscription.
func (s *Subscription) Close() {
	s.closeOnce.Do(s.detach)
}

// deliver places ev on a capacity-1 channel, displacing any stale event
// still buffered. Back-to-back notifications therefore coalesce into
// the newest snapshot instead of queuing a rebuild per low-level write.
func deliver(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// topLevel returns the first segment of a path: the tree a subscription
// watches.
func topLevel(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

// splitParent splits "a/b/c" into ("a/b", "c"). The second value is
// empty for a top-level path.
func splitParent(path string) (parent, key string) {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}
