package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	valueKeyPrefix   = "qb:v:"
	orderKeyPrefix   = "qb:o:"
	channelKeyPrefix = "qb:ch:"
)

// RedisStore implements Store on Redis: JSON values at string keys,
// insertion order in per-parent sorted sets scored by first-write time,
// change fan-out over one pub/sub channel per top-level tree.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ Store = (*RedisStore)(nil)

// Get returns the value at path, or (nil, nil) when absent.
func (r *RedisStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	data, err := r.client.Get(ctx, valueKeyPrefix+path).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set writes the value at path and publishes a change notification.
func (r *RedisStore) Set(ctx context.Context, path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	r.queueSet(pipe, path, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return r.publish(ctx, path)
}

// Update applies the patch in one transaction and publishes once per
// affected tree.
func (r *RedisStore) Update(ctx context.Context, patch map[string]any) error {
	encoded := make(map[string][]byte, len(patch))
	for path, value := range patch {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		encoded[path] = data
	}
	pipe := r.client.TxPipeline()
	trees := make(map[string]struct{})
	for path, data := range encoded {
		r.queueSet(pipe, path, data)
		trees[topLevel(path)] = struct{}{}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	for tree := range trees {
		if err := r.publish(ctx, tree); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes path and its subtree, then publishes.
func (r *RedisStore) Delete(ctx context.Context, path string) error {
	if err := r.deleteTree(ctx, path); err != nil {
		return err
	}
	parent, key := splitParent(path)
	if key != "" {
		if err := r.client.ZRem(ctx, orderKeyPrefix+parent, key).Err(); err != nil {
			return err
		}
	}
	return r.publish(ctx, path)
}

// Push stores the value under a fresh child id and returns the id.
func (r *RedisStore) Push(ctx context.Context, path string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	pipe := r.client.TxPipeline()
	r.queueSet(pipe, path+"/"+id, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	if err := r.publish(ctx, path); err != nil {
		return "", err
	}
	return id, nil
}

// Children lists the direct children of path in insertion order.
func (r *RedisStore) Children(ctx context.Context, path string) ([]Entry, error) {
	keys, err := r.client.ZRange(ctx, orderKeyPrefix+path, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		snap, err := r.Snapshot(ctx, path+"/"+key)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			continue
		}
		entries = append(entries, Entry{ID: key, Value: snap})
	}
	return entries, nil
}

// Snapshot returns the full value of path.
func (r *RedisStore) Snapshot(ctx context.Context, path string) (json.RawMessage, error) {
	n, err := r.client.ZCard(ctx, orderKeyPrefix+path).Result()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		entries, err := r.Children(ctx, path)
		if err != nil {
			return nil, err
		}
		return json.Marshal(entries)
	}
	return r.Get(ctx, path)
}

// Subscribe watches the tree containing path over pub/sub. The reader
// goroutine re-fetches the full snapshot per notification; stale
// buffered events are displaced so only the newest is seen.
func (r *RedisStore) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	pubsub := r.client.Subscribe(ctx, channelKeyPrefix+topLevel(path))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}
	sub := &Subscription{path: path, events: make(chan Event, 1)}
	sub.detach = func() { pubsub.Close() }
	go func() {
		defer close(sub.events)
		var seq uint64
		emit := func() {
			snap, err := r.Snapshot(ctx, path)
			if err != nil {
				return
			}
			seq++
			deliver(sub.events, Event{Seq: seq, Path: path, Value: snap})
		}
		emit()
		for range pubsub.Channel() {
			emit()
		}
	}()
	return sub, nil
}

func (r *RedisStore) queueSet(pipe redis.Pipeliner, path string, data []byte) {
	pipe.Set(context.Background(), valueKeyPrefix+path, data, 0)
	// Register the parent -> child chain; NX keeps first-write order.
	score := float64(time.Now().UnixNano())
	for p := path; ; {
		parent, key := splitParent(p)
		if key == "" {
			break
		}
		pipe.ZAddNX(context.Background(), orderKeyPrefix+parent, redis.Z{Score: score, Member: key})
		p = parent
	}
}

func (r *RedisStore) deleteTree(ctx context.Context, path string) error {
	keys, err := r.client.ZRange(ctx, orderKeyPrefix+path, 0, -1).Result()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := r.deleteTree(ctx, path+"/"+key); err != nil {
			return err
		}
	}
	return r.client.Del(ctx, valueKeyPrefix+path, orderKeyPrefix+path).Err()
}

func (r *RedisStore) publish(ctx context.Context, path string) error {
	return r.client.Publish(ctx, channelKeyPrefix+topLevel(path), path).Err()
}
