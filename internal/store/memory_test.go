package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	missing, err := s.Get(ctx, "progress/shiwangi")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.Set(ctx, "progress/shiwangi", []string{"a", "b"}))
	raw, err := s.Get(ctx, "progress/shiwangi")
	require.NoError(t, err)

	var ids []string
	require.NoError(t, json.Unmarshal(raw, &ids))
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestPushPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id1, err := s.Push(ctx, "questions", map[string]string{"name": "Two Sum"})
	require.NoError(t, err)
	id2, err := s.Push(ctx, "questions", map[string]string{"name": "3Sum"})
	require.NoError(t, err)
	id3, err := s.Push(ctx, "questions", map[string]string{"name": "LRU Cache"})
	require.NoError(t, err)

	entries, err := s.Children(ctx, "questions")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{id1, id2, id3}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestSetRegistersChild(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "dailyProgress/shiwangi/2024-05-01", 2))
	require.NoError(t, s.Set(ctx, "dailyProgress/shiwangi/2024-05-02", 3))
	// Overwrite does not duplicate or reorder the child.
	require.NoError(t, s.Set(ctx, "dailyProgress/shiwangi/2024-05-01", 4))

	entries, err := s.Children(ctx, "dailyProgress/shiwangi")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-05-01", entries[0].ID)
	assert.Equal(t, "2024-05-02", entries[1].ID)
	assert.Equal(t, json.RawMessage("4"), entries[0].Value)
}

func TestDeleteRemovesSubtree(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Push(ctx, "questions", map[string]string{"name": "Two Sum"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "questions/"+id))

	entries, err := s.Children(ctx, "questions")
	require.NoError(t, err)
	assert.Empty(t, entries)

	raw, err := s.Get(ctx, "questions/"+id)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestUpdateAppliesWholePatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	patch := map[string]any{
		"progress/shiwangi": []string{"a"},
		"progress/nishitah": []string{},
	}
	require.NoError(t, s.Update(ctx, patch))

	entries, err := s.Children(ctx, "progress")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// An unmarshalable value rejects the whole patch.
	err = s.Update(ctx, map[string]any{
		"progress/shiwangi": []string{"b"},
		"progress/broken":   make(chan int),
	})
	require.Error(t, err)
	raw, err := s.Get(ctx, "progress/shiwangi")
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(raw))
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "progress/shiwangi", []string{"a"}))

	sub, err := s.Subscribe(ctx, "progress/shiwangi")
	require.NoError(t, err)
	defer sub.Close()

	ev := waitEvent(t, sub)
	assert.Equal(t, "progress/shiwangi", ev.Path)
	assert.JSONEq(t, `["a"]`, string(ev.Value))
}

func TestSubscribeDeliversChanges(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	sub, err := s.Subscribe(ctx, "progress/shiwangi")
	require.NoError(t, err)
	defer sub.Close()

	first := waitEvent(t, sub)
	assert.Nil(t, first.Value)

	require.NoError(t, s.Set(ctx, "progress/shiwangi", []string{"a"}))
	ev := waitEvent(t, sub)
	assert.Greater(t, ev.Seq, first.Seq)
	assert.JSONEq(t, `["a"]`, string(ev.Value))
}

func TestSubscribeCoalescesBackToBackWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	sub, err := s.Subscribe(ctx, "progress/shiwangi")
	require.NoError(t, err)
	defer sub.Close()
	waitEvent(t, sub) // initial

	// Burst of writes with no reader: only the newest snapshot remains.
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Set(ctx, "progress/shiwangi", []string{"v", string(rune('0' + i))}))
	}
	ev := waitEvent(t, sub)
	assert.JSONEq(t, `["v","5"]`, string(ev.Value))

	select {
	case extra, ok := <-sub.Events():
		if ok {
			t.Fatalf("expected coalesced delivery, got extra event %v", extra)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseDetachesSubscription(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	sub, err := s.Subscribe(ctx, "questions")
	require.NoError(t, err)
	waitEvent(t, sub)

	sub.Close()
	sub.Close() // idempotent

	_, ok := <-sub.Events()
	assert.False(t, ok)

	// Writes after detach do not panic and are not delivered.
	require.NoError(t, s.Set(ctx, "questions/x", map[string]string{"name": "n"}))
}

func TestSubscribeWatchesWholeTree(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	sub, err := s.Subscribe(ctx, "questions")
	require.NoError(t, err)
	defer sub.Close()
	waitEvent(t, sub)

	id, err := s.Push(ctx, "questions", map[string]string{"name": "Two Sum"})
	require.NoError(t, err)

	ev := waitEvent(t, sub)
	var entries []Entry
	require.NoError(t, json.Unmarshal(ev.Value, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
}

func waitEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed before event arrived")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}
