package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/ledger"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/repository"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/store"
)

// Watcher keeps live projections of store state. The catalog watch is
// attached for the life of the process; per-user watches attach on
// login and detach on logout so no stale callback outlives its session.
// Each incoming snapshot carries a sequence number and only the newest
// is applied, so bursts of low-level change events collapse into one
// rebuild instead of a refresh storm.
type Watcher struct {
	store store.Store

	mu        sync.RWMutex
	questions []models.Question
	qSeq      uint64
	qSynced   bool
	qSub      *store.Subscription

	users map[string]*userWatch
}

type userWatch struct {
	completionSub *store.Subscription
	dailySub      *store.Subscription

	completion    []string
	completionSeq uint64
	counts        ledger.DailyCounts
	countsSeq     uint64
}

// NewWatcher creates a watcher over the given store.
func NewWatcher(s store.Store) *Watcher {
	return &Watcher{
		store: s,
		users: make(map[string]*userWatch),
	}
}

// Start attaches the shared catalog watch.
func (w *Watcher) Start(ctx context.Context) error {
	sub, err := w.store.Subscribe(ctx, repository.QuestionsPath)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.qSub = sub
	w.mu.Unlock()
	go func() {
		for ev := range sub.Events() {
			w.applyQuestions(ev)
		}
	}()
	return nil
}

// AttachUser starts watching one user's completion set and daily
// counts. Attaching an already-attached user is a no-op.
func (w *Watcher) AttachUser(ctx context.Context, username string) error {
	w.mu.RLock()
	_, attached := w.users[username]
	w.mu.RUnlock()
	if attached {
		return nil
	}

	completionSub, err := w.store.Subscribe(ctx, repository.ProgressPath+"/"+username)
	if err != nil {
		return err
	}
	dailySub, err := w.store.Subscribe(ctx, repository.DailyProgressPath+"/"+username)
	if err != nil {
		completionSub.Close()
		return err
	}

	// Only a fully-built watch is ever registered, so DetachUser always
	// sees both subscriptions and can close them.
	w.mu.Lock()
	if _, ok := w.users[username]; ok {
		w.mu.Unlock()
		completionSub.Close()
		dailySub.Close()
		return nil
	}
	w.users[username] = &userWatch{
		completionSub: completionSub,
		dailySub:      dailySub,
		counts:        ledger.DailyCounts{},
	}
	w.mu.Unlock()

	go func() {
		for ev := range completionSub.Events() {
			w.applyCompletion(username, ev)
		}
	}()
	go func() {
		for ev := range dailySub.Events() {
			w.applyCounts(username, ev)
		}
	}()
	return nil
}

// DetachUser stops the user's watches. Safe to call for a user that was
// never attached.
func (w *Watcher) DetachUser(username string) {
	w.mu.Lock()
	uw, ok := w.users[username]
	if ok {
		delete(w.users, username)
	}
	w.mu.Unlock()
	if !ok {
		return
	}
	if uw.completionSub != nil {
		uw.completionSub.Close()
	}
	if uw.dailySub != nil {
		uw.dailySub.Close()
	}
}

// Close detaches everything.
func (w *Watcher) Close() {
	w.mu.Lock()
	qSub := w.qSub
	w.qSub = nil
	usernames := make([]string, 0, len(w.users))
	for username := range w.users {
		usernames = append(usernames, username)
	}
	w.mu.Unlock()
	if qSub != nil {
		qSub.Close()
	}
	for _, username := range usernames {
		w.DetachUser(username)
	}
}

// Questions returns the cached catalog. The bool is false until the
// first snapshot has been applied.
func (w *Watcher) Questions() ([]models.Question, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.qSynced {
		return nil, false
	}
	return append([]models.Question(nil), w.questions...), true
}

// Completion returns the cached completion set for an attached user.
func (w *Watcher) Completion(username string) ([]string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	uw, ok := w.users[username]
	if !ok || uw.completionSeq == 0 {
		return nil, false
	}
	return append([]string(nil), uw.completion...), true
}

// Counts returns the cached daily-count map for an attached user.
func (w *Watcher) Counts(username string) (ledger.DailyCounts, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	uw, ok := w.users[username]
	if !ok || uw.countsSeq == 0 {
		return nil, false
	}
	counts := make(ledger.DailyCounts, len(uw.counts))
	for d, c := range uw.counts {
		counts[d] = c
	}
	return counts, true
}

func (w *Watcher) applyQuestions(ev store.Event) {
	var entries []store.Entry
	if len(ev.Value) > 0 {
		if err := json.Unmarshal(ev.Value, &entries); err != nil {
			return
		}
	}
	questions, _ := repository.DecodeQuestions(entries)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.qSynced && ev.Seq <= w.qSeq {
		return
	}
	w.qSeq = ev.Seq
	w.questions = questions
	w.qSynced = true
}

func (w *Watcher) applyCompletion(username string, ev store.Event) {
	ids := []string{}
	if len(ev.Value) > 0 {
		if err := json.Unmarshal(ev.Value, &ids); err != nil {
			return
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	uw, ok := w.users[username]
	if !ok {
		return
	}
	if uw.completionSeq != 0 && ev.Seq <= uw.completionSeq {
		return
	}
	uw.completionSeq = ev.Seq
	uw.completion = ids
}

func (w *Watcher) applyCounts(username string, ev store.Event) {
	var entries []store.Entry
	if len(ev.Value) > 0 {
		if err := json.Unmarshal(ev.Value, &entries); err != nil {
			return
		}
	}
	counts := repository.DecodeDailyCounts(entries)

	w.mu.Lock()
	defer w.mu.Unlock()
	uw, ok := w.users[username]
	if !ok {
		return
	}
	if uw.countsSeq != 0 && ev.Seq <= uw.countsSeq {
		return
	}
	uw.countsSeq = ev.Seq
	uw.counts = counts
}
