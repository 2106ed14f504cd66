package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/store"
)

// fakeHistory is an in-memory HistoryRepo.
type fakeHistory struct {
	mu       sync.Mutex
	stats    history.Stats
	cards    map[string]history.MistakeCard
	sessions []history.ReviewSession
	recorded []store.Answer
	failErr  error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		stats: make(history.Stats),
		cards: make(map[string]history.MistakeCard),
	}
}

func (f *fakeHistory) Snapshot(ctx context.Context) (*history.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	snap := &history.Snapshot{Stats: make(history.Stats, len(f.stats))}
	for k, v := range f.stats {
		snap.Stats[k] = v
	}
	for _, c := range f.cards {
		snap.Cards = append(snap.Cards, c)
	}
	snap.Sessions = append(snap.Sessions, f.sessions...)
	return snap, nil
}

func (f *fakeHistory) SaveAttempt(ctx context.Context, stat history.AttemptStat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[stat.ItemID] = stat
	return nil
}

func (f *fakeHistory) SaveCard(ctx context.Context, card history.MistakeCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[card.ItemID] = card
	return nil
}

func (f *fakeHistory) StartSession(ctx context.Context, startedAt time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("session-%d", len(f.sessions)+1)
	f.sessions = append(f.sessions, history.ReviewSession{ID: id, StartedAt: startedAt})
	return id, nil
}

func (f *fakeHistory) AppendReview(ctx context.Context, sessionID string, entry history.ReviewEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appendLocked(sessionID, entry)
}

func (f *fakeHistory) appendLocked(sessionID string, entry history.ReviewEntry) error {
	for i := range f.sessions {
		if f.sessions[i].ID == sessionID {
			f.sessions[i].Entries = append(f.sessions[i].Entries, entry)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeHistory) RecordAnswer(ctx context.Context, a store.Answer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.appendLocked(a.SessionID, a.Entry); err != nil {
		return err
	}
	f.stats[a.Stat.ItemID] = a.Stat
	if a.Card != nil {
		f.cards[a.Card.ItemID] = *a.Card
	}
	f.recorded = append(f.recorded, a)
	return nil
}

// fakePlans is an in-memory PlanRepo.
type fakePlans struct {
	mu     sync.Mutex
	echoes []store.PlanEcho
}

func (f *fakePlans) SavePlan(ctx context.Context, kind, planID string, plan any, at time.Time) (*store.PlanEcho, error) {
	payload, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e := store.PlanEcho{
		ID:        fmt.Sprintf("echo-%d", len(f.echoes)+1),
		Kind:      kind,
		PlanID:    planID,
		Payload:   payload,
		CreatedAt: at,
	}
	f.echoes = append(f.echoes, e)
	return &e, nil
}

func (f *fakePlans) LatestPlan(ctx context.Context, kind string) (*store.PlanEcho, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.echoes) - 1; i >= 0; i-- {
		if f.echoes[i].Kind == kind {
			e := f.echoes[i]
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePlans) ListPlans(ctx context.Context, kind string, limit int) ([]store.PlanEcho, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.PlanEcho
	for i := len(f.echoes) - 1; i >= 0; i-- {
		if f.echoes[i].Kind == kind {
			out = append(out, f.echoes[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")
