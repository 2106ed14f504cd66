package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/examcoach/internal/history"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Answer is everything one submitted answer writes, applied atomically.
type Answer struct {
	Stat history.AttemptStat
	// Card is the new card state, or nil when no card changes.
	Card      *history.MistakeCard
	SessionID string
	Entry     history.ReviewEntry
}

// HistoryRepo reads and writes learner history.
type HistoryRepo interface {
	// Snapshot loads the full learner history.
	Snapshot(ctx context.Context) (*history.Snapshot, error)

	// SaveAttempt upserts one item's attempt statistics.
	SaveAttempt(ctx context.Context, stat history.AttemptStat) error

	// SaveCard upserts a mistake card.
	SaveCard(ctx context.Context, card history.MistakeCard) error

	// StartSession creates a review session and returns its id.
	StartSession(ctx context.Context, startedAt time.Time) (string, error)

	// AppendReview adds an entry to an existing session.
	AppendReview(ctx context.Context, sessionID string, entry history.ReviewEntry) error

	// RecordAnswer writes the stat, card and review entry in one transaction.
	RecordAnswer(ctx context.Context, a Answer) error
}

// PlanEcho is a stored copy of a generated plan.
type PlanEcho struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	PlanID    string          `json:"plan_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Decode unmarshals the payload into v.
func (e *PlanEcho) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode plan echo %s: %w", e.ID, err)
	}
	return nil
}

// PlanRepo stores plans verbatim so they can be replayed or audited.
type PlanRepo interface {
	// SavePlan stores plan as JSON under kind.
	SavePlan(ctx context.Context, kind, planID string, plan any, at time.Time) (*PlanEcho, error)

	// LatestPlan returns the newest echo of kind, or ErrNotFound.
	LatestPlan(ctx context.Context, kind string) (*PlanEcho, error)

	// ListPlans returns up to limit echoes of kind, newest first.
	// limit <= 0 returns all.
	ListPlans(ctx context.Context, kind string, limit int) ([]PlanEcho, error)
}

// timeLayout is fixed width so stored timestamps sort in time order as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	// RFC3339Nano also accepts rows written with a trimmed fraction.
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeStrings(ss []string) (string, error) {
	if ss == nil {
		ss = []string{}
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStrings(s string) ([]string, error) {
	var out []string
	if s == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
