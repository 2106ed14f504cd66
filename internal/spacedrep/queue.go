package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/examcoach/internal/history"
)

// UnassignedGroup is the group key of a card with no objective, misconception
// or tag.
const UnassignedGroup = "unassigned"

const (
	defaultObjectiveWeakness = 50.0
	lapseUrgency             = 0.25
	overdueUrgency           = 0.1
)

// QueueOptions controls BuildQueue.
type QueueOptions struct {
	Now time.Time
	// Weakness maps objective id to its weakness score.
	Weakness map[string]float64
	// IncludeUpcoming admits cards that are not yet due.
	IncludeUpcoming bool
	// Limit caps the queue length; 0 means no cap.
	Limit int
}

// QueueEntry is one card in a balanced review queue.
type QueueEntry struct {
	CardID  string    `json:"card_id"`
	ItemID  string    `json:"item_id"`
	Group   string    `json:"group"`
	Due     time.Time `json:"due"`
	Urgency float64   `json:"urgency"`
	Status  string    `json:"status"`

	// DueInDays is 0 for due cards.
	DueInDays int `json:"due_in_days"`
}

// GroupKey is the key a card is balanced under: its first objective, else
// its first misconception tag, else its first tag.
func GroupKey(c history.MistakeCard) string {
	for _, ids := range [][]string{c.ObjectiveIDs, c.MisconceptionTags, c.Tags} {
		for _, id := range ids {
			if id != "" {
				return id
			}
		}
	}
	return UnassignedGroup
}

// Urgency scores a card for ranking among cards with equal due times.
func Urgency(c history.MistakeCard, weakness map[string]float64, now time.Time) float64 {
	status := 1.4
	if c.Status == history.StatusUnsure {
		status = 1.1
	}
	objWeak := defaultObjectiveWeakness
	found := false
	for _, oid := range c.ObjectiveIDs {
		if w, ok := weakness[oid]; ok && (!found || w > objWeak) {
			objWeak, found = w, true
		}
	}
	return status*(1+objWeak/100)*(1+float64(c.Lapses)*lapseUrgency) + OverdueDays(c, now)*overdueUrgency
}

// Balance ranks cards by due time, urgency and id, then deals them out
// round-robin across group keys so no key takes consecutive slots while
// another key still has cards.
func Balance(cards []history.MistakeCard, opts QueueOptions) []QueueEntry {
	pool := make([]QueueEntry, 0, len(cards))
	for _, c := range cards {
		if !opts.IncludeUpcoming && !IsDue(c, opts.Now) {
			continue
		}
		pool = append(pool, QueueEntry{
			CardID:    c.ID,
			ItemID:    c.ItemID,
			Group:     GroupKey(c),
			Due:       c.Due,
			Urgency:   Urgency(c, opts.Weakness, opts.Now),
			Status:    string(Status(c, opts.Now)),
			DueInDays: DaysUntilReview(c, opts.Now),
		})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if !a.Due.Equal(b.Due) {
			return a.Due.Before(b.Due)
		}
		if a.Urgency != b.Urgency {
			return a.Urgency > b.Urgency
		}
		return a.CardID < b.CardID
	})

	var order []string
	groups := make(map[string][]QueueEntry)
	for _, e := range pool {
		if _, ok := groups[e.Group]; !ok {
			order = append(order, e.Group)
		}
		groups[e.Group] = append(groups[e.Group], e)
	}

	out := make([]QueueEntry, 0, len(pool))
	for len(out) < len(pool) {
		for _, key := range order {
			g := groups[key]
			if len(g) == 0 {
				continue
			}
			out = append(out, g[0])
			groups[key] = g[1:]
		}
	}

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// BuildQueue returns the balanced review queue as card ids.
func BuildQueue(cards []history.MistakeCard, opts QueueOptions) []string {
	entries := Balance(cards, opts)
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.CardID
	}
	return ids
}
