// Package history defines the learner-history snapshot the engine reads:
// per-item attempt statistics, mistake cards and review sessions.
package history

import "time"

// AttemptStat aggregates every answer to one content item. It is updated in
// place by the answer-submission path and never deleted.
type AttemptStat struct {
	ItemID         string     `json:"item_id"`
	Attempts       int        `json:"attempts"`
	Correct        int        `json:"correct"`
	LastAnsweredAt *time.Time `json:"last_answered_at,omitempty"`
	Interval       int        `json:"interval,omitempty"`
	Ease           float64    `json:"ease,omitempty"`
	Due            *time.Time `json:"due,omitempty"`
}

// Accuracy returns correct/attempts, or 0 with no attempts.
func (s AttemptStat) Accuracy() float64 {
	if s.Attempts <= 0 {
		return 0
	}
	acc := float64(s.Correct) / float64(s.Attempts)
	if acc > 1 {
		return 1
	}
	if acc < 0 {
		return 0
	}
	return acc
}

// WrongRate returns 1 - Accuracy, or 0 with no attempts.
func (s AttemptStat) WrongRate() float64 {
	if s.Attempts <= 0 {
		return 0
	}
	return 1 - s.Accuracy()
}

// Stats maps item id to its attempt statistics.
type Stats map[string]AttemptStat

// Get returns the stat for itemID and whether it has at least one attempt.
func (s Stats) Get(itemID string) (AttemptStat, bool) {
	st, ok := s[itemID]
	if !ok || st.Attempts <= 0 {
		return AttemptStat{ItemID: itemID}, false
	}
	return st, true
}

// CardStatus is why a mistake card exists.
type CardStatus string

const (
	StatusWrong  CardStatus = "wrong"
	StatusUnsure CardStatus = "unsure"
)

// MistakeCard is a spaced-repetition record for a missed or unsure item.
type MistakeCard struct {
	ID                string     `json:"id"`
	ItemID            string     `json:"item_id"`
	Status            CardStatus `json:"status"`
	ObjectiveIDs      []string   `json:"objective_ids,omitempty"`
	MisconceptionTags []string   `json:"misconception_tags,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	Due               time.Time  `json:"due"`
	Interval          int        `json:"interval"`
	Ease              float64    `json:"ease"`
	Lapses            int        `json:"lapses"`
}

// HasMisconception reports whether the card carries tag.
func (c MistakeCard) HasMisconception(tag string) bool {
	for _, t := range c.MisconceptionTags {
		if t == tag {
			return true
		}
	}
	return false
}

// ReviewEntry is one graded review inside a session.
type ReviewEntry struct {
	CardID  string    `json:"card_id,omitempty"`
	ItemID  string    `json:"item_id"`
	Outcome string    `json:"outcome"`
	At      time.Time `json:"at"`
}

// ReviewSession groups review entries answered together.
type ReviewSession struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Entries   []ReviewEntry `json:"entries"`
}

// Snapshot is an immutable view of learner history for one engine call.
type Snapshot struct {
	Stats    Stats           `json:"stats"`
	Cards    []MistakeCard   `json:"cards"`
	Sessions []ReviewSession `json:"sessions,omitempty"`
}

// CardForItem returns the card tracking itemID, if any.
func (s *Snapshot) CardForItem(itemID string) (MistakeCard, bool) {
	for _, c := range s.Cards {
		if c.ItemID == itemID {
			return c, true
		}
	}
	return MistakeCard{}, false
}
