// Package spacedrep schedules spaced review of mistake cards and builds a
// review queue that is balanced across objectives.
package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
)

// CardID returns the card id used for itemID.
func CardID(itemID string) string {
	return "card-" + itemID
}

// NewCard creates the card for the first wrong or unsure answer to q.
func NewCard(q *catalog.Question, status history.CardStatus, now time.Time) history.MistakeCard {
	interval := InitialUnsureInterval
	ease := InitialEase
	if status != history.StatusUnsure {
		status = history.StatusWrong
		interval = InitialWrongInterval
		ease = InitialEase - lapseStep
	}
	return history.MistakeCard{
		ID:                CardID(q.ID),
		ItemID:            q.ID,
		Status:            status,
		ObjectiveIDs:      append([]string(nil), q.ObjectiveIDs...),
		MisconceptionTags: append([]string(nil), q.MisconceptionTags...),
		Tags:              append([]string(nil), q.Tags...),
		CreatedAt:         now,
		Due:               now.AddDate(0, 0, interval),
		Interval:          interval,
		Ease:              ease,
	}
}

// Review returns the next state of c after a graded review. The input card is
// not modified. Correct outcomes never move the due time earlier; a wrong
// outcome resets the card to the shortest interval.
func Review(c history.MistakeCard, outcome Outcome, now time.Time) history.MistakeCard {
	next := c
	ease := c.Ease
	if ease == 0 {
		ease = InitialEase
	}
	interval := float64(max(c.Interval, 1))

	switch outcome {
	case OutcomeCorrectConfident:
		interval *= ease
		ease = math.Min(MaxEase, ease+easeStep)
	case OutcomeCorrectUnsure:
		interval *= unsureMultiplier
	default:
		interval = 1
		ease = math.Max(MinEase, ease-lapseStep)
		next.Lapses++
		next.Status = history.StatusWrong
	}

	next.Ease = clampEase(ease)
	next.Interval = max(1, int(math.Round(interval)))
	due := now.AddDate(0, 0, next.Interval)
	if outcome != OutcomeWrong && c.Due.After(due) {
		due = c.Due
	}
	next.Due = due
	return next
}

func clampEase(e float64) float64 {
	if e < MinEase {
		return MinEase
	}
	if e > MaxEase {
		return MaxEase
	}
	return e
}
