package practice

import (
	"context"
	"fmt"

	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/spacedrep"
	"github.com/abhisek/examcoach/internal/store"
)

// Answer is one learner response to a catalog item.
type Answer struct {
	ItemID  string `json:"item_id"`
	Correct bool   `json:"correct"`
	Unsure  bool   `json:"unsure"`
	// SessionID appends to an existing review session. Empty starts a new one.
	SessionID string `json:"session_id,omitempty"`
}

// AnswerResult is the state written for one answer.
type AnswerResult struct {
	Stat      history.AttemptStat  `json:"stat"`
	Card      *history.MistakeCard `json:"card,omitempty"`
	Outcome   spacedrep.Outcome    `json:"outcome"`
	SessionID string               `json:"session_id"`
	// Created is true when this answer opened a new mistake card.
	Created bool `json:"created"`
}

// SubmitAnswer records an answer: the item's attempt stats are updated, its
// mistake card is created or reviewed, and a review entry is appended.
// A confident correct answer to an item without a card creates no card.
func (s *Service) SubmitAnswer(ctx context.Context, a Answer) (AnswerResult, error) {
	q, ok := s.cat.Question(a.ItemID)
	if !ok {
		return AnswerResult{}, fmt.Errorf("%w: %s", ErrUnknownItem, a.ItemID)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return AnswerResult{}, err
	}
	now := s.now()

	stat := snap.Stats[q.ID]
	stat.ItemID = q.ID
	stat.Attempts++
	if a.Correct {
		stat.Correct++
	}
	at := now
	stat.LastAnsweredAt = &at

	outcome := spacedrep.OutcomeFor(a.Correct, a.Unsure)
	res := AnswerResult{Outcome: outcome}

	var card *history.MistakeCard
	if prev, ok := snap.CardForItem(q.ID); ok {
		next := spacedrep.Review(prev, outcome, now)
		card = &next
	} else if outcome != spacedrep.OutcomeCorrectConfident {
		status := history.StatusUnsure
		if outcome == spacedrep.OutcomeWrong {
			status = history.StatusWrong
		}
		next := spacedrep.NewCard(q, status, now)
		card = &next
		res.Created = true
	}
	if card != nil {
		stat.Interval = card.Interval
		stat.Ease = card.Ease
		due := card.Due
		stat.Due = &due
	}

	sessionID := a.SessionID
	if sessionID == "" {
		if sessionID, err = s.history.StartSession(ctx, now); err != nil {
			return AnswerResult{}, fmt.Errorf("start review session: %w", err)
		}
	}

	entry := history.ReviewEntry{ItemID: q.ID, Outcome: string(outcome), At: now}
	if card != nil {
		entry.CardID = card.ID
	}
	if err := s.history.RecordAnswer(ctx, store.Answer{
		Stat:      stat,
		Card:      card,
		SessionID: sessionID,
		Entry:     entry,
	}); err != nil {
		return AnswerResult{}, fmt.Errorf("record answer for %s: %w", q.ID, err)
	}

	s.log.Info("answer recorded",
		"item", q.ID,
		"outcome", outcome,
		"session_id", sessionID,
		"card_created", res.Created,
	)

	res.Stat = stat
	res.Card = card
	res.SessionID = sessionID
	return res, nil
}
