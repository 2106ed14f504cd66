package spacedrep

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
)

var start = time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)

func question() *catalog.Question {
	return &catalog.Question{
		ID:                "q-17",
		Body:              catalog.SingleChoice{Choices: []string{"a", "b"}},
		ObjectiveIDs:      []string{"3.2"},
		MisconceptionTags: []string{"acl-order"},
		Tags:              []string{"firewall"},
	}
}

func TestNewCard_Wrong(t *testing.T) {
	c := NewCard(question(), history.StatusWrong, start)
	if c.ID != "card-q-17" || c.ItemID != "q-17" {
		t.Errorf("id/item = %s/%s", c.ID, c.ItemID)
	}
	if c.Interval != 1 {
		t.Errorf("Interval = %d, want 1", c.Interval)
	}
	if math.Abs(c.Ease-2.1) > 1e-9 {
		t.Errorf("Ease = %f, want 2.1", c.Ease)
	}
	if !c.Due.Equal(start.AddDate(0, 0, 1)) {
		t.Errorf("Due = %v, want %v", c.Due, start.AddDate(0, 0, 1))
	}
	if len(c.ObjectiveIDs) != 1 || c.ObjectiveIDs[0] != "3.2" {
		t.Errorf("ObjectiveIDs = %v", c.ObjectiveIDs)
	}
}

func TestNewCard_Unsure(t *testing.T) {
	c := NewCard(question(), history.StatusUnsure, start)
	if c.Interval != 2 || c.Ease != InitialEase || c.Status != history.StatusUnsure {
		t.Errorf("card = %+v, want interval 2 ease 2.3 unsure", c)
	}
}

func TestReview_WrongThenConfidentTwice(t *testing.T) {
	c := NewCard(question(), history.StatusUnsure, start)

	now := start.AddDate(0, 0, 2)
	c1 := Review(c, OutcomeWrong, now)
	if c1.Interval != 1 || c1.Lapses != 1 || c1.Status != history.StatusWrong {
		t.Fatalf("after wrong: %+v", c1)
	}

	now = now.AddDate(0, 0, 1)
	c2 := Review(c1, OutcomeCorrectConfident, now)
	now = now.AddDate(0, 0, c2.Interval)
	c3 := Review(c2, OutcomeCorrectConfident, now)

	if c2.Interval <= c1.Interval {
		t.Errorf("interval after 2nd step = %d, want > %d", c2.Interval, c1.Interval)
	}
	if c3.Interval <= c2.Interval {
		t.Errorf("interval after 3rd step = %d, want > %d", c3.Interval, c2.Interval)
	}
	if !c2.Due.After(c1.Due) || !c3.Due.After(c2.Due) {
		t.Errorf("due not strictly increasing: %v, %v, %v", c1.Due, c2.Due, c3.Due)
	}
}

func TestReview_DoesNotMutateInput(t *testing.T) {
	c := NewCard(question(), history.StatusWrong, start)
	_ = Review(c, OutcomeWrong, start)
	if c.Lapses != 0 || c.Interval != 1 {
		t.Errorf("input card mutated: %+v", c)
	}
}

func TestReview_EaseBounds(t *testing.T) {
	c := history.MistakeCard{Interval: 5, Ease: 2.75, Due: start}
	c = Review(c, OutcomeCorrectConfident, start)
	if c.Ease != MaxEase {
		t.Errorf("Ease = %f, want %f", c.Ease, MaxEase)
	}
	for i := 0; i < 10; i++ {
		c = Review(c, OutcomeWrong, start)
	}
	if c.Ease != MinEase {
		t.Errorf("Ease = %f, want %f", c.Ease, MinEase)
	}
	if c.Interval != 1 {
		t.Errorf("Interval = %d, want 1", c.Interval)
	}
}

func TestReview_CorrectNeverMovesDueEarlier(t *testing.T) {
	c := history.MistakeCard{Interval: 10, Ease: 2.0, Due: start.AddDate(0, 0, 30)}
	next := Review(c, OutcomeCorrectUnsure, start)
	if next.Interval != 16 {
		t.Errorf("Interval = %d, want 16", next.Interval)
	}
	if !next.Due.Equal(c.Due) {
		t.Errorf("Due = %v, want unchanged %v", next.Due, c.Due)
	}
}

func TestReview_WrongResetsDue(t *testing.T) {
	c := history.MistakeCard{Interval: 10, Ease: 2.0, Due: start.AddDate(0, 0, 30)}
	next := Review(c, OutcomeWrong, start)
	if !next.Due.Equal(start.AddDate(0, 0, 1)) {
		t.Errorf("Due = %v, want %v", next.Due, start.AddDate(0, 0, 1))
	}
}
