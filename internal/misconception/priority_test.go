package misconception

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/mastery"
)

var now = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func testCatalog() *catalog.Catalog {
	body := catalog.SingleChoice{Choices: []string{"a", "b"}}
	c, _ := catalog.New(catalog.Data{
		Objectives: []catalog.Objective{{ID: "1.1"}, {ID: "1.2"}},
		Questions: []catalog.Question{
			{ID: "q1", Body: body, ObjectiveIDs: []string{"1.1"}, MisconceptionTags: []string{"alpha"}},
			{ID: "q2", Body: body, ObjectiveIDs: []string{"1.2"}, MisconceptionTags: []string{"alpha", "beta"}},
			{ID: "q3", Body: body, MisconceptionTags: []string{"gamma"}},
		},
	})
	return c
}

func TestPrioritize_BaseFormula(t *testing.T) {
	tags := []mastery.Row{
		{ID: "alpha", Mastery: 40, Weakness: 60},
		{ID: "gamma", Mastery: 40, Weakness: 60},
	}
	objectives := []mastery.Row{
		{ID: "1.1", Weakness: 30},
		{ID: "1.2", Weakness: 80},
	}

	got := Prioritize(testCatalog(), tags, objectives, nil, now)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// alpha co-occurs with 1.1 and 1.2, so the max weakness (80) applies.
	if got[0].Tag != "alpha" || !almostEqual(got[0].Score, 60*0.9+80*0.35) {
		t.Errorf("got[0] = %+v, want alpha with score %.2f", got[0], 60*0.9+80*0.35)
	}
	// gamma has no linked objective and falls back to 50.
	if got[1].LinkedObjectiveWeakness != 50 || !almostEqual(got[1].Score, 60*0.9+50*0.35) {
		t.Errorf("got[1] = %+v, want gamma with default objective weakness", got[1])
	}
}

func TestPrioritize_CardPressure(t *testing.T) {
	tags := []mastery.Row{
		{ID: "alpha", Weakness: 10},
		{ID: "beta", Weakness: 10},
	}
	objectives := []mastery.Row{{ID: "1.1", Weakness: 50}, {ID: "1.2", Weakness: 50}}
	cards := []history.MistakeCard{
		{ID: "c1", ItemID: "q2", Status: history.StatusWrong, ObjectiveIDs: []string{"1.2"}, MisconceptionTags: []string{"beta"}, Due: now.Add(-time.Hour)},
		{ID: "c2", ItemID: "q9", Status: history.StatusUnsure, ObjectiveIDs: []string{"1.1"}, MisconceptionTags: []string{"beta"}, Due: now.AddDate(0, 0, 3)},
	}

	got := Prioritize(testCatalog(), tags, objectives, cards, now)
	if got[0].Tag != "beta" {
		t.Fatalf("top = %s, want beta", got[0].Tag)
	}
	base := 10*0.9 + 50*0.35
	want := base + 1.2*1.4*1.5*8 + 1.0*1.1*1.5*8
	if !almostEqual(got[0].Score, want) {
		t.Errorf("beta score = %f, want %f", got[0].Score, want)
	}
	if got[0].Cards != 2 || got[0].DueCards != 1 {
		t.Errorf("cards/due = %d/%d, want 2/1", got[0].Cards, got[0].DueCards)
	}
}

func TestPrioritize_TieBreaks(t *testing.T) {
	c, _ := catalog.New(catalog.Data{})
	// Equal scores and weakness fall through to the tag name.
	tags := []mastery.Row{{ID: "zeta", Weakness: 20}, {ID: "eta", Weakness: 20}}
	got := Prioritize(c, tags, nil, nil, now)
	if got[0].Tag != "eta" || got[1].Tag != "zeta" {
		t.Errorf("order = %s, %s; want eta, zeta", got[0].Tag, got[1].Tag)
	}
}

func TestPrioritize_Empty(t *testing.T) {
	c, _ := catalog.New(catalog.Data{})
	if got := Prioritize(c, nil, nil, nil, now); len(got) != 0 {
		t.Errorf("Prioritize(empty) = %v, want empty", got)
	}
}
