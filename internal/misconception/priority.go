// Package misconception ranks misconception tags by how urgently they need
// attention, merging tag weakness with outstanding mistake-card pressure.
package misconception

import (
	"sort"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/mastery"
)

const (
	weaknessFactor        = 0.9
	objectiveFactor       = 0.35
	defaultObjectiveWeak  = 50.0
	dueWeight             = 1.2
	notDueWeight          = 1.0
	wrongStatusWeight     = 1.4
	unsureStatusWeight    = 1.1
	cardPressureMagnitude = 8.0
)

// Priority is one ranked misconception tag.
type Priority struct {
	Tag                     string   `json:"tag"`
	Score                   float64  `json:"score"`
	Weakness                float64  `json:"weakness"`
	Mastery                 float64  `json:"mastery"`
	LinkedObjectiveWeakness float64  `json:"linked_objective_weakness"`
	ObjectiveIDs            []string `json:"objective_ids,omitempty"`
	Cards                   int      `json:"cards"`
	DueCards                int      `json:"due_cards"`
}

// Prioritize ranks every tag in tagRows, highest priority first. Ties go to
// the weaker tag, then to the tag name.
func Prioritize(cat *catalog.Catalog, tagRows, objectiveRows []mastery.Row, cards []history.MistakeCard, now time.Time) []Priority {
	objWeak := mastery.WeaknessIndex(objectiveRows)

	out := make([]Priority, 0, len(tagRows))
	for _, row := range tagRows {
		objectives := coOccurringObjectives(cat, row.ID, cards)
		linked := maxWeakness(objectives, objWeak, defaultObjectiveWeak)

		p := Priority{
			Tag:                     row.ID,
			Weakness:                row.Weakness,
			Mastery:                 row.Mastery,
			LinkedObjectiveWeakness: linked,
			ObjectiveIDs:            objectives,
			Score:                   row.Weakness*weaknessFactor + linked*objectiveFactor,
		}

		for _, c := range cards {
			if !c.HasMisconception(row.ID) {
				continue
			}
			p.Cards++
			due := !now.Before(c.Due)
			if due {
				p.DueCards++
			}
			cardWeak := maxWeakness(c.ObjectiveIDs, objWeak, linked)
			p.Score += cardPressure(due, c.Status, cardWeak)
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Weakness != b.Weakness {
			return a.Weakness > b.Weakness
		}
		return a.Tag < b.Tag
	})
	return out
}

// cardPressure is the additive score one outstanding card contributes.
func cardPressure(due bool, status history.CardStatus, objectiveWeakness float64) float64 {
	d := notDueWeight
	if due {
		d = dueWeight
	}
	s := wrongStatusWeight
	if status == history.StatusUnsure {
		s = unsureStatusWeight
	}
	return d * s * (1 + objectiveWeakness/100) * cardPressureMagnitude
}

// coOccurringObjectives returns the sorted objective ids that appear with tag
// on catalog questions or mistake cards.
func coOccurringObjectives(cat *catalog.Catalog, tag string, cards []history.MistakeCard) []string {
	seen := make(map[string]bool)
	for _, q := range cat.QuestionsForMisconception(tag) {
		for _, oid := range q.ObjectiveIDs {
			seen[oid] = true
		}
	}
	for _, c := range cards {
		if !c.HasMisconception(tag) {
			continue
		}
		for _, oid := range c.ObjectiveIDs {
			seen[oid] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return catalog.CompareIDs(ids[i], ids[j]) < 0 })
	return ids
}

// maxWeakness returns the largest known weakness among ids, or fallback when
// none of them is scored.
func maxWeakness(ids []string, weakness map[string]float64, fallback float64) float64 {
	best, found := 0.0, false
	for _, id := range ids {
		w, ok := weakness[id]
		if !ok {
			continue
		}
		if !found || w > best {
			best, found = w, true
		}
	}
	if !found {
		return fallback
	}
	return best
}
