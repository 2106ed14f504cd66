// Package mastery turns sparse attempt history into per-objective and
// per-misconception mastery and weakness scores in [0,100].
package mastery

import (
	"sort"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
)

// Baseline pseudo-observations for mistake cards whose item has no tracked
// attempts.
const (
	baselineWrong  = 0.2
	baselineUnsure = 0.5
)

// Row is one scored objective or misconception tag.
type Row struct {
	ID             string  `json:"id"`
	Title          string  `json:"title,omitempty"`
	DomainID       string  `json:"domain_id,omitempty"`
	Mastery        float64 `json:"mastery"`
	Weakness       float64 `json:"weakness"`
	AttemptedItems int     `json:"attempted_items"`
	LinkedItems    int     `json:"linked_items"`
	Attempts       int     `json:"attempts"`
}

// accumulator sums weighted blended scores.
type accumulator struct {
	sum       float64
	weight    float64
	attempted int
	attempts  int
}

func (a *accumulator) add(score, weight float64) {
	a.sum += score * weight
	a.weight += weight
	a.attempted++
}

func (a *accumulator) addItem(stat history.AttemptStat, now time.Time) {
	score, weight, ok := Blend(stat, now)
	if !ok {
		return
	}
	a.add(score, weight)
	a.attempts += stat.Attempts
}

func (a *accumulator) mastery() float64 {
	if a.weight <= 0 {
		return 0
	}
	return clamp(100*a.sum/a.weight, 0, 100)
}

func newRow(id, title, domainID string, acc *accumulator, linked int) Row {
	m := round1(acc.mastery())
	return Row{
		ID:             id,
		Title:          title,
		DomainID:       domainID,
		Mastery:        m,
		Weakness:       round1(max(0, 100-m)),
		AttemptedItems: acc.attempted,
		LinkedItems:    linked,
		Attempts:       acc.attempts,
	}
}

// ScoreObjectives scores every catalog objective, weakest first. An
// objective with no attempted linked items scores mastery 0.
func ScoreObjectives(cat *catalog.Catalog, stats history.Stats, now time.Time) []Row {
	objectives := cat.Objectives()
	rows := make([]Row, 0, len(objectives))
	for _, o := range objectives {
		var acc accumulator
		linked := cat.QuestionsForObjective(o.ID)
		for _, q := range linked {
			if st, ok := stats.Get(q.ID); ok {
				acc.addItem(st, now)
			}
		}
		rows = append(rows, newRow(o.ID, o.Title, o.DomainID, &acc, len(linked)))
	}
	SortRows(rows)
	return rows
}

// ScoreMisconceptions scores every misconception tag seen in the catalog or
// on a mistake card, weakest first. Cards whose item has no tracked attempts
// contribute a baseline observation so a tag with open cards never reads as
// mastered.
func ScoreMisconceptions(cat *catalog.Catalog, stats history.Stats, cards []history.MistakeCard, now time.Time) []Row {
	tags := make(map[string]bool)
	for _, tag := range cat.MisconceptionTags() {
		tags[tag] = true
	}
	for _, c := range cards {
		for _, tag := range c.MisconceptionTags {
			if tag != "" {
				tags[tag] = true
			}
		}
	}

	rows := make([]Row, 0, len(tags))
	for tag := range tags {
		var acc accumulator
		linked := cat.QuestionsForMisconception(tag)
		for _, q := range linked {
			if st, ok := stats.Get(q.ID); ok {
				acc.addItem(st, now)
			}
		}
		for _, c := range cards {
			if !c.HasMisconception(tag) {
				continue
			}
			if _, tracked := stats.Get(c.ItemID); tracked {
				continue
			}
			acc.add(baselineScore(c.Status), 1)
		}
		rows = append(rows, newRow(tag, tag, "", &acc, len(linked)))
	}
	SortRows(rows)
	return rows
}

func baselineScore(status history.CardStatus) float64 {
	if status == history.StatusUnsure {
		return baselineUnsure
	}
	return baselineWrong
}

// SortRows orders rows weakest first: ascending mastery, then fewer
// attempted items, then fewer linked items, then numeric-aware id.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Mastery != b.Mastery {
			return a.Mastery < b.Mastery
		}
		if a.AttemptedItems != b.AttemptedItems {
			return a.AttemptedItems < b.AttemptedItems
		}
		if a.LinkedItems != b.LinkedItems {
			return a.LinkedItems < b.LinkedItems
		}
		return catalog.CompareIDs(a.ID, b.ID) < 0
	})
}

// SortedWeakest returns up to n rows, weakest first. n <= 0 returns all.
func SortedWeakest(rows []Row, n int) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	SortRows(out)
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// WeaknessIndex indexes rows by id.
func WeaknessIndex(rows []Row) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Weakness
	}
	return out
}
