package examsim

import (
	"math"
	"sort"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
)

const (
	minSamplingWeight   = 0.25
	wrongRateBonus      = 1.2
	unseenBonus         = 0.45
	highDifficultyBonus = 0.15
	highDifficulty      = 4
)

// SamplingWeight is how strongly a question is favoured when sampling:
// missed, unseen and hard questions are drawn more often.
func SamplingWeight(q *catalog.Question, stat history.AttemptStat) float64 {
	w := 1.0
	if stat.Attempts > 0 {
		w += stat.WrongRate() * wrongRateBonus
	} else {
		w += unseenBonus
	}
	if q.Difficulty >= highDifficulty {
		w += highDifficultyBonus
	}
	return math.Max(minSamplingWeight, w)
}

// IsInteractive reports whether a question type counts toward the
// interactive floor.
func IsInteractive(t catalog.QuestionType) bool {
	return t.Interactive()
}

// candidate is a question eligible for the exam.
type candidate struct {
	q           *catalog.Question
	domains     []string
	scenario    bool
	interactive bool
	weight      float64
}

func (c *candidate) covers(domainID string) bool {
	for _, d := range c.domains {
		if d == domainID {
			return true
		}
	}
	return false
}

// candidates tags every catalog question with its weighted policy domains.
// Questions outside every weighted domain are left out. The result is in
// question id order.
func candidates(cat *catalog.Catalog, weights map[string]float64, stats history.Stats) []candidate {
	var out []candidate
	for _, q := range cat.Questions() {
		seen := make(map[string]bool)
		var domains []string
		for _, oid := range q.ObjectiveIDs {
			d := cat.DomainOf(oid)
			if d == "" || seen[d] || weights[d] <= 0 {
				continue
			}
			seen[d] = true
			domains = append(domains, d)
		}
		if len(domains) == 0 {
			continue
		}
		sort.Strings(domains)
		st, _ := stats.Get(q.ID)
		out = append(out, candidate{
			q:           q,
			domains:     domains,
			scenario:    catalog.IsScenario(q),
			interactive: IsInteractive(q.Type()),
			weight:      SamplingWeight(q, st),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].q.ID < out[j].q.ID })
	return out
}
