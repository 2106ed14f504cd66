package coaching

import (
	"sort"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/mastery"
)

// Filters that may be dropped when the strict pool is empty, in the order
// they are dropped.
const (
	LoosenSectionTags = "section-tags"
	LoosenDifficulty  = "difficulty"
	LoosenTypes       = "types"
)

// Candidate is a scored question.
type Candidate struct {
	Question *catalog.Question
	Score    float64
}

// Selection is the outcome of SelectQuestions.
type Selection struct {
	Candidates []Candidate
	Loosened   []string
}

// IDs returns the selected question ids in order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.Candidates))
	for i, c := range s.Candidates {
		ids[i] = c.Question.ID
	}
	return ids
}

// SelectQuestions filters the objective's questions for the activity and
// picks up to activity.Count of them. Filters are loosened one at a time
// when nothing survives them.
func SelectQuestions(cat *catalog.Catalog, objectiveID string, section *SectionChoice, act Activity, stats history.Stats, now time.Time) Selection {
	pool := cat.QuestionsForObjective(objectiveID)

	useSection := section != nil && (len(section.Tags) > 0 || section.Source == SourceOrigin)
	useDifficulty := act.MaxDifficulty > 0
	useTypes := len(act.Types) > 0

	filter := func() []*catalog.Question {
		var out []*catalog.Question
		for _, q := range pool {
			if useSection && !section.matches(q) {
				continue
			}
			if useDifficulty && q.Difficulty > act.MaxDifficulty {
				continue
			}
			if useTypes && !act.allows(q.Type()) {
				continue
			}
			out = append(out, q)
		}
		return out
	}

	var sel Selection
	filtered := filter()
	for _, step := range []struct {
		name string
		flag *bool
	}{
		{LoosenSectionTags, &useSection},
		{LoosenDifficulty, &useDifficulty},
		{LoosenTypes, &useTypes},
	} {
		if len(filtered) > 0 || len(pool) == 0 {
			break
		}
		if !*step.flag {
			continue
		}
		*step.flag = false
		sel.Loosened = append(sel.Loosened, step.name)
		filtered = filter()
	}

	scored := make([]Candidate, 0, len(filtered))
	for _, q := range filtered {
		st, _ := stats.Get(q.ID)
		scored = append(scored, Candidate{Question: q, Score: ScoreCandidate(q, st, act, now)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Question.ID < scored[j].Question.ID
	})

	if act.RoundRobin {
		sel.Candidates = roundRobin(scored, act.Count)
	} else {
		sel.Candidates = scored[:min(act.Count, len(scored))]
	}
	return sel
}

// ScoreCandidate scores one question for an activity. Unattempted questions
// score on difficulty; attempted ones on how often and how recently they were
// missed.
func ScoreCandidate(q *catalog.Question, stat history.AttemptStat, act Activity, now time.Time) float64 {
	if stat.Attempts <= 0 {
		s := 1.2 + float64(q.Difficulty)*0.06
		if act.PreferScenarios && catalog.IsScenario(q) {
			s += 0.3
		}
		return s
	}
	confidence := mastery.Confidence(stat.Attempts)
	recency := mastery.Recency(stat.LastAnsweredAt, now)
	return stat.WrongRate()*(1+confidence*0.45)*1.35 + (1-recency)*0.55 + typeBonus(q.Type())
}

func typeBonus(t catalog.QuestionType) float64 {
	switch t {
	case catalog.TypeMatchPairs:
		return 0.08
	case catalog.TypeOrdering:
		return 0.06
	case catalog.TypeMultiSelect:
		return 0.04
	case catalog.TypeSingleChoice:
		return 0
	default:
		return 0
	}
}

// bucketOrder is the type priority for round-robin dealing.
var bucketOrder = []catalog.QuestionType{
	catalog.TypeMatchPairs,
	catalog.TypeOrdering,
	catalog.TypeMultiSelect,
	catalog.TypeSingleChoice,
}

// roundRobin deals from per-type buckets in bucketOrder. A bucket that runs
// dry is refilled from the best remaining candidate of any type.
func roundRobin(sorted []Candidate, count int) []Candidate {
	buckets := make(map[catalog.QuestionType][]int)
	for i, c := range sorted {
		t := c.Question.Type()
		buckets[t] = append(buckets[t], i)
	}
	taken := make([]bool, len(sorted))
	next := func(idx []int) (int, []int) {
		for len(idx) > 0 {
			i := idx[0]
			idx = idx[1:]
			if !taken[i] {
				return i, idx
			}
		}
		return -1, idx
	}
	rest := make([]int, len(sorted))
	for i := range rest {
		rest[i] = i
	}

	limit := min(count, len(sorted))
	out := make([]Candidate, 0, limit)
	for len(out) < limit {
		for _, t := range bucketOrder {
			if len(out) == limit {
				break
			}
			i, remaining := next(buckets[t])
			buckets[t] = remaining
			if i < 0 {
				i, rest = next(rest)
			}
			if i < 0 {
				break
			}
			taken[i] = true
			out = append(out, sorted[i])
		}
	}
	return out
}
