// Package coaching decides the single next-best practice activity for a
// learner from objective weakness, catalog content and attempt history.
package coaching

import "github.com/abhisek/examcoach/internal/catalog"

// Band is a coarse mastery tier.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Band thresholds on the 0-100 mastery scale.
const (
	lowBandCeiling    = 45
	mediumBandCeiling = 75
)

// BandFor returns the band for a mastery score.
func BandFor(mastery float64) Band {
	switch {
	case mastery < lowBandCeiling:
		return BandLow
	case mastery < mediumBandCeiling:
		return BandMedium
	default:
		return BandHigh
	}
}

// ActivityKind names a practice activity archetype.
type ActivityKind string

const (
	ActivityEasierInteractive ActivityKind = "easier-interactive-set"
	ActivityScenarioMatching  ActivityKind = "scenario-matching-set"
	ActivityMixedMini         ActivityKind = "mixed-mini-set"
	ActivityLessonQuickCheck  ActivityKind = "lesson-quick-check"
	ActivityNone              ActivityKind = "none"
)

// Activity describes how questions are filtered and picked for a band.
type Activity struct {
	Kind  ActivityKind
	Types []catalog.QuestionType
	// MaxDifficulty is the difficulty ceiling; 0 means none.
	MaxDifficulty   int
	Count           int
	PreferScenarios bool
	// RoundRobin deals questions across type buckets instead of by score.
	RoundRobin bool
}

// ActivityFor returns the activity archetype for a band.
func ActivityFor(b Band) Activity {
	switch b {
	case BandLow:
		return Activity{
			Kind:          ActivityEasierInteractive,
			Types:         []catalog.QuestionType{catalog.TypeSingleChoice, catalog.TypeMultiSelect},
			MaxDifficulty: 2,
			Count:         10,
		}
	case BandMedium:
		return Activity{
			Kind:            ActivityScenarioMatching,
			Types:           []catalog.QuestionType{catalog.TypeSingleChoice, catalog.TypeMatchPairs},
			Count:           12,
			PreferScenarios: true,
		}
	default:
		return Activity{
			Kind:       ActivityMixedMini,
			Types:      catalog.AllTypes(),
			Count:      8,
			RoundRobin: true,
		}
	}
}

func (a Activity) allows(t catalog.QuestionType) bool {
	for _, at := range a.Types {
		if at == t {
			return true
		}
	}
	return false
}

// quickCheckCount caps the questions attached to a lesson quick-check.
const quickCheckCount = 3

// Target kinds.
const (
	TargetDrill  = "drill"
	TargetLesson = "lesson"
	TargetNone   = "none"
)

// Target is a resolvable navigation reference for a plan.
type Target struct {
	Kind        string       `json:"kind"`
	ObjectiveID string       `json:"objective_id,omitempty"`
	SectionID   string       `json:"section_id,omitempty"`
	BundleID    string       `json:"bundle_id,omitempty"`
	LessonID    string       `json:"lesson_id,omitempty"`
	Activity    ActivityKind `json:"activity"`
	Count       int          `json:"count"`
	PlanID      string       `json:"plan_id"`
	Href        string       `json:"href"`
}

// Plan is one fully resolved next activity. It holds only ids and plain
// values so it can be stored and re-resolved against the catalog.
type Plan struct {
	ID             string         `json:"plan_id"`
	ObjectiveID    string         `json:"objective_id,omitempty"`
	ObjectiveTitle string         `json:"objective_title,omitempty"`
	Mastery        float64        `json:"mastery"`
	Weakness       float64        `json:"weakness"`
	Band           Band           `json:"band,omitempty"`
	Activity       ActivityKind   `json:"activity"`
	Section        *SectionChoice `json:"section,omitempty"`
	BundleID       string         `json:"bundle_id,omitempty"`
	QuestionIDs    []string       `json:"question_ids"`
	Loosened       []string       `json:"loosened,omitempty"`
	Fallback       bool           `json:"fallback,omitempty"`
	Target         Target         `json:"target"`
}

// Empty reports whether the plan has nothing to practice.
func (p Plan) Empty() bool {
	return len(p.QuestionIDs) == 0 && p.Target.Kind != TargetLesson
}
