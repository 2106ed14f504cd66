package coaching

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/mastery"
	"github.com/abhisek/examcoach/internal/seedrng"
)

// PracticePath is the base of drill navigation targets.
const PracticePath = "/practice"

// Planner builds coaching plans against one catalog.
type Planner struct {
	cat *catalog.Catalog
}

// NewPlanner creates a Planner.
func NewPlanner(cat *catalog.Catalog) *Planner {
	return &Planner{cat: cat}
}

// Next returns the plan for the weakest objective that has content.
func (p *Planner) Next(stats history.Stats, now time.Time) Plan {
	return p.NextFrom(mastery.ScoreObjectives(p.cat, stats, now), stats, now)
}

// NextFrom is Next over precomputed objective rows. Rows are walked weakest
// first; if no objective has linked questions, the weakest objective is
// returned with an empty question set.
func (p *Planner) NextFrom(rows []mastery.Row, stats history.Stats, now time.Time) Plan {
	if len(rows) == 0 {
		return noPlan()
	}
	rows = mastery.SortedWeakest(rows, 0)
	for _, row := range rows {
		if plan, ok := p.ForObjective(row, stats, now); ok {
			return plan
		}
	}
	return p.fallback(rows[0])
}

// ForObjective builds the plan for one objective. It returns false when the
// objective has no linked questions.
func (p *Planner) ForObjective(row mastery.Row, stats history.Stats, now time.Time) (Plan, bool) {
	linked := p.cat.QuestionsForObjective(row.ID)
	if len(linked) == 0 {
		return Plan{}, false
	}

	band := BandFor(row.Mastery)
	act := ActivityFor(band)
	section, _ := ResolveSection(p.cat, row.ID, linked)
	sel := SelectQuestions(p.cat, row.ID, section, act, stats, now)

	plan := Plan{
		ObjectiveID:    row.ID,
		ObjectiveTitle: row.Title,
		Mastery:        row.Mastery,
		Weakness:       row.Weakness,
		Band:           band,
		Activity:       act.Kind,
		Section:        section,
		QuestionIDs:    sel.IDs(),
		Loosened:       sel.Loosened,
	}
	plan.BundleID = bundleFor(section, sel.Candidates)

	var lesson *catalog.Lesson
	if band == BandLow {
		lesson = p.lessonFor(row.ID, section)
	}
	if lesson != nil {
		plan.Activity = ActivityLessonQuickCheck
		if len(plan.QuestionIDs) > quickCheckCount {
			plan.QuestionIDs = plan.QuestionIDs[:quickCheckCount]
		}
	}

	plan.ID = PlanID(plan)
	plan.Target = buildTarget(plan, lesson)
	return plan, true
}

func (p *Planner) fallback(row mastery.Row) Plan {
	band := BandFor(row.Mastery)
	plan := Plan{
		ObjectiveID:    row.ID,
		ObjectiveTitle: row.Title,
		Mastery:        row.Mastery,
		Weakness:       row.Weakness,
		Band:           band,
		Activity:       ActivityFor(band).Kind,
		QuestionIDs:    []string{},
		Fallback:       true,
	}
	plan.ID = PlanID(plan)
	plan.Target = buildTarget(plan, nil)
	return plan
}

func noPlan() Plan {
	plan := Plan{Activity: ActivityNone, QuestionIDs: []string{}}
	plan.ID = PlanID(plan)
	plan.Target = Target{Kind: TargetNone, Activity: ActivityNone, PlanID: plan.ID}
	return plan
}

// lessonFor finds a lesson for the section, falling back to the objective.
func (p *Planner) lessonFor(objectiveID string, section *SectionChoice) *catalog.Lesson {
	if section != nil {
		if ls := p.cat.LessonsForSection(section.ID); len(ls) > 0 {
			return &ls[0]
		}
	}
	if ls := p.cat.LessonsForObjective(objectiveID); len(ls) > 0 {
		return &ls[0]
	}
	return nil
}

// PlanID hashes the plan's canonical signature. Wall-clock time is not part
// of the signature.
func PlanID(plan Plan) string {
	sectionID, bundleID := "none", "none"
	if plan.Section != nil {
		sectionID = plan.Section.ID
	}
	if plan.BundleID != "" {
		bundleID = plan.BundleID
	}
	objectiveID := plan.ObjectiveID
	if objectiveID == "" {
		objectiveID = "none"
	}
	return seedrng.ShortID("cp",
		objectiveID,
		string(plan.Band),
		string(plan.Activity),
		sectionID,
		bundleID,
		strings.Join(plan.QuestionIDs, ","),
	)
}

// bundleFor prefers the section's bundle, else the most common bundle among
// the selected questions.
func bundleFor(section *SectionChoice, selected []Candidate) string {
	if section != nil && section.BundleID != "" {
		return section.BundleID
	}
	counts := make(map[string]int)
	for _, c := range selected {
		if c.Question.BundleID != "" {
			counts[c.Question.BundleID]++
		}
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func buildTarget(plan Plan, lesson *catalog.Lesson) Target {
	t := Target{
		Kind:        TargetDrill,
		ObjectiveID: plan.ObjectiveID,
		BundleID:    plan.BundleID,
		Activity:    plan.Activity,
		Count:       len(plan.QuestionIDs),
		PlanID:      plan.ID,
	}
	if plan.Section != nil {
		t.SectionID = plan.Section.ID
	}

	q := url.Values{}
	q.Set("objective", plan.ObjectiveID)
	q.Set("activity", string(plan.Activity))
	q.Set("plan", plan.ID)
	if t.SectionID != "" {
		q.Set("section", t.SectionID)
	}
	if t.BundleID != "" {
		q.Set("bundle", t.BundleID)
	}

	if lesson != nil {
		t.LessonID = lesson.ID
		if u, err := url.Parse(lesson.Link); err == nil {
			t.Kind = TargetLesson
			lq := u.Query()
			for k, v := range q {
				lq[k] = v
			}
			u.RawQuery = lq.Encode()
			t.Href = u.String()
			return t
		}
	}

	q.Set("count", strconv.Itoa(t.Count))
	t.Href = PracticePath + "?" + q.Encode()
	return t
}
