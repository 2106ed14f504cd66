// Package catalog holds the static, read-only content the engine scores and
// selects from: objectives, domains, questions, outline sections, lesson
// pointers and exam domain-weight policies.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain is an exam domain used for simulation quotas.
type Domain struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Objective is a numbered learning outcome, e.g. "2.3".
type Objective struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DomainID string `json:"domain_id"`
}

// OutlineSection maps a curated outline section to the objectives it covers.
type OutlineSection struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Link         string   `json:"link,omitempty"`
	ObjectiveIDs []string `json:"objective_ids"`
	BundleID     string   `json:"bundle_id,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	LessonIDs    []string `json:"lesson_ids,omitempty"`
}

// Lesson points at an explainer page.
type Lesson struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	ObjectiveIDs []string `json:"objective_ids,omitempty"`
	SectionIDs   []string `json:"section_ids,omitempty"`
}

// Catalog is an indexed, consistency-filtered snapshot of all catalog data.
// It is immutable after New and safe for concurrent readers.
type Catalog struct {
	domains    []Domain
	objectives []Objective
	questions  []*Question
	sections   []OutlineSection
	lessons    []Lesson
	policies   []Policy

	domainByID       map[string]*Domain
	objectiveByID    map[string]*Objective
	questionByID     map[string]*Question
	sectionByID      map[string]*OutlineSection
	lessonByID       map[string]*Lesson
	bundles          map[string]bool
	byObjective      map[string][]*Question
	byMisconception  map[string][]*Question
	sectionsByObj    map[string][]*OutlineSection
	lessonsBySection map[string][]*Lesson
	lessonsByObj     map[string][]*Lesson
	misconceptions   []string
}

// Data is the raw input to New.
type Data struct {
	Domains    []Domain
	Objectives []Objective
	Questions  []Question
	Sections   []OutlineSection
	Lessons    []Lesson
	Policies   []Policy
}

// New builds a Catalog from raw data. Inconsistent references are filtered
// out and reported as issues; New never fails.
func New(d Data) (*Catalog, []Issue) {
	c := &Catalog{
		domainByID:       make(map[string]*Domain),
		objectiveByID:    make(map[string]*Objective),
		questionByID:     make(map[string]*Question),
		sectionByID:      make(map[string]*OutlineSection),
		lessonByID:       make(map[string]*Lesson),
		bundles:          make(map[string]bool),
		byObjective:      make(map[string][]*Question),
		byMisconception:  make(map[string][]*Question),
		sectionsByObj:    make(map[string][]*OutlineSection),
		lessonsBySection: make(map[string][]*Lesson),
		lessonsByObj:     make(map[string][]*Lesson),
	}
	var issues issueList

	// Domains.
	for _, dm := range d.Domains {
		if dm.ID == "" {
			issues.add(IssueInvalid, "domain", "domain without id")
			continue
		}
		if _, dup := c.domainByID[dm.ID]; dup {
			issues.add(IssueDuplicate, dm.ID, "duplicate domain id")
			continue
		}
		c.domains = append(c.domains, dm)
		c.domainByID[dm.ID] = &c.domains[len(c.domains)-1]
	}
	sort.Slice(c.domains, func(i, j int) bool { return c.domains[i].ID < c.domains[j].ID })
	c.reindexDomains()

	// Objectives.
	for _, o := range d.Objectives {
		if o.ID == "" {
			issues.add(IssueInvalid, "objective", "objective without id")
			continue
		}
		if _, dup := c.objectiveByID[o.ID]; dup {
			issues.add(IssueDuplicate, o.ID, "duplicate objective id")
			continue
		}
		if o.DomainID != "" && c.domainByID[o.DomainID] == nil {
			issues.add(IssueDanglingRef, o.ID, fmt.Sprintf("unknown domain %q", o.DomainID))
		}
		c.objectives = append(c.objectives, o)
		c.objectiveByID[o.ID] = &Objective{}
	}
	sort.Slice(c.objectives, func(i, j int) bool {
		return CompareIDs(c.objectives[i].ID, c.objectives[j].ID) < 0
	})
	for i := range c.objectives {
		c.objectiveByID[c.objectives[i].ID] = &c.objectives[i]
	}

	// Questions.
	for i := range d.Questions {
		q := d.Questions[i]
		if q.ID == "" || q.Body == nil || q.Type() == "" {
			issues.add(IssueInvalid, q.ID, "question without id or body")
			continue
		}
		if _, dup := c.questionByID[q.ID]; dup {
			issues.add(IssueDuplicate, q.ID, "duplicate question id")
			continue
		}
		q.ObjectiveIDs = c.knownObjectives(q.ID, q.ObjectiveIDs, &issues)
		if q.Difficulty < 1 || q.Difficulty > 5 {
			issues.add(IssueInvalid, q.ID, fmt.Sprintf("difficulty %d clamped", q.Difficulty))
			q.Difficulty = clampInt(q.Difficulty, 1, 5)
		}
		qp := &q
		c.questions = append(c.questions, qp)
		c.questionByID[q.ID] = qp
		if q.BundleID != "" {
			c.bundles[q.BundleID] = true
		}
	}
	sort.Slice(c.questions, func(i, j int) bool { return c.questions[i].ID < c.questions[j].ID })
	for _, q := range c.questions {
		for _, oid := range q.ObjectiveIDs {
			c.byObjective[oid] = append(c.byObjective[oid], q)
		}
		for _, tag := range dedupe(q.MisconceptionTags) {
			c.byMisconception[tag] = append(c.byMisconception[tag], q)
		}
	}
	for tag := range c.byMisconception {
		c.misconceptions = append(c.misconceptions, tag)
	}
	sort.Strings(c.misconceptions)

	// Outline sections.
	for _, s := range d.Sections {
		if s.ID == "" {
			s.ID = SectionID(s.Title, s.Link)
		}
		if _, dup := c.sectionByID[s.ID]; dup {
			issues.add(IssueDuplicate, s.ID, "duplicate section id")
			continue
		}
		s.ObjectiveIDs = c.knownObjectives(s.ID, s.ObjectiveIDs, &issues)
		if s.BundleID != "" && !c.bundles[s.BundleID] {
			issues.add(IssueDanglingRef, s.ID, fmt.Sprintf("unknown bundle %q dropped", s.BundleID))
			s.BundleID = ""
		}
		c.sections = append(c.sections, s)
		c.sectionByID[s.ID] = &OutlineSection{}
	}
	sort.Slice(c.sections, func(i, j int) bool { return c.sections[i].ID < c.sections[j].ID })
	for i := range c.sections {
		s := &c.sections[i]
		c.sectionByID[s.ID] = s
		for _, oid := range s.ObjectiveIDs {
			c.sectionsByObj[oid] = append(c.sectionsByObj[oid], s)
		}
	}

	// Lessons.
	for _, l := range d.Lessons {
		if l.ID == "" || l.Link == "" {
			issues.add(IssueInvalid, l.ID, "lesson without id or link")
			continue
		}
		if _, dup := c.lessonByID[l.ID]; dup {
			issues.add(IssueDuplicate, l.ID, "duplicate lesson id")
			continue
		}
		l.ObjectiveIDs = c.knownObjectives(l.ID, l.ObjectiveIDs, &issues)
		var sections []string
		for _, sid := range l.SectionIDs {
			if c.sectionByID[sid] == nil {
				issues.add(IssueDanglingRef, l.ID, fmt.Sprintf("unknown section %q dropped", sid))
				continue
			}
			sections = append(sections, sid)
		}
		l.SectionIDs = sections
		c.lessons = append(c.lessons, l)
		c.lessonByID[l.ID] = &Lesson{}
	}
	sort.Slice(c.lessons, func(i, j int) bool { return c.lessons[i].ID < c.lessons[j].ID })
	for i := range c.lessons {
		l := &c.lessons[i]
		c.lessonByID[l.ID] = l
		for _, oid := range l.ObjectiveIDs {
			c.lessonsByObj[oid] = append(c.lessonsByObj[oid], l)
		}
		for _, sid := range l.SectionIDs {
			c.lessonsBySection[sid] = append(c.lessonsBySection[sid], l)
		}
	}
	// Sections may also point at lessons directly.
	for i := range c.sections {
		s := &c.sections[i]
		for _, lid := range s.LessonIDs {
			l := c.lessonByID[lid]
			if l == nil {
				issues.add(IssueDanglingRef, s.ID, fmt.Sprintf("unknown lesson %q ignored", lid))
				continue
			}
			if !containsLesson(c.lessonsBySection[s.ID], l.ID) {
				c.lessonsBySection[s.ID] = append(c.lessonsBySection[s.ID], l)
			}
		}
	}

	// Policies.
	for _, p := range d.Policies {
		p, pIssues := p.normalized(c.domainByID)
		issues = append(issues, pIssues...)
		c.policies = append(c.policies, p)
	}
	sortPolicies(c.policies)

	return c, issues
}

func (c *Catalog) reindexDomains() {
	for i := range c.domains {
		c.domainByID[c.domains[i].ID] = &c.domains[i]
	}
}

func (c *Catalog) knownObjectives(owner string, ids []string, issues *issueList) []string {
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c.objectiveByID[id] == nil {
			issues.add(IssueDanglingRef, owner, fmt.Sprintf("unknown objective %q dropped", id))
			continue
		}
		out = append(out, id)
	}
	return out
}

// Domains returns all domains ordered by id.
func (c *Catalog) Domains() []Domain { return c.domains }

// Domain looks up a domain by id.
func (c *Catalog) Domain(id string) (Domain, bool) {
	if d := c.domainByID[id]; d != nil {
		return *d, true
	}
	return Domain{}, false
}

// Objectives returns all objectives in numeric-aware id order.
func (c *Catalog) Objectives() []Objective { return c.objectives }

// Objective looks up an objective by id.
func (c *Catalog) Objective(id string) (Objective, bool) {
	if o := c.objectiveByID[id]; o != nil {
		return *o, true
	}
	return Objective{}, false
}

// DomainOf returns the domain owning objectiveID, or "" if unknown.
func (c *Catalog) DomainOf(objectiveID string) string {
	if o := c.objectiveByID[objectiveID]; o != nil {
		return o.DomainID
	}
	return ""
}

// Questions returns all questions ordered by id. Callers must not mutate them.
func (c *Catalog) Questions() []*Question { return c.questions }

// Question looks up a question by id.
func (c *Catalog) Question(id string) (*Question, bool) {
	q, ok := c.questionByID[id]
	return q, ok
}

// QuestionsForObjective returns the questions linked to an objective, by id.
func (c *Catalog) QuestionsForObjective(objectiveID string) []*Question {
	return c.byObjective[objectiveID]
}

// MisconceptionTags returns every misconception tag used by a question.
func (c *Catalog) MisconceptionTags() []string { return c.misconceptions }

// QuestionsForMisconception returns the questions carrying a misconception tag.
func (c *Catalog) QuestionsForMisconception(tag string) []*Question {
	return c.byMisconception[tag]
}

// Sections returns all outline sections ordered by id.
func (c *Catalog) Sections() []OutlineSection { return c.sections }

// Section looks up an outline section by id.
func (c *Catalog) Section(id string) (OutlineSection, bool) {
	if s := c.sectionByID[id]; s != nil {
		return *s, true
	}
	return OutlineSection{}, false
}

// SectionsForObjective returns the mapping entries that list objectiveID.
func (c *Catalog) SectionsForObjective(objectiveID string) []OutlineSection {
	ptrs := c.sectionsByObj[objectiveID]
	out := make([]OutlineSection, len(ptrs))
	for i, s := range ptrs {
		out[i] = *s
	}
	return out
}

// LessonsForSection returns the lessons attached to a section, by id.
func (c *Catalog) LessonsForSection(sectionID string) []Lesson {
	return derefLessons(c.lessonsBySection[sectionID])
}

// LessonsForObjective returns the lessons attached to an objective, by id.
func (c *Catalog) LessonsForObjective(objectiveID string) []Lesson {
	return derefLessons(c.lessonsByObj[objectiveID])
}

// HasBundle reports whether any question belongs to bundleID.
func (c *Catalog) HasBundle(bundleID string) bool { return c.bundles[bundleID] }

// SectionID derives a stable section id from its title and link.
func SectionID(title, link string) string {
	h := sha256.New()
	for _, part := range []string{title, link} {
		h.Write([]byte(part))
		h.Write([]byte{0x1f})
	}
	return "sec-" + hex.EncodeToString(h.Sum(nil))[:12]
}

func derefLessons(ptrs []*Lesson) []Lesson {
	out := make([]Lesson, len(ptrs))
	for i, l := range ptrs {
		out[i] = *l
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func containsLesson(ls []*Lesson, id string) bool {
	for _, l := range ls {
		if l.ID == id {
			return true
		}
	}
	return false
}

func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
