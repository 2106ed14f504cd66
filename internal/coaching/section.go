package coaching

import (
	"sort"

	"github.com/abhisek/examcoach/internal/catalog"
)

// SectionSource records which step of the fallback chain chose a section.
type SectionSource string

const (
	SourceMapping SectionSource = "mapping"
	SourceOrigin  SectionSource = "origin"
)

// SectionChoice is the content section a plan is scoped to.
type SectionChoice struct {
	ID       string        `json:"id"`
	Title    string        `json:"title,omitempty"`
	Link     string        `json:"link,omitempty"`
	BundleID string        `json:"bundle_id,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
	Source   SectionSource `json:"source"`
	Matches  int           `json:"matches"`
}

// ResolveSection picks a section for an objective. Outline mapping entries
// win, ranked by how many candidates they match, then by having a bundle,
// then by title. Otherwise the most common origin-section reference among
// the candidates is used. It returns false when neither yields a section.
func ResolveSection(cat *catalog.Catalog, objectiveID string, candidates []*catalog.Question) (*SectionChoice, bool) {
	if sc, ok := fromMapping(cat, objectiveID, candidates); ok {
		return sc, true
	}
	return fromOrigin(cat, candidates)
}

func fromMapping(cat *catalog.Catalog, objectiveID string, candidates []*catalog.Question) (*SectionChoice, bool) {
	sections := cat.SectionsForObjective(objectiveID)
	if len(sections) == 0 {
		return nil, false
	}
	choices := make([]SectionChoice, 0, len(sections))
	for _, s := range sections {
		sc := SectionChoice{
			ID:       s.ID,
			Title:    s.Title,
			Link:     s.Link,
			BundleID: s.BundleID,
			Tags:     s.Tags,
			Source:   SourceMapping,
		}
		for _, q := range candidates {
			if sc.matches(q) {
				sc.Matches++
			}
		}
		choices = append(choices, sc)
	}
	sort.SliceStable(choices, func(i, j int) bool {
		a, b := choices[i], choices[j]
		if a.Matches != b.Matches {
			return a.Matches > b.Matches
		}
		if (a.BundleID != "") != (b.BundleID != "") {
			return a.BundleID != ""
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	return &choices[0], true
}

func fromOrigin(cat *catalog.Catalog, candidates []*catalog.Question) (*SectionChoice, bool) {
	counts := make(map[string]int)
	for _, q := range candidates {
		if q.OriginSection != "" {
			counts[q.OriginSection]++
		}
	}
	if len(counts) == 0 {
		return nil, false
	}
	best := ""
	for ref, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && ref < best) {
			best = ref
		}
	}
	sc := &SectionChoice{ID: best, Source: SourceOrigin, Matches: counts[best]}
	if s, ok := cat.Section(best); ok {
		sc.Title = s.Title
		sc.Link = s.Link
		sc.BundleID = s.BundleID
		sc.Tags = s.Tags
	}
	return sc, true
}

// matches reports whether q belongs to the section: it shares a tag with the
// section or was authored from it.
func (sc *SectionChoice) matches(q *catalog.Question) bool {
	if q.OriginSection != "" && q.OriginSection == sc.ID {
		return true
	}
	for _, st := range sc.Tags {
		for _, qt := range q.Tags {
			if st == qt {
				return true
			}
		}
	}
	return false
}
