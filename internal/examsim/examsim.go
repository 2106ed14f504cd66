// Package examsim assembles full-length practice exams that follow a domain
// weighting policy and minimum scenario/interactive coverage, reproducibly
// from a seed.
package examsim

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/seedrng"
)

// Input is everything one generation run reads.
type Input struct {
	Catalog *catalog.Catalog
	Policy  catalog.Policy
	Stats   history.Stats
	Seed    string
	Now     time.Time
}

// DomainCount is the per-domain quota table row.
type DomainCount struct {
	DomainID  string  `json:"domain_id"`
	Title     string  `json:"title,omitempty"`
	Weight    float64 `json:"weight"`
	Target    int     `json:"target"`
	Actual    int     `json:"actual"`
	Available int     `json:"available"`
}

// Item is one exam question in presentation order.
type Item struct {
	BundleID    string               `json:"bundle_id,omitempty"`
	QuestionID  string               `json:"question_id"`
	DomainID    string               `json:"domain_id"`
	Type        catalog.QuestionType `json:"type"`
	Scenario    bool                 `json:"scenario,omitempty"`
	Interactive bool                 `json:"interactive,omitempty"`
}

// Plan is a generated exam. It is plain data and safe to store verbatim.
type Plan struct {
	ID               string        `json:"plan_id"`
	Seed             string        `json:"seed"`
	PolicyVersion    string        `json:"policy_version,omitempty"`
	GeneratedAt      time.Time     `json:"generated_at"`
	DurationMinutes  int           `json:"duration_minutes"`
	TotalQuestions   int           `json:"total_questions"`
	Domains          []DomainCount `json:"domains"`
	ScenarioCount    int           `json:"scenario_count"`
	InteractiveCount int           `json:"interactive_count"`
	Warnings         []string      `json:"warnings"`
	Items            []Item        `json:"items"`
}

// QuestionIDs returns the ordered question ids.
func (p Plan) QuestionIDs() []string {
	ids := make([]string, len(p.Items))
	for i, it := range p.Items {
		ids[i] = it.QuestionID
	}
	return ids
}

// generator holds the mutable state of one run.
type generator struct {
	rng      *seedrng.Rng
	cands    []candidate
	selected []bool
	assigned []string
	// order lists selected candidate indexes in selection order.
	order    []int
	target   map[string]int
	actual   map[string]int
	warnings []string
}

// Generate builds an exam plan. It never fails: empty catalogs, short
// domain pools and unmet floors are reported as warnings on the plan.
func Generate(in Input) Plan {
	plan := Plan{
		Seed:            in.Seed,
		PolicyVersion:   in.Policy.Version,
		GeneratedAt:     in.Now.UTC(),
		DurationMinutes: in.Policy.DurationMinutes,
		Domains:         []DomainCount{},
		Warnings:        []string{},
		Items:           []Item{},
	}

	g := &generator{
		rng:    seedrng.New(in.Seed),
		target: make(map[string]int),
		actual: make(map[string]int),
	}
	if in.Catalog != nil {
		g.cands = candidates(in.Catalog, in.Policy.Domains, in.Stats)
	}
	g.selected = make([]bool, len(g.cands))
	g.assigned = make([]string, len(g.cands))

	total := in.Policy.TotalQuestions
	switch {
	case len(g.cands) == 0:
		g.warn("no eligible questions: the catalog has no questions in any weighted policy domain")
		total = 0
	case total <= 0:
		g.warn("policy requests no questions")
		total = 0
	case total > len(g.cands):
		g.warn(fmt.Sprintf("requested %d questions but only %d are eligible; clamped to %d", total, len(g.cands), len(g.cands)))
		total = len(g.cands)
	}

	domainIDs := in.Policy.DomainIDs()
	if total > 0 {
		g.target = Apportion(in.Policy.Domains, total)
		g.fillDomains(domainIDs)
		g.fillRemaining(total)
		g.enforce("scenario", in.Policy.MinScenarioQuestions, total,
			func(c *candidate) bool { return c.scenario }, func(*candidate) bool { return false })
		g.enforce("interactive", in.Policy.MinInteractiveQuestions, total,
			func(c *candidate) bool { return c.interactive },
			func(c *candidate) bool { return c.scenario && g.count(isScenario) <= in.Policy.MinScenarioQuestions })
	}

	for _, d := range domainIDs {
		row := DomainCount{
			DomainID:  d,
			Weight:    in.Policy.Domains[d],
			Target:    g.target[d],
			Actual:    g.actual[d],
			Available: g.available(d),
		}
		if in.Catalog != nil {
			if dm, ok := in.Catalog.Domain(d); ok {
				row.Title = dm.Title
			}
		}
		if row.Actual < row.Target {
			g.warn(fmt.Sprintf("domain %s: target %d, selected %d; candidate pool exhausted", d, row.Target, row.Actual))
		}
		plan.Domains = append(plan.Domains, row)
	}

	g.rng.Shuffle(len(g.order), func(i, j int) {
		g.order[i], g.order[j] = g.order[j], g.order[i]
	})
	for _, idx := range g.order {
		c := &g.cands[idx]
		plan.Items = append(plan.Items, Item{
			BundleID:    c.q.BundleID,
			QuestionID:  c.q.ID,
			DomainID:    g.assigned[idx],
			Type:        c.q.Type(),
			Scenario:    c.scenario,
			Interactive: c.interactive,
		})
		if c.scenario {
			plan.ScenarioCount++
		}
		if c.interactive {
			plan.InteractiveCount++
		}
	}

	plan.TotalQuestions = len(plan.Items)
	plan.Warnings = append(plan.Warnings, g.warnings...)
	plan.ID = seedrng.ShortID("exam", in.Seed, plan.GeneratedAt.Format(time.RFC3339), strconv.Itoa(plan.TotalQuestions))
	return plan
}

func isScenario(c *candidate) bool { return c.scenario }

func (g *generator) warn(msg string) {
	g.warnings = append(g.warnings, msg)
}

// fillDomains samples each domain up to its target from its own pool.
func (g *generator) fillDomains(domainIDs []string) {
	for _, d := range domainIDs {
		for g.actual[d] < g.target[d] {
			idx := g.sample(func(c *candidate) bool { return c.covers(d) })
			if idx < 0 {
				break
			}
			g.take(idx, d)
		}
	}
}

// fillRemaining tops the exam up to total from any unselected candidate,
// crediting the candidate's domain with the largest deficit.
func (g *generator) fillRemaining(total int) {
	for len(g.order) < total {
		idx := g.sample(func(*candidate) bool { return true })
		if idx < 0 {
			return
		}
		g.take(idx, g.neediestDomain(&g.cands[idx]))
	}
}

// enforce swaps non-qualifying selections for qualifying ones until floor is
// met. Victims are the lowest-weight selections, preferring domains that are
// over target; protected selections are never removed.
func (g *generator) enforce(name string, floor, total int, qualifies, protected func(*candidate) bool) {
	if floor <= 0 {
		return
	}
	if floor > total {
		g.warn(fmt.Sprintf("minimum %s count %d exceeds exam size %d", name, floor, total))
	}
	for g.count(qualifies) < floor {
		victim := g.victim(qualifies, protected)
		if victim < 0 {
			break
		}
		incoming := g.sample(qualifies)
		if incoming < 0 {
			break
		}
		g.swap(victim, incoming)
	}
	if n := g.count(qualifies); n < floor {
		g.warn(fmt.Sprintf("minimum %s count %d not met: %d selected", name, floor, n))
	}
}

// victim picks the selected, non-qualifying, unprotected candidate to swap
// out, or -1.
func (g *generator) victim(qualifies, protected func(*candidate) bool) int {
	var pool []int
	for _, idx := range g.order {
		c := &g.cands[idx]
		if qualifies(c) || protected(c) {
			continue
		}
		pool = append(pool, idx)
	}
	if len(pool) == 0 {
		return -1
	}
	surplus := func(idx int) int {
		d := g.assigned[idx]
		return g.actual[d] - g.target[d]
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := &g.cands[pool[i]], &g.cands[pool[j]]
		if a.weight != b.weight {
			return a.weight < b.weight
		}
		if sa, sb := surplus(pool[i]), surplus(pool[j]); sa != sb {
			return sa > sb
		}
		return a.q.ID < b.q.ID
	})
	return pool[0]
}

// swap replaces the selected victim with incoming in the same slot.
func (g *generator) swap(victim, incoming int) {
	g.actual[g.assigned[victim]]--
	g.selected[victim] = false
	g.assigned[victim] = ""

	d := g.neediestDomain(&g.cands[incoming])
	g.selected[incoming] = true
	g.assigned[incoming] = d
	g.actual[d]++
	for i, idx := range g.order {
		if idx == victim {
			g.order[i] = incoming
			break
		}
	}
}

// sample draws one unselected candidate matching keep, weighted by sampling
// weight. Returns -1 when none match.
func (g *generator) sample(keep func(*candidate) bool) int {
	var idxs []int
	var weights []float64
	for i := range g.cands {
		if g.selected[i] || !keep(&g.cands[i]) {
			continue
		}
		idxs = append(idxs, i)
		weights = append(weights, g.cands[i].weight)
	}
	pick := g.rng.WeightedIndex(weights)
	if pick < 0 {
		return -1
	}
	return idxs[pick]
}

func (g *generator) take(idx int, domainID string) {
	g.selected[idx] = true
	g.assigned[idx] = domainID
	g.actual[domainID]++
	g.order = append(g.order, idx)
}

// neediestDomain returns the candidate's domain with the largest remaining
// deficit, then the fewest selections, then the lowest id.
func (g *generator) neediestDomain(c *candidate) string {
	best := c.domains[0]
	for _, d := range c.domains[1:] {
		db, dd := g.target[best]-g.actual[best], g.target[d]-g.actual[d]
		switch {
		case dd > db:
			best = d
		case dd == db && g.actual[d] < g.actual[best]:
			best = d
		case dd == db && g.actual[d] == g.actual[best] && d < best:
			best = d
		}
	}
	return best
}

func (g *generator) count(pred func(*candidate) bool) int {
	n := 0
	for _, idx := range g.order {
		if pred(&g.cands[idx]) {
			n++
		}
	}
	return n
}

func (g *generator) available(domainID string) int {
	n := 0
	for i := range g.cands {
		if g.cands[i].covers(domainID) {
			n++
		}
	}
	return n
}
