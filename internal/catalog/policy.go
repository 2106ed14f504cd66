package catalog

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// ErrNoPolicy is returned when the catalog has no domain-weight policy.
var ErrNoPolicy = errors.New("no domain-weight policy in catalog")

// Policy is a domain-weight document describing a full exam rehearsal.
type Policy struct {
	Version                 string             `yaml:"version" json:"version"`
	Title                   string             `yaml:"title,omitempty" json:"title,omitempty"`
	Domains                 map[string]float64 `yaml:"domains" json:"domains"`
	TotalQuestions          int                `yaml:"total_questions" json:"total_questions"`
	DurationMinutes         int                `yaml:"duration_minutes" json:"duration_minutes"`
	MinScenarioQuestions    int                `yaml:"min_scenario_questions" json:"min_scenario_questions"`
	MinInteractiveQuestions int                `yaml:"min_interactive_questions" json:"min_interactive_questions"`
}

// DecodePolicy parses a YAML policy document.
func DecodePolicy(r io.Reader) (Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}
	return p, nil
}

// DomainIDs returns the policy's domain ids in ascending order.
func (p Policy) DomainIDs() []string {
	ids := make([]string, 0, len(p.Domains))
	for id := range p.Domains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// normalized drops negative weights and, when the catalog declares domains,
// weights for unknown domains.
func (p Policy) normalized(known map[string]*Domain) (Policy, []Issue) {
	var issues issueList
	ref := "policy " + p.Version
	domains := make(map[string]float64, len(p.Domains))
	for id, w := range p.Domains {
		if w < 0 {
			issues.add(IssueInvalid, ref, fmt.Sprintf("negative weight for %q dropped", id))
			continue
		}
		if len(known) > 0 && known[id] == nil {
			issues.add(IssueDanglingRef, ref, fmt.Sprintf("unknown domain %q dropped", id))
			continue
		}
		domains[id] = w
	}
	p.Domains = domains
	if p.TotalQuestions < 0 {
		issues.add(IssueInvalid, ref, "negative total_questions reset to 0")
		p.TotalQuestions = 0
	}
	if p.MinScenarioQuestions < 0 {
		p.MinScenarioQuestions = 0
	}
	if p.MinInteractiveQuestions < 0 {
		p.MinInteractiveQuestions = 0
	}
	return p, issues
}

// canonicalVersion maps "1.2" and "v1.2" to a semver string; invalid
// versions return "".
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// sortPolicies orders policies oldest first. Versions that are not semver
// sort before all semver versions, lexically among themselves.
func sortPolicies(ps []Policy) {
	sort.SliceStable(ps, func(i, j int) bool {
		vi, vj := canonicalVersion(ps[i].Version), canonicalVersion(ps[j].Version)
		switch {
		case vi == "" && vj == "":
			return ps[i].Version < ps[j].Version
		case vi == "":
			return true
		case vj == "":
			return false
		}
		return semver.Compare(vi, vj) < 0
	})
}

// Policies returns all policies ordered oldest version first.
func (c *Catalog) Policies() []Policy { return c.policies }

// LatestPolicy returns the policy with the highest version.
func (c *Catalog) LatestPolicy() (Policy, error) {
	if len(c.policies) == 0 {
		return Policy{}, ErrNoPolicy
	}
	return c.policies[len(c.policies)-1], nil
}

// PolicyByVersion returns the policy whose version matches v.
func (c *Catalog) PolicyByVersion(v string) (Policy, error) {
	want := canonicalVersion(v)
	for _, p := range c.policies {
		if p.Version == v || (want != "" && canonicalVersion(p.Version) == want) {
			return p, nil
		}
	}
	return Policy{}, fmt.Errorf("policy %q: %w", v, ErrNoPolicy)
}

// NormalizePolicy checks an externally supplied policy against the catalog's
// domains, dropping what the catalog cannot honour.
func (c *Catalog) NormalizePolicy(p Policy) (Policy, []Issue) {
	return p.normalized(c.domainByID)
}
