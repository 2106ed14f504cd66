package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Catalog file names inside a catalog directory.
const (
	ObjectivesFile = "objectives.json"
	QuestionsFile  = "questions.json"
	OutlineFile    = "outline.json"
	LessonsFile    = "lessons.json"
	PoliciesDir    = "policies"
	PolicyFile     = "policy.yaml"
)

// objectivesDoc is the shape of objectives.json.
type objectivesDoc struct {
	Domains    []json.RawMessage `json:"domains"`
	Objectives []json.RawMessage `json:"objectives"`
}

// LoadDir reads a catalog directory. Missing files are treated as empty.
// Malformed records are dropped and reported as issues; only unreadable or
// unparseable files return an error.
func LoadDir(dir string) (*Catalog, []Issue, error) {
	var (
		data   Data
		issues issueList
	)

	var objDoc objectivesDoc
	found, err := readJSON(filepath.Join(dir, ObjectivesFile), &objDoc)
	if err != nil {
		return nil, nil, err
	}
	if found {
		data.Domains = decodeEntries[Domain]("domain", objDoc.Domains, &issues)
		data.Objectives = decodeEntries[Objective]("objective", objDoc.Objectives, &issues)
	}

	var rawQuestions []json.RawMessage
	if _, err := readJSON(filepath.Join(dir, QuestionsFile), &rawQuestions); err != nil {
		return nil, nil, err
	}
	data.Questions = decodeEntries[Question]("question", rawQuestions, &issues)

	var rawSections []json.RawMessage
	if _, err := readJSON(filepath.Join(dir, OutlineFile), &rawSections); err != nil {
		return nil, nil, err
	}
	data.Sections = decodeEntries[OutlineSection]("section", rawSections, &issues)

	var rawLessons []json.RawMessage
	if _, err := readJSON(filepath.Join(dir, LessonsFile), &rawLessons); err != nil {
		return nil, nil, err
	}
	data.Lessons = decodeEntries[Lesson]("lesson", rawLessons, &issues)

	policies, err := loadPolicies(dir)
	if err != nil {
		return nil, nil, err
	}
	data.Policies = policies

	cat, buildIssues := New(data)
	return cat, append(issues, buildIssues...), nil
}

// loadPolicies reads policy.yaml and policies/*.yaml.
func loadPolicies(dir string) ([]Policy, error) {
	paths, err := filepath.Glob(filepath.Join(dir, PoliciesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob policies: %w", err)
	}
	sort.Strings(paths)
	single := filepath.Join(dir, PolicyFile)
	if _, err := os.Stat(single); err == nil {
		paths = append([]string{single}, paths...)
	}

	var out []Policy
	for _, path := range paths {
		pol, err := LoadPolicyFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, pol)
	}
	return out, nil
}

// LoadPolicyFile reads a single YAML policy document.
func LoadPolicyFile(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, fmt.Errorf("open policy: %w", err)
	}
	defer f.Close()
	p, err := DecodePolicy(f)
	if err != nil {
		return Policy{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if p.Version == "" {
		p.Version = filepath.Base(path)
	}
	return p, nil
}

// readJSON decodes path into v. It reports false without error when the
// file does not exist.
func readJSON(path string, v any) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// decodeEntries validates and decodes each raw record independently.
func decodeEntries[T any](schema string, raws []json.RawMessage, issues *issueList) []T {
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		ref := entryRef(schema, i, raw)
		if err := validateEntry(schema, raw); err != nil {
			issues.add(IssueInvalid, ref, err.Error())
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			issues.add(IssueInvalid, ref, err.Error())
			continue
		}
		out = append(out, v)
	}
	return out
}

func entryRef(schema string, index int, raw json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(raw, &probe) == nil && probe.ID != "" {
		return probe.ID
	}
	return fmt.Sprintf("%s[%d]", schema, index)
}
