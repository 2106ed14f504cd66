package catalog

import (
	"encoding/json"
	"fmt"
)

// QuestionType names one of the four item kinds.
type QuestionType string

const (
	TypeSingleChoice QuestionType = "single-choice"
	TypeMultiSelect  QuestionType = "multi-select"
	TypeMatchPairs   QuestionType = "match-pairs"
	TypeOrdering     QuestionType = "ordering"
)

// AllTypes returns every question type in declaration order.
func AllTypes() []QuestionType {
	return []QuestionType{TypeSingleChoice, TypeMultiSelect, TypeMatchPairs, TypeOrdering}
}

// Interactive reports whether the type is answered by more than a single pick.
func (t QuestionType) Interactive() bool {
	switch t {
	case TypeMultiSelect, TypeMatchPairs, TypeOrdering:
		return true
	default:
		return false
	}
}

// Body is the type-specific payload of a question. The set of
// implementations is closed to this package.
type Body interface {
	isBody()
}

// SingleChoice has exactly one correct choice.
type SingleChoice struct {
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}

// MultiSelect has one or more correct choices.
type MultiSelect struct {
	Choices []string `json:"choices"`
	Answers []int    `json:"answers"`
}

// Pair is one left/right association of a MatchPairs question.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MatchPairs asks the learner to connect left items to right items.
type MatchPairs struct {
	Pairs []Pair `json:"pairs"`
}

// Ordering asks the learner to put steps in the correct sequence.
type Ordering struct {
	Steps []string `json:"steps"`
}

func (SingleChoice) isBody() {}
func (MultiSelect) isBody()  {}
func (MatchPairs) isBody()   {}
func (Ordering) isBody()     {}

// Question is a read-only catalog content item.
type Question struct {
	ID                string
	Stem              string
	Body              Body
	Tags              []string
	ObjectiveIDs      []string
	MisconceptionTags []string
	Difficulty        int
	OriginSection     string
	BundleID          string
	// Scenario is the legacy explicit scenario marker.
	Scenario bool
}

// Type returns the question type implied by its body.
func (q *Question) Type() QuestionType {
	switch q.Body.(type) {
	case SingleChoice:
		return TypeSingleChoice
	case MultiSelect:
		return TypeMultiSelect
	case MatchPairs:
		return TypeMatchPairs
	case Ordering:
		return TypeOrdering
	default:
		return ""
	}
}

// questionJSON is the flat wire shape of a question record.
type questionJSON struct {
	ID                string       `json:"id"`
	Type              QuestionType `json:"type"`
	Stem              string       `json:"stem"`
	Choices           []string     `json:"choices,omitempty"`
	Answer            *int         `json:"answer,omitempty"`
	Answers           []int        `json:"answers,omitempty"`
	Pairs             []Pair       `json:"pairs,omitempty"`
	Steps             []string     `json:"steps,omitempty"`
	Tags              []string     `json:"tags,omitempty"`
	ObjectiveIDs      []string     `json:"objective_ids"`
	MisconceptionTags []string     `json:"misconception_tags,omitempty"`
	Difficulty        int          `json:"difficulty"`
	OriginSection     string       `json:"origin_section,omitempty"`
	BundleID          string       `json:"bundle_id,omitempty"`
	Scenario          bool         `json:"scenario,omitempty"`
}

// UnmarshalJSON decodes a question, dispatching the body on "type".
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var body Body
	switch raw.Type {
	case TypeSingleChoice:
		answer := 0
		if raw.Answer != nil {
			answer = *raw.Answer
		}
		body = SingleChoice{Choices: raw.Choices, Answer: answer}
	case TypeMultiSelect:
		body = MultiSelect{Choices: raw.Choices, Answers: raw.Answers}
	case TypeMatchPairs:
		body = MatchPairs{Pairs: raw.Pairs}
	case TypeOrdering:
		body = Ordering{Steps: raw.Steps}
	default:
		return fmt.Errorf("question %q: unknown type %q", raw.ID, raw.Type)
	}

	*q = Question{
		ID:                raw.ID,
		Stem:              raw.Stem,
		Body:              body,
		Tags:              raw.Tags,
		ObjectiveIDs:      raw.ObjectiveIDs,
		MisconceptionTags: raw.MisconceptionTags,
		Difficulty:        raw.Difficulty,
		OriginSection:     raw.OriginSection,
		BundleID:          raw.BundleID,
		Scenario:          raw.Scenario,
	}
	return nil
}

// MarshalJSON encodes a question in the flat wire shape.
func (q Question) MarshalJSON() ([]byte, error) {
	raw := questionJSON{
		ID:                q.ID,
		Type:              q.Type(),
		Stem:              q.Stem,
		Tags:              q.Tags,
		ObjectiveIDs:      q.ObjectiveIDs,
		MisconceptionTags: q.MisconceptionTags,
		Difficulty:        q.Difficulty,
		OriginSection:     q.OriginSection,
		BundleID:          q.BundleID,
		Scenario:          q.Scenario,
	}
	switch b := q.Body.(type) {
	case SingleChoice:
		answer := b.Answer
		raw.Choices, raw.Answer = b.Choices, &answer
	case MultiSelect:
		raw.Choices, raw.Answers = b.Choices, b.Answers
	case MatchPairs:
		raw.Pairs = b.Pairs
	case Ordering:
		raw.Steps = b.Steps
	default:
		return nil, fmt.Errorf("question %q: missing body", q.ID)
	}
	return json.Marshal(raw)
}
