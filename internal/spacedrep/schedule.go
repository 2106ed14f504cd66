package spacedrep

import (
	"fmt"
	"strings"
)

// Ease bounds and adjustments.
const (
	InitialEase = 2.3
	MinEase     = 1.3
	MaxEase     = 2.8
	easeStep    = 0.1
	lapseStep   = 0.2
)

// Initial intervals in days for a newly created card.
const (
	InitialWrongInterval  = 1
	InitialUnsureInterval = 2
)

// unsureMultiplier grows the interval on a correct but unsure review.
const unsureMultiplier = 1.6

// Outcome is the graded result of reviewing a mistake card.
type Outcome string

const (
	OutcomeCorrectConfident Outcome = "correct_confident"
	OutcomeCorrectUnsure    Outcome = "correct_unsure"
	OutcomeWrong            Outcome = "wrong"
)

// ParseOutcome accepts the canonical outcome names, case-insensitively, with
// dashes allowed in place of underscores.
func ParseOutcome(s string) (Outcome, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch Outcome(norm) {
	case OutcomeCorrectConfident, OutcomeCorrectUnsure, OutcomeWrong:
		return Outcome(norm), nil
	}
	return "", fmt.Errorf("unknown review outcome %q", s)
}

// OutcomeFor maps an answer to its review outcome.
func OutcomeFor(correct, unsure bool) Outcome {
	switch {
	case !correct:
		return OutcomeWrong
	case unsure:
		return OutcomeCorrectUnsure
	default:
		return OutcomeCorrectConfident
	}
}
